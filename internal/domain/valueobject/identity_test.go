package valueobject_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/loanintake/internal/domain/valueobject"
)

func TestNewPAN(t *testing.T) {
	p, err := valueobject.NewPAN("abcde1234f")
	require.NoError(t, err)
	assert.Equal(t, "ABCDE1234F", p.String())

	for _, bad := range []string{"", "ABCD1234F", "ABCDE12345", "ABCDE1234FF", "12345ABCDE"} {
		_, err := valueobject.NewPAN(bad)
		assert.ErrorIs(t, err, valueobject.ErrInvalidPAN, bad)
	}

	t.Run("non-ASCII letters that upper-case into A-Z", func(t *testing.T) {
		// U+017F upper-cases to S and U+0131 to I.
		for _, bad := range []string{"ABCD\u017f1234F", "\u0131BCDE1234F", "ABCDE1234\u017f"} {
			_, err := valueobject.NewPAN(bad)
			assert.ErrorIs(t, err, valueobject.ErrInvalidPAN, bad)
		}
	})
}

func TestNewAadhaar(t *testing.T) {
	_, err := valueobject.NewAadhaar("123412341234")
	require.NoError(t, err)

	for _, bad := range []string{"", "12341234123", "1234123412345", "12341234123a"} {
		_, err := valueobject.NewAadhaar(bad)
		assert.ErrorIs(t, err, valueobject.ErrInvalidAadhaar, bad)
	}
}

func TestNewPincode(t *testing.T) {
	_, err := valueobject.NewPincode("560001")
	require.NoError(t, err)

	_, err = valueobject.NewPincode("56001")
	assert.ErrorIs(t, err, valueobject.ErrInvalidPincode)
}

func TestNewEmail(t *testing.T) {
	_, err := valueobject.NewEmail("priya.sharma+loans@gmail.com")
	require.NoError(t, err)

	for _, bad := range []string{"priya@yahoo.com", "priya@gmail.co", "@gmail.com", "priya sharma@gmail.com"} {
		_, err := valueobject.NewEmail(bad)
		assert.ErrorIs(t, err, valueobject.ErrInvalidEmail, bad)
	}
}

func TestNewMobile(t *testing.T) {
	_, err := valueobject.NewMobile("+919876543210")
	require.NoError(t, err)

	for _, bad := range []string{"+9198765432", "9876543210", "+915876543210", "+9198765432100"} {
		_, err := valueobject.NewMobile(bad)
		assert.ErrorIs(t, err, valueobject.ErrInvalidMobile, bad)
	}
}

func TestFieldErrors(t *testing.T) {
	errs := valueobject.FieldErrors{
		valueobject.FieldTenureYears: "Tenure 1-20 years",
		valueobject.FieldPAN:         "Enter valid PAN (ABCDE1234F)",
	}
	assert.False(t, errs.Valid())
	assert.Equal(t, []valueobject.Field{valueobject.FieldPAN, valueobject.FieldTenureYears}, errs.Fields())
	assert.Equal(t, "pan: Enter valid PAN (ABCDE1234F); tenure_years: Tenure 1-20 years", errs.String())
	assert.Equal(t, "Tenure 1-20 years", errs.Strings()["tenure_years"])

	assert.True(t, valueobject.FieldErrors{}.Valid())
}

func TestParseField(t *testing.T) {
	f, ok := valueobject.ParseField("loan_amount")
	assert.True(t, ok)
	assert.Equal(t, valueobject.FieldLoanAmount, f)

	_, ok = valueobject.ParseField("salary")
	assert.False(t, ok)
}
