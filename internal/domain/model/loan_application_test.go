package model_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/loanintake/internal/domain/event"
	"github.com/bibbank/loanintake/internal/domain/model"
	"github.com/bibbank/loanintake/internal/domain/valueobject"
	"github.com/bibbank/loanintake/pkg/money"
)

func validDetails(t *testing.T) model.ApplicantDetails {
	t.Helper()
	pan, err := valueobject.NewPAN("abcde1234f")
	require.NoError(t, err)
	aadhaar, err := valueobject.NewAadhaar("123412341234")
	require.NoError(t, err)
	pin, err := valueobject.NewPincode("560001")
	require.NoError(t, err)
	email, err := valueobject.NewEmail("priya.sharma@gmail.com")
	require.NoError(t, err)
	mobile, err := valueobject.NewMobile("+919876543210")
	require.NoError(t, err)

	return model.ApplicantDetails{
		FullName:      "  Priya Sharma ",
		PAN:           pan,
		Aadhaar:       aadhaar,
		DateOfBirth:   time.Date(1994, 7, 12, 0, 0, 0, 0, time.UTC),
		State:         " Karnataka",
		Pincode:       pin,
		Email:         email,
		MonthlyIncome: money.Rupees(decimal.NewFromInt(55000)),
		Mobile:        mobile,
		LoanAmount:    money.Rupees(decimal.NewFromInt(300000)),
		TenureYears:   5,
	}
}

func TestNewLoanApplication(t *testing.T) {
	now := time.Date(2026, 3, 4, 10, 30, 0, 0, time.UTC)

	app, err := model.NewLoanApplication(validDetails(t), now)
	require.NoError(t, err)

	_, err = uuid.Parse(app.ID())
	assert.NoError(t, err)
	assert.Equal(t, "Priya Sharma", app.FullName())
	assert.Equal(t, "Karnataka", app.State())
	assert.Equal(t, "ABCDE1234F", app.PAN().String())
	assert.Equal(t, 5, app.TenureYears())
	assert.Equal(t, now, app.CreatedAt())

	t.Run("records submitted event", func(t *testing.T) {
		require.Len(t, app.DomainEvents(), 1)
		evt, ok := app.DomainEvents()[0].(event.LoanApplicationSubmitted)
		require.True(t, ok)
		assert.Equal(t, event.TypeLoanApplicationSubmitted, evt.EventType())
		assert.Equal(t, app.ID(), evt.AggregateID())
		assert.True(t, evt.LoanAmount.Equal(decimal.NewFromInt(300000)))
		assert.Equal(t, "560001", evt.Pincode)
	})

	t.Run("clear events leaves original untouched", func(t *testing.T) {
		cleared := app.ClearEvents()
		assert.Empty(t, cleared.DomainEvents())
		assert.Len(t, app.DomainEvents(), 1)
	})
}

func TestNewLoanApplication_Rejects(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name   string
		mutate func(*model.ApplicantDetails)
	}{
		{"blank name", func(d *model.ApplicantDetails) { d.FullName = "   " }},
		{"missing PAN", func(d *model.ApplicantDetails) { d.PAN = valueobject.PAN{} }},
		{"zero loan amount", func(d *model.ApplicantDetails) { d.LoanAmount = money.Rupees(decimal.Zero) }},
		{"zero tenure", func(d *model.ApplicantDetails) { d.TenureYears = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			details := validDetails(t)
			tt.mutate(&details)
			_, err := model.NewLoanApplication(details, now)
			assert.Error(t, err)
		})
	}
}

func TestReconstructLoanApplication(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	app := model.ReconstructLoanApplication("app-1", validDetails(t), created)

	assert.Equal(t, "app-1", app.ID())
	assert.Equal(t, created, app.CreatedAt())
	assert.Empty(t, app.DomainEvents())
}

func TestValidationError(t *testing.T) {
	fields := valueobject.FieldErrors{valueobject.FieldMobile: "Mobile must start with +91 followed by 10 digits"}
	err := model.NewValidationError(fields)
	fields[valueobject.FieldPAN] = "mutated after construction"

	assert.ErrorIs(t, err, model.ErrValidation)
	assert.Len(t, err.Fields, 1)
	assert.Contains(t, err.Error(), "mobile")

	var ve *model.ValidationError
	wrapped := errors.Join(errors.New("submit"), err)
	require.ErrorAs(t, wrapped, &ve)
	assert.Equal(t, err.Fields, ve.Fields)
}
