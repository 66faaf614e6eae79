package form_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/loanintake/internal/domain/form"
	"github.com/bibbank/loanintake/internal/domain/service"
	"github.com/bibbank/loanintake/internal/domain/valueobject"
)

var now = time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)

func filledForm(t *testing.T) form.State {
	t.Helper()
	s := form.New("300000", service.DefaultValidationRules(), now)
	values := map[valueobject.Field]string{
		valueobject.FieldFullName:      "Priya Sharma",
		valueobject.FieldPAN:           "ABCDE1234F",
		valueobject.FieldAadhaar:       "123412341234",
		valueobject.FieldDateOfBirth:   "1994-07-12",
		valueobject.FieldState:         "Karnataka",
		valueobject.FieldPincode:       "560001",
		valueobject.FieldEmail:         "priya.sharma@gmail.com",
		valueobject.FieldMobile:        "+919876543210",
		valueobject.FieldMonthlyIncome: "55000",
		valueobject.FieldTenureYears:   "5",
	}
	for _, f := range valueobject.AllFields {
		v, ok := values[f]
		if !ok {
			continue
		}
		var err error
		s, err = form.ChangeField(s, f, v, now)
		require.NoError(t, err)
	}
	require.True(t, s.CanSubmit(), s.Errors().String())
	return s
}

func TestNew(t *testing.T) {
	s := form.New("300000", service.DefaultValidationRules(), now)

	assert.Equal(t, form.StatusEditing, s.Status())
	assert.Equal(t, "300000", s.Value(valueobject.FieldLoanAmount))
	assert.False(t, s.CanSubmit())
	_, hasLoanErr := s.Errors()[valueobject.FieldLoanAmount]
	assert.False(t, hasLoanErr)
}

func TestChangeField_Revalidates(t *testing.T) {
	s := form.New("300000", service.DefaultValidationRules(), now)

	s1, err := form.ChangeField(s, valueobject.FieldMobile, "+9198765432", now)
	require.NoError(t, err)
	assert.Equal(t, service.MsgMobile, s1.Errors()[valueobject.FieldMobile])

	s2, err := form.ChangeField(s1, valueobject.FieldMobile, "+919876543210", now)
	require.NoError(t, err)
	_, still := s2.Errors()[valueobject.FieldMobile]
	assert.False(t, still)

	// Earlier snapshots are untouched.
	assert.Equal(t, "+9198765432", s1.Value(valueobject.FieldMobile))
	assert.Equal(t, "", s.Value(valueobject.FieldMobile))
}

func TestBeginSubmit(t *testing.T) {
	t.Run("disabled with field errors", func(t *testing.T) {
		s := form.New("300000", service.DefaultValidationRules(), now)
		next, err := form.BeginSubmit(s)
		assert.ErrorIs(t, err, form.ErrSubmitDisabled)
		assert.Equal(t, form.StatusEditing, next.Status())
	})

	t.Run("valid form submits once", func(t *testing.T) {
		s, err := form.BeginSubmit(filledForm(t))
		require.NoError(t, err)
		assert.Equal(t, form.StatusSubmitting, s.Status())
		assert.False(t, s.CanSubmit())

		_, err = form.BeginSubmit(s)
		assert.ErrorIs(t, err, form.ErrInvalidTransition)

		_, err = form.ChangeField(s, valueobject.FieldState, "Goa", now)
		assert.ErrorIs(t, err, form.ErrInvalidTransition)
	})
}

func TestAcknowledge_ResetsFieldsKeepsPrefill(t *testing.T) {
	s, err := form.BeginSubmit(filledForm(t))
	require.NoError(t, err)

	s, err = form.Acknowledge(s, "Application submitted")
	require.NoError(t, err)

	assert.Equal(t, form.StatusSucceeded, s.Status())
	assert.Equal(t, "Application submitted", s.Message())
	assert.Equal(t, "300000", s.Value(valueobject.FieldLoanAmount))
	assert.Equal(t, "", s.Value(valueobject.FieldFullName))
	assert.Equal(t, "", s.Value(valueobject.FieldPAN))

	s, err = form.Dismiss(s)
	require.NoError(t, err)
	assert.Equal(t, form.StatusEditing, s.Status())
	assert.Empty(t, s.Message())
}

func TestFail_ThenEdit(t *testing.T) {
	filled := filledForm(t)
	s, err := form.BeginSubmit(filled)
	require.NoError(t, err)

	s, err = form.Fail(s, "Submission failed")
	require.NoError(t, err)
	assert.Equal(t, form.StatusFailed, s.Status())
	assert.Equal(t, "Submission failed", s.Message())
	assert.Equal(t, filled.Input(), s.Input())

	_, err = form.BeginSubmit(s)
	assert.ErrorIs(t, err, form.ErrInvalidTransition)

	s, err = form.Edit(s)
	require.NoError(t, err)
	assert.Equal(t, form.StatusEditing, s.Status())
	assert.True(t, s.CanSubmit())
}

func TestChangeField_FromFailed(t *testing.T) {
	s, _ := form.BeginSubmit(filledForm(t))
	s, _ = form.Fail(s, "Submission failed")

	s, err := form.ChangeField(s, valueobject.FieldState, "Goa", now)
	require.NoError(t, err)
	assert.Equal(t, form.StatusEditing, s.Status())
	assert.Empty(t, s.Message())
}

func TestReject_ServerFieldErrors(t *testing.T) {
	s, _ := form.BeginSubmit(filledForm(t))

	s, err := form.Reject(s, valueobject.FieldErrors{valueobject.FieldEmail: service.MsgEmail})
	require.NoError(t, err)
	assert.Equal(t, form.StatusEditing, s.Status())
	assert.Equal(t, service.MsgEmail, s.Errors()[valueobject.FieldEmail])
	assert.False(t, s.CanSubmit())
}

func TestInvalidTransitions(t *testing.T) {
	editing := form.New("", service.DefaultValidationRules(), now)

	_, err := form.Acknowledge(editing, "")
	assert.ErrorIs(t, err, form.ErrInvalidTransition)
	_, err = form.Fail(editing, "")
	assert.ErrorIs(t, err, form.ErrInvalidTransition)
	_, err = form.Dismiss(editing)
	assert.ErrorIs(t, err, form.ErrInvalidTransition)
	_, err = form.Edit(editing)
	assert.ErrorIs(t, err, form.ErrInvalidTransition)
	_, err = form.Reject(editing, nil)
	assert.ErrorIs(t, err, form.ErrInvalidTransition)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "editing", form.StatusEditing.String())
	assert.Equal(t, "submitting", form.StatusSubmitting.String())
	assert.Equal(t, "succeeded", form.StatusSucceeded.String())
	assert.Equal(t, "failed", form.StatusFailed.String())
	assert.Equal(t, "unknown", form.Status(42).String())
}
