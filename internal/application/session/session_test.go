package session_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/loanintake/internal/application/session"
	"github.com/bibbank/loanintake/internal/domain/form"
	"github.com/bibbank/loanintake/internal/domain/model"
	"github.com/bibbank/loanintake/internal/domain/service"
	"github.com/bibbank/loanintake/internal/domain/valueobject"
)

var fixedNow = time.Date(2026, 3, 4, 9, 15, 0, 0, time.UTC)

var validFields = map[valueobject.Field]string{
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

func filledSession(t *testing.T, sub session.Submitter, opts ...session.Option) *session.Session {
	t.Helper()
	opts = append([]session.Option{session.WithClock(func() time.Time { return fixedNow })}, opts...)
	s := session.New(sub, "300000", service.DefaultValidationRules(), opts...)
	for f, v := range validFields {
		_, err := s.ChangeField(f, v)
		require.NoError(t, err)
	}
	require.True(t, s.State().CanSubmit(), "form should be valid: %v", s.State().Errors())
	return s
}

func TestSession_Submit(t *testing.T) {
	t.Run("success resets the form but keeps the prefill", func(t *testing.T) {
		var got service.ApplicationInput
		sub := session.SubmitterFunc(func(_ context.Context, in service.ApplicationInput) (session.Receipt, error) {
			got = in
			return session.Receipt{ID: "app-1", CreatedAt: fixedNow}, nil
		})
		s := filledSession(t, sub)

		st, err := s.Submit(context.Background())
		require.NoError(t, err)
		assert.Equal(t, form.StatusSucceeded, st.Status())
		assert.Equal(t, "Application submitted successfully", st.Message())
		assert.Equal(t, "300000", st.Value(valueobject.FieldLoanAmount))
		assert.Empty(t, st.Value(valueobject.FieldFullName))
		assert.Equal(t, "Priya Sharma", got.FullName)

		st, err = s.Dismiss()
		require.NoError(t, err)
		assert.Equal(t, form.StatusEditing, st.Status())
	})

	t.Run("disabled while fields are invalid", func(t *testing.T) {
		calls := 0
		sub := session.SubmitterFunc(func(context.Context, service.ApplicationInput) (session.Receipt, error) {
			calls++
			return session.Receipt{}, nil
		})
		s := session.New(sub, "300000", service.DefaultValidationRules())

		_, err := s.Submit(context.Background())
		assert.ErrorIs(t, err, form.ErrSubmitDisabled)
		assert.Zero(t, calls)
	})

	t.Run("server rejection becomes field errors", func(t *testing.T) {
		sub := session.SubmitterFunc(func(context.Context, service.ApplicationInput) (session.Receipt, error) {
			return session.Receipt{}, model.NewValidationError(valueobject.FieldErrors{
				valueobject.FieldEmail: service.MsgEmail,
			})
		})
		s := filledSession(t, sub, session.WithAutoRetry())

		st, err := s.Submit(context.Background())
		require.ErrorIs(t, err, model.ErrValidation)
		assert.Equal(t, form.StatusEditing, st.Status())
		assert.Equal(t, service.MsgEmail, st.Errors()[valueobject.FieldEmail])
		assert.Equal(t, "Priya Sharma", st.Value(valueobject.FieldFullName))
	})

	t.Run("store failure without retry", func(t *testing.T) {
		calls := 0
		sub := session.SubmitterFunc(func(context.Context, service.ApplicationInput) (session.Receipt, error) {
			calls++
			return session.Receipt{}, model.ErrStoreUnavailable
		})
		s := filledSession(t, sub)

		st, err := s.Submit(context.Background())
		require.ErrorIs(t, err, model.ErrStoreUnavailable)
		assert.Equal(t, 1, calls)
		assert.Equal(t, form.StatusFailed, st.Status())
		assert.Equal(t, session.MsgUnavailable, st.Message())
		assert.Equal(t, "Priya Sharma", st.Value(valueobject.FieldFullName))

		st, err = s.Edit()
		require.NoError(t, err)
		assert.Equal(t, form.StatusEditing, st.Status())
	})

	t.Run("auto retry once then succeed", func(t *testing.T) {
		calls := 0
		sub := session.SubmitterFunc(func(context.Context, service.ApplicationInput) (session.Receipt, error) {
			calls++
			if calls == 1 {
				return session.Receipt{}, model.ErrStoreUnavailable
			}
			return session.Receipt{ID: "app-2", Message: "ok"}, nil
		})
		s := filledSession(t, sub, session.WithAutoRetry())

		st, err := s.Submit(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, calls)
		assert.Equal(t, form.StatusSucceeded, st.Status())
		assert.Equal(t, "ok", st.Message())
	})

	t.Run("auto retry is a single attempt", func(t *testing.T) {
		calls := 0
		sub := session.SubmitterFunc(func(context.Context, service.ApplicationInput) (session.Receipt, error) {
			calls++
			return session.Receipt{}, errors.New("connection reset")
		})
		s := filledSession(t, sub, session.WithAutoRetry())

		st, err := s.Submit(context.Background())
		require.Error(t, err)
		assert.Equal(t, 2, calls)
		assert.Equal(t, form.StatusFailed, st.Status())
		assert.Equal(t, session.MsgFailed, st.Message())
	})

	t.Run("unauthorized is never retried", func(t *testing.T) {
		calls := 0
		sub := session.SubmitterFunc(func(context.Context, service.ApplicationInput) (session.Receipt, error) {
			calls++
			return session.Receipt{}, model.ErrUnauthorized
		})
		s := filledSession(t, sub, session.WithAutoRetry())

		st, _ := s.Submit(context.Background())
		assert.Equal(t, 1, calls)
		assert.Equal(t, session.MsgUnauthorized, st.Message())
	})
}

func TestSession_OneSubmissionInFlight(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	var calls atomic.Int32
	sub := session.SubmitterFunc(func(context.Context, service.ApplicationInput) (session.Receipt, error) {
		if calls.Add(1) == 1 {
			close(entered)
		}
		<-release
		return session.Receipt{ID: "app-1"}, nil
	})
	s := filledSession(t, sub)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := s.Submit(context.Background())
		assert.NoError(t, err)
	}()
	<-entered

	st, err := s.Submit(context.Background())
	assert.ErrorIs(t, err, session.ErrSubmitInFlight)
	assert.Equal(t, form.StatusSubmitting, st.Status())

	_, err = s.ChangeField(valueobject.FieldState, "Goa")
	assert.ErrorIs(t, err, form.ErrInvalidTransition)

	close(release)
	wg.Wait()
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, form.StatusSucceeded, s.State().Status())
}
