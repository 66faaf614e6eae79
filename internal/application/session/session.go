// Package session drives one applicant's form through a submission against
// a Submitter. The form itself is the pure reducer in internal/domain/form;
// Session owns the current state and serializes submissions.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bibbank/loanintake/internal/application/dto"
	"github.com/bibbank/loanintake/internal/application/usecase"
	"github.com/bibbank/loanintake/internal/domain/form"
	"github.com/bibbank/loanintake/internal/domain/model"
	"github.com/bibbank/loanintake/internal/domain/service"
	"github.com/bibbank/loanintake/internal/domain/valueobject"
)

// Short messages shown on a Failed form.
const (
	MsgUnavailable  = "Service unavailable, please try again"
	MsgUnauthorized = "Not authorized"
	MsgFailed       = "Submission failed"
)

// ErrSubmitInFlight is returned when Submit is called while a submission is
// still running.
var ErrSubmitInFlight = errors.New("submission already in progress")

// Receipt acknowledges a stored application.
type Receipt struct {
	CreatedAt time.Time
	ID        string
	Message   string
}

// Submitter sends a validated form to the store. A rejection by the
// server's validator must be returned as a *model.ValidationError.
type Submitter interface {
	Submit(ctx context.Context, in service.ApplicationInput) (Receipt, error)
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, in service.ApplicationInput) (Receipt, error)

func (f SubmitterFunc) Submit(ctx context.Context, in service.ApplicationInput) (Receipt, error) {
	return f(ctx, in)
}

// UseCaseSubmitter submits in-process through the submit use case.
type UseCaseSubmitter struct {
	uc *usecase.SubmitLoanApplicationUseCase
}

func NewUseCaseSubmitter(uc *usecase.SubmitLoanApplicationUseCase) *UseCaseSubmitter {
	return &UseCaseSubmitter{uc: uc}
}

func (s *UseCaseSubmitter) Submit(ctx context.Context, in service.ApplicationInput) (Receipt, error) {
	resp, err := s.uc.Execute(ctx, usecase.FromApplicationInput(in))
	if err != nil {
		return Receipt{}, err
	}
	return receiptFrom(resp), nil
}

func receiptFrom(resp dto.SubmitApplicationResponse) Receipt {
	return Receipt{ID: resp.ID, CreatedAt: resp.CreatedAt, Message: resp.Message}
}

// Option configures a Session.
type Option func(*Session)

// WithAutoRetry resubmits once, immediately, after a failure that is
// neither a validation rejection nor an authorization failure.
func WithAutoRetry() Option {
	return func(s *Session) { s.autoRetry = true }
}

// WithClock overrides the clock used for age checks.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// Session is safe for concurrent use.
type Session struct {
	mu        sync.Mutex
	state     form.State
	submitter Submitter
	autoRetry bool
	now       func() time.Time
}

// New opens a session with the loan amount prefilled from the calculator.
func New(submitter Submitter, prefillAmount string, rules service.ValidationRules, opts ...Option) *Session {
	s := &Session{submitter: submitter, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.state = form.New(prefillAmount, rules, s.now())
	return s
}

// State returns the current snapshot.
func (s *Session) State() form.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ChangeField sets one field and revalidates the form.
func (s *Session) ChangeField(field valueobject.Field, value string) (form.State, error) {
	return s.apply(func(st form.State) (form.State, error) {
		return form.ChangeField(st, field, value, s.now())
	})
}

// Dismiss closes the success confirmation.
func (s *Session) Dismiss() (form.State, error) { return s.apply(form.Dismiss) }

// Edit returns a failed form to editing.
func (s *Session) Edit() (form.State, error) { return s.apply(form.Edit) }

// Submit sends the form. It returns form.ErrSubmitDisabled while field
// errors remain and ErrSubmitInFlight if another Submit is running. A
// submission that reaches the Submitter always leaves the form in
// Succeeded, Failed or (for a server-side rejection) Editing; the
// Submitter's error, if any, is returned alongside that state.
func (s *Session) Submit(ctx context.Context) (form.State, error) {
	s.mu.Lock()
	if s.state.Status() == form.StatusSubmitting {
		st := s.state
		s.mu.Unlock()
		return st, ErrSubmitInFlight
	}
	next, err := form.BeginSubmit(s.state)
	if err != nil {
		s.mu.Unlock()
		return next, err
	}
	s.state = next
	input := next.Input()
	s.mu.Unlock()

	receipt, submitErr := s.submitter.Submit(ctx, input)
	if submitErr != nil && s.autoRetry && retryable(submitErr) && ctx.Err() == nil {
		receipt, submitErr = s.submitter.Submit(ctx, input)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var ve *model.ValidationError
	switch {
	case submitErr == nil:
		msg := receipt.Message
		if msg == "" {
			msg = usecase.SubmittedMessage
		}
		s.state, _ = form.Acknowledge(s.state, msg)
	case errors.As(submitErr, &ve):
		s.state, _ = form.Reject(s.state, ve.Fields)
	default:
		s.state, _ = form.Fail(s.state, failureMessage(submitErr))
	}
	return s.state, submitErr
}

func (s *Session) apply(fn func(form.State) (form.State, error)) (form.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := fn(s.state)
	if err != nil {
		return s.state, err
	}
	s.state = next
	return next, nil
}

func retryable(err error) bool {
	return !errors.Is(err, model.ErrValidation) && !errors.Is(err, model.ErrUnauthorized)
}

func failureMessage(err error) string {
	switch {
	case errors.Is(err, model.ErrStoreUnavailable):
		return MsgUnavailable
	case errors.Is(err, model.ErrUnauthorized):
		return MsgUnauthorized
	}
	return MsgFailed
}
