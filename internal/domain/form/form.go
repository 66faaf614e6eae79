// Package form models the application form as an immutable state machine.
// Every transition is a pure function from one State to the next; the
// field errors are recomputed by the validator after each one.
package form

import (
	"errors"
	"time"

	"github.com/bibbank/loanintake/internal/domain/service"
	"github.com/bibbank/loanintake/internal/domain/valueobject"
)

var (
	ErrInvalidTransition = errors.New("invalid form transition")
	ErrSubmitDisabled    = errors.New("form has field errors")
)

// Status is the lifecycle stage of the form.
type Status int

const (
	StatusEditing Status = iota
	StatusSubmitting
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusEditing:
		return "editing"
	case StatusSubmitting:
		return "submitting"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// State is one immutable snapshot of the form.
type State struct {
	status    Status
	input     service.ApplicationInput
	errors    valueobject.FieldErrors
	prefill   string
	message   string
	asOf      time.Time
	validator *service.ApplicationValidator
}

// New returns an Editing form with the loan amount prefilled from the offer screen.
func New(prefillAmount string, rules service.ValidationRules, now time.Time) State {
	s := State{
		status:    StatusEditing,
		input:     service.ApplicationInput{LoanAmount: prefillAmount},
		prefill:   prefillAmount,
		asOf:      now,
		validator: service.NewApplicationValidator(rules),
	}
	return s.revalidated()
}

// ChangeField sets one field. Editing a Failed form returns it to Editing.
func ChangeField(s State, field valueobject.Field, value string, now time.Time) (State, error) {
	if s.status != StatusEditing && s.status != StatusFailed {
		return s, ErrInvalidTransition
	}
	next := s
	next.input = s.input.With(field, value)
	next.status = StatusEditing
	next.message = ""
	next.asOf = now
	return next.revalidated(), nil
}

// BeginSubmit moves Editing -> Submitting. It is refused while any field
// error remains, and a form already Submitting cannot be submitted again.
func BeginSubmit(s State) (State, error) {
	if s.status != StatusEditing {
		return s, ErrInvalidTransition
	}
	if !s.errors.Valid() {
		return s, ErrSubmitDisabled
	}
	next := s
	next.status = StatusSubmitting
	next.message = ""
	return next, nil
}

// Acknowledge moves Submitting -> Succeeded and clears every field except
// the prefilled loan amount.
func Acknowledge(s State, message string) (State, error) {
	if s.status != StatusSubmitting {
		return s, ErrInvalidTransition
	}
	next := s
	next.status = StatusSucceeded
	next.input = service.ApplicationInput{LoanAmount: s.prefill}
	next.message = message
	return next.revalidated(), nil
}

// Fail moves Submitting -> Failed with a short message. Field values are kept.
func Fail(s State, message string) (State, error) {
	if s.status != StatusSubmitting {
		return s, ErrInvalidTransition
	}
	next := s
	next.status = StatusFailed
	next.message = message
	return next, nil
}

// Reject moves Submitting -> Editing with field errors reported by the server.
func Reject(s State, fieldErrors valueobject.FieldErrors) (State, error) {
	if s.status != StatusSubmitting {
		return s, ErrInvalidTransition
	}
	next := s
	next.status = StatusEditing
	next.errors = make(valueobject.FieldErrors, len(fieldErrors))
	for f, msg := range fieldErrors {
		next.errors[f] = msg
	}
	return next, nil
}

// Dismiss closes the success confirmation: Succeeded -> Editing.
func Dismiss(s State) (State, error) {
	if s.status != StatusSucceeded {
		return s, ErrInvalidTransition
	}
	next := s
	next.status = StatusEditing
	next.message = ""
	return next, nil
}

// Edit returns a Failed form to Editing without changing any field.
func Edit(s State) (State, error) {
	if s.status != StatusFailed {
		return s, ErrInvalidTransition
	}
	next := s
	next.status = StatusEditing
	next.message = ""
	return next, nil
}

func (s State) Status() Status { return s.status }
func (s State) Input() service.ApplicationInput { return s.input }
func (s State) Value(f valueobject.Field) string { return s.input.Get(f) }
func (s State) Message() string { return s.message }
func (s State) PrefillAmount() string { return s.prefill }

// Errors returns a copy of the current field errors.
func (s State) Errors() valueobject.FieldErrors {
	out := make(valueobject.FieldErrors, len(s.errors))
	for f, msg := range s.errors {
		out[f] = msg
	}
	return out
}

// CanSubmit reports whether the submit control is enabled.
func (s State) CanSubmit() bool {
	return s.status == StatusEditing && s.errors.Valid()
}

func (s State) revalidated() State {
	s.errors = s.validator.Validate(s.input, s.asOf)
	return s
}
