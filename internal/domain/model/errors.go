package model

import (
	"errors"

	"github.com/bibbank/loanintake/internal/domain/valueobject"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrStoreUnavailable    = errors.New("loan store unavailable")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrApplicationNotFound = errors.New("loan application not found")
	ErrInvalidTerms        = errors.New("invalid loan terms")
)

// ValidationError carries the per-field messages of a rejected application.
type ValidationError struct {
	Fields valueobject.FieldErrors
}

// NewValidationError wraps field errors. The map is copied.
func NewValidationError(fields valueobject.FieldErrors) *ValidationError {
	cp := make(valueobject.FieldErrors, len(fields))
	for k, v := range fields {
		cp[k] = v
	}
	return &ValidationError{Fields: cp}
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Fields.String()
}

func (e *ValidationError) Unwrap() error { return ErrValidation }
