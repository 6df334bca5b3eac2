package esign

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrAlreadyVoided     = errors.New("signing request is already voided")
	ErrAlreadySigned     = errors.New("signer has already signed")
	ErrOutOfTurn         = errors.New("it is not this signer's turn")
	ErrIncompleteFields  = errors.New("required fields are missing")
	ErrConflict          = errors.New("conflict")
	ErrTransient         = errors.New("temporary failure, try again")
)

// ErrInvalidLink is returned when no signer holds a token.
var ErrInvalidLink = fmt.Errorf("invalid or expired signing link: %w", ErrNotFound)

type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

type IncompleteFieldsError struct {
	FieldIDs []string
}

func (e *IncompleteFieldsError) Error() string {
	return fmt.Sprintf("required fields are missing: %s", strings.Join(e.FieldIDs, ", "))
}

func (e *IncompleteFieldsError) Unwrap() error { return ErrIncompleteFields }

// TransientError wraps a store, mail or network failure the caller may retry.
type TransientError struct {
	Op  string
	Err error
}

func NewTransientError(op string, err error) *TransientError {
	return &TransientError{Op: op, Err: err}
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() []error { return []error{ErrTransient, e.Err} }

func transitionError(from RequestStatus, action string) error {
	return fmt.Errorf("cannot %s a %s signing request: %w", action, from, ErrInvalidTransition)
}
