package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeInvalid      ErrorCode = "INVALID"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodePartial      ErrorCode = "PARTIAL"
	ErrCodeInternal     ErrorCode = "INTERNAL"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain errors.
var (
	ErrUserNotFound     = NewError(ErrCodeNotFound, "user not found")
	ErrTaskNotFound     = NewError(ErrCodeNotFound, "task not found")
	ErrSubTaskNotFound  = NewError(ErrCodeNotFound, "sub-task not found")
	ErrJournalNotFound  = NewError(ErrCodeNotFound, "journal not found")
	ErrObjectNotFound   = NewError(ErrCodeNotFound, "object not found")
	ErrObjectExists     = NewError(ErrCodeConflict, "object already exists")
	ErrSessionNotFound  = NewError(ErrCodeNotFound, "session not found")
	ErrNotAuthenticated = NewError(ErrCodeUnauthorized, "user not authenticated")
	ErrUnauthorized     = NewError(ErrCodeUnauthorized, "unauthorized")
	ErrInvalidPayload   = NewError(ErrCodeInvalid, "invalid payload")
	ErrEmailTaken       = NewError(ErrCodeConflict, "email already registered")
	ErrVersionConflict  = NewError(ErrCodeConflict, "record was modified by another request")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var pErr *PartialError
	if errors.As(err, &pErr) {
		return code == ErrCodePartial
	}
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}

// StepError records one failed step of a multi-step operation.
type StepError struct {
	Step string
	Err  error
}

// PartialError reports that the main record was written but some follow-up steps failed.
// Nothing is rolled back.
type PartialError struct {
	Subject string
	Steps   []StepError
}

// Add records a failed step; nil errors are ignored.
func (e *PartialError) Add(step string, err error) {
	if err == nil {
		return
	}
	e.Steps = append(e.Steps, StepError{Step: step, Err: err})
}

// OrNil returns nil when no step failed so callers can return it unconditionally.
func (e *PartialError) OrNil() error {
	if e == nil || len(e.Steps) == 0 {
		return nil
	}
	return e
}

func (e *PartialError) Error() string {
	if e == nil || len(e.Steps) == 0 {
		return ""
	}
	parts := make([]string, 0, len(e.Steps))
	for _, s := range e.Steps {
		parts = append(parts, fmt.Sprintf("%s: %v", s.Step, s.Err))
	}
	return fmt.Sprintf("%s, but %s", e.Subject, strings.Join(parts, "; "))
}

func (e *PartialError) Unwrap() []error {
	if e == nil {
		return nil
	}
	errs := make([]error, 0, len(e.Steps))
	for _, s := range e.Steps {
		errs = append(errs, s.Err)
	}
	return errs
}

// Failed reports whether the named step is among the failures.
func (e *PartialError) Failed(step string) bool {
	if e == nil {
		return false
	}
	for _, s := range e.Steps {
		if s.Step == step {
			return true
		}
	}
	return false
}
