package store

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a persistence error with an HTTP status code.
type Error struct {
	Code    int    // HTTP status code
	Message string // User-facing message
	Err     error  // Underlying error (optional)
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same code, so messages customised with
// WithMessage still satisfy errors.Is(err, ErrNotFound).
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPCode returns the HTTP status code associated with this error.
func (e *Error) HTTPCode() int { return e.Code }

// WithMessage returns a new error with a custom message.
func (e *Error) WithMessage(msg string) *Error {
	return &Error{
		Code:    e.Code,
		Message: msg,
		Err:     e.Err,
	}
}

// Sentinel errors.
var (
	ErrNotFound = &Error{
		Code:    http.StatusNotFound,
		Message: "resource not found",
	}

	ErrAlreadyExists = &Error{
		Code:    http.StatusConflict,
		Message: "resource already exists",
	}

	ErrInvalidInput = &Error{
		Code:    http.StatusBadRequest,
		Message: "invalid input",
	}
)

// UniqueViolation reports that a write collided with a unique constraint.
// Field is the domain field key of the offending column (e.g. "customDomain").
type UniqueViolation struct {
	Field string
	Err   error
}

func (e *UniqueViolation) Error() string {
	return fmt.Sprintf("unique constraint violated on %s", e.Field)
}

// Unwrap lets errors.Is(err, ErrAlreadyExists) match.
func (e *UniqueViolation) Unwrap() []error {
	return []error{ErrAlreadyExists, e.Err}
}

// AsUniqueViolation extracts a UniqueViolation from err.
func AsUniqueViolation(err error) (*UniqueViolation, bool) {
	var uv *UniqueViolation
	if errors.As(err, &uv) {
		return uv, true
	}
	return nil, false
}
