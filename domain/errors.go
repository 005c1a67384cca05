package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound    ErrorCode = "NOT_FOUND"
	ErrCodeInvalid     ErrorCode = "INVALID"
	ErrCodePersistence ErrorCode = "PERSISTENCE"
	ErrCodeInternal    ErrorCode = "INTERNAL"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Field   string
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

// Is matches errors carrying the same code and message, so sentinel values
// keep working after being wrapped with extra context.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
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

// NewValidationError builds an INVALID error bound to the offending field.
func NewValidationError(field, message string) *Error {
	return &Error{Code: ErrCodeInvalid, Field: field, Message: message}
}

// Common domain errors.
var (
	ErrProjectNotFound = NewError(ErrCodeNotFound, "project not found")
	ErrTodoNotFound    = NewError(ErrCodeNotFound, "todo not found")
	ErrInvalidPayload  = NewError(ErrCodeInvalid, "invalid payload")
)

// NotFound annotates a sentinel not-found error with the id that missed.
func NotFound(sentinel *Error, id string) *Error {
	return &Error{
		Code:    ErrCodeNotFound,
		Message: sentinel.Message,
		Err:     fmt.Errorf("id %q", id),
	}
}

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}

// IsValidation reports whether err is an INVALID domain error.
func IsValidation(err error) bool {
	return IsDomainError(err, ErrCodeInvalid)
}

// IsNotFound reports whether err is a NOT_FOUND domain error.
func IsNotFound(err error) bool {
	return IsDomainError(err, ErrCodeNotFound)
}
