package types

import (
	"errors"
	"fmt"
)

// ErrorKind is the taxonomy of domain error kinds shared by every subsystem.
// It is not a Go error type itself — *Error wraps a Kind the way the
// teacher framework wraps an ErrorCode.
type ErrorKind string

const (
	ErrInvalidInput ErrorKind = "INVALID_INPUT"
	ErrNotFound     ErrorKind = "NOT_FOUND"
	ErrConflict     ErrorKind = "CONFLICT"
	ErrAuthFailed   ErrorKind = "AUTH_FAILED"
	ErrRateLimited  ErrorKind = "RATE_LIMITED"
	ErrTimeout      ErrorKind = "TIMEOUT"
	ErrInternal     ErrorKind = "INTERNAL_ERROR"
	ErrStorage      ErrorKind = "STORAGE_ERROR"
	ErrParse        ErrorKind = "PARSE_ERROR"
	ErrLock         ErrorKind = "LOCK_ERROR"
	ErrConfig       ErrorKind = "CONFIG_ERROR"
	ErrUnsupported  ErrorKind = "UNSUPPORTED"
)

// Error is the structured error value returned by every port and service in
// cortex. It carries a Kind for programmatic dispatch (errors.Is/As), a
// human message, and an optional wrapped cause.
type Error struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Cause   error     `json:"-"`
}

// NewError creates a new *Error with the given kind and message.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Errorf creates a new *Error with a formatted message.
func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap exposes the wrapped cause for errors.Is / errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithCause attaches the underlying cause and returns the receiver.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// Is allows errors.Is(err, types.NewError(types.ErrNotFound, "")) style
// comparisons by Kind alone, ignoring Message and Cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// KindOf extracts the ErrorKind from err, or "" if err does not wrap *Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsRetryable reports whether the error kind is one that local bounded
// retry is appropriate for (§7): transient storage errors, lock
// contention, and timeouts on idempotent operations. Callers that know an
// operation is non-idempotent should not rely on this alone.
func IsRetryable(err error) bool {
	switch KindOf(err) {
	case ErrStorage, ErrTimeout, ErrLock:
		return true
	default:
		return false
	}
}
