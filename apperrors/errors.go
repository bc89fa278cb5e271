// Package apperrors defines the error taxonomy shared by the service and the
// HTTP layer. Lower layers (store, security) return sentinel values; the
// service wraps business-rule violations into these types and handlers map
// them onto the wire envelope.
package apperrors

import (
	"errors"
	"net/http"
)

// Error is a business error with a fixed HTTP mapping. Err carries the
// underlying cause for logging; it never reaches the wire on its own.
type Error struct {
	Status int
	Type   string
	Detail string
	Err    error
}

func (e *Error) Error() string {
	return e.Detail
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(status int, typ, detail string) *Error {
	return &Error{Status: status, Type: typ, Detail: detail}
}

// Validation covers malformed input, password policy and mismatch failures.
func Validation(detail string) *Error {
	return newError(http.StatusBadRequest, "value_error", detail)
}

// Duplicate covers email/username uniqueness conflicts.
func Duplicate(detail string) *Error {
	return newError(http.StatusBadRequest, "value_error", detail)
}

// BadRequest covers business-rule rejections that are not validation of a
// single field (wrong current password, self-delete, self-deactivate).
func BadRequest(detail string) *Error {
	return newError(http.StatusBadRequest, "http_error", detail)
}

// Unauthorized covers missing/invalid/expired credentials, inactive accounts
// and bad login credentials.
func Unauthorized(detail string) *Error {
	return newError(http.StatusUnauthorized, "http_error", detail)
}

// Forbidden covers authenticated principals lacking a required role.
func Forbidden(detail string) *Error {
	return newError(http.StatusForbidden, "http_error", detail)
}

// NotFound covers lookups that match no live record.
func NotFound(detail string) *Error {
	return newError(http.StatusNotFound, "http_error", detail)
}

// TooManyRequests covers the login cooldown.
func TooManyRequests(detail string) *Error {
	return newError(http.StatusTooManyRequests, "http_error", detail)
}

// Internal wraps an unexpected failure. The cause is kept for logging and for
// debug-mode responses; the default wire detail stays generic.
func Internal(err error) *Error {
	return &Error{
		Status: http.StatusInternalServerError,
		Type:   "internal_error",
		Detail: "Internal server error",
		Err:    err,
	}
}

// FromError normalizes any error into an *Error, defaulting to Internal.
func FromError(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}
