package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for the common failure categories. Wrapped inside
// *Error so callers can branch with errors.Is without inspecting codes.
var (
	ErrValidation        = errors.New("validation failed")
	ErrInvalidCredential = errors.New("invalid credential")
	ErrExternalService   = errors.New("external service error")
	ErrNotFound          = errors.New("resource not found")
	ErrForbidden         = errors.New("forbidden")
	ErrConflict          = errors.New("conflict")
	ErrInternal          = errors.New("internal error")
)

// Error is a structured application error carrying a stable machine code
// and the HTTP status it maps to.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation creates a 400 error for missing or malformed caller input.
func Validation(message string) *Error {
	return &Error{
		Code:    "VALIDATION_ERROR",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrValidation,
	}
}

// InvalidCredential creates a 401 error. The message is deliberately
// uniform for malformed and expired tokens so responses leak nothing
// about which check failed.
func InvalidCredential() *Error {
	return &Error{
		Code:    "AUTH_ERROR",
		Message: "could not validate credentials",
		Status:  http.StatusUnauthorized,
		Err:     ErrInvalidCredential,
	}
}

// ExternalService creates a 400 error for a failed provider interaction.
// The cause is kept for logging but never serialized to clients.
func ExternalService(service string, cause error) *Error {
	return &Error{
		Code:    "EXTERNAL_SERVICE_ERROR",
		Message: fmt.Sprintf("%s service error", service),
		Status:  http.StatusBadRequest,
		Err:     fmt.Errorf("%w: %w", ErrExternalService, cause),
	}
}

// NotFound creates a 404 error.
func NotFound(resource string) *Error {
	return &Error{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s not found", resource),
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// Forbidden creates a 403 error.
func Forbidden(message string) *Error {
	return &Error{
		Code:    "PERMISSION_DENIED",
		Message: message,
		Status:  http.StatusForbidden,
		Err:     ErrForbidden,
	}
}

// Conflict creates a 409 error.
func Conflict(message string) *Error {
	return &Error{
		Code:    "CONFLICT",
		Message: message,
		Status:  http.StatusConflict,
		Err:     ErrConflict,
	}
}

// Internal creates a 500 error with a redacted client message. The cause
// stays server-side only.
func Internal(cause error) *Error {
	return &Error{
		Code:    "INTERNAL_ERROR",
		Message: "internal server error",
		Status:  http.StatusInternalServerError,
		Err:     fmt.Errorf("%w: %w", ErrInternal, cause),
	}
}

// StatusOf returns the HTTP status for err, falling back to 500 for
// anything that is not an *Error.
func StatusOf(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	return http.StatusInternalServerError
}

// From returns err as an *Error, wrapping unknown errors as Internal so
// unexpected failures never reach clients with their raw message.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}
