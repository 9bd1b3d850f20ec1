package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error into the taxonomy the response formatter and the
// audit recorder both understand. Handlers and services return *Error values;
// string sniffing on error text is never used to route behavior.
type Kind string

const (
	Unauthenticated Kind = "UNAUTHENTICATED"
	Forbidden       Kind = "FORBIDDEN"
	Validation      Kind = "VALIDATION_ERROR"
	RateLimited     Kind = "RATE_LIMITED"
	NotFound        Kind = "NOT_FOUND"
	Conflict        Kind = "CONFLICT"
	Storage         Kind = "STORAGE_FAILURE"
	Unknown         Kind = "UNKNOWN"
)

// Violation is a single field-level validation failure.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error carries a kind, a caller-safe message and an optional cause. For
// Validation errors it also carries the full list of field violations.
type Error struct {
	Kind       Kind
	Message    string
	Violations []Violation
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an Error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap creates an Error of the given kind with a cause preserved for
// server-side logs. The caller-visible message never includes the cause.
func Wrap(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// NewValidation creates a Validation error carrying every violation found.
func NewValidation(violations []Violation) *Error {
	return &Error{
		Kind:       Validation,
		Message:    "request validation failed",
		Violations: violations,
	}
}

// KindOf extracts the Kind from any error, classifying foreign errors as
// Unknown.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return Unknown
}

// From returns err as an *Error, wrapping foreign errors as Unknown.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(Unknown, "internal server error", err)
}

// HTTPStatus maps a kind to the status code the response formatter uses.
func HTTPStatus(kind Kind) int {
	switch kind {
	case Unauthenticated:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case Validation:
		return http.StatusBadRequest
	case RateLimited:
		return http.StatusTooManyRequests
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	case Storage, Unknown:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
