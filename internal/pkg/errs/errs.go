// Package errs defines the error kinds shared across the admin console and their
// mapping to HTTP status codes.
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors. Wrap them with fmt.Errorf("...: %w", ErrX) or use the helpers below.
var (
	ErrValidation      = errors.New("validation failed")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
)

// Error kinds as used by error reporting configuration
const (
	KindValidation     = "validation"
	KindAuthentication = "authentication"
	KindAuthorization  = "authorization"
	KindNotFound       = "not_found"
	KindConflict       = "conflict"
	KindInternal       = "internal"
)

// ValidationError carries per field failures
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Unwrap makes errors.Is(err, ErrValidation) hold
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Validation builds a ValidationError
func Validation(message string, fields map[string]string) error {
	return &ValidationError{Message: message, Fields: fields}
}

// NotFound wraps ErrNotFound with a formatted message
func NotFound(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
}

// Forbidden wraps ErrForbidden with a formatted message
func Forbidden(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrForbidden)
}

// Conflict wraps ErrConflict with a formatted message
func Conflict(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrConflict)
}

// Invalid wraps ErrValidation with a formatted message and no field details
func Invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrValidation)
}

// Kind classifies err
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrUnauthenticated):
		return KindAuthentication
	case errors.Is(err, ErrForbidden):
		return KindAuthorization
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrConflict):
		return KindConflict
	default:
		return KindInternal
	}
}

// Status maps err to an HTTP status code
func Status(err error) int {
	switch Kind(err) {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
