// Package apperror defines the classified errors that travel from services
// and middleware up to the single HTTP error writer.
package apperror

import (
	"errors"
	"net/http"
)

// Kind classifies an application error
type Kind string

const (
	KindValidation      Kind = "validation_failed"
	KindNotFound        Kind = "not_found"
	KindBadRequest      Kind = "bad_request"
	KindTooManyRequests Kind = "too_many_requests"
	KindInternal        Kind = "internal"
)

// InternalMessage replaces the detail of every unexpected failure
const InternalMessage = "Internal server error"

// Error carries a client-facing message together with the HTTP status the
// boundary should answer with. Err holds the underlying cause, if any, and is
// never shown to clients.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Errors  []string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Validation reports every rule a payload violated
func Validation(messages []string) *Error {
	return &Error{
		Kind:    KindValidation,
		Status:  http.StatusBadRequest,
		Message: "Validation error",
		Errors:  messages,
	}
}

// NotFound reports a missing resource, e.g. NotFound("Product")
func NotFound(resource string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Status:  http.StatusNotFound,
		Message: resource + " not found",
	}
}

// BadRequest reports malformed input that validation did not cover
func BadRequest(message string) *Error {
	return &Error{
		Kind:    KindBadRequest,
		Status:  http.StatusBadRequest,
		Message: message,
	}
}

// TooManyRequests reports a request rejected by admission control
func TooManyRequests(message string) *Error {
	return &Error{
		Kind:    KindTooManyRequests,
		Status:  http.StatusTooManyRequests,
		Message: message,
	}
}

// Internal wraps an unexpected failure
func Internal(err error) *Error {
	return &Error{
		Kind:    KindInternal,
		Status:  http.StatusInternalServerError,
		Message: InternalMessage,
		Err:     err,
	}
}

// As returns the first *Error in err's chain
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// StatusOf returns the status an error maps to. Untyped errors are 500.
func StatusOf(err error) int {
	if appErr, ok := As(err); ok && appErr.Status != 0 {
		return appErr.Status
	}
	return http.StatusInternalServerError
}

// IsKind reports whether err carries the given kind
func IsKind(err error, kind Kind) bool {
	appErr, ok := As(err)
	return ok && appErr.Kind == kind
}

// IsNotFound reports whether err is a NotFound error
func IsNotFound(err error) bool {
	return IsKind(err, KindNotFound)
}
