// Package apperror defines the application's error taxonomy.
//
// Services return these errors; the HTTP layer is the only place that
// turns them into status codes and payloads.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("Validation Error")
	ErrConflict          = errors.New("conflict")
	ErrForbidden         = errors.New("forbidden")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrEmptyBody         = errors.New("empty body")
	ErrInvalidParameters = errors.New("invalid parameters")
)

// Messages returned verbatim to API clients under the "__all__" key.
const (
	EmptyBodyMessage         = "Request body must contain data."
	InvalidParametersMessage = "Invalid parameters in request body."
)

type AppError struct {
	Err     error               // actual error
	Message string              // Human-readable error message
	Field   string              // Optional: field causing the error
	Fields  map[string][]string // Optional: every failing field with its messages
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// FieldErrors returns the per-field messages carried by the error.
// A single-field validation error is reported as a one-entry map.
func (e *AppError) FieldErrors() map[string][]string {
	if len(e.Fields) > 0 {
		return e.Fields
	}
	if e.Field != "" {
		return map[string][]string{e.Field: {e.Message}}
	}
	return nil
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Invalid wraps a set of per-field validation messages.
func Invalid(fields map[string][]string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: "validation failed",
		Fields:  fields,
	}
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// EmptyBody reports a write request that carried no fields at all.
func EmptyBody() *AppError {
	return &AppError{
		Err:     ErrEmptyBody,
		Message: EmptyBodyMessage,
	}
}

// InvalidParameters reports a write request naming fields the resource
// does not have. No field-level validation has run when this is returned.
func InvalidParameters() *AppError {
	return &AppError{
		Err:     ErrInvalidParameters,
		Message: InvalidParametersMessage,
	}
}
