package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/esther/internal/apperror"
)

// ErrorResponse is the error format for authentication, authorization and
// lookup failures:
//
//	{"error": "not_found", "message": "list not found with id groceries"}
//
// Request body problems use the form error format instead, a map from
// field name to messages, with body-wide problems under "__all__".
type ErrorResponse struct {
	Error   string `json:"error"`   // Machine-readable error type (e.g., "not_found")
	Message string `json:"message"` // Human-readable description
}

// allFields keys messages that concern the request body as a whole.
const allFields = "__all__"

// writeJSON sends a JSON response with the given status code.
// Headers must be set before the body is written.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps an error to a status code and payload:
//
//	ErrEmptyBody, ErrInvalidParameters → 400 {"__all__": [msg]}
//	ErrValidation                      → 422 {field: [msgs]}
//	ErrUnauthorized                    → 401
//	ErrForbidden                       → 403
//	ErrNotFound                        → 404
//	ErrConflict                        → 409
//	anything else                      → 500, details withheld
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
		return
	}

	switch {
	case errors.Is(err, apperror.ErrEmptyBody), errors.Is(err, apperror.ErrInvalidParameters):
		writeJSON(w, http.StatusBadRequest, map[string][]string{allFields: {appErr.Message}})
		return
	case errors.Is(err, apperror.ErrValidation):
		fields := appErr.FieldErrors()
		if fields == nil {
			fields = map[string][]string{allFields: {appErr.Message}}
		}
		writeJSON(w, http.StatusUnprocessableEntity, fields)
		return
	}

	status := http.StatusInternalServerError
	errorType := "internal_error"
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		status = http.StatusNotFound
		errorType = "not_found"
	case errors.Is(err, apperror.ErrForbidden):
		status = http.StatusForbidden
		errorType = "forbidden"
	case errors.Is(err, apperror.ErrUnauthorized):
		status = http.StatusUnauthorized
		errorType = "unauthorized"
	case errors.Is(err, apperror.ErrConflict):
		status = http.StatusConflict
		errorType = "conflict"
	}

	writeJSON(w, status, ErrorResponse{
		Error:   errorType,
		Message: appErr.Message,
	})
}
