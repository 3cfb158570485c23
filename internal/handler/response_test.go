package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sakif/esther/internal/apperror"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{
			name:     "empty body",
			err:      apperror.EmptyBody(),
			wantCode: http.StatusBadRequest,
			wantBody: `{"__all__":["Request body must contain data."]}`,
		},
		{
			name:     "unknown parameters",
			err:      fmt.Errorf("wrapped: %w", apperror.InvalidParameters()),
			wantCode: http.StatusBadRequest,
			wantBody: `{"__all__":["Invalid parameters in request body."]}`,
		},
		{
			name:     "field errors",
			err:      apperror.Invalid(map[string][]string{"title": {"This field is required."}}),
			wantCode: http.StatusUnprocessableEntity,
			wantBody: `{"title":["This field is required."]}`,
		},
		{
			name:     "single field error",
			err:      apperror.ValidationFailed("title", "Invalid title: taken."),
			wantCode: http.StatusUnprocessableEntity,
			wantBody: `{"title":["Invalid title: taken."]}`,
		},
		{
			name:     "not found",
			err:      fmt.Errorf("service: %w", apperror.NotFound("list", "groceries")),
			wantCode: http.StatusNotFound,
			wantBody: `{"error":"not_found","message":"list not found with id groceries"}`,
		},
		{
			name:     "forbidden",
			err:      apperror.Forbidden("no"),
			wantCode: http.StatusForbidden,
			wantBody: `{"error":"forbidden","message":"no"}`,
		},
		{
			name:     "unauthorized",
			err:      apperror.Unauthorized("who are you"),
			wantCode: http.StatusUnauthorized,
			wantBody: `{"error":"unauthorized","message":"who are you"}`,
		},
		{
			name:     "conflict",
			err:      apperror.Conflict("user", "a@b.c"),
			wantCode: http.StatusConflict,
			wantBody: `{"error":"conflict","message":"user conflict with id a@b.c"}`,
		},
		{
			name:     "unknown error hides details",
			err:      errors.New("sqlite: database is locked"),
			wantCode: http.StatusInternalServerError,
			wantBody: `{"error":"internal_error","message":"An internal error occurred"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			writeError(rr, tt.err)

			assert.Equal(t, tt.wantCode, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.wantBody, rr.Body.String())
		})
	}
}
