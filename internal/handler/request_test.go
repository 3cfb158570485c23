package handler

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/esther/internal/apperror"
	"github.com/sakif/esther/internal/form"
)

func newBodyRequest(contentType, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPatch, "/api/1/lists/groceries?title=ignored", strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req
}

func TestReadValues(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		want        form.Values
	}{
		{
			name:        "form encoded",
			contentType: "application/x-www-form-urlencoded",
			body:        "title=Groceries&is_public=false&title=second",
			want:        form.Values{"title": "Groceries", "is_public": "false"},
		},
		{
			name:        "empty form",
			contentType: "application/x-www-form-urlencoded",
			body:        "",
			want:        form.Values{},
		},
		{
			name:        "json object",
			contentType: "application/json; charset=utf-8",
			body:        `{"title":"Groceries","is_public":false,"due":null,"count":3}`,
			want:        form.Values{"title": "Groceries", "is_public": "false", "due": "", "count": "3"},
		},
		{
			name:        "empty json body",
			contentType: "application/json",
			body:        "",
			want:        form.Values{},
		},
		{
			name:        "empty json object",
			contentType: "application/json",
			body:        "{}",
			want:        form.Values{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readValues(httptest.NewRecorder(), newBodyRequest(tt.contentType, tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadValues_Multipart(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("title", "Groceries"))
	require.NoError(t, mw.WriteField("is_public", "false"))
	require.NoError(t, mw.Close())

	got, err := readValues(httptest.NewRecorder(), newBodyRequest(mw.FormDataContentType(), body.String()))
	require.NoError(t, err)
	assert.Equal(t, form.Values{"title": "Groceries", "is_public": "false"}, got)
}

func TestReadValues_RejectsMalformedMultipart(t *testing.T) {
	// No boundary parameter.
	_, err := readValues(httptest.NewRecorder(), newBodyRequest("multipart/form-data", "title=Groceries"))
	assert.ErrorIs(t, err, apperror.ErrInvalidParameters)
}

func TestReadValues_RejectsUnusableJSON(t *testing.T) {
	for _, body := range []string{`{"title":`, `["a"]`, `{"tags":["a"]}`, `{"list":{"id":1}}`} {
		_, err := readValues(httptest.NewRecorder(), newBodyRequest("application/json", body))
		assert.ErrorIs(t, err, apperror.ErrInvalidParameters, body)
	}
}

func TestIDParam(t *testing.T) {
	withParam := func(v string) *http.Request {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("ownerID", v)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	id, err := idParam(withParam("42"), "ownerID", "user")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, bad := range []string{"abc", "0", "-3", ""} {
		_, err := idParam(withParam(bad), "ownerID", "user")
		assert.ErrorIs(t, err, apperror.ErrNotFound, bad)
	}
}
