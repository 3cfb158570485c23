package handler

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/esther/internal/apperror"
	"github.com/sakif/esther/internal/form"
)

const maxBodyBytes = 1 << 20

// readValues returns the fields of a write request. Form bodies, either
// urlencoded or multipart, are the primary format. A flat JSON object is
// accepted too, with its scalar values converted to the strings a form
// would carry. Query parameters are never read.
func readValues(w http.ResponseWriter, r *http.Request) (form.Values, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		return readJSONValues(r.Body)
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
			return nil, apperror.InvalidParameters()
		}
		// Uploaded files are not fields of any resource.
		r.MultipartForm.RemoveAll()
		return form.FromURLValues(r.PostForm), nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, apperror.InvalidParameters()
	}
	return form.FromURLValues(r.PostForm), nil
}

func readJSONValues(body io.Reader) (form.Values, error) {
	var raw map[string]any
	if err := json.NewDecoder(body).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return form.Values{}, nil
		}
		return nil, apperror.InvalidParameters()
	}

	values := make(form.Values, len(raw))
	for k, v := range raw {
		switch v := v.(type) {
		case nil:
			values[k] = ""
		case string:
			values[k] = v
		case bool:
			values[k] = strconv.FormatBool(v)
		case float64:
			values[k] = strconv.FormatFloat(v, 'f', -1, 64)
		default:
			// Nested objects and arrays have no form equivalent.
			return nil, apperror.InvalidParameters()
		}
	}
	return values, nil
}

// idParam reads a positive integer URL parameter. Anything else names a
// resource that cannot exist.
func idParam(r *http.Request, name, resource string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.NotFound(resource, raw)
	}
	return id, nil
}
