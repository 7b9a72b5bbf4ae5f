/*
Package req provides helper functions for HTTP request parsing and data binding.

It decodes JSON bodies sent to the local portal, enforcing the content type, a body size
limit, and a single JSON document per request.
*/
package req

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"complaintportal/internal/pkg/errs"
)

// MaxBodySize caps a JSON request body (64 KB). Complaint descriptions are the largest field.
const MaxBodySize int64 = 64 << 10

// BindJSON binds the JSON body of r to dst.
func BindJSON(w http.ResponseWriter, r *http.Request, dst any) *errs.CustomError {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		return errs.NewError(errs.ErrUnsupportedMediaType)
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errs.NewError(errs.ErrRequestEntityTooLarge)
		}
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	if decoder.More() {
		return errs.NewError(errs.ErrExtraContentInBody)
	}

	return nil
}
