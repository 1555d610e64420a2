package response

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"ecotrace/internal/services"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// DecodeJSON decodes the request body into dst. Malformed bodies, unknown
// fields and trailing data are ValidationErrors.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return services.NewValidationError("request body is required", err)
		}
		return services.NewValidationError("invalid request body", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return services.NewValidationError("request body must contain a single JSON object", err)
	}
	return nil
}
