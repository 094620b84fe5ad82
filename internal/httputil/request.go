package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
)

// ParseJSON decodes JSON from the request body into the given destination,
// writing the error response itself on failure. The body is capped at 16MB
// so base64 image and audio payloads fit while unbounded bodies are
// rejected with a proper 413.
func ParseJSON(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, 16<<20)

	decoder := json.NewDecoder(r.Body)
	// Unknown fields are tolerated; validation happens downstream in
	// the domain-specific validators.

	if err := decoder.Decode(dest); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			RespondError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return err
		}
		RespondError(w, http.StatusBadRequest, "invalid request body")
		return err
	}

	return nil
}
