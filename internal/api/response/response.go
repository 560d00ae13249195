// Package response writes the JSON bodies shared by every endpoint.
package response

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
)

// RetryAfterSeconds is advertised on 503 responses. Store outages are usually brief and
// reconciliation is idempotent, so clients may simply repeat the call.
const RetryAfterSeconds = 5

// ErrorResponse is the body of every non-2xx response.
// Details is a string, or a field-to-message map for validation failures.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// RespondJSON encodes data with the given status. A nil data writes the status only.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode JSON response: %v", err)
	}
}

// RespondError writes an ErrorResponse.
//
//	response.RespondError(w, http.StatusBadRequest, "validation failed", vErr.Fields)
//	response.RespondError(w, http.StatusNotFound, "property not found", "")
func RespondError(w http.ResponseWriter, status int, message string, details any) {
	RespondJSON(w, status, ErrorResponse{Error: message, Details: details})
}

// RespondUnavailable writes a 503 ErrorResponse with a Retry-After header.
func RespondUnavailable(w http.ResponseWriter, message string, details any) {
	w.Header().Set("Retry-After", strconv.Itoa(RetryAfterSeconds))
	RespondError(w, http.StatusServiceUnavailable, message, details)
}
