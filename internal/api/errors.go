package api

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/wallet-roaster/internal/errors"
	"github.com/wallet-roaster/internal/logging"
	"github.com/wallet-roaster/internal/types"
)

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Error types.ServiceError `json:"error"`
}

// Client-facing messages for failures whose cause stays in the logs
const (
	msgFetchFailed   = "Failed to fetch wallet data. Please try again in a moment."
	msgInternalError = "An internal error occurred"
)

// respondError sends an error response.
func respondError(w http.ResponseWriter, statusCode int, code, message string, details map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{
		Error: types.ServiceError{
			Code:    code,
			Message: message,
			Details: details,
		},
	}

	json.NewEncoder(w).Encode(response)
}

// respondServiceError maps err to a status and body. User errors are echoed;
// anything else is logged with its cause and replaced by a generic message.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.GetHTTPStatusCode(err)
	body := apperrors.Categorize(err).ToServiceError()

	if apperrors.IsUserError(err) {
		respondError(w, status, body.Code, body.Message, body.Details)
		return
	}

	logging.FromContext(r.Context()).
		WithError(err).
		WithField("code", body.Code).
		Error("Request failed")

	message := msgInternalError
	if errors.Is(err, apperrors.ErrAllEndpointsExhausted) {
		message = msgFetchFailed
	}
	respondError(w, status, body.Code, message, nil)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// parseJSONBody parses JSON request body. Unknown fields are ignored since
// clients post the whole stats object they were shown.
func parseJSONBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}

const maxBodyBytes = 64 << 10

// Common error codes
const (
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeNotFound     = "NOT_FOUND"
)
