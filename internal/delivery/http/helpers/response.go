package helpers

import (
	"encoding/json"
	"net/http"
)

// Error codes carried in APIError.Code.
const (
	ErrCodeBadRequest    = "bad_request"
	ErrCodeUnauthorized  = "unauthorized"
	ErrCodeForbidden     = "forbidden"
	ErrCodeNotFound      = "not_found"
	ErrCodeConflict      = "conflict"
	ErrCodeUnavailable   = "unavailable"
	ErrCodeInternalError = "internal_error"
)

// APIError describes why a request failed.
// swagger:model APIError
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIResponse wraps every JSON body. Exactly one of Data and Error is set.
// swagger:model APIResponse
type APIResponse struct {
	Data  any       `json:"data"`
	Error *APIError `json:"error"`
}

func WriteJSONSuccess(w http.ResponseWriter, statusCode int, data any) {
	writeEnvelope(w, statusCode, APIResponse{Data: data})
}

func WriteJSONError(w http.ResponseWriter, statusCode int, code, message string) {
	writeEnvelope(w, statusCode, APIResponse{Error: &APIError{Code: code, Message: message}})
}

// writeEnvelope ignores encode errors: the status line is already sent.
func writeEnvelope(w http.ResponseWriter, statusCode int, body APIResponse) {
	h := w.Header()
	h.Set("Content-Type", "application/json")
	h.Set("Cache-Control", "no-store")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}
