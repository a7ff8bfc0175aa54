package helpers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"eventscape/internal/domain"
)

// WriteServiceError maps a service error to its HTTP status and writes the
// envelope. Only unexpected errors are logged, and their detail never reaches
// the client.
func WriteServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, reason(err, domain.ErrInvalidInput))
	case errors.Is(err, domain.ErrInvalidReference):
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, "referenced record does not exist")
	case errors.Is(err, domain.ErrInvalidCredentials):
		WriteJSONError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "invalid credentials")
	case errors.Is(err, domain.ErrUnauthorized):
		WriteJSONError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrForbidden):
		WriteJSONError(w, http.StatusForbidden, ErrCodeForbidden, "forbidden")
	case errors.Is(err, domain.ErrNotFound):
		WriteJSONError(w, http.StatusNotFound, ErrCodeNotFound, "not found")
	case errors.Is(err, domain.ErrDuplicateEmail):
		WriteJSONError(w, http.StatusConflict, ErrCodeConflict, "email already in use")
	case errors.Is(err, domain.ErrEventFull):
		WriteJSONError(w, http.StatusConflict, ErrCodeConflict, "event is at capacity")
	case errors.Is(err, domain.ErrInvitationClosed):
		WriteJSONError(w, http.StatusConflict, ErrCodeConflict, "invitation is no longer pending")
	case errors.Is(err, domain.ErrConflict):
		WriteJSONError(w, http.StatusConflict, ErrCodeConflict, "record already exists")
	default:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		WriteJSONError(w, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")
	}
}

// reason strips the sentinel prefix from an "invalid input: <reason>" error.
func reason(err, sentinel error) string {
	msg := err.Error()
	if i := strings.Index(msg, sentinel.Error()+": "); i >= 0 {
		return msg[i+len(sentinel.Error())+2:]
	}
	return msg
}
