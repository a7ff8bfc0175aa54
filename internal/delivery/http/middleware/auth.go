package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	h "eventscape/internal/delivery/http/helpers"
	"eventscape/internal/domain"
)

type contextKey string

const identityKey contextKey = "identity"

// SessionCookie is the cookie that carries the session token for browsers.
const SessionCookie = "session"

// IdentityResolver loads the identity for an authenticated user ID.
type IdentityResolver interface {
	Resolve(ctx context.Context, userID string) (*domain.Identity, error)
}

// SetIdentity returns a context carrying the resolved identity. Used by auth middleware.
func SetIdentity(ctx context.Context, id *domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the authenticated identity from the context, if present.
func IdentityFromContext(ctx context.Context) (*domain.Identity, bool) {
	id, ok := ctx.Value(identityKey).(*domain.Identity)
	return id, ok && id != nil
}

// UserIDFromContext returns the authenticated user ID from the context, if present.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := IdentityFromContext(ctx)
	if !ok {
		return "", false
	}
	return id.UserID, true
}

// sessionToken reads the token from a Bearer Authorization header, falling back
// to the session cookie. A malformed Authorization header is an error even if a
// cookie is present.
func sessionToken(r *http.Request) (string, string) {
	if auth := r.Header.Get("Authorization"); auth != "" {
		const prefix = "Bearer "
		if !strings.HasPrefix(auth, prefix) {
			return "", "invalid authorization format"
		}
		token := strings.TrimSpace(auth[len(prefix):])
		if token == "" {
			return "", "missing token"
		}
		return token, ""
	}
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value, ""
	}
	return "", "missing credentials"
}

// RequireAuth returns a wrapper that validates the session token, resolves the
// user's identity and stores it in the request context.
// If the token is missing or invalid, it responds with 401 and does not call next.
func RequireAuth(verifier domain.TokenVerifier, resolver IdentityResolver, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token, problem := sessionToken(r)
			if problem != "" {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, problem)
				return
			}
			userID, err := verifier.Verify(token)
			if err != nil {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid or expired token")
				return
			}
			identity, err := resolver.Resolve(r.Context(), userID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unknown user")
					return
				}
				logger.ErrorContext(r.Context(), "resolve identity failed", "user_id", userID, "err", err)
				h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, "internal server error")
				return
			}
			r = r.WithContext(SetIdentity(r.Context(), identity))
			next(w, r)
		}
	}
}
