package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"eventscape/internal/delivery/http/helpers"
	"eventscape/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTokenVerifier implements domain.TokenVerifier for tests.
type fakeTokenVerifier struct {
	userID    string
	err       error
	lastToken string
}

func (f *fakeTokenVerifier) Verify(token string) (string, error) {
	f.lastToken = token
	if f.err != nil {
		return "", f.err
	}
	return f.userID, nil
}

// fakeResolver implements IdentityResolver for tests.
type fakeResolver struct {
	err error
}

func (f *fakeResolver) Resolve(_ context.Context, userID string) (*domain.Identity, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Identity{UserID: userID, Email: userID + "@example.com", NotificationSetting: domain.NotifyInApp}, nil
}

func TestRequireAuth(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	tests := []struct {
		name          string
		authHeader    string
		cookie        string
		verifier      *fakeTokenVerifier
		resolver      *fakeResolver
		wantStatus    int
		wantBodyCode  string
		wantToken     string
		wantContextID string
	}{
		{
			name:          "valid bearer token sets identity and calls next",
			authHeader:    "Bearer valid-token",
			verifier:      &fakeTokenVerifier{userID: "user-123"},
			resolver:      &fakeResolver{},
			wantStatus:    http.StatusOK,
			wantToken:     "valid-token",
			wantContextID: "user-123",
		},
		{
			name:          "session cookie is accepted",
			cookie:        "cookie-token",
			verifier:      &fakeTokenVerifier{userID: "user-456"},
			resolver:      &fakeResolver{},
			wantStatus:    http.StatusOK,
			wantToken:     "cookie-token",
			wantContextID: "user-456",
		},
		{
			name:          "header wins over cookie",
			authHeader:    "Bearer header-token",
			cookie:        "cookie-token",
			verifier:      &fakeTokenVerifier{userID: "user-123"},
			resolver:      &fakeResolver{},
			wantStatus:    http.StatusOK,
			wantToken:     "header-token",
			wantContextID: "user-123",
		},
		{
			name:         "no credentials",
			verifier:     &fakeTokenVerifier{userID: "user-123"},
			resolver:     &fakeResolver{},
			wantStatus:   http.StatusUnauthorized,
			wantBodyCode: helpers.ErrCodeUnauthorized,
		},
		{
			name:         "invalid authorization format no Bearer prefix",
			authHeader:   "Basic abc",
			cookie:       "cookie-token",
			verifier:     &fakeTokenVerifier{userID: "user-123"},
			resolver:     &fakeResolver{},
			wantStatus:   http.StatusUnauthorized,
			wantBodyCode: helpers.ErrCodeUnauthorized,
		},
		{
			name:         "empty token after Bearer",
			authHeader:   "Bearer ",
			verifier:     &fakeTokenVerifier{userID: "user-123"},
			resolver:     &fakeResolver{},
			wantStatus:   http.StatusUnauthorized,
			wantBodyCode: helpers.ErrCodeUnauthorized,
		},
		{
			name:         "verifier returns error",
			authHeader:   "Bearer bad-token",
			verifier:     &fakeTokenVerifier{err: errors.New("invalid or expired token")},
			resolver:     &fakeResolver{},
			wantStatus:   http.StatusUnauthorized,
			wantBodyCode: helpers.ErrCodeUnauthorized,
		},
		{
			name:         "deleted user",
			authHeader:   "Bearer valid-token",
			verifier:     &fakeTokenVerifier{userID: "user-123"},
			resolver:     &fakeResolver{err: domain.ErrNotFound},
			wantStatus:   http.StatusUnauthorized,
			wantBodyCode: helpers.ErrCodeUnauthorized,
		},
		{
			name:         "resolver failure",
			authHeader:   "Bearer valid-token",
			verifier:     &fakeTokenVerifier{userID: "user-123"},
			resolver:     &fakeResolver{err: errors.New("connection reset")},
			wantStatus:   http.StatusInternalServerError,
			wantBodyCode: helpers.ErrCodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nextCalled := false
			var captured *domain.Identity
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				captured, _ = IdentityFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})
			handler := RequireAuth(tt.verifier, tt.resolver, logger)(next)

			req := httptest.NewRequest(http.MethodGet, "http://test/users/me", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: SessionCookie, Value: tt.cookie})
			}
			rr := httptest.NewRecorder()

			handler(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, "status code")
			assert.Equal(t, tt.wantStatus == http.StatusOK, nextCalled, "next handler called")
			if tt.wantContextID != "" {
				require.NotNil(t, captured)
				assert.Equal(t, tt.wantContextID, captured.UserID)
				assert.Equal(t, tt.wantToken, tt.verifier.lastToken)
			}
			if tt.wantBodyCode != "" {
				var envelope helpers.APIResponse
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
				require.NotNil(t, envelope.Error)
				assert.Equal(t, tt.wantBodyCode, envelope.Error.Code)
			}
		})
	}
}

func TestUserIDFromContext(t *testing.T) {
	_, ok := UserIDFromContext(context.Background())
	assert.False(t, ok)

	ctx := SetIdentity(context.Background(), &domain.Identity{UserID: "user-1"})
	id, ok := UserIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "user-1", id)
}
