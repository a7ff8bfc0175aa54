package controllers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"eventscape/internal/delivery/http/helpers"
	"eventscape/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHealthRepo struct {
	pingErr error
	err     error
}

func (f *fakeHealthRepo) Ping(ctx context.Context) error { return f.pingErr }

func (f *fakeHealthRepo) ListTables(ctx context.Context) ([]string, error) {
	return []string{"events", "users"}, f.err
}

func (f *fakeHealthRepo) TableCounts(ctx context.Context) ([]domain.TableCount, error) {
	return []domain.TableCount{{Table: "events", ApproxRows: 12}}, f.err
}

func TestHealthController(t *testing.T) {
	c := NewHealthController(testLogger, &fakeHealthRepo{})

	rr, _ := serve(t, c.Status, testRequest{method: http.MethodGet, target: "/status"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"data":{"status":"ok"},"error":null}`, rr.Body.String())

	rr, _ = serve(t, c.Ping, testRequest{method: http.MethodGet, target: "/db/ping"})
	require.Equal(t, http.StatusOK, rr.Code)

	rr, _ = serve(t, c.Tables, testRequest{method: http.MethodGet, target: "/db/tables"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"data":["events","users"],"error":null}`, rr.Body.String())

	rr, _ = serve(t, c.Counts, testRequest{method: http.MethodGet, target: "/db/counts"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"data":[{"table":"events","approx_rows":12}],"error":null}`, rr.Body.String())
}

func TestHealthController_DatabaseDown(t *testing.T) {
	c := NewHealthController(testLogger, &fakeHealthRepo{pingErr: errors.New("dial tcp: refused"), err: errors.New("dial tcp: refused")})

	rr, envelope := serve(t, c.Ping, testRequest{method: http.MethodGet, target: "/db/ping"})
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, helpers.ErrCodeUnavailable, envelope.Error.Code)

	rr, envelope = serve(t, c.Tables, testRequest{method: http.MethodGet, target: "/db/tables"})
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "internal server error", envelope.Error.Message)
}
