package controllers

import (
	"log/slog"
	"net/http"

	"eventscape/internal/delivery/http/helpers"
	"eventscape/internal/domain"
)

// StatusResponse is the response body for GET /status.
type StatusResponse struct {
	Status string `json:"status"`
}

// PingResponse is the response body for GET /db/ping.
type PingResponse struct {
	Database string `json:"database"`
}

// HealthController exposes liveness and database diagnostics.
type HealthController struct {
	Logger *slog.Logger
	Repo   domain.HealthRepository
}

func NewHealthController(logger *slog.Logger, repo domain.HealthRepository) *HealthController {
	return &HealthController{
		Logger: logger,
		Repo:   repo,
	}
}

// Status godoc
// @Summary Liveness
// @Tags health
// @Produce json
// @Success 200 {object} helpers.APIResponse "data.status is ok"
// @Router /status [get]
func (c *HealthController) Status(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSONSuccess(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// Ping godoc
// @Summary Database connectivity
// @Tags health
// @Produce json
// @Success 200 {object} helpers.APIResponse "data.database is ok"
// @Failure 503 {object} helpers.APIResponse "error.code: unavailable"
// @Router /db/ping [get]
func (c *HealthController) Ping(w http.ResponseWriter, r *http.Request) {
	if err := c.Repo.Ping(r.Context()); err != nil {
		c.Logger.WarnContext(r.Context(), "database ping failed", "err", err)
		helpers.WriteJSONError(w, http.StatusServiceUnavailable, helpers.ErrCodeUnavailable, "database unavailable")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, PingResponse{Database: "ok"})
}

// Tables godoc
// @Summary List database tables
// @Tags health
// @Produce json
// @Success 200 {object} helpers.APIResponse "data contains table names"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /db/tables [get]
func (c *HealthController) Tables(w http.ResponseWriter, r *http.Request) {
	tables, err := c.Repo.ListTables(r.Context())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, tables)
}

// Counts godoc
// @Summary Approximate row counts per table
// @Tags health
// @Produce json
// @Success 200 {object} helpers.APIResponse "data contains table and approx_rows pairs"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /db/counts [get]
func (c *HealthController) Counts(w http.ResponseWriter, r *http.Request) {
	counts, err := c.Repo.TableCounts(r.Context())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, counts)
}
