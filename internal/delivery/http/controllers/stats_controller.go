package controllers

import (
	"log/slog"
	"net/http"

	"eventscape/internal/delivery/http/helpers"
	"eventscape/internal/delivery/http/middleware"
	"eventscape/internal/domain"
)

// DashboardStatsSuccessResponse is the success response envelope for GET /dashboard/stats (200).
type DashboardStatsSuccessResponse struct {
	Data  domain.DashboardStats `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

// StatsController serves the dashboard counts real-time clients re-fetch on statsChanged.
type StatsController struct {
	Logger  *slog.Logger
	Service domain.StatsService
}

func NewStatsController(logger *slog.Logger, svc domain.StatsService) *StatsController {
	return &StatsController{
		Logger:  logger,
		Service: svc,
	}
}

// GetDashboardStats godoc
// @Summary Get my dashboard counts
// @Description Returns upcoming and attended event counts and the unread notification count. A count that could not be computed is "-".
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.DashboardStatsSuccessResponse "data contains upcoming, attended, notifications"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /dashboard/stats [get]
func (c *StatsController) GetDashboardStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, c.Service.GetDashboardStats(r.Context(), userID))
}
