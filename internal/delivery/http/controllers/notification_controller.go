package controllers

import (
	"log/slog"
	"net/http"

	"eventscape/internal/delivery/http/helpers"
	"eventscape/internal/delivery/http/middleware"
	"eventscape/internal/domain"
)

// ListNotificationsResponse is the response body for GET /notifications.
type ListNotificationsResponse struct {
	Notifications []*domain.Notification `json:"notifications"`
	Pagination    helpers.PaginationMeta `json:"pagination"`
}

// ListNotificationsSuccessResponse is the success response envelope for GET /notifications (200).
type ListNotificationsSuccessResponse struct {
	Data  ListNotificationsResponse `json:"data"`
	Error *helpers.APIError         `json:"error"`
}

// MarkReadResponse is the response body for POST /notifications/{notificationID}/read.
type MarkReadResponse struct {
	NotificationID string `json:"notification_id"`
	IsRead         bool   `json:"is_read"`
}

// NotificationController handles the current user's inbox.
type NotificationController struct {
	Logger  *slog.Logger
	Service domain.NotificationService
}

func NewNotificationController(logger *slog.Logger, svc domain.NotificationService) *NotificationController {
	return &NotificationController{
		Logger:  logger,
		Service: svc,
	}
}

// ListNotifications godoc
// @Summary List my notifications
// @Description Lists the authenticated user's notifications, newest first. Supports page and page_size.
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.ListNotificationsSuccessResponse "data contains notifications and pagination"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /notifications [get]
func (c *NotificationController) ListNotifications(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	params := helpers.ParsePagination(r)
	list, total, err := c.Service.ListMine(r.Context(), userID, params)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ListNotificationsResponse{
		Notifications: list,
		Pagination:    helpers.NewPaginationMeta(params, total),
	})
}

// MarkRead godoc
// @Summary Mark a notification read
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param notificationID path string true "Notification ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains notification_id and is_read"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /notifications/{notificationID}/read [post]
func (c *NotificationController) MarkRead(w http.ResponseWriter, r *http.Request) {
	notificationID, ok := helpers.PathID(w, r, "notificationID")
	if !ok {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.MarkRead(r.Context(), notificationID, userID); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, MarkReadResponse{NotificationID: notificationID, IsRead: true})
}
