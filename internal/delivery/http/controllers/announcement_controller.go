package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"eventscape/internal/delivery/http/helpers"
	"eventscape/internal/delivery/http/middleware"
	"eventscape/internal/domain"
)

// CreateAnnouncementRequest is the request body for POST /events/{eventID}/announcements.
// A future scheduled_release holds the announcement back until that time.
type CreateAnnouncementRequest struct {
	Content          string     `json:"content"`
	ScheduledRelease *time.Time `json:"scheduled_release"`
}

// Validate implements Validator.
func (a CreateAnnouncementRequest) Validate() []string {
	if strings.TrimSpace(a.Content) == "" {
		return []string{"content is required"}
	}
	return nil
}

// AnnouncementSuccessResponse is the success response envelope for POST /events/{eventID}/announcements (201).
type AnnouncementSuccessResponse struct {
	Data  *domain.Announcement `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// ListAnnouncementsSuccessResponse is the success response envelope for GET /events/{eventID}/announcements (200).
type ListAnnouncementsSuccessResponse struct {
	Data  []*domain.Announcement `json:"data"`
	Error *helpers.APIError      `json:"error"`
}

// AnnouncementController handles host announcement endpoints.
type AnnouncementController struct {
	Logger  *slog.Logger
	Service domain.AnnouncementService
}

func NewAnnouncementController(logger *slog.Logger, svc domain.AnnouncementService) *AnnouncementController {
	return &AnnouncementController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateAnnouncement godoc
// @Summary Post an announcement
// @Description Posts an announcement to the event's attendees. Only the host can announce. Unscheduled announcements are delivered immediately.
// @Tags announcements
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body CreateAnnouncementRequest true "Announcement"
// @Success 201 {object} controllers.AnnouncementSuccessResponse "data contains the announcement"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not host)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/announcements [post]
func (c *AnnouncementController) CreateAnnouncement(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathID(w, r, "eventID")
	if !ok {
		return
	}
	hostID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req CreateAnnouncementRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	a, err := c.Service.Create(r.Context(), eventID, hostID, req.Content, req.ScheduledRelease)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, a)
}

// ListAnnouncements godoc
// @Summary List an event's announcements
// @Description Lists released announcements, newest first. The host also sees scheduled ones.
// @Tags announcements
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.ListAnnouncementsSuccessResponse "data contains the announcements"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/announcements [get]
func (c *AnnouncementController) ListAnnouncements(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathID(w, r, "eventID")
	if !ok {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	list, err := c.Service.ListByEvent(r.Context(), eventID, userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, list)
}
