package controllers

import (
	"log/slog"
	"net/http"

	"eventscape/internal/delivery/http/helpers"
	"eventscape/internal/delivery/http/middleware"
	"eventscape/internal/domain"
)

// RSVPRequest is the request body for POST /events/{eventID}/rsvp.
// Status defaults to interested.
type RSVPRequest struct {
	Status           domain.RSVPStatus `json:"status" enums:"going,waitlisted,interested,cancelled"`
	WaitlistPosition *int              `json:"waitlist_position"`
}

// Validate implements Validator.
func (q RSVPRequest) Validate() []string {
	var errs []string
	if q.Status != "" && !q.Status.Valid() {
		errs = append(errs, "status must be one of going, waitlisted, interested, cancelled")
	}
	if q.WaitlistPosition != nil && *q.WaitlistPosition < 1 {
		errs = append(errs, "waitlist_position must be positive")
	}
	return errs
}

// RSVPSuccessResponse is the success response envelope for POST /events/{eventID}/rsvp (200).
type RSVPSuccessResponse struct {
	Data  *domain.RSVP      `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ListRSVPsSuccessResponse is the success response envelope for GET /events/{eventID}/rsvps (200).
type ListRSVPsSuccessResponse struct {
	Data  []*domain.RSVPWithUser `json:"data"`
	Error *helpers.APIError      `json:"error"`
}

// RSVPController handles RSVP endpoints.
type RSVPController struct {
	Logger  *slog.Logger
	Service domain.RSVPService
}

func NewRSVPController(logger *slog.Logger, svc domain.RSVPService) *RSVPController {
	return &RSVPController{
		Logger:  logger,
		Service: svc,
	}
}

// Respond godoc
// @Summary RSVP to an event
// @Description Creates or replaces the authenticated user's RSVP. Going on a full event joins the waitlist when the event has one.
// @Tags rsvps
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body RSVPRequest true "RSVP"
// @Success 200 {object} controllers.RSVPSuccessResponse "data contains the stored RSVP"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (event full)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/rsvp [post]
func (c *RSVPController) Respond(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathID(w, r, "eventID")
	if !ok {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req RSVPRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	rsvp, err := c.Service.Respond(r.Context(), eventID, userID, req.Status, req.WaitlistPosition)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, rsvp)
}

// ListRSVPs godoc
// @Summary List an event's RSVPs
// @Description Lists RSVPs with the responding user's email and display name, oldest first. Optional status filter.
// @Tags rsvps
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param status query string false "Filter by status" Enums(going, waitlisted, interested, cancelled)
// @Success 200 {object} controllers.ListRSVPsSuccessResponse "data contains the RSVPs"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/rsvps [get]
func (c *RSVPController) ListRSVPs(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathID(w, r, "eventID")
	if !ok {
		return
	}
	var status *domain.RSVPStatus
	if s := r.URL.Query().Get("status"); s != "" {
		st := domain.RSVPStatus(s)
		if !st.Valid() {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "status must be one of going, waitlisted, interested, cancelled")
			return
		}
		status = &st
	}
	list, err := c.Service.ListByEvent(r.Context(), eventID, status)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, list)
}
