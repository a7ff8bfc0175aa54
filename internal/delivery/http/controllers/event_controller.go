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

// CreateEventRequest is the request body for POST /events. The authenticated user becomes the host.
type CreateEventRequest struct {
	Title      string            `json:"title"`
	Location   *string           `json:"location"`
	Content    *string           `json:"content"`
	StartTime  time.Time         `json:"start_time"`
	EndTime    *time.Time        `json:"end_time"`
	Visibility domain.Visibility `json:"visibility" enums:"public,private,unlisted"`
	Capacity   *int              `json:"capacity"`
	Waitlist   bool              `json:"waitlist"`
}

// Validate implements Validator. Returns error messages for required and format rules.
func (c CreateEventRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Title) == "" {
		errs = append(errs, "title is required")
	}
	if c.StartTime.IsZero() {
		errs = append(errs, "start_time is required")
	}
	if c.Visibility != "" && !c.Visibility.Valid() {
		errs = append(errs, "visibility must be one of public, private, unlisted")
	}
	if c.Capacity != nil && *c.Capacity < 0 {
		errs = append(errs, "capacity must not be negative")
	}
	return errs
}

// UpdateEventRequest is the request body for PATCH /events/{eventID}. All fields optional; omitted fields are unchanged.
type UpdateEventRequest struct {
	Title      *string            `json:"title"`
	Location   *string            `json:"location"`
	Content    *string            `json:"content"`
	StartTime  *time.Time         `json:"start_time"`
	EndTime    *time.Time         `json:"end_time"`
	Visibility *domain.Visibility `json:"visibility" enums:"public,private,unlisted"`
	Capacity   *int               `json:"capacity"`
	Waitlist   *bool              `json:"waitlist"`
}

// Validate implements Validator.
func (u UpdateEventRequest) Validate() []string {
	var errs []string
	if u.Title != nil && strings.TrimSpace(*u.Title) == "" {
		errs = append(errs, "title cannot be empty")
	}
	if u.Visibility != nil && !u.Visibility.Valid() {
		errs = append(errs, "visibility must be one of public, private, unlisted")
	}
	if u.Capacity != nil && *u.Capacity < 0 {
		errs = append(errs, "capacity must not be negative")
	}
	return errs
}

func (u UpdateEventRequest) toDomain() domain.EventUpdate {
	return domain.EventUpdate{
		Title:      u.Title,
		Location:   u.Location,
		Content:    u.Content,
		StartTime:  u.StartTime,
		EndTime:    u.EndTime,
		Visibility: u.Visibility,
		Capacity:   u.Capacity,
		Waitlist:   u.Waitlist,
	}
}

// EventSuccessResponse is the success response envelope for endpoints returning one event.
type EventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// EventSummarySuccessResponse is the success response envelope for GET /events/{eventID} (200).
type EventSummarySuccessResponse struct {
	Data  *domain.EventSummary `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// ListEventsResponse is the response body for GET /events.
type ListEventsResponse struct {
	Events     []*domain.EventSummary `json:"events"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// ListEventsSuccessResponse is the success response envelope for GET /events (200).
type ListEventsSuccessResponse struct {
	Data  ListEventsResponse `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// DeleteEventResponse is the response body for DELETE /events/{eventID}.
type DeleteEventResponse struct {
	EventID string `json:"event_id"`
	Deleted bool   `json:"deleted"`
}

// EventController handles event CRUD endpoints.
type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateEvent godoc
// @Summary Create a new event
// @Description Create an event hosted by the authenticated user. Visibility defaults to public; capacity is unlimited when omitted.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body CreateEventRequest true "Event data"
// @Success 201 {object} controllers.EventSuccessResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	hostID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	event := domain.NewEvent(hostID, req.Title, req.StartTime, time.Now())
	event.Location = req.Location
	event.Content = req.Content
	event.EndTime = req.EndTime
	if req.Visibility != "" {
		event.Visibility = req.Visibility
	}
	event.Capacity = req.Capacity
	event.Waitlist = req.Waitlist
	if err := c.Service.CreateEvent(r.Context(), event); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// ListEvents godoc
// @Summary List events
// @Description Lists events by start time with host name and attendance counts. Supports page and page_size.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.ListEventsSuccessResponse "data contains events and pagination"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	params := helpers.ParsePagination(r)
	events, total, err := c.Service.ListEvents(r.Context(), params)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ListEventsResponse{
		Events:     events,
		Pagination: helpers.NewPaginationMeta(params, total),
	})
}

// GetEvent godoc
// @Summary Get an event by ID
// @Description Returns the event with its host name and attendance counts.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.EventSummarySuccessResponse "data contains the event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathID(w, r, "eventID")
	if !ok {
		return
	}
	event, err := c.Service.GetEvent(r.Context(), eventID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// UpdateEvent godoc
// @Summary Update an event
// @Description Partially updates an event. Only the host can update. Omitted fields are unchanged.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body UpdateEventRequest true "Fields to update (all optional)"
// @Success 200 {object} controllers.EventSuccessResponse "data contains the updated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not host)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [patch]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathID(w, r, "eventID")
	if !ok {
		return
	}
	hostID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req UpdateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	event, err := c.Service.UpdateEvent(r.Context(), eventID, hostID, req.toDomain())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Deletes an event with its RSVPs, announcements and invitations. Only the host can delete.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains event_id and deleted"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not host)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathID(w, r, "eventID")
	if !ok {
		return
	}
	hostID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.DeleteEvent(r.Context(), eventID, hostID); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, DeleteEventResponse{EventID: eventID, Deleted: true})
}
