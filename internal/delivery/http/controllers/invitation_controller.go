package controllers

import (
	"log/slog"
	"net/http"
	"time"

	"eventscape/internal/delivery/http/helpers"
	"eventscape/internal/delivery/http/middleware"
	"eventscape/internal/domain"
)

// CreateInvitationRequest is the request body for POST /invitations.
// recipient_email is required for mode "email".
type CreateInvitationRequest struct {
	EventID        string                `json:"event_id"`
	Mode           domain.InvitationMode `json:"mode" enums:"email,link"`
	RecipientEmail *string               `json:"recipient_email"`
	Message        *string               `json:"message"`
	ExpiresAt      *time.Time            `json:"expires_at"`
}

// Validate implements Validator.
func (c CreateInvitationRequest) Validate() []string {
	var errs []string
	if !domain.IsValidID(c.EventID) {
		errs = append(errs, "event_id must be a valid id")
	}
	if !c.Mode.Valid() {
		errs = append(errs, "mode must be one of email, link")
	}
	if c.Mode == domain.InvitationByEmail && c.RecipientEmail == nil {
		errs = append(errs, "recipient_email is required for email invitations")
	}
	return errs
}

// RespondInvitationRequest is the request body for POST /invitations/{invitationID}/respond.
type RespondInvitationRequest struct {
	Accept *bool `json:"accept"`
}

// Validate implements Validator.
func (q RespondInvitationRequest) Validate() []string {
	if q.Accept == nil {
		return []string{"accept is required"}
	}
	return nil
}

// InvitationSuccessResponse is the success response envelope for endpoints returning one invitation.
type InvitationSuccessResponse struct {
	Data  *domain.Invitation `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// ListInvitationsSuccessResponse is the success response envelope for GET /events/{eventID}/invitations (200).
type ListInvitationsSuccessResponse struct {
	Data  []*domain.Invitation `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// InvitationController handles invitation endpoints.
type InvitationController struct {
	Logger  *slog.Logger
	Service domain.InvitationService
}

func NewInvitationController(logger *slog.Logger, svc domain.InvitationService) *InvitationController {
	return &InvitationController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateInvitation godoc
// @Summary Invite someone to an event
// @Description Creates an invitation. Email invitations are mailed to the recipient; link invitations return a shareable link. Only the host can invite.
// @Tags invitations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateInvitationRequest true "Invitation"
// @Success 201 {object} controllers.InvitationSuccessResponse "data contains the invitation and its link"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not host)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /invitations [post]
func (c *InvitationController) CreateInvitation(w http.ResponseWriter, r *http.Request) {
	hostID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req CreateInvitationRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	inv, err := c.Service.Create(r.Context(), domain.NewInvitation{
		EventID:        req.EventID,
		InvitedBy:      hostID,
		Mode:           req.Mode,
		RecipientEmail: req.RecipientEmail,
		Message:        req.Message,
		ExpiresAt:      req.ExpiresAt,
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, inv)
}

// ListInvitations godoc
// @Summary List an event's invitations
// @Description Lists invitations newest first. Only the host can list them.
// @Tags invitations
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.ListInvitationsSuccessResponse "data contains the invitations"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not host)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/invitations [get]
func (c *InvitationController) ListInvitations(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathID(w, r, "eventID")
	if !ok {
		return
	}
	hostID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	list, err := c.Service.ListByEvent(r.Context(), eventID, hostID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, list)
}

// RespondInvitation godoc
// @Summary Accept or decline an invitation
// @Description Accepting records a going RSVP for the event. Email invitations can only be answered by their recipient and close after one answer. Link invitations stay open until they expire.
// @Tags invitations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param invitationID path string true "Invitation ID (UUID)"
// @Param body body RespondInvitationRequest true "Response"
// @Success 200 {object} controllers.InvitationSuccessResponse "data contains the updated invitation"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not the recipient)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (closed, expired or event full)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /invitations/{invitationID}/respond [post]
func (c *InvitationController) RespondInvitation(w http.ResponseWriter, r *http.Request) {
	invitationID, ok := helpers.PathID(w, r, "invitationID")
	if !ok {
		return
	}
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req RespondInvitationRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	inv, err := c.Service.Respond(r.Context(), invitationID, identity, *req.Accept)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, inv)
}
