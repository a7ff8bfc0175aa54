package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"eventscape/internal/domain"
)

type invitationService struct {
	eventRepo        domain.EventRepository
	invitationRepo   domain.InvitationRepository
	userRepo         domain.UserRepository
	notificationRepo domain.NotificationRepository
	rsvpService      domain.RSVPService
	emailService     domain.EmailService
	baseURL          string
	logger           *slog.Logger
}

// NewInvitationService creates an InvitationService. baseURL prefixes the
// shareable invitation links.
func NewInvitationService(
	eventRepo domain.EventRepository,
	invitationRepo domain.InvitationRepository,
	userRepo domain.UserRepository,
	notificationRepo domain.NotificationRepository,
	rsvpService domain.RSVPService,
	emailService domain.EmailService,
	baseURL string,
	logger *slog.Logger,
) domain.InvitationService {
	return &invitationService{
		eventRepo:        eventRepo,
		invitationRepo:   invitationRepo,
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
		rsvpService:      rsvpService,
		emailService:     emailService,
		baseURL:          strings.TrimRight(baseURL, "/"),
		logger:           logger,
	}
}

func (s *invitationService) link(inv *domain.Invitation) {
	inv.Link = s.baseURL + "/invitations/" + inv.ID
}

func (s *invitationService) Create(ctx context.Context, in domain.NewInvitation) (*domain.Invitation, error) {
	if !in.Mode.Valid() {
		return nil, invalidf("mode must be one of email, link")
	}
	if in.RecipientEmail != nil && strings.TrimSpace(*in.RecipientEmail) == "" {
		in.RecipientEmail = nil
	}
	if in.RecipientEmail != nil {
		email, err := normalizeEmail(*in.RecipientEmail)
		if err != nil {
			return nil, err
		}
		in.RecipientEmail = &email
	}
	if in.Mode == domain.InvitationByEmail && in.RecipientEmail == nil {
		return nil, invalidf("recipient_email is required for email invitations")
	}
	if in.ExpiresAt != nil && !in.ExpiresAt.After(time.Now()) {
		return nil, invalidf("expires_at must be in the future")
	}

	event, err := hostedEvent(ctx, s.eventRepo, in.EventID, in.InvitedBy)
	if err != nil {
		return nil, err
	}

	inv := &domain.Invitation{
		EventID:        in.EventID,
		InvitedBy:      in.InvitedBy,
		Mode:           in.Mode,
		RecipientEmail: in.RecipientEmail,
		Message:        trimmedOrNil(in.Message),
		Status:         domain.InvitationPending,
		ExpiresAt:      in.ExpiresAt,
	}
	if err := s.invitationRepo.Create(ctx, inv); err != nil {
		return nil, fmt.Errorf("create invitation: %w", err)
	}
	s.link(inv)

	if inv.RecipientEmail != nil {
		s.notifyRecipient(ctx, inv)
	}
	if inv.Mode == domain.InvitationByEmail && s.emailService != nil {
		s.sendEmail(ctx, inv, event)
	}
	return inv, nil
}

// notifyRecipient adds an in-app notification when the recipient already has
// an account that wants one.
func (s *invitationService) notifyRecipient(ctx context.Context, inv *domain.Invitation) {
	user, err := s.userRepo.GetByEmail(ctx, *inv.RecipientEmail)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.ErrorContext(ctx, "invitation recipient lookup failed", "invitation_id", inv.ID, "error", err)
		}
		return
	}
	if !user.NotificationSetting.WantsInApp() {
		return
	}
	if _, err := s.notificationRepo.CreateForInvitation(ctx, user.ID, inv.ID); err != nil {
		s.logger.ErrorContext(ctx, "invitation notification failed", "invitation_id", inv.ID, "error", err)
	}
}

func (s *invitationService) sendEmail(ctx context.Context, inv *domain.Invitation, event *domain.Event) {
	hostName := "The host"
	if host, err := s.userRepo.GetByID(ctx, inv.InvitedBy); err == nil {
		hostName = displayNameOr(host.DisplayName, host.Email)
	}
	data := &domain.InvitationEmailData{
		Email:     *inv.RecipientEmail,
		HostName:  hostName,
		EventName: event.Title,
		Link:      inv.Link,
	}
	if inv.Message != nil {
		data.Message = *inv.Message
	}
	if err := s.emailService.SendInvitation(ctx, data); err != nil {
		s.logger.ErrorContext(ctx, "invitation email failed", "invitation_id", inv.ID, "error", err)
	}
}

// ListByEvent lists an event's invitations. Only the host may see them.
func (s *invitationService) ListByEvent(ctx context.Context, eventID, hostID string) ([]*domain.Invitation, error) {
	if _, err := hostedEvent(ctx, s.eventRepo, eventID, hostID); err != nil {
		return nil, err
	}
	invs, err := s.invitationRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	for _, inv := range invs {
		s.link(inv)
	}
	return invs, nil
}

// Respond accepts or declines an invitation. Email invitations may only be
// answered by their recipient and close on the first answer. Link
// invitations may be answered by anyone holding the link and stay pending
// until they expire; each acceptance upserts that user's going RSVP.
// Accepting records the RSVP before anything is closed, so a full event
// leaves the invitation pending.
func (s *invitationService) Respond(ctx context.Context, invitationID string, responder *domain.Identity, accept bool) (*domain.Invitation, error) {
	inv, err := s.invitationRepo.GetByID(ctx, invitationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get invitation: %w", err)
	}
	if inv.RecipientEmail != nil && !strings.EqualFold(*inv.RecipientEmail, responder.Email) {
		return nil, domain.ErrForbidden
	}
	if inv.Status != domain.InvitationPending {
		return nil, domain.ErrInvitationClosed
	}

	now := time.Now()
	if inv.ExpiredAt(now) {
		if _, err := s.invitationRepo.UpdateStatus(ctx, inv.ID, domain.InvitationExpired, nil); err != nil &&
			!errors.Is(err, domain.ErrInvitationClosed) {
			s.logger.ErrorContext(ctx, "marking invitation expired failed", "invitation_id", inv.ID, "error", err)
		}
		return nil, domain.ErrInvitationClosed
	}

	status := domain.InvitationDeclined
	var acceptedAt *time.Time
	if accept {
		if _, err := s.rsvpService.Respond(ctx, inv.EventID, responder.UserID, domain.RSVPGoing, nil); err != nil {
			return nil, err
		}
		status = domain.InvitationAccepted
		acceptedAt = &now
	}
	if inv.Mode == domain.InvitationByLink {
		s.link(inv)
		return inv, nil
	}

	updated, err := s.invitationRepo.UpdateStatus(ctx, inv.ID, status, acceptedAt)
	if err != nil {
		if errors.Is(err, domain.ErrInvitationClosed) || errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update invitation: %w", err)
	}
	s.link(updated)
	return updated, nil
}
