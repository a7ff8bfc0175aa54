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

type announcementService struct {
	eventRepo        domain.EventRepository
	announcementRepo domain.AnnouncementRepository
	notificationRepo domain.NotificationRepository
	emailService     domain.EmailService
	logger           *slog.Logger
}

// NewAnnouncementService creates an AnnouncementService. emailService may be nil,
// in which case announcements are delivered in-app only.
func NewAnnouncementService(
	eventRepo domain.EventRepository,
	announcementRepo domain.AnnouncementRepository,
	notificationRepo domain.NotificationRepository,
	emailService domain.EmailService,
	logger *slog.Logger,
) domain.AnnouncementService {
	return &announcementService{
		eventRepo:        eventRepo,
		announcementRepo: announcementRepo,
		notificationRepo: notificationRepo,
		emailService:     emailService,
		logger:           logger,
	}
}

func (s *announcementService) Create(ctx context.Context, eventID, hostID, content string, scheduledRelease *time.Time) (*domain.Announcement, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, invalidf("content is required")
	}
	event, err := hostedEvent(ctx, s.eventRepo, eventID, hostID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	a := &domain.Announcement{
		EventID:          eventID,
		HostID:           hostID,
		Content:          content,
		ScheduledRelease: scheduledRelease,
	}
	if a.DueAt(now) {
		a.ReleasedAt = &now
	}
	if err := s.announcementRepo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("create announcement: %w", err)
	}
	if a.ReleasedAt != nil {
		s.deliver(ctx, a, event)
	}
	return a, nil
}

func (s *announcementService) ListByEvent(ctx context.Context, eventID, viewerID string) ([]*domain.Announcement, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	list, err := s.announcementRepo.ListByEvent(ctx, eventID, event.HostID == viewerID)
	if err != nil {
		return nil, fmt.Errorf("list announcements: %w", err)
	}
	return list, nil
}

func (s *announcementService) ReleaseDue(ctx context.Context, now time.Time) (int, error) {
	due, err := s.announcementRepo.ListDue(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("list due announcements: %w", err)
	}
	released := 0
	for _, a := range due {
		if err := s.announcementRepo.MarkReleased(ctx, a.ID, now); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// released by another worker
				continue
			}
			return released, fmt.Errorf("mark announcement %s released: %w", a.ID, err)
		}
		a.ReleasedAt = &now
		released++

		event, err := s.eventRepo.GetByID(ctx, a.EventID)
		if err != nil {
			s.logger.ErrorContext(ctx, "announcement event lookup failed", "announcement_id", a.ID, "error", err)
			continue
		}
		s.deliver(ctx, a, event)
	}
	return released, nil
}

// deliver fans a released announcement out to attendees. Delivery failures
// are logged; the announcement itself is already stored.
func (s *announcementService) deliver(ctx context.Context, a *domain.Announcement, event *domain.Event) {
	n, err := s.notificationRepo.FanOutAnnouncement(ctx, a.ID, a.EventID)
	if err != nil {
		s.logger.ErrorContext(ctx, "announcement fan-out failed", "announcement_id", a.ID, "error", err)
	} else {
		s.logger.InfoContext(ctx, "announcement fanned out", "announcement_id", a.ID, "notifications", n)
	}

	if s.emailService == nil {
		return
	}
	recipients, err := s.notificationRepo.EmailRecipients(ctx, a.EventID)
	if err != nil {
		s.logger.ErrorContext(ctx, "announcement recipients lookup failed", "announcement_id", a.ID, "error", err)
		return
	}
	for _, r := range recipients {
		data := &domain.AnnouncementEmailData{
			Email:       r.Email,
			DisplayName: displayNameOr(r.DisplayName, r.Email),
			EventName:   event.Title,
			Content:     a.Content,
		}
		if err := s.emailService.SendAnnouncement(ctx, data); err != nil {
			s.logger.ErrorContext(ctx, "announcement email failed", "announcement_id", a.ID, "to", r.Email, "error", err)
		}
	}
}
