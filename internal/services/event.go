package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventscape/internal/domain"
)

type eventService struct {
	eventRepo      domain.EventRepository
	contextTimeout time.Duration
}

func NewEventService(eventRepo domain.EventRepository, timeout time.Duration) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		contextTimeout: timeout,
	}
}

func (s *eventService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.contextTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.contextTimeout)
}

func validateEventFields(title string, start time.Time, end *time.Time, visibility domain.Visibility, capacity *int) error {
	if strings.TrimSpace(title) == "" {
		return invalidf("title is required")
	}
	if start.IsZero() {
		return invalidf("start_time is required")
	}
	if end != nil && end.Before(start) {
		return invalidf("end_time must not be before start_time")
	}
	if !visibility.Valid() {
		return invalidf("visibility must be one of public, private, unlisted")
	}
	if capacity != nil && *capacity < 0 {
		return invalidf("capacity must not be negative")
	}
	return nil
}

func (s *eventService) CreateEvent(ctx context.Context, event *domain.Event) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if event.HostID == "" {
		return fmt.Errorf("event host is required")
	}
	event.Title = strings.TrimSpace(event.Title)
	if event.Visibility == "" {
		event.Visibility = domain.VisibilityPublic
	}
	if err := validateEventFields(event.Title, event.StartTime, event.EndTime, event.Visibility, event.Capacity); err != nil {
		return err
	}
	event.CreatedAt = time.Now()

	if err := s.eventRepo.Create(ctx, event); err != nil {
		if errors.Is(err, domain.ErrInvalidReference) {
			return err
		}
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

func (s *eventService) GetEvent(ctx context.Context, eventID string) (*domain.EventSummary, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	summary, err := s.eventRepo.GetSummary(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return summary, nil
}

func (s *eventService) ListEvents(ctx context.Context, params domain.PaginationParams) ([]*domain.EventSummary, int, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	events, total, err := s.eventRepo.List(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	return events, total, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, eventID, hostID string, upd domain.EventUpdate) (*domain.Event, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	event, err := hostedEvent(ctx, s.eventRepo, eventID, hostID)
	if err != nil {
		return nil, err
	}
	if upd.Empty() {
		return event, nil
	}

	// Validate the event as it will look after the update.
	merged := *event
	if upd.Title != nil {
		title := strings.TrimSpace(*upd.Title)
		upd.Title = &title
		merged.Title = title
	}
	if upd.StartTime != nil {
		merged.StartTime = *upd.StartTime
	}
	if upd.EndTime != nil {
		merged.EndTime = upd.EndTime
	}
	if upd.Visibility != nil {
		merged.Visibility = *upd.Visibility
	}
	if upd.Capacity != nil {
		merged.Capacity = upd.Capacity
	}
	if err := validateEventFields(merged.Title, merged.StartTime, merged.EndTime, merged.Visibility, merged.Capacity); err != nil {
		return nil, err
	}

	updated, err := s.eventRepo.Update(ctx, eventID, upd)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return updated, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, eventID, hostID string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := hostedEvent(ctx, s.eventRepo, eventID, hostID); err != nil {
		return err
	}
	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}
