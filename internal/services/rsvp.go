package services

import (
	"context"
	"errors"
	"fmt"

	"eventscape/internal/domain"
)

type rsvpService struct {
	eventRepo domain.EventRepository
	rsvpRepo  domain.RSVPRepository
}

// NewRSVPService creates an RSVPService with the given repositories.
func NewRSVPService(eventRepo domain.EventRepository, rsvpRepo domain.RSVPRepository) domain.RSVPService {
	return &rsvpService{
		eventRepo: eventRepo,
		rsvpRepo:  rsvpRepo,
	}
}

func (s *rsvpService) getEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

// Respond records the user's RSVP. A going response on a full event is moved
// to the waitlist when the event keeps one, otherwise it is rejected.
// Capacity is checked before the upsert, so concurrent responses may overshoot it.
func (s *rsvpService) Respond(ctx context.Context, eventID, userID string, status domain.RSVPStatus, waitlistPosition *int) (*domain.RSVP, error) {
	if status == "" {
		status = domain.RSVPInterested
	}
	if !status.Valid() {
		return nil, invalidf("status must be one of going, waitlisted, interested, cancelled")
	}
	if waitlistPosition != nil && *waitlistPosition < 1 {
		return nil, invalidf("waitlist_position must be positive")
	}

	event, err := s.getEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if status == domain.RSVPGoing && event.Capacity != nil {
		going, err := s.rsvpRepo.CountGoing(ctx, eventID, userID)
		if err != nil {
			return nil, fmt.Errorf("count going: %w", err)
		}
		if going >= *event.Capacity {
			if !event.Waitlist {
				return nil, domain.ErrEventFull
			}
			status = domain.RSVPWaitlisted
		}
	}

	if status != domain.RSVPWaitlisted {
		waitlistPosition = nil
	} else if waitlistPosition == nil {
		next, err := s.rsvpRepo.NextWaitlistPosition(ctx, eventID)
		if err != nil {
			return nil, fmt.Errorf("next waitlist position: %w", err)
		}
		waitlistPosition = &next
	}

	rsvp := domain.NewRSVP(eventID, userID, status, waitlistPosition)
	if err := s.rsvpRepo.Upsert(ctx, rsvp); err != nil {
		if errors.Is(err, domain.ErrInvalidReference) {
			return nil, err
		}
		return nil, fmt.Errorf("upsert rsvp: %w", err)
	}
	return rsvp, nil
}

func (s *rsvpService) ListByEvent(ctx context.Context, eventID string, status *domain.RSVPStatus) ([]*domain.RSVPWithUser, error) {
	if status != nil && !status.Valid() {
		return nil, invalidf("status must be one of going, waitlisted, interested, cancelled")
	}
	if _, err := s.getEvent(ctx, eventID); err != nil {
		return nil, err
	}
	rsvps, err := s.rsvpRepo.ListByEvent(ctx, eventID, status)
	if err != nil {
		return nil, fmt.Errorf("list rsvps: %w", err)
	}
	return rsvps, nil
}
