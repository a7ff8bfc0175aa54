package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"eventscape/internal/domain"
)

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// invalidf returns an ErrInvalidInput carrying a caller-facing reason.
func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidInput, fmt.Sprintf(format, args...))
}

func normalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if !emailRegexp.MatchString(email) {
		return "", invalidf("invalid email format")
	}
	return email, nil
}

// hostedEvent loads an event and checks that hostID owns it.
func hostedEvent(ctx context.Context, repo domain.EventRepository, eventID, hostID string) (*domain.Event, error) {
	event, err := repo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.HostID != hostID {
		return nil, domain.ErrForbidden
	}
	return event, nil
}

func displayNameOr(name *string, fallback string) string {
	if name != nil && strings.TrimSpace(*name) != "" {
		return *name
	}
	return fallback
}
