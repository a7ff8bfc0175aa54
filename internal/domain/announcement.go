package domain

import (
	"context"
	"time"
)

// Announcement is a message from a host to an event's attendees.
// swagger:model Announcement
type Announcement struct {
	ID               string     `json:"announcement_id"`
	EventID          string     `json:"event_id"`
	HostID           string     `json:"host_id"`
	Content          string     `json:"content"`
	ScheduledRelease *time.Time `json:"scheduled_release"`
	ReleasedAt       *time.Time `json:"released_at"`
	CreatedAt        time.Time  `json:"created_at"`
}

// DueAt reports whether the announcement should be visible at now.
func (a *Announcement) DueAt(now time.Time) bool {
	return a.ScheduledRelease == nil || !a.ScheduledRelease.After(now)
}

// AnnouncementRepository defines storage operations for announcements.
type AnnouncementRepository interface {
	Create(ctx context.Context, a *Announcement) error
	// ListByEvent returns released announcements, plus scheduled ones when
	// includeScheduled is set.
	ListByEvent(ctx context.Context, eventID string, includeScheduled bool) ([]*Announcement, error)
	ListDue(ctx context.Context, now time.Time) ([]*Announcement, error)
	MarkReleased(ctx context.Context, id string, at time.Time) error
}

// AnnouncementService defines host announcement operations.
type AnnouncementService interface {
	Create(ctx context.Context, eventID, hostID, content string, scheduledRelease *time.Time) (*Announcement, error)
	// ListByEvent lists an event's announcements. The host also sees ones
	// still waiting for their scheduled release.
	ListByEvent(ctx context.Context, eventID, viewerID string) ([]*Announcement, error)
	// ReleaseDue fans out every unreleased announcement whose release time has passed.
	ReleaseDue(ctx context.Context, now time.Time) (released int, err error)
}
