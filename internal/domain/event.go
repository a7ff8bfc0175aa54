package domain

import (
	"context"
	"time"
)

// Visibility controls who may discover an event.
type Visibility string

const (
	VisibilityPublic   Visibility = "public"
	VisibilityPrivate  Visibility = "private"
	VisibilityUnlisted Visibility = "unlisted"
)

// Valid reports whether v is one of the known visibilities.
func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityPrivate, VisibilityUnlisted:
		return true
	}
	return false
}

// Event represents an event owned by its host.
// swagger:model Event
type Event struct {
	ID         string     `json:"event_id"`
	HostID     string     `json:"host_id"`
	Title      string     `json:"title"`
	Location   *string    `json:"location"`
	Content    *string    `json:"content"`
	StartTime  time.Time  `json:"start_time"`
	EndTime    *time.Time `json:"end_time"`
	Visibility Visibility `json:"visibility"`
	Capacity   *int       `json:"capacity"`
	Waitlist   bool       `json:"waitlist"`
	CreatedAt  time.Time  `json:"created_at"`
}

// NewEvent returns a new Event with the given fields. ID is typically set by the repository on create.
func NewEvent(hostID, title string, startTime time.Time, createdAt time.Time) *Event {
	return &Event{
		HostID:     hostID,
		Title:      title,
		StartTime:  startTime,
		Visibility: VisibilityPublic,
		CreatedAt:  createdAt,
	}
}

// EventSummary is an event joined with its host name and attendance counts.
// swagger:model EventSummary
type EventSummary struct {
	Event
	HostName        *string `json:"host_name"`
	GoingCount      int     `json:"going_count"`
	InterestedCount int     `json:"interested_count"`
	WaitlistedCount int     `json:"waitlisted_count"`
}

// EventUpdate holds optional event fields; nil fields are unchanged.
type EventUpdate struct {
	Title      *string
	Location   *string
	Content    *string
	StartTime  *time.Time
	EndTime    *time.Time
	Visibility *Visibility
	Capacity   *int
	Waitlist   *bool
}

// Empty reports whether no field is set.
func (u EventUpdate) Empty() bool {
	return u.Title == nil && u.Location == nil && u.Content == nil && u.StartTime == nil &&
		u.EndTime == nil && u.Visibility == nil && u.Capacity == nil && u.Waitlist == nil
}

// EventRepository defines the interface for event storage
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	GetSummary(ctx context.Context, id string) (*EventSummary, error)
	List(ctx context.Context, params PaginationParams) ([]*EventSummary, int, error)
	Update(ctx context.Context, id string, upd EventUpdate) (*Event, error)
	Delete(ctx context.Context, id string) error
}

// EventService defines host-facing event operations.
type EventService interface {
	CreateEvent(ctx context.Context, event *Event) error
	GetEvent(ctx context.Context, eventID string) (*EventSummary, error)
	ListEvents(ctx context.Context, params PaginationParams) ([]*EventSummary, int, error)
	UpdateEvent(ctx context.Context, eventID, hostID string, upd EventUpdate) (*Event, error)
	DeleteEvent(ctx context.Context, eventID, hostID string) error
}
