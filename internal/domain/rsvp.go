package domain

import (
	"context"
	"time"
)

// RSVPStatus is a user's response to an event.
type RSVPStatus string

const (
	RSVPGoing      RSVPStatus = "going"
	RSVPWaitlisted RSVPStatus = "waitlisted"
	RSVPInterested RSVPStatus = "interested"
	RSVPCancelled  RSVPStatus = "cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s RSVPStatus) Valid() bool {
	switch s {
	case RSVPGoing, RSVPWaitlisted, RSVPInterested, RSVPCancelled:
		return true
	}
	return false
}

// RSVP is the single response a user holds for an event.
// swagger:model RSVP
type RSVP struct {
	ID               string     `json:"rsvp_id"`
	EventID          string     `json:"event_id"`
	UserID           string     `json:"user_id"`
	Status           RSVPStatus `json:"status"`
	WaitlistPosition *int       `json:"waitlist_position"`
	CreatedAt        time.Time  `json:"created_at"`
}

// NewRSVP creates a new RSVP. ID and CreatedAt are set by the repository on upsert.
func NewRSVP(eventID, userID string, status RSVPStatus, waitlistPosition *int) *RSVP {
	return &RSVP{
		EventID:          eventID,
		UserID:           userID,
		Status:           status,
		WaitlistPosition: waitlistPosition,
	}
}

// RSVPWithUser is an RSVP joined with the responding user's contact fields.
// swagger:model RSVPWithUser
type RSVPWithUser struct {
	RSVP
	Email       string  `json:"email"`
	DisplayName *string `json:"display_name"`
}

// RSVPRepository defines storage operations for RSVPs.
type RSVPRepository interface {
	// Upsert inserts the RSVP or, on an existing (event, user) pair, overwrites
	// status and waitlist position. rsvp is updated with the stored row.
	Upsert(ctx context.Context, rsvp *RSVP) error
	ListByEvent(ctx context.Context, eventID string, status *RSVPStatus) ([]*RSVPWithUser, error)
	// CountGoing counts going RSVPs for the event, excluding userID's own row.
	CountGoing(ctx context.Context, eventID, excludeUserID string) (int, error)
	NextWaitlistPosition(ctx context.Context, eventID string) (int, error)
}

// RSVPService defines attendee-facing RSVP operations.
type RSVPService interface {
	Respond(ctx context.Context, eventID, userID string, status RSVPStatus, waitlistPosition *int) (*RSVP, error)
	ListByEvent(ctx context.Context, eventID string, status *RSVPStatus) ([]*RSVPWithUser, error)
}
