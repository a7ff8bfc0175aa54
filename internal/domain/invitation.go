package domain

import (
	"context"
	"time"
)

// InvitationMode is how an invitation is delivered.
type InvitationMode string

const (
	InvitationByEmail InvitationMode = "email"
	InvitationByLink  InvitationMode = "link"
)

// Valid reports whether m is one of the known modes.
func (m InvitationMode) Valid() bool {
	return m == InvitationByEmail || m == InvitationByLink
}

// InvitationStatus is the lifecycle state of an invitation.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationDeclined InvitationStatus = "declined"
	InvitationExpired  InvitationStatus = "expired"
)

// Valid reports whether s is one of the known statuses.
func (s InvitationStatus) Valid() bool {
	switch s {
	case InvitationPending, InvitationAccepted, InvitationDeclined, InvitationExpired:
		return true
	}
	return false
}

// Invitation invites someone to an event.
// swagger:model Invitation
type Invitation struct {
	ID             string           `json:"invitation_id"`
	EventID        string           `json:"event_id"`
	InvitedBy      string           `json:"invited_by"`
	Mode           InvitationMode   `json:"mode"`
	RecipientEmail *string          `json:"recipient_email"`
	Message        *string          `json:"message,omitempty"`
	Status         InvitationStatus `json:"status"`
	ExpiresAt      *time.Time       `json:"expires_at"`
	AcceptedAt     *time.Time       `json:"accepted_at"`
	CreatedAt      time.Time        `json:"created_at"`
	Link           string           `json:"link,omitempty"`
}

// ExpiredAt reports whether the invitation's expiry has passed at now.
func (i *Invitation) ExpiredAt(now time.Time) bool {
	return i.ExpiresAt != nil && !now.Before(*i.ExpiresAt)
}

// InvitationRepository defines storage operations for invitations.
type InvitationRepository interface {
	Create(ctx context.Context, inv *Invitation) error
	GetByID(ctx context.Context, id string) (*Invitation, error)
	ListByEvent(ctx context.Context, eventID string) ([]*Invitation, error)
	// UpdateStatus moves a pending invitation to status. Returns ErrInvitationClosed
	// when the invitation is no longer pending.
	UpdateStatus(ctx context.Context, id string, status InvitationStatus, acceptedAt *time.Time) (*Invitation, error)
}

// NewInvitation holds the caller-supplied fields of an invitation.
type NewInvitation struct {
	EventID        string
	InvitedBy      string
	Mode           InvitationMode
	RecipientEmail *string
	Message        *string
	ExpiresAt      *time.Time
}

// InvitationService defines invitation operations.
type InvitationService interface {
	Create(ctx context.Context, in NewInvitation) (*Invitation, error)
	ListByEvent(ctx context.Context, eventID, hostID string) ([]*Invitation, error)
	Respond(ctx context.Context, invitationID string, responder *Identity, accept bool) (*Invitation, error)
}
