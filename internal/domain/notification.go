package domain

import (
	"context"
	"time"
)

// NotificationType tags what a notification points at.
type NotificationType string

const (
	NotificationAnnouncement NotificationType = "announcement"
	NotificationInvitation   NotificationType = "invitation"
)

// Notification links a user to an announcement or an invitation.
// swagger:model Notification
type Notification struct {
	ID             string           `json:"notification_id"`
	UserID         string           `json:"user_id"`
	Type           NotificationType `json:"type"`
	AnnouncementID *string          `json:"announcement_id"`
	InvitationID   *string          `json:"invitation_id"`
	IsRead         bool             `json:"is_read"`
	CreatedAt      time.Time        `json:"created_at"`
}

// Recipient is a user reached by an announcement fan-out.
type Recipient struct {
	UserID              string
	Email               string
	DisplayName         *string
	NotificationSetting NotificationSetting
}

// NotificationRepository defines storage operations for notifications.
type NotificationRepository interface {
	// FanOutAnnouncement inserts one unread row per attendee of the announcement's
	// event whose setting includes in-app delivery. Returns rows inserted.
	FanOutAnnouncement(ctx context.Context, announcementID, eventID string) (int, error)
	CreateForInvitation(ctx context.Context, userID, invitationID string) (*Notification, error)
	ListForUser(ctx context.Context, userID string, params PaginationParams) ([]*Notification, int, error)
	MarkRead(ctx context.Context, id, userID string) error
	// EmailRecipients lists attendees of the event whose setting includes email.
	EmailRecipients(ctx context.Context, eventID string) ([]*Recipient, error)
}

// NotificationService defines inbox operations for the current user.
type NotificationService interface {
	ListMine(ctx context.Context, userID string, params PaginationParams) ([]*Notification, int, error)
	MarkRead(ctx context.Context, notificationID, userID string) error
}
