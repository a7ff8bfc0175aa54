package domain

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicateEmail is returned when registering or creating a user with a taken email.
var ErrDuplicateEmail = errors.New("email already in use")

// NotificationSetting is how a user wants to hear about announcements and invitations.
type NotificationSetting string

const (
	NotifyNone  NotificationSetting = "none"
	NotifyEmail NotificationSetting = "email"
	NotifyInApp NotificationSetting = "in_app"
	NotifyAll   NotificationSetting = "all"
)

// Valid reports whether s is one of the known settings.
func (s NotificationSetting) Valid() bool {
	switch s {
	case NotifyNone, NotifyEmail, NotifyInApp, NotifyAll:
		return true
	}
	return false
}

// WantsInApp reports whether the user should receive notification rows.
func (s NotificationSetting) WantsInApp() bool { return s == NotifyInApp || s == NotifyAll }

// WantsEmail reports whether the user should receive emails.
func (s NotificationSetting) WantsEmail() bool { return s == NotifyEmail || s == NotifyAll }

// User represents a registered user
// swagger:model User
type User struct {
	ID                  string              `json:"user_id"`
	Email               string              `json:"email"`
	DisplayName         *string             `json:"display_name"`
	NotificationSetting NotificationSetting `json:"notification_setting"`
	PasswordHash        string              `json:"-"`
	CreatedAt           time.Time           `json:"created_at"`
}

// NewUser returns a new User with the given fields. ID is typically set by the repository on create.
func NewUser(email, passwordHash string, displayName *string, createdAt time.Time) *User {
	return &User{
		Email:               email,
		DisplayName:         displayName,
		NotificationSetting: NotifyInApp,
		PasswordHash:        passwordHash,
		CreatedAt:           createdAt,
	}
}

// Identity is the resolved per-request user record handed to the core.
type Identity struct {
	UserID              string              `json:"user_id"`
	Email               string              `json:"email"`
	DisplayName         *string             `json:"display_name"`
	NotificationSetting NotificationSetting `json:"notification_setting"`
}

// Identity returns the request identity view of u.
func (u *User) Identity() *Identity {
	return &Identity{
		UserID:              u.ID,
		Email:               u.Email,
		DisplayName:         u.DisplayName,
		NotificationSetting: u.NotificationSetting,
	}
}

// ProfileUpdate holds optional profile fields; nil fields are unchanged.
type ProfileUpdate struct {
	DisplayName         *string
	NotificationSetting *NotificationSetting
}

// PasswordHasher handles hashing and verification of password credentials.
type PasswordHasher interface {
	Hash(password string) (hash string, err error)
	Compare(hash, password string) error
}

// TokenIssuer issues session tokens for an authenticated user.
type TokenIssuer interface {
	Issue(userID, email string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the authenticated user ID.
type TokenVerifier interface {
	Verify(token string) (userID string, err error)
}

// UserRepository defines the interface for user storage
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	ListRecent(ctx context.Context, limit int) ([]*User, error)
	UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) (*User, error)
}

// AuthService registers users and exchanges credentials for session tokens.
type AuthService interface {
	Register(ctx context.Context, email, password string, displayName *string) (*User, error)
	Login(ctx context.Context, email, password string) (token string, user *User, err error)
	Resolve(ctx context.Context, userID string) (*Identity, error)
}

// UserService defines user listing and profile operations.
type UserService interface {
	ListRecent(ctx context.Context) ([]*User, error)
	Create(ctx context.Context, email, password string, displayName *string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) (*User, error)
}
