package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventscape/internal/domain"
)

const (
	recentUsersLimit = 50
	// unusablePasswordHash never matches a bcrypt comparison, so accounts
	// created without a password cannot log in until one is set.
	unusablePasswordHash = "!"
)

type userService struct {
	userRepo domain.UserRepository
	hasher   domain.PasswordHasher
}

// NewUserService creates a UserService with the given repository and password hasher.
func NewUserService(userRepo domain.UserRepository, hasher domain.PasswordHasher) domain.UserService {
	return &userService{
		userRepo: userRepo,
		hasher:   hasher,
	}
}

func (s *userService) ListRecent(ctx context.Context) ([]*domain.User, error) {
	users, err := s.userRepo.ListRecent(ctx, recentUsersLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *userService) Create(ctx context.Context, email, password string, displayName *string) (*domain.User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	hash := unusablePasswordHash
	if password != "" {
		if len(password) < minPasswordLen {
			return nil, invalidf("password must be at least %d characters", minPasswordLen)
		}
		if hash, err = s.hasher.Hash(password); err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
	}
	user := domain.NewUser(email, hash, trimmedOrNil(displayName), time.Now())
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, id string, upd domain.ProfileUpdate) (*domain.User, error) {
	if upd.NotificationSetting != nil && !upd.NotificationSetting.Valid() {
		return nil, invalidf("notification_setting must be one of none, email, in_app, all")
	}
	if upd.DisplayName != nil {
		name := strings.TrimSpace(*upd.DisplayName)
		upd.DisplayName = &name
	}
	user, err := s.userRepo.UpdateProfile(ctx, id, upd)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}
