package services

import (
	"context"
	"errors"
	"fmt"

	"eventscape/internal/domain"
)

type notificationService struct {
	notificationRepo domain.NotificationRepository
}

func NewNotificationService(notificationRepo domain.NotificationRepository) domain.NotificationService {
	return &notificationService{notificationRepo: notificationRepo}
}

func (s *notificationService) ListMine(ctx context.Context, userID string, params domain.PaginationParams) ([]*domain.Notification, int, error) {
	list, total, err := s.notificationRepo.ListForUser(ctx, userID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}
	return list, total, nil
}

func (s *notificationService) MarkRead(ctx context.Context, notificationID, userID string) error {
	if err := s.notificationRepo.MarkRead(ctx, notificationID, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}
