package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"eventscape/internal/domain"
)

type statsService struct {
	repo   domain.StatsRepository
	logger *slog.Logger
	now    func() time.Time
}

// NewStatsService creates the dashboard aggregation service.
func NewStatsService(repo domain.StatsRepository, logger *slog.Logger) domain.StatsService {
	return &statsService{repo: repo, logger: logger, now: time.Now}
}

// GetDashboardStats computes the three dashboard counts for userID. Each
// count is computed on its own; one that fails is reported unavailable
// without affecting the others. The evaluation instant is read once so every
// event lands in exactly one of upcoming or attended.
func (s *statsService) GetDashboardStats(ctx context.Context, userID string) domain.DashboardStats {
	now := s.now()
	var stats domain.DashboardStats
	var wg sync.WaitGroup
	wg.Go(func() {
		stats.Upcoming = s.metric(ctx, userID, "upcoming", func() (int, error) {
			return s.countEvents(ctx, userID, domain.BucketUpcoming, now)
		})
	})
	wg.Go(func() {
		stats.Attended = s.metric(ctx, userID, "attended", func() (int, error) {
			return s.countEvents(ctx, userID, domain.BucketPast, now)
		})
	})
	wg.Go(func() {
		stats.Notifications = s.metric(ctx, userID, "notifications", func() (int, error) {
			return s.repo.CountUnreadNotifications(ctx, userID)
		})
	})
	wg.Wait()
	return stats
}

func (s *statsService) metric(ctx context.Context, userID, name string, compute func() (int, error)) domain.Metric {
	n, err := compute()
	if err != nil {
		s.logger.WarnContext(ctx, "dashboard stat unavailable", "stat", name, "user_id", userID, "error", err)
		return domain.Unavailable()
	}
	return domain.Available(n)
}

// countEvents counts the union of events userID hosts and events userID is
// going to, within bucket. An event both hosted and attended counts once.
func (s *statsService) countEvents(ctx context.Context, userID string, bucket domain.EventBucket, at time.Time) (int, error) {
	hosted, err := s.repo.HostedEventIDs(ctx, userID, bucket, at)
	if err != nil {
		return 0, err
	}
	going, err := s.repo.GoingEventIDs(ctx, userID, bucket, at)
	if err != nil {
		return 0, err
	}
	seen := make(map[string]struct{}, len(hosted)+len(going))
	for _, id := range hosted {
		seen[id] = struct{}{}
	}
	for _, id := range going {
		seen[id] = struct{}{}
	}
	return len(seen), nil
}
