package postgres

import (
	"context"
	"database/sql"
	"time"

	"eventscape/internal/domain"
)

type statsRepository struct {
	DB *sql.DB
}

// NewStatsRepository returns the read side of the dashboard counts.
func NewStatsRepository(db *sql.DB) domain.StatsRepository {
	return &statsRepository{
		DB: db,
	}
}

// startComparison returns the start_time predicate for a bucket. Upcoming is
// inclusive of the instant so an event starting exactly now is never counted
// in both buckets.
func startComparison(bucket domain.EventBucket) string {
	if bucket == domain.BucketPast {
		return `start_time < $2`
	}
	return `start_time >= $2`
}

func (r *statsRepository) HostedEventIDs(ctx context.Context, userID string, bucket domain.EventBucket, at time.Time) ([]string, error) {
	query := `SELECT event_id FROM events WHERE host_id = $1 AND ` + startComparison(bucket)
	return r.queryIDs(ctx, query, userID, at)
}

func (r *statsRepository) GoingEventIDs(ctx context.Context, userID string, bucket domain.EventBucket, at time.Time) ([]string, error) {
	query := `
		SELECT e.event_id
		FROM rsvps r
		JOIN events e ON e.event_id = r.event_id
		WHERE r.user_id = $1 AND r.status = 'going' AND e.` + startComparison(bucket)
	return r.queryIDs(ctx, query, userID, at)
}

func (r *statsRepository) CountUnreadNotifications(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE`, userID,
	).Scan(&n)
	return n, err
}

func (r *statsRepository) queryIDs(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
