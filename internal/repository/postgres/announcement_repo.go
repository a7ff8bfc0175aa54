package postgres

import (
	"context"
	"database/sql"
	"time"

	"eventscape/internal/domain"
)

type announcementRepository struct {
	DB *sql.DB
}

func NewAnnouncementRepository(db *sql.DB) domain.AnnouncementRepository {
	return &announcementRepository{
		DB: db,
	}
}

const announcementColumns = `announcement_id, event_id, host_id, content, scheduled_release, released_at, created_at`

func scanAnnouncement(row scanner) (*domain.Announcement, error) {
	a := &domain.Announcement{}
	var scheduled, released sql.NullTime
	if err := row.Scan(&a.ID, &a.EventID, &a.HostID, &a.Content, &scheduled, &released, &a.CreatedAt); err != nil {
		return nil, err
	}
	if scheduled.Valid {
		a.ScheduledRelease = &scheduled.Time
	}
	if released.Valid {
		a.ReleasedAt = &released.Time
	}
	return a, nil
}

func (r *announcementRepository) queryList(ctx context.Context, query string, args ...any) ([]*domain.Announcement, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*domain.Announcement
	for rows.Next() {
		a, err := scanAnnouncement(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if list == nil {
		list = []*domain.Announcement{}
	}
	return list, nil
}

func (r *announcementRepository) Create(ctx context.Context, a *domain.Announcement) error {
	query := `
		INSERT INTO announcements (event_id, host_id, content, scheduled_release, released_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING announcement_id, created_at
	`
	err := r.DB.QueryRowContext(ctx, query, a.EventID, a.HostID, a.Content, a.ScheduledRelease, a.ReleasedAt).
		Scan(&a.ID, &a.CreatedAt)
	return translateError(err)
}

// ListByEvent returns the event's newest announcements. Unreleased rows are
// skipped unless includeScheduled is set.
func (r *announcementRepository) ListByEvent(ctx context.Context, eventID string, includeScheduled bool) ([]*domain.Announcement, error) {
	query := `SELECT ` + announcementColumns + ` FROM announcements
		WHERE event_id = $1 AND ($2::boolean OR released_at IS NOT NULL)
		ORDER BY created_at DESC
		LIMIT $3`
	return r.queryList(ctx, query, eventID, includeScheduled, listLimit)
}

func (r *announcementRepository) ListDue(ctx context.Context, now time.Time) ([]*domain.Announcement, error) {
	query := `SELECT ` + announcementColumns + ` FROM announcements
		WHERE released_at IS NULL AND scheduled_release <= $1
		ORDER BY scheduled_release ASC`
	return r.queryList(ctx, query, now)
}

func (r *announcementRepository) MarkReleased(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE announcements SET released_at = $1 WHERE announcement_id = $2 AND released_at IS NULL`
	result, err := r.DB.ExecContext(ctx, query, at, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
