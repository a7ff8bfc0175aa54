package postgres

import (
	"context"
	"database/sql"

	"eventscape/internal/domain"
)

type rsvpRepository struct {
	DB *sql.DB
}

func NewRSVPRepository(db *sql.DB) domain.RSVPRepository {
	return &rsvpRepository{
		DB: db,
	}
}

func (r *rsvpRepository) Upsert(ctx context.Context, rsvp *domain.RSVP) error {
	query := `
		INSERT INTO rsvps (event_id, user_id, status, waitlist_position)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (event_id, user_id)
		DO UPDATE SET status = EXCLUDED.status, waitlist_position = EXCLUDED.waitlist_position
		RETURNING rsvp_id, created_at
	`
	err := r.DB.QueryRowContext(ctx, query, rsvp.EventID, rsvp.UserID, rsvp.Status, rsvp.WaitlistPosition).
		Scan(&rsvp.ID, &rsvp.CreatedAt)
	return translateError(err)
}

func (r *rsvpRepository) ListByEvent(ctx context.Context, eventID string, status *domain.RSVPStatus) ([]*domain.RSVPWithUser, error) {
	query := `
		SELECT r.rsvp_id, r.event_id, r.user_id, r.status, r.waitlist_position, r.created_at,
		       u.email, u.display_name
		FROM rsvps r
		JOIN users u ON u.user_id = r.user_id
		WHERE r.event_id = $1 AND ($2::text IS NULL OR r.status = $2)
		ORDER BY r.created_at DESC
		LIMIT $3
	`
	var statusArg any
	if status != nil {
		statusArg = string(*status)
	}
	rows, err := r.DB.QueryContext(ctx, query, eventID, statusArg, listLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rsvps []*domain.RSVPWithUser
	for rows.Next() {
		rw := &domain.RSVPWithUser{}
		var position sql.NullInt64
		var displayName sql.NullString
		if err := rows.Scan(&rw.ID, &rw.EventID, &rw.UserID, &rw.Status, &position, &rw.CreatedAt,
			&rw.Email, &displayName); err != nil {
			return nil, err
		}
		if position.Valid {
			p := int(position.Int64)
			rw.WaitlistPosition = &p
		}
		if displayName.Valid {
			rw.DisplayName = &displayName.String
		}
		rsvps = append(rsvps, rw)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if rsvps == nil {
		rsvps = []*domain.RSVPWithUser{}
	}
	return rsvps, nil
}

func (r *rsvpRepository) CountGoing(ctx context.Context, eventID, excludeUserID string) (int, error) {
	query := `
		SELECT COUNT(*) FROM rsvps
		WHERE event_id = $1 AND status = 'going' AND user_id <> $2
	`
	var n int
	err := r.DB.QueryRowContext(ctx, query, eventID, excludeUserID).Scan(&n)
	return n, err
}

func (r *rsvpRepository) NextWaitlistPosition(ctx context.Context, eventID string) (int, error) {
	query := `
		SELECT COALESCE(MAX(waitlist_position), 0) + 1 FROM rsvps
		WHERE event_id = $1 AND status = 'waitlisted'
	`
	var n int
	err := r.DB.QueryRowContext(ctx, query, eventID).Scan(&n)
	return n, err
}
