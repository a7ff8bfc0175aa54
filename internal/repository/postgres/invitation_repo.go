package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"eventscape/internal/domain"
)

type invitationRepository struct {
	DB *sql.DB
}

func NewInvitationRepository(db *sql.DB) domain.InvitationRepository {
	return &invitationRepository{
		DB: db,
	}
}

const invitationColumns = `invitation_id, event_id, invited_by, mode, recipient_email, message, status, expires_at, accepted_at, created_at`

func scanInvitation(row scanner) (*domain.Invitation, error) {
	inv := &domain.Invitation{}
	var email, message sql.NullString
	var expires, accepted sql.NullTime
	err := row.Scan(&inv.ID, &inv.EventID, &inv.InvitedBy, &inv.Mode, &email, &message, &inv.Status,
		&expires, &accepted, &inv.CreatedAt)
	if err != nil {
		return nil, err
	}
	if email.Valid {
		inv.RecipientEmail = &email.String
	}
	if message.Valid {
		inv.Message = &message.String
	}
	if expires.Valid {
		inv.ExpiresAt = &expires.Time
	}
	if accepted.Valid {
		inv.AcceptedAt = &accepted.Time
	}
	return inv, nil
}

func (r *invitationRepository) Create(ctx context.Context, inv *domain.Invitation) error {
	query := `
		INSERT INTO invitations (event_id, invited_by, mode, recipient_email, message, status, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING invitation_id, created_at
	`
	err := r.DB.QueryRowContext(ctx, query,
		inv.EventID, inv.InvitedBy, inv.Mode, inv.RecipientEmail, inv.Message, inv.Status, inv.ExpiresAt,
	).Scan(&inv.ID, &inv.CreatedAt)
	return translateError(err)
}

func (r *invitationRepository) GetByID(ctx context.Context, id string) (*domain.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE invitation_id = $1`
	inv, err := scanInvitation(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translateError(err)
	}
	return inv, nil
}

func (r *invitationRepository) ListByEvent(ctx context.Context, eventID string) ([]*domain.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations
		WHERE event_id = $1
		ORDER BY created_at DESC
		LIMIT $2`
	rows, err := r.DB.QueryContext(ctx, query, eventID, listLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invs []*domain.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		invs = append(invs, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if invs == nil {
		invs = []*domain.Invitation{}
	}
	return invs, nil
}

func (r *invitationRepository) UpdateStatus(ctx context.Context, id string, status domain.InvitationStatus, acceptedAt *time.Time) (*domain.Invitation, error) {
	query := `
		UPDATE invitations SET status = $1, accepted_at = $2
		WHERE invitation_id = $3 AND status = 'pending'
		RETURNING ` + invitationColumns
	inv, err := scanInvitation(r.DB.QueryRowContext(ctx, query, status, acceptedAt, id))
	if err == nil {
		return inv, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	// Either the row is gone or it already left the pending state.
	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return nil, domain.ErrInvitationClosed
}
