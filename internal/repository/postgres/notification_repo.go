package postgres

import (
	"context"
	"database/sql"

	"eventscape/internal/domain"
)

type notificationRepository struct {
	DB *sql.DB
}

func NewNotificationRepository(db *sql.DB) domain.NotificationRepository {
	return &notificationRepository{
		DB: db,
	}
}

const notificationColumns = `notification_id, user_id, type, announcement_id, invitation_id, is_read, created_at`

// attendingStatuses are the RSVP states that receive announcements.
const attendingStatuses = `('going', 'interested', 'waitlisted')`

func scanNotification(row scanner) (*domain.Notification, error) {
	n := &domain.Notification{}
	var announcementID, invitationID sql.NullString
	if err := row.Scan(&n.ID, &n.UserID, &n.Type, &announcementID, &invitationID, &n.IsRead, &n.CreatedAt); err != nil {
		return nil, err
	}
	if announcementID.Valid {
		n.AnnouncementID = &announcementID.String
	}
	if invitationID.Valid {
		n.InvitationID = &invitationID.String
	}
	return n, nil
}

func (r *notificationRepository) FanOutAnnouncement(ctx context.Context, announcementID, eventID string) (int, error) {
	query := `
		INSERT INTO notifications (user_id, type, announcement_id)
		SELECT r.user_id, 'announcement', $1
		FROM rsvps r
		JOIN users u ON u.user_id = r.user_id
		WHERE r.event_id = $2
		  AND r.status IN ` + attendingStatuses + `
		  AND u.notification_setting IN ('in_app', 'all')
	`
	result, err := r.DB.ExecContext(ctx, query, announcementID, eventID)
	if err != nil {
		return 0, translateError(err)
	}
	n, err := result.RowsAffected()
	return int(n), err
}

func (r *notificationRepository) CreateForInvitation(ctx context.Context, userID, invitationID string) (*domain.Notification, error) {
	query := `
		INSERT INTO notifications (user_id, type, invitation_id)
		VALUES ($1, 'invitation', $2)
		RETURNING ` + notificationColumns
	n, err := scanNotification(r.DB.QueryRowContext(ctx, query, userID, invitationID))
	if err != nil {
		return nil, translateError(err)
	}
	return n, nil
}

func (r *notificationRepository) ListForUser(ctx context.Context, userID string, params domain.PaginationParams) ([]*domain.Notification, int, error) {
	var total int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM notifications WHERE user_id = $1`, userID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}
	query := `SELECT ` + notificationColumns + ` FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.DB.QueryContext(ctx, query, userID, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	list := make([]*domain.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, n)
	}
	return list, total, rows.Err()
}

func (r *notificationRepository) MarkRead(ctx context.Context, id, userID string) error {
	query := `UPDATE notifications SET is_read = TRUE WHERE notification_id = $1 AND user_id = $2`
	result, err := r.DB.ExecContext(ctx, query, id, userID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *notificationRepository) EmailRecipients(ctx context.Context, eventID string) ([]*domain.Recipient, error) {
	query := `
		SELECT u.user_id, u.email, u.display_name, u.notification_setting
		FROM rsvps r
		JOIN users u ON u.user_id = r.user_id
		WHERE r.event_id = $1
		  AND r.status IN ` + attendingStatuses + `
		  AND u.notification_setting IN ('email', 'all')
		ORDER BY u.email
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recipients []*domain.Recipient
	for rows.Next() {
		rc := &domain.Recipient{}
		var displayName sql.NullString
		if err := rows.Scan(&rc.UserID, &rc.Email, &displayName, &rc.NotificationSetting); err != nil {
			return nil, err
		}
		if displayName.Valid {
			rc.DisplayName = &displayName.String
		}
		recipients = append(recipients, rc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return recipients, nil
}
