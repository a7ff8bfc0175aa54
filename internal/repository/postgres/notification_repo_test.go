package postgres

import (
	"context"
	"testing"
	"time"

	"eventscape/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

var notificationRowColumns = []string{"notification_id", "user_id", "type", "announcement_id", "invitation_id", "is_read", "created_at"}

func TestNotificationRepository_FanOutAnnouncement(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO notifications \(user_id, type, announcement_id\)\s+SELECT r.user_id, 'announcement', \$1`).
		WithArgs("a-1", "ev-1").
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := NewNotificationRepository(db).FanOutAnnouncement(context.Background(), "a-1", "ev-1")
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepository_CreateForInvitation(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`VALUES \(\$1, 'invitation', \$2\)`).
		WithArgs("u-2", "i-1").
		WillReturnRows(sqlmock.NewRows(notificationRowColumns).
			AddRow("n-1", "u-2", "invitation", nil, "i-1", false, now))

	n, err := NewNotificationRepository(db).CreateForInvitation(context.Background(), "u-2", "i-1")
	require.NoError(t, err)
	require.Equal(t, domain.NotificationInvitation, n.Type)
	require.Nil(t, n.AnnouncementID)
	require.Equal(t, "i-1", *n.InvitationID)
	require.False(t, n.IsRead)
}

func TestNotificationRepository_ListForUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM notifications WHERE user_id = \$1`).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(`ORDER BY created_at DESC\s+LIMIT \$2 OFFSET \$3`).
		WithArgs("u-1", 20, 0).
		WillReturnRows(sqlmock.NewRows(notificationRowColumns).
			AddRow("n-2", "u-1", "announcement", "a-1", nil, false, now).
			AddRow("n-1", "u-1", "invitation", nil, "i-1", true, now))

	list, total, err := NewNotificationRepository(db).ListForUser(context.Background(), "u-1", domain.PaginationParams{Page: 1, PageSize: 20})
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Len(t, list, 2)
	require.Equal(t, "a-1", *list[0].AnnouncementID)
	require.True(t, list[1].IsRead)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepository_MarkRead(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`UPDATE notifications SET is_read = TRUE`).
		WithArgs("n-1", "u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE notifications SET is_read = TRUE`).
		WithArgs("n-1", "u-other").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewNotificationRepository(db)
	require.NoError(t, repo.MarkRead(context.Background(), "n-1", "u-1"))
	require.ErrorIs(t, repo.MarkRead(context.Background(), "n-1", "u-other"), domain.ErrNotFound)
}

func TestNotificationRepository_EmailRecipients(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`u.notification_setting IN \('email', 'all'\)`).
		WithArgs("ev-1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "email", "display_name", "notification_setting"}).
			AddRow("u-1", "a@example.com", "Alice", "all").
			AddRow("u-2", "b@example.com", nil, "email"))

	recipients, err := NewNotificationRepository(db).EmailRecipients(context.Background(), "ev-1")
	require.NoError(t, err)
	require.Len(t, recipients, 2)
	require.Equal(t, "Alice", *recipients[0].DisplayName)
	require.Equal(t, domain.NotifyEmail, recipients[1].NotificationSetting)
}
