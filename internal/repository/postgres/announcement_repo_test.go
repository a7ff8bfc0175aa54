package postgres

import (
	"context"
	"testing"
	"time"

	"eventscape/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

var announcementRowColumns = []string{"announcement_id", "event_id", "host_id", "content", "scheduled_release", "released_at", "created_at"}

func TestAnnouncementRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`INSERT INTO announcements`).
		WithArgs("ev-1", "u-1", "Doors open at 6", nil, now).
		WillReturnRows(sqlmock.NewRows([]string{"announcement_id", "created_at"}).AddRow("a-1", now))

	a := &domain.Announcement{EventID: "ev-1", HostID: "u-1", Content: "Doors open at 6", ReleasedAt: &now}
	require.NoError(t, NewAnnouncementRepository(db).Create(context.Background(), a))
	require.Equal(t, "a-1", a.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAnnouncementRepository_ListByEvent(t *testing.T) {
	now := time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)
	later := now.Add(time.Hour)
	listQuery := `WHERE event_id = \$1 AND \(\$2::boolean OR released_at IS NOT NULL\)\s+ORDER BY created_at DESC\s+LIMIT \$3`

	t.Run("released only", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(listQuery).
			WithArgs("ev-1", false, 200).
			WillReturnRows(sqlmock.NewRows(announcementRowColumns).
				AddRow("a-2", "ev-1", "u-1", "second", now, now, now).
				AddRow("a-1", "ev-1", "u-1", "first", nil, now, now))

		list, err := NewAnnouncementRepository(db).ListByEvent(context.Background(), "ev-1", false)
		require.NoError(t, err)
		require.Len(t, list, 2)
		require.NotNil(t, list[0].ScheduledRelease)
		require.Nil(t, list[1].ScheduledRelease)
		require.Equal(t, now, *list[1].ReleasedAt)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("with scheduled", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(listQuery).
			WithArgs("ev-1", true, 200).
			WillReturnRows(sqlmock.NewRows(announcementRowColumns).
				AddRow("a-3", "ev-1", "u-1", "pending", later, nil, now))

		list, err := NewAnnouncementRepository(db).ListByEvent(context.Background(), "ev-1", true)
		require.NoError(t, err)
		require.Len(t, list, 1)
		require.Nil(t, list[0].ReleasedAt)
		require.Equal(t, later, *list[0].ScheduledRelease)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAnnouncementRepository_ListDueAndMarkReleased(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)
	due := now.Add(-time.Minute)
	mock.ExpectQuery(`WHERE released_at IS NULL AND scheduled_release <= \$1`).
		WithArgs(now).
		WillReturnRows(sqlmock.NewRows(announcementRowColumns).
			AddRow("a-1", "ev-1", "u-1", "later", due, nil, now))
	mock.ExpectExec(`UPDATE announcements SET released_at = \$1`).
		WithArgs(now, "a-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE announcements SET released_at = \$1`).
		WithArgs(now, "a-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewAnnouncementRepository(db)
	list, err := repo.ListDue(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Nil(t, list[0].ReleasedAt)

	require.NoError(t, repo.MarkReleased(context.Background(), "a-1", now))
	require.ErrorIs(t, repo.MarkReleased(context.Background(), "a-1", now), domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
