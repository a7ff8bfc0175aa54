package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"eventscape/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

const eventColumns = `event_id, host_id, title, location, content, start_time, end_time, visibility, capacity, waitlist, created_at`

const eventSummarySelect = `
	SELECT e.event_id, e.host_id, e.title, e.location, e.content, e.start_time, e.end_time, e.visibility,
	       e.capacity, e.waitlist, e.created_at,
	       u.display_name AS host_name,
	       COALESCE(v.going_count, 0) AS going_count,
	       COALESCE(v.interested_count, 0) AS interested_count,
	       COALESCE(v.waitlisted_count, 0) AS waitlisted_count
	FROM events e
	JOIN users u ON u.user_id = e.host_id
	LEFT JOIN event_attendance_counts v ON v.event_id = e.event_id
`

type scanner interface {
	Scan(dest ...any) error
}

// listLimit caps the per-event listings of RSVPs, announcements and
// invitations. Each returns the newest rows first.
const listLimit = 200

// eventNulls holds the nullable event columns while scanning.
type eventNulls struct {
	location sql.NullString
	content  sql.NullString
	endTime  sql.NullTime
	capacity sql.NullInt64
}

func (n *eventNulls) dest(e *domain.Event) []any {
	return []any{
		&e.ID, &e.HostID, &e.Title, &n.location, &n.content, &e.StartTime, &n.endTime,
		&e.Visibility, &n.capacity, &e.Waitlist, &e.CreatedAt,
	}
}

func (n *eventNulls) apply(e *domain.Event) {
	if n.location.Valid {
		e.Location = &n.location.String
	}
	if n.content.Valid {
		e.Content = &n.content.String
	}
	if n.endTime.Valid {
		e.EndTime = &n.endTime.Time
	}
	if n.capacity.Valid {
		c := int(n.capacity.Int64)
		e.Capacity = &c
	}
}

func scanEvent(row scanner) (*domain.Event, error) {
	e := &domain.Event{}
	var nulls eventNulls
	if err := row.Scan(nulls.dest(e)...); err != nil {
		return nil, err
	}
	nulls.apply(e)
	return e, nil
}

func scanEventSummary(row scanner) (*domain.EventSummary, error) {
	s := &domain.EventSummary{}
	var nulls eventNulls
	var hostName sql.NullString
	dest := append(nulls.dest(&s.Event), &hostName, &s.GoingCount, &s.InterestedCount, &s.WaitlistedCount)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	nulls.apply(&s.Event)
	if hostName.Valid {
		s.HostName = &hostName.String
	}
	return s, nil
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (host_id, title, location, content, start_time, end_time, visibility, capacity, waitlist)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING event_id, created_at
	`
	err := r.DB.QueryRowContext(ctx, query,
		e.HostID, e.Title, e.Location, e.Content, e.StartTime, e.EndTime, e.Visibility, e.Capacity, e.Waitlist,
	).Scan(&e.ID, &e.CreatedAt)
	return translateError(err)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE event_id = $1`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translateError(err)
	}
	return e, nil
}

func (r *eventRepository) GetSummary(ctx context.Context, id string) (*domain.EventSummary, error) {
	query := eventSummarySelect + ` WHERE e.event_id = $1 LIMIT 1`
	s, err := scanEventSummary(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translateError(err)
	}
	return s, nil
}

func (r *eventRepository) List(ctx context.Context, params domain.PaginationParams) ([]*domain.EventSummary, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := eventSummarySelect + ` ORDER BY e.start_time DESC LIMIT $1 OFFSET $2`
	rows, err := r.DB.QueryContext(ctx, query, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	events := make([]*domain.EventSummary, 0)
	for rows.Next() {
		s, err := scanEventSummary(rows)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, s)
	}
	return events, total, rows.Err()
}

func (r *eventRepository) Update(ctx context.Context, id string, upd domain.EventUpdate) (*domain.Event, error) {
	var setClauses []string
	var args []any
	set := func(column string, value any) {
		args = append(args, value)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if upd.Title != nil {
		set("title", *upd.Title)
	}
	if upd.Location != nil {
		set("location", *upd.Location)
	}
	if upd.Content != nil {
		set("content", *upd.Content)
	}
	if upd.StartTime != nil {
		set("start_time", *upd.StartTime)
	}
	if upd.EndTime != nil {
		set("end_time", *upd.EndTime)
	}
	if upd.Visibility != nil {
		set("visibility", string(*upd.Visibility))
	}
	if upd.Capacity != nil {
		set("capacity", *upd.Capacity)
	}
	if upd.Waitlist != nil {
		set("waitlist", *upd.Waitlist)
	}
	if len(args) == 0 {
		// No fields to update; just fetch current row
		return r.GetByID(ctx, id)
	}
	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE events SET %s
		WHERE event_id = $%d
		RETURNING `+eventColumns, strings.Join(setClauses, ", "), len(args))
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, translateError(err)
	}
	return e, nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM events WHERE event_id = $1`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
