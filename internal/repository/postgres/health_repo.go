package postgres

import (
	"context"
	"database/sql"

	"eventscape/internal/domain"
)

type healthRepository struct {
	DB *sql.DB
}

func NewHealthRepository(db *sql.DB) domain.HealthRepository {
	return &healthRepository{DB: db}
}

func (r *healthRepository) Ping(ctx context.Context) error {
	return r.DB.PingContext(ctx)
}

func (r *healthRepository) ListTables(ctx context.Context) ([]string, error) {
	query := `
		SELECT table_name FROM information_schema.tables
		WHERE table_schema = 'public' AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tables := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

// TableCounts reads planner estimates rather than running COUNT(*) per table.
func (r *healthRepository) TableCounts(ctx context.Context) ([]domain.TableCount, error) {
	query := `
		SELECT relname, n_live_tup FROM pg_stat_user_tables
		ORDER BY relname
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make([]domain.TableCount, 0)
	for rows.Next() {
		var c domain.TableCount
		if err := rows.Scan(&c.Table, &c.ApproxRows); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}
