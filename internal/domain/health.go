package domain

import "context"

// TableCount is the planner's approximate live row count for a table.
type TableCount struct {
	Table      string `json:"table"`
	ApproxRows int64  `json:"approx_rows"`
}

// HealthRepository exposes database diagnostics.
type HealthRepository interface {
	Ping(ctx context.Context) error
	ListTables(ctx context.Context) ([]string, error)
	TableCounts(ctx context.Context) ([]TableCount, error)
}
