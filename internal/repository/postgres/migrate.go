package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// DefaultStatsChannel is the NOTIFY channel used when none is configured.
const DefaultStatsChannel = "stats_channel"

const statsChannelPlaceholder = "{{stats_channel}}"

//go:embed schema.sql
var schemaSQL string

// Schema returns the idempotent schema with the stats triggers publishing on
// channel.
func Schema(channel string) (string, error) {
	if strings.TrimSpace(channel) == "" {
		return "", errors.New("stats channel is required")
	}
	return strings.ReplaceAll(schemaSQL, statsChannelPlaceholder, pq.QuoteLiteral(channel)), nil
}

// Migrate applies the schema. The triggers notify on channel, which must be
// the channel the stats bridge listens on.
func Migrate(ctx context.Context, db *sql.DB, channel string) error {
	schema, err := Schema(channel)
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
