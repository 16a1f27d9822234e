package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
)

//go:embed migrations/0001_consolidated.sql
var consolidatedSchema string

// applySchema runs the single consolidated schema migration. There is no
// migration chain: every prior revision (see migrations/legacy) is folded
// into this one file and applied idempotently via "CREATE TABLE IF NOT EXISTS".
func applySchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, consolidatedSchema); err != nil {
		return fmt.Errorf("store: apply schema: %w", err)
	}
	return nil
}
