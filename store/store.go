// Package store persists the droplet-freezing assay data model over
// database/sql, using modernc.org/sqlite as the pure-Go driver so the repo
// never needs cgo.
package store

import (
	"context"
	"database/sql"
	"fmt"

	pkgerrors "github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

// Querier is satisfied by both *sql.DB and *sql.Tx, letting repositories run
// unchanged inside or outside a transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// DB wraps a *sql.DB with the repositories built against it.
type DB struct {
	*sql.DB
}

// Open opens (and, if necessary, creates) the sqlite database at dsn and
// applies the consolidated schema. dsn is passed straight through to the
// driver, so "file:spice.db?_pragma=foreign_keys(1)" and ":memory:" both work.
func Open(ctx context.Context, dsn string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", pkgerrors.WithStack(err))
	}
	sqlDB.SetMaxOpenConns(1) // sqlite: one writer at a time, avoids SQLITE_BUSY under the coordinator's transaction

	if _, err := sqlDB.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("store: enable foreign keys: %w", pkgerrors.WithStack(err))
	}

	if err := applySchema(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, err
	}

	return &DB{DB: sqlDB}, nil
}

// WithTx runs fn inside a transaction, committing on success and rolling
// back on error or panic.
func (db *DB) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
		if err != nil {
			tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	err = fn(tx)
	return err
}
