// Package ingest implements the row transformer (C3) and ingestion
// coordinator (C4): turning a discovered sheet structure into persisted
// temperature readings, probe readings, and well phase transitions.
package ingest

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the referenced experiment does not exist.
	ErrNotFound = errors.New("ingest: not found")

	// ErrPreconditionFailed is returned when the experiment has no tray
	// configuration assigned.
	ErrPreconditionFailed = errors.New("ingest: precondition failed")

	// ErrConfigurationIncomplete is returned when the experiment's tray
	// configuration has no trays, or a tray has fewer wells than its
	// qty_rows x qty_cols grid. Probes are not checked.
	ErrConfigurationIncomplete = errors.New("ingest: configuration incomplete")

	// ErrInvalidFormat is returned when the uploaded bytes cannot be read as a
	// spreadsheet.
	ErrInvalidFormat = errors.New("ingest: invalid spreadsheet format")

	// ErrMissingRequiredColumn is returned when the header scan cannot locate a
	// required column.
	ErrMissingRequiredColumn = errors.New("ingest: missing required column")

	// ErrConflict is returned when a concurrent ingestion is already in
	// progress for the same experiment.
	ErrConflict = errors.New("ingest: concurrent ingestion in progress")

	// ErrInternal wraps unexpected failures (storage errors, etc).
	ErrInternal = errors.New("ingest: internal error")
)

// InvalidRowError reports a row that could not be turned into a temperature
// reading. It does not abort ingestion: the coordinator counts these and
// continues with the next row.
type InvalidRowError struct {
	RowNumber int // 1-based, spreadsheet row number
	Reason    string
}

func (e *InvalidRowError) Error() string {
	return fmt.Sprintf("ingest: row %d: %s", e.RowNumber, e.Reason)
}

// wrapInternal tags err as ErrInternal and keeps only err's message: the
// cause itself is formatted with %v, so it is not reachable through
// errors.Unwrap or errors.As. For a failed ingestion transaction the
// coordinator logs the cause with pkgerrors.WithStack before this wrap
// erases its concrete type.
func wrapInternal(err error) error {
	return fmt.Errorf("%w: %v", ErrInternal, err)
}
