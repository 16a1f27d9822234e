package ingest

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/EERL-EPFL/spice-api-sub001/model"
	"github.com/EERL-EPFL/spice-api-sub001/store"
)

func testLogger(t *testing.T) *zap.SugaredLogger {
	t.Helper()
	log, err := zap.NewDevelopment()
	require.NoError(t, err)
	return log.Sugar()
}

func buildMergedSheet(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for r, row := range rows {
		for c, v := range row {
			axis, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, axis, v))
		}
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

// setupExperiment seeds one tray configuration, one 1x2 tray, two wells, and
// one probe, returning the experiment ready for IngestSpreadsheet.
func setupExperiment(t *testing.T, db *store.DB) model.Experiment {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()

	tc := model.TrayConfiguration{ID: uuid.New(), Name: "cfg", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, (store.TrayConfigurationRepo{}).Insert(ctx, db, tc))

	tray := model.Tray{ID: uuid.New(), TrayConfigurationID: tc.ID, OrderSequence: 1, QtyCols: 2, QtyRows: 1, Name: "Tray 1", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, (store.TrayRepo{}).Insert(ctx, db, tray))

	wellA1 := model.Well{ID: uuid.New(), TrayID: tray.ID, RowLetter: "A", ColumnNumber: 1, CreatedAt: now, UpdatedAt: now}
	wellA2 := model.Well{ID: uuid.New(), TrayID: tray.ID, RowLetter: "A", ColumnNumber: 2, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, (store.WellRepo{}).Insert(ctx, db, wellA1))
	require.NoError(t, (store.WellRepo{}).Insert(ctx, db, wellA2))

	probe := model.Probe{ID: uuid.New(), TrayID: tray.ID, Name: "Probe 1", DataColumnIndex: 1, PositionX: decimal.Zero, PositionY: decimal.Zero, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, (store.ProbeRepo{}).Insert(ctx, db, probe))

	experiment := model.Experiment{ID: uuid.New(), Name: "exp 1", TrayConfigurationID: &tc.ID, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, (store.ExperimentRepo{}).Insert(ctx, db, experiment))

	return experiment
}

func TestIngestSpreadsheetHappyPath(t *testing.T) {
	ctx := context.Background()
	db, err := store.Open(ctx, ":memory:")
	require.NoError(t, err)
	defer db.Close()

	experiment := setupExperiment(t, db)

	data := buildMergedSheet(t, [][]any{
		{"Date", "Time", "Probe 1", "P1:A1", "P1:A2"},
		{"2026-03-01", "12:00:00", -2.0, 0, 0},
		{"2026-03-01", "12:00:01", -5.0, 1, 0},
		{"2026-03-01", "12:00:02", -6.0, 1, 1},
	})

	coordinator := NewCoordinator(db, testLogger(t))
	report, err := coordinator.IngestSpreadsheet(ctx, experiment.ID, data)
	require.NoError(t, err)
	require.Equal(t, 3, report.RowsProcessed)
	require.Equal(t, 0, report.RowsInvalid)
	require.Equal(t, 3, report.TemperatureReadingsInserted)
	require.Equal(t, 2, report.PhaseTransitionsInserted, "A1 freezes at row 2, A2 freezes at row 3")

	readings, err := (store.TemperatureReadingRepo{}).ListByExperiment(ctx, db, experiment.ID)
	require.NoError(t, err)
	require.Len(t, readings, 3)

	transitions, err := (store.WellPhaseTransitionRepo{}).ListByExperiment(ctx, db, experiment.ID)
	require.NoError(t, err)
	require.Len(t, transitions, 2)
}

func TestIngestSpreadsheetIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db, err := store.Open(ctx, ":memory:")
	require.NoError(t, err)
	defer db.Close()

	experiment := setupExperiment(t, db)
	data := buildMergedSheet(t, [][]any{
		{"Date", "Time", "Probe 1", "P1:A1", "P1:A2"},
		{"2026-03-01", "12:00:00", -2.0, 0, 0},
		{"2026-03-01", "12:00:01", -5.0, 1, 1},
	})

	coordinator := NewCoordinator(db, testLogger(t))
	_, err = coordinator.IngestSpreadsheet(ctx, experiment.ID, data)
	require.NoError(t, err)
	reportAgain, err := coordinator.IngestSpreadsheet(ctx, experiment.ID, data)
	require.NoError(t, err)
	require.Equal(t, 2, reportAgain.RowsProcessed)

	readings, err := (store.TemperatureReadingRepo{}).ListByExperiment(ctx, db, experiment.ID)
	require.NoError(t, err)
	require.Len(t, readings, 2, "re-ingesting the same bytes must not duplicate rows")
}

func TestIngestSpreadsheetRejectsMissingExperiment(t *testing.T) {
	ctx := context.Background()
	db, err := store.Open(ctx, ":memory:")
	require.NoError(t, err)
	defer db.Close()

	coordinator := NewCoordinator(db, testLogger(t))
	_, err = coordinator.IngestSpreadsheet(ctx, uuid.New(), []byte{})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestIngestSpreadsheetRejectsMissingTrayConfiguration(t *testing.T) {
	ctx := context.Background()
	db, err := store.Open(ctx, ":memory:")
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	experiment := model.Experiment{ID: uuid.New(), Name: "no config", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, (store.ExperimentRepo{}).Insert(ctx, db, experiment))

	coordinator := NewCoordinator(db, testLogger(t))
	_, err = coordinator.IngestSpreadsheet(ctx, experiment.ID, []byte{})
	require.ErrorIs(t, err, ErrPreconditionFailed)
}

func TestIngestSpreadsheetRejectsPartiallyPopulatedTray(t *testing.T) {
	ctx := context.Background()
	db, err := store.Open(ctx, ":memory:")
	require.NoError(t, err)
	defer db.Close()

	experiment := setupExperiment(t, db) // tray 1 is fully populated: 1x2

	now := time.Now().UTC()
	tc, err := (store.TrayConfigurationRepo{}).GetByID(ctx, db, *experiment.TrayConfigurationID)
	require.NoError(t, err)
	require.NotNil(t, tc)

	// tray 2 declares a 2x2 grid but only one well is actually seeded.
	tray2 := model.Tray{ID: uuid.New(), TrayConfigurationID: tc.ID, OrderSequence: 2, QtyCols: 2, QtyRows: 2, Name: "Tray 2", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, (store.TrayRepo{}).Insert(ctx, db, tray2))
	incompleteWell := model.Well{ID: uuid.New(), TrayID: tray2.ID, RowLetter: "A", ColumnNumber: 1, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, (store.WellRepo{}).Insert(ctx, db, incompleteWell))

	coordinator := NewCoordinator(db, testLogger(t))
	_, err = coordinator.IngestSpreadsheet(ctx, experiment.ID, []byte{})
	require.ErrorIs(t, err, ErrConfigurationIncomplete, "a tray missing wells from its declared qty_rows x qty_cols grid must block ingestion")
}

func TestIngestSpreadsheetRejectsInvalidFormat(t *testing.T) {
	ctx := context.Background()
	db, err := store.Open(ctx, ":memory:")
	require.NoError(t, err)
	defer db.Close()

	experiment := setupExperiment(t, db)
	coordinator := NewCoordinator(db, testLogger(t))
	_, err = coordinator.IngestSpreadsheet(ctx, experiment.ID, []byte("not a spreadsheet"))
	require.ErrorIs(t, err, ErrInvalidFormat)
}

func TestIngestSpreadsheetRejectsConcurrentRun(t *testing.T) {
	ctx := context.Background()
	db, err := store.Open(ctx, ":memory:")
	require.NoError(t, err)
	defer db.Close()

	experiment := setupExperiment(t, db)
	coordinator := NewCoordinator(db, testLogger(t))
	require.True(t, coordinator.lock(experiment.ID))
	defer coordinator.unlock(experiment.ID)

	_, err = coordinator.IngestSpreadsheet(ctx, experiment.ID, []byte{})
	require.ErrorIs(t, err, ErrConflict)
}
