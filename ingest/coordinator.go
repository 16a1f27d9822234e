package ingest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/EERL-EPFL/spice-api-sub001/model"
	"github.com/EERL-EPFL/spice-api-sub001/sheetstructure"
	"github.com/EERL-EPFL/spice-api-sub001/store"
	"github.com/EERL-EPFL/spice-api-sub001/workbook"
)

// insertBatchSize bounds how many rows worth of readings/probe-readings/
// transitions accumulate in memory before being flushed to the database.
const insertBatchSize = 1000

// ProcessingReport summarizes one IngestSpreadsheet run.
type ProcessingReport struct {
	RowsProcessed               int
	RowsInvalid                 int
	TemperatureReadingsInserted int
	ProbeReadingsInserted       int
	PhaseTransitionsInserted    int
	WellsTracked                int
	Errors                      []string
}

// Coordinator owns the transactional delete-then-insert ingestion of a
// merged spreadsheet into an experiment's data.
type Coordinator struct {
	db  *store.DB
	log *zap.SugaredLogger

	experiments   store.ExperimentRepo
	trays         store.TrayRepo
	probes        store.ProbeRepo
	wells         store.WellRepo
	readings      store.TemperatureReadingRepo
	probeReadings store.ProbeTemperatureReadingRepo
	transitions   store.WellPhaseTransitionRepo

	mu      sync.Mutex
	running map[uuid.UUID]struct{}
}

// NewCoordinator builds a Coordinator backed by db, logging through log.
func NewCoordinator(db *store.DB, log *zap.SugaredLogger) *Coordinator {
	return &Coordinator{
		db:      db,
		log:     log,
		running: make(map[uuid.UUID]struct{}),
	}
}

func (c *Coordinator) lock(experimentID uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.running[experimentID]; busy {
		return false
	}
	c.running[experimentID] = struct{}{}
	return true
}

func (c *Coordinator) unlock(experimentID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.running, experimentID)
}

// IngestSpreadsheet validates preconditions, parses data as a merged
// spreadsheet, and replaces the experiment's temperature readings, probe
// readings, and phase transitions with the freshly parsed ones inside a
// single transaction. Re-running it on the same bytes is idempotent.
func (c *Coordinator) IngestSpreadsheet(ctx context.Context, experimentID uuid.UUID, data []byte) (*ProcessingReport, error) {
	if !c.lock(experimentID) {
		return nil, ErrConflict
	}
	defer c.unlock(experimentID)

	experiment, err := c.experiments.GetByID(ctx, c.db, experimentID)
	if err != nil {
		return nil, wrapInternal(err)
	}
	if experiment == nil {
		return nil, ErrNotFound
	}
	if experiment.TrayConfigurationID == nil {
		return nil, fmt.Errorf("%w: experiment has no tray configuration", ErrPreconditionFailed)
	}

	trays, err := c.trays.ListByConfiguration(ctx, c.db, *experiment.TrayConfigurationID)
	if err != nil {
		return nil, wrapInternal(err)
	}
	if len(trays) == 0 {
		return nil, fmt.Errorf("%w: tray configuration has no trays", ErrConfigurationIncomplete)
	}

	wellMappings := make(map[string]uuid.UUID)
	probeByNumber := make(map[int]uuid.UUID)
	var mappingsMu sync.Mutex

	group, groupCtx := errgroup.WithContext(ctx)
	for _, tray := range trays {
		tray := tray
		group.Go(func() error {
			wellsForTray, err := c.wells.ListByTray(groupCtx, c.db, tray.ID)
			if err != nil {
				return err
			}
			if want := tray.QtyRows * tray.QtyCols; len(wellsForTray) != want {
				return fmt.Errorf("%w: tray %q has %d/%d wells", ErrConfigurationIncomplete, tray.Name, len(wellsForTray), want)
			}
			probesForTray, err := c.probes.ListByTray(groupCtx, c.db, tray.ID)
			if err != nil {
				return err
			}

			mappingsMu.Lock()
			defer mappingsMu.Unlock()
			for _, w := range wellsForTray {
				key := fmt.Sprintf("P%d:%s", tray.OrderSequence, w.Coordinate())
				wellMappings[key] = w.ID
			}
			for _, p := range probesForTray {
				if _, exists := probeByNumber[p.DataColumnIndex]; !exists {
					probeByNumber[p.DataColumnIndex] = p.ID
				}
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		if errors.Is(err, ErrConfigurationIncomplete) {
			return nil, err
		}
		return nil, wrapInternal(err)
	}
	if len(wellMappings) == 0 {
		return nil, fmt.Errorf("%w: tray configuration has no wells", ErrConfigurationIncomplete)
	}

	sheet, err := workbook.Read(data)
	if err != nil {
		if errors.Is(err, workbook.ErrInvalidFormat) || errors.Is(err, workbook.ErrEmptySheet) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
		return nil, wrapInternal(err)
	}

	structure, err := sheetstructure.Discover(sheet)
	if err != nil {
		if errors.Is(err, sheetstructure.ErrMissingRequiredColumn) {
			return nil, fmt.Errorf("%w: %v", ErrMissingRequiredColumn, err)
		}
		return nil, wrapInternal(err)
	}

	probeMappings := make(map[int]uuid.UUID, len(structure.ProbeColumns))
	for i, col := range structure.ProbeColumns {
		if probeID, ok := probeByNumber[i+1]; ok {
			probeMappings[col] = probeID
		}
	}

	report := &ProcessingReport{}
	phaseStates := make(PhaseStates)

	var readingBatch []model.TemperatureReading
	var probeReadingBatch []model.ProbeTemperatureReading
	var transitionBatch []model.WellPhaseTransition

	flush := func(tx *sql.Tx) error {
		if err := c.readings.InsertMany(ctx, tx, readingBatch); err != nil {
			return err
		}
		if err := c.probeReadings.InsertMany(ctx, tx, probeReadingBatch); err != nil {
			return err
		}
		if err := c.transitions.InsertMany(ctx, tx, transitionBatch); err != nil {
			return err
		}
		readingBatch = readingBatch[:0]
		probeReadingBatch = probeReadingBatch[:0]
		transitionBatch = transitionBatch[:0]
		return nil
	}

	err = c.db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := c.readings.DeleteByExperiment(ctx, tx, experimentID); err != nil {
			return err
		}

		for r := structure.DataStartRow; r < sheet.RowCount(); r++ {
			reading, probeReadingsForRow, transitionsForRow, err := ProcessRow(
				sheet, r, structure, experimentID, wellMappings, probeMappings, phaseStates)
			if err != nil {
				var invalidRow *InvalidRowError
				if errors.As(err, &invalidRow) {
					report.RowsInvalid++
					report.Errors = append(report.Errors, invalidRow.Error())
					continue
				}
				return err
			}

			report.RowsProcessed++
			readingBatch = append(readingBatch, *reading)
			probeReadingBatch = append(probeReadingBatch, probeReadingsForRow...)
			transitionBatch = append(transitionBatch, transitionsForRow...)
			report.TemperatureReadingsInserted++
			report.ProbeReadingsInserted += len(probeReadingsForRow)
			report.PhaseTransitionsInserted += len(transitionsForRow)

			if len(readingBatch) >= insertBatchSize {
				if err := flush(tx); err != nil {
					return err
				}
			}
		}

		return flush(tx)
	})
	if err != nil {
		stacked := pkgerrors.WithStack(err)
		c.log.Errorw("ingestion transaction failed", "experiment_id", experimentID, "error", fmt.Sprintf("%+v", stacked))
		return nil, wrapInternal(err)
	}

	report.WellsTracked = len(phaseStates)
	c.log.Infow("ingested spreadsheet",
		"experiment_id", experimentID,
		"rows_processed", report.RowsProcessed,
		"rows_invalid", report.RowsInvalid,
		"wells_tracked", report.WellsTracked)

	return report, nil
}
