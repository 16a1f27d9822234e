package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/EERL-EPFL/spice-api-sub001/model"
)

// TemperatureReadingRepo persists model.TemperatureReading.
type TemperatureReadingRepo struct{}

func (TemperatureReadingRepo) DeleteByExperiment(ctx context.Context, q Querier, experimentID uuid.UUID) error {
	// FK cascades (ON DELETE CASCADE) remove every probe_temperature_readings
	// and well_phase_transitions row that points at the deleted readings.
	if _, err := q.ExecContext(ctx, `DELETE FROM temperature_readings WHERE experiment_id = ?`, experimentID.String()); err != nil {
		return fmt.Errorf("store: delete temperature readings: %w", err)
	}
	return nil
}

func (TemperatureReadingRepo) InsertMany(ctx context.Context, q Querier, readings []model.TemperatureReading) error {
	if len(readings) == 0 {
		return nil
	}
	var sb strings.Builder
	sb.WriteString("INSERT INTO temperature_readings (id, experiment_id, timestamp, image_filename, created_at) VALUES ")
	args := make([]any, 0, len(readings)*5)
	for i, r := range readings {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(?, ?, ?, ?, ?)")
		args = append(args, r.ID.String(), r.ExperimentID.String(), timeText(r.Timestamp), nullString(r.ImageFilename), timeText(r.CreatedAt))
	}
	if _, err := q.ExecContext(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("store: insert temperature readings: %w", err)
	}
	return nil
}

func (TemperatureReadingRepo) ListByExperiment(ctx context.Context, q Querier, experimentID uuid.UUID) ([]model.TemperatureReading, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, experiment_id, timestamp, image_filename, created_at
		FROM temperature_readings WHERE experiment_id = ? ORDER BY timestamp`, experimentID.String())
	if err != nil {
		return nil, fmt.Errorf("store: list temperature readings: %w", err)
	}
	defer rows.Close()

	var out []model.TemperatureReading
	for rows.Next() {
		var r model.TemperatureReading
		var idStr, expStr, ts, createdAt string
		var imageFilename sql.NullString
		if err := rows.Scan(&idStr, &expStr, &ts, &imageFilename, &createdAt); err != nil {
			return nil, fmt.Errorf("store: scan temperature reading: %w", err)
		}
		r.ID, _ = uuid.Parse(idStr)
		r.ExperimentID, _ = uuid.Parse(expStr)
		r.Timestamp, _ = timeFromText(ts)
		r.ImageFilename = nullStringFromSQL(imageFilename)
		r.CreatedAt, _ = timeFromText(createdAt)
		out = append(out, r)
	}
	return out, rows.Err()
}

// ProbeTemperatureReadingRepo persists model.ProbeTemperatureReading.
type ProbeTemperatureReadingRepo struct{}

func (ProbeTemperatureReadingRepo) InsertMany(ctx context.Context, q Querier, readings []model.ProbeTemperatureReading) error {
	if len(readings) == 0 {
		return nil
	}
	var sb strings.Builder
	sb.WriteString("INSERT INTO probe_temperature_readings (id, temperature_reading_id, probe_id, temperature, created_at) VALUES ")
	args := make([]any, 0, len(readings)*5)
	for i, r := range readings {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(?, ?, ?, ?, ?)")
		args = append(args, r.ID.String(), r.TemperatureReadingID.String(), r.ProbeID.String(), decText(r.Temperature), timeText(r.CreatedAt))
	}
	if _, err := q.ExecContext(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("store: insert probe temperature readings: %w", err)
	}
	return nil
}

func (ProbeTemperatureReadingRepo) ListByExperiment(ctx context.Context, q Querier, experimentID uuid.UUID) ([]model.ProbeTemperatureReading, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT ptr.id, ptr.temperature_reading_id, ptr.probe_id, ptr.temperature, ptr.created_at
		FROM probe_temperature_readings ptr
		JOIN temperature_readings tr ON tr.id = ptr.temperature_reading_id
		WHERE tr.experiment_id = ?`, experimentID.String())
	if err != nil {
		return nil, fmt.Errorf("store: list probe temperature readings: %w", err)
	}
	defer rows.Close()

	var out []model.ProbeTemperatureReading
	for rows.Next() {
		var r model.ProbeTemperatureReading
		var idStr, readingStr, probeStr, temp, createdAt string
		if err := rows.Scan(&idStr, &readingStr, &probeStr, &temp, &createdAt); err != nil {
			return nil, fmt.Errorf("store: scan probe temperature reading: %w", err)
		}
		r.ID, _ = uuid.Parse(idStr)
		r.TemperatureReadingID, _ = uuid.Parse(readingStr)
		r.ProbeID, _ = uuid.Parse(probeStr)
		r.Temperature, _ = decFromText(temp)
		r.CreatedAt, _ = timeFromText(createdAt)
		out = append(out, r)
	}
	return out, rows.Err()
}

// WellPhaseTransitionRepo persists model.WellPhaseTransition.
type WellPhaseTransitionRepo struct{}

func (WellPhaseTransitionRepo) InsertMany(ctx context.Context, q Querier, transitions []model.WellPhaseTransition) error {
	if len(transitions) == 0 {
		return nil
	}
	var sb strings.Builder
	sb.WriteString(`INSERT INTO well_phase_transitions
		(id, well_id, experiment_id, temperature_reading_id, timestamp, previous_state, new_state, created_at) VALUES `)
	args := make([]any, 0, len(transitions)*8)
	for i, t := range transitions {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args, t.ID.String(), t.WellID.String(), t.ExperimentID.String(), t.TemperatureReadingID.String(),
			timeText(t.Timestamp), t.PreviousState, t.NewState, timeText(t.CreatedAt))
	}
	if _, err := q.ExecContext(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("store: insert well phase transitions: %w", err)
	}
	return nil
}

func (WellPhaseTransitionRepo) ListByExperiment(ctx context.Context, q Querier, experimentID uuid.UUID) ([]model.WellPhaseTransition, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, well_id, experiment_id, temperature_reading_id, timestamp, previous_state, new_state, created_at
		FROM well_phase_transitions WHERE experiment_id = ? ORDER BY timestamp`, experimentID.String())
	if err != nil {
		return nil, fmt.Errorf("store: list well phase transitions: %w", err)
	}
	defer rows.Close()

	var out []model.WellPhaseTransition
	for rows.Next() {
		var t model.WellPhaseTransition
		var idStr, wellStr, expStr, readingStr, ts, createdAt string
		if err := rows.Scan(&idStr, &wellStr, &expStr, &readingStr, &ts, &t.PreviousState, &t.NewState, &createdAt); err != nil {
			return nil, fmt.Errorf("store: scan well phase transition: %w", err)
		}
		t.ID, _ = uuid.Parse(idStr)
		t.WellID, _ = uuid.Parse(wellStr)
		t.ExperimentID, _ = uuid.Parse(expStr)
		t.TemperatureReadingID, _ = uuid.Parse(readingStr)
		t.Timestamp, _ = timeFromText(ts)
		t.CreatedAt, _ = timeFromText(createdAt)
		out = append(out, t)
	}
	return out, rows.Err()
}
