package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/EERL-EPFL/spice-api-sub001/model"
)

// ExperimentRepo persists model.Experiment.
type ExperimentRepo struct{}

func (ExperimentRepo) GetByID(ctx context.Context, q Querier, id uuid.UUID) (*model.Experiment, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, name, performed_at, temperature_ramp, temperature_start, temperature_end,
		       is_calibration, tray_configuration_id, created_at, updated_at
		FROM experiments WHERE id = ?`, id.String())

	var e model.Experiment
	var idStr string
	var performedAt, rampTxt, startTxt, endTxt, configID sql.NullString
	var isCalibration int
	var createdAt, updatedAt string
	if err := row.Scan(&idStr, &e.Name, &performedAt, &rampTxt, &startTxt, &endTxt,
		&isCalibration, &configID, &createdAt, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("store: get experiment: %w", err)
	}
	e.ID, _ = uuid.Parse(idStr)
	e.PerformedAt, _ = nullTimeFromSQL(performedAt)
	e.TemperatureRamp, _ = nullDecFromSQL(rampTxt)
	e.TemperatureStart, _ = nullDecFromSQL(startTxt)
	e.TemperatureEnd, _ = nullDecFromSQL(endTxt)
	e.IsCalibration = isCalibration != 0
	e.TrayConfigurationID, _ = nullUUIDFromSQL(configID)
	e.CreatedAt, _ = timeFromText(createdAt)
	e.UpdatedAt, _ = timeFromText(updatedAt)
	return &e, nil
}

func (ExperimentRepo) Insert(ctx context.Context, q Querier, e model.Experiment) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO experiments (id, name, performed_at, temperature_ramp, temperature_start, temperature_end,
		                          is_calibration, tray_configuration_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID.String(), e.Name, nullTimeText(e.PerformedAt), nullDecText(e.TemperatureRamp),
		nullDecText(e.TemperatureStart), nullDecText(e.TemperatureEnd), boolToInt(e.IsCalibration),
		nullUUIDText(e.TrayConfigurationID), timeText(e.CreatedAt), timeText(e.UpdatedAt))
	if err != nil {
		return fmt.Errorf("store: insert experiment: %w", err)
	}
	return nil
}

// RegionRepo persists model.Region.
type RegionRepo struct{}

func (RegionRepo) ListByExperiment(ctx context.Context, q Querier, experimentID uuid.UUID) ([]model.Region, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, experiment_id, tray_id, col_min, col_max, row_min, row_max,
		       is_background_key, treatment_id, dilution_factor, name, created_at, updated_at
		FROM regions WHERE experiment_id = ?`, experimentID.String())
	if err != nil {
		return nil, fmt.Errorf("store: list regions: %w", err)
	}
	defer rows.Close()

	var out []model.Region
	for rows.Next() {
		var r model.Region
		var idStr, expStr string
		var isBackground int
		var treatmentID sql.NullString
		var dilution sql.NullInt64
		var name sql.NullString
		var createdAt, updatedAt string
		if err := rows.Scan(&idStr, &expStr, &r.TrayID, &r.ColMin, &r.ColMax, &r.RowMin, &r.RowMax,
			&isBackground, &treatmentID, &dilution, &name, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("store: scan region: %w", err)
		}
		r.ID, _ = uuid.Parse(idStr)
		r.ExperimentID, _ = uuid.Parse(expStr)
		r.IsBackgroundKey = isBackground != 0
		r.TreatmentID, _ = nullUUIDFromSQL(treatmentID)
		r.DilutionFactor = nullIntFromSQL(dilution)
		r.Name = nullStringFromSQL(name)
		r.CreatedAt, _ = timeFromText(createdAt)
		r.UpdatedAt, _ = timeFromText(updatedAt)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (RegionRepo) Insert(ctx context.Context, q Querier, r model.Region) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO regions (id, experiment_id, tray_id, col_min, col_max, row_min, row_max,
		                      is_background_key, treatment_id, dilution_factor, name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID.String(), r.ExperimentID.String(), r.TrayID, r.ColMin, r.ColMax, r.RowMin, r.RowMax,
		boolToInt(r.IsBackgroundKey), nullUUIDText(r.TreatmentID), nullInt(r.DilutionFactor), nullString(r.Name),
		timeText(r.CreatedAt), timeText(r.UpdatedAt))
	if err != nil {
		return fmt.Errorf("store: insert region: %w", err)
	}
	return nil
}
