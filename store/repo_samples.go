package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/EERL-EPFL/spice-api-sub001/model"
)

// SampleRepo persists model.Sample.
type SampleRepo struct{}

func (SampleRepo) GetByID(ctx context.Context, q Querier, id uuid.UUID) (*model.Sample, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, type, name, location_id, created_at, updated_at FROM samples WHERE id = ?`, id.String())

	var s model.Sample
	var idStr string
	var locationID sql.NullString
	var createdAt, updatedAt string
	if err := row.Scan(&idStr, &s.Type, &s.Name, &locationID, &createdAt, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("store: get sample: %w", err)
	}
	s.ID, _ = uuid.Parse(idStr)
	s.LocationID, _ = nullUUIDFromSQL(locationID)
	s.CreatedAt, _ = timeFromText(createdAt)
	s.UpdatedAt, _ = timeFromText(updatedAt)
	return &s, nil
}

func (SampleRepo) Insert(ctx context.Context, q Querier, s model.Sample) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO samples (id, type, name, location_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		s.ID.String(), string(s.Type), s.Name, nullUUIDText(s.LocationID), timeText(s.CreatedAt), timeText(s.UpdatedAt))
	if err != nil {
		return fmt.Errorf("store: insert sample: %w", err)
	}
	return nil
}

// TreatmentRepo persists model.Treatment.
type TreatmentRepo struct{}

func (TreatmentRepo) GetByID(ctx context.Context, q Querier, id uuid.UUID) (*model.Treatment, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, sample_id, name, enzyme_volume_litres, notes, created_at, updated_at
		FROM treatments WHERE id = ?`, id.String())
	return scanTreatment(row)
}

func (TreatmentRepo) ListBySample(ctx context.Context, q Querier, sampleID uuid.UUID) ([]model.Treatment, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, sample_id, name, enzyme_volume_litres, notes, created_at, updated_at
		FROM treatments WHERE sample_id = ?`, sampleID.String())
	if err != nil {
		return nil, fmt.Errorf("store: list treatments: %w", err)
	}
	defer rows.Close()

	var out []model.Treatment
	for rows.Next() {
		t, err := scanTreatment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTreatment(row rowScanner) (*model.Treatment, error) {
	var t model.Treatment
	var idStr string
	var sampleID sql.NullString
	var enzymeVolume, notes sql.NullString
	var createdAt, updatedAt string
	if err := row.Scan(&idStr, &sampleID, &t.Name, &enzymeVolume, &notes, &createdAt, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("store: scan treatment: %w", err)
	}
	t.ID, _ = uuid.Parse(idStr)
	t.SampleID, _ = nullUUIDFromSQL(sampleID)
	t.EnzymeVolumeLitres, _ = nullDecFromSQL(enzymeVolume)
	t.Notes = nullStringFromSQL(notes)
	t.CreatedAt, _ = timeFromText(createdAt)
	t.UpdatedAt, _ = timeFromText(updatedAt)
	return &t, nil
}

func (TreatmentRepo) Insert(ctx context.Context, q Querier, t model.Treatment) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO treatments (id, sample_id, name, enzyme_volume_litres, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID.String(), nullUUIDText(t.SampleID), string(t.Name), nullDecText(t.EnzymeVolumeLitres), nullString(t.Notes),
		timeText(t.CreatedAt), timeText(t.UpdatedAt))
	if err != nil {
		return fmt.Errorf("store: insert treatment: %w", err)
	}
	return nil
}
