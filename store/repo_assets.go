package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/EERL-EPFL/spice-api-sub001/model"
)

// AssetRepo persists model.Asset.
type AssetRepo struct{}

func (AssetRepo) Insert(ctx context.Context, q Querier, a model.Asset) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO assets (id, experiment_id, original_filename, storage_key, type, role, size_bytes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID.String(), nullUUIDText(a.ExperimentID), a.OriginalFilename, a.StorageKey, string(a.Type), string(a.Role),
		a.SizeBytes, timeText(a.CreatedAt))
	if err != nil {
		return fmt.Errorf("store: insert asset: %w", err)
	}
	return nil
}

func (AssetRepo) ListByExperiment(ctx context.Context, q Querier, experimentID uuid.UUID) ([]model.Asset, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, experiment_id, original_filename, storage_key, type, role, size_bytes, created_at
		FROM assets WHERE experiment_id = ? ORDER BY created_at`, experimentID.String())
	if err != nil {
		return nil, fmt.Errorf("store: list assets: %w", err)
	}
	defer rows.Close()

	var out []model.Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func scanAsset(row rowScanner) (*model.Asset, error) {
	var a model.Asset
	var idStr string
	var experimentID sql.NullString
	var createdAt string
	if err := row.Scan(&idStr, &experimentID, &a.OriginalFilename, &a.StorageKey, &a.Type, &a.Role, &a.SizeBytes, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("store: scan asset: %w", err)
	}
	a.ID, _ = uuid.Parse(idStr)
	a.ExperimentID, _ = nullUUIDFromSQL(experimentID)
	a.CreatedAt, _ = timeFromText(createdAt)
	return &a, nil
}
