package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/EERL-EPFL/spice-api-sub001/model"
)

// TrayConfigurationRepo persists model.TrayConfiguration.
type TrayConfigurationRepo struct{}

func (TrayConfigurationRepo) GetByID(ctx context.Context, q Querier, id uuid.UUID) (*model.TrayConfiguration, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, name, is_default, created_at, updated_at
		FROM tray_configurations WHERE id = ?`, id.String())

	var tc model.TrayConfiguration
	var idStr, createdAt, updatedAt string
	var isDefault int
	if err := row.Scan(&idStr, &tc.Name, &isDefault, &createdAt, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("store: get tray configuration: %w", err)
	}
	tc.ID, _ = uuid.Parse(idStr)
	tc.IsDefault = isDefault != 0
	tc.CreatedAt, _ = timeFromText(createdAt)
	tc.UpdatedAt, _ = timeFromText(updatedAt)
	return &tc, nil
}

func (TrayConfigurationRepo) Insert(ctx context.Context, q Querier, tc model.TrayConfiguration) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO tray_configurations (id, name, is_default, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		tc.ID.String(), tc.Name, boolToInt(tc.IsDefault), timeText(tc.CreatedAt), timeText(tc.UpdatedAt))
	if err != nil {
		return fmt.Errorf("store: insert tray configuration: %w", err)
	}
	return nil
}

// TrayRepo persists model.Tray.
type TrayRepo struct{}

func (TrayRepo) ListByConfiguration(ctx context.Context, q Querier, configID uuid.UUID) ([]model.Tray, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, tray_configuration_id, order_sequence, rotation_degrees, qty_cols, qty_rows, name,
		       image_corner_tl_x, image_corner_tl_y, image_corner_br_x, image_corner_br_y,
		       created_at, updated_at
		FROM trays WHERE tray_configuration_id = ? ORDER BY order_sequence`, configID.String())
	if err != nil {
		return nil, fmt.Errorf("store: list trays: %w", err)
	}
	defer rows.Close()

	var out []model.Tray
	for rows.Next() {
		var t model.Tray
		var idStr, configStr, createdAt, updatedAt string
		var tlx, tly, brx, bry sql.NullInt64
		if err := rows.Scan(&idStr, &configStr, &t.OrderSequence, &t.RotationDegrees, &t.QtyCols, &t.QtyRows, &t.Name,
			&tlx, &tly, &brx, &bry, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("store: scan tray: %w", err)
		}
		t.ID, _ = uuid.Parse(idStr)
		t.TrayConfigurationID, _ = uuid.Parse(configStr)
		t.ImageCornerTLX = nullIntFromSQL(tlx)
		t.ImageCornerTLY = nullIntFromSQL(tly)
		t.ImageCornerBRX = nullIntFromSQL(brx)
		t.ImageCornerBRY = nullIntFromSQL(bry)
		t.CreatedAt, _ = timeFromText(createdAt)
		t.UpdatedAt, _ = timeFromText(updatedAt)
		out = append(out, t)
	}
	return out, rows.Err()
}

func (TrayRepo) Insert(ctx context.Context, q Querier, t model.Tray) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO trays (id, tray_configuration_id, order_sequence, rotation_degrees, qty_cols, qty_rows, name,
		                    image_corner_tl_x, image_corner_tl_y, image_corner_br_x, image_corner_br_y,
		                    created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID.String(), t.TrayConfigurationID.String(), t.OrderSequence, t.RotationDegrees, t.QtyCols, t.QtyRows, t.Name,
		nullInt(t.ImageCornerTLX), nullInt(t.ImageCornerTLY), nullInt(t.ImageCornerBRX), nullInt(t.ImageCornerBRY),
		timeText(t.CreatedAt), timeText(t.UpdatedAt))
	if err != nil {
		return fmt.Errorf("store: insert tray: %w", err)
	}
	return nil
}

// ProbeRepo persists model.Probe.
type ProbeRepo struct{}

func (ProbeRepo) ListByTray(ctx context.Context, q Querier, trayID uuid.UUID) ([]model.Probe, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, tray_id, name, data_column_index, position_x, position_y, created_at, updated_at
		FROM probes WHERE tray_id = ? ORDER BY data_column_index`, trayID.String())
	if err != nil {
		return nil, fmt.Errorf("store: list probes: %w", err)
	}
	defer rows.Close()

	var out []model.Probe
	for rows.Next() {
		var p model.Probe
		var idStr, trayStr, posX, posY, createdAt, updatedAt string
		if err := rows.Scan(&idStr, &trayStr, &p.Name, &p.DataColumnIndex, &posX, &posY, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("store: scan probe: %w", err)
		}
		p.ID, _ = uuid.Parse(idStr)
		p.TrayID, _ = uuid.Parse(trayStr)
		p.PositionX, _ = decFromText(posX)
		p.PositionY, _ = decFromText(posY)
		p.CreatedAt, _ = timeFromText(createdAt)
		p.UpdatedAt, _ = timeFromText(updatedAt)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (ProbeRepo) Insert(ctx context.Context, q Querier, p model.Probe) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO probes (id, tray_id, name, data_column_index, position_x, position_y, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID.String(), p.TrayID.String(), p.Name, p.DataColumnIndex, decText(p.PositionX), decText(p.PositionY),
		timeText(p.CreatedAt), timeText(p.UpdatedAt))
	if err != nil {
		return fmt.Errorf("store: insert probe: %w", err)
	}
	return nil
}

// WellRepo persists model.Well.
type WellRepo struct{}

func (WellRepo) ListByTray(ctx context.Context, q Querier, trayID uuid.UUID) ([]model.Well, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, tray_id, row_letter, column_number, created_at, updated_at
		FROM wells WHERE tray_id = ? ORDER BY row_letter, column_number`, trayID.String())
	if err != nil {
		return nil, fmt.Errorf("store: list wells: %w", err)
	}
	defer rows.Close()

	var out []model.Well
	for rows.Next() {
		var w model.Well
		var idStr, trayStr, createdAt, updatedAt string
		if err := rows.Scan(&idStr, &trayStr, &w.RowLetter, &w.ColumnNumber, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("store: scan well: %w", err)
		}
		w.ID, _ = uuid.Parse(idStr)
		w.TrayID, _ = uuid.Parse(trayStr)
		w.CreatedAt, _ = timeFromText(createdAt)
		w.UpdatedAt, _ = timeFromText(updatedAt)
		out = append(out, w)
	}
	return out, rows.Err()
}

func (WellRepo) GetByID(ctx context.Context, q Querier, id uuid.UUID) (*model.Well, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, tray_id, row_letter, column_number, created_at, updated_at
		FROM wells WHERE id = ?`, id.String())

	var w model.Well
	var idStr, trayStr, createdAt, updatedAt string
	if err := row.Scan(&idStr, &trayStr, &w.RowLetter, &w.ColumnNumber, &createdAt, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("store: get well: %w", err)
	}
	w.ID, _ = uuid.Parse(idStr)
	w.TrayID, _ = uuid.Parse(trayStr)
	w.CreatedAt, _ = timeFromText(createdAt)
	w.UpdatedAt, _ = timeFromText(updatedAt)
	return &w, nil
}

func (WellRepo) Insert(ctx context.Context, q Querier, w model.Well) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO wells (id, tray_id, row_letter, column_number, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		w.ID.String(), w.TrayID.String(), w.RowLetter, w.ColumnNumber, timeText(w.CreatedAt), timeText(w.UpdatedAt))
	if err != nil {
		return fmt.Errorf("store: insert well: %w", err)
	}
	return nil
}
