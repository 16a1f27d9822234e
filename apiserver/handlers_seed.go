package apiserver

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/EERL-EPFL/spice-api-sub001/model"
)

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

type createExperimentRequest struct {
	Name                string     `json:"name"`
	TrayConfigurationID *uuid.UUID `json:"tray_configuration_id"`
	IsCalibration       bool       `json:"is_calibration"`
}

func (s *Server) handleCreateExperiment(w http.ResponseWriter, r *http.Request) {
	var req createExperimentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	now := time.Now().UTC()
	exp := model.Experiment{
		ID:                  uuid.New(),
		Name:                req.Name,
		IsCalibration:       req.IsCalibration,
		TrayConfigurationID: req.TrayConfigurationID,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := s.experiments.Insert(r.Context(), s.db, exp); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, exp)
}

type updateExperimentRequest struct {
	TrayConfigurationID *uuid.UUID `json:"tray_configuration_id"`
}

func (s *Server) handleUpdateExperiment(w http.ResponseWriter, r *http.Request) {
	experimentID, err := uuid.Parse(chi.URLParam(r, "experimentID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid experiment id")
		return
	}

	var req updateExperimentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	err = s.db.WithTx(r.Context(), func(tx *sql.Tx) error {
		exp, err := s.experiments.GetByID(r.Context(), tx, experimentID)
		if err != nil {
			return err
		}
		if exp == nil {
			return sql.ErrNoRows
		}
		exp.TrayConfigurationID = req.TrayConfigurationID
		exp.UpdatedAt = time.Now().UTC()
		_, err = tx.ExecContext(r.Context(),
			`UPDATE experiments SET tray_configuration_id = ?, updated_at = ? WHERE id = ?`,
			nullUUIDParam(exp.TrayConfigurationID), exp.UpdatedAt.Format(time.RFC3339Nano), exp.ID.String())
		return err
	})
	if err == sql.ErrNoRows {
		writeError(w, http.StatusNotFound, "experiment not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func nullUUIDParam(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return id.String()
}

type createTrayConfigurationRequest struct {
	Name      string `json:"name"`
	IsDefault bool   `json:"is_default"`
}

func (s *Server) handleCreateTrayConfiguration(w http.ResponseWriter, r *http.Request) {
	var req createTrayConfigurationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	now := time.Now().UTC()
	tc := model.TrayConfiguration{ID: uuid.New(), Name: req.Name, IsDefault: req.IsDefault, CreatedAt: now, UpdatedAt: now}
	if err := s.trayConfigs.Insert(r.Context(), s.db, tc); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, tc)
}

type createTrayRequest struct {
	OrderSequence   int    `json:"order_sequence"`
	RotationDegrees int    `json:"rotation_degrees"`
	QtyCols         int    `json:"qty_cols"`
	QtyRows         int    `json:"qty_rows"`
	Name            string `json:"name"`
}

func (s *Server) handleCreateTray(w http.ResponseWriter, r *http.Request) {
	configID, err := uuid.Parse(chi.URLParam(r, "configID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid tray configuration id")
		return
	}
	var req createTrayRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	now := time.Now().UTC()
	tray := model.Tray{
		ID:                  uuid.New(),
		TrayConfigurationID: configID,
		OrderSequence:       req.OrderSequence,
		RotationDegrees:     req.RotationDegrees,
		QtyCols:             req.QtyCols,
		QtyRows:             req.QtyRows,
		Name:                req.Name,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := s.trays.Insert(r.Context(), s.db, tray); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, tray)
}

type createWellRequest struct {
	RowLetter    string `json:"row_letter"`
	ColumnNumber int    `json:"column_number"`
}

func (s *Server) handleCreateWell(w http.ResponseWriter, r *http.Request) {
	trayID, err := uuid.Parse(chi.URLParam(r, "trayID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid tray id")
		return
	}
	var req createWellRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	now := time.Now().UTC()
	well := model.Well{ID: uuid.New(), TrayID: trayID, RowLetter: req.RowLetter, ColumnNumber: req.ColumnNumber, CreatedAt: now, UpdatedAt: now}
	if err := s.wells.Insert(r.Context(), s.db, well); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, well)
}

type createProbeRequest struct {
	Name            string          `json:"name"`
	DataColumnIndex int             `json:"data_column_index"`
	PositionX       decimal.Decimal `json:"position_x"`
	PositionY       decimal.Decimal `json:"position_y"`
}

func (s *Server) handleCreateProbe(w http.ResponseWriter, r *http.Request) {
	trayID, err := uuid.Parse(chi.URLParam(r, "trayID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid tray id")
		return
	}
	var req createProbeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	now := time.Now().UTC()
	probe := model.Probe{
		ID: uuid.New(), TrayID: trayID, Name: req.Name, DataColumnIndex: req.DataColumnIndex,
		PositionX: req.PositionX, PositionY: req.PositionY, CreatedAt: now, UpdatedAt: now,
	}
	if err := s.probes.Insert(r.Context(), s.db, probe); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, probe)
}

type createSampleRequest struct {
	Type       model.SampleType `json:"type"`
	Name       string           `json:"name"`
	LocationID *uuid.UUID       `json:"location_id"`
}

func (s *Server) handleCreateSample(w http.ResponseWriter, r *http.Request) {
	var req createSampleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	now := time.Now().UTC()
	sample := model.Sample{ID: uuid.New(), Type: req.Type, Name: req.Name, LocationID: req.LocationID, CreatedAt: now, UpdatedAt: now}
	if err := s.samples.Insert(r.Context(), s.db, sample); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, sample)
}

type createTreatmentRequest struct {
	SampleID           *uuid.UUID       `json:"sample_id"`
	Name               model.TreatmentName `json:"name"`
	EnzymeVolumeLitres *decimal.Decimal `json:"enzyme_volume_litres"`
	Notes              *string          `json:"notes"`
}

func (s *Server) handleCreateTreatment(w http.ResponseWriter, r *http.Request) {
	var req createTreatmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	now := time.Now().UTC()
	treatment := model.Treatment{
		ID: uuid.New(), SampleID: req.SampleID, Name: req.Name, EnzymeVolumeLitres: req.EnzymeVolumeLitres,
		Notes: req.Notes, CreatedAt: now, UpdatedAt: now,
	}
	if err := s.treatments.Insert(r.Context(), s.db, treatment); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, treatment)
}

type createRegionRequest struct {
	ExperimentID    uuid.UUID  `json:"experiment_id"`
	TrayID          int        `json:"tray_id"`
	ColMin          int        `json:"col_min"`
	ColMax          int        `json:"col_max"`
	RowMin          int        `json:"row_min"`
	RowMax          int        `json:"row_max"`
	IsBackgroundKey bool       `json:"is_background_key"`
	TreatmentID     *uuid.UUID `json:"treatment_id"`
	DilutionFactor  *int       `json:"dilution_factor"`
	Name            *string    `json:"name"`
}

func (s *Server) handleCreateRegion(w http.ResponseWriter, r *http.Request) {
	var req createRegionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	now := time.Now().UTC()
	region := model.Region{
		ID: uuid.New(), ExperimentID: req.ExperimentID, TrayID: req.TrayID,
		ColMin: req.ColMin, ColMax: req.ColMax, RowMin: req.RowMin, RowMax: req.RowMax,
		IsBackgroundKey: req.IsBackgroundKey, TreatmentID: req.TreatmentID, DilutionFactor: req.DilutionFactor,
		Name: req.Name, CreatedAt: now, UpdatedAt: now,
	}
	if err := s.regions.Insert(r.Context(), s.db, region); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, region)
}
