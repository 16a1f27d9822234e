// Package results assembles the tray-centric view of an experiment's
// ingested data: one entry per well carrying its first freeze time, total
// phase-change count, temperature readings at that freeze, and the
// sample/treatment context derived from the region it falls inside.
package results

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/EERL-EPFL/spice-api-sub001/model"
	"github.com/EERL-EPFL/spice-api-sub001/store"
)

// ErrNotFound is returned when the experiment does not exist.
var ErrNotFound = errors.New("results: experiment not found")

const (
	phaseLiquid = 0
	phaseFrozen = 1
)

// TemperatureReadingFormatted is a temperature reading with every probe
// value (and their average) rounded to 3 decimal places for display.
type TemperatureReadingFormatted struct {
	ID                uuid.UUID
	Timestamp         time.Time
	ImageFilename     *string
	ProbeTemperatures map[uuid.UUID]decimal.Decimal
	Average           *decimal.Decimal
}

// TrayWellSummary is one well's results within a tray.
type TrayWellSummary struct {
	RowLetter            string
	ColumnNumber         int
	Coordinate           string
	Sample               *model.Sample
	TreatmentName        *string
	Treatment            *model.Treatment
	DilutionFactor       *int
	FirstPhaseChangeTime *time.Time
	Temperatures         *TemperatureReadingFormatted
	TotalPhaseChanges    int
	ImageAssetID         *uuid.UUID
}

// TrayResultsSummary groups well summaries under one physical tray.
type TrayResultsSummary struct {
	TrayID   uuid.UUID // the tray's own persisted id, not Region.TrayID's order_sequence
	TrayName string
	Wells    []TrayWellSummary
}

// ExperimentResultsSummary carries the experiment-wide reading span.
type ExperimentResultsSummary struct {
	TotalTimePoints int
	FirstTimestamp  *time.Time
	LastTimestamp   *time.Time
}

// ExperimentResultsResponse is the full payload for GET /experiments/{id}/results.
type ExperimentResultsResponse struct {
	Summary ExperimentResultsSummary
	Trays   []TrayResultsSummary
}

// Assembler builds ExperimentResultsResponse values from stored data.
type Assembler struct {
	db *store.DB

	experiments   store.ExperimentRepo
	trays         store.TrayRepo
	wells         store.WellRepo
	regions       store.RegionRepo
	treatments    store.TreatmentRepo
	samples       store.SampleRepo
	readings      store.TemperatureReadingRepo
	probeReadings store.ProbeTemperatureReadingRepo
	transitions   store.WellPhaseTransitionRepo
	assets        store.AssetRepo
}

// NewAssembler builds an Assembler backed by db.
func NewAssembler(db *store.DB) *Assembler {
	return &Assembler{db: db}
}

type treatmentEntry struct {
	treatment model.Treatment
	sample    *model.Sample
}

// GetExperimentResults assembles the tray-centric results view for one
// experiment.
func (a *Assembler) GetExperimentResults(ctx context.Context, experimentID uuid.UUID) (*ExperimentResultsResponse, error) {
	experiment, err := a.experiments.GetByID(ctx, a.db, experimentID)
	if err != nil {
		return nil, fmt.Errorf("results: load experiment: %w", err)
	}
	if experiment == nil {
		return nil, ErrNotFound
	}

	tempReadings, err := a.readings.ListByExperiment(ctx, a.db, experimentID)
	if err != nil {
		return nil, fmt.Errorf("results: load temperature readings: %w", err)
	}
	tempReadingsByID := make(map[uuid.UUID]model.TemperatureReading, len(tempReadings))
	for _, r := range tempReadings {
		tempReadingsByID[r.ID] = r
	}
	var firstTS, lastTS *time.Time
	if len(tempReadings) > 0 {
		first, last := tempReadings[0].Timestamp, tempReadings[len(tempReadings)-1].Timestamp
		firstTS, lastTS = &first, &last
	}

	probeReadings, err := a.probeReadings.ListByExperiment(ctx, a.db, experimentID)
	if err != nil {
		return nil, fmt.Errorf("results: load probe temperature readings: %w", err)
	}
	probeReadingsByReading := make(map[uuid.UUID][]model.ProbeTemperatureReading)
	for _, pr := range probeReadings {
		probeReadingsByReading[pr.TemperatureReadingID] = append(probeReadingsByReading[pr.TemperatureReadingID], pr)
	}

	filenameToAssetID, err := a.loadImageAssetsByFilename(ctx, experimentID)
	if err != nil {
		return nil, err
	}

	regions, err := a.regions.ListByExperiment(ctx, a.db, experimentID)
	if err != nil {
		return nil, fmt.Errorf("results: load regions: %w", err)
	}

	transitions, err := a.transitions.ListByExperiment(ctx, a.db, experimentID)
	if err != nil {
		return nil, fmt.Errorf("results: load phase transitions: %w", err)
	}

	wellsByID, err := a.loadTransitionWells(ctx, experiment, transitions)
	if err != nil {
		return nil, err
	}

	trayMap, err := a.loadTrayMap(ctx, experiment)
	if err != nil {
		return nil, err
	}

	treatmentMap, err := a.loadTreatmentMap(ctx, regions)
	if err != nil {
		return nil, err
	}

	transitionsByWell := make(map[uuid.UUID][]model.WellPhaseTransition)
	for _, t := range transitions {
		if _, ok := wellsByID[t.WellID]; ok {
			transitionsByWell[t.WellID] = append(transitionsByWell[t.WellID], t)
		}
	}

	trayResults := buildTraySummaries(
		wellsByID, trayMap, regions, treatmentMap, transitionsByWell,
		tempReadingsByID, probeReadingsByReading, filenameToAssetID)

	return &ExperimentResultsResponse{
		Summary: ExperimentResultsSummary{
			TotalTimePoints: len(tempReadings),
			FirstTimestamp:  firstTS,
			LastTimestamp:   lastTS,
		},
		Trays: trayResults,
	}, nil
}

// loadImageAssetsByFilename maps an image asset's filename (with a trailing
// ".jpg"/".jpeg" stripped, matching the bare stem ingest.ProcessRow records on
// TemperatureReading.ImageFilename) to its asset id.
func (a *Assembler) loadImageAssetsByFilename(ctx context.Context, experimentID uuid.UUID) (map[string]uuid.UUID, error) {
	experimentAssets, err := a.assets.ListByExperiment(ctx, a.db, experimentID)
	if err != nil {
		return nil, fmt.Errorf("results: load assets: %w", err)
	}
	out := make(map[string]uuid.UUID)
	for _, asset := range experimentAssets {
		if asset.Type != model.AssetTypeImage {
			continue
		}
		out[stripImageExtension(asset.OriginalFilename)] = asset.ID
	}
	return out, nil
}

// stripImageExtension trims a trailing ".jpg" or ".jpeg" suffix, case-insensitively.
func stripImageExtension(name string) string {
	ext := filepath.Ext(name)
	if strings.EqualFold(ext, ".jpg") || strings.EqualFold(ext, ".jpeg") {
		return strings.TrimSuffix(name, ext)
	}
	return name
}

// loadTransitionWells resolves the wells referenced by phase transitions
// together with every well under the experiment's tray configuration, so
// wells without any transition (including every well of an experiment with
// no ingested data yet) still appear in the full well grid.
func (a *Assembler) loadTransitionWells(ctx context.Context, experiment *model.Experiment, transitions []model.WellPhaseTransition) (map[uuid.UUID]model.Well, error) {
	out := make(map[uuid.UUID]model.Well)

	seen := make(map[uuid.UUID]bool)
	for _, t := range transitions {
		if seen[t.WellID] {
			continue
		}
		seen[t.WellID] = true
		well, err := a.wells.GetByID(ctx, a.db, t.WellID)
		if err != nil {
			return nil, fmt.Errorf("results: load well: %w", err)
		}
		if well != nil {
			out[well.ID] = *well
		}
	}
	if experiment.TrayConfigurationID == nil {
		return out, nil
	}

	trays, err := a.trays.ListByConfiguration(ctx, a.db, *experiment.TrayConfigurationID)
	if err != nil {
		return nil, fmt.Errorf("results: load trays: %w", err)
	}
	for _, tray := range trays {
		wellsForTray, err := a.wells.ListByTray(ctx, a.db, tray.ID)
		if err != nil {
			return nil, fmt.Errorf("results: load wells: %w", err)
		}
		for _, w := range wellsForTray {
			out[w.ID] = w
		}
	}
	return out, nil
}

func (a *Assembler) loadTrayMap(ctx context.Context, experiment *model.Experiment) (map[uuid.UUID]model.Tray, error) {
	out := make(map[uuid.UUID]model.Tray)
	if experiment.TrayConfigurationID == nil {
		return out, nil
	}
	trays, err := a.trays.ListByConfiguration(ctx, a.db, *experiment.TrayConfigurationID)
	if err != nil {
		return nil, fmt.Errorf("results: load trays: %w", err)
	}
	for _, t := range trays {
		out[t.ID] = t
	}
	return out, nil
}

func (a *Assembler) loadTreatmentMap(ctx context.Context, regions []model.Region) (map[uuid.UUID]treatmentEntry, error) {
	out := make(map[uuid.UUID]treatmentEntry)
	seen := make(map[uuid.UUID]bool)
	for _, r := range regions {
		if r.TreatmentID == nil || seen[*r.TreatmentID] {
			continue
		}
		seen[*r.TreatmentID] = true

		treatment, err := a.treatments.GetByID(ctx, a.db, *r.TreatmentID)
		if err != nil {
			return nil, fmt.Errorf("results: load treatment: %w", err)
		}
		if treatment == nil {
			continue
		}
		entry := treatmentEntry{treatment: *treatment}
		if treatment.SampleID != nil {
			sample, err := a.samples.GetByID(ctx, a.db, *treatment.SampleID)
			if err != nil {
				return nil, fmt.Errorf("results: load sample: %w", err)
			}
			entry.sample = sample
		}
		out[treatment.ID] = entry
	}
	return out, nil
}

func buildTraySummaries(
	wellsByID map[uuid.UUID]model.Well,
	trayMap map[uuid.UUID]model.Tray,
	regions []model.Region,
	treatmentMap map[uuid.UUID]treatmentEntry,
	transitionsByWell map[uuid.UUID][]model.WellPhaseTransition,
	tempReadingsByID map[uuid.UUID]model.TemperatureReading,
	probeReadingsByReading map[uuid.UUID][]model.ProbeTemperatureReading,
	filenameToAssetID map[string]uuid.UUID,
) []TrayResultsSummary {
	wellsByTray := make(map[uuid.UUID][]model.Well)
	for _, w := range wellsByID {
		wellsByTray[w.TrayID] = append(wellsByTray[w.TrayID], w)
	}

	var trayResults []TrayResultsSummary
	for trayID, wellsInTray := range wellsByTray {
		tray := trayMap[trayID]

		sort.Slice(wellsInTray, func(i, j int) bool {
			if wellsInTray[i].RowLetter != wellsInTray[j].RowLetter {
				return wellsInTray[i].RowLetter < wellsInTray[j].RowLetter
			}
			return wellsInTray[i].ColumnNumber < wellsInTray[j].ColumnNumber
		})

		wellSummaries := make([]TrayWellSummary, 0, len(wellsInTray))
		for _, well := range wellsInTray {
			wellSummaries = append(wellSummaries, buildWellSummary(
				well, tray, regions, treatmentMap, transitionsByWell[well.ID],
				tempReadingsByID, probeReadingsByReading, filenameToAssetID))
		}

		trayResults = append(trayResults, TrayResultsSummary{
			TrayID:   trayID,
			TrayName: tray.Name,
			Wells:    wellSummaries,
		})
	}

	sort.Slice(trayResults, func(i, j int) bool { return trayResults[i].TrayName < trayResults[j].TrayName })
	return trayResults
}

func buildWellSummary(
	well model.Well,
	tray model.Tray,
	regions []model.Region,
	treatmentMap map[uuid.UUID]treatmentEntry,
	wellTransitions []model.WellPhaseTransition,
	tempReadingsByID map[uuid.UUID]model.TemperatureReading,
	probeReadingsByReading map[uuid.UUID][]model.ProbeTemperatureReading,
	filenameToAssetID map[string]uuid.UUID,
) TrayWellSummary {
	var firstPhaseChange *model.WellPhaseTransition
	for i := range wellTransitions {
		t := wellTransitions[i]
		if t.PreviousState == phaseLiquid && t.NewState == phaseFrozen {
			firstPhaseChange = &wellTransitions[i]
			break
		}
	}

	var firstPhaseChangeTime *time.Time
	var formatted *TemperatureReadingFormatted
	var imageAssetID *uuid.UUID
	if firstPhaseChange != nil {
		ts := firstPhaseChange.Timestamp
		firstPhaseChangeTime = &ts

		if reading, ok := tempReadingsByID[firstPhaseChange.TemperatureReadingID]; ok {
			f := formatTemperatureReading(reading, probeReadingsByReading[reading.ID])
			formatted = &f
			if f.ImageFilename != nil {
				if assetID, ok := filenameToAssetID[*f.ImageFilename]; ok {
					imageAssetID = &assetID
				}
			}
		}
	}

	region := findRegion(well, tray, regions)

	var treatmentName *string
	var treatment *model.Treatment
	var sample *model.Sample
	var dilutionFactor *int
	if region != nil {
		dilutionFactor = region.DilutionFactor
		if region.TreatmentID != nil {
			if entry, ok := treatmentMap[*region.TreatmentID]; ok {
				t := entry.treatment
				treatment = &t
				name := string(t.Name)
				treatmentName = &name
				sample = entry.sample
			}
		}
	}

	return TrayWellSummary{
		RowLetter:            well.RowLetter,
		ColumnNumber:         well.ColumnNumber,
		Coordinate:           well.Coordinate(),
		Sample:               sample,
		TreatmentName:        treatmentName,
		Treatment:            treatment,
		DilutionFactor:       dilutionFactor,
		FirstPhaseChangeTime: firstPhaseChangeTime,
		Temperatures:         formatted,
		TotalPhaseChanges:    len(wellTransitions),
		ImageAssetID:         imageAssetID,
	}
}

// findRegion locates the region whose tray and 0-based inclusive row/col
// bounds contain well. Region.TrayID is compared against the well's tray's
// OrderSequence, never against the tray's own id.
func findRegion(well model.Well, tray model.Tray, regions []model.Region) *model.Region {
	wellRow := model.RowLetterToIndex(well.RowLetter)
	wellCol := well.ColumnNumber - 1

	for i := range regions {
		r := &regions[i]
		if r.TrayID != tray.OrderSequence {
			continue
		}
		if wellRow >= r.RowMin && wellRow <= r.RowMax && wellCol >= r.ColMin && wellCol <= r.ColMax {
			return r
		}
	}
	return nil
}

// formatTemperatureReading rounds every probe value to 3 decimal places
// using banker's rounding and derives their average the same way.
func formatTemperatureReading(reading model.TemperatureReading, probeReadings []model.ProbeTemperatureReading) TemperatureReadingFormatted {
	probeTemps := make(map[uuid.UUID]decimal.Decimal, len(probeReadings))
	sum := decimal.Zero
	for _, pr := range probeReadings {
		rounded := pr.Temperature.RoundBank(3)
		probeTemps[pr.ProbeID] = rounded
		sum = sum.Add(rounded)
	}

	var average *decimal.Decimal
	if len(probeReadings) > 0 {
		avg := sum.Div(decimal.NewFromInt(int64(len(probeReadings)))).RoundBank(3)
		average = &avg
	}

	return TemperatureReadingFormatted{
		ID:                reading.ID,
		Timestamp:         reading.Timestamp,
		ImageFilename:     reading.ImageFilename,
		ProbeTemperatures: probeTemps,
		Average:           average,
	}
}
