package ingest

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/EERL-EPFL/spice-api-sub001/model"
	"github.com/EERL-EPFL/spice-api-sub001/sheetstructure"
	"github.com/EERL-EPFL/spice-api-sub001/workbook"
)

// PhaseStates tracks the last-seen phase state per well, keyed by the
// "P<trayOrder>:<coordinate>" well key used throughout the structure and
// mapping tables. A well absent from the map is treated as state 0 (liquid).
type PhaseStates map[string]int

// ProcessRow transforms one spreadsheet row into a temperature reading, its
// probe readings, and any well phase transitions it triggers, mutating
// phaseStates as it goes. A row missing a parseable date/time is reported as
// an *InvalidRowError and produces no output; every other extraction is
// best-effort and silently skips cells that don't parse, mirroring the
// permissive per-cell handling of the source spreadsheet format.
func ProcessRow(
	sheet *workbook.Sheet,
	rowIdx int,
	structure *sheetstructure.Structure,
	experimentID uuid.UUID,
	wellMappings map[string]uuid.UUID,
	probeMappings map[int]uuid.UUID,
	phaseStates PhaseStates,
) (*model.TemperatureReading, []model.ProbeTemperatureReading, []model.WellPhaseTransition, error) {
	timestamp, ok := sheetstructure.CombineTimestamp(
		sheet.Cell(rowIdx, structure.DateCol),
		sheet.Cell(rowIdx, structure.TimeCol),
	)
	if !ok {
		return nil, nil, nil, &InvalidRowError{RowNumber: rowIdx + 1, Reason: "unparseable date/time"}
	}

	now := time.Now().UTC()

	reading := &model.TemperatureReading{
		ID:            uuid.New(),
		ExperimentID:  experimentID,
		Timestamp:     timestamp,
		ImageFilename: extractImageFilename(sheet, rowIdx, structure),
		CreatedAt:     now,
	}

	var probeReadings []model.ProbeTemperatureReading
	for _, probeCol := range structure.ProbeColumns {
		probeID, ok := probeMappings[probeCol]
		if !ok {
			continue
		}
		temp, ok := sheet.Cell(rowIdx, probeCol).AsDecimal()
		if !ok {
			continue
		}
		probeReadings = append(probeReadings, model.ProbeTemperatureReading{
			ID:                   uuid.New(),
			TemperatureReadingID: reading.ID,
			ProbeID:              probeID,
			Temperature:          temp,
			CreatedAt:            now,
		})
	}

	var transitions []model.WellPhaseTransition
	for wellKey, colIdx := range structure.WellColumns {
		newPhase, ok := sheet.Cell(rowIdx, colIdx).AsInt()
		if !ok {
			continue
		}
		previous := phaseStates[wellKey]
		phaseStates[wellKey] = newPhase

		if previous == newPhase {
			continue
		}
		wellID, ok := wellMappings[wellKey]
		if !ok {
			continue
		}
		transitions = append(transitions, model.WellPhaseTransition{
			ID:                   uuid.New(),
			WellID:               wellID,
			ExperimentID:         experimentID,
			TemperatureReadingID: reading.ID,
			Timestamp:            timestamp,
			PreviousState:        previous,
			NewState:             newPhase,
			CreatedAt:            now,
		})
	}

	return reading, probeReadings, transitions, nil
}

// extractImageFilename reads the image column and strips a trailing
// ".jpg"/".jpeg" suffix (case-insensitive) before storing the bare stem, so
// the equality join against the asset's filename in the results assembler
// matches regardless of extension casing.
func extractImageFilename(sheet *workbook.Sheet, rowIdx int, structure *sheetstructure.Structure) *string {
	if structure.ImageCol == nil {
		return nil
	}
	s, ok := sheet.Cell(rowIdx, *structure.ImageCol).AsString()
	if !ok || s == "" {
		return nil
	}
	s = stripImageExtension(s)
	return &s
}

// stripImageExtension trims a trailing ".jpg" or ".jpeg" suffix, case-insensitively.
func stripImageExtension(name string) string {
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, ".jpeg") {
		return name[:len(name)-len(".jpeg")]
	}
	if strings.HasSuffix(lower, ".jpg") {
		return name[:len(name)-len(".jpg")]
	}
	return name
}
