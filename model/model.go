// Package model holds the entities of the droplet-freezing assay data model.
package model

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TrayConfiguration is a named plate layout, owning an ordered set of Trays.
type TrayConfiguration struct {
	ID        uuid.UUID
	Name      string
	IsDefault bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Tray is one physical plate in a configuration.
type Tray struct {
	ID                  uuid.UUID
	TrayConfigurationID uuid.UUID
	OrderSequence       int // 1-based position within the configuration
	RotationDegrees     int
	QtyCols             int
	QtyRows             int
	Name                string
	ImageCornerTLX      *int
	ImageCornerTLY      *int
	ImageCornerBRX      *int
	ImageCornerBRY      *int
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Probe is a temperature sensor bound to a tray.
type Probe struct {
	ID              uuid.UUID
	TrayID          uuid.UUID
	Name            string
	DataColumnIndex int // 1-based position in the probe-column group
	PositionX       decimal.Decimal
	PositionY       decimal.Decimal
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Well is an addressable cell in a tray.
type Well struct {
	ID            uuid.UUID
	TrayID        uuid.UUID
	RowLetter     string
	ColumnNumber  int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Coordinate returns the "A1"-style coordinate string for the well.
func (w Well) Coordinate() string {
	return w.RowLetter + strconv.Itoa(w.ColumnNumber)
}

// Experiment is one run of the assay.
type Experiment struct {
	ID                  uuid.UUID
	Name                string
	PerformedAt         *time.Time
	TemperatureRamp     *decimal.Decimal
	TemperatureStart    *decimal.Decimal
	TemperatureEnd      *decimal.Decimal
	IsCalibration       bool
	TrayConfigurationID *uuid.UUID
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// SampleType is the variant tag for Sample.
type SampleType string

const (
	SampleTypeBulk             SampleType = "bulk"
	SampleTypeFilter           SampleType = "filter"
	SampleTypeProceduralBlank  SampleType = "procedural_blank"
	SampleTypePureWater        SampleType = "pure_water"
)

// Sample is an environmental specimen.
type Sample struct {
	ID         uuid.UUID
	Type       SampleType
	Name       string
	LocationID *uuid.UUID // must be nil when Type == SampleTypeProceduralBlank
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TreatmentName is the variant tag for Treatment.
type TreatmentName string

const (
	TreatmentNone TreatmentName = "none"
	TreatmentHeat TreatmentName = "heat"
	TreatmentH2O2 TreatmentName = "h2o2"
)

// Treatment is a laboratory processing applied to a Sample.
type Treatment struct {
	ID                 uuid.UUID
	SampleID           *uuid.UUID
	Name               TreatmentName
	EnzymeVolumeLitres *decimal.Decimal
	Notes              *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Region is a rectangular sub-area of a tray within an experiment.
type Region struct {
	ID              uuid.UUID
	ExperimentID    uuid.UUID
	TrayID          int // 1-based order_sequence of a tray within the configuration, NOT a surrogate key
	ColMin          int // 0-based, inclusive
	ColMax          int
	RowMin          int
	RowMax          int
	IsBackgroundKey bool
	TreatmentID     *uuid.UUID
	DilutionFactor  *int
	Name            *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TemperatureReading is one row of the ingested spreadsheet.
type TemperatureReading struct {
	ID             uuid.UUID
	ExperimentID   uuid.UUID
	Timestamp      time.Time // second-precision, nanoseconds discarded
	ImageFilename  *string
	CreatedAt      time.Time
}

// ProbeTemperatureReading is the value of one probe at one reading.
type ProbeTemperatureReading struct {
	ID                   uuid.UUID
	TemperatureReadingID uuid.UUID
	ProbeID              uuid.UUID
	Temperature          decimal.Decimal
	CreatedAt            time.Time
}

// WellPhaseTransition is a phase-change event emitted by the row transformer.
type WellPhaseTransition struct {
	ID                   uuid.UUID
	WellID               uuid.UUID
	ExperimentID         uuid.UUID
	TemperatureReadingID uuid.UUID
	Timestamp            time.Time
	PreviousState        int
	NewState             int
	CreatedAt            time.Time
}

// AssetType is the variant tag for Asset.
type AssetType string

const (
	AssetTypeImage   AssetType = "image"
	AssetTypeTabular AssetType = "tabular"
	AssetTypeNetCDF  AssetType = "netcdf"
	AssetTypeUnknown AssetType = "unknown"
)

// AssetRole buckets an uploaded filename for UI tab placement, see assets.ClassifyRole.
type AssetRole string

const (
	RoleCameraImage     AssetRole = "camera_image"
	RoleAnalysisData    AssetRole = "analysis_data"
	RoleTemperatureData AssetRole = "temperature_data"
	RoleConfiguration   AssetRole = "configuration"
	RoleRawData         AssetRole = "raw_data"
	RoleScientificData  AssetRole = "scientific_data"
	RoleOtherImage      AssetRole = "other_image"
	RoleDocumentation   AssetRole = "documentation"
	RoleMiscellaneous   AssetRole = "miscellaneous"
)

// Asset is an opaque uploaded blob, linked to an experiment.
type Asset struct {
	ID               uuid.UUID
	ExperimentID     *uuid.UUID
	OriginalFilename string
	StorageKey       string
	Type             AssetType
	Role             AssetRole
	SizeBytes        int64
	CreatedAt        time.Time
}
