package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/EERL-EPFL/spice-api-sub001/model"
)

func TestSampleRepoInsertAndGet(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	loc := uuid.New()
	sample := model.Sample{
		ID: uuid.New(), Type: model.SampleTypeFilter, Name: "lake water", LocationID: &loc,
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, SampleRepo{}.Insert(ctx, db, sample))

	got, err := SampleRepo{}.GetByID(ctx, db, sample.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, model.SampleTypeFilter, got.Type)
	require.Equal(t, "lake water", got.Name)
	require.NotNil(t, got.LocationID)
	require.Equal(t, loc, *got.LocationID)
}

func TestSampleRepoProceduralBlankWithLocationRejectedByCheckConstraint(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	loc := uuid.New()
	sample := model.Sample{
		ID: uuid.New(), Type: model.SampleTypeProceduralBlank, Name: "bad blank", LocationID: &loc,
		CreatedAt: now, UpdatedAt: now,
	}
	err := SampleRepo{}.Insert(ctx, db, sample)
	require.Error(t, err, "a procedural_blank sample with a non-null location_id must violate the CHECK constraint")

	got, getErr := SampleRepo{}.GetByID(ctx, db, sample.ID)
	require.NoError(t, getErr)
	require.Nil(t, got, "the rejected insert must not be visible")
}

func TestSampleRepoGetByIDMissingReturnsNil(t *testing.T) {
	db := openTestDB(t)
	got, err := SampleRepo{}.GetByID(context.Background(), db, uuid.New())
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestSampleRepoProceduralBlankHasNoLocation(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	sample := model.Sample{ID: uuid.New(), Type: model.SampleTypeProceduralBlank, Name: "blank", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, SampleRepo{}.Insert(ctx, db, sample))

	got, err := SampleRepo{}.GetByID(ctx, db, sample.ID)
	require.NoError(t, err)
	require.Nil(t, got.LocationID)
}

func TestTreatmentRepoInsertAndListBySample(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	sample := model.Sample{ID: uuid.New(), Type: model.SampleTypeBulk, Name: "bulk sample", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, SampleRepo{}.Insert(ctx, db, sample))

	enzymeVol := decimal.NewFromFloat(0.005)
	notes := "30 min at 95C"
	treatment := model.Treatment{
		ID: uuid.New(), SampleID: &sample.ID, Name: model.TreatmentHeat,
		EnzymeVolumeLitres: &enzymeVol, Notes: &notes, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, TreatmentRepo{}.Insert(ctx, db, treatment))

	got, err := TreatmentRepo{}.GetByID(ctx, db, treatment.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, model.TreatmentHeat, got.Name)
	require.NotNil(t, got.EnzymeVolumeLitres)
	require.True(t, got.EnzymeVolumeLitres.Equal(enzymeVol))
	require.NotNil(t, got.Notes)
	require.Equal(t, notes, *got.Notes)

	list, err := TreatmentRepo{}.ListBySample(ctx, db, sample.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, treatment.ID, list[0].ID)
}

func TestTreatmentRepoNoneHasNilEnzymeAndNotes(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	treatment := model.Treatment{ID: uuid.New(), Name: model.TreatmentNone, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, TreatmentRepo{}.Insert(ctx, db, treatment))

	got, err := TreatmentRepo{}.GetByID(ctx, db, treatment.ID)
	require.NoError(t, err)
	require.Nil(t, got.EnzymeVolumeLitres)
	require.Nil(t, got.Notes)
	require.Nil(t, got.SampleID)
}

func TestRegionRepoInsertAndListByExperiment(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	tc := model.TrayConfiguration{ID: uuid.New(), Name: "cfg", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, TrayConfigurationRepo{}.Insert(ctx, db, tc))
	experiment := model.Experiment{ID: uuid.New(), Name: "exp", TrayConfigurationID: &tc.ID, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, ExperimentRepo{}.Insert(ctx, db, experiment))

	sample := model.Sample{ID: uuid.New(), Type: model.SampleTypeBulk, Name: "s", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, SampleRepo{}.Insert(ctx, db, sample))
	treatment := model.Treatment{ID: uuid.New(), SampleID: &sample.ID, Name: model.TreatmentHeat, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, TreatmentRepo{}.Insert(ctx, db, treatment))

	dilution := 10
	name := "region 1"
	region := model.Region{
		ID: uuid.New(), ExperimentID: experiment.ID, TrayID: 1,
		ColMin: 0, ColMax: 5, RowMin: 0, RowMax: 7,
		IsBackgroundKey: false, TreatmentID: &treatment.ID, DilutionFactor: &dilution, Name: &name,
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, RegionRepo{}.Insert(ctx, db, region))

	regions, err := RegionRepo{}.ListByExperiment(ctx, db, experiment.ID)
	require.NoError(t, err)
	require.Len(t, regions, 1)
	require.Equal(t, 1, regions[0].TrayID)
	require.Equal(t, 5, regions[0].ColMax)
	require.NotNil(t, regions[0].TreatmentID)
	require.Equal(t, treatment.ID, *regions[0].TreatmentID)
	require.NotNil(t, regions[0].DilutionFactor)
	require.Equal(t, 10, *regions[0].DilutionFactor)
	require.NotNil(t, regions[0].Name)
	require.Equal(t, "region 1", *regions[0].Name)
}

func TestRegionRepoBackgroundKeyHasNoTreatment(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	tc := model.TrayConfiguration{ID: uuid.New(), Name: "cfg", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, TrayConfigurationRepo{}.Insert(ctx, db, tc))
	experiment := model.Experiment{ID: uuid.New(), Name: "exp", TrayConfigurationID: &tc.ID, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, ExperimentRepo{}.Insert(ctx, db, experiment))

	region := model.Region{
		ID: uuid.New(), ExperimentID: experiment.ID, TrayID: 1,
		ColMin: 0, ColMax: 0, RowMin: 0, RowMax: 0, IsBackgroundKey: true,
		CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, RegionRepo{}.Insert(ctx, db, region))

	regions, err := RegionRepo{}.ListByExperiment(ctx, db, experiment.ID)
	require.NoError(t, err)
	require.Len(t, regions, 1)
	require.True(t, regions[0].IsBackgroundKey)
	require.Nil(t, regions[0].TreatmentID)
	require.Nil(t, regions[0].DilutionFactor)
}
