package assets

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/EERL-EPFL/spice-api-sub001/model"
)

func TestClassifyRole(t *testing.T) {
	cases := []struct {
		name     string
		filename string
		typ      model.AssetType
		want     model.AssetRole
	}{
		{"camera image by inp prefix and year", "INP_2025_tray1_0001.jpg", model.AssetTypeImage, model.RoleCameraImage},
		{"image without inp prefix falls to other image", "tray1_0001.jpg", model.AssetTypeImage, model.RoleOtherImage},
		{"analysis keyword wins over temperature keyword", "inp_freezing_analysis.csv", model.AssetTypeTabular, model.RoleAnalysisData},
		{"merged csv is analysis data", "merged_results.csv", model.AssetTypeTabular, model.RoleAnalysisData},
		{"merged netcdf without csv/xlsx extension keyword is not analysis", "merged_results.nc", model.AssetTypeNetCDF, model.RoleScientificData},
		{"temperature data requires inp and freezing, no analysis keyword", "inp_freezing_raw.csv", model.AssetTypeTabular, model.RoleTemperatureData},
		{"configuration by yaml extension keyword", "tray_setup.yaml", model.AssetTypeUnknown, model.RoleConfiguration},
		{"plain tabular falls to raw data", "some_data.csv", model.AssetTypeTabular, model.RoleRawData},
		{"plain netcdf falls to scientific data", "ocean.nc", model.AssetTypeNetCDF, model.RoleScientificData},
		{"unknown type readme is documentation", "README.md", model.AssetTypeUnknown, model.RoleDocumentation},
		{"unknown type otherwise miscellaneous", "notes.txt", model.AssetTypeUnknown, model.RoleMiscellaneous},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ClassifyRole(tc.filename, tc.typ)
			require.Equal(t, tc.want, got)
		})
	}
}
