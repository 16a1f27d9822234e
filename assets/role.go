// Package assets classifies uploaded files into UI-facing roles and provides
// a small object-store abstraction for persisting their bytes.
package assets

import (
	"strings"

	"github.com/EERL-EPFL/spice-api-sub001/model"
)

// ClassifyRole buckets a filename into a role string used by the UI tabs.
// Rules are matched top-down, case-insensitive; the first match wins. This
// is pure string matching — no third-party library offers anything beyond
// what strings.Contains already does cleanly here.
func ClassifyRole(filename string, assetType model.AssetType) model.AssetRole {
	lower := strings.ToLower(filename)

	if assetType == model.AssetTypeImage && strings.HasPrefix(lower, "inp_") && containsYear(lower) {
		return model.RoleCameraImage
	}

	if isAnalysisType(assetType) && containsAny(lower, "analysis", "frozen_fraction", "regions", "trays_config", "freezing_temperatures", "well_temperatures") {
		return model.RoleAnalysisData
	}
	if isAnalysisType(assetType) && strings.Contains(lower, "merged") && (strings.Contains(lower, "csv") || strings.Contains(lower, "xlsx")) {
		return model.RoleAnalysisData
	}

	if assetType == model.AssetTypeTabular && strings.Contains(lower, "inp") && strings.Contains(lower, "freezing") {
		return model.RoleTemperatureData
	}

	if containsAny(lower, "config", "setup", "yaml", "yml") {
		return model.RoleConfiguration
	}

	switch assetType {
	case model.AssetTypeTabular:
		return model.RoleRawData
	case model.AssetTypeNetCDF:
		return model.RoleScientificData
	case model.AssetTypeImage:
		return model.RoleOtherImage
	}

	if containsAny(lower, "readme", "doc") {
		return model.RoleDocumentation
	}

	return model.RoleMiscellaneous
}

func isAnalysisType(t model.AssetType) bool {
	return t == model.AssetTypeImage || t == model.AssetTypeTabular || t == model.AssetTypeNetCDF
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func containsYear(s string) bool {
	return containsAny(s, "2024", "2025", "2026")
}
