// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package device

import "strconv"

// EntryKind distinguishes a Number slot from a Switch slot in a static
// parameter catalog (spec §4.4.3).
type EntryKind uint8

const (
	EntryNumber EntryKind = iota
	EntrySwitch
)

// CatalogEntry is one static, ordered parameter description (spec §4.4.3):
// "static ordered list of parameter descriptions keyed by index". The full
// per-product index table runs into the hundreds of firmware-specific
// slots; the core carries a representative default here. The
// config.ProductOverrides tables are parsed from YAML but not applied to
// this catalog.
type CatalogEntry struct {
	Name string
	Kind EntryKind
}

// EcomaxCatalog is the default ecoMAX parameter catalog, in wire index
// order (grounded on the reference implementation's parameter table).
var EcomaxCatalog = []CatalogEntry{
	{Name: "airflow_power_100"},
	{Name: "airflow_power_50"},
	{Name: "airflow_power_30"},
	{Name: "power_100"},
	{Name: "power_50"},
	{Name: "power_30"},
	{Name: "max_fan_boiler_power"},
	{Name: "min_fan_boiler_power"},
	{Name: "fuel_feeding_time_100"},
	{Name: "fuel_feeding_time_50"},
	{Name: "fuel_feeding_time_30"},
	{Name: "fuel_feeding_break_100"},
	{Name: "fuel_feeding_break_50"},
	{Name: "fuel_feeding_break_30"},
	{Name: "cycle_time"},
	{Name: "h2_hysteresis"},
	{Name: "h1_hysteresis"},
	{Name: "heating_hysteresis"},
	{Name: "fuzzy_logic", Kind: EntrySwitch},
	{Name: "min_fuzzy_logic_power"},
	{Name: "max_fuzzy_logic_power"},
	{Name: "min_boiler_power"},
	{Name: "max_boiler_power"},
}

// NameFor returns the catalog name for index, or a generic
// "parameter_<index>" Number entry for indices the catalog doesn't carry.
func NameFor(catalog []CatalogEntry, index int) (name string, kind EntryKind) {
	if index >= 0 && index < len(catalog) {
		return catalog[index].Name, catalog[index].Kind
	}
	return genericParameterName(index), EntryNumber
}

func genericParameterName(index int) string {
	return "parameter_" + strconv.Itoa(index)
}
