package catalog

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	SettingsSheet  = "settings"
	EquipmentSheet = "equipment"
)

// EquipmentColumns is the header row expected on the equipment sheet.
var EquipmentColumns = []string{
	"id", "name", "type", "fixed", "fixedPrice",
	"costPerCapacity", "costPerDiameter", "costPerVolume", "costPerFlow", "costPerPiece",
	"sizing",
}

// ReadWorkbook reads a catalog from an xlsx workbook with a key/value
// "settings" sheet and an "equipment" sheet headed by EquipmentColumns.
// Settings absent from the workbook keep their default values.
func ReadWorkbook(r io.Reader) (Definition, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Definition{}, fmt.Errorf("opening catalog workbook: %w", err)
	}
	defer f.Close()

	def := Defaults()
	if idx, _ := f.GetSheetIndex(SettingsSheet); idx >= 0 {
		rows, err := f.GetRows(SettingsSheet, excelize.Options{RawCellValue: true})
		if err != nil {
			return Definition{}, fmt.Errorf("reading %s sheet: %w", SettingsSheet, err)
		}
		for i, row := range rows {
			if len(row) < 2 || strings.TrimSpace(row[0]) == "" {
				continue
			}
			if i == 0 && strings.EqualFold(strings.TrimSpace(row[0]), "key") {
				continue
			}
			v, err := toFloat(row[1])
			if err != nil {
				return Definition{}, fmt.Errorf("settings row %d: %w", i+1, err)
			}
			if err := def.SetSetting(row[0], v); err != nil {
				return Definition{}, fmt.Errorf("settings row %d: %w", i+1, err)
			}
		}
	}

	if idx, _ := f.GetSheetIndex(EquipmentSheet); idx < 0 {
		return Definition{}, fmt.Errorf("catalog workbook has no %q sheet", EquipmentSheet)
	}
	rows, err := f.GetRows(EquipmentSheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return Definition{}, fmt.Errorf("reading %s sheet: %w", EquipmentSheet, err)
	}
	if len(rows) < 2 {
		return Definition{}, fmt.Errorf("empty %s sheet", EquipmentSheet)
	}

	col := map[string]int{}
	for i, h := range rows[0] {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	cell := func(row []string, name string) string {
		i, ok := col[strings.ToLower(name)]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	num := func(row []string, name string) (float64, error) {
		s := cell(row, name)
		if s == "" {
			return 0, nil
		}
		v, err := toFloat(s)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", name, err)
		}
		return v, nil
	}

	for i := 1; i < len(rows); i++ {
		row := rows[i]
		id := cell(row, "id")
		if id == "" {
			continue
		}
		it := Item{
			ID:    id,
			Name:  cell(row, "name"),
			Type:  cell(row, "type"),
			Fixed: toBool(cell(row, "fixed")),
		}
		var err error
		if it.FixedPrice, err = num(row, "fixedPrice"); err != nil {
			return Definition{}, fmt.Errorf("equipment row %d: %w", i+1, err)
		}
		for name, dst := range map[string]*float64{
			"costPerCapacity": &it.Costs.CostPerCapacity,
			"costPerDiameter": &it.Costs.CostPerDiameter,
			"costPerVolume":   &it.Costs.CostPerVolume,
			"costPerFlow":     &it.Costs.CostPerFlow,
			"costPerPiece":    &it.Costs.CostPerPiece,
		} {
			if *dst, err = num(row, name); err != nil {
				return Definition{}, fmt.Errorf("equipment row %d: %w", i+1, err)
			}
		}
		if it.Sizing, err = ParseRules(cell(row, "sizing")); err != nil {
			return Definition{}, fmt.Errorf("equipment row %d: %w", i+1, err)
		}
		def.Equipment = append(def.Equipment, it)
	}
	return def, nil
}

func toFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

func toBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y", "fixed":
		return true
	}
	return false
}
