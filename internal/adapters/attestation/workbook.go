// Package attestation reads grower-submitted attestation overwrite workbooks
// into the domain attestation records the pipeline applies.
package attestation

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"feedstockcore/pkg/domain"
)

// DefaultSheet is the worksheet attestations are read from when present;
// otherwise the first sheet of the workbook is used.
const DefaultSheet = "Attestations"

// Column names recognized in the workbook header, matched case-insensitively
// with surrounding whitespace ignored. Only field_name and input_type are
// required; growers leave the rest blank when not applicable.
var columns = []string{
	"field_name", "input_type", "input_value", "input_unit", "input_product",
	"area_applied", "operation_start", "growing_cycle", "drop_existing",
	"manure_trans_dist", "manure_trans_en", "manure_trans_en_unit", "manure_appl_en",
	"cc_type", "cc_herb_product", "cc_herb_amount", "cc_herb_unit",
	"cc_yield_harvested", "cc_appl_en",
}

// Grower spreadsheets arrive with whatever date format the farm office uses.
var dateLayouts = []string{"2006-01-02", time.RFC3339, "01/02/2006", "1/2/2006", "01-02-2006"}

// ReadFile opens an attestation workbook at path and parses its rows.
func ReadFile(path string) ([]domain.Attestation, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open attestation workbook: %w", err)
	}
	defer func() { _ = f.Close() }()
	return read(f)
}

func read(f *excelize.File) ([]domain.Attestation, error) {
	sheet := DefaultSheet
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	index := map[string]int{}
	for i, col := range rows[0] {
		index[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, required := range []string{"field_name", "input_type"} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("sheet %q missing required column %q", sheet, required)
		}
	}

	cell := func(row []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var attestations []domain.Attestation
	for n, row := range rows[1:] {
		a := domain.Attestation{
			FieldName: cell(row, "field_name"),
			InputType: cell(row, "input_type"),
		}
		if a.FieldName == "" && a.InputType == "" {
			continue
		}
		if a.FieldName == "" || a.InputType == "" {
			return nil, fmt.Errorf("row %d: field_name and input_type are both required", n+2)
		}
		a.InputValue = strPtr(cell(row, "input_value"))
		a.InputUnit = strPtr(cell(row, "input_unit"))
		a.InputProduct = strPtr(cell(row, "input_product"))
		a.ManureTransEnUnit = strPtr(cell(row, "manure_trans_en_unit"))
		a.CCType = strPtr(cell(row, "cc_type"))
		a.CCHerbProduct = strPtr(cell(row, "cc_herb_product"))
		a.CCHerbUnit = strPtr(cell(row, "cc_herb_unit"))

		type floatField struct {
			name string
			dst  **float64
		}
		for _, ff := range []floatField{
			{"area_applied", &a.AreaApplied},
			{"manure_trans_dist", &a.ManureTransDist},
			{"manure_trans_en", &a.ManureTransEn},
			{"manure_appl_en", &a.ManureApplEn},
			{"cc_herb_amount", &a.CCHerbAmount},
			{"cc_yield_harvested", &a.CCYieldHarvested},
			{"cc_appl_en", &a.CCApplEn},
		} {
			v, err := floatPtr(cell(row, ff.name))
			if err != nil {
				return nil, fmt.Errorf("row %d: %s: %w", n+2, ff.name, err)
			}
			*ff.dst = v
		}

		if raw := cell(row, "operation_start"); raw != "" {
			ts, err := parseDate(raw)
			if err != nil {
				return nil, fmt.Errorf("row %d: operation_start: %w", n+2, err)
			}
			a.OperationStart = &ts
		}
		if raw := cell(row, "growing_cycle"); raw != "" {
			cycle, err := strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("row %d: growing_cycle: %w", n+2, err)
			}
			a.GrowingCycle = &cycle
		}
		if raw := cell(row, "drop_existing"); raw != "" {
			drop := strings.EqualFold(raw, "true") || raw == "1" || strings.EqualFold(raw, "yes")
			a.DropExisting = &drop
		}
		attestations = append(attestations, a)
	}
	return attestations, nil
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func floatPtr(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
