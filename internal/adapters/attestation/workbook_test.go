package attestation

import (
	"testing"

	"github.com/xuri/excelize/v2"
)

func sheetFixture(t *testing.T, sheet string, rows [][]any) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	if sheet != f.GetSheetName(0) {
		if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
			t.Fatalf("SetSheetName: %v", err)
		}
	}
	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("CoordinatesToCellName: %v", err)
		}
		if err := f.SetSheetRow(sheet, cellRef, &row); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	return f
}

func TestReadWorkbook(t *testing.T) {
	f := sheetFixture(t, DefaultSheet, [][]any{
		{"field_name", "input_type", "input_value", "input_unit", "area_applied", "operation_start", "drop_existing", "cc_type"},
		{"North 40", "lime", "2", "T/ac", "100", "2023-06-01", "", ""},
		{"South 12", "cc", "", "", "", "", "", "Cereal Rye"},
		{"", "", "", "", "", "", "", ""},
	})

	attestations, err := read(f)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(attestations) != 2 {
		t.Fatalf("expected 2 attestations, got %d", len(attestations))
	}

	lime := attestations[0]
	if lime.FieldName != "North 40" || lime.InputType != "lime" {
		t.Fatalf("unexpected first attestation %+v", lime)
	}
	if lime.InputValue == nil || *lime.InputValue != "2" {
		t.Fatalf("unexpected input value %+v", lime.InputValue)
	}
	if lime.AreaApplied == nil || *lime.AreaApplied != 100 {
		t.Fatalf("unexpected area %+v", lime.AreaApplied)
	}
	if lime.OperationStart == nil || lime.OperationStart.Format("2006-01-02") != "2023-06-01" {
		t.Fatalf("unexpected operation start %+v", lime.OperationStart)
	}
	if lime.DropExisting != nil {
		t.Fatal("blank drop_existing must stay nil")
	}

	cc := attestations[1]
	if cc.CCType == nil || *cc.CCType != "Cereal Rye" {
		t.Fatalf("unexpected cc attestation %+v", cc)
	}
}

func TestReadFallsBackToFirstSheet(t *testing.T) {
	f := sheetFixture(t, "Sheet1", [][]any{
		{"field_name", "input_type"},
		{"North 40", "till"},
	})
	attestations, err := read(f)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(attestations) != 1 || attestations[0].InputType != "till" {
		t.Fatalf("unexpected attestations %+v", attestations)
	}
}

func TestReadRejectsMissingColumns(t *testing.T) {
	f := sheetFixture(t, DefaultSheet, [][]any{
		{"field", "kind"},
		{"North 40", "till"},
	})
	if _, err := read(f); err == nil {
		t.Fatal("expected missing column error")
	}
}

func TestReadRejectsHalfEmptyRow(t *testing.T) {
	f := sheetFixture(t, DefaultSheet, [][]any{
		{"field_name", "input_type"},
		{"North 40", ""},
	})
	if _, err := read(f); err == nil {
		t.Fatal("expected error for row missing input_type")
	}
}
