package core

import "testing"

func TestBuildCoverageReport(t *testing.T) {
	spread := func(field string, area float64) FieldOperation {
		var op FieldOperation
		op.FieldName = field
		op.OperationType = OperationApplication
		op.AreaApplied = fptr(area)
		return op
	}
	acreage := []AcreageRecord{
		{FieldName: "A", CropType: "Corn", ResolvedAcreage: fptr(100)},
		{FieldName: "B", CropType: "Corn", ResolvedAcreage: nil},
	}

	report := BuildCoverageReport([]FieldOperation{
		spread("A", 30),
		spread("A", 31),
		spread("B", 10),
	}, acreage, NopLogger())

	if len(report) != 2 {
		t.Fatalf("coverage rows = %d, want 2", len(report))
	}
	a := report[0]
	if *a.AreaOperated != 61 {
		t.Fatalf("area operated = %v, want 61", *a.AreaOperated)
	}
	if a.AreaCoveragePercent == nil || *a.AreaCoveragePercent != 0.61 {
		t.Fatalf("coverage = %v, want 0.61", a.AreaCoveragePercent)
	}
	b := report[1]
	if b.AreaCoveragePercent != nil {
		t.Fatalf("coverage without reference acreage = %v, want nil", *b.AreaCoveragePercent)
	}
}

func TestClassifyUse(t *testing.T) {
	coverage := []CoverageRecord{
		{FieldName: "A", AreaCoveragePercent: fptr(0.61)},
		{FieldName: "B", AreaCoveragePercent: fptr(0.50)},
		{FieldName: "C", AreaCoveragePercent: nil},
	}

	if !ClassifyUse("A", coverage) {
		t.Fatal("coverage 0.61 should classify as used")
	}
	if ClassifyUse("B", coverage) {
		t.Fatal("coverage exactly 0.50 should not classify as used")
	}
	if ClassifyUse("C", coverage) {
		t.Fatal("missing coverage percent should not classify as used")
	}
	if ClassifyUse("D", coverage) {
		t.Fatal("field without records should not classify as used")
	}
	if ClassifyUse("A", nil) {
		t.Fatal("empty report should classify nothing as used")
	}
}
