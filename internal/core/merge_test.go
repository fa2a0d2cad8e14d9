package core

import (
	"testing"
	"time"
)

type testConverter struct{}

func (testConverter) Convert(quantity float64, unit string) (float64, string) {
	switch unit {
	case "TON":
		return quantity * 2000, "LBS"
	default:
		return quantity, unit
	}
}

func appOp(field, product, source string, total *float64, unit string) FieldOperation {
	var op FieldOperation
	op.FieldName = field
	op.OperationType = OperationApplication
	op.Product = sptr(product)
	op.AppliedTotal = total
	op.AppliedUnit = unit
	op.DataSource = source
	return op
}

func harvestOp(field, crop, source string, dryYield *float64) FieldOperation {
	var op FieldOperation
	op.FieldName = field
	op.OperationType = OperationHarvest
	op.CropType = sptr(crop)
	op.TotalDryYield = dryYield
	op.DataSource = source
	return op
}

func tillOp(field, source string, area *float64) FieldOperation {
	var op FieldOperation
	op.FieldName = field
	op.OperationType = OperationTillage
	op.AreaApplied = area
	op.DataSource = source
	return op
}

func sourcesOf(ops []FieldOperation) map[string]int {
	counts := make(map[string]int)
	for _, op := range ops {
		counts[op.DataSource]++
	}
	return counts
}

func TestMergeApplicationPairGreaterEvidenceWins(t *testing.T) {
	primary := []FieldOperation{appOp("North 40", "UAN 32", "acc", fptr(120), "LBS")}
	secondary := []FieldOperation{appOp("North 40", "UAN 32", "jdops", fptr(150), "LBS")}

	merged := MergeApplicationPair(primary, secondary, testConverter{}, NopLogger())

	if len(merged) != 1 {
		t.Fatalf("merged rows = %d, want 1", len(merged))
	}
	if merged[0].DataSource != "jdops" {
		t.Fatalf("winning source = %q, want jdops", merged[0].DataSource)
	}
	if *merged[0].AppliedTotal != 150 {
		t.Fatalf("applied total = %v, want 150", *merged[0].AppliedTotal)
	}
}

func TestMergeApplicationPairTieKeepsAccumulator(t *testing.T) {
	primary := []FieldOperation{appOp("North 40", "UAN 32", "acc", fptr(150), "LBS")}
	secondary := []FieldOperation{appOp("North 40", "UAN 32", "jdops", fptr(150), "LBS")}

	merged := MergeApplicationPair(primary, secondary, testConverter{}, NopLogger())

	if len(merged) != 1 || merged[0].DataSource != "acc" {
		t.Fatalf("tie should keep accumulator rows, got %+v", sourcesOf(merged))
	}
}

func TestMergeApplicationPairSingleSidedEvidence(t *testing.T) {
	cases := []struct {
		name       string
		primary    []FieldOperation
		secondary  []FieldOperation
		wantSource string
		wantRows   int
	}{
		{
			name:       "only secondary has evidence",
			primary:    []FieldOperation{appOp("A", "MAP", "acc", nil, "LBS")},
			secondary:  []FieldOperation{appOp("A", "MAP", "jdops", fptr(40), "LBS")},
			wantSource: "jdops",
			wantRows:   1,
		},
		{
			name:       "only primary has evidence",
			primary:    []FieldOperation{appOp("A", "MAP", "acc", fptr(40), "LBS")},
			secondary:  []FieldOperation{appOp("A", "MAP", "jdops", fptr(0), "LBS")},
			wantSource: "acc",
			wantRows:   1,
		},
		{
			name:      "neither has evidence",
			primary:   []FieldOperation{appOp("A", "MAP", "acc", fptr(0), "LBS")},
			secondary: []FieldOperation{appOp("A", "MAP", "jdops", nil, "LBS")},
			wantRows:  0,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			merged := MergeApplicationPair(tc.primary, tc.secondary, testConverter{}, NopLogger())
			if len(merged) != tc.wantRows {
				t.Fatalf("merged rows = %d, want %d", len(merged), tc.wantRows)
			}
			if tc.wantRows > 0 && merged[0].DataSource != tc.wantSource {
				t.Fatalf("winning source = %q, want %q", merged[0].DataSource, tc.wantSource)
			}
		})
	}
}

func TestMergeApplicationPairConvertsUnitsBeforeComparing(t *testing.T) {
	// 1 ton of lime is 2000 lbs and beats 150 lbs despite the smaller figure.
	primary := []FieldOperation{appOp("South 12", "Lime", "acc", fptr(1), "TON")}
	secondary := []FieldOperation{appOp("South 12", "Lime", "jdops", fptr(150), "LBS")}

	merged := MergeApplicationPair(primary, secondary, testConverter{}, NopLogger())

	if len(merged) != 1 || merged[0].DataSource != "acc" {
		t.Fatalf("ton-denominated source should win after conversion, got %+v", sourcesOf(merged))
	}
}

func TestMergeApplicationPairKeysAreIndependent(t *testing.T) {
	primary := []FieldOperation{
		appOp("A", "UAN 32", "acc", fptr(200), "LBS"),
		appOp("A", "MAP", "acc", fptr(10), "LBS"),
	}
	secondary := []FieldOperation{
		appOp("A", "UAN 32", "jdops", fptr(50), "LBS"),
		appOp("A", "MAP", "jdops", fptr(90), "LBS"),
		appOp("B", "Potash", "jdops", fptr(75), "LBS"),
	}

	merged := MergeApplicationPair(primary, secondary, testConverter{}, NopLogger())

	got := sourcesOf(merged)
	if got["acc"] != 1 || got["jdops"] != 2 {
		t.Fatalf("per-key winners = %+v, want acc:1 jdops:2", got)
	}
}

func TestMergeApplicationPairDropsExactDuplicates(t *testing.T) {
	dup := appOp("A", "MAP", "acc", fptr(40), "LBS")
	merged := MergeApplicationPair([]FieldOperation{dup, dup}, nil, testConverter{}, NopLogger())
	if len(merged) != 1 {
		t.Fatalf("merged rows = %d, want 1 after duplicate removal", len(merged))
	}
}

func TestMergeHarvestPairComparesDryYieldPerCrop(t *testing.T) {
	primary := []FieldOperation{
		harvestOp("A", "Corn", "acc", fptr(9000)),
		harvestOp("A", "Soybeans", "acc", fptr(100)),
	}
	secondary := []FieldOperation{
		harvestOp("A", "Corn", "jdops", fptr(8000)),
		harvestOp("A", "Soybeans", "jdops", fptr(2400)),
	}

	merged := MergeHarvestPair(primary, secondary)

	got := sourcesOf(merged)
	if got["acc"] != 1 || got["jdops"] != 1 {
		t.Fatalf("per-crop winners = %+v, want acc:1 jdops:1", got)
	}
}

func TestMergeTillagePairComparesAreaPerField(t *testing.T) {
	primary := []FieldOperation{tillOp("A", "acc", fptr(30))}
	secondary := []FieldOperation{
		tillOp("A", "jdops", fptr(25)),
		tillOp("A", "jdops", fptr(25)),
	}

	merged := MergeTillagePair(primary, secondary)

	if len(merged) != 2 || merged[0].DataSource != "jdops" {
		t.Fatalf("aggregate area 50 should beat 30, got %+v", sourcesOf(merged))
	}
}

func TestMergeApplicationsAppendOnlySourceBypassesComparison(t *testing.T) {
	sources := []SourceOperations{
		{Name: "acc", Operations: []FieldOperation{appOp("A", "UAN 32", "acc", fptr(120), "LBS")}},
		{Name: "jdops", Operations: []FieldOperation{appOp("A", "UAN 32", "jdops", fptr(150), "LBS")}},
		{Name: "pap", Operations: []FieldOperation{appOp("A", "UAN 32", "pap", fptr(5), "LBS")}},
	}

	merged := MergeApplications(sources, []string{"pap"}, testConverter{}, NopLogger())

	got := sourcesOf(merged)
	if got["jdops"] != 1 || got["pap"] != 1 || got["acc"] != 0 {
		t.Fatalf("merged sources = %+v, want jdops:1 pap:1", got)
	}
}

func TestComprehensiveInputsSortsByFieldAndStart(t *testing.T) {
	jan := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	apr := time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC)

	late := appOp("B", "UAN 32", "acc", fptr(20), "LBS")
	late.OperationStart = &apr
	early := appOp("B", "MAP", "acc", fptr(30), "LBS")
	early.OperationStart = &jan
	other := tillOp("A", "acc", fptr(40))

	sources := []SourceOperations{{Name: "acc", Operations: []FieldOperation{late, early, other}}}
	inputs := ComprehensiveInputs(sources, nil, testConverter{}, NopLogger())

	if len(inputs) != 3 {
		t.Fatalf("comprehensive rows = %d, want 3", len(inputs))
	}
	if inputs[0].FieldName != "A" {
		t.Fatalf("first row field = %q, want A", inputs[0].FieldName)
	}
	if got := *inputs[1].Product; got != "MAP" {
		t.Fatalf("field B should order by start date, first product = %q", got)
	}
}
