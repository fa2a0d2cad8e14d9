package core

import (
	"strings"
	"testing"
)

func TestResolveReferenceAcreage(t *testing.T) {
	cases := []struct {
		name          string
		planted       *float64
		harvested     *float64
		gis           *float64
		want          *float64
		wantExclusion string // substring; empty means no exclusion
	}{
		{
			name:          "two of three missing",
			planted:       fptr(100),
			wantExclusion: "Missing: [harvested gis]",
		},
		{
			name:          "all missing",
			wantExclusion: "Missing: [planted harvested gis]",
		},
		{
			name:    "planted and harvested agree",
			planted: fptr(100), harvested: fptr(97),
			want: fptr(100),
		},
		{
			name:    "planted and harvested conflict",
			planted: fptr(100), harvested: fptr(60),
			wantExclusion: "planted and harvested",
		},
		{
			name:      "harvested agrees with gis",
			harvested: fptr(48), gis: fptr(50),
			want: fptr(48),
		},
		{
			name:      "zero harvest trusts gis",
			harvested: fptr(0), gis: fptr(50),
			want: fptr(50),
		},
		{
			name:      "harvested conflicts with gis",
			harvested: fptr(90), gis: fptr(50),
			wantExclusion: "potential split field",
		},
		{
			name:    "planted agrees with gis",
			planted: fptr(52), gis: fptr(50),
			want: fptr(52),
		},
		{
			name:    "planted conflicts with gis",
			planted: fptr(80), gis: fptr(50),
			wantExclusion: "wrong shp file or missing planting ops",
		},
		{
			name:    "all three conflict",
			planted: fptr(100), harvested: fptr(60), gis: fptr(30),
			wantExclusion: "potential split field",
		},
		{
			name:    "planted and harvested agree below gis",
			planted: fptr(50), harvested: fptr(52), gis: fptr(80),
			want: fptr(50),
		},
		{
			name:    "planted and harvested agree above gis",
			planted: fptr(80), harvested: fptr(78), gis: fptr(50),
			want: fptr(80),
		},
		{
			name:    "gis sides with harvested",
			planted: fptr(100), harvested: fptr(52), gis: fptr(50),
			want: fptr(50),
		},
		{
			name:    "too many harvested acres",
			planted: fptr(50), harvested: fptr(90), gis: fptr(52),
			wantExclusion: "too many harvested acres",
		},
		{
			name:    "all three agree",
			planted: fptr(100), harvested: fptr(98), gis: fptr(102),
			want: fptr(100),
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, reason := ResolveReferenceAcreage(tc.planted, tc.harvested, tc.gis)
			if tc.wantExclusion != "" {
				if got != nil {
					t.Fatalf("resolved = %v, want nil", *got)
				}
				if reason == nil || !strings.Contains(*reason, tc.wantExclusion) {
					t.Fatalf("exclusion reason = %v, want substring %q", reason, tc.wantExclusion)
				}
				return
			}
			if reason != nil {
				t.Fatalf("unexpected exclusion reason %q", *reason)
			}
			if got == nil || *got != *tc.want {
				t.Fatalf("resolved = %v, want %v", got, *tc.want)
			}
		})
	}
}

type stubGIS struct {
	acres     map[string]float64
	centroids map[string][2]float64
}

func (g stubGIS) AcreageForField(field string) (float64, bool) {
	v, ok := g.acres[field]
	return v, ok
}

func (g stubGIS) CentroidForField(field string) (float64, float64, bool) {
	c, ok := g.centroids[field]
	return c[0], c[1], ok
}

func TestBuildReferenceAcreageReport(t *testing.T) {
	plant := func(field, crop string, area float64) FieldOperation {
		var op FieldOperation
		op.FieldName = field
		op.OperationType = OperationPlanting
		op.CropType = sptr(crop)
		op.AreaApplied = fptr(area)
		return op
	}
	harvest := func(field, crop string, area float64) FieldOperation {
		var op FieldOperation
		op.FieldName = field
		op.OperationType = OperationHarvest
		op.CropType = sptr(crop)
		op.AreaApplied = fptr(area)
		return op
	}

	ops := []FieldOperation{
		plant("North 40", "Corn", 100),
		harvest("North 40", "Corn", 97),
		harvest("South 12", "Corn", 48),
		plant("North 40", "Wheat", 20), // not a model crop
	}
	gis := stubGIS{acres: map[string]float64{"South 12": 50}}

	report := BuildReferenceAcreageReport(ops, gis, NopLogger())

	if len(report) != 2 {
		t.Fatalf("report rows = %d, want 2", len(report))
	}
	north := report[0]
	if north.FieldName != "North 40" || !north.PLAAvailable {
		t.Fatalf("unexpected first row %+v", north)
	}
	if north.ResolvedAcreage == nil || *north.ResolvedAcreage != 100 {
		t.Fatalf("North 40 resolved = %v, want 100", north.ResolvedAcreage)
	}
	south := report[1]
	if south.PLAAvailable {
		t.Fatalf("South 12 should have no planted acres")
	}
	if south.ResolvedAcreage == nil || *south.ResolvedAcreage != 48 {
		t.Fatalf("South 12 resolved = %v, want 48", south.ResolvedAcreage)
	}
}

func TestSelectReferenceAcreage(t *testing.T) {
	report := []AcreageRecord{
		{FieldName: "A", CropType: "Corn", PLAAvailable: true, ResolvedAcreage: fptr(100)},
		{FieldName: "A", CropType: "Corn", PLAAvailable: true, ResolvedAcreage: fptr(110)},
		{FieldName: "A", CropType: "Corn", PLAAvailable: false, ResolvedAcreage: fptr(300)},
		{FieldName: "B", CropType: "Corn", ResolvedAcreage: nil, ExclusionReason: sptr("potential split field")},
	}

	acres, reason := SelectReferenceAcreage("A", "Corn", report, NopLogger())
	if acres == nil || *acres != 110 {
		t.Fatalf("selected = %v, want 110 (max among planted-backed rows)", acres)
	}
	if reason != nil {
		t.Fatalf("unexpected exclusion reason %q", *reason)
	}

	acres, reason = SelectReferenceAcreage("B", "Corn", report, NopLogger())
	if acres != nil {
		t.Fatalf("selected = %v, want nil for unresolved field", *acres)
	}
	if reason == nil || *reason != "Missing reference acreage completely" {
		t.Fatalf("reason = %v, want missing-completely message", reason)
	}

	acres, reason = SelectReferenceAcreage("C", "Corn", report, NopLogger())
	if acres != nil || reason == nil {
		t.Fatalf("unknown field should report missing acreage, got %v %v", acres, reason)
	}
}
