package core

import (
	"context"
	"testing"
)

func TestMatrixBuilderBuild(t *testing.T) {
	catalog := stubCatalog{
		"UAN 32": {ProductName: "UAN 32", PercentN: fptr(0.32), LbsPerGal: fptr(11.06)},
	}
	decider := TimingDecider{GIS: stubGIS{}, SoilTemp: stubSoilTemp{}, Log: NopLogger()}
	builder := MatrixBuilder{Catalog: catalog, Timing: decider, Log: NopLogger()}

	springApp := fertRow("North 40", TimingSpring, date(2024, 4, 10))
	springApp.Product = sptr("UAN 32")
	springApp.AppliedTotal = fptr(100)
	springApp.ReferenceAcreage = fptr(100)

	harvest := harvestOp("North 40", "Corn", "acc", fptr(500))
	harvest.ReferenceAcreage = fptr(100)

	till := tillOp("North 40", "acc", fptr(100))
	till.AppliedRate = fptr(2.0)

	soyHarvest := harvestOp("Double Crop", "Soybeans", "acc", fptr(100))
	cornHarvest := harvestOp("Double Crop", "Corn", "acc", fptr(100))

	overview := []FieldOperation{springApp, harvest, till, soyHarvest, cornHarvest}
	verified := []VerifiedField{{FieldName: "North 40"}}
	manure := []CoverageRecord{{FieldName: "North 40", AreaCoveragePercent: fptr(0.8)}}

	rows := builder.Build(context.Background(), "ACME", 2024, overview, verified, manure, nil, nil)
	if len(rows) != 2 {
		t.Fatalf("matrix rows = %d, want 2", len(rows))
	}

	north := rows[0]
	if north.FieldName != "North 40" || !north.Verified {
		t.Fatalf("unexpected first row %+v", north)
	}
	if north.CropType == nil || *north.CropType != "Corn" {
		t.Fatalf("crop type = %v, want Corn", north.CropType)
	}
	wantN := 0.32 * 11.06 * 100
	if north.TotalNitrogen == nil || *north.TotalNitrogen != wantN {
		t.Fatalf("total N = %v, want %v", north.TotalNitrogen, wantN)
	}
	if north.NUE == nil || *north.NUE != wantN/500 {
		t.Fatalf("NUE = %v, want %v", north.NUE, wantN/500)
	}
	if north.Amount4R != Amount4R {
		t.Fatalf("amount = %q, want 4R for NUE %v", north.Amount4R, *north.NUE)
	}
	if north.Timing4R != Timing4RMet {
		t.Fatalf("timing = %q, want 4R for spring-only field", north.Timing4R)
	}
	if north.NMgtPractice != NMgt4R {
		t.Fatalf("practice = %q, want 4R", north.NMgtPractice)
	}
	if !north.ManureUse || north.CoverCropUse {
		t.Fatalf("manure=%v cover=%v, want true/false", north.ManureUse, north.CoverCropUse)
	}
	if north.TillPractice == nil || *north.TillPractice != TillReduced {
		t.Fatalf("till practice = %v, want REDUCED_TILLAGE", north.TillPractice)
	}
	if north.MajorCropType == nil || *north.MajorCropType != "Corn" {
		t.Fatalf("major crop = %v, want Corn", north.MajorCropType)
	}

	double := rows[1]
	if double.Verified {
		t.Fatal("Double Crop should not be verified")
	}
	if double.MajorCropType == nil || *double.MajorCropType != MajorCropSplitField {
		t.Fatalf("major crop = %v, want split-field sentinel", double.MajorCropType)
	}
	if double.NMgtPractice != NMgtBAU {
		t.Fatalf("practice = %q, want business as usual", double.NMgtPractice)
	}
}

func TestMatrixBuilderSplitFieldReportOverridesCropCount(t *testing.T) {
	builder := MatrixBuilder{
		Catalog: stubCatalog{},
		Timing:  TimingDecider{GIS: stubGIS{}, SoilTemp: stubSoilTemp{}, Log: NopLogger()},
		Log:     NopLogger(),
	}
	overview := []FieldOperation{harvestOp("A", "Corn", "acc", fptr(100))}
	split := []SplitFieldRecord{{FieldName: "A"}}

	rows := builder.Build(context.Background(), "ACME", 2024, overview, nil, nil, nil, split)
	if len(rows) != 1 {
		t.Fatalf("matrix rows = %d, want 1", len(rows))
	}
	if rows[0].MajorCropType == nil || *rows[0].MajorCropType != MajorCropSplitField {
		t.Fatalf("major crop = %v, want split-field sentinel from report", rows[0].MajorCropType)
	}
}
