package core

import (
	"math"
	"testing"
	"time"

	"feedstockcore/pkg/domain"
)

type stubCoverCrops map[string]domain.CoverCropEntry

func (c stubCoverCrops) Lookup(name string) (domain.CoverCropEntry, bool) {
	e, ok := c[name]
	return e, ok
}

func attEngine(catalog stubCatalog, crops stubCoverCrops) AttestationEngine {
	return AttestationEngine{
		Catalog:    catalog,
		CoverCrops: crops,
		Converter:  testConverter{},
		Log:        NopLogger(),
	}
}

func fieldRowsFixture(field string) []BulkUploadRow {
	practice := TillReduced
	nMgt := NMgtBAU
	return []BulkUploadRow{
		{
			FieldName:        field,
			GrowingCycle:     2023,
			OperationStart:   date(2023, time.April, 10),
			InputName:        "Lime",
			InputType:        inputPtr(InputFertilizer),
			InputRate:        fptr(1000),
			InputUnit:        "LBS",
			ReferenceAcreage: fptr(100),
			TillPractice:     &practice,
			NMgtPractice:     &nMgt,
		},
		{
			FieldName:        field,
			GrowingCycle:     2023,
			OperationStart:   date(2023, time.May, 2),
			InputName:        "32% UAN",
			InputType:        inputPtr(InputFertilizer),
			InputRate:        fptr(150),
			InputUnit:        "GAL",
			ReferenceAcreage: fptr(100),
			TillPractice:     &practice,
			NMgtPractice:     &nMgt,
		},
	}
}

func TestSeparateUnitPerAcre(t *testing.T) {
	cases := []struct {
		in      string
		unit    string
		perAcre bool
	}{
		{"GAL/ac", "GAL", true},
		{"GAL/acre", "GAL", true},
		{"LBS per acres", "LBS", true},
		{" T / Acres ", "T", true},
		{"LBS", "LBS", false},
		{"GAL/ha", "", false},
		{"GAL per hectare", "", false},
	}
	for _, tc := range cases {
		unit, perAcre := separateUnitPerAcre(tc.in)
		if unit != tc.unit || perAcre != tc.perAcre {
			t.Errorf("separateUnitPerAcre(%q) = (%q, %v), want (%q, %v)",
				tc.in, unit, perAcre, tc.unit, tc.perAcre)
		}
	}
}

func TestApplyLimeAttestation(t *testing.T) {
	engine := attEngine(stubCatalog{}, nil)
	rows := fieldRowsFixture("North 40")

	got, _ := engine.Apply(rows, []Attestation{{
		FieldName:   "North 40",
		InputType:   "Lime",
		InputValue:  sptr("40"),
		InputUnit:   sptr("LBS/ac"),
		AreaApplied: fptr(100),
	}})

	if len(got) != 2 {
		t.Fatalf("expected existing lime row replaced, got %d rows", len(got))
	}
	var synthesized *BulkUploadRow
	for i := range got {
		if got[i].DataSource == "Verity" {
			synthesized = &got[i]
		} else if got[i].InputName == "Lime" {
			t.Errorf("existing lime row should have been dropped")
		}
	}
	if synthesized == nil {
		t.Fatal("expected a synthesized lime row")
	}
	if synthesized.InputName != "Lime" || synthesized.OperationName != "Lime application" {
		t.Errorf("unexpected product naming: %q / %q", synthesized.InputName, synthesized.OperationName)
	}
	if synthesized.InputType == nil || *synthesized.InputType != InputFertilizer {
		t.Errorf("synthesized lime row must be typed as fertilizer")
	}
	if synthesized.CropType == nil || *synthesized.CropType != CropCorn {
		t.Errorf("synthesized row crop = %v, want Corn", synthesized.CropType)
	}
	// Per-acre rate times the inherited 100 acre reference acreage.
	if synthesized.InputRate == nil || *synthesized.InputRate != 4000 {
		t.Errorf("input rate = %v, want 4000", synthesized.InputRate)
	}
	want := time.Date(2023, time.June, 1, 0, 0, 0, 0, time.UTC)
	if synthesized.OperationStart == nil || !synthesized.OperationStart.Equal(want) {
		t.Errorf("operation start = %v, want %v", synthesized.OperationStart, want)
	}
	if synthesized.TillPractice == nil || *synthesized.TillPractice != TillReduced {
		t.Errorf("synthesized row must inherit the field tillage practice")
	}
}

func TestApplyLimeRejectsNonDryUnit(t *testing.T) {
	engine := attEngine(stubCatalog{}, nil)
	rows := fieldRowsFixture("North 40")

	got, _ := engine.Apply(rows, []Attestation{{
		FieldName:  "North 40",
		InputType:  "lime",
		InputValue: sptr("500"),
		InputUnit:  sptr("GAL"),
	}})
	if len(got) != 2 {
		t.Fatalf("invalid unit must leave rows untouched, got %d rows", len(got))
	}
	for _, r := range got {
		if r.DataSource == "Verity" {
			t.Error("no row should be synthesized for an invalid unit")
		}
	}
}

func TestApplyTillAttestation(t *testing.T) {
	engine := attEngine(stubCatalog{}, nil)

	got, _ := engine.Apply(fieldRowsFixture("North 40"), []Attestation{{
		FieldName:  "North 40",
		InputType:  "till",
		InputValue: sptr("NO_TILLAGE"),
	}})
	for _, r := range got {
		if r.TillPractice == nil || *r.TillPractice != TillNone {
			t.Errorf("till practice = %v, want NO_TILLAGE on every row", r.TillPractice)
		}
	}

	got, _ = engine.Apply(fieldRowsFixture("North 40"), []Attestation{{
		FieldName:  "North 40",
		InputType:  "till",
		InputValue: sptr("MINIMAL_TILLAGE"),
	}})
	for _, r := range got {
		if r.TillPractice == nil || *r.TillPractice != TillReduced {
			t.Errorf("invalid practice value must not change rows")
		}
	}
}

func TestApplyNMgtAttestationKeeps4R(t *testing.T) {
	engine := attEngine(stubCatalog{}, nil)
	rows := fieldRowsFixture("North 40")
	fourR := NMgt4R
	rows[0].NMgtPractice = &fourR

	got, _ := engine.Apply(rows, []Attestation{{
		FieldName:  "North 40",
		InputType:  "n_mgt",
		InputValue: sptr("EEF"),
	}})

	saw4R, sawEEF := false, false
	for _, r := range got {
		if r.NMgtPractice == nil {
			t.Fatal("every row should carry a practice")
		}
		switch *r.NMgtPractice {
		case NMgt4R:
			saw4R = true
		case NMgtEEF:
			sawEEF = true
		}
	}
	if !saw4R {
		t.Error("an existing 4R decision must never be downgraded")
	}
	if !sawEEF {
		t.Error("business-as-usual rows should take the attested EEF practice")
	}
}

func TestApplyFertAttestationSparesLime(t *testing.T) {
	engine := attEngine(stubCatalog{}, nil)

	got, _ := engine.Apply(fieldRowsFixture("North 40"), []Attestation{{
		FieldName: "North 40",
		InputType: "fert",
	}})
	if len(got) != 1 {
		t.Fatalf("expected only the lime row to survive, got %d rows", len(got))
	}
	if got[0].InputName != "Lime" {
		t.Errorf("surviving row = %q, want Lime", got[0].InputName)
	}
}

func TestApplyExcludeAttestation(t *testing.T) {
	engine := attEngine(stubCatalog{}, nil)

	got, exclusions := engine.Apply(fieldRowsFixture("North 40"), []Attestation{{
		FieldName:  "North 40",
		InputType:  "exclude:no-consent",
		InputValue: sptr("grower withdrew"),
	}})
	if len(got) != 0 {
		t.Fatalf("excluded field rows must be dropped, got %d", len(got))
	}
	if len(exclusions) != 1 {
		t.Fatalf("expected one exclusion record, got %d", len(exclusions))
	}
	rec := exclusions[0]
	if rec.Case != ExclusionCase("no-consent") || rec.FieldName != "North 40" {
		t.Errorf("unexpected exclusion record: %+v", rec)
	}
	if rec.Reason == nil || *rec.Reason != "grower withdrew" {
		t.Errorf("exclusion reason = %v, want the attested input value", rec.Reason)
	}
}

func TestApplyManureAttestation(t *testing.T) {
	catalog := stubCatalog{
		"Dairy Slurry": ProductBreakdown{
			ProductName: "Dairy Slurry",
			ProductType: "manure",
			ManureType:  "Dairy Cow",
			LbsPerGal:   fptr(8),
		},
	}
	engine := attEngine(catalog, nil)

	got, _ := engine.Apply(fieldRowsFixture("North 40"), []Attestation{{
		FieldName:    "North 40",
		InputType:    "manure",
		InputProduct: sptr("Dairy Slurry"),
		InputValue:   sptr("4000"),
		InputUnit:    sptr("LBS"),
		AreaApplied:  fptr(100),
	}})

	var op *BulkUploadRow
	for i := range got {
		if !got[i].ManureUse {
			t.Errorf("manure use must be set on every field row")
		}
		if got[i].DataSource == "Verity" {
			op = &got[i]
		}
	}
	if op == nil {
		t.Fatal("expected a synthesized manure row")
	}
	if op.ManureType != "Dairy Cow" {
		t.Errorf("manure type = %q, want Dairy Cow", op.ManureType)
	}
	// 4000 LBS at 8 lbs/gal density over 2000 lbs per short ton.
	if op.ManureDryQuantityEquiv == nil || *op.ManureDryQuantityEquiv != 16 {
		t.Errorf("dry quantity equivalent = %v, want 16", op.ManureDryQuantityEquiv)
	}
	if op.ManureTransDist == nil || *op.ManureTransDist != DefaultManureTransDist {
		t.Errorf("transport distance = %v, want default %v", op.ManureTransDist, DefaultManureTransDist)
	}
	if op.ManureTransEn == nil || *op.ManureTransEn != DefaultManureTransEn {
		t.Errorf("transport energy = %v, want default %v", op.ManureTransEn, DefaultManureTransEn)
	}
	wantAppl := DefaultManureApplEn * 100
	if op.ManureApplEn == nil || math.Abs(*op.ManureApplEn-wantAppl) > 1e-6 {
		t.Errorf("application energy = %v, want %v", op.ManureApplEn, wantAppl)
	}
}

func TestApplyCoverCropAttestation(t *testing.T) {
	catalog := stubCatalog{
		"Roundup": ProductBreakdown{
			ProductName: "Roundup",
			ProductType: "herbicide",
			LbsAIPerGal: fptr(4.17),
		},
	}
	crops := stubCoverCrops{
		"Cereal Rye": domain.CoverCropEntry{
			CoverCropType:     "Cereal Rye",
			YieldMtPerHectare: fptr(4.0),
			NContentTotal:     fptr(0.015),
		},
	}
	engine := attEngine(catalog, crops)

	got, _ := engine.Apply(fieldRowsFixture("North 40"), []Attestation{{
		FieldName:        "North 40",
		InputType:        "cc",
		InputUnit:        sptr("TN/ac"),
		CCType:           sptr("Cereal Rye"),
		CCHerbProduct:    sptr("Roundup"),
		CCHerbAmount:     fptr(20),
		CCHerbUnit:       sptr("GAL"),
		CCYieldHarvested: fptr(0.5),
	}})

	var op *BulkUploadRow
	for i := range got {
		if !got[i].CoverCropUse {
			t.Errorf("cover crop use must be set on every field row")
		}
		if got[i].DataSource == "Verity" {
			op = &got[i]
		}
	}
	if op == nil {
		t.Fatal("expected a synthesized cover-crop row")
	}
	if op.CCType != "Cereal Rye" || op.CCHerbicideProduct != "Roundup" {
		t.Errorf("cc type/herbicide = %q / %q", op.CCType, op.CCHerbicideProduct)
	}
	wantAI := 20 * 4.17 * GPerLbs
	if op.CCHerbicideAI == nil || math.Abs(*op.CCHerbicideAI-wantAI) > 1e-6 {
		t.Errorf("herbicide AI = %v, want %v", op.CCHerbicideAI, wantAI)
	}
	wantYield := EstimateCoverCropYield(crops["Cereal Rye"], 100) - 0.5*100
	if op.CCYield == nil || math.Abs(*op.CCYield-wantYield) > 1e-6 {
		t.Errorf("cc yield = %v, want %v", op.CCYield, wantYield)
	}
	wantEn := DefaultCCApplEn * 100
	if op.CCApplEn == nil || math.Abs(*op.CCApplEn-wantEn) > 1e-6 {
		t.Errorf("application energy = %v, want %v", op.CCApplEn, wantEn)
	}
	if op.CCNFactor == nil || *op.CCNFactor != 0.015 {
		t.Errorf("cc nitrogen factor = %v, want 0.015", op.CCNFactor)
	}
}

func TestApplyProductAttestationKeepsExisting(t *testing.T) {
	catalog := stubCatalog{
		"32% UAN": ProductBreakdown{
			ProductName: "32% UAN",
			ProductType: "fertilizer",
			PercentN:    fptr(0.32),
		},
	}
	engine := attEngine(catalog, nil)
	keep := false

	got, _ := engine.Apply(fieldRowsFixture("North 40"), []Attestation{{
		FieldName:    "North 40",
		InputType:    "32% UAN",
		InputValue:   sptr("2"),
		InputUnit:    sptr("GAL/ac"),
		AreaApplied:  fptr(100),
		DropExisting: &keep,
	}})

	existing, synthesized := 0, 0
	for _, r := range got {
		if r.InputName != "32% UAN" {
			continue
		}
		if r.DataSource == "Verity" {
			synthesized++
			if r.InputType == nil || *r.InputType != InputType("FERTILIZER") {
				t.Errorf("input type = %v, want FERTILIZER from the breakdown table", r.InputType)
			}
			if r.InputRate == nil || *r.InputRate != 200 {
				t.Errorf("input rate = %v, want 2 GAL/ac over 100 acres = 200", r.InputRate)
			}
		} else {
			existing++
		}
	}
	if existing != 1 || synthesized != 1 {
		t.Errorf("existing/synthesized = %d/%d, want 1/1 when Drop_existing is false", existing, synthesized)
	}
}

func TestApplySortsAndReassignsIDs(t *testing.T) {
	engine := attEngine(stubCatalog{}, nil)
	rows := append(fieldRowsFixture("South 12"), fieldRowsFixture("North 40")...)

	got, _ := engine.Apply(rows, []Attestation{{
		FieldName:   "North 40",
		InputType:   "potash",
		InputValue:  sptr("500"),
		InputUnit:   sptr("LBS"),
		AreaApplied: fptr(100),
	}})

	if len(got) != 5 {
		t.Fatalf("expected 5 rows after potash synthesis, got %d", len(got))
	}
	for i := range got {
		if got[i].ID != i+1 {
			t.Errorf("row %d has ID %d, IDs must be sequential from 1", i, got[i].ID)
		}
		if i > 0 && got[i].FieldName < got[i-1].FieldName {
			t.Errorf("rows must be sorted by field name: %q after %q", got[i].FieldName, got[i-1].FieldName)
		}
		if i > 0 && got[i].FieldName == got[i-1].FieldName &&
			got[i].OperationStart != nil && got[i-1].OperationStart != nil &&
			got[i].OperationStart.Before(*got[i-1].OperationStart) {
			t.Errorf("rows within a field must be ordered by operation start")
		}
	}
	if got[0].FieldName != "North 40" {
		t.Errorf("first field = %q, want North 40", got[0].FieldName)
	}
}
