package domain

import "testing"

func TestAttestationKindOf(t *testing.T) {
	isProduct := func(name string) bool { return name == "Potash 60" }

	cases := []struct {
		inputType string
		want      AttestationKind
	}{
		{"lime", AttestLime},
		{"LIME", AttestLime},
		{"Potash", AttestPotash},
		{"pure_p2o5", AttestPureP2O5},
		{"manure", AttestManure},
		{"cc", AttestCC},
		{"till", AttestTill},
		{"fert", AttestFert},
		{"n_mgt", AttestNMgt},
		{"Potash 60", AttestProduct},
		{"exclude", AttestExclude},
		{"Exclude:no-consent", AttestExclude},
		{"banana", AttestUnknown},
		{"", AttestUnknown},
	}
	for _, tc := range cases {
		got := Attestation{InputType: tc.inputType}.KindOf(isProduct)
		if got != tc.want {
			t.Errorf("KindOf(%q) = %q, want %q", tc.inputType, got, tc.want)
		}
	}
}

func TestAttestationExclusionCase(t *testing.T) {
	if got := (Attestation{InputType: "exclude:split"}).ExclusionCaseOf(); got != "split" {
		t.Fatalf("exclusion case = %q, want split", got)
	}
	if got := (Attestation{InputType: "exclude"}).ExclusionCaseOf(); got != string(ExclusionManual) {
		t.Fatalf("exclusion case = %q, want manual default", got)
	}
	if got := (Attestation{InputType: "exclude:"}).ExclusionCaseOf(); got != string(ExclusionManual) {
		t.Fatalf("empty sub-case should default to manual, got %q", got)
	}
}

func TestValidTillPractice(t *testing.T) {
	for _, v := range []string{"CONVENTIONAL_TILLAGE", "REDUCED_TILLAGE", "NO_TILLAGE"} {
		if !ValidTillPractice(v) {
			t.Errorf("%s should be valid", v)
		}
	}
	if ValidTillPractice("STRIP_TILLAGE") {
		t.Error("STRIP_TILLAGE is not an accepted override value")
	}
}

func TestOperationKeyDefaultsEmptyCrop(t *testing.T) {
	op := CanonicalOperation{FieldName: "North 40", GrowingCycle: 2023}
	key := op.Key()
	if key.CropType != "" || key.FieldName != "North 40" || key.GrowingCycle != 2023 {
		t.Fatalf("unexpected key: %+v", key)
	}
	crop := "Corn"
	op.CropType = &crop
	if op.Key().CropType != "Corn" {
		t.Fatal("crop type not carried into key")
	}
}
