package domain

import (
	"strings"
	"testing"
)

func f(v float64) *float64 { return &v }
func s(v string) *string   { return &v }

func TestValidateOperationEvidencePairs(t *testing.T) {
	base := CanonicalOperation{FieldName: "North 40", OperationType: OperationApplication, Product: s("UAN 32")}

	cases := []struct {
		name    string
		mutate  func(*CanonicalOperation)
		wantErr bool
	}{
		{"area and total", func(op *CanonicalOperation) { op.AreaApplied = f(40); op.AppliedTotal = f(1200) }, false},
		{"area and rate", func(op *CanonicalOperation) { op.AreaApplied = f(40); op.AppliedRate = f(30) }, false},
		{"rate and total", func(op *CanonicalOperation) { op.AppliedRate = f(30); op.AppliedTotal = f(1200) }, false},
		{"total only", func(op *CanonicalOperation) { op.AppliedTotal = f(1200) }, true},
		{"nothing", func(*CanonicalOperation) {}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			op := base
			tc.mutate(&op)
			err := ValidateOperation(op)
			if tc.wantErr && err == nil {
				t.Fatalf("expected validation error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateOperationHarvestYieldEvidence(t *testing.T) {
	op := CanonicalOperation{
		FieldName:     "South 80",
		OperationType: OperationHarvest,
		AreaApplied:   f(80),
		TotalDryYield: f(14000),
	}
	if err := ValidateOperation(op); err != nil {
		t.Fatalf("harvest row with area and dry yield should validate: %v", err)
	}
}

func TestValidateOperationTillageSkipsTriangle(t *testing.T) {
	op := CanonicalOperation{FieldName: "South 80", OperationType: OperationTillage}
	if err := ValidateOperation(op); err != nil {
		t.Fatalf("tillage rows carry no rate triangle: %v", err)
	}
}

func TestValidateOperationUnknownType(t *testing.T) {
	err := ValidateOperation(CanonicalOperation{FieldName: "X", OperationType: "Scouting"})
	if err == nil {
		t.Fatal("expected error for unknown operation type")
	}
}

func TestValidateBatchPartialFailure(t *testing.T) {
	ops := []CanonicalOperation{
		{FieldName: "A", OperationType: OperationApplication, AreaApplied: f(10), AppliedTotal: f(100)},
		{FieldName: "B", OperationType: OperationApplication, Product: s("MAP")},
		{FieldName: "C", OperationType: OperationTillage},
	}
	accepted, rejects := ValidateBatch(ops)
	if len(accepted) != 2 {
		t.Fatalf("expected 2 accepted rows, got %d", len(accepted))
	}
	if len(rejects) != 1 {
		t.Fatalf("expected 1 reject, got %d", len(rejects))
	}
	if !strings.Contains(rejects[0].Error(), "MAP") {
		t.Fatalf("reject should identify offending product: %v", rejects[0])
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := ValidationError{FieldName: "North 40", Product: "Urea", Reason: "test"}
	msg := err.Error()
	if !strings.Contains(msg, "North 40") || !strings.Contains(msg, "Urea") {
		t.Fatalf("message should name field and product: %s", msg)
	}
}
