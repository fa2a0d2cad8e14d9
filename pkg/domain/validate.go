package domain

import "fmt"

// ValidationError describes why a canonical operation failed its cross-field
// invariant. Validation is partial-failure: callers reject the offending row
// and continue with the rest of the batch.
type ValidationError struct {
	FieldName string
	Product   string
	Reason    string
}

func (e ValidationError) Error() string {
	if e.Product != "" {
		return fmt.Sprintf("operation for field %q product %q invalid: %s", e.FieldName, e.Product, e.Reason)
	}
	return fmt.Sprintf("operation for field %q invalid: %s", e.FieldName, e.Reason)
}

// ValidateOperation checks the cross-field invariant of a canonical
// operation: for yield and application rows, at least two of {area, rate,
// total} must be present so the third can be derived.
func ValidateOperation(op CanonicalOperation) error {
	if op.FieldName == "" {
		return ValidationError{Reason: "missing field name"}
	}
	switch op.OperationType {
	case OperationHarvest, OperationApplication, OperationPlanting:
		present := 0
		for _, v := range []*float64{op.AreaApplied, op.AppliedRate, op.AppliedTotal} {
			if v != nil {
				present++
			}
		}
		if op.OperationType == OperationHarvest && op.TotalDryYield != nil && op.AreaApplied != nil {
			// Harvest rows may carry their evidence as (area, dry yield).
			return nil
		}
		if present < 2 {
			product := ""
			if op.Product != nil {
				product = *op.Product
			}
			return ValidationError{
				FieldName: op.FieldName,
				Product:   product,
				Reason:    "fewer than two of area_applied/applied_rate/applied_total present",
			}
		}
	case OperationTillage, OperationFuel:
		// Tillage and fuel rows carry no rate triangle.
	default:
		return ValidationError{FieldName: op.FieldName, Reason: fmt.Sprintf("unknown operation type %q", op.OperationType)}
	}
	return nil
}

// ValidateBatch validates every operation and splits the batch into accepted
// rows and per-row validation errors, preserving input order.
func ValidateBatch(ops []CanonicalOperation) ([]CanonicalOperation, []error) {
	accepted := make([]CanonicalOperation, 0, len(ops))
	var rejects []error
	for _, op := range ops {
		if err := ValidateOperation(op); err != nil {
			rejects = append(rejects, err)
			continue
		}
		accepted = append(accepted, op)
	}
	return accepted, rejects
}
