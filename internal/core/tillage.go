package core

// TillageParams are the two inputs of the tillage practice decision for one
// field: the deepest recorded pass in inches and the number of passes
// implied by total tilled area over the reference acreage.
type TillageParams struct {
	TillDepth  *float64
	TillPasses *float64
}

// DeriveTillageParams computes TillageParams for a field from the merged
// operation table. A field with no tillage rows at all yields nil depth and
// nil passes, which the classifier reports as undeterminable.
func DeriveTillageParams(field string, ops []FieldOperation, referenceAcreage *float64) TillageParams {
	var areaSum *float64
	var maxRate *float64
	for _, op := range ops {
		if op.FieldName != field || op.OperationType != OperationTillage {
			continue
		}
		if op.AreaApplied != nil {
			if areaSum == nil {
				areaSum = fptr(0)
			}
			*areaSum += *op.AreaApplied
		}
		if op.AppliedRate != nil {
			if maxRate == nil || *op.AppliedRate > *maxRate {
				maxRate = fptr(*op.AppliedRate)
			}
		}
	}

	params := TillageParams{}
	// No recorded tilled area and no recorded depth means no tillage
	// records exist for the field at all.
	if areaSum != nil || maxRate != nil {
		params.TillDepth = maxRate
	}
	if areaSum != nil && referenceAcreage != nil && *referenceAcreage != 0 {
		params.TillPasses = fptr(*areaSum / *referenceAcreage)
	}
	return params
}

// ClassifyTillagePractice implements the STIR Lite methodology: tillage
// practice for the FD-CIC model from depth and pass count.
//
// CONVENTIONAL_TILLAGE: more than 3 passes or deeper than 3 inches.
// REDUCED_TILLAGE: 1 to 3 passes at a depth of up to 3 inches.
// NO_TILLAGE: less than 1 pass and no tillage depth.
//
// A missing side of the pair is treated as satisfied when the present side
// decides the class on its own. If both are missing, or the combination
// falls outside every band (for example depth 1.5 with no pass count and no
// tilled area), the practice is undeterminable and nil is returned.
func ClassifyTillagePractice(field string, params TillageParams, log Logger) *TillPractice {
	if log == nil {
		log = NopLogger()
	}
	depth, passes := params.TillDepth, params.TillPasses

	if depth == nil && passes == nil {
		log.Warn("unable to determine tillage practice", "field", field)
		return nil
	}

	switch {
	case depth != nil && passes != nil && (*depth > 3.0 || *passes > 3.0),
		passes == nil && *depth > 3.0,
		depth == nil && *passes > 3.0:
		p := TillConventional
		return &p

	case depth != nil && passes != nil &&
		*depth >= 0.0 && *depth <= 3.0 && *passes >= 1.0 && *passes <= 3.0,
		depth == nil && *passes >= 1.0 && *passes <= 3.0,
		passes == nil && *depth >= 0.0 && *depth <= 3.0:
		p := TillReduced
		return &p

	case depth != nil && passes != nil && *depth == 0 && *passes < 1.0:
		p := TillNone
		return &p

	default:
		log.Warn("tillage metrics outside every decision band",
			"field", field, "depth", deref(depth), "passes", deref(passes))
		return nil
	}
}
