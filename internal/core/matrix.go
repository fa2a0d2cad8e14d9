package core

import (
	"context"

	"feedstockcore/pkg/domain"
)

// MatrixBuilder assembles the per-field decision matrix from the annotated
// overview table and the practice reports.
type MatrixBuilder struct {
	Catalog domain.ProductCatalog
	Timing  TimingDecider
	Log     Logger
}

// Build produces one DecisionMatrixRow per field appearing in the overview.
// The overview must already carry reference acreage, fertilizer timing and
// EEF annotations; practice reports may be empty, in which case their
// decisions default to false.
func (b MatrixBuilder) Build(
	ctx context.Context,
	grower string,
	growingCycle int,
	overview []FieldOperation,
	verified []VerifiedField,
	manure []CoverageRecord,
	coverCrop []CoverageRecord,
	splitFields []SplitFieldRecord,
) []DecisionMatrixRow {
	log := b.Log
	if log == nil {
		log = NopLogger()
	}
	log.Info("creating decision matrix", "grower", grower, "cycle", growingCycle)

	var fields []string
	seen := make(map[string]struct{})
	for _, op := range overview {
		if _, ok := seen[op.FieldName]; ok {
			continue
		}
		seen[op.FieldName] = struct{}{}
		fields = append(fields, op.FieldName)
	}

	verifiedSet := make(map[string]struct{}, len(verified))
	for _, v := range verified {
		verifiedSet[v.FieldName] = struct{}{}
	}
	splitSet := make(map[string]struct{}, len(splitFields))
	for _, s := range splitFields {
		splitSet[s.FieldName] = struct{}{}
	}

	npk := AggregateNPK(overview, b.Catalog, log)

	rows := make([]DecisionMatrixRow, 0, len(fields))
	for _, field := range fields {
		row := DecisionMatrixRow{FieldName: field}
		_, row.Verified = verifiedSet[field]

		row.CropType = fieldCropType(field, overview)
		row.ReferenceAcreage = fieldReferenceAcreage(field, overview)

		if agg, ok := npk[field]; ok {
			row.TotalNitrogen = fptr(agg.TotalN)
		}
		row.TotalDryYield = TotalDryYield(field, overview)
		row.NUE = NitrogenUseEfficiency(row.TotalNitrogen, row.TotalDryYield)
		row.Amount4R = ClassifyAmount(row.NUE)
		row.Timing4R = b.Timing.Decide(ctx, field, growingCycle, overview)
		row.EEF = ClassifyEEF(field, overview)
		row.NMgtPractice = CombineNMgtPractice(row.Timing4R, row.Amount4R, row.EEF)

		row.ManureUse = ClassifyUse(field, manure)
		row.CoverCropUse = ClassifyUse(field, coverCrop)

		till := DeriveTillageParams(field, overview, row.ReferenceAcreage)
		row.TillDepth = till.TillDepth
		row.TillPasses = till.TillPasses
		row.TillPractice = ClassifyTillagePractice(field, till, log)

		row.MajorCropType = majorCropType(field, overview, splitSet, row.CropType)

		rows = append(rows, row)
	}
	return rows
}

// fieldCropType returns the crop attribution for a field, preferring
// harvest rows over application rows.
func fieldCropType(field string, overview []FieldOperation) *string {
	var fallback *string
	for _, op := range overview {
		if op.FieldName != field || op.CropType == nil {
			continue
		}
		if op.OperationType == OperationHarvest {
			return op.CropType
		}
		if fallback == nil {
			fallback = op.CropType
		}
	}
	return fallback
}

// fieldReferenceAcreage returns the reference acreage annotated onto the
// field's overview rows.
func fieldReferenceAcreage(field string, overview []FieldOperation) *float64 {
	for _, op := range overview {
		if op.FieldName == field && op.ReferenceAcreage != nil {
			return op.ReferenceAcreage
		}
	}
	return nil
}

// majorCropType determines the field's dominant model crop. A field known
// to the split-field report, or spanning more than one model crop, is
// marked as a potential split field.
func majorCropType(field string, overview []FieldOperation, splitSet map[string]struct{}, cropType *string) *string {
	if len(splitSet) > 0 {
		if _, ok := splitSet[field]; ok {
			return sptr(MajorCropSplitField)
		}
		return cropType
	}

	var crops []string
	for _, op := range overview {
		if op.FieldName != field || op.CropType == nil {
			continue
		}
		if !containsString(FDCICCrops, *op.CropType) {
			continue
		}
		if !containsString(crops, *op.CropType) {
			crops = append(crops, *op.CropType)
		}
	}
	switch len(crops) {
	case 0:
		return nil
	case 1:
		return sptr(crops[0])
	default:
		return sptr(MajorCropSplitField)
	}
}
