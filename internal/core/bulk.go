package core

import (
	"strings"

	"feedstockcore/pkg/domain"
)

// AdjustOperationType collapses a provider operation type onto the closed
// enum the bulk-upload consumer accepts. Unknown categories are logged and
// left empty rather than guessed.
func AdjustOperationType(opType OperationType, log Logger) domain.UploadOperationType {
	if log == nil {
		log = NopLogger()
	}
	switch opType {
	case OperationTillage:
		return domain.UploadTillage
	case OperationHarvest:
		return domain.UploadHarvest
	case OperationApplication, OperationPlanting:
		return domain.UploadApplyingProduct
	default:
		log.Warn("unknown operation type", "operation_type", string(opType))
		return ""
	}
}

// AdjustInputType normalizes a provider product type onto the upload input
// enum. Seed is recognized by its unit as well, since several providers tag
// seed products as generic inputs sold by the bag.
func AdjustInputType(productType *string, unit string, log Logger) *InputType {
	if log == nil {
		log = NopLogger()
	}
	if unit == "BAG" {
		t := InputSeed
		return &t
	}
	if productType == nil {
		return nil
	}
	switch strings.ToLower(*productType) {
	case "fertiliser", "fertilizer":
		t := InputFertilizer
		return &t
	case "eef":
		t := InputEEF
		return &t
	case "herbicide":
		t := InputHerbicide
		return &t
	case "insecticide":
		t := InputInsecticide
		return &t
	case "fungicide":
		t := InputFungicide
		return &t
	case "pesticide":
		t := InputPesticide
		return &t
	case "seed", "seeds":
		t := InputSeed
		return &t
	default:
		log.Warn("unknown input type", "input_type", *productType)
		return nil
	}
}

// Assembler maps the annotated overview and the decision matrix into the
// final bulk-upload record set.
type Assembler struct {
	Catalog   domain.ProductCatalog
	Converter domain.UnitConverter
	Log       Logger
}

// Assemble produces the bulk-upload rows for the verified, non-split,
// primary-crop fields of the overview, plus an exclusion record for every
// field dropped along the way. Given identical inputs the output rows and
// their IDs are identical across runs.
func (a Assembler) Assemble(
	overview []FieldOperation,
	matrix []DecisionMatrixRow,
	verified []VerifiedField,
) ([]BulkUploadRow, []ExclusionRecord) {
	log := a.Log
	if log == nil {
		log = NopLogger()
	}

	log.Info("mapping comprehensive inputs to bulk upload shape")
	rows := a.mapRows(overview, log)

	var exclusions []ExclusionRecord

	// Verified fields with no mapped operations at all.
	overviewFields := make(map[string]struct{})
	for _, op := range overview {
		overviewFields[op.FieldName] = struct{}{}
	}
	verifiedSet := make(map[string]struct{}, len(verified))
	for _, v := range verified {
		verifiedSet[v.FieldName] = struct{}{}
		if _, ok := overviewFields[v.FieldName]; !ok {
			exclusions = append(exclusions, ExclusionRecord{
				Case:      ExclusionMissingData,
				FieldName: v.FieldName,
			})
		}
	}

	log.Info("filtering out unverified and potential split fields")
	splitSet := make(map[string]struct{})
	for _, row := range matrix {
		if row.MajorCropType != nil && *row.MajorCropType == MajorCropSplitField {
			splitSet[row.FieldName] = struct{}{}
		}
	}
	matrixByField := collapseMatrixRows(matrix)

	kept := rows[:0]
	for _, row := range rows {
		if _, ok := verifiedSet[row.FieldName]; !ok {
			continue
		}
		if _, ok := splitSet[row.FieldName]; ok {
			continue
		}
		kept = append(kept, row)
	}
	rows = kept
	for _, v := range verified {
		if _, ok := splitSet[v.FieldName]; !ok {
			continue
		}
		if _, ok := overviewFields[v.FieldName]; !ok {
			continue
		}
		exclusions = append(exclusions, ExclusionRecord{
			Case:      ExclusionSplitField,
			FieldName: v.FieldName,
		})
	}

	rows = fillCropTypeFromSiblings(rows, log)
	log.Info("adding field practice decisions from decision matrix")
	rows = mergePracticeDecisions(rows, matrixByField)
	rows = a.addManureParams(rows)
	rows = adjustAfterMapping(rows)

	// Rows in pseudo-units describe coverage, not applied product.
	kept = rows[:0]
	for _, row := range rows {
		if containsString(AreaOnlyUnits, row.InputUnit) {
			continue
		}
		kept = append(kept, row)
	}
	rows = kept

	for i := range rows {
		rows[i].CropType = fillCropFromMatrix(rows[i].FieldName, rows[i].CropType, matrix)
		rows[i].ReferenceAcreage = fillRefAcreageFromMatrix(
			rows[i].FieldName, rows[i].ReferenceAcreage, rows[i].CropType, matrix)
	}

	// Final filter: no reference acreage, or not the primary crop.
	fieldsBefore := distinctFields(rows)
	kept = rows[:0]
	for _, row := range rows {
		if row.ReferenceAcreage == nil || row.CropType == nil || *row.CropType != CropCorn {
			continue
		}
		kept = append(kept, row)
	}
	rows = kept
	remaining := make(map[string]struct{})
	for _, row := range rows {
		remaining[row.FieldName] = struct{}{}
	}
	for _, field := range fieldsBefore {
		if _, ok := remaining[field]; ok {
			continue
		}
		rec := ExclusionRecord{Case: ExclusionRefAcreageNonCorn, FieldName: field}
		for _, op := range overview {
			if op.FieldName == field && op.ReferenceAcreage == nil && op.ExclusionReason != nil {
				rec.CropType = op.CropType
				rec.Reason = op.ExclusionReason
				break
			}
		}
		exclusions = append(exclusions, rec)
	}

	// Pesticide categories are excluded from upload under current policy.
	kept = rows[:0]
	for _, row := range rows {
		if row.InputType != nil && containsInputType(ExcludedInputTypes, *row.InputType) {
			continue
		}
		kept = append(kept, row)
	}
	rows = kept

	rows = AssignIDs(rows)
	return rows, exclusions
}

func (a Assembler) mapRows(overview []FieldOperation, log Logger) []BulkUploadRow {
	rows := make([]BulkUploadRow, 0, len(overview))
	for _, op := range overview {
		inputType := op.InputType
		if inputType == nil {
			inputType = AdjustInputType(op.ProductType, op.AppliedUnit, log)
		}
		row := BulkUploadRow{
			DataSource:        op.DataSource,
			FieldName:         op.FieldName,
			CropType:          op.CropType,
			GrowingCycle:      op.GrowingCycle,
			Yield:             op.TotalDryYield,
			MoistureAtHarvest: op.Moisture,
			OperationName:     op.OperationName,
			OperationType:     AdjustOperationType(op.OperationType, log),
			OperationStart:    op.OperationStart,
			OperationEnd:      op.OperationEnd,
			InputType:         inputType,
			InputRate:         op.AppliedTotal,
			InputUnit:         op.AppliedUnit,
			InputAcres:        op.AreaApplied,
			ReferenceAcreage:  op.ReferenceAcreage,
			GreenAmmonia:      domain.GreenAmmoniaDefault,
		}
		if op.Product != nil {
			row.InputName = *op.Product
		}
		rows = append(rows, row)
	}
	return rows
}

// fillCropTypeFromSiblings backfills a missing crop type from the field's
// other rows when the field carries exactly one distinct crop. Multi-crop
// fields cannot be trusted and are left unfilled; their untyped rows fall
// back to model defaults downstream.
func fillCropTypeFromSiblings(rows []BulkUploadRow, log Logger) []BulkUploadRow {
	crops := make(map[string][]string)
	for _, row := range rows {
		if row.CropType == nil {
			continue
		}
		if !containsString(crops[row.FieldName], *row.CropType) {
			crops[row.FieldName] = append(crops[row.FieldName], *row.CropType)
		}
	}
	for i := range rows {
		if rows[i].CropType != nil {
			continue
		}
		fieldCrops := crops[rows[i].FieldName]
		switch len(fieldCrops) {
		case 1:
			rows[i].CropType = sptr(fieldCrops[0])
		case 0:
			// handled later from the decision matrix
		default:
			log.Warn("multiple crop types found for field", "field", rows[i].FieldName)
		}
	}
	return rows
}

// collapseMatrixRows folds the decision matrix down to one decision per
// field. Boolean practice columns become true when any row says true; the
// categorical columns (nitrogen management, tillage practice) go
// undetermined when rows disagree; numeric columns take the first value
// present.
func collapseMatrixRows(matrix []DecisionMatrixRow) map[string]DecisionMatrixRow {
	byField := make(map[string]DecisionMatrixRow, len(matrix))
	for _, row := range matrix {
		folded, ok := byField[row.FieldName]
		if !ok {
			byField[row.FieldName] = row
			continue
		}
		folded.Verified = folded.Verified || row.Verified
		folded.EEF = folded.EEF || row.EEF
		folded.ManureUse = folded.ManureUse || row.ManureUse
		folded.CoverCropUse = folded.CoverCropUse || row.CoverCropUse
		if folded.NMgtPractice != row.NMgtPractice {
			folded.NMgtPractice = ""
		}
		if !samePractice(folded.TillPractice, row.TillPractice) {
			folded.TillPractice = nil
		}
		if folded.ReferenceAcreage == nil {
			folded.ReferenceAcreage = row.ReferenceAcreage
		}
		if folded.TillPasses == nil {
			folded.TillPasses = row.TillPasses
		}
		if folded.TillDepth == nil {
			folded.TillDepth = row.TillDepth
		}
		byField[row.FieldName] = folded
	}
	return byField
}

func samePractice(a, b *TillPractice) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// mergePracticeDecisions copies the per-field practice decisions onto every
// row of the field. A decision left undetermined in the matrix stays nil on
// the rows, except tillage practice, which defaults to conventional.
func mergePracticeDecisions(rows []BulkUploadRow, matrix map[string]DecisionMatrixRow) []BulkUploadRow {
	for i := range rows {
		decision, ok := matrix[rows[i].FieldName]
		if !ok {
			continue
		}
		if decision.ReferenceAcreage != nil {
			rows[i].ReferenceAcreage = decision.ReferenceAcreage
		}
		if decision.NMgtPractice != "" {
			practice := decision.NMgtPractice
			rows[i].NMgtPractice = &practice
		}
		rows[i].ManureUse = decision.ManureUse
		rows[i].CoverCropUse = decision.CoverCropUse
		rows[i].NumTillPasses = decision.TillPasses
		rows[i].TillDepth = decision.TillDepth
		if decision.TillPractice != nil {
			practice := *decision.TillPractice
			rows[i].TillPractice = &practice
		} else {
			practice := TillConventional
			rows[i].TillPractice = &practice
		}
	}
	return rows
}

// addManureParams fills the FD-CIC manure columns for rows whose input is a
// manure product in the breakdown table: the dry-matter equivalent in short
// tons via unit conversion and the product's density factor.
func (a Assembler) addManureParams(rows []BulkUploadRow) []BulkUploadRow {
	if a.Catalog == nil {
		return rows
	}
	for i := range rows {
		if rows[i].InputName == "" {
			continue
		}
		breakdown, ok := a.Catalog.Lookup(rows[i].InputName)
		if !ok || !strings.EqualFold(breakdown.ProductType, "manure") {
			continue
		}
		rows[i].ManureType = breakdown.ManureType
		if rows[i].InputRate == nil || breakdown.LbsPerGal == nil {
			continue
		}
		quantity := *rows[i].InputRate
		if a.Converter != nil {
			quantity, _ = a.Converter.Convert(quantity, rows[i].InputUnit)
		}
		rows[i].ManureDryQuantityEquiv = fptr(quantity * *breakdown.LbsPerGal / LbsPerShortTon)
	}
	return rows
}

func nameIndicatesBaling(operationName string) bool {
	name := strings.ToLower(operationName)
	for _, marker := range []string{"bale", "rake", "baling"} {
		if strings.Contains(name, marker) {
			return true
		}
	}
	return false
}

// adjustAfterMapping converts total dry yield into per-acre yield and
// erases yield for harvest rows that do not belong to the cash crop,
// including baling and raking passes.
func adjustAfterMapping(rows []BulkUploadRow) []BulkUploadRow {
	for i := range rows {
		if rows[i].OperationType == domain.UploadHarvest {
			baling := nameIndicatesBaling(rows[i].OperationName)
			secondary := rows[i].CropType == nil || !containsString(FDCICCrops, *rows[i].CropType)
			if (rows[i].Yield != nil || baling) && (secondary || baling) {
				rows[i].Yield = nil
			}
		}
		if rows[i].Yield != nil && rows[i].ReferenceAcreage != nil && *rows[i].ReferenceAcreage != 0 {
			rows[i].Yield = fptr(*rows[i].Yield / *rows[i].ReferenceAcreage)
		}
	}
	return rows
}

// fillCropFromMatrix backfills a still-missing crop type from the field's
// major crop type in the decision matrix.
func fillCropFromMatrix(field string, cropType *string, matrix []DecisionMatrixRow) *string {
	if cropType != nil {
		return cropType
	}
	var majors []string
	for _, row := range matrix {
		if row.FieldName != field || row.MajorCropType == nil {
			continue
		}
		if !containsString(majors, *row.MajorCropType) {
			majors = append(majors, *row.MajorCropType)
		}
	}
	if len(majors) == 1 {
		return sptr(majors[0])
	}
	for _, crop := range majors {
		if containsString(FDCICCrops, crop) {
			return sptr(crop)
		}
	}
	return nil
}

// fillRefAcreageFromMatrix backfills a still-missing reference acreage from
// the decision row whose major crop matches; an ambiguous figure stays nil.
func fillRefAcreageFromMatrix(field string, acreage *float64, cropType *string, matrix []DecisionMatrixRow) *float64 {
	if acreage != nil || cropType == nil {
		return acreage
	}
	var candidates []float64
	for _, row := range matrix {
		if row.FieldName != field || row.ReferenceAcreage == nil {
			continue
		}
		if row.MajorCropType == nil || *row.MajorCropType != *cropType {
			continue
		}
		found := false
		for _, c := range candidates {
			if c == *row.ReferenceAcreage {
				found = true
			}
		}
		if !found {
			candidates = append(candidates, *row.ReferenceAcreage)
		}
	}
	if len(candidates) == 1 {
		return fptr(candidates[0])
	}
	return nil
}

func distinctFields(rows []BulkUploadRow) []string {
	var fields []string
	seen := make(map[string]struct{})
	for _, row := range rows {
		if _, ok := seen[row.FieldName]; ok {
			continue
		}
		seen[row.FieldName] = struct{}{}
		fields = append(fields, row.FieldName)
	}
	return fields
}

func containsInputType(list []InputType, v InputType) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// AssignIDs numbers the surviving rows sequentially from 1.
func AssignIDs(rows []BulkUploadRow) []BulkUploadRow {
	for i := range rows {
		rows[i].ID = i + 1
	}
	return rows
}
