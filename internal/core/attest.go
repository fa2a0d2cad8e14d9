package core

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"feedstockcore/pkg/domain"
)

// Fixed product names the dry-amendment attestations synthesize rows for.
const (
	ProductLime     = "Lime"
	ProductPotash   = "Potash 60"
	ProductPureP2O5 = "Pure P2O5"
)

// AttestationEngine applies manually supplied correction records on top of
// the assembled bulk upload. Each attestation names a field and a strategy;
// strategies drop, rewrite or synthesize rows for that field and never touch
// other fields. Failed attestations are logged and skipped so one bad record
// cannot block the rest of the file.
type AttestationEngine struct {
	Catalog    domain.ProductCatalog
	CoverCrops domain.CoverCropTable
	Converter  domain.UnitConverter
	Log        Logger
}

// Apply runs every attestation against the bulk rows, field by field in the
// rows' first-seen order. Manual exclusions are returned as exclusion
// records. The surviving rows come back sorted by field and operation start
// with IDs reassigned from 1.
func (e AttestationEngine) Apply(rows []BulkUploadRow, attestations []Attestation) ([]BulkUploadRow, []ExclusionRecord) {
	log := e.Log
	if log == nil {
		log = NopLogger()
	}
	if len(attestations) == 0 {
		log.Info("no attestations available, skipping attestation overwrite")
		return rows, nil
	}

	isProduct := func(name string) bool {
		return e.Catalog != nil && e.Catalog.IsProduct(name)
	}

	var exclusions []ExclusionRecord
	for _, field := range distinctFields(rows) {
		matched := false
		for _, att := range attestations {
			if att.FieldName != field {
				continue
			}
			matched = true

			switch kind := att.KindOf(isProduct); kind {
			case domain.AttestLime:
				rows = e.applyDryAmendment(rows, field, att, ProductLime, log)
			case domain.AttestPotash:
				rows = e.applyDryAmendment(rows, field, att, ProductPotash, log)
			case domain.AttestPureP2O5:
				rows = e.applyDryAmendment(rows, field, att, ProductPureP2O5, log)
			case domain.AttestManure:
				rows = setFieldFlag(rows, field, func(r *BulkUploadRow) { r.ManureUse = true })
				rows = e.applyManure(rows, field, att, log)
			case domain.AttestCC:
				rows = setFieldFlag(rows, field, func(r *BulkUploadRow) { r.CoverCropUse = true })
				rows = e.applyCoverCrop(rows, field, att, log)
			case domain.AttestTill:
				rows = applyTillOverride(rows, field, att, log)
			case domain.AttestFert:
				rows = dropRows(rows, func(r BulkUploadRow) bool {
					return r.FieldName == field &&
						r.InputType != nil && *r.InputType == InputFertilizer &&
						r.InputName != ProductLime
				})
			case domain.AttestNMgt:
				rows = applyNMgtOverride(rows, field, att, log)
			case domain.AttestProduct:
				rows = e.applyProduct(rows, field, att, log)
			case domain.AttestExclude:
				rows = dropRows(rows, func(r BulkUploadRow) bool { return r.FieldName == field })
				exclusions = append(exclusions, ExclusionRecord{
					Case:      ExclusionCase(att.ExclusionCaseOf()),
					FieldName: field,
					Reason:    att.InputValue,
				})
			default:
				log.Error("unknown attestation type", "input_type", att.InputType, "field", field)
			}
		}
		if !matched {
			log.Info("no attestation entries for field", "field", field)
		}
	}

	SortBulkRows(rows)
	return AssignIDs(rows), exclusions
}

// separateUnitPerAcre splits a compound per-acre unit like "GAL/ac" or
// "LBS per acre" into the quantity unit and a per-acre marker. Plain units
// pass through unchanged; a compound whose denominator is not an acre
// spelling yields an empty unit, which fails the strategies' unit checks.
func separateUnitPerAcre(unit string) (string, bool) {
	trimmed := strings.TrimSpace(unit)
	var parts []string
	switch {
	case strings.Contains(trimmed, "/"):
		parts = strings.SplitN(trimmed, "/", 2)
	case strings.Contains(strings.ToLower(trimmed), " per "):
		idx := strings.Index(strings.ToLower(trimmed), " per ")
		parts = []string{trimmed[:idx], trimmed[idx+len(" per "):]}
	default:
		return trimmed, false
	}
	switch strings.ToLower(strings.TrimSpace(parts[1])) {
	case "ac", "acre", "acres":
		return strings.TrimSpace(parts[0]), true
	}
	return "", false
}

// attested quantities arrive as strings; blank or non-numeric text is
// treated as absent.
func parseQuantity(v *string) (float64, bool) {
	if v == nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(*v), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func firstFieldRow(rows []BulkUploadRow, field string) (BulkUploadRow, bool) {
	for _, r := range rows {
		if r.FieldName == field {
			return r, true
		}
	}
	return BulkUploadRow{}, false
}

func dropRows(rows []BulkUploadRow, drop func(BulkUploadRow) bool) []BulkUploadRow {
	kept := rows[:0]
	for _, r := range rows {
		if drop(r) {
			continue
		}
		kept = append(kept, r)
	}
	return kept
}

func setFieldFlag(rows []BulkUploadRow, field string, set func(*BulkUploadRow)) []BulkUploadRow {
	for i := range rows {
		if rows[i].FieldName == field {
			set(&rows[i])
		}
	}
	return rows
}

// synthesizeRow builds the artificial operation shared by every synthesizing
// strategy: attributed to Verity, typed as a product application on Corn,
// dated June 1 of the cycle when no start is given, inheriting the field's
// practice decisions from template.
func synthesizeRow(field, product string, att Attestation, template BulkUploadRow) BulkUploadRow {
	cycle := template.GrowingCycle
	if att.GrowingCycle != nil {
		cycle = *att.GrowingCycle
	}
	start := att.OperationStart
	if start == nil {
		t := time.Date(cycle, time.June, 1, 0, 0, 0, 0, time.UTC)
		start = &t
	}
	return BulkUploadRow{
		DataSource:       "Verity",
		FieldName:        field,
		CropType:         sptr(CropCorn),
		GrowingCycle:     cycle,
		OperationName:    product + " application",
		OperationType:    domain.UploadApplyingProduct,
		OperationStart:   start,
		InputName:        product,
		InputAcres:       att.AreaApplied,
		TillPractice:     template.TillPractice,
		GreenAmmonia:     template.GreenAmmonia,
		NMgtPractice:     template.NMgtPractice,
		ReferenceAcreage: template.ReferenceAcreage,
		ManureUse:        template.ManureUse,
		CoverCropUse:     template.CoverCropUse,
	}
}

// applyDryAmendment handles the lime, potash and pure P2O5 strategies:
// existing rows for the fixed product are dropped and replaced by one
// synthesized fertilizer application carrying the attested quantity.
func (e AttestationEngine) applyDryAmendment(rows []BulkUploadRow, field string, att Attestation, product string, log Logger) []BulkUploadRow {
	value, ok := parseQuantity(att.InputValue)
	if !ok {
		log.Error("missing input value for attestation", "field", field, "product", product)
		return rows
	}
	if att.InputUnit == nil {
		log.Error("missing input unit for attestation", "field", field, "product", product)
		return rows
	}
	unit, perAcre := separateUnitPerAcre(*att.InputUnit)
	if !containsString(DryUnits, unit) {
		log.Error("attested input unit must be a dry unit",
			"field", field, "product", product, "unit", *att.InputUnit)
		return rows
	}
	template, ok := firstFieldRow(rows, field)
	if !ok {
		log.Error("no bulk rows for attested field", "field", field, "product", product)
		return rows
	}

	rows = dropRows(rows, func(r BulkUploadRow) bool {
		return r.FieldName == field && r.InputName == product
	})

	op := synthesizeRow(field, product, att, template)
	fert := InputFertilizer
	op.InputType = &fert
	op.InputUnit = unit
	if perAcre && template.ReferenceAcreage != nil {
		value *= *template.ReferenceAcreage
	}
	op.InputRate = fptr(value)
	return append(rows, op)
}

// applyProduct synthesizes an application of any product known to the
// breakdown table. Existing rows for the product are dropped unless the
// attestation explicitly keeps them.
func (e AttestationEngine) applyProduct(rows []BulkUploadRow, field string, att Attestation, log Logger) []BulkUploadRow {
	product := strings.TrimSpace(att.InputType)
	breakdown, ok := e.Catalog.Lookup(product)
	if !ok {
		log.Error("missing product breakdown for attested product", "field", field, "product", product)
		return rows
	}
	value, ok := parseQuantity(att.InputValue)
	if !ok {
		log.Error("missing input value for attestation", "field", field, "product", product)
		return rows
	}
	if att.InputUnit == nil {
		log.Error("missing input unit for attestation", "field", field, "product", product)
		return rows
	}
	unit, perAcre := separateUnitPerAcre(*att.InputUnit)
	if !containsString(DryOrLiquidUnits, unit) {
		log.Error("attested input unit must be a dry or liquid unit",
			"field", field, "product", product, "unit", *att.InputUnit)
		return rows
	}
	template, ok := firstFieldRow(rows, field)
	if !ok {
		log.Error("no bulk rows for attested field", "field", field, "product", product)
		return rows
	}

	if att.DropExisting == nil || *att.DropExisting {
		rows = dropRows(rows, func(r BulkUploadRow) bool {
			return r.FieldName == field && r.InputName == product
		})
	}

	op := synthesizeRow(field, product, att, template)
	inputType := InputType(strings.ToUpper(breakdown.ProductType))
	op.InputType = &inputType
	op.InputUnit = unit
	if perAcre && template.ReferenceAcreage != nil {
		value *= *template.ReferenceAcreage
	}
	op.InputRate = fptr(value)
	return append(rows, op)
}

func applyTillOverride(rows []BulkUploadRow, field string, att Attestation, log Logger) []BulkUploadRow {
	if att.InputValue == nil {
		log.Error("missing input value for tillage attestation", "field", field)
		return rows
	}
	if !domain.ValidTillPractice(*att.InputValue) {
		log.Error("invalid tillage practice in attestation", "field", field, "value", *att.InputValue)
		return rows
	}
	practice := TillPractice(*att.InputValue)
	return setFieldFlag(rows, field, func(r *BulkUploadRow) { r.TillPractice = &practice })
}

// applyNMgtOverride sets the attested nitrogen-management practice on every
// field row. An existing 4R decision is the stronger benefit and is never
// downgraded.
func applyNMgtOverride(rows []BulkUploadRow, field string, att Attestation, log Logger) []BulkUploadRow {
	if att.InputValue == nil {
		log.Error("missing input value for n_mgt attestation", "field", field)
		return rows
	}
	practice := NMgtPractice(*att.InputValue)
	if practice != NMgt4R && practice != NMgtEEF {
		log.Error("invalid n_mgt practice in attestation", "field", field, "value", *att.InputValue)
		return rows
	}
	return setFieldFlag(rows, field, func(r *BulkUploadRow) {
		if r.NMgtPractice != nil && *r.NMgtPractice == NMgt4R {
			return
		}
		p := practice
		r.NMgtPractice = &p
	})
}

// applyManure synthesizes a manure application with the FD-CIC 2022
// parameter set: dry-matter equivalent, transportation distance and energy,
// and application energy, falling back to the model defaults for any
// quantity the attestation omits.
func (e AttestationEngine) applyManure(rows []BulkUploadRow, field string, att Attestation, log Logger) []BulkUploadRow {
	if att.InputProduct == nil {
		log.Error("missing input product for manure attestation", "field", field)
		return rows
	}
	product := *att.InputProduct
	breakdown, ok := e.Catalog.Lookup(product)
	if !ok || breakdown.LbsPerGal == nil {
		log.Error("missing product breakdown for manure product", "field", field, "product", product)
		return rows
	}
	value, ok := parseQuantity(att.InputValue)
	if !ok {
		log.Error("missing input value for manure attestation", "field", field)
		return rows
	}
	if att.InputUnit == nil {
		log.Error("missing input unit for manure attestation", "field", field)
		return rows
	}
	unit, perAcre := separateUnitPerAcre(*att.InputUnit)
	if !containsString(DryOrLiquidUnits, unit) {
		log.Error("attested input unit must be a dry or liquid unit",
			"field", field, "product", product, "unit", *att.InputUnit)
		return rows
	}
	template, ok := firstFieldRow(rows, field)
	if !ok {
		log.Error("no bulk rows for attested field", "field", field, "product", product)
		return rows
	}
	refAcreage := deref(template.ReferenceAcreage)

	if att.DropExisting == nil || *att.DropExisting {
		rows = dropRows(rows, func(r BulkUploadRow) bool {
			return r.FieldName == field && r.InputName == product
		})
	}

	op := synthesizeRow(field, "Manure", att, template)
	op.OperationName = "Manure application"
	op.InputName = product
	op.InputUnit = unit
	if perAcre && refAcreage != 0 {
		value *= refAcreage
	}
	op.InputRate = fptr(value)

	if containsString(ManureTypes, breakdown.ManureType) {
		op.ManureType = breakdown.ManureType
	} else {
		op.ManureType = "Other"
		log.Warn("manure type outside FD-CIC 2022 expected range",
			"field", field, "manure_type", breakdown.ManureType)
	}

	converted := value
	if e.Converter != nil {
		converted, _ = e.Converter.Convert(value, unit)
	}
	dryQuantity := converted * *breakdown.LbsPerGal / LbsPerShortTon
	op.ManureDryQuantityEquiv = fptr(dryQuantity)

	transDist := DefaultManureTransDist
	if att.ManureTransDist != nil {
		transDist = *att.ManureTransDist
	}
	op.ManureTransDist = fptr(transDist)

	// Transportation energy is normalized to Btu per ton of manure per mile,
	// assuming diesel fuel.
	if att.ManureTransEn != nil && att.ManureTransEnUnit != nil && dryQuantity != 0 && transDist != 0 {
		transEn := *att.ManureTransEn
		if e.Converter != nil {
			transEn, _ = e.Converter.Convert(transEn, *att.ManureTransEnUnit)
		}
		op.ManureTransEn = fptr(transEn * DieselBtuPerGal / dryQuantity / transDist)
	} else {
		op.ManureTransEn = fptr(DefaultManureTransEn)
	}

	if att.ManureApplEn != nil {
		op.ManureApplEn = fptr(*att.ManureApplEn * DieselBtuPerGal)
	} else {
		op.ManureApplEn = fptr(DefaultManureApplEn * refAcreage)
	}
	return append(rows, op)
}

// applyCoverCrop synthesizes a cover-crop termination with the FD-CIC 2022
// parameter set: herbicide active ingredient, estimated residue yield net of
// any harvested matter, application energy, and the crop's nitrogen factor.
func (e AttestationEngine) applyCoverCrop(rows []BulkUploadRow, field string, att Attestation, log Logger) []BulkUploadRow {
	if e.CoverCrops == nil {
		log.Error("cover-crop table unavailable", "field", field)
		return rows
	}
	if att.CCType == nil {
		log.Error("missing cover crop type", "field", field)
		return rows
	}
	entry, ok := e.CoverCrops.Lookup(*att.CCType)
	if !ok {
		log.Error("invalid cover crop type", "field", field, "cc_type", *att.CCType)
		return rows
	}
	if att.InputUnit == nil {
		log.Error("missing input unit for cover-crop attestation", "field", field)
		return rows
	}
	unit, perAcre := separateUnitPerAcre(*att.InputUnit)

	var herbBreakdown *ProductBreakdown
	if att.CCHerbProduct != nil {
		b, ok := e.Catalog.Lookup(*att.CCHerbProduct)
		if !ok {
			log.Error("missing product breakdown for cover-crop herbicide",
				"field", field, "product", *att.CCHerbProduct)
			return rows
		}
		herbBreakdown = &b
	}
	template, ok := firstFieldRow(rows, field)
	if !ok {
		log.Error("no bulk rows for attested field", "field", field)
		return rows
	}
	refAcreage := deref(template.ReferenceAcreage)

	op := synthesizeRow(field, "Cover crop", att, template)
	op.OperationName = "Cover crop application"
	op.InputName = ""
	if att.CCHerbProduct != nil {
		op.InputName = *att.CCHerbProduct
	}
	op.InputUnit = unit
	op.CCType = *att.CCType
	if value, ok := parseQuantity(att.InputValue); ok {
		if perAcre && refAcreage != 0 {
			value *= refAcreage
		}
		op.InputRate = fptr(value)
	}

	if herbBreakdown != nil {
		op.CCHerbicideProduct = herbBreakdown.ProductName
		if att.CCHerbAmount != nil && att.CCHerbUnit != nil && herbBreakdown.LbsAIPerGal != nil {
			amount := *att.CCHerbAmount
			if e.Converter != nil {
				amount, _ = e.Converter.Convert(amount, *att.CCHerbUnit)
			}
			op.CCHerbicideAI = fptr(amount * *herbBreakdown.LbsAIPerGal * GPerLbs)
		} else {
			log.Warn("missing or invalid herbicide amount, using FD-CIC 2022 default", "field", field)
			op.CCHerbicideAI = fptr(DefaultCCHerbicideAI * refAcreage)
		}
	}

	// Residue left on the field is the estimated total biomass minus any
	// harvested matter, given in short tons per acre.
	harvested := 0.0
	if att.CCYieldHarvested != nil {
		harvested = *att.CCYieldHarvested * refAcreage
	}
	op.CCYield = fptr(EstimateCoverCropYield(entry, refAcreage) - harvested)

	if att.CCApplEn != nil {
		op.CCApplEn = fptr(*att.CCApplEn * DieselBtuPerGal)
	} else {
		op.CCApplEn = fptr(DefaultCCApplEn * refAcreage)
	}
	op.CCNFactor = entry.NContentTotal
	return append(rows, op)
}

// EstimateCoverCropYield converts the table's per-hectare metric-ton yield
// into total dry short tons over the reference acreage.
func EstimateCoverCropYield(entry domain.CoverCropEntry, referenceAcreage float64) float64 {
	if entry.YieldMtPerHectare == nil {
		return 0
	}
	mtPerShortTon := KgPerLbs / 1000 * LbsPerShortTon
	return *entry.YieldMtPerHectare / AcrePerHectare / mtPerShortTon * referenceAcreage
}

// SortBulkRows orders rows by field name then operation start, rows without
// a start date first within their field.
func SortBulkRows(rows []BulkUploadRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].FieldName != rows[j].FieldName {
			return rows[i].FieldName < rows[j].FieldName
		}
		si, sj := rows[i].OperationStart, rows[j].OperationStart
		switch {
		case si == nil && sj == nil:
			return false
		case si == nil:
			return true
		case sj == nil:
			return false
		default:
			return si.Before(*sj)
		}
	})
}
