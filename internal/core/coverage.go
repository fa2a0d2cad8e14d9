package core

// BuildCoverageReport derives practice coverage per (field, crop) from the
// practice's operation records: operated area summed per key divided by the
// field's resolved reference acreage. Cover-crop records keep their own crop
// attribution but coverage is always relative to the cash-crop acreage.
func BuildCoverageReport(ops []FieldOperation, acreage []AcreageRecord, log Logger) []CoverageRecord {
	if log == nil {
		log = NopLogger()
	}

	type key struct {
		field string
		crop  string
	}
	operated := make(map[key]float64)
	crops := make(map[key]*string)
	var order []key
	for _, op := range ops {
		crop := ""
		if op.CropType != nil {
			crop = *op.CropType
		}
		k := key{op.FieldName, crop}
		if _, ok := operated[k]; !ok {
			order = append(order, k)
			crops[k] = op.CropType
		}
		if op.AreaApplied != nil {
			operated[k] += *op.AreaApplied
		}
	}

	records := make([]CoverageRecord, 0, len(order))
	for _, k := range order {
		rec := CoverageRecord{
			FieldName:    k.field,
			CropType:     crops[k],
			AreaOperated: fptr(operated[k]),
		}
		if ref := maxResolvedAcreage(acreage, k.field); ref != nil {
			rec.ReferenceAcreage = ref
			if *ref != 0 {
				rec.AreaCoveragePercent = fptr(operated[k] / *ref)
			}
		} else {
			log.Warn("missing reference acreage for coverage calculation",
				"field", k.field)
		}
		records = append(records, rec)
	}
	return records
}

// maxResolvedAcreage returns the largest resolved acreage recorded for a
// field across crop rows, or nil when none resolved.
func maxResolvedAcreage(acreage []AcreageRecord, field string) *float64 {
	var best *float64
	for _, rec := range acreage {
		if rec.FieldName != field || rec.ResolvedAcreage == nil {
			continue
		}
		if best == nil || *rec.ResolvedAcreage > *best {
			best = rec.ResolvedAcreage
		}
	}
	return best
}

// ClassifyUse reports whether a practice (manure spreading, cover cropping)
// counts as used on a field: true iff any coverage record for the field
// covers more than half the reference acreage. An empty report means the
// practice was not used; these practices are opt-in and well documented
// when present.
func ClassifyUse(field string, coverage []CoverageRecord) bool {
	for _, rec := range coverage {
		if rec.FieldName != field {
			continue
		}
		if rec.AreaCoveragePercent != nil && *rec.AreaCoveragePercent > 0.50 {
			return true
		}
	}
	return false
}
