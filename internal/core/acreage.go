package core

import (
	"fmt"
	"math"
	"sort"

	"feedstockcore/pkg/domain"
)

// AcreageThreshold is the maximum relative deviation two acreage sources may
// show before they are considered in conflict.
const AcreageThreshold = 0.15

// ResolveReferenceAcreage decides the authoritative acreage for one field
// season from planted acres, harvested acres and the GIS polygon acreage.
// It returns the resolved figure, or nil with an exclusion reason whenever
// the sources conflict beyond AcreageThreshold. The resolver never averages
// conflicting figures.
func ResolveReferenceAcreage(planted, harvested, gis *float64) (*float64, *string) {
	var missing []string
	if planted == nil {
		missing = append(missing, "planted")
	}
	if harvested == nil {
		missing = append(missing, "harvested")
	}
	if gis == nil {
		missing = append(missing, "gis")
	}
	if len(missing) > 1 {
		return nil, sptr(fmt.Sprintf("Missing: %v", missing))
	}

	switch {
	case planted == nil:
		// Zero harvested acres with a usable polygon is a recording gap on
		// the harvest side, not evidence against the polygon.
		if *harvested == 0 {
			return gis, nil
		}
		if math.Abs((*harvested-*gis) / *gis) <= AcreageThreshold {
			return harvested, nil
		}
		return nil, sptr(fmt.Sprintf(
			"Missing: %v; harvested vs gis acres > %v --> potential split field",
			missing, AcreageThreshold))

	case harvested == nil:
		if math.Abs((*planted-*gis) / *gis) <= AcreageThreshold {
			return planted, nil
		}
		return nil, sptr(fmt.Sprintf(
			"Missing: %v; planted and gis acres > %v --> potentially wrong shp file or missing planting ops",
			missing, AcreageThreshold))

	case gis == nil:
		if math.Abs((*planted-*harvested) / *harvested) <= AcreageThreshold {
			return planted, nil
		}
		return nil, sptr(fmt.Sprintf(
			"Missing: %v; planted and harvested > %v --> potentially missing planting ops or double-counting of harvested acres",
			missing, AcreageThreshold))
	}

	plHr := (*planted - *harvested) / *harvested
	plGis := (*planted - *gis) / *gis
	hrGis := (*harvested - *gis) / *gis
	t := AcreageThreshold

	switch {
	case math.Abs(plHr) > t && math.Abs(plGis) > t && math.Abs(hrGis) > t:
		return nil, sptr(fmt.Sprintf(
			"Planted, harvested & gis acres > %v --> potential split field", t))
	case math.Abs(plHr) <= t && plGis < -t && hrGis < -t:
		return planted, nil
	case math.Abs(plHr) <= t && hrGis > t && plGis > t:
		return planted, nil
	case math.Abs(plGis) > t && math.Abs(hrGis) <= t && math.Abs(plHr) > t:
		return gis, nil
	case math.Abs(plGis) <= t && hrGis > t:
		return nil, sptr(fmt.Sprintf(
			"planted to harvested > %v and harvested > gis --> too many harvested acres", t))
	default:
		return planted, nil
	}
}

type acreageKey struct {
	field string
	crop  string
}

// aggregateArea sums AreaApplied over the given operations per (field, crop).
func aggregateArea(ops []FieldOperation) map[acreageKey]float64 {
	sums := make(map[acreageKey]float64)
	for _, op := range ops {
		if op.AreaApplied == nil || op.CropType == nil {
			continue
		}
		sums[acreageKey{op.FieldName, *op.CropType}] += *op.AreaApplied
	}
	return sums
}

// BuildReferenceAcreageReport assembles the reference-acreage report for one
// grower and growing cycle. Planted acres come from planting operations,
// harvested acres from grain harvest rows of model crops, and GIS acres from
// the resolver. Rows without a crop type attribution are dropped to avoid
// duplicate field rows from partially attributed sources.
func BuildReferenceAcreageReport(ops []FieldOperation, gis domain.GISResolver, log Logger) []AcreageRecord {
	if log == nil {
		log = NopLogger()
	}

	planted := aggregateArea(filterOps(ops, func(op FieldOperation) bool {
		return op.OperationType == OperationPlanting &&
			op.CropType != nil && containsString(FDCICCrops, *op.CropType)
	}))
	harvested := aggregateArea(filterOps(ops, func(op FieldOperation) bool {
		if op.OperationType != OperationHarvest {
			return false
		}
		if op.SubCropType != nil && *op.SubCropType != "Grain" {
			return false
		}
		return op.CropType != nil && containsString(FDCICCrops, *op.CropType)
	}))

	keys := make(map[acreageKey]struct{}, len(planted)+len(harvested))
	for k := range planted {
		keys[k] = struct{}{}
	}
	for k := range harvested {
		keys[k] = struct{}{}
	}

	records := make([]AcreageRecord, 0, len(keys))
	for key := range keys {
		rec := AcreageRecord{FieldName: key.field, CropType: key.crop}
		if v, ok := planted[key]; ok {
			rec.PlantedAcres = fptr(v)
			rec.PLAAvailable = true
		}
		if v, ok := harvested[key]; ok {
			rec.HarvestedAcres = fptr(v)
		}
		if gis != nil {
			if v, ok := gis.AcreageForField(key.field); ok {
				rec.GISAcres = fptr(v)
			}
		}
		rec.ResolvedAcreage, rec.ExclusionReason = ResolveReferenceAcreage(
			rec.PlantedAcres, rec.HarvestedAcres, rec.GISAcres)
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].FieldName != records[j].FieldName {
			return records[i].FieldName < records[j].FieldName
		}
		return records[i].CropType < records[j].CropType
	})
	return records
}

// SelectReferenceAcreage picks the reference acreage for one (field, crop)
// from the report. Rows with planted acres available take priority, the
// selection is restricted to the primary crop, and among candidates the
// greatest resolved figure wins: a lower denominator inflates every
// per-acre rate downstream, so crediting the largest documented figure is
// the conservative choice across disagreeing sources.
func SelectReferenceAcreage(fieldName, cropType string, report []AcreageRecord, log Logger) (*float64, *string) {
	if log == nil {
		log = NopLogger()
	}
	var resolved []AcreageRecord
	for _, rec := range report {
		if rec.FieldName != fieldName || rec.CropType != cropType {
			continue
		}
		if rec.ResolvedAcreage == nil {
			continue
		}
		resolved = append(resolved, rec)
	}
	if len(resolved) == 0 {
		log.Error("missing reference acreage entries",
			"field", fieldName, "crop", cropType)
		return nil, sptr("Missing reference acreage completely")
	}

	plaAvailable := false
	for _, rec := range resolved {
		if rec.PLAAvailable {
			plaAvailable = true
			break
		}
	}

	var best *AcreageRecord
	for i := range resolved {
		rec := &resolved[i]
		if rec.PLAAvailable != plaAvailable || rec.CropType != CropCorn {
			continue
		}
		if best == nil || *rec.ResolvedAcreage > *best.ResolvedAcreage {
			best = rec
		}
	}
	if best == nil {
		return nil, resolved[0].ExclusionReason
	}
	return best.ResolvedAcreage, best.ExclusionReason
}
