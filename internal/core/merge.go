package core

import (
	"fmt"
	"sort"
	"strings"

	"feedstockcore/pkg/domain"
)

// SourceOperations is one provider's cleaned operation table, tagged with
// the provider name so merge policy can treat individual sources specially.
type SourceOperations struct {
	Name       string
	Operations []FieldOperation
}

// evidence sums the given measure over a subset of rows. The boolean is
// false when no row carries a value at all, which the merge rule treats the
// same as zero evidence but keeps distinct for the both-empty case.
func evidence(ops []FieldOperation, measure func(FieldOperation) *float64) (float64, bool) {
	sum := 0.0
	present := false
	for _, op := range ops {
		if v := measure(op); v != nil {
			sum += *v
			present = true
		}
	}
	return sum, present
}

func fieldNames(groups ...[]FieldOperation) []string {
	var names []string
	seen := make(map[string]struct{})
	for _, ops := range groups {
		for _, op := range ops {
			if _, ok := seen[op.FieldName]; ok {
				continue
			}
			seen[op.FieldName] = struct{}{}
			names = append(names, op.FieldName)
		}
	}
	return names
}

func productNames(groups ...[]FieldOperation) []string {
	var names []string
	seen := make(map[string]struct{})
	for _, ops := range groups {
		for _, op := range ops {
			name := ""
			if op.Product != nil {
				name = *op.Product
			}
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	return names
}

func cropNames(groups ...[]FieldOperation) []string {
	var names []string
	seen := make(map[string]struct{})
	for _, ops := range groups {
		for _, op := range ops {
			name := ""
			if op.CropType != nil {
				name = *op.CropType
			}
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	return names
}

func filterOps(ops []FieldOperation, keep func(FieldOperation) bool) []FieldOperation {
	var out []FieldOperation
	for _, op := range ops {
		if keep(op) {
			out = append(out, op)
		}
	}
	return out
}

// opSignature identifies a fully duplicated row within one source table.
func opSignature(op FieldOperation) string {
	var b strings.Builder
	b.WriteString(op.DataSource)
	b.WriteByte('|')
	b.WriteString(op.FieldName)
	b.WriteByte('|')
	b.WriteString(string(op.OperationType))
	b.WriteByte('|')
	if op.Product != nil {
		b.WriteString(*op.Product)
	}
	b.WriteByte('|')
	if op.CropType != nil {
		b.WriteString(*op.CropType)
	}
	b.WriteByte('|')
	if op.OperationStart != nil {
		b.WriteString(op.OperationStart.String())
	}
	b.WriteByte('|')
	fmt.Fprintf(&b, "%v|%v|%v|%v|%s",
		op.AreaApplied, op.AppliedRate, op.AppliedTotal, op.TotalDryYield, op.AppliedUnit)
	return b.String()
}

func dropDuplicates(ops []FieldOperation) []FieldOperation {
	seen := make(map[string]struct{}, len(ops))
	out := make([]FieldOperation, 0, len(ops))
	for _, op := range ops {
		sig := opSignature(op)
		if _, ok := seen[sig]; ok {
			continue
		}
		seen[sig] = struct{}{}
		out = append(out, op)
	}
	return out
}

// convertedEvidence normalizes the two aggregate quantities to a comparable
// unit when the sources report in different units. Unknown units pass
// through unchanged; the converter logs its own warning.
func convertedEvidence(aQty, bQty float64, aOps, bOps []FieldOperation, conv domain.UnitConverter) (float64, float64) {
	if conv == nil || len(aOps) == 0 || len(bOps) == 0 {
		return aQty, bQty
	}
	aUnit := aOps[0].AppliedUnit
	bUnit := bOps[0].AppliedUnit
	if aUnit == bUnit {
		return aQty, bQty
	}
	aConv, _ := conv.Convert(aQty, aUnit)
	bConv, _ := conv.Convert(bQty, bUnit)
	return aConv, bConv
}

// MergeApplicationPair reduces two application tables to one comprehensive
// table per (field, product): the side with evidence wins outright, keys
// with no evidence on either side are dropped, and when both sides carry
// evidence the strictly greater aggregate applied total wins. Ties keep the
// accumulator (source 1) side.
func MergeApplicationPair(primary, secondary []FieldOperation, conv domain.UnitConverter, log Logger) []FieldOperation {
	if log == nil {
		log = NopLogger()
	}
	isApplication := func(op FieldOperation) bool {
		return op.OperationType != OperationHarvest && op.OperationType != OperationTillage
	}
	primary = dropDuplicates(filterOps(primary, isApplication))
	secondary = dropDuplicates(filterOps(secondary, isApplication))

	var merged []FieldOperation
	for _, field := range fieldNames(primary, secondary) {
		byField := func(op FieldOperation) bool { return op.FieldName == field }
		pField := filterOps(primary, byField)
		sField := filterOps(secondary, byField)

		for _, product := range productNames(pField, sField) {
			byProduct := func(op FieldOperation) bool {
				name := ""
				if op.Product != nil {
					name = *op.Product
				}
				return name == product
			}
			pOps := filterOps(pField, byProduct)
			sOps := filterOps(sField, byProduct)

			appliedTotal := func(op FieldOperation) *float64 { return op.AppliedTotal }
			pQty, pPresent := evidence(pOps, appliedTotal)
			sQty, sPresent := evidence(sOps, appliedTotal)

			switch {
			case (!pPresent || pQty == 0) && sPresent && sQty > 0:
				merged = append(merged, sOps...)
			case (!sPresent || sQty == 0) && pPresent && pQty > 0:
				merged = append(merged, pOps...)
			case pQty == 0 && sQty == 0:
				// No operation occurred under this key.
			default:
				pConv, sConv := convertedEvidence(pQty, sQty, pOps, sOps, conv)
				if sConv > pConv {
					merged = append(merged, sOps...)
				} else {
					merged = append(merged, pOps...)
				}
			}
		}
	}
	return merged
}

// MergeHarvestPair applies the maximum-evidence rule to harvest rows keyed
// by (field, crop), comparing aggregate total dry yield.
func MergeHarvestPair(primary, secondary []FieldOperation) []FieldOperation {
	isHarvest := func(op FieldOperation) bool { return op.OperationType == OperationHarvest }
	primary = dropDuplicates(filterOps(primary, isHarvest))
	secondary = dropDuplicates(filterOps(secondary, isHarvest))

	var merged []FieldOperation
	for _, field := range fieldNames(primary, secondary) {
		byField := func(op FieldOperation) bool { return op.FieldName == field }
		pField := filterOps(primary, byField)
		sField := filterOps(secondary, byField)

		for _, crop := range cropNames(pField, sField) {
			byCrop := func(op FieldOperation) bool {
				name := ""
				if op.CropType != nil {
					name = *op.CropType
				}
				return name == crop
			}
			pOps := filterOps(pField, byCrop)
			sOps := filterOps(sField, byCrop)

			dryYield := func(op FieldOperation) *float64 { return op.TotalDryYield }
			pQty, pPresent := evidence(pOps, dryYield)
			sQty, sPresent := evidence(sOps, dryYield)

			switch {
			case (!pPresent || pQty == 0) && sPresent && sQty > 0:
				merged = append(merged, sOps...)
			case (!sPresent || sQty == 0) && pPresent && pQty > 0:
				merged = append(merged, pOps...)
			case pQty == 0 && sQty == 0:
			default:
				if sQty > pQty {
					merged = append(merged, sOps...)
				} else {
					merged = append(merged, pOps...)
				}
			}
		}
	}
	return merged
}

// MergeTillagePair applies the maximum-evidence rule to tillage rows keyed
// by field, comparing aggregate area applied.
func MergeTillagePair(primary, secondary []FieldOperation) []FieldOperation {
	isTillage := func(op FieldOperation) bool { return op.OperationType == OperationTillage }
	primary = dropDuplicates(filterOps(primary, isTillage))
	secondary = dropDuplicates(filterOps(secondary, isTillage))

	var merged []FieldOperation
	for _, field := range fieldNames(primary, secondary) {
		byField := func(op FieldOperation) bool { return op.FieldName == field }
		pOps := filterOps(primary, byField)
		sOps := filterOps(secondary, byField)

		area := func(op FieldOperation) *float64 { return op.AreaApplied }
		pQty, pPresent := evidence(pOps, area)
		sQty, sPresent := evidence(sOps, area)

		switch {
		case (!pPresent || pQty == 0) && sPresent && sQty > 0:
			merged = append(merged, sOps...)
		case (!sPresent || sQty == 0) && pPresent && pQty > 0:
			merged = append(merged, pOps...)
		case pQty == 0 && sQty == 0:
		default:
			if sQty > pQty {
				merged = append(merged, sOps...)
			} else {
				merged = append(merged, pOps...)
			}
		}
	}
	return merged
}

// MergeApplications folds the pairwise application merge over an arbitrary
// number of sources. Sources listed in appendOnly bypass the maximum-
// evidence comparison and are concatenated afterwards: their records are
// additions, never competing measurements.
func MergeApplications(sources []SourceOperations, appendOnly []string, conv domain.UnitConverter, log Logger) []FieldOperation {
	var merged []FieldOperation
	var appended []FieldOperation
	for _, src := range sources {
		if len(src.Operations) == 0 {
			continue
		}
		if containsString(appendOnly, src.Name) {
			appended = append(appended, src.Operations...)
			continue
		}
		merged = MergeApplicationPair(merged, src.Operations, conv, log)
	}
	return append(merged, appended...)
}

// MergeHarvest folds the pairwise harvest merge over all sources.
func MergeHarvest(sources []SourceOperations) []FieldOperation {
	var merged []FieldOperation
	for _, src := range sources {
		merged = MergeHarvestPair(merged, src.Operations)
	}
	return merged
}

// MergeTillage folds the pairwise tillage merge over all sources.
func MergeTillage(sources []SourceOperations) []FieldOperation {
	var merged []FieldOperation
	for _, src := range sources {
		merged = MergeTillagePair(merged, src.Operations)
	}
	return merged
}

// ComprehensiveInputs builds the cross-source comprehensive operation table:
// applications, tillage and harvest merged independently under the
// maximum-evidence rule, concatenated, and sorted by field and start date.
func ComprehensiveInputs(sources []SourceOperations, appendOnly []string, conv domain.UnitConverter, log Logger) []FieldOperation {
	if log == nil {
		log = NopLogger()
	}
	if len(sources) == 0 {
		log.Warn("no cleaned source files available for comprehensive merge")
		return nil
	}
	log.Info("collecting max total input operations for planting and applications")
	apps := MergeApplications(sources, appendOnly, conv, log)
	log.Info("collecting max total input operations for tillage")
	till := MergeTillage(sources)
	log.Info("collecting max total input operations for harvest")
	harvest := MergeHarvest(sources)

	inputs := make([]FieldOperation, 0, len(apps)+len(till)+len(harvest))
	inputs = append(inputs, apps...)
	inputs = append(inputs, till...)
	inputs = append(inputs, harvest...)

	SortOperations(inputs)
	return inputs
}

// SortOperations orders rows by field name, then operation start (rows
// without a start date sort first within their field), preserving input
// order otherwise so downstream ID assignment stays deterministic.
func SortOperations(ops []FieldOperation) {
	sort.SliceStable(ops, func(i, j int) bool {
		if ops[i].FieldName != ops[j].FieldName {
			return ops[i].FieldName < ops[j].FieldName
		}
		si, sj := ops[i].OperationStart, ops[j].OperationStart
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
