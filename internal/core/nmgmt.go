package core

import (
	"context"
	"sort"
	"time"

	"feedstockcore/pkg/domain"
)

// Amount4RThreshold is the lower NUE bound of the "right amount" band. This
// number may still change pending supporting documentation.
const Amount4RThreshold = 0.15

// FallCutoffTemperature is the sustained soil temperature in Fahrenheit
// below which fall nitrogen applications qualify for 4R timing.
const FallCutoffTemperature = 50.0

// MovingAverageDays is the window of the soil-temperature moving average.
const MovingAverageDays = 7

func timingDate(year, month int) time.Time {
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
}

func inWindow(start, end *time.Time, from, until time.Time) bool {
	if start == nil {
		return false
	}
	startIn := !start.Before(from) && start.Before(until)
	if end == nil {
		return startIn
	}
	endIn := !end.Before(from) && end.Before(until)
	return startIn && endIn
}

// CategorizeFertilizerTiming classifies one fertilizer application into the
// 4R timing windows of a growing cycle. Non-fertilizer rows stay
// unclassified. Applications between the Fall and Spring windows are flagged
// for manual review; anything outside all three windows is ineligible.
func CategorizeFertilizerTiming(inputType *InputType, start, end *time.Time, growingCycle int) TimingClass {
	if inputType == nil || *inputType != InputFertilizer {
		return ""
	}
	switch {
	case inWindow(start, end, timingDate(growingCycle-1, 9), timingDate(growingCycle, 1)):
		return TimingFall
	case inWindow(start, end, timingDate(growingCycle, 3), timingDate(growingCycle, 7)):
		return TimingSpring
	case inWindow(start, end, timingDate(growingCycle, 1), timingDate(growingCycle, 3)):
		return TimingFlag
	default:
		return TimingNo4R
	}
}

// AnnotateFertilizerTiming stamps the timing categorization onto every row
// of the overview table.
func AnnotateFertilizerTiming(ops []FieldOperation, growingCycle int) []FieldOperation {
	out := make([]FieldOperation, len(ops))
	for i, op := range ops {
		cycle := op.GrowingCycle
		if cycle == 0 {
			cycle = growingCycle
		}
		op.FertilizerTiming = CategorizeFertilizerTiming(
			op.InputType, op.OperationStart, op.OperationEnd, cycle)
		out[i] = op
	}
	return out
}

// FallCutoffDate computes the 4R fall-application cutoff from an hourly
// soil-temperature series: daily means, a seven-day moving average over
// them, and the first date the average drops below FallCutoffTemperature.
func FallCutoffDate(samples []domain.TemperatureSample) (time.Time, bool) {
	type day struct {
		date time.Time
		sum  float64
		n    int
	}
	byDate := make(map[time.Time]*day)
	for _, s := range samples {
		d := time.Date(s.Timestamp.Year(), s.Timestamp.Month(), s.Timestamp.Day(), 0, 0, 0, 0, time.UTC)
		entry, ok := byDate[d]
		if !ok {
			entry = &day{date: d}
			byDate[d] = entry
		}
		entry.sum += s.Temperature
		entry.n++
	}

	days := make([]*day, 0, len(byDate))
	for _, d := range byDate {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].date.Before(days[j].date) })

	for i := MovingAverageDays - 1; i < len(days); i++ {
		window := 0.0
		for j := i - MovingAverageDays + 1; j <= i; j++ {
			window += days[j].sum / float64(days[j].n)
		}
		if window/MovingAverageDays < FallCutoffTemperature {
			return days[i].date, true
		}
	}
	return time.Time{}, false
}

// TimingDecider resolves the field-level 4R timing decision. It needs the
// field centroid to verify fall applications against the soil-temperature
// cutoff.
type TimingDecider struct {
	GIS      domain.GISResolver
	SoilTemp domain.SoilTemperatureProvider
	Log      Logger
}

// Decide aggregates the per-application timing categorizations for a field.
// Fields with any ineligible or flagged application are ineligible. Fields
// with fall applications must additionally pass the soil-temperature gate:
// every fall application must start at or after the cutoff date. A missing
// centroid or an unavailable temperature series fails the field, since the
// cutoff cannot be verified.
func (d TimingDecider) Decide(ctx context.Context, field string, growingCycle int, overview []FieldOperation) TimingClass {
	log := d.Log
	if log == nil {
		log = NopLogger()
	}

	var fall []FieldOperation
	anyFertilizer := false
	flagged := false
	for _, op := range overview {
		if op.FieldName != field {
			continue
		}
		if op.InputType == nil || (*op.InputType != InputFertilizer && *op.InputType != InputEEF) {
			continue
		}
		anyFertilizer = true
		switch op.FertilizerTiming {
		case TimingNo4R:
			return TimingNo4R
		case TimingFlag:
			flagged = true
		case TimingFall:
			fall = append(fall, op)
		}
	}

	if !anyFertilizer {
		return TimingNo4R
	}
	if flagged {
		log.Warn("fertilizer operation flagged for manual review", "field", field)
		return TimingNo4R
	}
	if len(fall) == 0 {
		// Only spring applications remain.
		return Timing4RMet
	}

	if d.GIS == nil {
		log.Error("missing shapefile location, unable to determine 4R temperature cutoff",
			"field", field)
		return TimingNo4R
	}
	lat, long, ok := d.GIS.CentroidForField(field)
	if !ok {
		log.Error("missing shapefile location, unable to determine 4R temperature cutoff",
			"field", field)
		return TimingNo4R
	}

	start := time.Date(growingCycle-1, time.September, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(growingCycle-1, time.December, 31, 0, 0, 0, 0, time.UTC)
	samples, err := d.SoilTemp.HourlySeries(ctx, start, end, lat, long)
	if err != nil {
		log.Error("soil temperature fetch failed", "field", field, "error", err)
		return TimingNo4R
	}
	cutoff, ok := FallCutoffDate(samples)
	if !ok {
		log.Error("soil temperature never dropped below cutoff in window", "field", field)
		return TimingNo4R
	}

	for _, op := range fall {
		if op.OperationStart != nil && op.OperationStart.Before(cutoff) {
			return TimingNo4R
		}
	}
	return Timing4RMet
}

// FieldNPK is the per-field aggregate of applied nutrients in pounds.
type FieldNPK struct {
	FieldName string
	TotalN    float64
	TotalP    float64
	TotalK    float64
}

func nutrientMass(percent, lbsPerGal *float64, total float64) float64 {
	if percent == nil || lbsPerGal == nil {
		return 0
	}
	return *percent * *lbsPerGal * total
}

// AggregateNPK breaks the fertilizer applications of the overview down into
// total N, P2O5 and K2O mass per field using the product breakdown table.
// Products absent from the table contribute nothing.
func AggregateNPK(overview []FieldOperation, catalog domain.ProductCatalog, log Logger) map[string]FieldNPK {
	if log == nil {
		log = NopLogger()
	}

	type productKey struct {
		field   string
		product string
	}
	totals := make(map[productKey]float64)
	for _, op := range overview {
		if op.InputType == nil || *op.InputType != InputFertilizer {
			continue
		}
		if op.Product == nil || op.AppliedTotal == nil {
			continue
		}
		if !catalog.IsProduct(*op.Product) {
			continue
		}
		totals[productKey{op.FieldName, *op.Product}] += *op.AppliedTotal
	}
	if len(totals) == 0 {
		log.Warn("missing fertiliser product breakdowns or no chemical input products to break down")
		return nil
	}

	fields := make(map[string]FieldNPK)
	for key, total := range totals {
		breakdown, ok := catalog.Lookup(key.product)
		if !ok {
			continue
		}
		npk := fields[key.field]
		npk.FieldName = key.field
		npk.TotalN += nutrientMass(breakdown.PercentN, breakdown.LbsPerGal, total)
		npk.TotalP += nutrientMass(breakdown.PercentP2O5, breakdown.LbsPerGal, total)
		npk.TotalK += nutrientMass(breakdown.PercentK2O, breakdown.LbsPerGal, total)
		fields[key.field] = npk
	}
	return fields
}

// TotalDryYield sums harvested dry yield per field over the overview.
func TotalDryYield(field string, overview []FieldOperation) *float64 {
	var sum *float64
	for _, op := range overview {
		if op.FieldName != field || op.OperationType != OperationHarvest {
			continue
		}
		if op.TotalDryYield == nil {
			continue
		}
		if sum == nil {
			sum = fptr(0)
		}
		*sum += *op.TotalDryYield
	}
	return sum
}

// NitrogenUseEfficiency computes NUE, total nitrogen applied over total dry
// yield harvested. Either aggregate missing, or a zero yield, leaves NUE
// undefined.
func NitrogenUseEfficiency(totalN *float64, totalYield *float64) *float64 {
	if totalN == nil || totalYield == nil || *totalYield == 0 {
		return nil
	}
	return fptr(*totalN / *totalYield)
}

// ClassifyAmount applies the NUE band for the 4R "right amount" decision.
func ClassifyAmount(nue *float64) AmountClass {
	if nue != nil && Amount4RThreshold < *nue && *nue < 1.0 {
		return Amount4R
	}
	return AmountNo4R
}

// ClassifyEEF reports whether any product applied on the field is flagged
// as an enhanced-efficiency fertilizer in the product breakdown table.
func ClassifyEEF(field string, overview []FieldOperation) bool {
	for _, op := range overview {
		if op.FieldName == field && op.EEFProduct {
			return true
		}
	}
	return false
}

// CombineNMgtPractice folds the three nitrogen decisions into the final
// practice, preserving the 4R > EEF > business-as-usual precedence.
func CombineNMgtPractice(timing TimingClass, amount AmountClass, eef bool) NMgtPractice {
	if timing == Timing4RMet && amount == Amount4R {
		return NMgt4R
	}
	if eef {
		return NMgtEEF
	}
	return NMgtBAU
}

// AnnotateEEFProducts marks overview rows whose product carries the EEF
// flag in the breakdown table.
func AnnotateEEFProducts(overview []FieldOperation, catalog domain.ProductCatalog) []FieldOperation {
	out := make([]FieldOperation, len(overview))
	for i, op := range overview {
		if op.Product != nil {
			if breakdown, ok := catalog.Lookup(*op.Product); ok {
				op.EEFProduct = breakdown.EEFProduct
			}
		}
		out[i] = op
	}
	return out
}
