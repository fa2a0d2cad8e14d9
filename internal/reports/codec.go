// Package reports persists pipeline artifacts as CSV payloads and exposes
// them through the domain report store contract.
package reports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"feedstockcore/pkg/domain"
)

func fstr(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}

func parseFloatPtr(s string) (*float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func sstr(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func parseStringPtr(s string) *string {
	if s == "" {
		return nil
	}
	v := s
	return &v
}

func tstr(v *time.Time) string {
	if v == nil {
		return ""
	}
	return v.Format(time.RFC3339)
}

func parseTimePtr(s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(s))
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func bstr(v bool) string {
	return strconv.FormatBool(v)
}

func parseBool(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "true")
}

func istr(v int) string { return strconv.Itoa(v) }

func parseInt(s string) (int, error) {
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	return strconv.Atoi(strings.TrimSpace(s))
}

func parseIntPtr(s string) (*int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func iptr(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func bptr(v *bool) string {
	if v == nil {
		return ""
	}
	return strconv.FormatBool(*v)
}

func parseBoolPtr(s string) *bool {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	v := strings.EqualFold(strings.TrimSpace(s), "true")
	return &v
}

// marshal renders a header plus n rows produced by row into CSV bytes.
func marshal(header []string, n int, row func(i int) []string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		if err := w.Write(row(i)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// unmarshal parses CSV bytes, validates the header row and returns the data
// rows. Empty payloads yield no rows.
func unmarshal(data []byte, header []string) ([][]string, error) {
	if len(data) == 0 {
		return nil, nil
	}
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = len(header)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	for i, col := range records[0] {
		if col != header[i] {
			return nil, fmt.Errorf("unexpected column %q at position %d, want %q", col, i, header[i])
		}
	}
	return records[1:], nil
}

var operationsHeader = []string{
	"client", "farm_name", "field_name", "operation_type", "operation_name",
	"crop_type", "sub_crop_type", "product", "product_type",
	"operation_start", "operation_end", "area_applied", "applied_rate",
	"applied_total", "applied_unit", "total_dry_yield", "moisture",
	"growing_cycle", "data_source", "input_type", "reference_acreage",
	"exclusion_reason", "fertilizer_timing", "eef_product",
}

// EncodeOperations renders a field-operation table to CSV.
func EncodeOperations(ops []domain.FieldOperation) ([]byte, error) {
	return marshal(operationsHeader, len(ops), func(i int) []string {
		op := ops[i]
		inputType := ""
		if op.InputType != nil {
			inputType = string(*op.InputType)
		}
		return []string{
			op.Client, op.FarmName, op.FieldName, string(op.OperationType), op.OperationName,
			sstr(op.CropType), sstr(op.SubCropType), sstr(op.Product), sstr(op.ProductType),
			tstr(op.OperationStart), tstr(op.OperationEnd), fstr(op.AreaApplied), fstr(op.AppliedRate),
			fstr(op.AppliedTotal), op.AppliedUnit, fstr(op.TotalDryYield), fstr(op.Moisture),
			istr(op.GrowingCycle), op.DataSource, inputType, fstr(op.ReferenceAcreage),
			sstr(op.ExclusionReason), string(op.FertilizerTiming), bstr(op.EEFProduct),
		}
	})
}

// DecodeOperations parses a CSV field-operation table.
func DecodeOperations(data []byte) ([]domain.FieldOperation, error) {
	rows, err := unmarshal(data, operationsHeader)
	if err != nil {
		return nil, err
	}
	var ops []domain.FieldOperation
	for _, row := range rows {
		var op domain.FieldOperation
		op.Client = row[0]
		op.FarmName = row[1]
		op.FieldName = row[2]
		op.OperationType = domain.OperationType(row[3])
		op.OperationName = row[4]
		op.CropType = parseStringPtr(row[5])
		op.SubCropType = parseStringPtr(row[6])
		op.Product = parseStringPtr(row[7])
		op.ProductType = parseStringPtr(row[8])
		if op.OperationStart, err = parseTimePtr(row[9]); err != nil {
			return nil, fmt.Errorf("operation_start: %w", err)
		}
		if op.OperationEnd, err = parseTimePtr(row[10]); err != nil {
			return nil, fmt.Errorf("operation_end: %w", err)
		}
		if op.AreaApplied, err = parseFloatPtr(row[11]); err != nil {
			return nil, fmt.Errorf("area_applied: %w", err)
		}
		if op.AppliedRate, err = parseFloatPtr(row[12]); err != nil {
			return nil, fmt.Errorf("applied_rate: %w", err)
		}
		if op.AppliedTotal, err = parseFloatPtr(row[13]); err != nil {
			return nil, fmt.Errorf("applied_total: %w", err)
		}
		op.AppliedUnit = row[14]
		if op.TotalDryYield, err = parseFloatPtr(row[15]); err != nil {
			return nil, fmt.Errorf("total_dry_yield: %w", err)
		}
		if op.Moisture, err = parseFloatPtr(row[16]); err != nil {
			return nil, fmt.Errorf("moisture: %w", err)
		}
		if op.GrowingCycle, err = parseInt(row[17]); err != nil {
			return nil, fmt.Errorf("growing_cycle: %w", err)
		}
		op.DataSource = row[18]
		if row[19] != "" {
			t := domain.InputType(row[19])
			op.InputType = &t
		}
		if op.ReferenceAcreage, err = parseFloatPtr(row[20]); err != nil {
			return nil, fmt.Errorf("reference_acreage: %w", err)
		}
		op.ExclusionReason = parseStringPtr(row[21])
		op.FertilizerTiming = domain.TimingClass(row[22])
		op.EEFProduct = parseBool(row[23])
		ops = append(ops, op)
	}
	return ops, nil
}

var acreageHeader = []string{
	"field_name", "crop_type", "planted_acres", "harvested_acres", "gis_acres",
	"pla_available", "resolved_acreage", "exclusion_reason",
}

// EncodeAcreage renders the reference-acreage report to CSV.
func EncodeAcreage(records []domain.AcreageRecord) ([]byte, error) {
	return marshal(acreageHeader, len(records), func(i int) []string {
		r := records[i]
		return []string{
			r.FieldName, r.CropType, fstr(r.PlantedAcres), fstr(r.HarvestedAcres), fstr(r.GISAcres),
			bstr(r.PLAAvailable), fstr(r.ResolvedAcreage), sstr(r.ExclusionReason),
		}
	})
}

// DecodeAcreage parses the reference-acreage report.
func DecodeAcreage(data []byte) ([]domain.AcreageRecord, error) {
	rows, err := unmarshal(data, acreageHeader)
	if err != nil {
		return nil, err
	}
	var records []domain.AcreageRecord
	for _, row := range rows {
		var r domain.AcreageRecord
		r.FieldName = row[0]
		r.CropType = row[1]
		if r.PlantedAcres, err = parseFloatPtr(row[2]); err != nil {
			return nil, fmt.Errorf("planted_acres: %w", err)
		}
		if r.HarvestedAcres, err = parseFloatPtr(row[3]); err != nil {
			return nil, fmt.Errorf("harvested_acres: %w", err)
		}
		if r.GISAcres, err = parseFloatPtr(row[4]); err != nil {
			return nil, fmt.Errorf("gis_acres: %w", err)
		}
		r.PLAAvailable = parseBool(row[5])
		if r.ResolvedAcreage, err = parseFloatPtr(row[6]); err != nil {
			return nil, fmt.Errorf("resolved_acreage: %w", err)
		}
		r.ExclusionReason = parseStringPtr(row[7])
		records = append(records, r)
	}
	return records, nil
}

var coverageHeader = []string{
	"field_name", "crop_type", "area_operated", "reference_acreage", "area_coverage_percent",
}

// EncodeCoverage renders a practice coverage report to CSV.
func EncodeCoverage(records []domain.CoverageRecord) ([]byte, error) {
	return marshal(coverageHeader, len(records), func(i int) []string {
		r := records[i]
		return []string{
			r.FieldName, sstr(r.CropType), fstr(r.AreaOperated),
			fstr(r.ReferenceAcreage), fstr(r.AreaCoveragePercent),
		}
	})
}

// DecodeCoverage parses a practice coverage report.
func DecodeCoverage(data []byte) ([]domain.CoverageRecord, error) {
	rows, err := unmarshal(data, coverageHeader)
	if err != nil {
		return nil, err
	}
	var records []domain.CoverageRecord
	for _, row := range rows {
		var r domain.CoverageRecord
		r.FieldName = row[0]
		r.CropType = parseStringPtr(row[1])
		if r.AreaOperated, err = parseFloatPtr(row[2]); err != nil {
			return nil, fmt.Errorf("area_operated: %w", err)
		}
		if r.ReferenceAcreage, err = parseFloatPtr(row[3]); err != nil {
			return nil, fmt.Errorf("reference_acreage: %w", err)
		}
		if r.AreaCoveragePercent, err = parseFloatPtr(row[4]); err != nil {
			return nil, fmt.Errorf("area_coverage_percent: %w", err)
		}
		records = append(records, r)
	}
	return records, nil
}

var locationsHeader = []string{
	"field_name", "farm_name", "acreage_calc", "centroid_lat", "centroid_long",
}

// EncodeLocations renders the shapefile overview to CSV.
func EncodeLocations(records []domain.FieldLocation) ([]byte, error) {
	return marshal(locationsHeader, len(records), func(i int) []string {
		r := records[i]
		return []string{
			r.FieldName, r.FarmName, fstr(r.AcreageCalc), fstr(r.CentroidLat), fstr(r.CentroidLong),
		}
	})
}

// DecodeLocations parses the shapefile overview.
func DecodeLocations(data []byte) ([]domain.FieldLocation, error) {
	rows, err := unmarshal(data, locationsHeader)
	if err != nil {
		return nil, err
	}
	var records []domain.FieldLocation
	for _, row := range rows {
		var r domain.FieldLocation
		r.FieldName = row[0]
		r.FarmName = row[1]
		if r.AcreageCalc, err = parseFloatPtr(row[2]); err != nil {
			return nil, fmt.Errorf("acreage_calc: %w", err)
		}
		if r.CentroidLat, err = parseFloatPtr(row[3]); err != nil {
			return nil, fmt.Errorf("centroid_lat: %w", err)
		}
		if r.CentroidLong, err = parseFloatPtr(row[4]); err != nil {
			return nil, fmt.Errorf("centroid_long: %w", err)
		}
		records = append(records, r)
	}
	return records, nil
}

var verifiedHeader = []string{"field_name", "area_applied"}

// EncodeVerified renders the verified-fields report to CSV.
func EncodeVerified(fields []domain.VerifiedField) ([]byte, error) {
	return marshal(verifiedHeader, len(fields), func(i int) []string {
		return []string{fields[i].FieldName, fstr(fields[i].AreaApplied)}
	})
}

// DecodeVerified parses the verified-fields report.
func DecodeVerified(data []byte) ([]domain.VerifiedField, error) {
	rows, err := unmarshal(data, verifiedHeader)
	if err != nil {
		return nil, err
	}
	var fields []domain.VerifiedField
	for _, row := range rows {
		var f domain.VerifiedField
		f.FieldName = row[0]
		if f.AreaApplied, err = parseFloatPtr(row[1]); err != nil {
			return nil, fmt.Errorf("area_applied: %w", err)
		}
		fields = append(fields, f)
	}
	return fields, nil
}

var splitFieldsHeader = []string{"field_name", "reason"}

// EncodeSplitFields renders the split-field report to CSV.
func EncodeSplitFields(records []domain.SplitFieldRecord) ([]byte, error) {
	return marshal(splitFieldsHeader, len(records), func(i int) []string {
		return []string{records[i].FieldName, records[i].Reason}
	})
}

// DecodeSplitFields parses the split-field report.
func DecodeSplitFields(data []byte) ([]domain.SplitFieldRecord, error) {
	rows, err := unmarshal(data, splitFieldsHeader)
	if err != nil {
		return nil, err
	}
	var records []domain.SplitFieldRecord
	for _, row := range rows {
		records = append(records, domain.SplitFieldRecord{FieldName: row[0], Reason: row[1]})
	}
	return records, nil
}

var attestationsHeader = []string{
	"field_name", "input_type", "input_value", "input_unit", "input_product",
	"area_applied", "operation_start", "growing_cycle", "drop_existing",
	"manure_trans_dist", "manure_trans_en", "manure_trans_en_unit", "manure_appl_en",
	"cc_type", "cc_herb_product", "cc_herb_amount", "cc_herb_unit",
	"cc_yield_harvested", "cc_appl_en",
}

// EncodeAttestations renders the attestation overwrite table to CSV.
func EncodeAttestations(attestations []domain.Attestation) ([]byte, error) {
	return marshal(attestationsHeader, len(attestations), func(i int) []string {
		a := attestations[i]
		return []string{
			a.FieldName, a.InputType, sstr(a.InputValue), sstr(a.InputUnit), sstr(a.InputProduct),
			fstr(a.AreaApplied), tstr(a.OperationStart), iptr(a.GrowingCycle), bptr(a.DropExisting),
			fstr(a.ManureTransDist), fstr(a.ManureTransEn), sstr(a.ManureTransEnUnit), fstr(a.ManureApplEn),
			sstr(a.CCType), sstr(a.CCHerbProduct), fstr(a.CCHerbAmount), sstr(a.CCHerbUnit),
			fstr(a.CCYieldHarvested), fstr(a.CCApplEn),
		}
	})
}

// DecodeAttestations parses the attestation overwrite table.
func DecodeAttestations(data []byte) ([]domain.Attestation, error) {
	rows, err := unmarshal(data, attestationsHeader)
	if err != nil {
		return nil, err
	}
	var attestations []domain.Attestation
	for _, row := range rows {
		var a domain.Attestation
		a.FieldName = row[0]
		a.InputType = row[1]
		a.InputValue = parseStringPtr(row[2])
		a.InputUnit = parseStringPtr(row[3])
		a.InputProduct = parseStringPtr(row[4])
		if a.AreaApplied, err = parseFloatPtr(row[5]); err != nil {
			return nil, fmt.Errorf("area_applied: %w", err)
		}
		if a.OperationStart, err = parseTimePtr(row[6]); err != nil {
			return nil, fmt.Errorf("operation_start: %w", err)
		}
		if a.GrowingCycle, err = parseIntPtr(row[7]); err != nil {
			return nil, fmt.Errorf("growing_cycle: %w", err)
		}
		a.DropExisting = parseBoolPtr(row[8])
		if a.ManureTransDist, err = parseFloatPtr(row[9]); err != nil {
			return nil, fmt.Errorf("manure_trans_dist: %w", err)
		}
		if a.ManureTransEn, err = parseFloatPtr(row[10]); err != nil {
			return nil, fmt.Errorf("manure_trans_en: %w", err)
		}
		a.ManureTransEnUnit = parseStringPtr(row[11])
		if a.ManureApplEn, err = parseFloatPtr(row[12]); err != nil {
			return nil, fmt.Errorf("manure_appl_en: %w", err)
		}
		a.CCType = parseStringPtr(row[13])
		a.CCHerbProduct = parseStringPtr(row[14])
		if a.CCHerbAmount, err = parseFloatPtr(row[15]); err != nil {
			return nil, fmt.Errorf("cc_herb_amount: %w", err)
		}
		a.CCHerbUnit = parseStringPtr(row[16])
		if a.CCYieldHarvested, err = parseFloatPtr(row[17]); err != nil {
			return nil, fmt.Errorf("cc_yield_harvested: %w", err)
		}
		if a.CCApplEn, err = parseFloatPtr(row[18]); err != nil {
			return nil, fmt.Errorf("cc_appl_en: %w", err)
		}
		attestations = append(attestations, a)
	}
	return attestations, nil
}

var matrixHeader = []string{
	"field_name", "verified", "crop_type", "total_dry_yield", "total_nitrogen",
	"nue", "timing_4r", "amount_4r", "eef", "n_mgt_practice", "manure_use",
	"cover_crop_use", "till_depth", "till_passes", "till_practice",
	"major_crop_type", "reference_acreage",
}

// EncodeDecisionMatrix renders the decision matrix to CSV.
func EncodeDecisionMatrix(rows []domain.DecisionMatrixRow) ([]byte, error) {
	return marshal(matrixHeader, len(rows), func(i int) []string {
		r := rows[i]
		till := ""
		if r.TillPractice != nil {
			till = string(*r.TillPractice)
		}
		return []string{
			r.FieldName, bstr(r.Verified), sstr(r.CropType), fstr(r.TotalDryYield), fstr(r.TotalNitrogen),
			fstr(r.NUE), string(r.Timing4R), string(r.Amount4R), bstr(r.EEF), string(r.NMgtPractice),
			bstr(r.ManureUse), bstr(r.CoverCropUse), fstr(r.TillDepth), fstr(r.TillPasses), till,
			sstr(r.MajorCropType), fstr(r.ReferenceAcreage),
		}
	})
}

// DecodeDecisionMatrix parses the decision matrix.
func DecodeDecisionMatrix(data []byte) ([]domain.DecisionMatrixRow, error) {
	rows, err := unmarshal(data, matrixHeader)
	if err != nil {
		return nil, err
	}
	var out []domain.DecisionMatrixRow
	for _, row := range rows {
		var r domain.DecisionMatrixRow
		r.FieldName = row[0]
		r.Verified = parseBool(row[1])
		r.CropType = parseStringPtr(row[2])
		if r.TotalDryYield, err = parseFloatPtr(row[3]); err != nil {
			return nil, fmt.Errorf("total_dry_yield: %w", err)
		}
		if r.TotalNitrogen, err = parseFloatPtr(row[4]); err != nil {
			return nil, fmt.Errorf("total_nitrogen: %w", err)
		}
		if r.NUE, err = parseFloatPtr(row[5]); err != nil {
			return nil, fmt.Errorf("nue: %w", err)
		}
		r.Timing4R = domain.TimingClass(row[6])
		r.Amount4R = domain.AmountClass(row[7])
		r.EEF = parseBool(row[8])
		r.NMgtPractice = domain.NMgtPractice(row[9])
		r.ManureUse = parseBool(row[10])
		r.CoverCropUse = parseBool(row[11])
		if r.TillDepth, err = parseFloatPtr(row[12]); err != nil {
			return nil, fmt.Errorf("till_depth: %w", err)
		}
		if r.TillPasses, err = parseFloatPtr(row[13]); err != nil {
			return nil, fmt.Errorf("till_passes: %w", err)
		}
		if row[14] != "" {
			t := domain.TillPractice(row[14])
			r.TillPractice = &t
		}
		r.MajorCropType = parseStringPtr(row[15])
		if r.ReferenceAcreage, err = parseFloatPtr(row[16]); err != nil {
			return nil, fmt.Errorf("reference_acreage: %w", err)
		}
		out = append(out, r)
	}
	return out, nil
}

// Bulk rows keep the consumer's historical column names.
var bulkHeader = []string{
	"ID", "DATA SOURCE", "FIELD_ID", "FIELD_NAME", "CROP_TYPE", "GROWING_CYCLE",
	"Yield", "MOISTURE_AT_HARVEST", "OPERATION_NAME", "OPERATION_TYPE",
	"OPERATION_START", "OPERATION_END", "NUM_TILL_PASSES", "TILL_DEPTH",
	"TILL_PRACTICE", "INPUT_NAME", "INPUT_TYPE", "INPUT_RATE", "INPUT_UNIT",
	"INPUT_ACRES", "GREEN_AMMONIA", "N_MGT_PRACTICE", "REFERENCE_ACREAGE",
	"MANURE_USE", "COVER_CROP_USE", "MANURE_TYPE", "MANURE_DRY_QUANTITY_EQUIV",
	"MANURE_TRANS_DIST", "MANURE_TRANS_EN", "MANURE_APPL_EN", "CC_TYPE",
	"CC_HERBICIDE_PRODUCT", "CC_HERBICIDE_AI", "CC_YIELD", "CC_APPL_EN",
	"CC_N_FACTOR",
}

// EncodeBulkUpload renders the bulk-upload table to CSV.
func EncodeBulkUpload(rows []domain.BulkUploadRow) ([]byte, error) {
	return marshal(bulkHeader, len(rows), func(i int) []string {
		r := rows[i]
		inputType := ""
		if r.InputType != nil {
			inputType = string(*r.InputType)
		}
		till := ""
		if r.TillPractice != nil {
			till = string(*r.TillPractice)
		}
		nMgt := ""
		if r.NMgtPractice != nil {
			nMgt = string(*r.NMgtPractice)
		}
		return []string{
			istr(r.ID), r.DataSource, r.FieldID, r.FieldName, sstr(r.CropType), istr(r.GrowingCycle),
			fstr(r.Yield), fstr(r.MoistureAtHarvest), r.OperationName, string(r.OperationType),
			tstr(r.OperationStart), tstr(r.OperationEnd), fstr(r.NumTillPasses), fstr(r.TillDepth),
			till, r.InputName, inputType, fstr(r.InputRate), r.InputUnit,
			fstr(r.InputAcres), bstr(r.GreenAmmonia), nMgt, fstr(r.ReferenceAcreage),
			bstr(r.ManureUse), bstr(r.CoverCropUse), r.ManureType, fstr(r.ManureDryQuantityEquiv),
			fstr(r.ManureTransDist), fstr(r.ManureTransEn), fstr(r.ManureApplEn), r.CCType,
			r.CCHerbicideProduct, fstr(r.CCHerbicideAI), fstr(r.CCYield), fstr(r.CCApplEn),
			fstr(r.CCNFactor),
		}
	})
}

// DecodeBulkUpload parses the bulk-upload table.
func DecodeBulkUpload(data []byte) ([]domain.BulkUploadRow, error) {
	rows, err := unmarshal(data, bulkHeader)
	if err != nil {
		return nil, err
	}
	var out []domain.BulkUploadRow
	for _, row := range rows {
		var r domain.BulkUploadRow
		if r.ID, err = parseInt(row[0]); err != nil {
			return nil, fmt.Errorf("ID: %w", err)
		}
		r.DataSource = row[1]
		r.FieldID = row[2]
		r.FieldName = row[3]
		r.CropType = parseStringPtr(row[4])
		if r.GrowingCycle, err = parseInt(row[5]); err != nil {
			return nil, fmt.Errorf("GROWING_CYCLE: %w", err)
		}
		if r.Yield, err = parseFloatPtr(row[6]); err != nil {
			return nil, fmt.Errorf("Yield: %w", err)
		}
		if r.MoistureAtHarvest, err = parseFloatPtr(row[7]); err != nil {
			return nil, fmt.Errorf("MOISTURE_AT_HARVEST: %w", err)
		}
		r.OperationName = row[8]
		r.OperationType = domain.UploadOperationType(row[9])
		if r.OperationStart, err = parseTimePtr(row[10]); err != nil {
			return nil, fmt.Errorf("OPERATION_START: %w", err)
		}
		if r.OperationEnd, err = parseTimePtr(row[11]); err != nil {
			return nil, fmt.Errorf("OPERATION_END: %w", err)
		}
		if r.NumTillPasses, err = parseFloatPtr(row[12]); err != nil {
			return nil, fmt.Errorf("NUM_TILL_PASSES: %w", err)
		}
		if r.TillDepth, err = parseFloatPtr(row[13]); err != nil {
			return nil, fmt.Errorf("TILL_DEPTH: %w", err)
		}
		if row[14] != "" {
			t := domain.TillPractice(row[14])
			r.TillPractice = &t
		}
		r.InputName = row[15]
		if row[16] != "" {
			t := domain.InputType(row[16])
			r.InputType = &t
		}
		if r.InputRate, err = parseFloatPtr(row[17]); err != nil {
			return nil, fmt.Errorf("INPUT_RATE: %w", err)
		}
		r.InputUnit = row[18]
		if r.InputAcres, err = parseFloatPtr(row[19]); err != nil {
			return nil, fmt.Errorf("INPUT_ACRES: %w", err)
		}
		r.GreenAmmonia = parseBool(row[20])
		if row[21] != "" {
			p := domain.NMgtPractice(row[21])
			r.NMgtPractice = &p
		}
		if r.ReferenceAcreage, err = parseFloatPtr(row[22]); err != nil {
			return nil, fmt.Errorf("REFERENCE_ACREAGE: %w", err)
		}
		r.ManureUse = parseBool(row[23])
		r.CoverCropUse = parseBool(row[24])
		r.ManureType = row[25]
		if r.ManureDryQuantityEquiv, err = parseFloatPtr(row[26]); err != nil {
			return nil, fmt.Errorf("MANURE_DRY_QUANTITY_EQUIV: %w", err)
		}
		if r.ManureTransDist, err = parseFloatPtr(row[27]); err != nil {
			return nil, fmt.Errorf("MANURE_TRANS_DIST: %w", err)
		}
		if r.ManureTransEn, err = parseFloatPtr(row[28]); err != nil {
			return nil, fmt.Errorf("MANURE_TRANS_EN: %w", err)
		}
		if r.ManureApplEn, err = parseFloatPtr(row[29]); err != nil {
			return nil, fmt.Errorf("MANURE_APPL_EN: %w", err)
		}
		r.CCType = row[30]
		r.CCHerbicideProduct = row[31]
		if r.CCHerbicideAI, err = parseFloatPtr(row[32]); err != nil {
			return nil, fmt.Errorf("CC_HERBICIDE_AI: %w", err)
		}
		if r.CCYield, err = parseFloatPtr(row[33]); err != nil {
			return nil, fmt.Errorf("CC_YIELD: %w", err)
		}
		if r.CCApplEn, err = parseFloatPtr(row[34]); err != nil {
			return nil, fmt.Errorf("CC_APPL_EN: %w", err)
		}
		if r.CCNFactor, err = parseFloatPtr(row[35]); err != nil {
			return nil, fmt.Errorf("CC_N_FACTOR: %w", err)
		}
		out = append(out, r)
	}
	return out, nil
}

var exclusionsHeader = []string{"case", "field_name", "crop_type", "reason"}

// EncodeExclusions renders the exclusion summary to CSV.
func EncodeExclusions(records []domain.ExclusionRecord) ([]byte, error) {
	return marshal(exclusionsHeader, len(records), func(i int) []string {
		r := records[i]
		return []string{string(r.Case), r.FieldName, sstr(r.CropType), sstr(r.Reason)}
	})
}

// DecodeExclusions parses the exclusion summary.
func DecodeExclusions(data []byte) ([]domain.ExclusionRecord, error) {
	rows, err := unmarshal(data, exclusionsHeader)
	if err != nil {
		return nil, err
	}
	var records []domain.ExclusionRecord
	for _, row := range rows {
		records = append(records, domain.ExclusionRecord{
			Case:      domain.ExclusionCase(row[0]),
			FieldName: row[1],
			CropType:  parseStringPtr(row[2]),
			Reason:    parseStringPtr(row[3]),
		})
	}
	return records, nil
}
