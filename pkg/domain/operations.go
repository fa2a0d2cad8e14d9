// Package domain defines the canonical field-operation schema, the derived
// decision and bulk-upload records, and the collaborator interfaces consumed
// by the reconciliation core.
package domain

import "time"

// OperationType identifies the category of a physical field operation as
// reported by provider adapters.
type OperationType string

// Canonical operation categories produced by every provider adapter.
const (
	OperationHarvest     OperationType = "Harvest"
	OperationPlanting    OperationType = "Planting"
	OperationApplication OperationType = "Application"
	OperationTillage     OperationType = "Tillage"
	OperationFuel        OperationType = "Fuel"
)

// UploadOperationType is the operation enum accepted by the bulk-upload
// consumer. Provider operation types collapse onto this closed set.
type UploadOperationType string

const (
	UploadTillage         UploadOperationType = "TILLAGE"
	UploadApplyingProduct UploadOperationType = "APPLYING_PRODUCTS"
	UploadIrrigation      UploadOperationType = "IRRIGATION"
	UploadDryDown         UploadOperationType = "DRY_DOWN"
	UploadHarvest         UploadOperationType = "HARVEST"
)

// InputType classifies the product applied by an operation for upload.
type InputType string

const (
	InputFertilizer  InputType = "FERTILIZER"
	InputSeed        InputType = "SEED"
	InputHerbicide   InputType = "HERBICIDE"
	InputFungicide   InputType = "FUNGICIDE"
	InputInsecticide InputType = "INSECTICIDE"
	InputPesticide   InputType = "PESTICIDE"
	InputEEF         InputType = "EEF"
)

// CanonicalOperation is one physical field operation (one harvest pass, one
// spray event, one tillage pass) in the common schema all provider adapters
// must produce. Records are immutable once merged: the core selects or
// recombines them into new derived rows, it never mutates them in place.
type CanonicalOperation struct {
	Client         string         `json:"client,omitempty"`
	FarmName       string         `json:"farm_name,omitempty"`
	FieldName      string         `json:"field_name"`
	OperationType  OperationType  `json:"operation_type"`
	OperationName  string         `json:"operation_name,omitempty"`
	CropType       *string        `json:"crop_type,omitempty"`
	SubCropType    *string        `json:"sub_crop_type,omitempty"`
	Product        *string        `json:"product,omitempty"`
	ProductType    *string        `json:"product_type,omitempty"`
	OperationStart *time.Time     `json:"operation_start,omitempty"`
	OperationEnd   *time.Time     `json:"operation_end,omitempty"`
	AreaApplied    *float64       `json:"area_applied,omitempty"`
	AppliedRate    *float64       `json:"applied_rate,omitempty"`
	AppliedTotal   *float64       `json:"applied_total,omitempty"`
	AppliedUnit    string         `json:"applied_unit,omitempty"`
	TotalDryYield  *float64       `json:"total_dry_yield,omitempty"`
	Moisture       *float64       `json:"moisture,omitempty"`
	GrowingCycle   int            `json:"growing_cycle"`
	DataSource     string         `json:"data_source"`
}

// FieldSeason is the reconciliation unit every decision operates over. It is
// a key, not a stored entity.
type FieldSeason struct {
	FieldName    string
	CropType     string
	GrowingCycle int
}

// TimingClass categorizes a single fertilizer application against the 4R
// timing windows for a growing cycle. The field-level timing decision reuses
// the type with the value Timing4RMet once every application qualifies.
type TimingClass string

const (
	TimingFall   TimingClass = "Fall"
	TimingSpring TimingClass = "Spring"
	TimingFlag   TimingClass = "FLAG"
	TimingNo4R   TimingClass = "NO_4R"
	Timing4RMet  TimingClass = "4R"
)

// FieldOperation is a canonical operation enriched by the merge and overview
// stages: normalized input type, the field-season reference acreage, and the
// per-application 4R timing class.
type FieldOperation struct {
	CanonicalOperation

	InputType        *InputType  `json:"input_type,omitempty"`
	ReferenceAcreage *float64    `json:"reference_acreage,omitempty"`
	ExclusionReason  *string     `json:"exclusion_reason,omitempty"`
	FertilizerTiming TimingClass `json:"fertilizer_timing,omitempty"`
	EEFProduct       bool        `json:"eef_product,omitempty"`
}

// Key returns the field-season key of the operation. Operations without a
// crop type key on the empty crop.
func (op CanonicalOperation) Key() FieldSeason {
	crop := ""
	if op.CropType != nil {
		crop = *op.CropType
	}
	return FieldSeason{FieldName: op.FieldName, CropType: crop, GrowingCycle: op.GrowingCycle}
}
