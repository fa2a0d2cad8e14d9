package domain

import "time"

// GreenAmmonia defaults to false for all synthesized and mapped rows per the
// business-rules methodology; only a future attestation path could set it.
const GreenAmmoniaDefault = false

// BulkUploadRow is one row of the final record set handed to the
// carbon-intensity model. It combines an operation-derived row with the
// field-level practice decisions from the decision matrix.
type BulkUploadRow struct {
	ID           int     `json:"id"`
	DataSource   string  `json:"data_source"`
	FieldID      string  `json:"field_id,omitempty"`
	FieldName    string  `json:"field_name"`
	CropType     *string `json:"crop_type,omitempty"`
	GrowingCycle int     `json:"growing_cycle"`

	// Yield is per acre once the assembler divides total dry yield by the
	// reference acreage.
	Yield             *float64 `json:"yield,omitempty"`
	MoistureAtHarvest *float64 `json:"moisture_at_harvest,omitempty"`

	OperationName  string              `json:"operation_name,omitempty"`
	OperationType  UploadOperationType `json:"operation_type,omitempty"`
	OperationStart *time.Time          `json:"operation_start,omitempty"`
	OperationEnd   *time.Time          `json:"operation_end,omitempty"`

	NumTillPasses *float64      `json:"num_till_passes,omitempty"`
	TillDepth     *float64      `json:"till_depth,omitempty"`
	TillPractice  *TillPractice `json:"till_practice,omitempty"`

	InputName  string     `json:"input_name,omitempty"`
	InputType  *InputType `json:"input_type,omitempty"`
	InputRate  *float64   `json:"input_rate,omitempty"`
	InputUnit  string     `json:"input_unit,omitempty"`
	InputAcres *float64   `json:"input_acres,omitempty"`

	GreenAmmonia     bool          `json:"green_ammonia"`
	NMgtPractice     *NMgtPractice `json:"n_mgt_practice,omitempty"`
	ReferenceAcreage *float64      `json:"reference_acreage,omitempty"`
	ManureUse        bool          `json:"manure_use"`
	CoverCropUse     bool          `json:"cover_crop_use"`

	// FD-CIC manure parameters, populated by manure attestations.
	ManureType             string   `json:"manure_type,omitempty"`
	ManureDryQuantityEquiv *float64 `json:"manure_dry_quantity_equiv,omitempty"`
	ManureTransDist        *float64 `json:"manure_trans_dist,omitempty"`
	ManureTransEn          *float64 `json:"manure_trans_en,omitempty"`
	ManureApplEn           *float64 `json:"manure_appl_en,omitempty"`

	// FD-CIC cover-crop parameters, populated by cover-crop attestations.
	CCType             string   `json:"cc_type,omitempty"`
	CCHerbicideProduct string   `json:"cc_herbicide_product,omitempty"`
	CCHerbicideAI      *float64 `json:"cc_herbicide_ai,omitempty"`
	CCYield            *float64 `json:"cc_yield,omitempty"`
	CCApplEn           *float64 `json:"cc_appl_en,omitempty"`
	CCNFactor          *float64 `json:"cc_n_factor,omitempty"`
}
