package domain

// AmountClass is the 4R "right amount" decision derived from nitrogen use
// efficiency.
type AmountClass string

const (
	Amount4R   AmountClass = "4R"
	AmountNo4R AmountClass = "NO_4R"
)

// NMgtPractice is the final nitrogen-management classification, the
// precedence being 4R > EEF > business as usual.
type NMgtPractice string

const (
	NMgt4R  NMgtPractice = "4R"
	NMgtEEF NMgtPractice = "EEF"
	NMgtBAU NMgtPractice = "BUSINESS_AS_USUAL"
)

// TillPractice classifies the tillage regime of a field-season.
type TillPractice string

const (
	TillConventional TillPractice = "CONVENTIONAL_TILLAGE"
	TillReduced      TillPractice = "REDUCED_TILLAGE"
	TillNone         TillPractice = "NO_TILLAGE"
)

// ValidTillPractice reports whether v is one of the three allowed tillage
// practice values. Attestation overrides are validated against this set.
func ValidTillPractice(v string) bool {
	switch TillPractice(v) {
	case TillConventional, TillReduced, TillNone:
		return true
	}
	return false
}

// MajorCropSplitField is the sentinel a field's major crop type is set to
// when its records span more than one primary crop.
const MajorCropSplitField = "Potential_split_field"

// DecisionMatrixRow aggregates every per-field practice decision into one
// row. The bulk-upload assembler merges these decisions onto operation rows.
type DecisionMatrixRow struct {
	FieldName        string        `json:"field_name"`
	Verified         bool          `json:"verified"`
	CropType         *string       `json:"crop_type,omitempty"`
	TotalDryYield    *float64      `json:"total_dry_yield,omitempty"`
	TotalNitrogen    *float64      `json:"total_nitrogen,omitempty"`
	NUE              *float64      `json:"nue,omitempty"`
	Timing4R         TimingClass   `json:"timing_4r,omitempty"`
	Amount4R         AmountClass   `json:"amount_4r,omitempty"`
	EEF              bool          `json:"eef"`
	NMgtPractice     NMgtPractice  `json:"n_mgt_practice,omitempty"`
	ManureUse        bool          `json:"manure_use"`
	CoverCropUse     bool          `json:"cover_crop_use"`
	TillDepth        *float64      `json:"till_depth,omitempty"`
	TillPasses       *float64      `json:"till_passes,omitempty"`
	TillPractice     *TillPractice `json:"till_practice,omitempty"`
	MajorCropType    *string       `json:"major_crop_type,omitempty"`
	ReferenceAcreage *float64      `json:"reference_acreage,omitempty"`
}

// ExclusionCase enumerates the documented reasons a field drops out of the
// final bulk upload.
type ExclusionCase string

const (
	ExclusionMissingData       ExclusionCase = "missing-data"
	ExclusionSplitField        ExclusionCase = "split-field"
	ExclusionRefAcreageNonCorn ExclusionCase = "ref-ac/non-corn"
	ExclusionManual            ExclusionCase = "manual"
)

// ExclusionRecord documents one excluded field so operators can distinguish
// expected exclusions from failures.
type ExclusionRecord struct {
	Case      ExclusionCase `json:"case"`
	FieldName string        `json:"field_name"`
	CropType  *string       `json:"crop_type,omitempty"`
	Reason    *string       `json:"reason,omitempty"`
}
