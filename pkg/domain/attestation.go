package domain

import (
	"strings"
	"time"
)

// AttestationKind discriminates the overwrite strategy applied for an
// attestation record. Kinds are matched case-insensitively against the
// record's input type; product names and exclusions are recognized
// dynamically (see KindOf).
type AttestationKind string

const (
	AttestLime     AttestationKind = "lime"
	AttestPotash   AttestationKind = "potash"
	AttestPureP2O5 AttestationKind = "pure_p2o5"
	AttestManure   AttestationKind = "manure"
	AttestCC       AttestationKind = "cc"
	AttestTill     AttestationKind = "till"
	AttestFert     AttestationKind = "fert"
	AttestNMgt     AttestationKind = "n_mgt"
	AttestExclude  AttestationKind = "exclude"
	AttestProduct  AttestationKind = "product"
	AttestUnknown  AttestationKind = "unknown"
)

// Attestation is one manually supplied correction record for a specific
// field and input, applied on top of the assembled bulk upload.
type Attestation struct {
	FieldName    string     `json:"field_name"`
	InputType    string     `json:"input_type"`
	InputValue   *string    `json:"input_value,omitempty"`
	InputUnit    *string    `json:"input_unit,omitempty"`
	InputProduct *string    `json:"input_product,omitempty"`
	AreaApplied  *float64   `json:"area_applied,omitempty"`
	OperationStart *time.Time `json:"operation_start,omitempty"`
	GrowingCycle *int       `json:"growing_cycle,omitempty"`
	// DropExisting defaults to true when absent so older overwrite files
	// keep working unchanged.
	DropExisting *bool `json:"drop_existing,omitempty"`

	ManureTransDist   *float64 `json:"manure_trans_dist,omitempty"`
	ManureTransEn     *float64 `json:"manure_trans_en,omitempty"`
	ManureTransEnUnit *string  `json:"manure_trans_en_unit,omitempty"`
	ManureApplEn      *float64 `json:"manure_appl_en,omitempty"`

	CCType           *string  `json:"cc_type,omitempty"`
	CCHerbProduct    *string  `json:"cc_herb_product,omitempty"`
	CCHerbAmount     *float64 `json:"cc_herb_amount,omitempty"`
	CCHerbUnit       *string  `json:"cc_herb_unit,omitempty"`
	CCYieldHarvested *float64 `json:"cc_yield_harvested,omitempty"`
	CCApplEn         *float64 `json:"cc_appl_en,omitempty"`
}

// KindOf resolves the overwrite strategy for the attestation's input type.
// Literal product names are resolved by the caller against the product
// breakdown table before falling back to AttestUnknown.
func (a Attestation) KindOf(isProduct func(name string) bool) AttestationKind {
	raw := strings.TrimSpace(a.InputType)
	if raw == "" {
		return AttestUnknown
	}
	switch AttestationKind(strings.ToLower(raw)) {
	case AttestLime, AttestPotash, AttestPureP2O5, AttestManure, AttestCC, AttestTill, AttestFert, AttestNMgt:
		return AttestationKind(strings.ToLower(raw))
	}
	if isProduct != nil && isProduct(raw) {
		return AttestProduct
	}
	if strings.Contains(strings.ToLower(raw), string(AttestExclude)) {
		return AttestExclude
	}
	return AttestUnknown
}

// ExclusionCaseOf parses the manual-exclusion sub-case from an "exclude"
// attestation type, e.g. "exclude:no-consent". The default is "manual".
func (a Attestation) ExclusionCaseOf() string {
	parts := strings.Split(a.InputType, ":")
	if len(parts) < 2 || strings.TrimSpace(parts[len(parts)-1]) == "" {
		return string(ExclusionManual)
	}
	return strings.TrimSpace(parts[len(parts)-1])
}
