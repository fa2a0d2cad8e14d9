package domain

// AcreageRecord is one row of the reference-acreage report: the three source
// acreages for a (field, crop) season and the resolved figure, if any.
type AcreageRecord struct {
	FieldName        string   `json:"field_name"`
	CropType         string   `json:"crop_type"`
	PlantedAcres     *float64 `json:"planted_acres,omitempty"`
	HarvestedAcres   *float64 `json:"harvested_acres,omitempty"`
	GISAcres         *float64 `json:"gis_acres,omitempty"`
	PLAAvailable     bool     `json:"pla_available"`
	ResolvedAcreage  *float64 `json:"resolved_acreage,omitempty"`
	ExclusionReason  *string  `json:"exclusion_reason,omitempty"`
}

// CoverageRecord reports how much of a field's reference acreage a practice
// (manure spreading, cover cropping) covered.
type CoverageRecord struct {
	FieldName           string   `json:"field_name"`
	CropType            *string  `json:"crop_type,omitempty"`
	AreaOperated        *float64 `json:"area_operated,omitempty"`
	ReferenceAcreage    *float64 `json:"reference_acreage,omitempty"`
	AreaCoveragePercent *float64 `json:"area_coverage_percent,omitempty"`
}

// FieldLocation carries the GIS-derived attributes of a field: the polygon
// acreage and the centroid used for soil-temperature lookups.
type FieldLocation struct {
	FieldName    string   `json:"field_name"`
	FarmName     string   `json:"farm_name,omitempty"`
	AcreageCalc  *float64 `json:"acreage_calc,omitempty"`
	CentroidLat  *float64 `json:"centroid_lat,omitempty"`
	CentroidLong *float64 `json:"centroid_long,omitempty"`
}

// VerifiedField marks a field as enrolled and verified for the program.
type VerifiedField struct {
	FieldName   string   `json:"field_name"`
	AreaApplied *float64 `json:"area_applied,omitempty"`
}

// SplitFieldRecord flags a field known to be physically divided between
// crops or management zones.
type SplitFieldRecord struct {
	FieldName string `json:"field_name"`
	Reason    string `json:"reason,omitempty"`
}
