package domain

// ProductBreakdown is one entry of the chemical input product breakdown
// table: nutrient percentages, density and active-ingredient factors, and
// the EEF flag used by the nitrogen-management classifier.
type ProductBreakdown struct {
	ProductName   string   `json:"product_name"`
	ProductType   string   `json:"product_type"`
	PercentN      *float64 `json:"percent_n,omitempty"`
	PercentP2O5   *float64 `json:"percent_p2o5,omitempty"`
	PercentK2O    *float64 `json:"percent_k2o,omitempty"`
	LbsPerGal     *float64 `json:"lbs_per_gal,omitempty"`
	LbsAIPerGal   *float64 `json:"lbs_ai_per_gal,omitempty"`
	EEFProduct    bool     `json:"eef_product"`
	ManureType    string   `json:"manure_type,omitempty"`
}

// ProductCatalog provides keyed lookup into the product breakdown table.
// Implementations are read-only reference objects loaded once per run and
// injected into every component that needs them.
type ProductCatalog interface {
	// Lookup returns the breakdown entry for an exact product name.
	Lookup(productName string) (ProductBreakdown, bool)
	// IsProduct reports whether the name exists in the table at all.
	IsProduct(productName string) bool
	// Fertilizers returns the fertilizer and EEF entries of the table.
	Fertilizers() []ProductBreakdown
}

// CoverCropEntry is one row of the cover-crop reference table used to
// estimate dry-matter yield and nitrogen content for attested cover crops.
type CoverCropEntry struct {
	CoverCropType     string   `json:"cover_crop_type"`
	YieldMtPerHectare *float64 `json:"yield_mt_per_hectare,omitempty"`
	NContentTotal     *float64 `json:"n_content_total,omitempty"`
}

// CoverCropTable provides keyed lookup into the cover-crop reference table.
type CoverCropTable interface {
	Lookup(coverCropType string) (CoverCropEntry, bool)
}

// UnitConverter normalizes provider-native quantities: liquid units to GAL,
// dry units to LBS, seed units to BAG. Unknown units pass through unchanged;
// implementations log a warning instead of failing.
type UnitConverter interface {
	Convert(quantity float64, unit string) (float64, string)
}
