package core

// Crops accepted by the FD-CIC model. The primary crop (Corn) additionally
// gates the final bulk-upload filter.
const (
	CropCorn     = "Corn"
	CropSoybean  = "Soybean"
	CropSoybeans = "Soybeans"
	CropBeans    = "Beans"
)

// FDCICCrops lists the crop types the decision matrix treats as model crops
// when determining a field's major crop.
var FDCICCrops = []string{CropCorn, CropSoybean, CropSoybeans, CropBeans}

// Conversion factors taken from the FD-CIC 2022 model, sheet "Parameters".
const (
	AcrePerHectare  = 2.47105
	KgPerLbs        = 0.4535925
	GPerLbs         = 453.592
	LbsPerShortTon  = 2000.0
	DieselBtuPerGal = 128450.0
)

// FD-CIC 2022 defaults applied when an attestation omits the measured value.
const (
	DefaultManureTransEn   = 10416.49299     // Btu / ton manure / mile
	DefaultManureTransDist = 0.367           // miles
	DefaultManureApplEn    = 221365.589648777 // Btu / acre
	DefaultCCHerbicideAI   = 612.3496995     // g active ingredient / acre
	DefaultCCApplEn        = 62060.0         // Btu / acre
)

// ManureTypes accepted by FD-CIC 2022; anything else maps to "Other".
var ManureTypes = []string{"Beef Cattle", "Dairy Cow", "Swine", "Chicken"}

// DryUnits are the units an attested dry-product quantity must arrive in.
var DryUnits = []string{"LBS", "T", "TN", "KG", "G"}

// DryOrLiquidUnits additionally admits GAL for product attestations.
var DryOrLiquidUnits = []string{"LBS", "T", "TN", "KG", "G", "GAL"}

// AreaOnlyUnits are pseudo-units that describe coverage rather than an
// applied quantity; rows carrying them are dropped from the bulk upload.
var AreaOnlyUnits = []string{"AC", "are"}

// ExcludedInputTypes are the pesticide categories removed from the bulk
// upload under current business policy.
var ExcludedInputTypes = []InputType{
	"HERBICIDE",
	"PESTICIDE",
	"FUNGICIDE",
	"INSECTICIDE",
}

func containsString(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func fptr(v float64) *float64 { return &v }

func sptr(v string) *string { return &v }

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
