package domain

import "context"

// ReportType identifies one persisted pipeline artifact category.
type ReportType string

// Report artifact categories written and read by the pipeline stages. Each
// (grower, growing cycle, report type) key maps to at most one current
// artifact.
const (
	ReportCleanedOperations ReportType = "cleaned_operations"
	ReportComprehensive     ReportType = "comprehensive_inputs"
	ReportReferenceAcreage  ReportType = "reference_acreage_report"
	ReportManure            ReportType = "manure_report"
	ReportCoverCrop         ReportType = "cover_crop_report"
	ReportSplitField        ReportType = "split_field_report"
	ReportShapefileOverview ReportType = "shp_file_overview"
	ReportVerifiedFields    ReportType = "verified_fields"
	ReportDecisionMatrix    ReportType = "decision_matrix"
	ReportBulkUpload        ReportType = "bulk_upload"
	ReportExclusions        ReportType = "exclusions"
	ReportAttestations      ReportType = "attestation_overwrite"
)

// ReportKey addresses one artifact in the report store.
type ReportKey struct {
	Grower       string
	GrowingCycle int
	Type         ReportType
}

// ReportStore is the keyed artifact store every report-producing stage
// writes to. Reads return the most recent artifact for the key, or an empty
// table when none exists; absence is never an error.
type ReportStore interface {
	SaveOperations(ctx context.Context, key ReportKey, ops []FieldOperation) error
	LoadOperations(ctx context.Context, key ReportKey) ([]FieldOperation, error)

	SaveAcreage(ctx context.Context, key ReportKey, records []AcreageRecord) error
	LoadAcreage(ctx context.Context, key ReportKey) ([]AcreageRecord, error)

	SaveCoverage(ctx context.Context, key ReportKey, records []CoverageRecord) error
	LoadCoverage(ctx context.Context, key ReportKey) ([]CoverageRecord, error)

	SaveLocations(ctx context.Context, key ReportKey, records []FieldLocation) error
	LoadLocations(ctx context.Context, key ReportKey) ([]FieldLocation, error)

	SaveVerified(ctx context.Context, key ReportKey, fields []VerifiedField) error
	LoadVerified(ctx context.Context, key ReportKey) ([]VerifiedField, error)

	SaveSplitFields(ctx context.Context, key ReportKey, records []SplitFieldRecord) error
	LoadSplitFields(ctx context.Context, key ReportKey) ([]SplitFieldRecord, error)

	SaveAttestations(ctx context.Context, key ReportKey, attestations []Attestation) error
	LoadAttestations(ctx context.Context, key ReportKey) ([]Attestation, error)

	SaveDecisionMatrix(ctx context.Context, key ReportKey, rows []DecisionMatrixRow) error
	LoadDecisionMatrix(ctx context.Context, key ReportKey) ([]DecisionMatrixRow, error)

	SaveBulkUpload(ctx context.Context, key ReportKey, rows []BulkUploadRow) error
	LoadBulkUpload(ctx context.Context, key ReportKey) ([]BulkUploadRow, error)

	SaveExclusions(ctx context.Context, key ReportKey, records []ExclusionRecord) error
	LoadExclusions(ctx context.Context, key ReportKey) ([]ExclusionRecord, error)
}

// ProviderAdapter converts one provider-specific raw source into canonical
// operations. Parsing and schema mapping live behind this interface; the
// core only ever sees the canonical column set.
type ProviderAdapter interface {
	Read(ctx context.Context, source string) ([]CanonicalOperation, error)
	Source() string
}
