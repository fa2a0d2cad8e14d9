package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"feedstockcore/pkg/domain"
)

// Pipeline wires the reconciliation stages over the report store and the
// injected collaborators. Every stage loads its inputs from the store,
// computes, and persists its artifact under the grower's report key, so
// stages can run individually or chained through Run.
type Pipeline struct {
	Store      domain.ReportStore
	GIS        domain.GISResolver
	SoilTemp   domain.SoilTemperatureProvider
	Catalog    domain.ProductCatalog
	CoverCrops domain.CoverCropTable
	Converter  domain.UnitConverter

	// AppendOnlySources names providers whose rows bypass the merge
	// comparison and are concatenated verbatim, e.g. preapproved product
	// lists.
	AppendOnlySources []string

	Metrics MetricsRecorder
	Log     Logger
}

func (p Pipeline) log() Logger {
	if p.Log == nil {
		return NopLogger()
	}
	return p.Log
}

func (p Pipeline) observe(ctx context.Context, stage string, start time.Time, err error) {
	if p.Metrics == nil {
		return
	}
	p.Metrics.Observe(ctx, stage, err == nil, time.Since(start))
}

func key(grower string, growingCycle int, t ReportType) ReportKey {
	return ReportKey{Grower: grower, GrowingCycle: growingCycle, Type: t}
}

// Merge validates every source batch, merges the survivors under the
// maximum-evidence rule and persists the comprehensive operation table.
// Rows failing validation are logged and dropped, never aborting the batch.
func (p Pipeline) Merge(ctx context.Context, grower string, growingCycle int, sources []SourceOperations) (ops []FieldOperation, err error) {
	log := p.log()
	start := time.Now()
	defer func() { p.observe(ctx, "merge", start, err) }()

	log.Info("merging cleaned sources", "grower", grower, "cycle", growingCycle, "sources", len(sources))
	cleaned := make([]SourceOperations, 0, len(sources))
	for _, src := range sources {
		canonical := make([]domain.CanonicalOperation, len(src.Operations))
		for i, op := range src.Operations {
			canonical[i] = op.CanonicalOperation
		}
		accepted, rejects := domain.ValidateBatch(canonical)
		for _, rejectErr := range rejects {
			log.Warn("dropping invalid operation", "source", src.Name, "reason", rejectErr.Error())
		}
		kept := make([]FieldOperation, len(accepted))
		for i, op := range accepted {
			kept[i] = FieldOperation{CanonicalOperation: op}
		}
		cleaned = append(cleaned, SourceOperations{Name: src.Name, Operations: kept})
	}

	ops = ComprehensiveInputs(cleaned, p.AppendOnlySources, p.Converter, log)
	if err = p.Store.SaveOperations(ctx, key(grower, growingCycle, domain.ReportComprehensive), ops); err != nil {
		return nil, fmt.Errorf("save comprehensive inputs: %w", err)
	}
	return ops, nil
}

// BuildDecisionMatrix derives the reference-acreage report, annotates the
// comprehensive table with acreage, input types, timing and EEF flags, and
// builds the per-field decision matrix. The annotated overview replaces the
// stored comprehensive table so the assembler works from the same rows.
func (p Pipeline) BuildDecisionMatrix(ctx context.Context, grower string, growingCycle int) (matrix []DecisionMatrixRow, err error) {
	log := p.log()
	start := time.Now()
	defer func() { p.observe(ctx, "decision_matrix", start, err) }()

	overview, err := p.Store.LoadOperations(ctx, key(grower, growingCycle, domain.ReportComprehensive))
	if err != nil {
		return nil, fmt.Errorf("load comprehensive inputs: %w", err)
	}
	if len(overview) == 0 {
		log.Error("no comprehensive inputs available", "grower", grower, "cycle", growingCycle)
		return nil, nil
	}

	acreage := BuildReferenceAcreageReport(overview, p.GIS, log)
	if err = p.Store.SaveAcreage(ctx, key(grower, growingCycle, domain.ReportReferenceAcreage), acreage); err != nil {
		return nil, fmt.Errorf("save reference acreage report: %w", err)
	}

	overview = p.annotateOverview(overview, acreage, growingCycle, log)
	if err = p.Store.SaveOperations(ctx, key(grower, growingCycle, domain.ReportComprehensive), overview); err != nil {
		return nil, fmt.Errorf("save annotated overview: %w", err)
	}

	manure := BuildCoverageReport(p.productTypeRows(overview, "manure"), acreage, log)
	if err = p.Store.SaveCoverage(ctx, key(grower, growingCycle, domain.ReportManure), manure); err != nil {
		return nil, fmt.Errorf("save manure report: %w", err)
	}
	coverCrop := BuildCoverageReport(p.productTypeRows(overview, "cover crop"), acreage, log)
	if err = p.Store.SaveCoverage(ctx, key(grower, growingCycle, domain.ReportCoverCrop), coverCrop); err != nil {
		return nil, fmt.Errorf("save cover crop report: %w", err)
	}

	verified, err := p.Store.LoadVerified(ctx, key(grower, growingCycle, domain.ReportVerifiedFields))
	if err != nil {
		return nil, fmt.Errorf("load verified fields: %w", err)
	}
	splitFields, err := p.Store.LoadSplitFields(ctx, key(grower, growingCycle, domain.ReportSplitField))
	if err != nil {
		return nil, fmt.Errorf("load split field report: %w", err)
	}

	builder := MatrixBuilder{
		Catalog: p.Catalog,
		Timing:  TimingDecider{GIS: p.GIS, SoilTemp: p.SoilTemp, Log: log},
		Log:     log,
	}
	matrix = builder.Build(ctx, grower, growingCycle, overview, verified, manure, coverCrop, splitFields)
	if err = p.Store.SaveDecisionMatrix(ctx, key(grower, growingCycle, domain.ReportDecisionMatrix), matrix); err != nil {
		return nil, fmt.Errorf("save decision matrix: %w", err)
	}
	return matrix, nil
}

// AssembleBulkUpload maps the annotated overview and the decision matrix
// into the bulk-upload record set and persists it with the exclusion
// summary.
func (p Pipeline) AssembleBulkUpload(ctx context.Context, grower string, growingCycle int) (rows []BulkUploadRow, err error) {
	log := p.log()
	start := time.Now()
	defer func() { p.observe(ctx, "bulk_upload", start, err) }()

	overview, err := p.Store.LoadOperations(ctx, key(grower, growingCycle, domain.ReportComprehensive))
	if err != nil {
		return nil, fmt.Errorf("load annotated overview: %w", err)
	}
	matrix, err := p.Store.LoadDecisionMatrix(ctx, key(grower, growingCycle, domain.ReportDecisionMatrix))
	if err != nil {
		return nil, fmt.Errorf("load decision matrix: %w", err)
	}
	verified, err := p.Store.LoadVerified(ctx, key(grower, growingCycle, domain.ReportVerifiedFields))
	if err != nil {
		return nil, fmt.Errorf("load verified fields: %w", err)
	}

	assembler := Assembler{Catalog: p.Catalog, Converter: p.Converter, Log: log}
	rows, exclusions := assembler.Assemble(overview, matrix, verified)

	if err = p.Store.SaveBulkUpload(ctx, key(grower, growingCycle, domain.ReportBulkUpload), rows); err != nil {
		return nil, fmt.Errorf("save bulk upload: %w", err)
	}
	if err = p.Store.SaveExclusions(ctx, key(grower, growingCycle, domain.ReportExclusions), exclusions); err != nil {
		return nil, fmt.Errorf("save exclusions: %w", err)
	}
	return rows, nil
}

// ApplyAttestations overlays the stored attestation records onto the bulk
// upload and appends any manual exclusions to the exclusion summary.
func (p Pipeline) ApplyAttestations(ctx context.Context, grower string, growingCycle int) (rows []BulkUploadRow, err error) {
	log := p.log()
	start := time.Now()
	defer func() { p.observe(ctx, "attestation_overwrite", start, err) }()

	log.Info("initiating attestation overwrite", "grower", grower, "cycle", growingCycle)
	rows, err = p.Store.LoadBulkUpload(ctx, key(grower, growingCycle, domain.ReportBulkUpload))
	if err != nil {
		return nil, fmt.Errorf("load bulk upload: %w", err)
	}
	if len(rows) == 0 {
		log.Error("bulk upload unavailable", "grower", grower, "cycle", growingCycle)
		return nil, nil
	}
	attestations, err := p.Store.LoadAttestations(ctx, key(grower, growingCycle, domain.ReportAttestations))
	if err != nil {
		return nil, fmt.Errorf("load attestations: %w", err)
	}
	exclusions, err := p.Store.LoadExclusions(ctx, key(grower, growingCycle, domain.ReportExclusions))
	if err != nil {
		return nil, fmt.Errorf("load exclusions: %w", err)
	}

	engine := AttestationEngine{
		Catalog:    p.Catalog,
		CoverCrops: p.CoverCrops,
		Converter:  p.Converter,
		Log:        log,
	}
	rows, manual := engine.Apply(rows, attestations)
	exclusions = append(exclusions, manual...)

	if err = p.Store.SaveBulkUpload(ctx, key(grower, growingCycle, domain.ReportBulkUpload), rows); err != nil {
		return nil, fmt.Errorf("save bulk upload: %w", err)
	}
	if err = p.Store.SaveExclusions(ctx, key(grower, growingCycle, domain.ReportExclusions), exclusions); err != nil {
		return nil, fmt.Errorf("save exclusions: %w", err)
	}
	return rows, nil
}

// Run chains all stages for one grower. A failing stage is logged and the
// run continues with whatever the store holds, so one grower's bad data
// never blocks the rest of a multi-grower invocation; the collected errors
// are returned for the caller's summary.
func (p Pipeline) Run(ctx context.Context, grower string, growingCycle int, sources []SourceOperations) error {
	log := p.log()
	var errs []error

	if _, err := p.Merge(ctx, grower, growingCycle, sources); err != nil {
		log.Error("merge stage failed", "grower", grower, "error", err.Error())
		errs = append(errs, fmt.Errorf("merge: %w", err))
	}
	if _, err := p.BuildDecisionMatrix(ctx, grower, growingCycle); err != nil {
		log.Error("decision matrix stage failed", "grower", grower, "error", err.Error())
		errs = append(errs, fmt.Errorf("decision matrix: %w", err))
	}
	if _, err := p.AssembleBulkUpload(ctx, grower, growingCycle); err != nil {
		log.Error("bulk upload stage failed", "grower", grower, "error", err.Error())
		errs = append(errs, fmt.Errorf("bulk upload: %w", err))
	}
	if _, err := p.ApplyAttestations(ctx, grower, growingCycle); err != nil {
		log.Error("attestation stage failed", "grower", grower, "error", err.Error())
		errs = append(errs, fmt.Errorf("attestation overwrite: %w", err))
	}
	return errors.Join(errs...)
}

// annotateOverview enriches the comprehensive table with the per-(field,
// crop) reference acreage decision, normalized input types, EEF product
// flags and per-application fertilizer timing.
func (p Pipeline) annotateOverview(overview []FieldOperation, acreage []AcreageRecord, growingCycle int, log Logger) []FieldOperation {
	type acreageDecision struct {
		acres  *float64
		reason *string
	}
	decisions := make(map[acreageKey]acreageDecision)

	out := make([]FieldOperation, len(overview))
	copy(out, overview)
	for i := range out {
		crop := ""
		if out[i].CropType != nil {
			crop = *out[i].CropType
		}
		k := acreageKey{field: out[i].FieldName, crop: crop}
		decision, ok := decisions[k]
		if !ok {
			decision.acres, decision.reason = SelectReferenceAcreage(out[i].FieldName, crop, acreage, log)
			decisions[k] = decision
		}
		out[i].ReferenceAcreage = decision.acres
		out[i].ExclusionReason = decision.reason

		if out[i].InputType == nil {
			out[i].InputType = AdjustInputType(out[i].ProductType, out[i].AppliedUnit, log)
		}
	}
	out = AnnotateEEFProducts(out, p.Catalog)
	return AnnotateFertilizerTiming(out, growingCycle)
}

// productTypeRows filters the overview to application rows whose product is
// classified under the given breakdown product type, e.g. manure or cover
// crop.
func (p Pipeline) productTypeRows(overview []FieldOperation, productType string) []FieldOperation {
	if p.Catalog == nil {
		return nil
	}
	var rows []FieldOperation
	for _, op := range overview {
		if op.Product == nil {
			continue
		}
		breakdown, ok := p.Catalog.Lookup(*op.Product)
		if !ok || !strings.EqualFold(breakdown.ProductType, productType) {
			continue
		}
		rows = append(rows, op)
	}
	return rows
}
