package reports

import (
	"context"
	"fmt"

	"feedstockcore/pkg/domain"
)

// Artifacts persists one raw CSV payload per report key. Save records a new
// revision; Load returns the newest revision's bytes, or nil when the key has
// never been written.
type Artifacts interface {
	Save(ctx context.Context, key domain.ReportKey, data []byte) error
	Load(ctx context.Context, key domain.ReportKey) ([]byte, error)
}

// Store adapts an Artifacts payload backend to the full report store
// contract. Every report category shares one codec pattern, so backends only
// implement raw byte persistence.
type Store struct {
	Artifacts Artifacts
}

var _ domain.ReportStore = (*Store)(nil)

// NewStore returns a report store over the given payload backend.
func NewStore(artifacts Artifacts) *Store {
	return &Store{Artifacts: artifacts}
}

func (s *Store) save(ctx context.Context, key domain.ReportKey, data []byte, err error) error {
	if err != nil {
		return fmt.Errorf("encode %s: %w", key.Type, err)
	}
	if err := s.Artifacts.Save(ctx, key, data); err != nil {
		return fmt.Errorf("save %s: %w", key.Type, err)
	}
	return nil
}

func (s *Store) load(ctx context.Context, key domain.ReportKey) ([]byte, error) {
	data, err := s.Artifacts.Load(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key.Type, err)
	}
	return data, nil
}

func (s *Store) SaveOperations(ctx context.Context, key domain.ReportKey, ops []domain.FieldOperation) error {
	data, err := EncodeOperations(ops)
	return s.save(ctx, key, data, err)
}

func (s *Store) LoadOperations(ctx context.Context, key domain.ReportKey) ([]domain.FieldOperation, error) {
	data, err := s.load(ctx, key)
	if err != nil {
		return nil, err
	}
	return DecodeOperations(data)
}

func (s *Store) SaveAcreage(ctx context.Context, key domain.ReportKey, records []domain.AcreageRecord) error {
	data, err := EncodeAcreage(records)
	return s.save(ctx, key, data, err)
}

func (s *Store) LoadAcreage(ctx context.Context, key domain.ReportKey) ([]domain.AcreageRecord, error) {
	data, err := s.load(ctx, key)
	if err != nil {
		return nil, err
	}
	return DecodeAcreage(data)
}

func (s *Store) SaveCoverage(ctx context.Context, key domain.ReportKey, records []domain.CoverageRecord) error {
	data, err := EncodeCoverage(records)
	return s.save(ctx, key, data, err)
}

func (s *Store) LoadCoverage(ctx context.Context, key domain.ReportKey) ([]domain.CoverageRecord, error) {
	data, err := s.load(ctx, key)
	if err != nil {
		return nil, err
	}
	return DecodeCoverage(data)
}

func (s *Store) SaveLocations(ctx context.Context, key domain.ReportKey, records []domain.FieldLocation) error {
	data, err := EncodeLocations(records)
	return s.save(ctx, key, data, err)
}

func (s *Store) LoadLocations(ctx context.Context, key domain.ReportKey) ([]domain.FieldLocation, error) {
	data, err := s.load(ctx, key)
	if err != nil {
		return nil, err
	}
	return DecodeLocations(data)
}

func (s *Store) SaveVerified(ctx context.Context, key domain.ReportKey, fields []domain.VerifiedField) error {
	data, err := EncodeVerified(fields)
	return s.save(ctx, key, data, err)
}

func (s *Store) LoadVerified(ctx context.Context, key domain.ReportKey) ([]domain.VerifiedField, error) {
	data, err := s.load(ctx, key)
	if err != nil {
		return nil, err
	}
	return DecodeVerified(data)
}

func (s *Store) SaveSplitFields(ctx context.Context, key domain.ReportKey, records []domain.SplitFieldRecord) error {
	data, err := EncodeSplitFields(records)
	return s.save(ctx, key, data, err)
}

func (s *Store) LoadSplitFields(ctx context.Context, key domain.ReportKey) ([]domain.SplitFieldRecord, error) {
	data, err := s.load(ctx, key)
	if err != nil {
		return nil, err
	}
	return DecodeSplitFields(data)
}

func (s *Store) SaveAttestations(ctx context.Context, key domain.ReportKey, attestations []domain.Attestation) error {
	data, err := EncodeAttestations(attestations)
	return s.save(ctx, key, data, err)
}

func (s *Store) LoadAttestations(ctx context.Context, key domain.ReportKey) ([]domain.Attestation, error) {
	data, err := s.load(ctx, key)
	if err != nil {
		return nil, err
	}
	return DecodeAttestations(data)
}

func (s *Store) SaveDecisionMatrix(ctx context.Context, key domain.ReportKey, rows []domain.DecisionMatrixRow) error {
	data, err := EncodeDecisionMatrix(rows)
	return s.save(ctx, key, data, err)
}

func (s *Store) LoadDecisionMatrix(ctx context.Context, key domain.ReportKey) ([]domain.DecisionMatrixRow, error) {
	data, err := s.load(ctx, key)
	if err != nil {
		return nil, err
	}
	return DecodeDecisionMatrix(data)
}

func (s *Store) SaveBulkUpload(ctx context.Context, key domain.ReportKey, rows []domain.BulkUploadRow) error {
	data, err := EncodeBulkUpload(rows)
	return s.save(ctx, key, data, err)
}

func (s *Store) LoadBulkUpload(ctx context.Context, key domain.ReportKey) ([]domain.BulkUploadRow, error) {
	data, err := s.load(ctx, key)
	if err != nil {
		return nil, err
	}
	return DecodeBulkUpload(data)
}

func (s *Store) SaveExclusions(ctx context.Context, key domain.ReportKey, records []domain.ExclusionRecord) error {
	data, err := EncodeExclusions(records)
	return s.save(ctx, key, data, err)
}

func (s *Store) LoadExclusions(ctx context.Context, key domain.ReportKey) ([]domain.ExclusionRecord, error) {
	data, err := s.load(ctx, key)
	if err != nil {
		return nil, err
	}
	return DecodeExclusions(data)
}
