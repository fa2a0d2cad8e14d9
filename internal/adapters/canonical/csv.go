// Package canonical reads provider exports already mapped to the canonical
// operation schema. Provider-specific column mapping happens upstream; this
// adapter only parses the common CSV layout.
package canonical

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"feedstockcore/pkg/domain"
)

// Adapter reads canonical operation CSV files for one named data source.
type Adapter struct {
	Name string
}

var _ domain.ProviderAdapter = (*Adapter)(nil)

// New returns an adapter for the named data source.
func New(name string) *Adapter { return &Adapter{Name: name} }

// Source returns the data source name rows are attributed to.
func (a *Adapter) Source() string { return a.Name }

var header = []string{
	"client", "farm_name", "field_name", "operation_type", "operation_name",
	"crop_type", "sub_crop_type", "product", "product_type",
	"operation_start", "operation_end", "area_applied", "applied_rate",
	"applied_total", "applied_unit", "total_dry_yield", "moisture",
	"growing_cycle", "data_source",
}

// Read parses the canonical operation CSV at the given path. Rows without an
// explicit data source are attributed to the adapter's source name.
func (a *Adapter) Read(ctx context.Context, source string) ([]domain.CanonicalOperation, error) {
	f, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("open %s export: %w", a.Name, err)
	}
	defer func() { _ = f.Close() }()
	ops, err := a.parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s export %s: %w", a.Name, source, err)
	}
	return ops, ctx.Err()
}

func (a *Adapter) parse(r io.Reader) ([]domain.CanonicalOperation, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(header)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	for i, col := range records[0] {
		if strings.TrimSpace(col) != header[i] {
			return nil, fmt.Errorf("unexpected column %q at position %d, want %q", col, i, header[i])
		}
	}

	ops := make([]domain.CanonicalOperation, 0, len(records)-1)
	for n, row := range records[1:] {
		var op domain.CanonicalOperation
		op.Client = row[0]
		op.FarmName = row[1]
		op.FieldName = row[2]
		op.OperationType = domain.OperationType(row[3])
		op.OperationName = row[4]
		op.CropType = optString(row[5])
		op.SubCropType = optString(row[6])
		op.Product = optString(row[7])
		op.ProductType = optString(row[8])
		if op.OperationStart, err = optTime(row[9]); err != nil {
			return nil, fmt.Errorf("row %d: operation_start: %w", n+2, err)
		}
		if op.OperationEnd, err = optTime(row[10]); err != nil {
			return nil, fmt.Errorf("row %d: operation_end: %w", n+2, err)
		}
		if op.AreaApplied, err = optFloat(row[11]); err != nil {
			return nil, fmt.Errorf("row %d: area_applied: %w", n+2, err)
		}
		if op.AppliedRate, err = optFloat(row[12]); err != nil {
			return nil, fmt.Errorf("row %d: applied_rate: %w", n+2, err)
		}
		if op.AppliedTotal, err = optFloat(row[13]); err != nil {
			return nil, fmt.Errorf("row %d: applied_total: %w", n+2, err)
		}
		op.AppliedUnit = row[14]
		if op.TotalDryYield, err = optFloat(row[15]); err != nil {
			return nil, fmt.Errorf("row %d: total_dry_yield: %w", n+2, err)
		}
		if op.Moisture, err = optFloat(row[16]); err != nil {
			return nil, fmt.Errorf("row %d: moisture: %w", n+2, err)
		}
		if row[17] != "" {
			if op.GrowingCycle, err = strconv.Atoi(strings.TrimSpace(row[17])); err != nil {
				return nil, fmt.Errorf("row %d: growing_cycle: %w", n+2, err)
			}
		}
		op.DataSource = row[18]
		if op.DataSource == "" {
			op.DataSource = a.Name
		}
		ops = append(ops, op)
	}
	return ops, nil
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optFloat(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

var timeLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}

func optTime(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return &ts, nil
		}
	}
	return nil, fmt.Errorf("unrecognized timestamp %q", s)
}
