// Package refdata loads the read-only reference tables the pipeline depends
// on: the chemical product breakdown, the cover-crop yield table, and the
// unit conversion table. Tables are loaded once at startup and injected; the
// loaders never write.
package refdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"feedstockcore/pkg/domain"
)

// Catalog is the product breakdown table keyed by lowercased product name.
type Catalog struct {
	entries map[string]domain.ProductBreakdown
	order   []string
}

var _ domain.ProductCatalog = (*Catalog)(nil)

var catalogHeader = []string{
	"product_name", "product_type", "percent_n", "percent_p2o5", "percent_k2o",
	"lbs_per_gal", "lbs_ai_per_gal", "manure_type",
}

// LoadCatalog reads the product breakdown CSV at path.
func LoadCatalog(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open product breakdown: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ReadCatalog(f)
}

// ReadCatalog parses a product breakdown table from r. Rows without a product
// name are skipped, matching the source spreadsheet's trailing blank rows.
func ReadCatalog(r io.Reader) (*Catalog, error) {
	rows, err := readTable(r, catalogHeader)
	if err != nil {
		return nil, fmt.Errorf("product breakdown: %w", err)
	}
	c := &Catalog{entries: make(map[string]domain.ProductBreakdown, len(rows))}
	for _, row := range rows {
		name := strings.TrimSpace(row[0])
		if name == "" {
			continue
		}
		b := domain.ProductBreakdown{
			ProductName: name,
			ProductType: strings.TrimSpace(row[1]),
			ManureType:  strings.TrimSpace(row[7]),
		}
		if b.PercentN, err = optFloat(row[2]); err != nil {
			return nil, fmt.Errorf("percent_n for %q: %w", name, err)
		}
		if b.PercentP2O5, err = optFloat(row[3]); err != nil {
			return nil, fmt.Errorf("percent_p2o5 for %q: %w", name, err)
		}
		if b.PercentK2O, err = optFloat(row[4]); err != nil {
			return nil, fmt.Errorf("percent_k2o for %q: %w", name, err)
		}
		if b.LbsPerGal, err = optFloat(row[5]); err != nil {
			return nil, fmt.Errorf("lbs_per_gal for %q: %w", name, err)
		}
		if b.LbsAIPerGal, err = optFloat(row[6]); err != nil {
			return nil, fmt.Errorf("lbs_ai_per_gal for %q: %w", name, err)
		}
		b.EEFProduct = strings.EqualFold(b.ProductType, "EEF")
		key := strings.ToLower(name)
		if _, dup := c.entries[key]; !dup {
			c.order = append(c.order, key)
		}
		c.entries[key] = b
	}
	return c, nil
}

// Lookup returns the breakdown entry for an exact product name. Matching is
// case-insensitive and ignores surrounding whitespace.
func (c *Catalog) Lookup(productName string) (domain.ProductBreakdown, bool) {
	b, ok := c.entries[strings.ToLower(strings.TrimSpace(productName))]
	return b, ok
}

// IsProduct reports whether the name exists in the table at all.
func (c *Catalog) IsProduct(productName string) bool {
	_, ok := c.Lookup(productName)
	return ok
}

// Fertilizers returns the fertilizer and EEF entries in table order.
func (c *Catalog) Fertilizers() []domain.ProductBreakdown {
	var out []domain.ProductBreakdown
	for _, key := range c.order {
		b := c.entries[key]
		if strings.EqualFold(b.ProductType, "fertilizer") || b.EEFProduct {
			out = append(out, b)
		}
	}
	return out
}

// readTable parses a CSV with the expected header and returns the data rows.
func readTable(r io.Reader, header []string) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(header)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty table")
	}
	for i, col := range records[0] {
		if strings.TrimSpace(col) != header[i] {
			return nil, fmt.Errorf("unexpected column %q at position %d, want %q", col, i, header[i])
		}
	}
	return records[1:], nil
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
