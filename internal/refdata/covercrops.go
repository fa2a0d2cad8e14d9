package refdata

import (
	"fmt"
	"io"
	"os"
	"strings"

	"feedstockcore/pkg/domain"
)

// CoverCrops is the FD-CIC cover-crop reference table keyed by lowercased
// cover-crop type.
type CoverCrops struct {
	entries map[string]domain.CoverCropEntry
}

var _ domain.CoverCropTable = (*CoverCrops)(nil)

var coverCropHeader = []string{"cover_crop_type", "yield_mt_per_hectare", "n_content_total"}

// LoadCoverCrops reads the cover-crop table CSV at path.
func LoadCoverCrops(path string) (*CoverCrops, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cover crop table: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ReadCoverCrops(f)
}

// ReadCoverCrops parses a cover-crop table from r.
func ReadCoverCrops(r io.Reader) (*CoverCrops, error) {
	rows, err := readTable(r, coverCropHeader)
	if err != nil {
		return nil, fmt.Errorf("cover crop table: %w", err)
	}
	c := &CoverCrops{entries: make(map[string]domain.CoverCropEntry, len(rows))}
	for _, row := range rows {
		name := strings.TrimSpace(row[0])
		if name == "" {
			continue
		}
		entry := domain.CoverCropEntry{CoverCropType: name}
		if entry.YieldMtPerHectare, err = optFloat(row[1]); err != nil {
			return nil, fmt.Errorf("yield_mt_per_hectare for %q: %w", name, err)
		}
		if entry.NContentTotal, err = optFloat(row[2]); err != nil {
			return nil, fmt.Errorf("n_content_total for %q: %w", name, err)
		}
		c.entries[strings.ToLower(name)] = entry
	}
	return c, nil
}

// Lookup returns the entry for a cover-crop type, matching case-insensitively.
func (c *CoverCrops) Lookup(coverCropType string) (domain.CoverCropEntry, bool) {
	entry, ok := c.entries[strings.ToLower(strings.TrimSpace(coverCropType))]
	return entry, ok
}
