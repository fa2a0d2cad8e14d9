package refdata

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"feedstockcore/internal/core"
	"feedstockcore/pkg/domain"
)

type conversion struct {
	factor     float64
	targetUnit string
}

// Converter normalizes quantities using the unit conversion table: liquid
// units to GAL, dry units to LBS, seed units to BAG. Units absent from the
// table pass through unchanged with a warning.
type Converter struct {
	conversions map[string]conversion
	log         core.Logger
}

var _ domain.UnitConverter = (*Converter)(nil)

var conversionHeader = []string{"unit", "conversion_factor", "target_unit"}

// LoadConverter reads the unit conversion CSV at path.
func LoadConverter(path string, log core.Logger) (*Converter, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open unit conversions: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ReadConverter(f, log)
}

// ReadConverter parses a unit conversion table from r. Source units are keyed
// lowercase, matching the table's own convention.
func ReadConverter(r io.Reader, log core.Logger) (*Converter, error) {
	rows, err := readTable(r, conversionHeader)
	if err != nil {
		return nil, fmt.Errorf("unit conversions: %w", err)
	}
	if log == nil {
		log = core.NopLogger()
	}
	c := &Converter{conversions: make(map[string]conversion, len(rows)), log: log}
	for _, row := range rows {
		unit := strings.ToLower(strings.TrimSpace(row[0]))
		if unit == "" {
			continue
		}
		factor, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("conversion_factor for %q: %w", unit, err)
		}
		c.conversions[unit] = conversion{factor: factor, targetUnit: strings.TrimSpace(row[2])}
	}
	return c, nil
}

// Convert applies the table's factor for the unit. Unknown units pass through
// so one unrecognized provider unit cannot sink a whole merge.
func (c *Converter) Convert(quantity float64, unit string) (float64, string) {
	conv, ok := c.conversions[strings.ToLower(strings.TrimSpace(unit))]
	if !ok {
		c.log.Warn("no conversion for unit, passing through", "unit", unit)
		return quantity, unit
	}
	return quantity * conv.factor, conv.targetUnit
}
