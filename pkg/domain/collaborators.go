package domain

import (
	"context"
	"time"
)

// TemperatureSample is one hourly soil-temperature observation.
type TemperatureSample struct {
	Timestamp   time.Time
	Temperature float64
}

// SoilTemperatureProvider fetches an hourly soil-temperature series for a
// point. The nitrogen-management classifier derives the fall-application
// cutoff date from this series.
type SoilTemperatureProvider interface {
	HourlySeries(ctx context.Context, start, end time.Time, lat, long float64) ([]TemperatureSample, error)
}

// GISResolver exposes the polygon-derived attributes of known fields.
// Geometry and shapefile handling live behind this interface.
type GISResolver interface {
	AcreageForField(fieldName string) (float64, bool)
	CentroidForField(fieldName string) (lat, long float64, ok bool)
}
