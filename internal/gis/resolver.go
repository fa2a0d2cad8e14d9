// Package gis resolves field polygon attributes from the shapefile overview
// report. Geometry processing happens upstream; this package only serves the
// extracted acreage and centroid figures.
package gis

import (
	"strings"

	"feedstockcore/pkg/domain"
)

// Resolver serves polygon-derived field attributes from loaded field
// locations. Field names match case-insensitively, trimmed, because provider
// exports and shapefile attribute tables rarely agree on casing.
type Resolver struct {
	locations map[string]domain.FieldLocation
}

var _ domain.GISResolver = (*Resolver)(nil)

// NewResolver indexes the given field locations. Later duplicates of a field
// name win, mirroring how a re-exported shapefile supersedes an older one.
func NewResolver(locations []domain.FieldLocation) *Resolver {
	r := &Resolver{locations: make(map[string]domain.FieldLocation, len(locations))}
	for _, loc := range locations {
		r.locations[normalize(loc.FieldName)] = loc
	}
	return r
}

func normalize(fieldName string) string {
	return strings.ToLower(strings.TrimSpace(fieldName))
}

// AcreageForField returns the polygon acreage for a field.
func (r *Resolver) AcreageForField(fieldName string) (float64, bool) {
	loc, ok := r.locations[normalize(fieldName)]
	if !ok || loc.AcreageCalc == nil {
		return 0, false
	}
	return *loc.AcreageCalc, true
}

// CentroidForField returns the polygon centroid for a field.
func (r *Resolver) CentroidForField(fieldName string) (lat, long float64, ok bool) {
	loc, found := r.locations[normalize(fieldName)]
	if !found || loc.CentroidLat == nil || loc.CentroidLong == nil {
		return 0, 0, false
	}
	return *loc.CentroidLat, *loc.CentroidLong, true
}
