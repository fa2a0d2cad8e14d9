package gis

import (
	"testing"

	"feedstockcore/pkg/domain"
)

func fptr(v float64) *float64 { return &v }

func TestResolver(t *testing.T) {
	resolver := NewResolver([]domain.FieldLocation{
		{FieldName: "North 40", AcreageCalc: fptr(98.6), CentroidLat: fptr(41.5), CentroidLong: fptr(-93.6)},
		{FieldName: "South 12", AcreageCalc: fptr(12.1)},
		{FieldName: "North 40", AcreageCalc: fptr(99.2), CentroidLat: fptr(41.51), CentroidLong: fptr(-93.61)},
	})

	acres, ok := resolver.AcreageForField("north 40 ")
	if !ok || acres != 99.2 {
		t.Fatalf("expected latest North 40 acreage, got (%v, %v)", acres, ok)
	}

	lat, long, ok := resolver.CentroidForField("North 40")
	if !ok || lat != 41.51 || long != -93.61 {
		t.Fatalf("unexpected centroid (%v, %v, %v)", lat, long, ok)
	}

	if _, _, ok := resolver.CentroidForField("South 12"); ok {
		t.Fatal("field without centroid must report not ok")
	}
	if _, ok := resolver.AcreageForField("East 80"); ok {
		t.Fatal("unknown field must report not ok")
	}
}
