package aoi

import (
	"testing"

	shp "github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
)

func TestPolygonFromShapeSingleRing(t *testing.T) {
	// Shapefile exterior rings wind clockwise.
	points := []shp.Point{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 0}, {X: 0, Y: 0}}

	g := polygonFromShape([]int32{0}, points)
	poly, ok := g.(orb.Polygon)
	if !ok {
		t.Fatalf("expected orb.Polygon, got %T", g)
	}
	if len(poly) != 1 {
		t.Fatalf("expected 1 ring, got %d", len(poly))
	}
	if len(poly[0]) != 5 {
		t.Errorf("expected 5 points, got %d", len(poly[0]))
	}
}

func TestPolygonFromShapeWithHole(t *testing.T) {
	outer := []shp.Point{{X: 0, Y: 0}, {X: 0, Y: 10}, {X: 10, Y: 10}, {X: 10, Y: 0}, {X: 0, Y: 0}}
	hole := []shp.Point{{X: 2, Y: 2}, {X: 4, Y: 2}, {X: 4, Y: 4}, {X: 2, Y: 4}, {X: 2, Y: 2}}

	points := append(append([]shp.Point{}, outer...), hole...)
	g := polygonFromShape([]int32{0, 5}, points)

	poly, ok := g.(orb.Polygon)
	if !ok {
		t.Fatalf("expected orb.Polygon, got %T", g)
	}
	if len(poly) != 2 {
		t.Fatalf("expected exterior plus hole, got %d rings", len(poly))
	}
}

func TestPolygonFromShapeMultipleExteriors(t *testing.T) {
	first := []shp.Point{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 0}, {X: 0, Y: 0}}
	second := []shp.Point{{X: 5, Y: 5}, {X: 5, Y: 6}, {X: 6, Y: 6}, {X: 6, Y: 5}, {X: 5, Y: 5}}

	points := append(append([]shp.Point{}, first...), second...)
	g := polygonFromShape([]int32{0, 5}, points)

	mp, ok := g.(orb.MultiPolygon)
	if !ok {
		t.Fatalf("expected orb.MultiPolygon, got %T", g)
	}
	if len(mp) != 2 {
		t.Errorf("expected 2 polygons, got %d", len(mp))
	}
}

func TestPolygonFromShapeEmpty(t *testing.T) {
	if g := polygonFromShape(nil, nil); g != nil {
		t.Errorf("expected nil geometry, got %v", g)
	}
}

func TestSplitRings(t *testing.T) {
	points := []shp.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 2}, {X: 3, Y: 2}}
	rings := splitRings([]int32{0, 3}, points)

	if len(rings) != 2 {
		t.Fatalf("expected 2 rings, got %d", len(rings))
	}
	if len(rings[0]) != 3 || len(rings[1]) != 2 {
		t.Errorf("unexpected ring sizes: %d, %d", len(rings[0]), len(rings[1]))
	}
}
