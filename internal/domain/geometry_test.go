package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/paulmach/orb"
)

// unitSquare is a valid CCW unit square ring.
func unitSquare() orb.Polygon {
	return orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}}
}

func TestNormalizeAOIValidPolygon(t *testing.T) {
	poly, err := NormalizeAOI(unitSquare())
	if err != nil {
		t.Fatalf("NormalizeAOI() error = %v", err)
	}
	if !poly.Equal(unitSquare()) {
		t.Errorf("expected polygon unchanged, got %v", poly)
	}
}

func TestNormalizeAOIIdempotent(t *testing.T) {
	first, err := NormalizeAOI(unitSquare())
	if err != nil {
		t.Fatalf("first NormalizeAOI() error = %v", err)
	}
	second, err := NormalizeAOI(first)
	if err != nil {
		t.Fatalf("second NormalizeAOI() error = %v", err)
	}
	if !first.Equal(second) {
		t.Errorf("normalization is not idempotent: %v != %v", first, second)
	}
}

func TestNormalizeAOIMultiPolygonLargest(t *testing.T) {
	small := orb.Polygon{{{10, 10}, {11, 10}, {11, 11}, {10, 11}, {10, 10}}}
	large := orb.Polygon{{{0, 0}, {5, 0}, {5, 5}, {0, 5}, {0, 0}}}

	tests := []struct {
		name  string
		input orb.MultiPolygon
		want  orb.Polygon
	}{
		{
			name:  "largest selected when last",
			input: orb.MultiPolygon{small, large},
			want:  large,
		},
		{
			name:  "largest selected when first",
			input: orb.MultiPolygon{large, small},
			want:  large,
		},
		{
			name:  "equal areas keep first",
			input: orb.MultiPolygon{small, orb.Polygon{{{20, 20}, {21, 20}, {21, 21}, {20, 21}, {20, 20}}}},
			want:  small,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeAOI(tt.input)
			if err != nil {
				t.Fatalf("NormalizeAOI() error = %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("NormalizeAOI() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalizeAOIRepairs(t *testing.T) {
	tests := []struct {
		name  string
		input orb.Polygon
	}{
		{
			name:  "open ring gets closed",
			input: orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 1}}},
		},
		{
			name:  "duplicate vertices removed",
			input: orb.Polygon{{{0, 0}, {1, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}},
		},
		{
			name:  "clockwise exterior reoriented",
			input: orb.Polygon{{{0, 0}, {0, 1}, {1, 1}, {1, 0}, {0, 0}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeAOI(tt.input)
			if err != nil {
				t.Fatalf("NormalizeAOI() error = %v", err)
			}
			if err := validatePolygon(got); err != nil {
				t.Errorf("repaired polygon still invalid: %v", err)
			}
			if got[0].Orientation() != orb.CCW {
				t.Errorf("exterior ring not CCW after repair")
			}
		})
	}
}

func TestNormalizeAOIErrors(t *testing.T) {
	tests := []struct {
		name  string
		input orb.Geometry
	}{
		{
			name:  "nil geometry",
			input: nil,
		},
		{
			name:  "empty polygon",
			input: orb.Polygon{},
		},
		{
			name:  "empty multipolygon",
			input: orb.MultiPolygon{},
		},
		{
			name:  "point is unsupported",
			input: orb.Point{1, 2},
		},
		{
			name:  "linestring is unsupported",
			input: orb.LineString{{0, 0}, {1, 1}},
		},
		{
			// Bowtie: crossing segments cannot be fixed by the repair pass.
			name:  "self-intersecting polygon",
			input: orb.Polygon{{{0, 0}, {2, 2}, {2, 0}, {0, 2}, {0, 0}}},
		},
		{
			name:  "zero-area polygon",
			input: orb.Polygon{{{0, 0}, {1, 1}, {2, 2}, {0, 0}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizeAOI(tt.input)
			if err == nil {
				t.Fatal("NormalizeAOI() expected error, got nil")
			}
			var gerr *GeometryError
			if !errors.As(err, &gerr) {
				t.Errorf("expected *GeometryError, got %T", err)
			}
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("expected error to wrap ErrInvalidInput")
			}
		})
	}
}

func TestRingSelfIntersects(t *testing.T) {
	square := orb.Ring{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}
	if ringSelfIntersects(square) {
		t.Error("square reported as self-intersecting")
	}

	bowtie := orb.Ring{{0, 0}, {2, 2}, {2, 0}, {0, 2}, {0, 0}}
	if !ringSelfIntersects(bowtie) {
		t.Error("bowtie not reported as self-intersecting")
	}
}

func TestTruncatedWKT(t *testing.T) {
	full := TruncatedWKT(unitSquare(), 10000)
	if !strings.HasPrefix(full, "POLYGON") {
		t.Errorf("expected WKT polygon, got %q", full)
	}

	cut := TruncatedWKT(unitSquare(), 12)
	if len(cut) != 15 || !strings.HasSuffix(cut, "...") {
		t.Errorf("expected 12-byte prefix with ellipsis, got %q", cut)
	}
}
