// Package domain contains the core business entities and value objects.
package domain

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/planar"
)

// NormalizeAOI reduces an arbitrary input geometry to a single usable AOI
// polygon. MultiPolygon inputs are reduced to their largest-area member
// (tie-break: first in input order); this is a deliberate lossy reduction,
// not a merge. An invalid polygon gets exactly one repair pass; if it is
// still invalid afterwards the AOI is rejected.
func NormalizeAOI(g orb.Geometry) (orb.Polygon, error) {
	if g == nil {
		return nil, &GeometryError{Reason: "AOI geometry is empty"}
	}

	var poly orb.Polygon
	switch v := g.(type) {
	case orb.Polygon:
		poly = v
	case orb.MultiPolygon:
		poly = largestMember(v)
	default:
		return nil, &GeometryError{
			Reason:   "unsupported geometry type for AOI",
			GeomType: g.GeoJSONType(),
		}
	}

	if isEmptyPolygon(poly) {
		return nil, &GeometryError{Reason: "AOI geometry is empty", GeomType: "Polygon"}
	}

	if err := validatePolygon(poly); err != nil {
		poly = repairPolygon(poly)
		if err := validatePolygon(poly); err != nil {
			return nil, &GeometryError{
				Reason:   "AOI polygon is invalid and could not be fixed",
				GeomType: "Polygon",
			}
		}
	}

	return poly, nil
}

// largestMember returns the member polygon with the greatest absolute
// planar area. A strictly greater area is required to displace an earlier
// member, which preserves input order on ties.
func largestMember(mp orb.MultiPolygon) orb.Polygon {
	var best orb.Polygon
	bestArea := -1.0
	for _, p := range mp {
		area := math.Abs(planar.Area(p))
		if area > bestArea {
			best = p
			bestArea = area
		}
	}
	return best
}

func isEmptyPolygon(p orb.Polygon) bool {
	return len(p) == 0 || len(p[0]) == 0
}

// validatePolygon checks topological validity: every ring is closed, has at
// least four points, encloses a non-zero area, and the exterior ring has no
// proper self-intersection.
func validatePolygon(p orb.Polygon) error {
	if isEmptyPolygon(p) {
		return &GeometryError{Reason: "AOI geometry is empty", GeomType: "Polygon"}
	}
	for i, ring := range p {
		if len(ring) < 4 {
			return &GeometryError{Reason: "ring has fewer than four points", GeomType: "Polygon"}
		}
		if !ring.Closed() {
			return &GeometryError{Reason: "ring is not closed", GeomType: "Polygon"}
		}
		if hasDuplicateVertices(ring) {
			return &GeometryError{Reason: "ring has duplicate consecutive vertices", GeomType: "Polygon"}
		}
		if ringSelfIntersects(ring) {
			return &GeometryError{Reason: "ring self-intersects", GeomType: "Polygon"}
		}
		if i == 0 && math.Abs(planar.Area(orb.Polygon{ring})) == 0 {
			return &GeometryError{Reason: "polygon has zero area", GeomType: "Polygon"}
		}
	}
	if p[0].Orientation() != orb.CCW {
		return &GeometryError{Reason: "exterior ring is not counterclockwise", GeomType: "Polygon"}
	}
	return nil
}

// repairPolygon performs the single repair pass: deduplicate consecutive
// vertices, close open rings, drop degenerate holes, and fix ring
// orientation (exterior CCW, holes CW). Self-intersections beyond what
// orientation and vertex cleanup resolve are not repairable here.
func repairPolygon(p orb.Polygon) orb.Polygon {
	var out orb.Polygon
	for i, ring := range p {
		r := dedupeRing(ring)
		if len(r) > 0 && !r.Closed() {
			r = append(r, r[0])
		}
		if len(r) < 4 {
			if i == 0 {
				return orb.Polygon{r}
			}
			continue // degenerate hole
		}
		want := orb.CCW
		if i > 0 {
			want = orb.CW
		}
		if r.Orientation() != want {
			r.Reverse()
		}
		out = append(out, r)
	}
	return out
}

func dedupeRing(ring orb.Ring) orb.Ring {
	out := make(orb.Ring, 0, len(ring))
	for _, pt := range ring {
		if len(out) > 0 && out[len(out)-1].Equal(pt) {
			continue
		}
		out = append(out, pt)
	}
	return out
}

func hasDuplicateVertices(ring orb.Ring) bool {
	for i := 1; i < len(ring); i++ {
		if ring[i].Equal(ring[i-1]) {
			return true
		}
	}
	return false
}

// ringSelfIntersects reports whether any two non-adjacent segments of the
// ring properly cross. Touching at shared endpoints between adjacent
// segments (including the closing segment) is allowed.
func ringSelfIntersects(ring orb.Ring) bool {
	n := len(ring) - 1 // segment count for a closed ring
	for i := 0; i < n; i++ {
		for j := i + 2; j < n; j++ {
			if i == 0 && j == n-1 {
				continue // first and last segments share the closing vertex
			}
			if segmentsCross(ring[i], ring[i+1], ring[j], ring[j+1]) {
				return true
			}
		}
	}
	return false
}

// segmentsCross reports a proper crossing of segments ab and cd.
func segmentsCross(a, b, c, d orb.Point) bool {
	o1 := cross(a, b, c)
	o2 := cross(a, b, d)
	o3 := cross(c, d, a)
	o4 := cross(c, d, b)
	return o1*o2 < 0 && o3*o4 < 0
}

func cross(o, a, b orb.Point) float64 {
	return (a[0]-o[0])*(b[1]-o[1]) - (a[1]-o[1])*(b[0]-o[0])
}

// TruncatedWKT returns the WKT representation of g cut to at most n bytes,
// with an ellipsis when cut. Used for the reference log.
func TruncatedWKT(g orb.Geometry, n int) string {
	s := wkt.MarshalString(g)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
