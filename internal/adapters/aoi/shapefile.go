package aoi

import (
	"fmt"

	shp "github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
)

// readShapefile reads polygon records from an ESRI Shapefile. Non-polygon
// shapes are skipped.
func readShapefile(path string) ([]orb.Geometry, error) {
	r, err := shp.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening shapefile: %w", err)
	}
	defer func() { _ = r.Close() }()

	var geoms []orb.Geometry
	for r.Next() {
		_, shape := r.Shape()
		switch s := shape.(type) {
		case *shp.Polygon:
			if g := polygonFromShape(s.Parts, s.Points); g != nil {
				geoms = append(geoms, g)
			}
		case *shp.PolygonZ:
			if g := polygonFromShape(s.Parts, s.Points); g != nil {
				geoms = append(geoms, g)
			}
		}
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("reading shapefile: %w", err)
	}
	return geoms, nil
}

// polygonFromShape rebuilds geometry from a shapefile record. Shapefile
// ring winding is the opposite of GeoJSON: clockwise rings are exteriors,
// counterclockwise rings are holes of the preceding exterior. Records with
// several exterior rings become a MultiPolygon.
func polygonFromShape(parts []int32, points []shp.Point) orb.Geometry {
	rings := splitRings(parts, points)
	if len(rings) == 0 {
		return nil
	}

	var polys orb.MultiPolygon
	for _, ring := range rings {
		if ring.Orientation() == orb.CW && len(polys) > 0 {
			// Shapefile CW exterior; start a new polygon.
			polys = append(polys, orb.Polygon{ring})
			continue
		}
		if len(polys) == 0 {
			polys = append(polys, orb.Polygon{ring})
			continue
		}
		polys[len(polys)-1] = append(polys[len(polys)-1], ring)
	}

	if len(polys) == 1 {
		return polys[0]
	}
	return polys
}

func splitRings(parts []int32, points []shp.Point) []orb.Ring {
	var rings []orb.Ring
	for i, start := range parts {
		end := len(points)
		if i+1 < len(parts) {
			end = int(parts[i+1])
		}
		if int(start) >= end {
			continue
		}
		ring := make(orb.Ring, 0, end-int(start))
		for _, p := range points[start:end] {
			ring = append(ring, orb.Point{p.X, p.Y})
		}
		rings = append(rings, ring)
	}
	return rings
}
