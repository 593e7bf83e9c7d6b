package aoi

import (
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// readGeoJSON reads a FeatureCollection, a single Feature, or a bare
// Geometry document.
func readGeoJSON(path string) ([]orb.Geometry, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-supplied AOI path
	if err != nil {
		return nil, err
	}

	if fc, err := geojson.UnmarshalFeatureCollection(data); err == nil {
		var geoms []orb.Geometry
		for _, f := range fc.Features {
			if f.Geometry == nil {
				continue
			}
			geoms = append(geoms, f.Geometry)
		}
		return geoms, nil
	}

	if f, err := geojson.UnmarshalFeature(data); err == nil && f.Geometry != nil {
		return []orb.Geometry{f.Geometry}, nil
	}

	g, err := geojson.UnmarshalGeometry(data)
	if err != nil {
		return nil, fmt.Errorf("not a GeoJSON document: %w", err)
	}
	return []orb.Geometry{g.Geometry()}, nil
}
