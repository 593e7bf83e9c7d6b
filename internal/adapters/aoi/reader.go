// Package aoi reads AOI geometries from vector files. The format is
// detected from the file extension: GeoJSON, Shapefile, or GeoPackage.
package aoi

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb"

	"github.com/satclip/satclip/internal/domain"
)

// Reader implements the AOIReader port.
type Reader struct {
	logger *slog.Logger
}

// NewReader creates a new AOI file reader.
func NewReader(logger *slog.Logger) *Reader {
	return &Reader{logger: logger}
}

// Read returns one geometry per AOI record in the file. Records with a
// missing geometry are skipped; the whole file failing to parse is a
// ReadError.
func (r *Reader) Read(ctx context.Context, path string) ([]orb.Geometry, error) {
	var (
		geoms []orb.Geometry
		err   error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".shp":
		geoms, err = readShapefile(path)
	case ".gpkg":
		geoms, err = readGeoPackage(ctx, path)
	case ".geojson", ".json":
		geoms, err = readGeoJSON(path)
	default:
		err = fmt.Errorf("%w: unrecognized AOI file extension", domain.ErrUnsupported)
	}
	if err != nil {
		return nil, &domain.ReadError{Path: path, Err: err}
	}

	r.logger.Debug("read AOI file", "path", path, "records", len(geoms))
	return geoms, nil
}
