package aoi

import (
	"context"
	"database/sql"
	"fmt"

	// Registers the sqlite3 driver.
	_ "github.com/mattn/go-sqlite3"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
)

// readGeoPackage reads all geometries from the first feature table of a
// GeoPackage. Tables are discovered through gpkg_contents joined with
// gpkg_geometry_columns; geometry blobs carry the GeoPackage binary
// header in front of standard WKB.
func readGeoPackage(ctx context.Context, path string) ([]orb.Geometry, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("opening geopackage: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("opening geopackage: %w", err)
	}

	table, column, err := firstFeatureTable(ctx, db)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT "%s" FROM "%s"`, column, table) //#nosec G201 -- table/column names from gpkg metadata tables
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("reading features from %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	var geoms []orb.Geometry
	for rows.Next() {
		var blob []byte
		if err := rows.Scan(&blob); err != nil {
			return nil, fmt.Errorf("scanning geometry: %w", err)
		}
		if len(blob) == 0 {
			continue
		}
		g, err := decodeGPB(blob)
		if err != nil {
			return nil, fmt.Errorf("decoding geometry from %s: %w", table, err)
		}
		geoms = append(geoms, g)
	}
	return geoms, rows.Err()
}

func firstFeatureTable(ctx context.Context, db *sql.DB) (table, column string, err error) {
	query := `
		SELECT c.table_name, g.column_name
		FROM gpkg_contents c
		JOIN gpkg_geometry_columns g ON c.table_name = g.table_name
		WHERE c.data_type = 'features'
		ORDER BY c.table_name
		LIMIT 1
	`
	if err := db.QueryRowContext(ctx, query).Scan(&table, &column); err != nil {
		if err == sql.ErrNoRows {
			return "", "", fmt.Errorf("geopackage has no feature tables")
		}
		return "", "", fmt.Errorf("reading gpkg_contents: %w", err)
	}
	return table, column, nil
}

// GeoPackage binary header layout:
//
//	byte 0-1  magic "GP"
//	byte 2    version
//	byte 3    flags (bit 0: envelope byte order, bits 1-3: envelope type)
//	byte 4-7  srs_id
//	then the optional envelope, then standard WKB.
const gpbHeaderSize = 8

// decodeGPB strips the GeoPackage binary header and decodes the WKB
// payload.
func decodeGPB(blob []byte) (orb.Geometry, error) {
	if len(blob) < gpbHeaderSize || blob[0] != 'G' || blob[1] != 'P' {
		return nil, fmt.Errorf("not a GeoPackage geometry blob")
	}

	flags := blob[3]
	if flags&0x20 != 0 {
		return nil, fmt.Errorf("empty geometry")
	}

	envSize, err := envelopeSize(flags)
	if err != nil {
		return nil, err
	}

	offset := gpbHeaderSize + envSize
	if len(blob) < offset {
		return nil, fmt.Errorf("truncated GeoPackage geometry blob")
	}

	return wkb.Unmarshal(blob[offset:])
}

// envelopeSize returns the byte length of the optional envelope encoded in
// the flags byte.
func envelopeSize(flags byte) (int, error) {
	switch (flags >> 1) & 0x07 {
	case 0:
		return 0, nil
	case 1:
		return 32, nil // [minx, maxx, miny, maxy]
	case 2, 3:
		return 48, nil // xy + z or m
	case 4:
		return 64, nil // xyzm
	default:
		return 0, fmt.Errorf("invalid envelope indicator %d", (flags>>1)&0x07)
	}
}
