// Package preview renders interactive map documents for search results.
package preview

import (
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"github.com/satclip/satclip/internal/domain"
)

// Renderer implements the PreviewRenderer port with a self-contained
// Leaflet HTML document: dashed AOI outline plus one provider tile overlay
// per scene, selectable through a layers control.
type Renderer struct {
	tilesURL string // e.g. https://tiles.planet.com/data/v1
	apiKey   string
}

// NewRenderer creates a new map renderer.
func NewRenderer(tilesURL, apiKey string) *Renderer {
	return &Renderer{tilesURL: tilesURL, apiKey: apiKey}
}

type overlay struct {
	Name string
	URL  string
}

type mapData struct {
	CenterLat float64
	CenterLon float64
	AOI       template.JS
	Overlays  []overlay
}

// Render writes the map document and returns the written path.
func (r *Renderer) Render(aoi orb.Polygon, scenes []domain.Scene, outPath string) (string, error) {
	centroid, _ := planar.CentroidArea(aoi)

	aoiJSON, err := json.Marshal(geojson.NewGeometry(aoi))
	if err != nil {
		return "", fmt.Errorf("encoding AOI geometry: %w", err)
	}

	data := mapData{
		CenterLat: centroid[1],
		CenterLon: centroid[0],
		AOI:       template.JS(aoiJSON), //#nosec G203 -- marshaled GeoJSON, not user markup
	}
	for _, s := range scenes {
		if s.ID == "" || s.ItemType == "" {
			continue
		}
		data.Overlays = append(data.Overlays, overlay{
			Name: s.ItemType + ":" + s.ID,
			URL:  fmt.Sprintf("%s/%s/%s/{z}/{x}/{y}.png?api_key=%s", r.tilesURL, s.ItemType, s.ID, r.apiKey),
		})
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0750); err != nil {
		return "", err
	}
	f, err := os.Create(outPath) //#nosec G304 -- outPath is a configured output path
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	if err := mapTemplate.Execute(f, data); err != nil {
		return "", fmt.Errorf("rendering preview map: %w", err)
	}
	return outPath, nil
}

var mapTemplate = template.Must(template.New("map").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Scene preview</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<style>html, body, #map { height: 100%; margin: 0; }</style>
</head>
<body>
<div id="map"></div>
<script>
var map = L.map('map').setView([{{.CenterLat}}, {{.CenterLon}}], 12);
L.tileLayer('https://tile.openstreetmap.org/{z}/{x}/{y}.png', {
  attribution: '&copy; OpenStreetMap contributors'
}).addTo(map);

var aoi = L.geoJSON({{.AOI}}, {
  style: {fillOpacity: 0, color: 'blue', weight: 3, dashArray: '5, 5'}
}).addTo(map);

var overlays = {"AOI": aoi};
{{range .Overlays}}
overlays[{{.Name}}] = L.tileLayer({{.URL}}, {attribution: 'Planet Labs PBC', opacity: 1.0}).addTo(map);
{{end}}
L.control.layers(null, overlays).addTo(map);
</script>
</body>
</html>
`))
