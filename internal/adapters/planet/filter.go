// Package planet provides the imagery provider REST adapter: quick-search,
// order submission and polling, and result downloads.
package planet

import (
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/satclip/satclip/internal/domain"
)

// Filter wire types. Field layout follows the provider's Data API filter
// tree: every filter has a type tag and a field_name, with a type-specific
// config payload.

// GeometryFilter matches scenes whose footprint intersects the geometry.
type GeometryFilter struct {
	Type      string            `json:"type"`
	FieldName string            `json:"field_name"`
	Config    *geojson.Geometry `json:"config"`
}

// DateRangeConfig is a half-open timestamp interval.
type DateRangeConfig struct {
	GT string `json:"gt"`
	LT string `json:"lt"`
}

// DateRangeFilter matches scenes by acquisition timestamp.
type DateRangeFilter struct {
	Type      string          `json:"type"`
	FieldName string          `json:"field_name"`
	Config    DateRangeConfig `json:"config"`
}

// RangeConfig bounds a numeric property. Unset bounds are omitted.
type RangeConfig struct {
	GT  *float64 `json:"gt,omitempty"`
	LT  *float64 `json:"lt,omitempty"`
	LTE *float64 `json:"lte,omitempty"`
}

// RangeFilter matches scenes by a numeric property range.
type RangeFilter struct {
	Type      string      `json:"type"`
	FieldName string      `json:"field_name"`
	Config    RangeConfig `json:"config"`
}

// StringInFilter matches scenes whose property is in the configured set.
type StringInFilter struct {
	Type      string   `json:"type"`
	FieldName string   `json:"field_name"`
	Config    []string `json:"config"`
}

// AndFilter is the conjunction of its child filters.
type AndFilter struct {
	Type   string `json:"type"`
	Config []any  `json:"config"`
}

// BuildSearchFilter constructs the combined quick-search filter: a
// conjunction of exactly five predicates (geometry, acquisition date range,
// cloud cover, view angle, instrument). Pure function, no I/O. Any future
// predicate must be appended to the same AND list.
func BuildSearchFilter(aoi orb.Polygon, p domain.SearchParams) AndFilter {
	cloud := p.MaxCloudCover
	minAngle := p.MinViewAngle
	maxAngle := p.MaxViewAngle

	return AndFilter{
		Type: "AndFilter",
		Config: []any{
			GeometryFilter{
				Type:      "GeometryFilter",
				FieldName: "geometry",
				Config:    geojson.NewGeometry(aoi),
			},
			DateRangeFilter{
				Type:      "DateRangeFilter",
				FieldName: "acquired",
				Config: DateRangeConfig{
					GT: p.StartDate.UTC().Format(time.RFC3339),
					LT: p.EndDate.UTC().Format(time.RFC3339),
				},
			},
			RangeFilter{
				Type:      "RangeFilter",
				FieldName: "cloud_cover",
				Config:    RangeConfig{LT: &cloud},
			},
			RangeFilter{
				Type:      "RangeFilter",
				FieldName: "view_angle",
				Config:    RangeConfig{GT: &minAngle, LTE: &maxAngle},
			},
			StringInFilter{
				Type:      "StringInFilter",
				FieldName: "instrument",
				Config:    p.Instruments,
			},
		},
	}
}
