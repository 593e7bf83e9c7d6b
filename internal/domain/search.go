package domain

import (
	"time"

	"github.com/paulmach/orb"
)

// SearchParams is the immutable set of catalog search constraints.
//
// The date range is half-open: acquired timestamps must fall in
// [StartDate, EndDate) in UTC. Cloud cover is an exclusive upper bound.
// View angle bounds are asymmetric: exclusive lower, inclusive upper,
// matching the provider's range filter semantics. StartDate < EndDate is
// the caller's responsibility and is not enforced here.
type SearchParams struct {
	StartDate     time.Time // Calendar date, midnight UTC
	EndDate       time.Time // Calendar date, midnight UTC
	MaxCloudCover float64   // Fraction 0..1, exclusive upper bound
	MinViewAngle  float64   // Degrees, exclusive lower bound
	MaxViewAngle  float64   // Degrees, inclusive upper bound
	Instruments   []string  // Instrument codes, e.g. PSB.SD
	ItemTypes     []string  // Item types, e.g. PSScene
	ResultLimit   int       // Client-side cap on retained scenes
}

// Scene is one catalog entry representing a single satellite capture.
type Scene struct {
	ID         string
	ItemType   string
	Acquired   time.Time
	CloudCover float64
	Instrument string
	Geometry   orb.Geometry // Footprint, may be nil
}

// SearchResult is an ordered sequence of candidate scenes for one AOI.
// Truncation to the result cap keeps the first N scenes in provider order
// and is a silent policy, not an error.
type SearchResult struct {
	Scenes   []Scene
	Returned int // Feature count in the provider response before capping
}

// IsEmpty reports whether the search matched no scenes.
func (r *SearchResult) IsEmpty() bool {
	return len(r.Scenes) == 0
}

// SceneByID returns the scene with the given id, or the first scene when
// the id is not present. The boolean reports an exact match.
func (r *SearchResult) SceneByID(id string) (Scene, bool) {
	for _, s := range r.Scenes {
		if s.ID == id {
			return s, true
		}
	}
	return r.Scenes[0], false
}
