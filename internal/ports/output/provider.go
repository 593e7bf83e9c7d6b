// Package output defines the secondary/driven ports of the application.
package output

import (
	"context"
	"io"

	"github.com/paulmach/orb"

	"github.com/satclip/satclip/internal/domain"
)

// CatalogAPI defines the secondary port for catalog quick-search.
type CatalogAPI interface {
	// QuickSearch issues one search request and returns the scenes of the
	// first response page, uncapped. The Returned field carries the raw
	// feature count.
	QuickSearch(ctx context.Context, aoi orb.Polygon, params domain.SearchParams) (*domain.SearchResult, error)
}

// OrderSubmission names exactly one item for a clip-and-package order.
type OrderSubmission struct {
	Name     string
	ItemID   string
	ItemType string
	Bundle   domain.ProductBundle
	AOI      orb.Polygon // Clip tool parameter
}

// OrderStatus is one polled order status document.
type OrderStatus struct {
	State   string // Provider-reported state string
	Results []domain.ResultFile
	Raw     string // Full payload, kept for failure diagnostics
}

// OrdersAPI defines the secondary port for the provider's orders endpoint.
type OrdersAPI interface {
	// Submit places an order. Implementations return *domain.OrderSubmitError
	// unless the provider acknowledges with an explicit accepted status.
	Submit(ctx context.Context, sub OrderSubmission) (*domain.Order, error)

	// Status fetches the order status document at its self-link.
	Status(ctx context.Context, statusURL string) (*OrderStatus, error)

	// Download opens a result file for reading. The returned length is the
	// advertised content length, or -1 when unknown.
	Download(ctx context.Context, location string) (io.ReadCloser, int64, error)
}

// AOIReader defines the secondary port for reading AOI geometry files.
type AOIReader interface {
	// Read returns one geometry per AOI record in the file.
	Read(ctx context.Context, path string) ([]orb.Geometry, error)
}

// PreviewRenderer defines the secondary port for map preview documents.
type PreviewRenderer interface {
	// Render writes an interactive map document for the AOI and its
	// candidate scenes and returns the written path.
	Render(aoi orb.Polygon, scenes []domain.Scene, outPath string) (string, error)
}

// ItemSelector defines the secondary port for choosing a scene to order.
// Returning ok=false skips the AOI without an error.
type ItemSelector interface {
	Select(ctx context.Context, scenes []domain.Scene) (id string, ok bool, err error)
}
