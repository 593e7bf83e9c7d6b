package application

import (
	"context"
	"log/slog"

	"github.com/paulmach/orb"

	"github.com/satclip/satclip/internal/domain"
	"github.com/satclip/satclip/internal/ports/output"
)

// SearchService runs catalog quick-searches and applies the client-side
// result cap.
type SearchService struct {
	catalog output.CatalogAPI
	logger  *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(catalog output.CatalogAPI, logger *slog.Logger) *SearchService {
	return &SearchService{catalog: catalog, logger: logger}
}

// Search returns the candidate scenes for one AOI. When the provider
// returns more scenes than params.ResultLimit, the first ResultLimit
// scenes are kept in provider order, so a cap of zero retains nothing.
// Truncation is policy, not an error.
func (s *SearchService) Search(ctx context.Context, aoi orb.Polygon, params domain.SearchParams) (*domain.SearchResult, error) {
	result, err := s.catalog.QuickSearch(ctx, aoi, params)
	if err != nil {
		return nil, err
	}

	if params.ResultLimit >= 0 && len(result.Scenes) > params.ResultLimit {
		result.Scenes = result.Scenes[:params.ResultLimit]
	}

	s.logger.Info("search completed",
		"returned", result.Returned,
		"retained", len(result.Scenes),
	)
	return result, nil
}
