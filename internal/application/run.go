package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb"

	"github.com/satclip/satclip/internal/domain"
	"github.com/satclip/satclip/internal/ports/output"
)

// RunConfig holds the per-run options of the orchestrator.
type RunConfig struct {
	AOIPath    string
	Params     domain.SearchParams
	Bundle     domain.ProductBundle
	Preview    bool   // Render a map document per AOI
	OpenMap    bool   // Print the rendered map location
	PlaceOrder bool   // Submit an order for the selected scene
	MapOut     string // Map document path; suffixed per AOI when multiple
	OrdersOut  string // Reference log path
}

// RunOrchestrator iterates the AOI records of one input file and runs
// search, optional preview, and optional ordering for each. Failures
// abort at most the AOI that raised them; the reference log accumulates
// across the run and is written once at the end.
type RunOrchestrator struct {
	aoiReader output.AOIReader
	search    *SearchService
	orders    *OrderService
	preview   output.PreviewRenderer
	selector  output.ItemSelector
	metrics   output.MetricsCollector
	logger    *slog.Logger
	cfg       RunConfig

	orderCount int
}

// NewRunOrchestrator creates a new run orchestrator.
func NewRunOrchestrator(
	aoiReader output.AOIReader,
	search *SearchService,
	orders *OrderService,
	preview output.PreviewRenderer,
	selector output.ItemSelector,
	metrics output.MetricsCollector,
	logger *slog.Logger,
	cfg RunConfig,
) *RunOrchestrator {
	return &RunOrchestrator{
		aoiReader: aoiReader,
		search:    search,
		orders:    orders,
		preview:   preview,
		selector:  selector,
		metrics:   metrics,
		logger:    logger,
		cfg:       cfg,
	}
}

// Run processes every AOI record in the input file. It returns
// domain.ErrNoAOIRecords when the file holds no features; per-AOI
// failures are logged and do not stop the run.
func (r *RunOrchestrator) Run(ctx context.Context) error {
	geoms, err := r.aoiReader.Read(ctx, r.cfg.AOIPath)
	if err != nil {
		return err
	}
	if len(geoms) == 0 {
		return domain.ErrNoAOIRecords
	}

	var references []string

	for idx, g := range geoms {
		line, err := r.processAOI(ctx, idx, g, len(geoms))
		if err != nil {
			r.logger.Error("AOI processing failed", "aoi", idx+1, "error", err)
			r.metrics.IncAOIProcessed(false)
			continue
		}
		if line != "" {
			references = append(references, line)
		}
		r.metrics.IncAOIProcessed(true)
	}

	if len(references) > 0 {
		if err := r.writeReferences(references); err != nil {
			return err
		}
		r.logger.Info("wrote orders reference", "path", r.cfg.OrdersOut, "lines", len(references))
	}
	return nil
}

// processAOI runs the search/preview/order pipeline for one AOI record
// and returns its reference line, or "" when the AOI was skipped.
func (r *RunOrchestrator) processAOI(ctx context.Context, idx int, g orb.Geometry, total int) (string, error) {
	r.logger.Info("processing AOI", "aoi", idx+1, "total", total)

	aoi, err := domain.NormalizeAOI(g)
	if err != nil {
		return "", err
	}

	result, err := r.search.Search(ctx, aoi, r.cfg.Params)
	if err != nil {
		return "", err
	}
	if result.IsEmpty() {
		r.logger.Warn("no scenes found", "aoi", idx+1)
		return "", nil
	}

	if r.cfg.Preview {
		r.renderPreview(aoi, result.Scenes, idx, total)
	}

	itemID, ok, err := r.selector.Select(ctx, result.Scenes)
	if err != nil {
		return "", err
	}
	if !ok {
		r.logger.Info("skipping AOI per selection", "aoi", idx+1)
		return "", nil
	}

	scene, exact := result.SceneByID(itemID)
	if !exact {
		itemID = scene.ID
	}

	line := fmt.Sprintf("(api_key=****, item_id=%s, item_type=%s, aoi_wkt=%s)",
		itemID, scene.ItemType, domain.TruncatedWKT(aoi, 120))

	if r.cfg.PlaceOrder {
		r.orderCount++
		name := fmt.Sprintf("AOI_%03d_%03d", idx+1, r.orderCount)
		sub := output.OrderSubmission{
			Name:     name,
			ItemID:   itemID,
			ItemType: scene.ItemType,
			Bundle:   r.cfg.Bundle,
			AOI:      aoi,
		}
		if _, dest, err := r.orders.Execute(ctx, sub); err != nil {
			// The reference line is still kept: the scene was chosen
			// even though the order did not complete.
			r.logger.Error("order failed", "aoi", idx+1, "item_id", itemID, "error", err)
		} else {
			r.logger.Info("order downloaded", "aoi", idx+1, "destination", dest)
		}
	}

	return line, nil
}

// renderPreview writes the map document for one AOI. Preview failures
// never abort the AOI.
func (r *RunOrchestrator) renderPreview(aoi orb.Polygon, scenes []domain.Scene, idx, total int) {
	mapOut := r.cfg.MapOut
	if total > 1 {
		ext := filepath.Ext(mapOut)
		mapOut = strings.TrimSuffix(mapOut, ext) + fmt.Sprintf("_aoi%d%s", idx+1, ext)
	}

	path, err := r.preview.Render(aoi, scenes, mapOut)
	if err != nil {
		r.logger.Warn("preview rendering failed", "aoi", idx+1, "error", err)
		return
	}
	r.logger.Info("preview written", "path", path)

	if r.cfg.OpenMap {
		if abs, err := filepath.Abs(path); err == nil {
			fmt.Fprintf(os.Stdout, "open file://%s in a browser to view the preview\n", abs)
		}
	}
}

// writeReferences persists the accumulated reference log, one line per
// ordered-or-selected AOI, credential masked.
func (r *RunOrchestrator) writeReferences(lines []string) error {
	if err := os.MkdirAll(filepath.Dir(r.cfg.OrdersOut), 0750); err != nil {
		return err
	}
	content := strings.Join(lines, "\n") + "\n"
	return os.WriteFile(r.cfg.OrdersOut, []byte(content), 0600)
}
