// Package app provides application initialization and wiring.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/satclip/satclip/internal/adapters/aoi"
	"github.com/satclip/satclip/internal/adapters/bundle"
	"github.com/satclip/satclip/internal/adapters/metrics"
	"github.com/satclip/satclip/internal/adapters/planet"
	"github.com/satclip/satclip/internal/adapters/preview"
	"github.com/satclip/satclip/internal/adapters/sink"
	"github.com/satclip/satclip/internal/application"
	"github.com/satclip/satclip/internal/config"
	"github.com/satclip/satclip/internal/ports/output"
)

// Options carries the per-invocation choices that are not part of the
// configuration file: credential, actions, and selection behavior.
type Options struct {
	APIKey  string
	AOIPath string

	Preview    bool
	OpenMap    bool
	PlaceOrder bool

	// Selection: prompt wins over a fixed item id; default is first.
	Prompt bool
	ItemID string

	// Metrics, when set, is used instead of constructing a collector.
	// Callers that build one App per input file (watch mode) must share
	// a single collector this way: registering a second one against the
	// default Prometheus registerer panics.
	Metrics output.MetricsCollector

	Stdin  io.Reader
	Stdout io.Writer
}

// App holds all application components.
type App struct {
	Config        *config.Config
	Logger        *slog.Logger
	Client        *planet.Client
	Orchestrator  *application.RunOrchestrator
	Metrics       *metrics.Collector
	MetricsServer *metrics.Server
}

// New creates and wires a new application.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts Options) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	var collector output.MetricsCollector
	switch {
	case opts.Metrics != nil:
		collector = opts.Metrics
	case cfg.Metrics.Enabled:
		app.Metrics = metrics.NewCollector("satclip", prometheus.DefaultRegisterer)
		app.MetricsServer = metrics.NewServer(cfg.Metrics.Listen, logger)
		collector = app.Metrics
	default:
		collector = &output.NoOpMetrics{}
	}

	app.Client = planet.NewClient(planet.Config{
		DataURL:      cfg.Provider.DataURL,
		OrdersURL:    cfg.Provider.OrdersURL,
		APIKey:       opts.APIKey,
		Timeout:      cfg.Provider.Timeout,
		RetryMax:     cfg.Provider.RetryMax,
		RetryWaitMin: cfg.Provider.RetryWaitMin,
		RetryWaitMax: cfg.Provider.RetryWaitMax,
	}, logger, collector)

	bundleSink, err := initSink(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing archive sink: %w", err)
	}

	searchSvc := application.NewSearchService(app.Client, logger)
	orderSvc := application.NewOrderService(
		app.Client,
		&bundleFactory{inner: bundle.NewFactory(cfg.Order.DownloadDir)},
		bundleSink,
		application.SystemClock{},
		collector,
		logger,
		application.OrderServiceConfig{
			PollInterval:    cfg.Order.PollInterval,
			MaxPollAttempts: cfg.Order.MaxPollAttempts,
		},
	)

	app.Orchestrator = application.NewRunOrchestrator(
		aoi.NewReader(logger),
		searchSvc,
		orderSvc,
		preview.NewRenderer(cfg.Provider.TilesURL, opts.APIKey),
		newSelector(opts, logger),
		collector,
		logger,
		application.RunConfig{
			AOIPath:    opts.AOIPath,
			Params:     cfg.SearchParams(),
			Bundle:     cfg.ProductBundle(),
			Preview:    opts.Preview,
			OpenMap:    opts.OpenMap,
			PlaceOrder: opts.PlaceOrder,
			MapOut:     cfg.Output.MapOut,
			OrdersOut:  cfg.Output.OrdersOut,
		},
	)

	return app, nil
}

// Run starts the metrics server when configured and processes the AOI
// file to completion.
func (a *App) Run(ctx context.Context) error {
	if a.MetricsServer != nil {
		go func() {
			if err := a.MetricsServer.Start(); err != nil {
				a.Logger.Error("metrics server error", "error", err)
			}
		}()
		defer func() { _ = a.MetricsServer.Shutdown(context.Background()) }()
	}

	return a.Orchestrator.Run(ctx)
}

// newSelector picks the scene selection strategy for the run.
func newSelector(opts Options, logger *slog.Logger) output.ItemSelector {
	stdin := opts.Stdin
	if stdin == nil {
		stdin = os.Stdin
	}
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	switch {
	case opts.Prompt:
		return &application.PromptSelector{In: stdin, Out: stdout, Logger: logger}
	case opts.ItemID != "":
		return &application.FixedSelector{ID: opts.ItemID, Logger: logger}
	default:
		return &application.FirstSelector{Logger: logger}
	}
}

// bundleFactory adapts the concrete ZIP factory to the output port.
type bundleFactory struct {
	inner *bundle.Factory
}

func (f *bundleFactory) New(name string) (output.BundleWriter, error) {
	return f.inner.New(name)
}

// initSink initializes the archive destination adapter.
func initSink(ctx context.Context, cfg *config.Config) (output.BundleSink, error) {
	switch cfg.Storage.Type {
	case "local":
		return sink.NewLocalSink(cfg.Order.DownloadDir), nil

	case "s3":
		return sink.NewS3Sink(ctx, sink.S3Config{
			Bucket:          cfg.Storage.S3.Bucket,
			Region:          cfg.Storage.S3.Region,
			Prefix:          cfg.Storage.S3.Prefix,
			Endpoint:        cfg.Storage.S3.Endpoint,
			AccessKeyID:     cfg.Storage.S3.AccessKeyID,
			SecretAccessKey: cfg.Storage.S3.SecretAccessKey,
		})

	case "azure":
		return sink.NewAzureSink(sink.AzureConfig{
			Container:        cfg.Storage.Azure.Container,
			AccountName:      cfg.Storage.Azure.AccountName,
			AccountKey:       cfg.Storage.Azure.AccountKey,
			ConnectionString: cfg.Storage.Azure.ConnectionString,
			Prefix:           cfg.Storage.Azure.Prefix,
		})

	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Storage.Type)
	}
}
