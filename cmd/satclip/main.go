// Package main provides the entry point for the satclip imagery CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/satclip/satclip/internal/adapters/metrics"
	"github.com/satclip/satclip/internal/adapters/watcher"
	"github.com/satclip/satclip/internal/app"
	"github.com/satclip/satclip/internal/config"
	"github.com/satclip/satclip/internal/domain"
	"github.com/satclip/satclip/internal/ports/output"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

// Exit code for a missing credential or an empty AOI file.
const exitUsage = 2

var (
	cfgFile string

	flagPreview bool
	flagOpenMap bool
	flagOrder   bool
	flagPrompt  bool
	flagItemID  string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, domain.ErrMissingCredential) || errors.Is(err, domain.ErrNoAOIRecords) {
			os.Exit(exitUsage)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "satclip <aoi-file>",
	Short: "satclip - satellite imagery search, preview and ordering",
	Long: `satclip searches a satellite imagery catalog for scenes covering the
AOI polygons of a local vector file (GeoJSON, Shapefile or GeoPackage),
optionally renders an interactive preview map per AOI, and can place
clip-and-package orders whose results are downloaded into one ZIP
archive per order.

The provider API key is read from the PL_API_KEY environment variable.`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runPipeline,
}

var watchCmd = &cobra.Command{
	Use:   "watch <directory>...",
	Short: "Watch drop directories and process AOI files as they arrive",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runWatch,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("satclip %s\n", version)
		fmt.Printf("  Commit:     %s\n", commit)
		fmt.Printf("  Build Date: %s\n", buildDate)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (json, text)")

	// Search flags
	rootCmd.PersistentFlags().String("start-date", "2020-09-01", "acquisition window start (YYYY-MM-DD, inclusive)")
	rootCmd.PersistentFlags().String("end-date", "2020-12-31", "acquisition window end (YYYY-MM-DD, exclusive)")
	rootCmd.PersistentFlags().Float64("max-cloud", 0.1, "maximum cloud cover fraction (exclusive)")
	rootCmd.PersistentFlags().Float64("min-nadir", -1.0, "minimum view angle in degrees (exclusive)")
	rootCmd.PersistentFlags().Float64("max-nadir", 1.0, "maximum view angle in degrees (inclusive)")
	rootCmd.PersistentFlags().StringSlice("instrument", []string{"PSB.SD"}, "instrument codes")
	rootCmd.PersistentFlags().StringSlice("item-type", []string{"PSScene"}, "catalog item types")
	rootCmd.PersistentFlags().Int("limit", 100, "client-side cap on retained scenes")

	// Order flags
	rootCmd.PersistentFlags().String("bundle", "visual", "product bundle (visual, analytic, analytic_sr)")
	rootCmd.PersistentFlags().String("download-dir", "./downloads", "directory for downloaded archives")
	rootCmd.PersistentFlags().Duration("poll-interval", 15*time.Second, "sleep between order status polls")
	rootCmd.PersistentFlags().Int("max-polls", 0, "maximum status polls per order (0 = unbounded)")

	// Output flags
	rootCmd.PersistentFlags().String("map-out", "./maps/preview_map.html", "preview map output path")
	rootCmd.PersistentFlags().String("orders-out", "./orders/list_of_orders_2020.txt", "orders reference log path")

	// Actions
	rootCmd.PersistentFlags().BoolVar(&flagPreview, "preview", false, "render an interactive preview map per AOI")
	rootCmd.PersistentFlags().BoolVar(&flagOpenMap, "open-map", false, "print the preview map location after rendering")
	rootCmd.PersistentFlags().BoolVar(&flagOrder, "order", false, "place an order for the chosen scene")
	rootCmd.PersistentFlags().BoolVar(&flagPrompt, "prompt", false, "interactively pick the scene to order")
	rootCmd.PersistentFlags().StringVar(&flagItemID, "item-id", "", "order this item id instead of the first result")

	// Bind flags to viper
	pf := rootCmd.PersistentFlags()
	_ = viper.BindPFlag("logging.level", pf.Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", pf.Lookup("log-format"))
	_ = viper.BindPFlag("search.start_date", pf.Lookup("start-date"))
	_ = viper.BindPFlag("search.end_date", pf.Lookup("end-date"))
	_ = viper.BindPFlag("search.max_cloud_cover", pf.Lookup("max-cloud"))
	_ = viper.BindPFlag("search.min_view_angle", pf.Lookup("min-nadir"))
	_ = viper.BindPFlag("search.max_view_angle", pf.Lookup("max-nadir"))
	_ = viper.BindPFlag("search.instruments", pf.Lookup("instrument"))
	_ = viper.BindPFlag("search.item_types", pf.Lookup("item-type"))
	_ = viper.BindPFlag("search.result_limit", pf.Lookup("limit"))
	_ = viper.BindPFlag("order.bundle", pf.Lookup("bundle"))
	_ = viper.BindPFlag("order.download_dir", pf.Lookup("download-dir"))
	_ = viper.BindPFlag("order.poll_interval", pf.Lookup("poll-interval"))
	_ = viper.BindPFlag("order.max_poll_attempts", pf.Lookup("max-polls"))
	_ = viper.BindPFlag("output.map_out", pf.Lookup("map-out"))
	_ = viper.BindPFlag("output.orders_out", pf.Lookup("orders-out"))

	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	config.Defaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

func runPipeline(cmd *cobra.Command, args []string) error {
	cfg, logger, apiKey, err := setup()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	application, err := app.New(ctx, cfg, logger, app.Options{
		APIKey:     apiKey,
		AOIPath:    args[0],
		Preview:    flagPreview,
		OpenMap:    flagOpenMap,
		PlaceOrder: flagOrder,
		Prompt:     flagPrompt,
		ItemID:     flagItemID,
	})
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}

	return application.Run(ctx)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, logger, apiKey, err := setup()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// One collector and one metrics server for the whole watch: each
	// handler invocation builds a fresh App, and registering a second
	// collector against the default registerer would panic.
	var collector output.MetricsCollector
	if cfg.Metrics.Enabled {
		collector = metrics.NewCollector("satclip", prometheus.DefaultRegisterer)
		server := metrics.NewServer(cfg.Metrics.Listen, logger)
		go func() {
			if err := server.Start(); err != nil {
				logger.Error("metrics server error", "error", err)
			}
		}()
		defer func() { _ = server.Shutdown(context.Background()) }()
	}

	handler := func(ctx context.Context, path string) error {
		application, err := app.New(ctx, cfg, logger, app.Options{
			APIKey:     apiKey,
			AOIPath:    path,
			Preview:    flagPreview,
			OpenMap:    flagOpenMap,
			PlaceOrder: flagOrder,
			ItemID:     flagItemID,
			Metrics:    collector,
			// Prompting makes no sense for unattended processing.
		})
		if err != nil {
			return err
		}
		return application.Run(ctx)
	}

	w, err := watcher.New(watcher.Config{
		Paths:    args,
		Debounce: cfg.Watch.Debounce,
	}, handler, logger)
	if err != nil {
		return fmt.Errorf("initializing watcher: %w", err)
	}
	defer func() { _ = w.Stop() }()

	if err := w.Start(ctx); err != nil {
		return err
	}

	logger.Info("watching for AOI files", "dirs", strings.Join(args, ", "))
	<-ctx.Done()
	logger.Info("watch stopped")
	return nil
}

// setup loads configuration, builds the logger, and reads the provider
// credential from the environment.
func setup() (*config.Config, *slog.Logger, string, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, "", fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging)
	slog.SetDefault(logger)

	apiKey := strings.TrimSpace(os.Getenv("PL_API_KEY"))
	if apiKey == "" {
		logger.Error("environment variable PL_API_KEY is not set")
		return nil, nil, "", domain.ErrMissingCredential
	}

	logger.Info("starting satclip",
		"version", version,
		"storage_type", cfg.Storage.Type,
	)
	return cfg, logger, apiKey, nil
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Value = slog.StringValue(time.Now().UTC().Format(time.RFC3339))
			}
			return a
		},
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}
