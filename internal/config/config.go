// Package config provides configuration management using Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/satclip/satclip/internal/domain"
)

// Config holds all application configuration.
type Config struct {
	Provider ProviderConfig `mapstructure:"provider"`
	Search   SearchConfig   `mapstructure:"search"`
	Order    OrderConfig    `mapstructure:"order"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Output   OutputConfig   `mapstructure:"output"`
	Watch    WatchConfig    `mapstructure:"watch"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ProviderConfig holds imagery provider endpoint configuration. The API
// key is never read from a config file, only from the environment.
type ProviderConfig struct {
	DataURL      string        `mapstructure:"data_url"`
	OrdersURL    string        `mapstructure:"orders_url"`
	TilesURL     string        `mapstructure:"tiles_url"`
	Profile      string        `mapstructure:"profile"` // Optional provider profile file
	Timeout      time.Duration `mapstructure:"timeout"`
	RetryMax     int           `mapstructure:"retry_max"`
	RetryWaitMin time.Duration `mapstructure:"retry_wait_min"`
	RetryWaitMax time.Duration `mapstructure:"retry_wait_max"`
}

// SearchConfig holds catalog search constraints.
type SearchConfig struct {
	StartDate     string   `mapstructure:"start_date"` // YYYY-MM-DD
	EndDate       string   `mapstructure:"end_date"`   // YYYY-MM-DD
	MaxCloudCover float64  `mapstructure:"max_cloud_cover"`
	MinViewAngle  float64  `mapstructure:"min_view_angle"`
	MaxViewAngle  float64  `mapstructure:"max_view_angle"`
	Instruments   []string `mapstructure:"instruments"`
	ItemTypes     []string `mapstructure:"item_types"`
	ResultLimit   int      `mapstructure:"result_limit"`
}

// OrderConfig holds order lifecycle configuration.
type OrderConfig struct {
	Bundle          string        `mapstructure:"bundle"`
	PollInterval    time.Duration `mapstructure:"poll_interval"`
	MaxPollAttempts int           `mapstructure:"max_poll_attempts"` // 0 = unbounded
	DownloadDir     string        `mapstructure:"download_dir"`
}

// StorageConfig holds archive destination configuration.
type StorageConfig struct {
	Type  string      `mapstructure:"type"` // local, s3, azure
	S3    S3Config    `mapstructure:"s3"`
	Azure AzureConfig `mapstructure:"azure"`
}

// S3Config holds AWS S3 configuration.
type S3Config struct {
	Bucket          string `mapstructure:"bucket"`
	Region          string `mapstructure:"region"`
	Prefix          string `mapstructure:"prefix"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
}

// AzureConfig holds Azure Blob Storage configuration.
type AzureConfig struct {
	Container        string `mapstructure:"container"`
	AccountName      string `mapstructure:"account_name"`
	AccountKey       string `mapstructure:"account_key"`
	ConnectionString string `mapstructure:"connection_string"`
	Prefix           string `mapstructure:"prefix"`
}

// OutputConfig holds run artifact paths.
type OutputConfig struct {
	MapOut    string `mapstructure:"map_out"`
	OrdersOut string `mapstructure:"orders_out"`
}

// WatchConfig holds AOI drop directory configuration.
type WatchConfig struct {
	Paths    []string      `mapstructure:"paths"`
	Debounce time.Duration `mapstructure:"debounce"`
}

// MetricsConfig holds Prometheus metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Listen  string `mapstructure:"listen"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json, text
}

// Defaults sets the default configuration values.
func Defaults() {
	// Provider defaults
	viper.SetDefault("provider.data_url", "https://api.planet.com/data/v1")
	viper.SetDefault("provider.orders_url", "https://api.planet.com/compute/ops/orders/v2")
	viper.SetDefault("provider.tiles_url", "https://tiles.planet.com/data/v1")
	viper.SetDefault("provider.timeout", 60*time.Second)
	viper.SetDefault("provider.retry_max", 5)
	viper.SetDefault("provider.retry_wait_min", time.Second)
	viper.SetDefault("provider.retry_wait_max", 30*time.Second)

	// Search defaults
	viper.SetDefault("search.start_date", "2020-09-01")
	viper.SetDefault("search.end_date", "2020-12-31")
	viper.SetDefault("search.max_cloud_cover", 0.1)
	viper.SetDefault("search.min_view_angle", -1.0)
	viper.SetDefault("search.max_view_angle", 1.0)
	viper.SetDefault("search.instruments", []string{"PSB.SD"})
	viper.SetDefault("search.item_types", []string{"PSScene"})
	viper.SetDefault("search.result_limit", 100)

	// Order defaults
	viper.SetDefault("order.bundle", "visual")
	viper.SetDefault("order.poll_interval", 15*time.Second)
	viper.SetDefault("order.max_poll_attempts", 0)
	viper.SetDefault("order.download_dir", "./downloads")

	// Storage defaults
	viper.SetDefault("storage.type", "local")

	// Output defaults
	viper.SetDefault("output.map_out", "./maps/preview_map.html")
	viper.SetDefault("output.orders_out", "./orders/list_of_orders_2020.txt")

	// Watch defaults
	viper.SetDefault("watch.debounce", 2*time.Second)

	// Metrics defaults
	viper.SetDefault("metrics.enabled", false)
	viper.SetDefault("metrics.listen", "127.0.0.1:9090")

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")
}

// Load loads configuration from environment and config file.
func Load(configPath string) (*Config, error) {
	Defaults()

	viper.SetEnvPrefix("SATCLIP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
		viper.AddConfigPath("/etc/satclip")
	}

	// Try to read config file (not required)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if cfg.Provider.Profile != "" {
		if err := cfg.applyProfile(cfg.Provider.Profile); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	start, err := c.Search.startTime()
	if err != nil {
		return &domain.ConfigError{Field: "search.start_date", Message: err.Error()}
	}
	end, err := c.Search.endTime()
	if err != nil {
		return &domain.ConfigError{Field: "search.end_date", Message: err.Error()}
	}
	if !start.Before(end) {
		return &domain.ConfigError{
			Field:   "search.start_date",
			Message: fmt.Sprintf("start date %s is not before end date %s", c.Search.StartDate, c.Search.EndDate),
		}
	}

	if c.Search.MaxCloudCover < 0 || c.Search.MaxCloudCover > 1 {
		return &domain.ConfigError{
			Field:   "search.max_cloud_cover",
			Message: fmt.Sprintf("must be a fraction in [0, 1], got %v", c.Search.MaxCloudCover),
		}
	}
	if c.Search.MinViewAngle >= c.Search.MaxViewAngle {
		return &domain.ConfigError{
			Field:   "search.min_view_angle",
			Message: "min view angle must be below max view angle",
		}
	}
	if c.Search.ResultLimit < 0 {
		return &domain.ConfigError{Field: "search.result_limit", Message: "must not be negative"}
	}

	if _, err := domain.ParseProductBundle(c.Order.Bundle); err != nil {
		return err
	}
	if c.Order.PollInterval <= 0 {
		return &domain.ConfigError{Field: "order.poll_interval", Message: "must be positive"}
	}
	if c.Order.MaxPollAttempts < 0 {
		return &domain.ConfigError{Field: "order.max_poll_attempts", Message: "must not be negative"}
	}

	switch c.Storage.Type {
	case "local":
		// Archives stay in the download directory.
	case "s3":
		if c.Storage.S3.Bucket == "" {
			return &domain.ConfigError{Field: "storage.s3.bucket", Message: "bucket is required"}
		}
		if c.Storage.S3.Region == "" {
			return &domain.ConfigError{Field: "storage.s3.region", Message: "region is required"}
		}
	case "azure":
		if c.Storage.Azure.Container == "" {
			return &domain.ConfigError{Field: "storage.azure.container", Message: "container is required"}
		}
		if c.Storage.Azure.AccountName == "" && c.Storage.Azure.ConnectionString == "" {
			return &domain.ConfigError{Field: "storage.azure", Message: "account name or connection string is required"}
		}
	default:
		return &domain.ConfigError{
			Field:   "storage.type",
			Message: fmt.Sprintf("unknown storage type %q", c.Storage.Type),
		}
	}

	return nil
}

// SearchParams converts the validated search configuration into domain
// search parameters. Call Validate first.
func (c *Config) SearchParams() domain.SearchParams {
	start, _ := c.Search.startTime()
	end, _ := c.Search.endTime()
	return domain.SearchParams{
		StartDate:     start,
		EndDate:       end,
		MaxCloudCover: c.Search.MaxCloudCover,
		MinViewAngle:  c.Search.MinViewAngle,
		MaxViewAngle:  c.Search.MaxViewAngle,
		Instruments:   c.Search.Instruments,
		ItemTypes:     c.Search.ItemTypes,
		ResultLimit:   c.Search.ResultLimit,
	}
}

// ProductBundle returns the validated product bundle.
func (c *Config) ProductBundle() domain.ProductBundle {
	b, _ := domain.ParseProductBundle(c.Order.Bundle)
	return b
}

func (s *SearchConfig) startTime() (time.Time, error) {
	return parseDate(s.StartDate)
}

func (s *SearchConfig) endTime() (time.Time, error) {
	return parseDate(s.EndDate)
}

// parseDate reads a calendar date as midnight UTC.
func parseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected YYYY-MM-DD, got %q", s)
	}
	return t.UTC(), nil
}
