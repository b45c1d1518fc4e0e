package runtimeconfig

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

var ErrPipelineWorkersInvalid = errors.New("invites config: pipeline workers must be positive")
var ErrPipelineQueueInvalid = errors.New("invites config: pipeline queue size must be positive")
var ErrPipelineRetentionInvalid = errors.New("invites config: status retention must be zero or positive")
var ErrStorageDriverUnknown = errors.New("invites config: storage driver is invalid")
var ErrStorageDSNRequired = errors.New("invites config: storage dsn is required for postgres")
var ErrGeneratorTemperatureInvalid = errors.New("invites config: generator temperature must be between 0 and 2")
var ErrGeneratorMaxTokensInvalid = errors.New("invites config: generator max tokens must be zero or positive")
var ErrWeekStartInvalid = errors.New("invites config: week start must be a weekday name")
var ErrStatusSubjectRequired = errors.New("invites config: status subject prefix is required when nats is configured")
var ErrLoggingProviderRequired = errors.New("invites config: logging provider is required")
var ErrLoggingProviderUnknown = errors.New("invites config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("invites config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("invites config: logging format is invalid")

// Config aggregates the settings for the invitation generation service.
// Values are resolved as defaults, then an optional YAML file, then INVITES_* environment variables.
type Config struct {
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Generator GeneratorConfig `yaml:"generator"`
	Geocoder  GeocoderConfig  `yaml:"geocoder"`
	Storage   StorageConfig   `yaml:"storage"`
	Status    StatusConfig    `yaml:"status"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Logging   LoggingConfig   `yaml:"logging"`
	Locale    LocaleConfig    `yaml:"locale"`
	Routes    RoutesConfig    `yaml:"routes"`
}

// PipelineConfig sizes the worker pool and status retention.
type PipelineConfig struct {
	Workers       int           `yaml:"workers" env:"INVITES_PIPELINE_WORKERS"`
	QueueSize     int           `yaml:"queue_size" env:"INVITES_PIPELINE_QUEUE_SIZE"`
	Retention     time.Duration `yaml:"retention" env:"INVITES_PIPELINE_RETENTION"`
	SweepInterval time.Duration `yaml:"sweep_interval" env:"INVITES_PIPELINE_SWEEP_INTERVAL"`
}

// GeneratorConfig points at the OpenAI-compatible text generator.
// An empty APIKey disables the generator and every task uses fallback content.
type GeneratorConfig struct {
	APIKey        string        `yaml:"api_key" env:"INVITES_GENERATOR_API_KEY"`
	BaseURL       string        `yaml:"base_url" env:"INVITES_GENERATOR_BASE_URL"`
	Model         string        `yaml:"model" env:"INVITES_GENERATOR_MODEL"`
	Timeout       time.Duration `yaml:"timeout" env:"INVITES_GENERATOR_TIMEOUT"`
	RetryInterval time.Duration `yaml:"retry_interval" env:"INVITES_GENERATOR_RETRY_INTERVAL"`
	MaxTokens     int           `yaml:"max_tokens" env:"INVITES_GENERATOR_MAX_TOKENS"`
	Temperature   float32       `yaml:"temperature" env:"INVITES_GENERATOR_TEMPERATURE"`
}

// Enabled reports whether a key was supplied.
func (c GeneratorConfig) Enabled() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

// GeocoderConfig points at the 2GIS catalog API.
type GeocoderConfig struct {
	APIKey  string        `yaml:"api_key" env:"INVITES_GEOCODER_API_KEY"`
	BaseURL string        `yaml:"base_url" env:"INVITES_GEOCODER_BASE_URL"`
	Timeout time.Duration `yaml:"timeout" env:"INVITES_GEOCODER_TIMEOUT"`
}

// StorageConfig selects the database holding generated sites.
type StorageConfig struct {
	Driver       string      `yaml:"driver" env:"INVITES_STORAGE_DRIVER"`
	DSN          string      `yaml:"dsn" env:"INVITES_STORAGE_DSN"`
	MaxOpenConns int         `yaml:"max_open_conns" env:"INVITES_STORAGE_MAX_OPEN_CONNS"`
	Cache        CacheConfig `yaml:"cache"`
}

// CacheConfig captures the read cache in front of site lookups.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" env:"INVITES_STORAGE_CACHE_ENABLED"`
	TTL     time.Duration `yaml:"ttl" env:"INVITES_STORAGE_CACHE_TTL"`
}

// StatusConfig configures subscriber buffering and the optional NATS bridge.
type StatusConfig struct {
	Buffer         int    `yaml:"buffer" env:"INVITES_STATUS_BUFFER"`
	NATSURL        string `yaml:"nats_url" env:"INVITES_NATS_URL"`
	SubjectPrefix  string `yaml:"subject_prefix" env:"INVITES_STATUS_SUBJECT_PREFIX"`
	RequestSubject string `yaml:"request_subject" env:"INVITES_REQUEST_SUBJECT"`
}

// MetricsConfig exposes the prometheus handler when Addr is set.
type MetricsConfig struct {
	Addr string `yaml:"addr" env:"INVITES_METRICS_ADDR"`
}

// LoggingConfig selects the logger provider.
type LoggingConfig struct {
	Provider string `yaml:"provider" env:"INVITES_LOG_PROVIDER"`
	Level    string `yaml:"level" env:"INVITES_LOG_LEVEL"`
	Format   string `yaml:"format" env:"INVITES_LOG_FORMAT"`
}

// LocaleConfig sets the fallback locale and the calendar week start.
type LocaleConfig struct {
	Default   string `yaml:"default" env:"INVITES_LOCALE"`
	WeekStart string `yaml:"week_start" env:"INVITES_WEEK_START"`
}

// RoutesConfig mirrors assembler.RouteConfig.
type RoutesConfig struct {
	BaseURL  string `yaml:"base_url" env:"INVITES_BASE_URL"`
	SitePath string `yaml:"site_path" env:"INVITES_SITE_PATH"`
	RSVPPath string `yaml:"rsvp_path" env:"INVITES_RSVP_PATH"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Pipeline: PipelineConfig{
			Workers:       4,
			QueueSize:     64,
			Retention:     time.Hour,
			SweepInterval: time.Minute,
		},
		Generator: GeneratorConfig{
			Model:         "gpt-4o",
			Timeout:       25 * time.Second,
			RetryInterval: 500 * time.Millisecond,
			MaxTokens:     2000,
			Temperature:   0.8,
		},
		Geocoder: GeocoderConfig{
			BaseURL: "https://catalog.api.2gis.com",
			Timeout: 5 * time.Second,
		},
		Storage: StorageConfig{
			Driver: "sqlite3",
			DSN:    "file:invites.db?cache=shared&_fk=1",
			Cache: CacheConfig{
				Enabled: true,
				TTL:     time.Minute,
			},
		},
		Status: StatusConfig{
			Buffer:         16,
			SubjectPrefix:  "invites.status",
			RequestSubject: "invites.requests",
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
		Locale: LocaleConfig{
			Default:   "en",
			WeekStart: "monday",
		},
		Routes: RoutesConfig{
			BaseURL: "http://localhost:8080",
		},
	}
}

// Load resolves the configuration from defaults, the YAML file at path
// (skipped when empty) and the environment, then validates it.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path = strings.TrimSpace(path); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("invites config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("invites config: parse %s: %w", path, err)
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("invites config: parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if cfg.Pipeline.Workers <= 0 {
		return ErrPipelineWorkersInvalid
	}
	if cfg.Pipeline.QueueSize <= 0 {
		return ErrPipelineQueueInvalid
	}
	if cfg.Pipeline.Retention < 0 {
		return ErrPipelineRetentionInvalid
	}
	if cfg.Generator.Temperature < 0 || cfg.Generator.Temperature > 2 {
		return fmt.Errorf("%w: %v", ErrGeneratorTemperatureInvalid, cfg.Generator.Temperature)
	}
	if cfg.Generator.MaxTokens < 0 {
		return ErrGeneratorMaxTokensInvalid
	}

	switch normalizeDriver(cfg.Storage.Driver) {
	case "sqlite3":
	case "postgres":
		if strings.TrimSpace(cfg.Storage.DSN) == "" {
			return ErrStorageDSNRequired
		}
	default:
		return fmt.Errorf("%w: %s", ErrStorageDriverUnknown, cfg.Storage.Driver)
	}

	if strings.TrimSpace(cfg.Status.NATSURL) != "" && strings.TrimSpace(cfg.Status.SubjectPrefix) == "" {
		return ErrStatusSubjectRequired
	}
	if _, err := cfg.Locale.WeekStartDay(); err != nil {
		return err
	}

	provider := normalizeProvider(cfg.Logging.Provider)
	if provider == "" {
		return ErrLoggingProviderRequired
	}
	if !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if provider == "gologger" {
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

// WeekStartDay parses WeekStart. An empty value means Monday.
func (c LocaleConfig) WeekStartDay() (time.Weekday, error) {
	value := strings.ToLower(strings.TrimSpace(c.WeekStart))
	if value == "" {
		return time.Monday, nil
	}
	for day := time.Sunday; day <= time.Saturday; day++ {
		name := strings.ToLower(day.String())
		if value == name || value == name[:3] {
			return day, nil
		}
	}
	return time.Monday, fmt.Errorf("%w: %s", ErrWeekStartInvalid, c.WeekStart)
}

func normalizeDriver(driver string) string {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "sqlite", "sqlite3":
		return "sqlite3"
	case "postgres", "postgresql", "pg":
		return "postgres"
	default:
		return driver
	}
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
