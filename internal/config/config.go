package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Source     SourceConfig     `yaml:"source" mapstructure:"source"`
	Metrics    MetricsConfig    `yaml:"metrics" mapstructure:"metrics"`
	Report     ReportConfig     `yaml:"report" mapstructure:"report"`
	Alerts     AlertsConfig     `yaml:"alerts" mapstructure:"alerts"`
	Projection ProjectionConfig `yaml:"projection" mapstructure:"projection"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// SourceConfig selects where operations, expenses and the roster are read
// from.
type SourceConfig struct {
	// Driver is one of file, csv, xlsx, sqlite or postgres.
	Driver string `yaml:"driver" mapstructure:"driver"`
	// Path is a snapshot file or directory, or a database DSN.
	Path     string `yaml:"path" mapstructure:"path"`
	MaxConns int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32  `yaml:"min_conns" mapstructure:"min_conns"`
	// RetryAttempts bounds snapshot load attempts on transient failures.
	RetryAttempts  int `yaml:"retry_attempts" mapstructure:"retry_attempts"`
	RetryBackoffMS int `yaml:"retry_backoff_ms" mapstructure:"retry_backoff_ms"`
}

// MetricsConfig configures dashboard presentation.
type MetricsConfig struct {
	Palette          []string `yaml:"palette" mapstructure:"palette"`
	Locale           string   `yaml:"locale" mapstructure:"locale"`
	CompactThreshold float64  `yaml:"compact_threshold" mapstructure:"compact_threshold"`
}

// ReportConfig configures batch dashboard runs.
type ReportConfig struct {
	// Year is the reporting year. Zero means the current UTC year.
	Year            int `yaml:"year" mapstructure:"year"`
	Concurrency     int `yaml:"concurrency" mapstructure:"concurrency"`
	CacheTTLMinutes int `yaml:"cache_ttl_minutes" mapstructure:"cache_ttl_minutes"`
}

// AlertsConfig configures rental expiration alerts.
type AlertsConfig struct {
	RentalDays int `yaml:"rental_days" mapstructure:"rental_days"`
}

// ProjectionConfig holds the funnel planning defaults.
type ProjectionConfig struct {
	AverageTicket float64 `yaml:"average_ticket" mapstructure:"average_ticket"`
	FeePct        float64 `yaml:"fee_pct" mapstructure:"fee_pct"`
	Effectiveness float64 `yaml:"effectiveness" mapstructure:"effectiveness"`
	Weeks         float64 `yaml:"weeks" mapstructure:"weeks"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

var validDrivers = map[string]bool{
	"file":     true,
	"csv":      true,
	"xlsx":     true,
	"sqlite":   true,
	"postgres": true,
}

// Validate checks that the configuration has what the given mode needs.
// Supported modes: "engine" (single dashboards, splits, standings,
// projections) and "report" (batch runs).
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "engine", "report":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if !validDrivers[c.Source.Driver] {
		errs = append(errs, fmt.Sprintf("source.driver %q is not one of file, csv, xlsx, sqlite, postgres", c.Source.Driver))
	}
	if c.Source.Path == "" {
		errs = append(errs, "source.path is required")
	}
	if c.Source.Driver == "postgres" && c.Source.MinConns > c.Source.MaxConns {
		errs = append(errs, "source.min_conns must be <= source.max_conns")
	}
	if c.Source.RetryAttempts < 1 {
		errs = append(errs, "source.retry_attempts must be >= 1")
	}
	if c.Source.RetryBackoffMS < 0 {
		errs = append(errs, "source.retry_backoff_ms must be >= 0")
	}
	if c.Metrics.CompactThreshold < 0 {
		errs = append(errs, "metrics.compact_threshold must be >= 0")
	}
	if c.Report.Year < 0 {
		errs = append(errs, "report.year must be >= 0")
	}
	if c.Alerts.RentalDays < 0 {
		errs = append(errs, "alerts.rental_days must be >= 0")
	}

	if mode == "report" {
		if c.Report.Concurrency < 1 || c.Report.Concurrency > 64 {
			errs = append(errs, "report.concurrency must be between 1 and 64")
		}
		if c.Report.CacheTTLMinutes < 0 {
			errs = append(errs, "report.cache_ttl_minutes must be >= 0")
		}
	}

	if len(errs) > 0 {
		return eris.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from config.yaml, environment variables and
// defaults. Environment variables use the BROKERAGE_ prefix with dots
// replaced by underscores.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("BROKERAGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("source.driver", "file")
	v.SetDefault("source.path", "data")
	v.SetDefault("source.max_conns", 4)
	v.SetDefault("source.min_conns", 1)
	v.SetDefault("source.retry_attempts", 3)
	v.SetDefault("source.retry_backoff_ms", 250)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("metrics.locale", "es-AR")
	v.SetDefault("metrics.compact_threshold", 100000)
	v.SetDefault("metrics.palette", []string{
		"#f472b6", "#c084fc", "#818cf8", "#38bdf8", "#a3e635",
		"#fbbf24", "#f87171", "#4ade80", "#60a5fa",
	})
	v.SetDefault("report.year", 0)
	v.SetDefault("report.concurrency", 4)
	v.SetDefault("report.cache_ttl_minutes", 15)
	v.SetDefault("alerts.rental_days", 45)
	v.SetDefault("projection.average_ticket", 75000)
	v.SetDefault("projection.fee_pct", 3)
	v.SetDefault("projection.effectiveness", 15)
	v.SetDefault("projection.weeks", 52)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger sets up the global zap logger based on config.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
