package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/germplasm-cli/internal/resilience"
)

// Config holds the full application configuration.
type Config struct {
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Extract   ExtractConfig   `yaml:"extract" mapstructure:"extract"`
	Species   SpeciesConfig   `yaml:"species" mapstructure:"species"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Output    OutputConfig    `yaml:"output" mapstructure:"output"`
	Metrics   MetricsConfig   `yaml:"metrics" mapstructure:"metrics"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// AnthropicConfig holds Anthropic API settings. An empty key disables
// inference for the whole run.
type AnthropicConfig struct {
	Key               string  `yaml:"key" mapstructure:"key"`
	Model             string  `yaml:"model" mapstructure:"model"`
	MaxTokens         int64   `yaml:"max_tokens" mapstructure:"max_tokens"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst" mapstructure:"burst"`
}

// ExtractConfig configures the retry policy around whole-row extraction.
type ExtractConfig struct {
	MaxAttempts      int     `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMs int     `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	Multiplier       float64 `yaml:"multiplier" mapstructure:"multiplier"`
}

// SpeciesConfig selects the species resolution strategy.
type SpeciesConfig struct {
	Strategy string `yaml:"strategy" mapstructure:"strategy"`
}

// StoreConfig configures the run ledger and inference cache backend.
type StoreConfig struct {
	Driver        string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL   string `yaml:"database_url" mapstructure:"database_url"`
	CacheTTLHours int    `yaml:"cache_ttl_hours" mapstructure:"cache_ttl_hours"`
}

// OutputConfig controls derived output paths and the xlsx sheet name.
type OutputConfig struct {
	Suffix string `yaml:"suffix" mapstructure:"suffix"`
	Sheet  string `yaml:"sheet" mapstructure:"sheet"`
}

// MetricsConfig configures the Prometheus textfile dump.
type MetricsConfig struct {
	Textfile string `yaml:"textfile" mapstructure:"textfile"`
}

// Store drivers.
const (
	DriverNone     = "none"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Species strategies.
const (
	SpeciesStatic = "static"
	SpeciesRemote = "remote"
)

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("GERMPLASM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Every key needs one so Unmarshal sees env-only values.
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 1024)
	v.SetDefault("anthropic.requests_per_second", 2.0)
	v.SetDefault("anthropic.burst", 1)
	v.SetDefault("extract.max_attempts", 3)
	v.SetDefault("extract.initial_backoff_ms", 1000)
	v.SetDefault("extract.multiplier", 2.0)
	v.SetDefault("species.strategy", SpeciesStatic)
	v.SetDefault("store.driver", DriverNone)
	v.SetDefault("store.database_url", "")
	v.SetDefault("store.cache_ttl_hours", 720)
	v.SetDefault("output.suffix", "_processed")
	v.SetDefault("output.sheet", "Sheet1")
	v.SetDefault("metrics.textfile", "")

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

// Validate checks the settings a command depends on. Mode is "process"
// or "runs".
func (c *Config) Validate(mode string) error {
	var errs []string

	switch c.Store.Driver {
	case DriverNone, DriverSQLite, DriverPostgres:
	default:
		errs = append(errs, "store.driver must be one of none, sqlite, postgres")
	}
	if c.Store.Driver != DriverNone && c.Store.DatabaseURL == "" {
		errs = append(errs, "store.database_url is required when store.driver is "+c.Store.Driver)
	}

	switch mode {
	case "process":
		switch c.Species.Strategy {
		case SpeciesStatic, SpeciesRemote:
		default:
			errs = append(errs, "species.strategy must be static or remote")
		}
		if c.Extract.MaxAttempts < 1 {
			errs = append(errs, "extract.max_attempts must be >= 1")
		}
		if c.Extract.InitialBackoffMs < 0 {
			errs = append(errs, "extract.initial_backoff_ms must be >= 0")
		}
		if c.Extract.Multiplier < 1 {
			errs = append(errs, "extract.multiplier must be >= 1")
		}
		if c.Anthropic.MaxTokens <= 0 {
			errs = append(errs, "anthropic.max_tokens must be > 0")
		}
		if c.Output.Suffix == "" {
			errs = append(errs, "output.suffix is required")
		}
	case "runs":
		if c.Store.Driver == DriverNone {
			errs = append(errs, "store.driver must be sqlite or postgres to list runs")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Retry returns the extraction retry policy.
func (c ExtractConfig) Retry() resilience.RetryConfig {
	cfg := resilience.DefaultRetryConfig()
	cfg.MaxAttempts = c.MaxAttempts
	cfg.InitialBackoff = time.Duration(c.InitialBackoffMs) * time.Millisecond
	cfg.Multiplier = c.Multiplier
	return cfg
}

// CacheTTL returns the inference cache lifetime.
func (c StoreConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLHours) * time.Hour
}

// InitLogger initializes the global zap logger.
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
