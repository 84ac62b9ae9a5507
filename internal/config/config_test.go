package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	// Temp dir so no config.yaml is found
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Empty(t, cfg.Anthropic.Key)
	assert.Equal(t, "claude-haiku-4-5-20251001", cfg.Anthropic.Model)
	assert.Equal(t, int64(1024), cfg.Anthropic.MaxTokens)
	assert.InDelta(t, 2.0, cfg.Anthropic.RequestsPerSecond, 0.001)
	assert.Equal(t, 1, cfg.Anthropic.Burst)
	assert.Equal(t, 3, cfg.Extract.MaxAttempts)
	assert.Equal(t, 1000, cfg.Extract.InitialBackoffMs)
	assert.InDelta(t, 2.0, cfg.Extract.Multiplier, 0.001)
	assert.Equal(t, SpeciesStatic, cfg.Species.Strategy)
	assert.Equal(t, DriverNone, cfg.Store.Driver)
	assert.Equal(t, 720, cfg.Store.CacheTTLHours)
	assert.Equal(t, "_processed", cfg.Output.Suffix)
	assert.Equal(t, "Sheet1", cfg.Output.Sheet)
	assert.Empty(t, cfg.Metrics.Textfile)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: sqlite
  database_url: runs.db
log:
  level: debug
  format: console
species:
  strategy: remote
output:
  suffix: _clean
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "runs.db", cfg.Store.DatabaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "remote", cfg.Species.Strategy)
	assert.Equal(t, "_clean", cfg.Output.Suffix)
	// Defaults still apply for unset values
	assert.Equal(t, "Sheet1", cfg.Output.Sheet)
	assert.Equal(t, 3, cfg.Extract.MaxAttempts)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("GERMPLASM_STORE_DRIVER", "postgres")
	t.Setenv("GERMPLASM_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chdirTemp(t)

	t.Setenv("GERMPLASM_ANTHROPIC_KEY", "sk-ant-test")
	t.Setenv("GERMPLASM_EXTRACT_MAX_ATTEMPTS", "5")
	t.Setenv("GERMPLASM_STORE_DATABASE_URL", "postgres://localhost/germplasm")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sk-ant-test", cfg.Anthropic.Key)
	assert.Equal(t, 5, cfg.Extract.MaxAttempts)
	assert.Equal(t, "postgres://localhost/germplasm", cfg.Store.DatabaseURL)
}

func TestLoadMalformedFile(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("log: [unclosed"), 0644))

	_, err := Load()
	assert.Error(t, err)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Anthropic.MaxTokens = 1024
	cfg.Extract.MaxAttempts = 3
	cfg.Extract.InitialBackoffMs = 1000
	cfg.Extract.Multiplier = 2
	cfg.Species.Strategy = SpeciesStatic
	cfg.Store.Driver = DriverNone
	cfg.Output.Suffix = "_processed"
	return cfg
}

func TestValidateProcess_Defaults(t *testing.T) {
	assert.NoError(t, validDefaults().Validate("process"))
}

func TestValidateProcess_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad driver", func(c *Config) { c.Store.Driver = "mysql" }, "store.driver must be one of"},
		{"store without url", func(c *Config) { c.Store.Driver = DriverSQLite }, "store.database_url is required"},
		{"bad strategy", func(c *Config) { c.Species.Strategy = "oracle" }, "species.strategy"},
		{"zero attempts", func(c *Config) { c.Extract.MaxAttempts = 0 }, "extract.max_attempts"},
		{"negative backoff", func(c *Config) { c.Extract.InitialBackoffMs = -1 }, "extract.initial_backoff_ms"},
		{"shrinking multiplier", func(c *Config) { c.Extract.Multiplier = 0.5 }, "extract.multiplier"},
		{"zero max tokens", func(c *Config) { c.Anthropic.MaxTokens = 0 }, "anthropic.max_tokens"},
		{"empty suffix", func(c *Config) { c.Output.Suffix = "" }, "output.suffix"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validDefaults()
			tt.mutate(cfg)
			err := cfg.Validate("process")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateRuns(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("runs")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "to list runs")

	cfg.Store.Driver = DriverPostgres
	cfg.Store.DatabaseURL = "postgres://localhost/germplasm"
	assert.NoError(t, cfg.Validate("runs"))
}

func TestValidateUnknownMode(t *testing.T) {
	err := validDefaults().Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestExtractRetry(t *testing.T) {
	rc := ExtractConfig{MaxAttempts: 4, InitialBackoffMs: 250, Multiplier: 3}.Retry()
	assert.Equal(t, 4, rc.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, rc.InitialBackoff)
	assert.InDelta(t, 3.0, rc.Multiplier, 0.001)
	assert.Zero(t, rc.JitterFraction)
}

func TestStoreCacheTTL(t *testing.T) {
	assert.Equal(t, 720*time.Hour, StoreConfig{CacheTTLHours: 720}.CacheTTL())
}
