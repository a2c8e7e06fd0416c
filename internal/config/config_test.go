package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "leadfilter.db", cfg.Store.DatabaseURL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "claude-haiku-4-5-20251001", cfg.Anthropic.Model)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
	assert.Equal(t, "https://api.apify.com", cfg.Apify.BaseURL)
	assert.Equal(t, "anthropic", cfg.Filter.Backend)
	assert.Equal(t, 8, cfg.Filter.BatchSize)
	assert.Equal(t, 30, cfg.Filter.RequestTimeout)
	assert.Equal(t, 500, cfg.Filter.BatchIntervalMS)
	assert.InDelta(t, 0.7, cfg.Filter.MinConfidence, 0.001)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/leads
log:
  level: debug
  format: console
filter:
  backend: openai
  batch_size: 16
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/leads", cfg.Store.DatabaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "openai", cfg.Filter.Backend)
	assert.Equal(t, 16, cfg.Filter.BatchSize)
	// Defaults still apply for unset values
	assert.Equal(t, 30, cfg.Filter.RequestTimeout)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("LEADFILTER_STORE_DRIVER", "postgres")
	t.Setenv("LEADFILTER_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("LEADFILTER_SERVER_PORT", "3000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Filter.Backend = "anthropic"
	cfg.Filter.BatchSize = 8
	cfg.Filter.MinConfidence = 0.7
	cfg.Server.Port = 8080
	return cfg
}

func TestValidateFilter_AllPresent(t *testing.T) {
	cfg := validDefaults()
	cfg.Anthropic.Key = "sk-ant-key"

	assert.NoError(t, cfg.Validate("filter"))
}

func TestValidateFilter_MissingKey(t *testing.T) {
	cfg := validDefaults()

	err := cfg.Validate("filter")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "anthropic.key is required")
}

func TestValidateFilter_BackendKeys(t *testing.T) {
	cfg := validDefaults()
	cfg.Filter.Backend = "openai"
	err := cfg.Validate("filter")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "openai.key is required")

	cfg.OpenAI.Key = "sk-key"
	assert.NoError(t, cfg.Validate("filter"))

	cfg.Filter.Backend = "proxy"
	err = cfg.Validate("filter")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "proxy.base_url is required")

	cfg.Filter.Backend = "mystery"
	err = cfg.Validate("filter")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "filter.backend must be one of")
}

func TestValidateFilter_Bounds(t *testing.T) {
	cfg := validDefaults()
	cfg.Anthropic.Key = "sk-ant-key"

	cfg.Filter.BatchSize = 0
	err := cfg.Validate("filter")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "batch_size must be between 1 and 64")

	cfg.Filter.BatchSize = 8
	cfg.Filter.MinConfidence = 1.5
	err = cfg.Validate("filter")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "min_confidence must be between 0 and 1")
}

func TestValidateFilterRule_NoBackendNeeded(t *testing.T) {
	// Rule-only filtering validates without any AI credentials.
	cfg := validDefaults()
	assert.NoError(t, cfg.Validate("filter-rule"))

	cfg.Filter.MinConfidence = -0.1
	err := cfg.Validate("filter-rule")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "min_confidence must be between 0 and 1")
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestValidateServe_BackendOptional(t *testing.T) {
	// The server degrades to rule-only endpoints without a backend,
	// so serve validation must not demand AI credentials.
	cfg := validDefaults()
	assert.NoError(t, cfg.Validate("serve"))
}

func TestValidateScrape(t *testing.T) {
	cfg := validDefaults()

	err := cfg.Validate("scrape")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "apify.token is required")

	cfg.Apify.Token = "apify_api_token"
	cfg.Apify.ActorID = "compass~crawler-google-places"
	assert.NoError(t, cfg.Validate("scrape"))
}

func TestValidateUnknownMode(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}
