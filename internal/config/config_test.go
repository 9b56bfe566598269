package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("OPENAI_BASE_URL", "")
	t.Setenv("OPENAI_MODEL", "")
	t.Setenv("CHECKPARSER_RENDER_DPI", "")
	t.Setenv("CHECKPARSER_MAX_CONCURRENCY", "")
	t.Setenv("CHECKPARSER_RATE_LIMIT_RPM", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_FORMAT", "")
	t.Setenv("LOG_TIME_FORMAT", "")
	t.Setenv("LOG_OUTPUT", "")
}

func TestLoadDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "test-key", cfg.OpenAIAPIKey)
	assert.Equal(t, "gpt-4o", cfg.OpenAIModel)
	assert.Equal(t, float64(300), cfg.RenderDPI)
	assert.Equal(t, 1, cfg.MaxConcurrency)
	assert.Equal(t, 0, cfg.RateLimitRPM)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Equal(t, "stderr", cfg.LogOutput)
}

func TestLoadOverrides(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("OPENAI_MODEL", "gpt-4o-mini")
	t.Setenv("CHECKPARSER_RENDER_DPI", "150")
	t.Setenv("CHECKPARSER_MAX_CONCURRENCY", "4")
	t.Setenv("CHECKPARSER_RATE_LIMIT_RPM", "30")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", cfg.OpenAIModel)
	assert.Equal(t, float64(150), cfg.RenderDPI)
	assert.Equal(t, 4, cfg.MaxConcurrency)
	assert.Equal(t, 30, cfg.RateLimitRPM)
}

func TestLoadRequiresAPIKey(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("OPENAI_API_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestLoadRejectsBadConcurrency(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("CHECKPARSER_MAX_CONCURRENCY", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CHECKPARSER_MAX_CONCURRENCY")
}

func TestGetLoggerConfig(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_OUTPUT", "stdout")

	cfg, err := Load()
	require.NoError(t, err)

	lc := cfg.GetLoggerConfig()
	assert.Equal(t, "debug", lc.Level)
	assert.Equal(t, "json", lc.Format)
	assert.Equal(t, "stdout", lc.Output)
	assert.Equal(t, cfg.LogTimeFormat, lc.TimeFormat)
}
