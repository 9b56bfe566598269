package config

import (
	"fmt"
	"os"
	"strconv"

	"checkparser/internal/logger"
)

type Config struct {
	// OpenAI-compatible inference service
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	// Pipeline tuning
	RenderDPI      float64 // PDF rasterization resolution
	MaxConcurrency int     // concurrent extraction calls; 1 = strictly sequential
	RateLimitRPM   int     // inference requests per minute; 0 = unlimited

	// Logging
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		OpenAIAPIKey:   getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:  getEnv("OPENAI_BASE_URL", ""),
		OpenAIModel:    getEnv("OPENAI_MODEL", "gpt-4o"),
		RenderDPI:      getFloatEnv("CHECKPARSER_RENDER_DPI", 300),
		MaxConcurrency: getIntEnv("CHECKPARSER_MAX_CONCURRENCY", 1),
		RateLimitRPM:   getIntEnv("CHECKPARSER_RATE_LIMIT_RPM", 0),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:  getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:      getEnv("LOG_OUTPUT", "stderr"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	if c.RenderDPI <= 0 {
		return fmt.Errorf("CHECKPARSER_RENDER_DPI must be positive")
	}
	if c.MaxConcurrency < 1 {
		return fmt.Errorf("CHECKPARSER_MAX_CONCURRENCY must be at least 1")
	}
	if c.RateLimitRPM < 0 {
		return fmt.Errorf("CHECKPARSER_RATE_LIMIT_RPM must not be negative")
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
