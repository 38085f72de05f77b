// Package config loads application configuration from environment variables.
// All variables use the HANDSPEAK_ prefix.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Cache       CacheConfig
	ModelServer ModelServerConfig
	Quota       QuotaConfig
	Content     ContentConfig
	Seed        SeedConfig
	Log         LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int
	Host string
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL      string
	MaxConns int
	MinConns int
}

// CacheConfig holds Redis connection settings.
type CacheConfig struct {
	URL string
}

// ModelServerConfig holds settings for the sign recognition model server.
type ModelServerConfig struct {
	Enabled bool
	URL     string
}

// QuotaConfig holds per-user inference quota settings. A limit of zero
// disables quotas.
type QuotaConfig struct {
	DailyLimit int
}

// ContentConfig holds paths to static learning content.
type ContentConfig struct {
	ReferenceDir string
}

// SeedConfig holds optional seed import paths applied at startup.
type SeedConfig struct {
	FilePath     string
	WorkbookPath string
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables with HANDSPEAK_ prefix.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("HANDSPEAK_SERVER_PORT", 8080),
			Host: envStr("HANDSPEAK_SERVER_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			URL:      envStr("HANDSPEAK_DATABASE_URL", ""),
			MaxConns: envInt("HANDSPEAK_DATABASE_MAX_CONNS", 25),
			MinConns: envInt("HANDSPEAK_DATABASE_MIN_CONNS", 5),
		},
		Cache: CacheConfig{
			URL: envStr("HANDSPEAK_CACHE_URL", ""),
		},
		ModelServer: ModelServerConfig{
			Enabled: envBool("HANDSPEAK_MODEL_SERVER_ENABLED", false),
			URL:     envStr("HANDSPEAK_MODEL_SERVER_URL", "http://localhost:5000"),
		},
		Quota: QuotaConfig{
			DailyLimit: envInt("HANDSPEAK_QUOTA_DAILY_LIMIT", 0),
		},
		Content: ContentConfig{
			ReferenceDir: envStr("HANDSPEAK_CONTENT_REFERENCE_DIR", "./content/alphabet"),
		},
		Seed: SeedConfig{
			FilePath:     envStr("HANDSPEAK_SEED_FILE", ""),
			WorkbookPath: envStr("HANDSPEAK_SEED_WORKBOOK", ""),
		},
		Log: LogConfig{
			Level:  envStr("HANDSPEAK_LOG_LEVEL", "info"),
			Format: envStr("HANDSPEAK_LOG_FORMAT", "json"),
		},
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("HANDSPEAK_SERVER_PORT must be in 1..65535, got %d", c.Server.Port)
	}

	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("HANDSPEAK_DATABASE_MIN_CONNS (%d) exceeds max conns (%d)",
			c.Database.MinConns, c.Database.MaxConns)
	}

	if c.ModelServer.Enabled && c.ModelServer.URL == "" {
		return fmt.Errorf("HANDSPEAK_MODEL_SERVER_URL is required when the model server is enabled")
	}

	if c.Quota.DailyLimit < 0 {
		return fmt.Errorf("HANDSPEAK_QUOTA_DAILY_LIMIT must not be negative, got %d", c.Quota.DailyLimit)
	}

	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("HANDSPEAK_LOG_FORMAT must be 'json' or 'text', got %q", c.Log.Format)
	}

	return nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		return strings.EqualFold(v, "true") || v == "1"
	}
	return fallback
}
