package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	Feed     FeedConfig     `yaml:"feed"`
	Seed     SeedConfig     `yaml:"seed"`
	Import   ImportConfig   `yaml:"import"`
	Notify   NotifyConfig   `yaml:"notify"`
}

// DatabaseConfig configures SQLite storage.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// FeedConfig configures feed ranking.
type FeedConfig struct {
	Limit int `yaml:"limit"`
}

// SeedConfig points at the bulk seed file loaded at startup.
type SeedConfig struct {
	Path string `yaml:"path"`
}

// ImportConfig configures the periodic RSS catalog import.
type ImportConfig struct {
	Enabled  bool       `yaml:"enabled"`
	Interval string     `yaml:"interval"`
	Feeds    []FeedItem `yaml:"feeds"`
	// ExtraGenres widens the genre vocabulary; ExcludeKeywords drops
	// entries whose titles match.
	ExtraGenres     []string `yaml:"extra_genres"`
	ExcludeKeywords []string `yaml:"exclude_keywords"`
}

// FeedItem is a single RSS feed entry.
type FeedItem struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// ParseInterval returns the import interval as time.Duration.
func (c ImportConfig) ParseInterval() time.Duration {
	d, err := time.ParseDuration(c.Interval)
	if err != nil {
		return 6 * time.Hour
	}
	return d
}

// NotifyConfig configures notification destinations.
type NotifyConfig struct {
	Webhook WebhookConfig `yaml:"webhook"`
}

// WebhookConfig for generic webhook notifications.
type WebhookConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Secret  string `yaml:"secret"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Path: "./reelfeed.db"},
		Server:   ServerConfig{Port: 8080},
		Feed:     FeedConfig{Limit: 10},
		Import: ImportConfig{
			Interval: "6h",
		},
	}
}

// Load reads configuration from a YAML file and applies env var overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// applyEnvOverrides overrides config values with environment variables.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("REELFEED_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("REELFEED_SEED_PATH"); v != "" {
		cfg.Seed.Path = v
	}
	if v := os.Getenv("REELFEED_WEBHOOK_URL"); v != "" {
		cfg.Notify.Webhook.URL = v
		cfg.Notify.Webhook.Enabled = true
	}
	if v := os.Getenv("REELFEED_WEBHOOK_SECRET"); v != "" {
		cfg.Notify.Webhook.Secret = v
	}
}
