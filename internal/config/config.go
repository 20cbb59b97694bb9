// Package config loads najdeno settings from a TOML file with environment
// overrides.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// DefaultPath is the config file looked up when no path is given.
const DefaultPath = "najdeno.toml"

// Environment overrides.
const (
	EnvDatabasePath = "NAJDENO_DB"
	EnvWebhookURL   = "NAJDENO_WEBHOOK_URL"
	EnvTopicSecret  = "NAJDENO_TOPIC_SECRET"
)

// Server contains HTTP listener settings.
type Server struct {
	Addr    string `toml:"addr"`
	BaseURL string `toml:"base_url"`
}

// Database contains storage settings.
type Database struct {
	Path string `toml:"path"`
}

// Matching contains scoring settings.
type Matching struct {
	Threshold float64 `toml:"threshold"`
}

// Notifications contains match notification delivery settings.
type Notifications struct {
	Enabled        bool   `toml:"enabled"`
	WebhookURL     string `toml:"webhook_url"`
	TopicSecret    string `toml:"topic_secret"`
	RequestTimeout int    `toml:"request_timeout"`
	Concurrency    int    `toml:"concurrency"`
}

// Images contains item photo processing settings.
type Images struct {
	MaxDimension int `toml:"max_dimension"`
	JPEGQuality  int `toml:"jpeg_quality"`
}

// Logging contains log output settings.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	File   string `toml:"file"`
}

// Config is the full najdeno configuration.
type Config struct {
	Server        Server        `toml:"server"`
	Database      Database      `toml:"database"`
	Matching      Matching      `toml:"matching"`
	Notifications Notifications `toml:"notifications"`
	Images        Images        `toml:"images"`
	Logging       Logging       `toml:"logging"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: Server{
			Addr:    ":8080",
			BaseURL: "http://localhost:8080",
		},
		Database: Database{Path: "najdeno.sqlite3"},
		Matching: Matching{Threshold: 0.5},
		Notifications: Notifications{
			Enabled:        true,
			RequestTimeout: 10,
			Concurrency:    4,
		},
		Images: Images{
			MaxDimension: 800,
			JPEGQuality:  85,
		},
		Logging: Logging{
			Level:  "info",
			Format: "auto",
		},
	}
}

// Load reads the config file at path on top of the defaults, applies
// environment overrides and validates the result. A missing file is not an
// error; the returned bool reports whether it existed.
func Load(path string) (*Config, bool, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath
	}

	exists := true
	file, err := os.Open(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		exists = false
	case err != nil:
		return nil, false, fmt.Errorf("open config: %w", err)
	default:
		defer file.Close()
		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, false, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, exists, err
	}
	return &cfg, exists, nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvDatabasePath)); v != "" {
		c.Database.Path = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvWebhookURL)); v != "" {
		c.Notifications.WebhookURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvTopicSecret)); v != "" {
		c.Notifications.TopicSecret = v
	}
}

func (c *Config) normalize() {
	c.Server.BaseURL = strings.TrimRight(strings.TrimSpace(c.Server.BaseURL), "/")
	c.Notifications.WebhookURL = strings.TrimSpace(c.Notifications.WebhookURL)
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
}

// NotifyTimeout returns the per-notification send timeout.
func (c *Config) NotifyTimeout() time.Duration {
	return time.Duration(c.Notifications.RequestTimeout) * time.Second
}

// CreateSample writes the sample configuration to path.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory %q: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
