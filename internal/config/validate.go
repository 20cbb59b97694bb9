package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// minTopicSecret is the shortest accepted notifications.topic_secret.
const minTopicSecret = 16

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return errors.New("server.addr must be set")
	}
	if err := validateURL("server.base_url", c.Server.BaseURL); err != nil {
		return err
	}
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("database.path must be set")
	}
	if c.Matching.Threshold < 0 || c.Matching.Threshold > 1 {
		return errors.New("matching.threshold must be between 0 and 1")
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	if c.Images.MaxDimension <= 0 {
		return errors.New("images.max_dimension must be positive")
	}
	if c.Images.JPEGQuality < 1 || c.Images.JPEGQuality > 100 {
		return errors.New("images.jpeg_quality must be between 1 and 100")
	}
	return c.validateLogging()
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive")
	}
	if c.Notifications.Concurrency <= 0 {
		return errors.New("notifications.concurrency must be positive")
	}
	if c.Notifications.WebhookURL == "" {
		return nil
	}
	if err := validateURL("notifications.webhook_url", c.Notifications.WebhookURL); err != nil {
		return err
	}
	if len(c.Notifications.TopicSecret) < minTopicSecret {
		return fmt.Errorf("notifications.topic_secret must be at least %d characters when webhook_url is set", minTopicSecret)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q must be one of debug, info, warn, error", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json", "auto":
	default:
		return fmt.Errorf("logging.format %q must be one of text, json, auto", c.Logging.Format)
	}
	return nil
}

func validateURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%s must be an absolute http(s) URL, got %q", field, raw)
	}
	return nil
}
