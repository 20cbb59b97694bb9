package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/erazemk/najdeno/internal/config"
	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/logging"
	"github.com/erazemk/najdeno/internal/matching"
	"github.com/erazemk/najdeno/internal/notify"
	"github.com/erazemk/najdeno/internal/store"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, err := config.Load(path)
		if err != nil {
			c.configErr = fmt.Errorf("load config: %w", err)
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// logger builds the configured logger writing to out and errOut.
func (c *commandContext) logger(out, errOut io.Writer) (*slog.Logger, func(), error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	return logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   cfg.Logging.File,
		Stdout: out,
		Stderr: errOut,
	})
}

// cliLogger is the logger for one-shot commands. Log lines go to stderr so
// they never mix with tables on stdout.
func (c *commandContext) cliLogger(cmd *cobra.Command) (*slog.Logger, func(), error) {
	return c.logger(cmd.ErrOrStderr(), cmd.ErrOrStderr())
}

// openDatabase opens the configured database and ensures its schema.
func (c *commandContext) openDatabase() (*sql.DB, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	database, err := db.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	if err := db.EnsureSchema(database); err != nil {
		database.Close()
		return nil, fmt.Errorf("ensuring schema: %w", err)
	}
	return database, nil
}

// newEngine wires the matching engine to the database and the configured
// notifier.
func (c *commandContext) newEngine(database *sql.DB, logger *slog.Logger) (*matching.Engine, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	repo := store.NewRepository(database)
	notifier := notify.New(notify.Options{
		Enabled:     cfg.Notifications.Enabled,
		WebhookURL:  cfg.Notifications.WebhookURL,
		TopicSecret: cfg.Notifications.TopicSecret,
		Timeout:     cfg.NotifyTimeout(),
		Logger:      logger,
	})
	return matching.NewEngine(matching.Deps{
		Items:    repo,
		Users:    repo,
		Matches:  repo,
		Attempts: repo,
		Notifier: notifier,
	}, matching.Options{
		Threshold:         cfg.Matching.Threshold,
		NotifyTimeout:     cfg.NotifyTimeout(),
		NotifyConcurrency: cfg.Notifications.Concurrency,
		BaseURL:           cfg.Server.BaseURL,
		Logger:            logger,
	}), nil
}

func commandContextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
