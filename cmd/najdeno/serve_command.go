package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/erazemk/najdeno/internal/api"
	"github.com/erazemk/najdeno/internal/imaging"
	"github.com/erazemk/najdeno/internal/store"
)

const tokenPurgeInterval = time.Hour

func newServeCommand(ctx *commandContext) *cobra.Command {
	var addr string
	var adminUser string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}

			logger, closeLog, err := ctx.logger(cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeLog()
			slog.SetDefault(logger)

			// One server per database file.
			lock := flock.New(cfg.Database.Path + ".lock")
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire lock: %w", err)
			}
			if !locked {
				return fmt.Errorf("database %s is in use by another najdeno server", cfg.Database.Path)
			}
			defer lock.Unlock()

			runCtx, stop := signal.NotifyContext(commandContextOf(cmd), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			// Check if DB exists, auto-init if not.
			if _, err := os.Stat(cfg.Database.Path); errors.Is(err, os.ErrNotExist) {
				database, password, err := initDatabase(runCtx, cfg.Database.Path, adminUser, "")
				if err != nil {
					return fmt.Errorf("initialize database: %w", err)
				}
				database.Close()

				printInitResult(cmd.OutOrStdout(), cfg.Database.Path, adminUser, password)
				fmt.Fprintln(cmd.OutOrStdout())
			}

			database, err := ctx.openDatabase()
			if err != nil {
				return err
			}
			defer database.Close()
			logger.Info("database ready", "path", cfg.Database.Path)

			jwtSecret, err := store.GetJWTSecret(runCtx, database)
			if err != nil {
				return fmt.Errorf("get JWT secret: %w", err)
			}

			engine, err := ctx.newEngine(database, logger)
			if err != nil {
				return err
			}

			handler := api.NewRouter(api.Config{
				DB:        database,
				JWTSecret: jwtSecret,
				Engine:    engine,
				Photos: imaging.NewProcessor(imaging.Options{
					MaxDimension: cfg.Images.MaxDimension,
					JPEGQuality:  cfg.Images.JPEGQuality,
				}),
			})

			server := &http.Server{
				Addr:              addr,
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
				ReadTimeout:       30 * time.Second,
				WriteTimeout:      60 * time.Second,
				IdleTimeout:       120 * time.Second,
			}

			go purgeRevokedTokens(runCtx, logger, func(ctx context.Context, now time.Time) (int64, error) {
				return store.PurgeRevokedTokens(ctx, database, now)
			})

			go func() {
				<-runCtx.Done()
				logger.Info("shutdown signal received")

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					logger.Error("server forced to shutdown", "error", err)
				}
			}()

			logger.Info("server started",
				"addr", addr,
				"threshold", engine.Threshold(),
				"notifications", cfg.Notifications.Enabled,
				"webhook", cfg.Notifications.WebhookURL != "",
			)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server error: %w", err)
			}

			logger.Info("server stopped, closing database")
			return nil
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (overrides server.addr)")
	cmd.Flags().StringVarP(&adminUser, "user", "u", defaultAdminUser, "Admin username on first run")
	return cmd
}

// purgeRevokedTokens removes expired token revocations at startup and then
// every tokenPurgeInterval until ctx is done.
func purgeRevokedTokens(ctx context.Context, logger *slog.Logger, purge func(context.Context, time.Time) (int64, error)) {
	ticker := time.NewTicker(tokenPurgeInterval)
	defer ticker.Stop()

	for {
		n, err := purge(ctx, time.Now())
		switch {
		case err != nil && ctx.Err() == nil:
			logger.Error("failed to purge revoked tokens", "error", err)
		case n > 0:
			logger.Info("purged revoked tokens", "count", n)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
