package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/mail"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/erazemk/najdeno/internal/auth"
	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

const defaultAdminUser = "admin"

func newInitCommand(ctx *commandContext) *cobra.Command {
	var adminUser string
	var adminEmail string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the database and the admin account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if adminEmail != "" {
				if _, err := mail.ParseAddress(adminEmail); err != nil {
					return fmt.Errorf("invalid admin email: %w", err)
				}
			}

			path := cfg.Database.Path
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("database file %s already exists", path)
			}

			database, password, err := initDatabase(commandContextOf(cmd), path, adminUser, adminEmail)
			if err != nil {
				return err
			}
			database.Close()

			printInitResult(cmd.OutOrStdout(), path, adminUser, password)
			return nil
		},
	}

	cmd.Flags().StringVarP(&adminUser, "user", "u", defaultAdminUser, "Admin username")
	cmd.Flags().StringVar(&adminEmail, "email", "", "Admin email address for match notifications")
	return cmd
}

// initDatabase creates a new database, ensures the schema, and creates the admin user.
func initDatabase(ctx context.Context, path, adminUsername, adminEmail string) (*sql.DB, string, error) {
	database, err := db.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("opening database: %w", err)
	}

	fail := func(err error) (*sql.DB, string, error) {
		database.Close()
		os.Remove(path)
		return nil, "", err
	}

	if err := db.EnsureSchema(database); err != nil {
		return fail(fmt.Errorf("ensuring schema: %w", err))
	}

	password, err := auth.GeneratePassword(16)
	if err != nil {
		return fail(fmt.Errorf("generating password: %w", err))
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fail(fmt.Errorf("hashing password: %w", err))
	}

	if _, err := store.CreateUser(ctx, database, adminUsername, adminEmail, hash, model.RoleAdmin); err != nil {
		return fail(fmt.Errorf("creating admin user: %w", err))
	}

	if err := store.SetSetting(ctx, database, store.SettingInitialized, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fail(err)
	}

	return database, password, nil
}

// printInitResult prints the database initialization result to w.
func printInitResult(w io.Writer, dbPath, username, password string) {
	fmt.Fprintf(w, "Database created: %s\n", dbPath)
	fmt.Fprintln(w, "Schema initialized.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Admin account created:")
	fmt.Fprintf(w, "  Username: %s\n", username)
	fmt.Fprintf(w, "  Password: %s\n", password)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Save this password, it cannot be recovered.")
	fmt.Fprintln(w, "The admin can change it after logging in.")
}
