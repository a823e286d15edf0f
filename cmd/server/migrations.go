package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: withMigrationProvider(func(cmd *cobra.Command, p *goose.Provider, log *slog.Logger) error {
			results, err := p.Up(cmd.Context())
			for _, r := range results {
				logMigrationResult(log, r)
			}
			if err != nil {
				return fmt.Errorf("failed to apply migrations: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s)\n", len(results))
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		Args:  cobra.NoArgs,
		RunE: withMigrationProvider(func(cmd *cobra.Command, p *goose.Provider, log *slog.Logger) error {
			result, err := p.Down(cmd.Context())
			if result != nil {
				logMigrationResult(log, result)
			}
			if err != nil {
				return fmt.Errorf("failed to roll back migration: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "rolled back version %d\n", result.Source.Version)
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "List migrations and whether they are applied",
		Args:  cobra.NoArgs,
		RunE: withMigrationProvider(func(cmd *cobra.Command, p *goose.Provider, _ *slog.Logger) error {
			statuses, err := p.Status(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to read migration status: %w", err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "VERSION\tSTATE\tAPPLIED AT\tSOURCE")
			for _, s := range statuses {
				applied := "-"
				if !s.AppliedAt.IsZero() {
					applied = s.AppliedAt.UTC().Format(time.RFC3339)
				}
				_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", s.Source.Version, s.State, applied, s.Source.Path)
			}
			return w.Flush()
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: withMigrationProvider(func(cmd *cobra.Command, p *goose.Provider, _ *slog.Logger) error {
			version, err := p.GetDBVersion(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to read schema version: %w", err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), version)
			return nil
		}),
	})

	return cmd
}

type migrationFunc func(cmd *cobra.Command, p *goose.Provider, log *slog.Logger) error

// withMigrationProvider opens the configured database for the duration of fn.
func withMigrationProvider(fn migrationFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		db, err := setupAppDatabase(cmd.Context(), cfg.Database, log)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		provider, err := newMigrationProvider(db, cfg.Database.Driver)
		if err != nil {
			return err
		}
		return fn(cmd, provider, log)
	}
}

// migrateUp applies pending migrations before the server starts.
func migrateUp(ctx context.Context, db *sql.DB, driver string, log *slog.Logger) error {
	provider, err := newMigrationProvider(db, driver)
	if err != nil {
		return err
	}

	results, err := provider.Up(ctx)
	for _, r := range results {
		logMigrationResult(log, r)
	}
	if err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

func logMigrationResult(log *slog.Logger, r *goose.MigrationResult) {
	attrs := []any{
		slog.Int64("version", r.Source.Version),
		slog.String("direction", r.Direction),
		slog.Duration("duration", r.Duration),
	}
	if r.Error != nil {
		log.Error("migration failed", append(attrs, slog.String("error", r.Error.Error()))...)
		return
	}
	log.Info("migration applied", attrs...)
}
