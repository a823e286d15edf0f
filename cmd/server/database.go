package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/phrazzld/drillsched/internal/config"
	"github.com/phrazzld/drillsched/internal/platform/postgres"
	"github.com/phrazzld/drillsched/internal/platform/sqlite"
	"github.com/phrazzld/drillsched/internal/redact"
	"github.com/phrazzld/drillsched/internal/store"
	"github.com/pressly/goose/v3"
)

const (
	driverPostgres = "postgres"
	driverSQLite   = "sqlite"
)

// setupAppDatabase opens and pings the configured database.
func setupAppDatabase(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*sql.DB, error) {
	var (
		db  *sql.DB
		err error
	)

	switch cfg.Driver {
	case driverSQLite:
		db, err = sqlite.Open(ctx, cfg.URL)
		if err != nil {
			return nil, err
		}
	case driverPostgres:
		db, err = sql.Open("pgx", cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to open database connection: %w", err)
		}
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(max(cfg.MaxOpenConns/2, 1))
		db.SetConnMaxLifetime(5 * time.Minute)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	logger.Info("database connection established",
		slog.String("driver", cfg.Driver),
		slog.String("url", redact.String(cfg.URL)))
	return db, nil
}

// stores groups the persistence implementations for one driver.
type stores struct {
	practice store.PracticeStore
	drill    store.DrillStore
	activity store.ActivityStore
}

// newStores returns the stores for driver.
func newStores(db *sql.DB, driver string, logger *slog.Logger) (stores, error) {
	switch driver {
	case driverSQLite:
		return stores{
			practice: sqlite.NewSQLitePracticeStore(db, logger),
			drill:    sqlite.NewSQLiteDrillStore(db, logger),
			activity: sqlite.NewSQLiteActivityStore(db, logger),
		}, nil
	case driverPostgres:
		return stores{
			practice: postgres.NewPostgresPracticeStore(db, logger),
			drill:    postgres.NewPostgresDrillStore(db, logger),
			activity: postgres.NewPostgresActivityStore(db, logger),
		}, nil
	default:
		return stores{}, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// newMigrationProvider returns the goose provider for driver's embedded
// migrations.
func newMigrationProvider(db *sql.DB, driver string) (*goose.Provider, error) {
	switch driver {
	case driverSQLite:
		return sqlite.NewMigrationProvider(db)
	case driverPostgres:
		return postgres.NewMigrationProvider(db)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}
