package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/drillsched/internal/config"
	"github.com/phrazzld/drillsched/internal/domain/srs"
	"github.com/phrazzld/drillsched/internal/service/activity"
	"github.com/phrazzld/drillsched/internal/service/auth"
	"github.com/phrazzld/drillsched/internal/service/practice"
	"github.com/phrazzld/drillsched/internal/store"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config

	logger *slog.Logger
	db     *sql.DB

	practiceStore store.PracticeStore
	drillStore    store.DrillStore
	activityStore store.ActivityStore

	// jwtService is nil when no secret is configured and auth is optional.
	jwtService      auth.JWTService
	srsService      srs.Service
	practiceService practice.Service
	activityService activity.Service
}

// newApplication creates a new application instance with all dependencies initialized.
// The database connection is owned by the application from here on and is
// closed by cleanup.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	if cfg.Auth.JWTSecret != "" {
		app.jwtService, err = auth.NewJWTService(cfg.Auth)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
		}
		logger.Info("JWT authentication initialized", slog.Bool("required", cfg.Auth.Required))
	} else {
		logger.Warn("no JWT secret configured, all requests are anonymous")
	}

	st, err := newStores(db, cfg.Database.Driver, logger)
	if err != nil {
		return nil, err
	}
	app.practiceStore, app.drillStore, app.activityStore = st.practice, st.drill, st.activity

	loc, err := cfg.Schedule.Location()
	if err != nil {
		return nil, err
	}
	params := srs.NewParams(srs.ParamsConfig{
		InitialEaseFactor: cfg.SRS.InitialEaseFactor,
		MinEaseFactor:     cfg.SRS.MinEaseFactor,
		LapseThreshold:    cfg.SRS.LapseThreshold,
		LapsePenalty:      cfg.SRS.LapsePenalty,
		FirstInterval:     cfg.SRS.FirstInterval,
		SecondInterval:    cfg.SRS.SecondInterval,
	})
	app.srsService, err = srs.NewServiceWithParams(params, loc)
	if err != nil {
		return nil, fmt.Errorf("failed to create SRS service: %w", err)
	}

	app.practiceService = practice.NewPracticeService(
		app.practiceStore,
		app.srsService,
		logger,
		practice.WithDueListLimit(cfg.Schedule.DueListLimit),
		practice.WithMaxForecastDays(cfg.Schedule.MaxForecastDays),
	)

	app.activityService = activity.NewActivityService(
		app.activityStore,
		logger,
		activity.WithLocation(loc),
		activity.WithLogLimits(cfg.Activity.DrillLogLimit, cfg.Activity.LogLimit, cfg.Activity.MaxLogLimit),
		activity.WithHeatmapDays(cfg.Activity.HeatmapDays, cfg.Activity.MaxHeatmapDays),
	)

	logger.InfoContext(ctx, "application initialized",
		slog.String("timezone", loc.String()),
		slog.Int("due_list_limit", cfg.Schedule.DueListLimit))
	return app, nil
}

// Run serves HTTP until ctx is canceled or the process is signaled.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", slog.String("error", err.Error()))
		}
	}

	app.logger.Info("application shutdown completed")
}
