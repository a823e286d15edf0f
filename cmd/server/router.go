package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/drillsched/internal/api"
	apiMiddleware "github.com/phrazzld/drillsched/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))
	r.Use(middleware.Timeout(app.config.Server.RequestTimeout))

	practiceHandler := api.NewPracticeHandler(
		app.practiceService,
		app.config.Schedule.ForecastDays,
		app.logger,
	)
	activityHandler := api.NewActivityHandler(app.activityService, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService, app.config.Auth.Required)

	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		r.Get("/drills/{id}/practice", practiceHandler.GetPractice)
		r.Post("/drills/{id}/practice", practiceHandler.RecordPractice)
		r.Post("/drills/{id}/practice/reset", practiceHandler.ResetPractice)
		r.Get("/practice/due", practiceHandler.ListDue)
		r.Get("/practice/due/count", practiceHandler.CountDue)
		r.Get("/practice/upcoming", practiceHandler.Upcoming)

		r.Post("/drills/{id}/logs", activityHandler.LogReps)
		r.Get("/drills/{id}/logs", activityHandler.DrillLogs)
		r.Get("/drills/{id}/logs/total", activityHandler.TotalReps)
		r.Get("/logs", activityHandler.Logs)
		r.Get("/logs/today", activityHandler.TodayLogs)
		r.Get("/activity/streak", activityHandler.Streak)
		r.Get("/activity/daily", activityHandler.DailyActivity)
	})

	r.Get("/health", api.Health)

	return r
}
