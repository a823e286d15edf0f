package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/drillsched/internal/api/shared"
	"github.com/phrazzld/drillsched/internal/platform/logger"
	"github.com/phrazzld/drillsched/internal/redact"
	"github.com/phrazzld/drillsched/internal/service/activity"
)

// ActivityHandler handles rep logging and training history requests.
type ActivityHandler struct {
	activityService activity.Service
	logger          *slog.Logger
}

// NewActivityHandler creates a new ActivityHandler.
func NewActivityHandler(activityService activity.Service, logger *slog.Logger) *ActivityHandler {
	if activityService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("activityService cannot be nil for ActivityHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &ActivityHandler{
		activityService: activityService,
		logger:          logger.With(slog.String("component", "activity_handler")),
	}
}

// LogReps handles POST /api/drills/{id}/logs.
// Anonymous requests are accepted and answered with 204.
func (h *ActivityHandler) LogReps(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	drillID, err := getPathUUID(r, "id")
	if err != nil {
		log.Debug("invalid drill id", slog.String("error", err.Error()))
		HandleAPIError(w, r, err)
		return
	}

	var req LogRepsRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Debug("invalid request format", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Reps are required and notes are limited to 1000 characters", err)
		return
	}

	entry, err := h.activityService.LogReps(
		r.Context(),
		shared.OwnerIDFromContext(r.Context()),
		drillID,
		*req.Reps,
		req.Notes,
	)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	if entry == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, logToResponse(entry))
}

// DrillLogs handles GET /api/drills/{id}/logs?limit=.
func (h *ActivityHandler) DrillLogs(w http.ResponseWriter, r *http.Request) {
	drillID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	limit, err := getIntParam(r, "limit", 0)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	logs, err := h.activityService.DrillLogs(r.Context(), shared.OwnerIDFromContext(r.Context()), drillID, limit)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, logsToResponse(logs))
}

// TotalReps handles GET /api/drills/{id}/logs/total.
func (h *ActivityHandler) TotalReps(w http.ResponseWriter, r *http.Request) {
	drillID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	total, err := h.activityService.TotalReps(r.Context(), shared.OwnerIDFromContext(r.Context()), drillID)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TotalRepsResponse{DrillID: drillID, TotalReps: total})
}

// Logs handles GET /api/logs?limit=.
func (h *ActivityHandler) Logs(w http.ResponseWriter, r *http.Request) {
	limit, err := getIntParam(r, "limit", 0)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	logs, err := h.activityService.Logs(r.Context(), shared.OwnerIDFromContext(r.Context()), limit)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, logsToResponse(logs))
}

// TodayLogs handles GET /api/logs/today.
func (h *ActivityHandler) TodayLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := h.activityService.TodayLogs(r.Context(), shared.OwnerIDFromContext(r.Context()))
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, logsToResponse(logs))
}

// Streak handles GET /api/activity/streak.
func (h *ActivityHandler) Streak(w http.ResponseWriter, r *http.Request) {
	streak, err := h.activityService.Streak(r.Context(), shared.OwnerIDFromContext(r.Context()))
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, streakToResponse(streak))
}

// DailyActivity handles GET /api/activity/daily?from=&to=.
// Absent bounds fall back to the service's heatmap window ending today.
func (h *ActivityHandler) DailyActivity(w http.ResponseWriter, r *http.Request) {
	from, err := getDateParam(r, "from", time.Time{})
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	to, err := getDateParam(r, "to", time.Time{})
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	days, err := h.activityService.DailyActivity(r.Context(), shared.OwnerIDFromContext(r.Context()), from, to)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, activityToResponse(days))
}
