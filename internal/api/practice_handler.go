package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/drillsched/internal/api/shared"
	"github.com/phrazzld/drillsched/internal/domain"
	"github.com/phrazzld/drillsched/internal/platform/logger"
	"github.com/phrazzld/drillsched/internal/redact"
	"github.com/phrazzld/drillsched/internal/service/practice"
)

// DefaultForecastDays is the Upcoming window used when the request names no end date.
const DefaultForecastDays = 7

// PracticeHandler handles practice scheduling HTTP requests.
type PracticeHandler struct {
	practiceService practice.Service
	forecastDays    int
	logger          *slog.Logger
}

// NewPracticeHandler creates a new PracticeHandler. forecastDays <= 0 uses
// DefaultForecastDays.
func NewPracticeHandler(
	practiceService practice.Service,
	forecastDays int,
	logger *slog.Logger,
) *PracticeHandler {
	if practiceService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("practiceService cannot be nil for PracticeHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if forecastDays <= 0 {
		forecastDays = DefaultForecastDays
	}

	return &PracticeHandler{
		practiceService: practiceService,
		forecastDays:    forecastDays,
		logger:          logger.With(slog.String("component", "practice_handler")),
	}
}

// respondWithState writes the state, or 204 when there is none because the
// request is anonymous or a reset found nothing to reset.
func respondWithState(w http.ResponseWriter, r *http.Request, state *domain.PracticeState) {
	if state == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, practiceToResponse(state))
}

// GetPractice handles GET /api/drills/{id}/practice.
// It returns the caller's record for the drill, creating it on first access.
func (h *PracticeHandler) GetPractice(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	drillID, err := getPathUUID(r, "id")
	if err != nil {
		log.Debug("invalid drill id", slog.String("error", err.Error()))
		HandleAPIError(w, r, err)
		return
	}

	state, err := h.practiceService.GetOrCreate(r.Context(), shared.OwnerIDFromContext(r.Context()), drillID)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	respondWithState(w, r, state)
}

// RecordPractice handles POST /api/drills/{id}/practice.
func (h *PracticeHandler) RecordPractice(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	drillID, err := getPathUUID(r, "id")
	if err != nil {
		log.Debug("invalid drill id", slog.String("error", err.Error()))
		HandleAPIError(w, r, err)
		return
	}

	var req RecordPracticeRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Debug("invalid request format", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Quality is required", err)
		return
	}

	state, err := h.practiceService.RecordPractice(
		r.Context(),
		shared.OwnerIDFromContext(r.Context()),
		drillID,
		domain.Quality(*req.Quality),
	)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	respondWithState(w, r, state)
}

// ResetPractice handles POST /api/drills/{id}/practice/reset.
func (h *PracticeHandler) ResetPractice(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	drillID, err := getPathUUID(r, "id")
	if err != nil {
		log.Debug("invalid drill id", slog.String("error", err.Error()))
		HandleAPIError(w, r, err)
		return
	}

	state, err := h.practiceService.Reset(r.Context(), shared.OwnerIDFromContext(r.Context()), drillID)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	respondWithState(w, r, state)
}

// ListDue handles GET /api/practice/due?as_of=YYYY-MM-DD.
// The response carries the full due count so a capped listing is visible.
func (h *PracticeHandler) ListDue(w http.ResponseWriter, r *http.Request) {
	asOf, err := getDateParam(r, "as_of", h.practiceService.Today())
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	ownerID := shared.OwnerIDFromContext(r.Context())
	due, err := h.practiceService.ListDue(r.Context(), ownerID, asOf)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	total, err := h.practiceService.CountDue(r.Context(), ownerID, asOf)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, dueToResponse(asOf, due, total))
}

// CountDue handles GET /api/practice/due/count?as_of=YYYY-MM-DD.
func (h *PracticeHandler) CountDue(w http.ResponseWriter, r *http.Request) {
	asOf, err := getDateParam(r, "as_of", h.practiceService.Today())
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	count, err := h.practiceService.CountDue(r.Context(), shared.OwnerIDFromContext(r.Context()), asOf)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, DueCountResponse{
		AsOf:  domain.FormatDate(asOf),
		Count: count,
	})
}

// Upcoming handles GET /api/practice/upcoming?from=&to=.
// The window defaults to today through today plus the forecast days.
func (h *PracticeHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	from, err := getDateParam(r, "from", h.practiceService.Today())
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	to, err := getDateParam(r, "to", domain.AddDays(from, h.forecastDays))
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	days, err := h.practiceService.Upcoming(r.Context(), shared.OwnerIDFromContext(r.Context()), from, to)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, UpcomingResponse{
		From: domain.FormatDate(from),
		To:   domain.FormatDate(to),
		Days: days,
	})
}

// Health handles GET /health.
func Health(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
