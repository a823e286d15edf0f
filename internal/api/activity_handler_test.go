package api

import (
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/drillsched/internal/api/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivityLifecycle(t *testing.T) {
	env := newTestEnv(t, true)
	owner := env.bearer(t, uuid.New())
	logsPath := "/api/drills/" + env.drill.String() + "/logs"

	rec := env.do(t, http.MethodPost, logsPath, owner, `{"reps": 12, "notes": " smooth "}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[DrillLogResponse](t, rec)
	assert.Equal(t, env.drill, created.DrillID)
	assert.Equal(t, 12, created.Reps)
	assert.Equal(t, "smooth", created.Notes)
	assert.True(t, testNow.Equal(created.LoggedAt))

	for _, reps := range []string{"8", "5"} {
		rec = env.do(t, http.MethodPost, logsPath, owner, `{"reps": `+reps+`}`)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodGet, logsPath, owner, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[DrillLogListResponse](t, rec).Items, 2, "default drill page")

	rec = env.do(t, http.MethodGet, logsPath+"?limit=5", owner, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[DrillLogListResponse](t, rec).Items, 3)

	rec = env.do(t, http.MethodGet, logsPath+"/total", owner, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, TotalRepsResponse{DrillID: env.drill, TotalReps: 25}, decode[TotalRepsResponse](t, rec))

	rec = env.do(t, http.MethodGet, "/api/logs", owner, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[DrillLogListResponse](t, rec).Items, 3)

	rec = env.do(t, http.MethodGet, "/api/logs/today", owner, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[DrillLogListResponse](t, rec).Items, 3)

	rec = env.do(t, http.MethodGet, "/api/activity/streak", owner, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, StreakResponse{Current: 1, Longest: 1, LastActivityDate: "2025-03-10"},
		decode[StreakResponse](t, rec))

	rec = env.do(t, http.MethodGet, "/api/activity/daily", owner, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, DailyActivityListResponse{Days: []DailyActivityResponse{
		{Date: "2025-03-10", DrillsLogged: 3, TotalReps: 25},
	}}, decode[DailyActivityListResponse](t, rec))

	rec = env.do(t, http.MethodGet, "/api/activity/daily?from=2025-03-01&to=2025-03-09", owner, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"days":[]`)
}

func TestActivityForNewOwner(t *testing.T) {
	env := newTestEnv(t, true)
	owner := env.bearer(t, uuid.New())

	rec := env.do(t, http.MethodGet, "/api/activity/streak", owner, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, StreakResponse{}, decode[StreakResponse](t, rec))
	assert.NotContains(t, rec.Body.String(), "last_activity_date")

	rec = env.do(t, http.MethodGet, "/api/logs", owner, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"items":[]`)
}

func TestActivityRequestErrors(t *testing.T) {
	env := newTestEnv(t, true)
	owner := env.bearer(t, uuid.New())
	logsPath := "/api/drills/" + env.drill.String() + "/logs"

	tests := []struct {
		name    string
		method  string
		path    string
		body    string
		status  int
		message string
	}{
		{"reps missing", http.MethodPost, logsPath, `{}`, http.StatusBadRequest, "Reps are required and notes are limited to 1000 characters"},
		{"reps zero", http.MethodPost, logsPath, `{"reps": 0}`, http.StatusBadRequest, "Reps must be a positive integer"},
		{"reps negative", http.MethodPost, logsPath, `{"reps": -4}`, http.StatusBadRequest, "Reps must be a positive integer"},
		{"notes too long", http.MethodPost, logsPath, `{"reps": 3, "notes": "` + strings.Repeat("x", 1001) + `"}`, http.StatusBadRequest, "Reps are required and notes are limited to 1000 characters"},
		{"malformed body", http.MethodPost, logsPath, `{"reps":`, http.StatusBadRequest, "Invalid request format"},
		{"unknown drill", http.MethodPost, "/api/drills/" + uuid.NewString() + "/logs", `{"reps": 3}`, http.StatusNotFound, "Drill not found"},
		{"bad drill id", http.MethodGet, "/api/drills/nope/logs", "", http.StatusBadRequest, "Invalid drill ID format"},
		{"bad limit", http.MethodGet, "/api/logs?limit=ten", "", http.StatusBadRequest, "Validation error"},
		{"bad from", http.MethodGet, "/api/activity/daily?from=yesterday", "", http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD"},
		{"reversed window", http.MethodGet, "/api/activity/daily?from=2025-03-10&to=2025-03-01", "", http.StatusBadRequest, "Invalid activity window"},
		{"window too long", http.MethodGet, "/api/activity/daily?from=2025-01-01&to=2025-03-10", "", http.StatusBadRequest, "Invalid activity window"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, tt.method, tt.path, owner, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, tt.message, decode[shared.ErrorResponse](t, rec).Error)
		})
	}
}

func TestActivityAnonymousWhenAuthOptional(t *testing.T) {
	env := newTestEnv(t, false)
	logsPath := "/api/drills/" + env.drill.String() + "/logs"

	rec := env.do(t, http.MethodPost, logsPath, "", `{"reps": 5}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodPost, logsPath, "", `{"reps": 0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, logsPath+"/total", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, decode[TotalRepsResponse](t, rec).TotalReps)

	rec = env.do(t, http.MethodGet, "/api/activity/daily", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[DailyActivityListResponse](t, rec).Days)
}

func TestNewActivityHandler_PanicsOnNilService(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { NewActivityHandler(nil, nil) })
}
