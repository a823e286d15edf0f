package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/drillsched/internal/domain"
)

// RecordPracticeRequest is the body of POST /api/drills/{id}/practice.
// Quality is a pointer so that an absent field is told apart from 0.
type RecordPracticeRequest struct {
	Quality *int `json:"quality" validate:"required"`
}

// PracticeResponse is the wire form of a practice record.
type PracticeResponse struct {
	ID              uuid.UUID `json:"id"`
	DrillID         uuid.UUID `json:"drill_id"`
	EaseFactor      float64   `json:"ease_factor"`
	IntervalDays    int       `json:"interval_days"`
	Repetitions     int       `json:"repetitions"`
	NextDueDate     string    `json:"next_due_date"`
	LastPracticedAt time.Time `json:"last_practiced_at"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// DueItemResponse is one entry of a due listing.
type DueItemResponse struct {
	Practice PracticeResponse `json:"practice"`
	Drill    *domain.Drill    `json:"drill"`
}

// DueListResponse is the body of GET /api/practice/due. Total counts every
// due record; Truncated is set when a configured list cap left some out.
type DueListResponse struct {
	AsOf      string            `json:"as_of"`
	Items     []DueItemResponse `json:"items"`
	Total     int               `json:"total"`
	Truncated bool              `json:"truncated"`
}

// DueCountResponse is the body of GET /api/practice/due/count.
type DueCountResponse struct {
	AsOf  string `json:"as_of"`
	Count int    `json:"count"`
}

// UpcomingResponse is the body of GET /api/practice/upcoming.
type UpcomingResponse struct {
	From string         `json:"from"`
	To   string         `json:"to"`
	Days map[string]int `json:"days"`
}

func practiceToResponse(s *domain.PracticeState) PracticeResponse {
	return PracticeResponse{
		ID:              s.ID,
		DrillID:         s.DrillID,
		EaseFactor:      s.EaseFactor,
		IntervalDays:    s.IntervalDays,
		Repetitions:     s.Repetitions,
		NextDueDate:     domain.FormatDate(s.NextDueDate),
		LastPracticedAt: s.LastPracticedAt,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

func dueToResponse(asOf time.Time, due []domain.DuePractice, total int) DueListResponse {
	items := make([]DueItemResponse, 0, len(due))
	for _, d := range due {
		items = append(items, DueItemResponse{
			Practice: practiceToResponse(d.State),
			Drill:    d.Drill,
		})
	}
	if total < len(items) {
		total = len(items)
	}
	return DueListResponse{
		AsOf:      domain.FormatDate(asOf),
		Items:     items,
		Total:     total,
		Truncated: total > len(items),
	}
}

// LogRepsRequest is the body of POST /api/drills/{id}/logs.
type LogRepsRequest struct {
	Reps  *int   `json:"reps" validate:"required"`
	Notes string `json:"notes" validate:"max=1000"`
}

// DrillLogResponse is the wire form of a rep log.
type DrillLogResponse struct {
	ID       uuid.UUID `json:"id"`
	DrillID  uuid.UUID `json:"drill_id"`
	Reps     int       `json:"reps"`
	Notes    string    `json:"notes,omitempty"`
	LoggedAt time.Time `json:"logged_at"`
}

// DrillLogListResponse is the body of the log listing endpoints.
type DrillLogListResponse struct {
	Items []DrillLogResponse `json:"items"`
}

// TotalRepsResponse is the body of GET /api/drills/{id}/logs/total.
type TotalRepsResponse struct {
	DrillID   uuid.UUID `json:"drill_id"`
	TotalReps int       `json:"total_reps"`
}

// StreakResponse is the body of GET /api/activity/streak.
// LastActivityDate is empty for an owner who never logged.
type StreakResponse struct {
	Current          int    `json:"current"`
	Longest          int    `json:"longest"`
	LastActivityDate string `json:"last_activity_date,omitempty"`
}

// DailyActivityResponse is one day of GET /api/activity/daily.
type DailyActivityResponse struct {
	Date         string `json:"date"`
	DrillsLogged int    `json:"drills_logged"`
	TotalReps    int    `json:"total_reps"`
}

// DailyActivityListResponse is the body of GET /api/activity/daily.
type DailyActivityListResponse struct {
	Days []DailyActivityResponse `json:"days"`
}

func logToResponse(l *domain.DrillLog) DrillLogResponse {
	return DrillLogResponse{
		ID:       l.ID,
		DrillID:  l.DrillID,
		Reps:     l.Reps,
		Notes:    l.Notes,
		LoggedAt: l.LoggedAt,
	}
}

func logsToResponse(logs []domain.DrillLog) DrillLogListResponse {
	items := make([]DrillLogResponse, 0, len(logs))
	for i := range logs {
		items = append(items, logToResponse(&logs[i]))
	}
	return DrillLogListResponse{Items: items}
}

func streakToResponse(s domain.Streak) StreakResponse {
	resp := StreakResponse{Current: s.Current, Longest: s.Longest}
	if !s.LastActivityDate.IsZero() {
		resp.LastActivityDate = domain.FormatDate(s.LastActivityDate)
	}
	return resp
}

func activityToResponse(days []domain.DailyActivity) DailyActivityListResponse {
	out := make([]DailyActivityResponse, 0, len(days))
	for _, d := range days {
		out = append(out, DailyActivityResponse{
			Date:         domain.FormatDate(d.Date),
			DrillsLogged: d.DrillsLogged,
			TotalReps:    d.TotalReps,
		})
	}
	return DailyActivityListResponse{Days: out}
}
