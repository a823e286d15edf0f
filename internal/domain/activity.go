package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxNotesLength bounds the free-text notes attached to a rep log.
const MaxNotesLength = 1000

// ErrNotesTooLong is returned when rep log notes exceed MaxNotesLength.
var ErrNotesTooLong = errors.New("notes must be at most 1000 characters")

// DrillLog records one set of reps performed for a drill. Logs are append-only
// and survive practice resets, so they are the history of what was trained.
type DrillLog struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	DrillID   uuid.UUID `json:"drill_id"`
	Reps      int       `json:"reps"`
	Notes     string    `json:"notes,omitempty"`
	LoggedAt  time.Time `json:"logged_at"`
	CreatedAt time.Time `json:"created_at"`
}

// NewDrillLog creates a log entry stamped at now. Notes are trimmed.
func NewDrillLog(ownerID, drillID uuid.UUID, reps int, notes string, now time.Time) (*DrillLog, error) {
	now = now.UTC()
	log := &DrillLog{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		DrillID:   drillID,
		Reps:      reps,
		Notes:     strings.TrimSpace(notes),
		LoggedAt:  now,
		CreatedAt: now,
	}
	if err := log.Validate(); err != nil {
		return nil, err
	}
	return log, nil
}

// Validate checks the invariants of a stored log.
func (l *DrillLog) Validate() error {
	switch {
	case l.OwnerID == uuid.Nil:
		return ErrEmptyOwnerID
	case l.DrillID == uuid.Nil:
		return ErrEmptyDrillID
	case l.Reps < 1:
		return ErrInvalidReps
	case len(l.Notes) > MaxNotesLength:
		return ErrNotesTooLong
	case l.LoggedAt.IsZero():
		return ErrMissingPracticeTime
	}
	return nil
}

// DailyActivity aggregates one owner's training on one calendar date.
type DailyActivity struct {
	Date         time.Time `json:"date"`
	DrillsLogged int       `json:"drills_logged"`
	TotalReps    int       `json:"total_reps"`
}

// Streak tracks consecutive calendar days with at least one logged drill.
type Streak struct {
	OwnerID          uuid.UUID `json:"owner_id"`
	Current          int       `json:"current"`
	Longest          int       `json:"longest"`
	LastActivityDate time.Time `json:"last_activity_date"` // calendar date, midnight UTC
	UpdatedAt        time.Time `json:"updated_at"`
}

// Advance returns the streak after activity on today. Activity the day after
// the last active date extends the streak, activity on the same date leaves
// it unchanged, and any gap restarts it at 1. The second return value is
// false when nothing changed.
func (s Streak) Advance(today time.Time) (Streak, bool) {
	switch {
	case !s.LastActivityDate.IsZero() && !today.After(s.LastActivityDate):
		return s, false
	case !s.LastActivityDate.IsZero() && AddDays(s.LastActivityDate, 1).Equal(today):
		s.Current++
	default:
		s.Current = 1
	}
	if s.Current > s.Longest {
		s.Longest = s.Current
	}
	s.LastActivityDate = today
	return s, true
}

// AsOf returns the streak as observed on today: a streak whose last active
// date is before yesterday has lapsed and reports a current length of 0.
func (s Streak) AsOf(today time.Time) Streak {
	if s.LastActivityDate.IsZero() || s.LastActivityDate.Before(AddDays(today, -1)) {
		s.Current = 0
	}
	return s
}
