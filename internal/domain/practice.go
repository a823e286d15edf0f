package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Scheduling defaults and floors shared by every practice record.
const (
	// DefaultEaseFactor is the ease a new or reset record starts with.
	DefaultEaseFactor = 2.5

	// MinEaseFactor is the lowest ease a record may ever hold.
	MinEaseFactor = 1.3

	// DefaultIntervalDays is the interval a new or reset record starts with.
	DefaultIntervalDays = 1
)

// Common validation errors for PracticeState
var (
	ErrEmptyOwnerID        = errors.New("practice owner ID cannot be empty")
	ErrEmptyDrillID        = errors.New("practice drill ID cannot be empty")
	ErrInvalidEaseFactor   = errors.New("ease factor must be at least 1.3")
	ErrInvalidInterval     = errors.New("interval must be at least 1 day")
	ErrInvalidRepetitions  = errors.New("repetitions cannot be negative")
	ErrMissingPracticeTime = errors.New("last practiced time cannot be zero")
)

// PracticeState is the scheduling state of one drill for one user.
// Exactly one exists per (OwnerID, DrillID). It is created lazily on first
// access, updated on every practice, reset on request and never deleted.
type PracticeState struct {
	ID              uuid.UUID `json:"id"`
	OwnerID         uuid.UUID `json:"owner_id"`
	DrillID         uuid.UUID `json:"drill_id"`
	EaseFactor      float64   `json:"ease_factor"`
	IntervalDays    int       `json:"interval_days"`
	Repetitions     int       `json:"repetitions"`       // consecutive successes since the last lapse
	NextDueDate     time.Time `json:"next_due_date"`     // calendar date, midnight UTC
	LastPracticedAt time.Time `json:"last_practiced_at"` // last practice or reset
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewPracticeState creates the default state for a drill that has never been
// practiced: ease 2.5, interval 1, no repetitions, due tomorrow.
// Tomorrow is computed from now in loc.
func NewPracticeState(ownerID, drillID uuid.UUID, now time.Time, loc *time.Location) (*PracticeState, error) {
	now = now.UTC()
	state := &PracticeState{
		ID:              uuid.New(),
		OwnerID:         ownerID,
		DrillID:         drillID,
		EaseFactor:      DefaultEaseFactor,
		IntervalDays:    DefaultIntervalDays,
		Repetitions:     0,
		NextDueDate:     AddDays(DateOf(now, loc), DefaultIntervalDays),
		LastPracticedAt: now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := state.Validate(); err != nil {
		return nil, err
	}

	return state, nil
}

// Validate checks the invariants every stored state must satisfy.
func (s *PracticeState) Validate() error {
	if s.OwnerID == uuid.Nil {
		return ErrEmptyOwnerID
	}

	if s.DrillID == uuid.Nil {
		return ErrEmptyDrillID
	}

	if s.EaseFactor < MinEaseFactor {
		return ErrInvalidEaseFactor
	}

	if s.IntervalDays < 1 {
		return ErrInvalidInterval
	}

	if s.Repetitions < 0 {
		return ErrInvalidRepetitions
	}

	if s.LastPracticedAt.IsZero() {
		return ErrMissingPracticeTime
	}

	return nil
}

// IsDue reports whether the drill is due on or before the given date.
func (s *PracticeState) IsDue(asOf time.Time) bool {
	return !s.NextDueDate.After(asOf)
}

// Clone returns a copy of s.
func (s *PracticeState) Clone() *PracticeState {
	c := *s
	return &c
}

// Drill is the catalog metadata of a drill, joined onto due listings for
// display. The catalog is owned elsewhere and treated as read-only here.
type Drill struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	Category     string    `json:"category,omitempty"`
	DefaultReps  int       `json:"default_reps,omitempty"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	VideoURL     string    `json:"video_url,omitempty"`
}

// DuePractice is a due practice record together with its drill metadata.
// Drill is nil when the catalog has no row for the drill.
type DuePractice struct {
	State *PracticeState
	Drill *Drill
}

// DayCount is the number of practice records falling due on a date.
type DayCount struct {
	Date  time.Time
	Count int
}
