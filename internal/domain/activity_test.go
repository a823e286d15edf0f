package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDrillLog(t *testing.T) {
	t.Parallel()

	owner, drill := uuid.New(), uuid.New()
	now := time.Date(2025, 6, 1, 7, 45, 0, 0, time.FixedZone("UTC-4", -4*60*60))

	log, err := NewDrillLog(owner, drill, 15, "  felt strong  ", now)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, log.ID)
	assert.Equal(t, owner, log.OwnerID)
	assert.Equal(t, drill, log.DrillID)
	assert.Equal(t, 15, log.Reps)
	assert.Equal(t, "felt strong", log.Notes)
	assert.Equal(t, time.UTC, log.LoggedAt.Location())
	assert.True(t, now.Equal(log.LoggedAt))
}

func TestDrillLogValidate(t *testing.T) {
	t.Parallel()

	now := time.Now()
	tests := []struct {
		name    string
		owner   uuid.UUID
		drill   uuid.UUID
		reps    int
		notes   string
		wantErr error
	}{
		{"valid", uuid.New(), uuid.New(), 1, "", nil},
		{"missing owner", uuid.Nil, uuid.New(), 5, "", ErrEmptyOwnerID},
		{"missing drill", uuid.New(), uuid.Nil, 5, "", ErrEmptyDrillID},
		{"zero reps", uuid.New(), uuid.New(), 0, "", ErrInvalidReps},
		{"negative reps", uuid.New(), uuid.New(), -3, "", ErrInvalidReps},
		{"notes too long", uuid.New(), uuid.New(), 5, strings.Repeat("x", MaxNotesLength+1), ErrNotesTooLong},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewDrillLog(tc.owner, tc.drill, tc.reps, tc.notes, now)
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestStreakAdvance(t *testing.T) {
	t.Parallel()

	day := func(d int) time.Time { return time.Date(2025, 6, d, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		name        string
		start       Streak
		today       time.Time
		wantCurrent int
		wantLongest int
		wantChanged bool
	}{
		{"first activity", Streak{}, day(10), 1, 1, true},
		{"consecutive day", Streak{Current: 3, Longest: 3, LastActivityDate: day(9)}, day(10), 4, 4, true},
		{"same day", Streak{Current: 3, Longest: 5, LastActivityDate: day(10)}, day(10), 3, 5, false},
		{"gap restarts", Streak{Current: 4, Longest: 6, LastActivityDate: day(7)}, day(10), 1, 6, true},
		{"extends below longest", Streak{Current: 2, Longest: 9, LastActivityDate: day(9)}, day(10), 3, 9, true},
		{"clock went backwards", Streak{Current: 2, Longest: 2, LastActivityDate: day(11)}, day(10), 2, 2, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, changed := tc.start.Advance(tc.today)
			assert.Equal(t, tc.wantChanged, changed)
			assert.Equal(t, tc.wantCurrent, got.Current)
			assert.Equal(t, tc.wantLongest, got.Longest)
			if changed {
				assert.Equal(t, tc.today, got.LastActivityDate)
			}
		})
	}
}

func TestStreakAsOf(t *testing.T) {
	t.Parallel()

	last := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	s := Streak{Current: 5, Longest: 8, LastActivityDate: last}

	assert.Equal(t, 5, s.AsOf(last).Current)
	assert.Equal(t, 5, s.AsOf(AddDays(last, 1)).Current)

	lapsed := s.AsOf(AddDays(last, 2))
	assert.Zero(t, lapsed.Current)
	assert.Equal(t, 8, lapsed.Longest)

	assert.Zero(t, Streak{}.AsOf(last).Current)
}
