package activity_test

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/phrazzld/drillsched/internal/domain"
	"github.com/phrazzld/drillsched/internal/platform/sqlite"
	"github.com/phrazzld/drillsched/internal/service/activity"
	"github.com/phrazzld/drillsched/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	db      *sql.DB
	service activity.Service
	now     time.Time
	mu      sync.Mutex
}

func (f *fixture) setNow(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = t
}

func (f *fixture) clock() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fixture) drill(t *testing.T) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := sqlite.NewSQLiteDrillStore(f.db, nil).Upsert(context.Background(), []domain.Drill{{ID: id, Name: "Drill"}})
	require.NoError(t, err)
	return id
}

func newFixture(t *testing.T, opts ...activity.Option) *fixture {
	t.Helper()

	db, err := sqlite.OpenMemory(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	f := &fixture{db: db, now: time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)}
	opts = append([]activity.Option{activity.WithClock(f.clock)}, opts...)
	f.service = activity.NewActivityService(sqlite.NewSQLiteActivityStore(db, nil), nil, opts...)
	return f
}

func TestNewActivityService_PanicsOnNilStore(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { activity.NewActivityService(nil, nil) })
}

func TestLogReps_UpdatesLogsActivityAndStreak(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := uuid.New()
	drill := f.drill(t)

	entry, err := f.service.LogReps(ctx, owner, drill, 12, "  felt good ")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "felt good", entry.Notes)

	_, err = f.service.LogReps(ctx, owner, drill, 8, "")
	require.NoError(t, err)

	total, err := f.service.TotalReps(ctx, owner, drill)
	require.NoError(t, err)
	assert.Equal(t, 20, total)

	days, err := f.service.DailyActivity(ctx, owner, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, []domain.DailyActivity{
		{Date: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), DrillsLogged: 2, TotalReps: 20},
	}, days)

	streak, err := f.service.Streak(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 1, streak.Current)
	assert.Equal(t, 1, streak.Longest)
}

func TestLogReps_StreakAcrossDays(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := uuid.New()
	drill := f.drill(t)
	start := f.clock()

	for day := 0; day < 3; day++ {
		f.setNow(start.AddDate(0, 0, day))
		_, err := f.service.LogReps(ctx, owner, drill, 5, "")
		require.NoError(t, err)
	}

	streak, err := f.service.Streak(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 3, streak.Current)
	assert.Equal(t, 3, streak.Longest)

	f.setNow(start.AddDate(0, 0, 5))
	lapsed, err := f.service.Streak(ctx, owner)
	require.NoError(t, err)
	assert.Zero(t, lapsed.Current, "a streak not extended yesterday has lapsed")
	assert.Equal(t, 3, lapsed.Longest)

	_, err = f.service.LogReps(ctx, owner, drill, 5, "")
	require.NoError(t, err)
	restarted, err := f.service.Streak(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 1, restarted.Current)
	assert.Equal(t, 3, restarted.Longest)
}

func TestLogReps_UsesScheduleTimeZoneForDay(t *testing.T) {
	tokyo := time.FixedZone("UTC+9", 9*60*60)
	f := newFixture(t, activity.WithLocation(tokyo))
	ctx := context.Background()
	owner := uuid.New()
	drill := f.drill(t)

	// 18:00 UTC on the 10th is already the 11th in UTC+9.
	_, err := f.service.LogReps(ctx, owner, drill, 5, "")
	require.NoError(t, err)

	days, err := f.service.DailyActivity(ctx, owner, time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, "2025-03-11", domain.FormatDate(days[0].Date))
}

func TestLogReps_ValidatesBeforeOwnerCheck(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.LogReps(ctx, uuid.Nil, uuid.New(), 0, "")
	assert.ErrorIs(t, err, activity.ErrInvalidReps)

	_, err = f.service.LogReps(ctx, uuid.Nil, uuid.New(), 3, strings.Repeat("n", domain.MaxNotesLength+1))
	assert.ErrorIs(t, err, domain.ErrNotesTooLong)

	entry, err := f.service.LogReps(ctx, uuid.Nil, uuid.New(), 3, "")
	assert.NoError(t, err)
	assert.Nil(t, entry)
}

func TestLogReps_UnknownDrillWritesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := uuid.New()

	_, err := f.service.LogReps(ctx, owner, uuid.New(), 5, "")
	assert.ErrorIs(t, err, store.ErrDrillNotFound)
	var serviceErr *activity.ServiceError
	require.ErrorAs(t, err, &serviceErr)
	assert.Equal(t, activity.OpLogReps, serviceErr.Operation)

	days, err := f.service.DailyActivity(ctx, owner, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Empty(t, days)

	streak, err := f.service.Streak(ctx, owner)
	require.NoError(t, err)
	assert.Zero(t, streak.Current)
}

func TestLogListings(t *testing.T) {
	f := newFixture(t, activity.WithLogLimits(2, 3, 4))
	ctx := context.Background()
	owner := uuid.New()
	first, second := f.drill(t), f.drill(t)

	yesterday := f.clock().AddDate(0, 0, -1)
	f.setNow(yesterday)
	_, err := f.service.LogReps(ctx, owner, first, 1, "")
	require.NoError(t, err)

	f.setNow(yesterday.AddDate(0, 0, 1))
	for i := 0; i < 3; i++ {
		f.setNow(f.clock().Add(time.Minute))
		_, err := f.service.LogReps(ctx, owner, first, 10+i, "")
		require.NoError(t, err)
	}
	f.setNow(f.clock().Add(time.Minute))
	_, err = f.service.LogReps(ctx, owner, second, 7, "")
	require.NoError(t, err)

	byDrill, err := f.service.DrillLogs(ctx, owner, first, 0)
	require.NoError(t, err)
	require.Len(t, byDrill, 2, "default drill page")
	assert.Equal(t, 12, byDrill[0].Reps)

	all, err := f.service.Logs(ctx, owner, 0)
	require.NoError(t, err)
	require.Len(t, all, 3, "default page")
	assert.Equal(t, 7, all[0].Reps)

	capped, err := f.service.Logs(ctx, owner, 50)
	require.NoError(t, err)
	assert.Len(t, capped, 4, "requests beyond the maximum are capped")

	today, err := f.service.TodayLogs(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, today, 4)
	for _, l := range today {
		assert.NotEqual(t, 1, l.Reps)
	}

	anon, err := f.service.Logs(ctx, uuid.Nil, 0)
	require.NoError(t, err)
	assert.Empty(t, anon)
	assert.NotNil(t, anon)
}

func TestDailyActivity_Window(t *testing.T) {
	f := newFixture(t, activity.WithHeatmapDays(7, 30))
	ctx := context.Background()
	owner := uuid.New()
	drill := f.drill(t)
	start := f.clock()

	for _, offset := range []int{-10, -6, 0} {
		f.setNow(start.AddDate(0, 0, offset))
		_, err := f.service.LogReps(ctx, owner, drill, 4, "")
		require.NoError(t, err)
	}
	f.setNow(start)

	days, err := f.service.DailyActivity(ctx, owner, time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, days, 2, "default window covers the last 7 days")
	assert.Equal(t, "2025-03-04", domain.FormatDate(days[0].Date))
	assert.Equal(t, "2025-03-10", domain.FormatDate(days[1].Date))

	from := time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC)
	days, err = f.service.DailyActivity(ctx, owner, from, start)
	require.NoError(t, err)
	assert.Len(t, days, 3)

	_, err = f.service.DailyActivity(ctx, owner, start, from)
	assert.ErrorIs(t, err, activity.ErrInvalidWindow)

	_, err = f.service.DailyActivity(ctx, owner, start.AddDate(0, 0, -30), start)
	assert.ErrorIs(t, err, activity.ErrInvalidWindow, "31 days exceeds the maximum")

	_, err = f.service.DailyActivity(ctx, uuid.Nil, start, from)
	assert.ErrorIs(t, err, activity.ErrInvalidWindow, "windows are validated for anonymous callers too")

	anon, err := f.service.DailyActivity(ctx, uuid.Nil, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Empty(t, anon)
}

func TestAnonymousReadsAreEmpty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	total, err := f.service.TotalReps(ctx, uuid.Nil, uuid.New())
	require.NoError(t, err)
	assert.Zero(t, total)

	streak, err := f.service.Streak(ctx, uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, domain.Streak{}, streak)

	today, err := f.service.TodayLogs(ctx, uuid.Nil)
	require.NoError(t, err)
	assert.Empty(t, today)
}

func TestLogReps_ConcurrentLogsAllCounted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := uuid.New()
	drill := f.drill(t)

	const workers = 6
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.service.LogReps(ctx, owner, drill, 3, "")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	days, err := f.service.DailyActivity(ctx, owner, time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, workers, days[0].DrillsLogged)
	assert.Equal(t, 3*workers, days[0].TotalReps)

	streak, err := f.service.Streak(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 1, streak.Current)
}

var fixedNow = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

func newMockedService(t *testing.T) (activity.Service, *MockActivityStore, sqlmock.Sqlmock) {
	t.Helper()

	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mockStore := &MockActivityStore{}
	mockStore.On("DB").Return(db).Maybe()
	mockStore.On("WithTx", mock.AnythingOfType("*sql.Tx")).Return(mockStore).Maybe()

	return activity.NewActivityService(mockStore, nil,
		activity.WithClock(func() time.Time { return fixedNow })), mockStore, dbMock
}

func TestLogReps_SkipsStreakSaveOnSameDay(t *testing.T) {
	t.Parallel()

	service, mockStore, dbMock := newMockedService(t)
	owner, drill := uuid.New(), uuid.New()
	today := domain.DateOf(fixedNow, time.UTC)

	dbMock.ExpectBegin()
	dbMock.ExpectCommit()

	mockStore.On("InsertLog", mock.Anything, mock.MatchedBy(func(l *domain.DrillLog) bool {
		return l.OwnerID == owner && l.DrillID == drill && l.Reps == 9
	})).Return(nil).Once()
	mockStore.On("AddDailyActivity", mock.Anything, owner, today, 1, 9).Return(nil).Once()
	mockStore.On("GetStreakForUpdate", mock.Anything, owner).
		Return(&domain.Streak{OwnerID: owner, Current: 4, Longest: 4, LastActivityDate: today}, nil).Once()

	_, err := service.LogReps(context.Background(), owner, drill, 9, "")
	require.NoError(t, err)

	mockStore.AssertExpectations(t)
	mockStore.AssertNotCalled(t, "SaveStreak", mock.Anything, mock.Anything)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestLogReps_RollsBackOnStreakFailure(t *testing.T) {
	t.Parallel()

	service, mockStore, dbMock := newMockedService(t)
	owner, drill := uuid.New(), uuid.New()
	cause := errors.New("disk full")

	dbMock.ExpectBegin()
	dbMock.ExpectRollback()

	mockStore.On("InsertLog", mock.Anything, mock.Anything).Return(nil).Once()
	mockStore.On("AddDailyActivity", mock.Anything, owner, mock.Anything, 1, 2).Return(nil).Once()
	mockStore.On("GetStreakForUpdate", mock.Anything, owner).Return(nil, store.ErrStreakNotFound).Once()
	mockStore.On("SaveStreak", mock.Anything, mock.MatchedBy(func(s *domain.Streak) bool {
		return s.OwnerID == owner && s.Current == 1 && s.UpdatedAt.Equal(fixedNow)
	})).Return(cause).Once()

	entry, err := service.LogReps(context.Background(), owner, drill, 2, "")
	assert.Nil(t, entry)
	assert.ErrorIs(t, err, cause)

	mockStore.AssertExpectations(t)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestReadErrorsAreWrapped(t *testing.T) {
	t.Parallel()

	service, mockStore, _ := newMockedService(t)
	owner := uuid.New()
	cause := errors.New("connection reset")

	mockStore.On("GetStreak", mock.Anything, owner).Return(nil, cause).Once()
	mockStore.On("TotalReps", mock.Anything, owner, mock.Anything).Return(0, cause).Once()
	mockStore.On("ListLogs", mock.Anything, owner, mock.Anything).Return(nil, cause).Once()

	_, err := service.Streak(context.Background(), owner)
	assert.ErrorIs(t, err, cause)

	_, err = service.TotalReps(context.Background(), owner, uuid.New())
	assert.ErrorIs(t, err, cause)

	_, err = service.Logs(context.Background(), owner, 0)
	var serviceErr *activity.ServiceError
	require.ErrorAs(t, err, &serviceErr)
	assert.Equal(t, activity.OpListLogs, serviceErr.Operation)
}
