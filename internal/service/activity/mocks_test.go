package activity_test

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/drillsched/internal/domain"
	"github.com/phrazzld/drillsched/internal/store"
	"github.com/stretchr/testify/mock"
)

// MockActivityStore is a mock implementation of the store.ActivityStore interface
type MockActivityStore struct {
	mock.Mock
}

var _ store.ActivityStore = (*MockActivityStore)(nil)

func (m *MockActivityStore) InsertLog(ctx context.Context, log *domain.DrillLog) error {
	return m.Called(ctx, log).Error(0)
}

func (m *MockActivityStore) ListLogs(
	ctx context.Context,
	ownerID uuid.UUID,
	filter store.LogFilter,
) ([]domain.DrillLog, error) {
	args := m.Called(ctx, ownerID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DrillLog), args.Error(1)
}

func (m *MockActivityStore) TotalReps(ctx context.Context, ownerID, drillID uuid.UUID) (int, error) {
	args := m.Called(ctx, ownerID, drillID)
	return args.Int(0), args.Error(1)
}

func (m *MockActivityStore) AddDailyActivity(
	ctx context.Context,
	ownerID uuid.UUID,
	date time.Time,
	drillsLogged, reps int,
) error {
	return m.Called(ctx, ownerID, date, drillsLogged, reps).Error(0)
}

func (m *MockActivityStore) ListDailyActivity(
	ctx context.Context,
	ownerID uuid.UUID,
	from, to time.Time,
) ([]domain.DailyActivity, error) {
	args := m.Called(ctx, ownerID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DailyActivity), args.Error(1)
}

func (m *MockActivityStore) GetStreak(ctx context.Context, ownerID uuid.UUID) (*domain.Streak, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Streak), args.Error(1)
}

func (m *MockActivityStore) GetStreakForUpdate(ctx context.Context, ownerID uuid.UUID) (*domain.Streak, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Streak), args.Error(1)
}

func (m *MockActivityStore) SaveStreak(ctx context.Context, streak *domain.Streak) error {
	return m.Called(ctx, streak).Error(0)
}

func (m *MockActivityStore) WithTx(tx *sql.Tx) store.ActivityStore {
	args := m.Called(tx)
	return args.Get(0).(store.ActivityStore)
}

func (m *MockActivityStore) DB() *sql.DB {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*sql.DB)
}
