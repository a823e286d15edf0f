package practice_test

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/drillsched/internal/domain"
	"github.com/phrazzld/drillsched/internal/store"
	"github.com/stretchr/testify/mock"
)

// MockPracticeStore is a mock implementation of the store.PracticeStore interface
type MockPracticeStore struct {
	mock.Mock
}

var _ store.PracticeStore = (*MockPracticeStore)(nil)

func (m *MockPracticeStore) Ensure(ctx context.Context, defaults *domain.PracticeState) (*domain.PracticeState, error) {
	args := m.Called(ctx, defaults)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PracticeState), args.Error(1)
}

func (m *MockPracticeStore) Get(ctx context.Context, ownerID, drillID uuid.UUID) (*domain.PracticeState, error) {
	args := m.Called(ctx, ownerID, drillID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PracticeState), args.Error(1)
}

func (m *MockPracticeStore) GetForUpdate(
	ctx context.Context,
	ownerID, drillID uuid.UUID,
) (*domain.PracticeState, error) {
	args := m.Called(ctx, ownerID, drillID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PracticeState), args.Error(1)
}

func (m *MockPracticeStore) Update(ctx context.Context, state *domain.PracticeState) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}

func (m *MockPracticeStore) ListDue(
	ctx context.Context,
	ownerID uuid.UUID,
	asOf time.Time,
	limit int,
) ([]domain.DuePractice, error) {
	args := m.Called(ctx, ownerID, asOf, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DuePractice), args.Error(1)
}

func (m *MockPracticeStore) CountDue(ctx context.Context, ownerID uuid.UUID, asOf time.Time) (int, error) {
	args := m.Called(ctx, ownerID, asOf)
	return args.Int(0), args.Error(1)
}

func (m *MockPracticeStore) CountByDueDate(
	ctx context.Context,
	ownerID uuid.UUID,
	from, to time.Time,
) ([]domain.DayCount, error) {
	args := m.Called(ctx, ownerID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DayCount), args.Error(1)
}

func (m *MockPracticeStore) WithTx(tx *sql.Tx) store.PracticeStore {
	args := m.Called(tx)
	return args.Get(0).(store.PracticeStore)
}

func (m *MockPracticeStore) DB() *sql.DB {
	args := m.Called()
	return args.Get(0).(*sql.DB)
}
