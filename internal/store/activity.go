package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/drillsched/internal/domain"
)

// LogFilter narrows a rep log listing. Zero values disable a filter.
type LogFilter struct {
	// DrillID restricts the listing to one drill.
	DrillID uuid.UUID
	// Since keeps logs with LoggedAt at or after this instant.
	Since time.Time
	// Limit caps the number of logs returned.
	Limit int
}

// ActivityStore persists the training history: rep logs, per-day activity
// totals and the owner's streak. Dates are calendar dates at midnight UTC.
type ActivityStore interface {
	// InsertLog appends a rep log. It validates the log first.
	// Returns ErrDrillNotFound if the drill is not in the catalog.
	InsertLog(ctx context.Context, log *domain.DrillLog) error

	// ListLogs returns the owner's logs matching filter, most recent first.
	ListLogs(ctx context.Context, ownerID uuid.UUID, filter LogFilter) ([]domain.DrillLog, error)

	// TotalReps sums the reps the owner has logged for a drill.
	TotalReps(ctx context.Context, ownerID, drillID uuid.UUID) (int, error)

	// AddDailyActivity adds to the owner's totals for date, creating the row
	// on first use. The increment is atomic.
	AddDailyActivity(ctx context.Context, ownerID uuid.UUID, date time.Time, drillsLogged, reps int) error

	// ListDailyActivity returns the owner's per-day totals within [from, to],
	// ordered by date. Days without activity are omitted.
	ListDailyActivity(ctx context.Context, ownerID uuid.UUID, from, to time.Time) ([]domain.DailyActivity, error)

	// GetStreak retrieves the owner's streak.
	// Returns ErrStreakNotFound if the owner has never logged activity.
	GetStreak(ctx context.Context, ownerID uuid.UUID) (*domain.Streak, error)

	// GetStreakForUpdate is GetStreak with a row-level lock held until the
	// surrounding transaction ends.
	GetStreakForUpdate(ctx context.Context, ownerID uuid.UUID) (*domain.Streak, error)

	// SaveStreak inserts or overwrites the owner's streak.
	SaveStreak(ctx context.Context, streak *domain.Streak) error

	// WithTx returns a new ActivityStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ActivityStore

	// DB returns the underlying database handle.
	DB() *sql.DB
}
