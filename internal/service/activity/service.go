package activity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/drillsched/internal/domain"
)

// Service records rep logs and reports the training history derived from
// them.
//
// As with the practice service, a uuid.Nil owner means no identity is
// available: writes are skipped and reads return empty results, all with a
// nil error. Inputs are still validated first.
type Service interface {
	// LogReps appends a rep log for the drill and, in the same transaction,
	// adds it to today's activity totals and advances the streak.
	//
	// Returns ErrInvalidReps when reps is below 1, domain.ErrNotesTooLong for
	// oversized notes and store.ErrDrillNotFound (wrapped) for an unknown drill.
	LogReps(ctx context.Context, ownerID, drillID uuid.UUID, reps int, notes string) (*domain.DrillLog, error)

	// DrillLogs returns the owner's most recent logs for one drill. A limit
	// of zero or less uses the configured default.
	DrillLogs(ctx context.Context, ownerID, drillID uuid.UUID, limit int) ([]domain.DrillLog, error)

	// Logs returns the owner's most recent logs across all drills.
	Logs(ctx context.Context, ownerID uuid.UUID, limit int) ([]domain.DrillLog, error)

	// TodayLogs returns the logs made since midnight in the scheduling time zone.
	TodayLogs(ctx context.Context, ownerID uuid.UUID) ([]domain.DrillLog, error)

	// TotalReps sums every rep the owner has logged for the drill.
	TotalReps(ctx context.Context, ownerID, drillID uuid.UUID) (int, error)

	// Streak returns the owner's streak as of today. An owner who never
	// logged has a zero streak; a streak not extended yesterday or today
	// reports a current length of 0.
	Streak(ctx context.Context, ownerID uuid.UUID) (domain.Streak, error)

	// DailyActivity returns per-day totals within [from, to] for a heatmap.
	// A zero to means today and a zero from means the configured number of
	// days ending at to.
	//
	// Returns ErrInvalidWindow when from is after to or the window is longer
	// than the configured maximum.
	DailyActivity(ctx context.Context, ownerID uuid.UUID, from, to time.Time) ([]domain.DailyActivity, error)
}

// Common error types for the activity service
var (
	// ErrInvalidReps indicates a rep count below 1.
	ErrInvalidReps = domain.ErrInvalidReps

	// ErrInvalidWindow indicates a heatmap window that is reversed or too long.
	ErrInvalidWindow = errors.New("invalid activity window")
)

// ServiceError wraps errors from the activity service with the failed operation.
type ServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Operation names used in ServiceError.
const (
	OpLogReps       = "log_reps"
	OpListLogs      = "list_logs"
	OpTotalReps     = "total_reps"
	OpStreak        = "streak"
	OpDailyActivity = "daily_activity"
)

// NewServiceError returns a new ServiceError for the given operation.
func NewServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
