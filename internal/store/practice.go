package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/drillsched/internal/domain"
)

// PracticeStore defines the interface for practice record persistence.
// Dates passed in and returned are calendar dates at midnight UTC.
type PracticeStore interface {
	// Ensure inserts defaults unless a record for (defaults.OwnerID,
	// defaults.DrillID) already exists, then returns the stored record.
	// Concurrent callers never create duplicates.
	// Returns ErrDrillNotFound if the drill is not in the catalog.
	Ensure(ctx context.Context, defaults *domain.PracticeState) (*domain.PracticeState, error)

	// Get retrieves the record for an owner and drill.
	// Returns ErrPracticeNotFound if the record does not exist.
	// NOTE: This method does NOT lock the row; use GetForUpdate inside a
	// transaction before a read-modify-write.
	Get(ctx context.Context, ownerID, drillID uuid.UUID) (*domain.PracticeState, error)

	// GetForUpdate retrieves the record with a row-level lock held until the
	// surrounding transaction ends.
	// Returns ErrPracticeNotFound if the record does not exist.
	GetForUpdate(ctx context.Context, ownerID, drillID uuid.UUID) (*domain.PracticeState, error)

	// Update writes the scheduling fields of an existing record identified by
	// its owner and drill. It validates the state first.
	// Returns ErrPracticeNotFound if the record does not exist.
	Update(ctx context.Context, state *domain.PracticeState) error

	// ListDue returns the owner's records due on or before asOf with their
	// drill metadata, earliest due date first. limit <= 0 means no limit.
	ListDue(ctx context.Context, ownerID uuid.UUID, asOf time.Time, limit int) ([]domain.DuePractice, error)

	// CountDue returns how many of the owner's records are due on or before asOf.
	CountDue(ctx context.Context, ownerID uuid.UUID, asOf time.Time) (int, error)

	// CountByDueDate returns per-day counts of the owner's records falling
	// due within [from, to], ordered by date. Days without records are omitted.
	CountByDueDate(ctx context.Context, ownerID uuid.UUID, from, to time.Time) ([]domain.DayCount, error)

	// WithTx returns a new PracticeStore instance that uses the provided transaction.
	// The transaction should be created and managed by the caller (typically a service).
	WithTx(tx *sql.Tx) PracticeStore

	// DB returns the underlying database handle so that callers can open
	// transactions with RunInTransaction.
	DB() *sql.DB
}
