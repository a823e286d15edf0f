package practice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/drillsched/internal/domain"
)

// Service provides the practice scheduling operations.
//
// Every operation takes the owner explicitly. A uuid.Nil owner means no
// identity is available; operations then return their empty result (nil
// state, empty slice, zero, empty map) and a nil error.
type Service interface {
	// GetOrCreate returns the owner's record for the drill, creating it with
	// default scheduling on first access. Concurrent first accesses create
	// exactly one record.
	//
	// Returns store.ErrDrillNotFound (wrapped) when the drill is unknown.
	GetOrCreate(ctx context.Context, ownerID, drillID uuid.UUID) (*domain.PracticeState, error)

	// RecordPractice applies one practice with the given quality and persists
	// the outcome. The quality is validated before anything is read or
	// written. The read-modify-write runs in a single transaction holding a
	// row lock, so concurrent submissions for the same record are applied in
	// sequence.
	//
	// Returns ErrInvalidQuality when quality is outside 0..5.
	RecordPractice(
		ctx context.Context,
		ownerID, drillID uuid.UUID,
		quality domain.Quality,
	) (*domain.PracticeState, error)

	// ListDue returns the owner's records due on or before asOf, earliest
	// first, with drill metadata. A zero asOf means today. Every due record
	// is returned unless a due list limit was configured.
	ListDue(ctx context.Context, ownerID uuid.UUID, asOf time.Time) ([]domain.DuePractice, error)

	// CountDue returns the number of records ListDue would match, ignoring
	// the list limit.
	CountDue(ctx context.Context, ownerID uuid.UUID, asOf time.Time) (int, error)

	// Upcoming returns per-day counts of records falling due in [from, to],
	// keyed by YYYY-MM-DD. Only days with at least one record appear.
	//
	// Returns ErrInvalidWindow when from is after to or the window is longer
	// than the configured maximum.
	Upcoming(ctx context.Context, ownerID uuid.UUID, from, to time.Time) (map[string]int, error)

	// Reset restores the record's scheduling to the defaults. A drill that
	// was never practiced has no record and Reset returns (nil, nil) without
	// creating one.
	Reset(ctx context.Context, ownerID, drillID uuid.UUID) (*domain.PracticeState, error)

	// Today is the current calendar date in the scheduling time zone.
	Today() time.Time
}

// Common error types for the practice service
var (
	// ErrInvalidQuality indicates a quality rating outside 0..5.
	ErrInvalidQuality = domain.ErrInvalidQuality

	// ErrInvalidWindow indicates a forecast window that is reversed or too long.
	ErrInvalidWindow = errors.New("invalid forecast window")
)

// ServiceError wraps errors from the practice service with additional context.
// This allows consumers to differentiate between different types of service errors
// using errors.As instead of string matching.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "record_practice")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
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
	OpGetOrCreate    = "get_or_create"
	OpRecordPractice = "record_practice"
	OpListDue        = "list_due"
	OpCountDue       = "count_due"
	OpUpcoming       = "upcoming"
	OpReset          = "reset"
)

// NewServiceError returns a new ServiceError for the given operation.
func NewServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
