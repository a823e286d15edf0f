package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/drillsched/internal/domain"
)

// DrillStore maintains the local copy of the drill catalog that due
// listings join against. The catalog itself is owned upstream; this store
// only mirrors it.
type DrillStore interface {
	// Upsert inserts drills or overwrites the existing rows with the same ID.
	// Returns the number of drills written.
	Upsert(ctx context.Context, drills []domain.Drill) (int, error)

	// Get retrieves a drill by ID.
	// Returns ErrDrillNotFound if the drill does not exist.
	Get(ctx context.Context, id uuid.UUID) (*domain.Drill, error)
}
