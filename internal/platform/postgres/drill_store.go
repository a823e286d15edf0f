package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/phrazzld/drillsched/internal/domain"
	"github.com/phrazzld/drillsched/internal/platform/logger"
	"github.com/phrazzld/drillsched/internal/store"
)

const drillUpsertSuffix = `ON CONFLICT (id) DO UPDATE SET
	name = EXCLUDED.name,
	description = EXCLUDED.description,
	category = EXCLUDED.category,
	default_reps = EXCLUDED.default_reps,
	thumbnail_url = EXCLUDED.thumbnail_url,
	video_url = EXCLUDED.video_url`

// PostgresDrillStore implements the store.DrillStore interface.
type PostgresDrillStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresDrillStore creates a new PostgreSQL implementation of the DrillStore interface.
func NewPostgresDrillStore(db store.DBTX, logger *slog.Logger) *PostgresDrillStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresDrillStore{
		db:     db,
		logger: logger.With(slog.String("component", "drill_store")),
	}
}

var _ store.DrillStore = (*PostgresDrillStore)(nil)

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Upsert implements store.DrillStore.Upsert
func (s *PostgresDrillStore) Upsert(ctx context.Context, drills []domain.Drill) (int, error) {
	if len(drills) == 0 {
		return 0, nil
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	builder := psql.Insert("drills").
		Columns("id", "name", "description", "category", "default_reps", "thumbnail_url", "video_url")
	for _, d := range drills {
		if d.ID == uuid.Nil || d.Name == "" {
			return 0, fmt.Errorf("%w: drill requires an id and a name", store.ErrInvalidEntity)
		}
		builder = builder.Values(
			d.ID, d.Name, nullable(d.Description), nullable(d.Category),
			d.DefaultReps, nullable(d.ThumbnailURL), nullable(d.VideoURL),
		)
	}

	query, args, err := builder.Suffix(drillUpsertSuffix).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build drill upsert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to upsert drills", slog.String("error", err.Error()))
		return 0, store.NewStoreError("drill", "upsert", "insert failed", MapError(err))
	}

	log.Info("drills upserted", slog.Int("count", len(drills)))
	return len(drills), nil
}

// Get implements store.DrillStore.Get
func (s *PostgresDrillStore) Get(ctx context.Context, id uuid.UUID) (*domain.Drill, error) {
	query, args, err := psql.Select(
		"name", "description", "category", "default_reps", "thumbnail_url", "video_url",
	).From("drills").Where(sq.Eq{"id": id.String()}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build drill query: %w", err)
	}

	var (
		d                              = domain.Drill{ID: id}
		desc, category, thumbnail, vid sql.NullString
		reps                           sql.NullInt64
	)
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&d.Name, &desc, &category, &reps, &thumbnail, &vid)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrDrillNotFound
	}
	if err != nil {
		return nil, store.NewStoreError("drill", "get", "query failed", MapError(err))
	}

	d.Description = desc.String
	d.Category = category.String
	d.DefaultReps = int(reps.Int64)
	d.ThumbnailURL = thumbnail.String
	d.VideoURL = vid.String
	return &d, nil
}
