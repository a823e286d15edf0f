package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/drillsched/internal/domain"
	"github.com/phrazzld/drillsched/internal/platform/logger"
	"github.com/phrazzld/drillsched/internal/store"
)

const practiceTable = "drill_practice"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var practiceColumns = []string{
	"p.id",
	"p.owner_id",
	"p.drill_id",
	"p.ease_factor",
	"p.interval_days",
	"p.repetitions",
	"p.next_due_date",
	"p.last_practiced_at",
	"p.created_at",
	"p.updated_at",
}

var drillColumns = []string{
	"d.id AS drill_ref",
	"d.name AS drill_name",
	"d.description AS drill_description",
	"d.category AS drill_category",
	"d.default_reps AS drill_default_reps",
	"d.thumbnail_url AS drill_thumbnail_url",
	"d.video_url AS drill_video_url",
}

// practiceRow is the scan target for a drill_practice row.
type practiceRow struct {
	ID              uuid.UUID `db:"id"`
	OwnerID         uuid.UUID `db:"owner_id"`
	DrillID         uuid.UUID `db:"drill_id"`
	EaseFactor      float64   `db:"ease_factor"`
	IntervalDays    int       `db:"interval_days"`
	Repetitions     int       `db:"repetitions"`
	NextDueDate     time.Time `db:"next_due_date"`
	LastPracticedAt time.Time `db:"last_practiced_at"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

func (r practiceRow) toDomain() *domain.PracticeState {
	return &domain.PracticeState{
		ID:              r.ID,
		OwnerID:         r.OwnerID,
		DrillID:         r.DrillID,
		EaseFactor:      r.EaseFactor,
		IntervalDays:    r.IntervalDays,
		Repetitions:     r.Repetitions,
		NextDueDate:     domain.DateOf(r.NextDueDate, time.UTC),
		LastPracticedAt: r.LastPracticedAt.UTC(),
		CreatedAt:       r.CreatedAt.UTC(),
		UpdatedAt:       r.UpdatedAt.UTC(),
	}
}

// dueRow is a practice row left-joined with its drill.
type dueRow struct {
	practiceRow
	DrillRef          uuid.NullUUID  `db:"drill_ref"`
	DrillName         sql.NullString `db:"drill_name"`
	DrillDescription  sql.NullString `db:"drill_description"`
	DrillCategory     sql.NullString `db:"drill_category"`
	DrillDefaultReps  sql.NullInt64  `db:"drill_default_reps"`
	DrillThumbnailURL sql.NullString `db:"drill_thumbnail_url"`
	DrillVideoURL     sql.NullString `db:"drill_video_url"`
}

func (r dueRow) toDomain() domain.DuePractice {
	due := domain.DuePractice{State: r.practiceRow.toDomain()}
	if r.DrillRef.Valid {
		due.Drill = &domain.Drill{
			ID:           r.DrillRef.UUID,
			Name:         r.DrillName.String,
			Description:  r.DrillDescription.String,
			Category:     r.DrillCategory.String,
			DefaultReps:  int(r.DrillDefaultReps.Int64),
			ThumbnailURL: r.DrillThumbnailURL.String,
			VideoURL:     r.DrillVideoURL.String,
		}
	}
	return due
}

type dayCountRow struct {
	DueDate time.Time `db:"due_date"`
	Total   int       `db:"total"`
}

// PostgresPracticeStore implements the store.PracticeStore interface
// using a PostgreSQL database as the storage backend.
type PostgresPracticeStore struct {
	db     store.DBTX
	sqlDB  *sql.DB
	logger *slog.Logger
}

// NewPostgresPracticeStore creates a new PostgreSQL implementation of the PracticeStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresPracticeStore(db *sql.DB, logger *slog.Logger) *PostgresPracticeStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresPracticeStore{
		db:     db,
		sqlDB:  db,
		logger: logger.With(slog.String("component", "practice_store")),
	}
}

// Ensure PostgresPracticeStore implements store.PracticeStore interface
var _ store.PracticeStore = (*PostgresPracticeStore)(nil)

// WithTx implements store.PracticeStore.WithTx
func (s *PostgresPracticeStore) WithTx(tx *sql.Tx) store.PracticeStore {
	return &PostgresPracticeStore{
		db:     tx,
		sqlDB:  s.sqlDB,
		logger: s.logger,
	}
}

// DB implements store.PracticeStore.DB
func (s *PostgresPracticeStore) DB() *sql.DB {
	return s.sqlDB
}

// Ensure implements store.PracticeStore.Ensure.
// The insert is a no-op when the (owner, drill) pair already exists.
func (s *PostgresPracticeStore) Ensure(
	ctx context.Context,
	defaults *domain.PracticeState,
) (*domain.PracticeState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := defaults.Validate(); err != nil {
		log.Warn("practice validation failed during ensure",
			slog.String("error", err.Error()),
			slog.String("drill_id", defaults.DrillID.String()))
		return nil, fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query, args, err := psql.Insert(practiceTable).
		Columns(
			"id", "owner_id", "drill_id", "ease_factor", "interval_days", "repetitions",
			"next_due_date", "last_practiced_at", "created_at", "updated_at",
		).
		Values(
			defaults.ID,
			defaults.OwnerID,
			defaults.DrillID,
			defaults.EaseFactor,
			defaults.IntervalDays,
			defaults.Repetitions,
			domain.FormatDate(defaults.NextDueDate),
			defaults.LastPracticedAt,
			defaults.CreatedAt,
			defaults.UpdatedAt,
		).
		Suffix("ON CONFLICT (owner_id, drill_id) DO NOTHING").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build ensure query: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		mapped := MapError(err)
		if errors.Is(mapped, store.ErrDrillNotFound) {
			log.Debug("drill not in catalog", slog.String("drill_id", defaults.DrillID.String()))
			return nil, store.ErrDrillNotFound
		}
		log.Error("failed to insert practice record",
			slog.String("error", err.Error()),
			slog.String("drill_id", defaults.DrillID.String()))
		return nil, store.NewStoreError("practice", "ensure", "insert failed", mapped)
	}

	if n, err := result.RowsAffected(); err == nil && n > 0 {
		log.Info("practice record created",
			slog.String("owner_id", defaults.OwnerID.String()),
			slog.String("drill_id", defaults.DrillID.String()))
	}

	return s.get(ctx, defaults.OwnerID, defaults.DrillID, false)
}

// Get implements store.PracticeStore.Get
func (s *PostgresPracticeStore) Get(ctx context.Context, ownerID, drillID uuid.UUID) (*domain.PracticeState, error) {
	return s.get(ctx, ownerID, drillID, false)
}

// GetForUpdate implements store.PracticeStore.GetForUpdate using SELECT ... FOR UPDATE.
func (s *PostgresPracticeStore) GetForUpdate(
	ctx context.Context,
	ownerID, drillID uuid.UUID,
) (*domain.PracticeState, error) {
	return s.get(ctx, ownerID, drillID, true)
}

func (s *PostgresPracticeStore) get(
	ctx context.Context,
	ownerID, drillID uuid.UUID,
	forUpdate bool,
) (*domain.PracticeState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	builder := psql.Select(practiceColumns...).
		From(practiceTable + " p").
		Where(sq.Eq{"p.owner_id": ownerID.String(), "p.drill_id": drillID.String()})
	if forUpdate {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query practice record",
			slog.String("error", err.Error()),
			slog.String("drill_id", drillID.String()))
		return nil, store.NewStoreError("practice", "get", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var recs []practiceRow
	if err := sqlx.StructScan(rows, &recs); err != nil {
		log.Error("failed to scan practice record", slog.String("error", err.Error()))
		return nil, store.NewStoreError("practice", "get", "scan failed", err)
	}

	if len(recs) == 0 {
		log.Debug("practice record not found",
			slog.String("owner_id", ownerID.String()),
			slog.String("drill_id", drillID.String()))
		return nil, store.ErrPracticeNotFound
	}

	return recs[0].toDomain(), nil
}

// Update implements store.PracticeStore.Update
func (s *PostgresPracticeStore) Update(ctx context.Context, state *domain.PracticeState) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := state.Validate(); err != nil {
		log.Warn("practice validation failed during update",
			slog.String("error", err.Error()),
			slog.String("drill_id", state.DrillID.String()))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query, args, err := psql.Update(practiceTable).
		SetMap(map[string]any{
			"ease_factor":       state.EaseFactor,
			"interval_days":     state.IntervalDays,
			"repetitions":       state.Repetitions,
			"next_due_date":     domain.FormatDate(state.NextDueDate),
			"last_practiced_at": state.LastPracticedAt,
			"updated_at":        state.UpdatedAt,
		}).
		Where(sq.Eq{"owner_id": state.OwnerID.String(), "drill_id": state.DrillID.String()}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to update practice record",
			slog.String("error", err.Error()),
			slog.String("drill_id", state.DrillID.String()))
		return store.NewStoreError("practice", "update", "update failed", MapError(err))
	}

	if err := checkRowsAffected(result, store.ErrPracticeNotFound); err != nil {
		log.Debug("practice record not found for update",
			slog.String("drill_id", state.DrillID.String()))
		return err
	}

	log.Debug("practice record updated",
		slog.String("drill_id", state.DrillID.String()),
		slog.Int("interval_days", state.IntervalDays),
		slog.String("next_due_date", domain.FormatDate(state.NextDueDate)))
	return nil
}

// ListDue implements store.PracticeStore.ListDue
func (s *PostgresPracticeStore) ListDue(
	ctx context.Context,
	ownerID uuid.UUID,
	asOf time.Time,
	limit int,
) ([]domain.DuePractice, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	builder := psql.Select(append(append([]string{}, practiceColumns...), drillColumns...)...).
		From(practiceTable + " p").
		LeftJoin("drills d ON d.id = p.drill_id").
		Where(sq.Eq{"p.owner_id": ownerID.String()}).
		Where(sq.LtOrEq{"p.next_due_date": domain.FormatDate(asOf)}).
		OrderBy("p.next_due_date ASC", "p.drill_id ASC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build due query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query due practice", slog.String("error", err.Error()))
		return nil, store.NewStoreError("practice", "list_due", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var recs []dueRow
	if err := sqlx.StructScan(rows, &recs); err != nil {
		log.Error("failed to scan due practice", slog.String("error", err.Error()))
		return nil, store.NewStoreError("practice", "list_due", "scan failed", err)
	}

	due := make([]domain.DuePractice, 0, len(recs))
	for _, r := range recs {
		due = append(due, r.toDomain())
	}

	log.Debug("listed due practice",
		slog.String("as_of", domain.FormatDate(asOf)),
		slog.Int("count", len(due)))
	return due, nil
}

// CountDue implements store.PracticeStore.CountDue
func (s *PostgresPracticeStore) CountDue(ctx context.Context, ownerID uuid.UUID, asOf time.Time) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query, args, err := psql.Select("COUNT(*)").
		From(practiceTable).
		Where(sq.Eq{"owner_id": ownerID.String()}).
		Where(sq.LtOrEq{"next_due_date": domain.FormatDate(asOf)}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		log.Error("failed to count due practice", slog.String("error", err.Error()))
		return 0, store.NewStoreError("practice", "count_due", "query failed", MapError(err))
	}
	return count, nil
}

// CountByDueDate implements store.PracticeStore.CountByDueDate
func (s *PostgresPracticeStore) CountByDueDate(
	ctx context.Context,
	ownerID uuid.UUID,
	from, to time.Time,
) ([]domain.DayCount, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query, args, err := psql.Select("next_due_date AS due_date", "COUNT(*) AS total").
		From(practiceTable).
		Where(sq.Eq{"owner_id": ownerID.String()}).
		Where(sq.GtOrEq{"next_due_date": domain.FormatDate(from)}).
		Where(sq.LtOrEq{"next_due_date": domain.FormatDate(to)}).
		GroupBy("next_due_date").
		OrderBy("next_due_date ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build forecast query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query forecast", slog.String("error", err.Error()))
		return nil, store.NewStoreError("practice", "count_by_due_date", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var recs []dayCountRow
	if err := sqlx.StructScan(rows, &recs); err != nil {
		return nil, store.NewStoreError("practice", "count_by_due_date", "scan failed", err)
	}

	counts := make([]domain.DayCount, 0, len(recs))
	for _, r := range recs {
		counts = append(counts, domain.DayCount{Date: domain.DateOf(r.DueDate, time.UTC), Count: r.Total})
	}
	return counts, nil
}
