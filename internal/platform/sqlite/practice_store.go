package sqlite

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

// timestampLayout is fixed-width so that stored timestamps sort lexically.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Question)

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

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid stored timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}

type practiceRow struct {
	ID              string  `db:"id"`
	OwnerID         string  `db:"owner_id"`
	DrillID         string  `db:"drill_id"`
	EaseFactor      float64 `db:"ease_factor"`
	IntervalDays    int     `db:"interval_days"`
	Repetitions     int     `db:"repetitions"`
	NextDueDate     string  `db:"next_due_date"`
	LastPracticedAt string  `db:"last_practiced_at"`
	CreatedAt       string  `db:"created_at"`
	UpdatedAt       string  `db:"updated_at"`
}

func (r practiceRow) toDomain() (*domain.PracticeState, error) {
	var (
		state = &domain.PracticeState{
			EaseFactor:   r.EaseFactor,
			IntervalDays: r.IntervalDays,
			Repetitions:  r.Repetitions,
		}
		err error
	)

	if state.ID, err = uuid.Parse(r.ID); err != nil {
		return nil, err
	}
	if state.OwnerID, err = uuid.Parse(r.OwnerID); err != nil {
		return nil, err
	}
	if state.DrillID, err = uuid.Parse(r.DrillID); err != nil {
		return nil, err
	}
	if state.NextDueDate, err = domain.ParseDate(r.NextDueDate); err != nil {
		return nil, err
	}
	if state.LastPracticedAt, err = parseTimestamp(r.LastPracticedAt); err != nil {
		return nil, err
	}
	if state.CreatedAt, err = parseTimestamp(r.CreatedAt); err != nil {
		return nil, err
	}
	if state.UpdatedAt, err = parseTimestamp(r.UpdatedAt); err != nil {
		return nil, err
	}
	return state, nil
}

type dueRow struct {
	practiceRow
	DrillRef          sql.NullString `db:"drill_ref"`
	DrillName         sql.NullString `db:"drill_name"`
	DrillDescription  sql.NullString `db:"drill_description"`
	DrillCategory     sql.NullString `db:"drill_category"`
	DrillDefaultReps  sql.NullInt64  `db:"drill_default_reps"`
	DrillThumbnailURL sql.NullString `db:"drill_thumbnail_url"`
	DrillVideoURL     sql.NullString `db:"drill_video_url"`
}

func (r dueRow) toDomain() (domain.DuePractice, error) {
	state, err := r.practiceRow.toDomain()
	if err != nil {
		return domain.DuePractice{}, err
	}
	due := domain.DuePractice{State: state}
	if r.DrillRef.Valid {
		id, err := uuid.Parse(r.DrillRef.String)
		if err != nil {
			return domain.DuePractice{}, err
		}
		due.Drill = &domain.Drill{
			ID:           id,
			Name:         r.DrillName.String,
			Description:  r.DrillDescription.String,
			Category:     r.DrillCategory.String,
			DefaultReps:  int(r.DrillDefaultReps.Int64),
			ThumbnailURL: r.DrillThumbnailURL.String,
			VideoURL:     r.DrillVideoURL.String,
		}
	}
	return due, nil
}

type dayCountRow struct {
	DueDate string `db:"due_date"`
	Total   int    `db:"total"`
}

// SQLitePracticeStore implements the store.PracticeStore interface
// using an embedded SQLite database.
type SQLitePracticeStore struct {
	db     store.DBTX
	sqlDB  *sql.DB
	logger *slog.Logger
}

// NewSQLitePracticeStore creates a new SQLite implementation of the PracticeStore interface.
// If logger is nil, a default logger will be used.
func NewSQLitePracticeStore(db *sql.DB, logger *slog.Logger) *SQLitePracticeStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &SQLitePracticeStore{
		db:     db,
		sqlDB:  db,
		logger: logger.With(slog.String("component", "practice_store")),
	}
}

var _ store.PracticeStore = (*SQLitePracticeStore)(nil)

// WithTx implements store.PracticeStore.WithTx
func (s *SQLitePracticeStore) WithTx(tx *sql.Tx) store.PracticeStore {
	return &SQLitePracticeStore{
		db:     tx,
		sqlDB:  s.sqlDB,
		logger: s.logger,
	}
}

// DB implements store.PracticeStore.DB
func (s *SQLitePracticeStore) DB() *sql.DB {
	return s.sqlDB
}

// Ensure implements store.PracticeStore.Ensure
func (s *SQLitePracticeStore) Ensure(
	ctx context.Context,
	defaults *domain.PracticeState,
) (*domain.PracticeState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := defaults.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query, args, err := qb.Insert(practiceTable).
		Columns(
			"id", "owner_id", "drill_id", "ease_factor", "interval_days", "repetitions",
			"next_due_date", "last_practiced_at", "created_at", "updated_at",
		).
		Values(
			defaults.ID.String(),
			defaults.OwnerID.String(),
			defaults.DrillID.String(),
			defaults.EaseFactor,
			defaults.IntervalDays,
			defaults.Repetitions,
			domain.FormatDate(defaults.NextDueDate),
			formatTimestamp(defaults.LastPracticedAt),
			formatTimestamp(defaults.CreatedAt),
			formatTimestamp(defaults.UpdatedAt),
		).
		Suffix("ON CONFLICT (owner_id, drill_id) DO NOTHING").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build ensure query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
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

	return s.Get(ctx, defaults.OwnerID, defaults.DrillID)
}

// Get implements store.PracticeStore.Get
func (s *SQLitePracticeStore) Get(ctx context.Context, ownerID, drillID uuid.UUID) (*domain.PracticeState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query, args, err := qb.Select(practiceColumns...).
		From(practiceTable + " p").
		Where(sq.Eq{"p.owner_id": ownerID.String(), "p.drill_id": drillID.String()}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query practice record", slog.String("error", err.Error()))
		return nil, store.NewStoreError("practice", "get", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var recs []practiceRow
	if err := sqlx.StructScan(rows, &recs); err != nil {
		return nil, store.NewStoreError("practice", "get", "scan failed", err)
	}
	if len(recs) == 0 {
		return nil, store.ErrPracticeNotFound
	}

	state, err := recs[0].toDomain()
	if err != nil {
		return nil, store.NewStoreError("practice", "get", "decode failed", err)
	}
	return state, nil
}

// GetForUpdate implements store.PracticeStore.GetForUpdate.
// SQLite has no row locks; the single pooled connection held by the
// caller's transaction already excludes every other writer.
func (s *SQLitePracticeStore) GetForUpdate(
	ctx context.Context,
	ownerID, drillID uuid.UUID,
) (*domain.PracticeState, error) {
	return s.Get(ctx, ownerID, drillID)
}

// Update implements store.PracticeStore.Update
func (s *SQLitePracticeStore) Update(ctx context.Context, state *domain.PracticeState) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := state.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query, args, err := qb.Update(practiceTable).
		SetMap(map[string]any{
			"ease_factor":       state.EaseFactor,
			"interval_days":     state.IntervalDays,
			"repetitions":       state.Repetitions,
			"next_due_date":     domain.FormatDate(state.NextDueDate),
			"last_practiced_at": formatTimestamp(state.LastPracticedAt),
			"updated_at":        formatTimestamp(state.UpdatedAt),
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

	return checkRowsAffected(result, store.ErrPracticeNotFound)
}

// ListDue implements store.PracticeStore.ListDue
func (s *SQLitePracticeStore) ListDue(
	ctx context.Context,
	ownerID uuid.UUID,
	asOf time.Time,
	limit int,
) ([]domain.DuePractice, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	builder := qb.Select(append(append([]string{}, practiceColumns...), drillColumns...)...).
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
		return nil, store.NewStoreError("practice", "list_due", "scan failed", err)
	}

	due := make([]domain.DuePractice, 0, len(recs))
	for _, r := range recs {
		d, err := r.toDomain()
		if err != nil {
			return nil, store.NewStoreError("practice", "list_due", "decode failed", err)
		}
		due = append(due, d)
	}
	return due, nil
}

// CountDue implements store.PracticeStore.CountDue
func (s *SQLitePracticeStore) CountDue(ctx context.Context, ownerID uuid.UUID, asOf time.Time) (int, error) {
	query, args, err := qb.Select("COUNT(*)").
		From(practiceTable).
		Where(sq.Eq{"owner_id": ownerID.String()}).
		Where(sq.LtOrEq{"next_due_date": domain.FormatDate(asOf)}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, store.NewStoreError("practice", "count_due", "query failed", MapError(err))
	}
	return count, nil
}

// CountByDueDate implements store.PracticeStore.CountByDueDate
func (s *SQLitePracticeStore) CountByDueDate(
	ctx context.Context,
	ownerID uuid.UUID,
	from, to time.Time,
) ([]domain.DayCount, error) {
	query, args, err := qb.Select("next_due_date AS due_date", "COUNT(*) AS total").
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
		return nil, store.NewStoreError("practice", "count_by_due_date", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var recs []dayCountRow
	if err := sqlx.StructScan(rows, &recs); err != nil {
		return nil, store.NewStoreError("practice", "count_by_due_date", "scan failed", err)
	}

	counts := make([]domain.DayCount, 0, len(recs))
	for _, r := range recs {
		date, err := domain.ParseDate(r.DueDate)
		if err != nil {
			return nil, store.NewStoreError("practice", "count_by_due_date", "decode failed", err)
		}
		counts = append(counts, domain.DayCount{Date: date, Count: r.Total})
	}
	return counts, nil
}
