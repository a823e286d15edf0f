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

const (
	logTable      = "drill_logs"
	activityTable = "daily_activity"
	streakTable   = "user_streaks"
)

const dailyActivityUpsertSuffix = `ON CONFLICT (owner_id, activity_date) DO UPDATE SET
	drills_logged = daily_activity.drills_logged + EXCLUDED.drills_logged,
	total_reps = daily_activity.total_reps + EXCLUDED.total_reps,
	updated_at = EXCLUDED.updated_at`

const streakUpsertSuffix = `ON CONFLICT (owner_id) DO UPDATE SET
	current_streak = EXCLUDED.current_streak,
	longest_streak = EXCLUDED.longest_streak,
	last_activity_date = EXCLUDED.last_activity_date,
	updated_at = EXCLUDED.updated_at`

var logColumns = []string{"id", "owner_id", "drill_id", "reps", "notes", "logged_at", "created_at"}

type logRow struct {
	ID        uuid.UUID      `db:"id"`
	OwnerID   uuid.UUID      `db:"owner_id"`
	DrillID   uuid.UUID      `db:"drill_id"`
	Reps      int            `db:"reps"`
	Notes     sql.NullString `db:"notes"`
	LoggedAt  time.Time      `db:"logged_at"`
	CreatedAt time.Time      `db:"created_at"`
}

func (r logRow) toDomain() domain.DrillLog {
	return domain.DrillLog{
		ID:        r.ID,
		OwnerID:   r.OwnerID,
		DrillID:   r.DrillID,
		Reps:      r.Reps,
		Notes:     r.Notes.String,
		LoggedAt:  r.LoggedAt.UTC(),
		CreatedAt: r.CreatedAt.UTC(),
	}
}

type activityRow struct {
	ActivityDate time.Time `db:"activity_date"`
	DrillsLogged int       `db:"drills_logged"`
	TotalReps    int       `db:"total_reps"`
}

type streakRow struct {
	OwnerID          uuid.UUID `db:"owner_id"`
	CurrentStreak    int       `db:"current_streak"`
	LongestStreak    int       `db:"longest_streak"`
	LastActivityDate time.Time `db:"last_activity_date"`
	UpdatedAt        time.Time `db:"updated_at"`
}

// PostgresActivityStore implements the store.ActivityStore interface
// using a PostgreSQL database as the storage backend.
type PostgresActivityStore struct {
	db     store.DBTX
	sqlDB  *sql.DB
	logger *slog.Logger
}

// NewPostgresActivityStore creates a new PostgreSQL implementation of the ActivityStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresActivityStore(db *sql.DB, logger *slog.Logger) *PostgresActivityStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresActivityStore{
		db:     db,
		sqlDB:  db,
		logger: logger.With(slog.String("component", "activity_store")),
	}
}

var _ store.ActivityStore = (*PostgresActivityStore)(nil)

// WithTx implements store.ActivityStore.WithTx
func (s *PostgresActivityStore) WithTx(tx *sql.Tx) store.ActivityStore {
	return &PostgresActivityStore{
		db:     tx,
		sqlDB:  s.sqlDB,
		logger: s.logger,
	}
}

// DB implements store.ActivityStore.DB
func (s *PostgresActivityStore) DB() *sql.DB {
	return s.sqlDB
}

// InsertLog implements store.ActivityStore.InsertLog
func (s *PostgresActivityStore) InsertLog(ctx context.Context, entry *domain.DrillLog) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := entry.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query, args, err := psql.Insert(logTable).
		Columns(logColumns...).
		Values(
			entry.ID,
			entry.OwnerID,
			entry.DrillID,
			entry.Reps,
			nullable(entry.Notes),
			entry.LoggedAt,
			entry.CreatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert log query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		mapped := MapError(err)
		if errors.Is(mapped, store.ErrDrillNotFound) {
			return store.ErrDrillNotFound
		}
		log.Error("failed to insert drill log",
			slog.String("error", err.Error()),
			slog.String("drill_id", entry.DrillID.String()))
		return store.NewStoreError("drill_log", "insert", "insert failed", mapped)
	}

	log.Debug("drill log inserted",
		slog.String("drill_id", entry.DrillID.String()),
		slog.Int("reps", entry.Reps))
	return nil
}

// ListLogs implements store.ActivityStore.ListLogs
func (s *PostgresActivityStore) ListLogs(
	ctx context.Context,
	ownerID uuid.UUID,
	filter store.LogFilter,
) ([]domain.DrillLog, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	builder := psql.Select(logColumns...).
		From(logTable).
		Where(sq.Eq{"owner_id": ownerID.String()}).
		OrderBy("logged_at DESC", "id DESC")
	if filter.DrillID != uuid.Nil {
		builder = builder.Where(sq.Eq{"drill_id": filter.DrillID.String()})
	}
	if !filter.Since.IsZero() {
		builder = builder.Where(sq.GtOrEq{"logged_at": filter.Since.UTC()})
	}
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build log query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query drill logs", slog.String("error", err.Error()))
		return nil, store.NewStoreError("drill_log", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var recs []logRow
	if err := sqlx.StructScan(rows, &recs); err != nil {
		return nil, store.NewStoreError("drill_log", "list", "scan failed", err)
	}

	logs := make([]domain.DrillLog, 0, len(recs))
	for _, r := range recs {
		logs = append(logs, r.toDomain())
	}
	return logs, nil
}

// TotalReps implements store.ActivityStore.TotalReps
func (s *PostgresActivityStore) TotalReps(ctx context.Context, ownerID, drillID uuid.UUID) (int, error) {
	query, args, err := psql.Select("COALESCE(SUM(reps), 0)").
		From(logTable).
		Where(sq.Eq{"owner_id": ownerID.String(), "drill_id": drillID.String()}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build total reps query: %w", err)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, store.NewStoreError("drill_log", "total_reps", "query failed", MapError(err))
	}
	return total, nil
}

// AddDailyActivity implements store.ActivityStore.AddDailyActivity
func (s *PostgresActivityStore) AddDailyActivity(
	ctx context.Context,
	ownerID uuid.UUID,
	date time.Time,
	drillsLogged, reps int,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query, args, err := psql.Insert(activityTable).
		Columns("owner_id", "activity_date", "drills_logged", "total_reps", "updated_at").
		Values(ownerID, domain.FormatDate(date), drillsLogged, reps, sq.Expr("NOW()")).
		Suffix(dailyActivityUpsertSuffix).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build daily activity query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to upsert daily activity",
			slog.String("error", err.Error()),
			slog.String("date", domain.FormatDate(date)))
		return store.NewStoreError("daily_activity", "add", "upsert failed", MapError(err))
	}
	return nil
}

// ListDailyActivity implements store.ActivityStore.ListDailyActivity
func (s *PostgresActivityStore) ListDailyActivity(
	ctx context.Context,
	ownerID uuid.UUID,
	from, to time.Time,
) ([]domain.DailyActivity, error) {
	query, args, err := psql.Select("activity_date", "drills_logged", "total_reps").
		From(activityTable).
		Where(sq.Eq{"owner_id": ownerID.String()}).
		Where(sq.GtOrEq{"activity_date": domain.FormatDate(from)}).
		Where(sq.LtOrEq{"activity_date": domain.FormatDate(to)}).
		OrderBy("activity_date ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build daily activity query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, store.NewStoreError("daily_activity", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var recs []activityRow
	if err := sqlx.StructScan(rows, &recs); err != nil {
		return nil, store.NewStoreError("daily_activity", "list", "scan failed", err)
	}

	days := make([]domain.DailyActivity, 0, len(recs))
	for _, r := range recs {
		days = append(days, domain.DailyActivity{
			Date:         domain.DateOf(r.ActivityDate, time.UTC),
			DrillsLogged: r.DrillsLogged,
			TotalReps:    r.TotalReps,
		})
	}
	return days, nil
}

// GetStreak implements store.ActivityStore.GetStreak
func (s *PostgresActivityStore) GetStreak(ctx context.Context, ownerID uuid.UUID) (*domain.Streak, error) {
	return s.getStreak(ctx, ownerID, false)
}

// GetStreakForUpdate implements store.ActivityStore.GetStreakForUpdate using SELECT ... FOR UPDATE.
func (s *PostgresActivityStore) GetStreakForUpdate(ctx context.Context, ownerID uuid.UUID) (*domain.Streak, error) {
	return s.getStreak(ctx, ownerID, true)
}

func (s *PostgresActivityStore) getStreak(
	ctx context.Context,
	ownerID uuid.UUID,
	forUpdate bool,
) (*domain.Streak, error) {
	builder := psql.Select("owner_id", "current_streak", "longest_streak", "last_activity_date", "updated_at").
		From(streakTable).
		Where(sq.Eq{"owner_id": ownerID.String()})
	if forUpdate {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build streak query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, store.NewStoreError("streak", "get", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var recs []streakRow
	if err := sqlx.StructScan(rows, &recs); err != nil {
		return nil, store.NewStoreError("streak", "get", "scan failed", err)
	}
	if len(recs) == 0 {
		return nil, store.ErrStreakNotFound
	}

	r := recs[0]
	return &domain.Streak{
		OwnerID:          r.OwnerID,
		Current:          r.CurrentStreak,
		Longest:          r.LongestStreak,
		LastActivityDate: domain.DateOf(r.LastActivityDate, time.UTC),
		UpdatedAt:        r.UpdatedAt.UTC(),
	}, nil
}

// SaveStreak implements store.ActivityStore.SaveStreak
func (s *PostgresActivityStore) SaveStreak(ctx context.Context, streak *domain.Streak) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query, args, err := psql.Insert(streakTable).
		Columns("owner_id", "current_streak", "longest_streak", "last_activity_date", "updated_at").
		Values(
			streak.OwnerID,
			streak.Current,
			streak.Longest,
			domain.FormatDate(streak.LastActivityDate),
			streak.UpdatedAt,
		).
		Suffix(streakUpsertSuffix).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build streak upsert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to save streak", slog.String("error", err.Error()))
		return store.NewStoreError("streak", "save", "upsert failed", MapError(err))
	}
	return nil
}
