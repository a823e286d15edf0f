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

const (
	logTable      = "drill_logs"
	activityTable = "daily_activity"
	streakTable   = "user_streaks"
)

const dailyActivityUpsertSuffix = `ON CONFLICT (owner_id, activity_date) DO UPDATE SET
	drills_logged = daily_activity.drills_logged + excluded.drills_logged,
	total_reps = daily_activity.total_reps + excluded.total_reps,
	updated_at = excluded.updated_at`

const streakUpsertSuffix = `ON CONFLICT (owner_id) DO UPDATE SET
	current_streak = excluded.current_streak,
	longest_streak = excluded.longest_streak,
	last_activity_date = excluded.last_activity_date,
	updated_at = excluded.updated_at`

var logColumns = []string{"id", "owner_id", "drill_id", "reps", "notes", "logged_at", "created_at"}

type logRow struct {
	ID        string         `db:"id"`
	OwnerID   string         `db:"owner_id"`
	DrillID   string         `db:"drill_id"`
	Reps      int            `db:"reps"`
	Notes     sql.NullString `db:"notes"`
	LoggedAt  string         `db:"logged_at"`
	CreatedAt string         `db:"created_at"`
}

func (r logRow) toDomain() (domain.DrillLog, error) {
	var (
		l   = domain.DrillLog{Reps: r.Reps, Notes: r.Notes.String}
		err error
	)
	if l.ID, err = uuid.Parse(r.ID); err != nil {
		return l, err
	}
	if l.OwnerID, err = uuid.Parse(r.OwnerID); err != nil {
		return l, err
	}
	if l.DrillID, err = uuid.Parse(r.DrillID); err != nil {
		return l, err
	}
	if l.LoggedAt, err = parseTimestamp(r.LoggedAt); err != nil {
		return l, err
	}
	if l.CreatedAt, err = parseTimestamp(r.CreatedAt); err != nil {
		return l, err
	}
	return l, nil
}

type activityRow struct {
	ActivityDate string `db:"activity_date"`
	DrillsLogged int    `db:"drills_logged"`
	TotalReps    int    `db:"total_reps"`
}

type streakRow struct {
	OwnerID          string `db:"owner_id"`
	CurrentStreak    int    `db:"current_streak"`
	LongestStreak    int    `db:"longest_streak"`
	LastActivityDate string `db:"last_activity_date"`
	UpdatedAt        string `db:"updated_at"`
}

// SQLiteActivityStore implements the store.ActivityStore interface
// using an embedded SQLite database.
type SQLiteActivityStore struct {
	db     store.DBTX
	sqlDB  *sql.DB
	logger *slog.Logger
}

// NewSQLiteActivityStore creates a new SQLite implementation of the ActivityStore interface.
// If logger is nil, a default logger will be used.
func NewSQLiteActivityStore(db *sql.DB, logger *slog.Logger) *SQLiteActivityStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &SQLiteActivityStore{
		db:     db,
		sqlDB:  db,
		logger: logger.With(slog.String("component", "activity_store")),
	}
}

var _ store.ActivityStore = (*SQLiteActivityStore)(nil)

// WithTx implements store.ActivityStore.WithTx
func (s *SQLiteActivityStore) WithTx(tx *sql.Tx) store.ActivityStore {
	return &SQLiteActivityStore{
		db:     tx,
		sqlDB:  s.sqlDB,
		logger: s.logger,
	}
}

// DB implements store.ActivityStore.DB
func (s *SQLiteActivityStore) DB() *sql.DB {
	return s.sqlDB
}

// InsertLog implements store.ActivityStore.InsertLog
func (s *SQLiteActivityStore) InsertLog(ctx context.Context, entry *domain.DrillLog) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := entry.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query, args, err := qb.Insert(logTable).
		Columns(logColumns...).
		Values(
			entry.ID.String(),
			entry.OwnerID.String(),
			entry.DrillID.String(),
			entry.Reps,
			nullable(entry.Notes),
			formatTimestamp(entry.LoggedAt),
			formatTimestamp(entry.CreatedAt),
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
func (s *SQLiteActivityStore) ListLogs(
	ctx context.Context,
	ownerID uuid.UUID,
	filter store.LogFilter,
) ([]domain.DrillLog, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	builder := qb.Select(logColumns...).
		From(logTable).
		Where(sq.Eq{"owner_id": ownerID.String()}).
		OrderBy("logged_at DESC", "id DESC")
	if filter.DrillID != uuid.Nil {
		builder = builder.Where(sq.Eq{"drill_id": filter.DrillID.String()})
	}
	if !filter.Since.IsZero() {
		builder = builder.Where(sq.GtOrEq{"logged_at": formatTimestamp(filter.Since)})
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
		l, err := r.toDomain()
		if err != nil {
			return nil, store.NewStoreError("drill_log", "list", "decode failed", err)
		}
		logs = append(logs, l)
	}
	return logs, nil
}

// TotalReps implements store.ActivityStore.TotalReps
func (s *SQLiteActivityStore) TotalReps(ctx context.Context, ownerID, drillID uuid.UUID) (int, error) {
	query, args, err := qb.Select("COALESCE(SUM(reps), 0)").
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
func (s *SQLiteActivityStore) AddDailyActivity(
	ctx context.Context,
	ownerID uuid.UUID,
	date time.Time,
	drillsLogged, reps int,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query, args, err := qb.Insert(activityTable).
		Columns("owner_id", "activity_date", "drills_logged", "total_reps", "updated_at").
		Values(
			ownerID.String(),
			domain.FormatDate(date),
			drillsLogged,
			reps,
			formatTimestamp(time.Now()),
		).
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
func (s *SQLiteActivityStore) ListDailyActivity(
	ctx context.Context,
	ownerID uuid.UUID,
	from, to time.Time,
) ([]domain.DailyActivity, error) {
	query, args, err := qb.Select("activity_date", "drills_logged", "total_reps").
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
		date, err := domain.ParseDate(r.ActivityDate)
		if err != nil {
			return nil, store.NewStoreError("daily_activity", "list", "decode failed", err)
		}
		days = append(days, domain.DailyActivity{
			Date:         date,
			DrillsLogged: r.DrillsLogged,
			TotalReps:    r.TotalReps,
		})
	}
	return days, nil
}

// GetStreak implements store.ActivityStore.GetStreak
func (s *SQLiteActivityStore) GetStreak(ctx context.Context, ownerID uuid.UUID) (*domain.Streak, error) {
	query, args, err := qb.Select("owner_id", "current_streak", "longest_streak", "last_activity_date", "updated_at").
		From(streakTable).
		Where(sq.Eq{"owner_id": ownerID.String()}).
		ToSql()
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
	streak := &domain.Streak{Current: r.CurrentStreak, Longest: r.LongestStreak}
	if streak.OwnerID, err = uuid.Parse(r.OwnerID); err != nil {
		return nil, store.NewStoreError("streak", "get", "decode failed", err)
	}
	if streak.LastActivityDate, err = domain.ParseDate(r.LastActivityDate); err != nil {
		return nil, store.NewStoreError("streak", "get", "decode failed", err)
	}
	if streak.UpdatedAt, err = parseTimestamp(r.UpdatedAt); err != nil {
		return nil, store.NewStoreError("streak", "get", "decode failed", err)
	}
	return streak, nil
}

// GetStreakForUpdate implements store.ActivityStore.GetStreakForUpdate.
// The caller's transaction holds the only connection, so a plain read is
// already exclusive.
func (s *SQLiteActivityStore) GetStreakForUpdate(ctx context.Context, ownerID uuid.UUID) (*domain.Streak, error) {
	return s.GetStreak(ctx, ownerID)
}

// SaveStreak implements store.ActivityStore.SaveStreak
func (s *SQLiteActivityStore) SaveStreak(ctx context.Context, streak *domain.Streak) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query, args, err := qb.Insert(streakTable).
		Columns("owner_id", "current_streak", "longest_streak", "last_activity_date", "updated_at").
		Values(
			streak.OwnerID.String(),
			streak.Current,
			streak.Longest,
			domain.FormatDate(streak.LastActivityDate),
			formatTimestamp(streak.UpdatedAt),
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
