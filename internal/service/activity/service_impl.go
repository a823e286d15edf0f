package activity

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/drillsched/internal/domain"
	"github.com/phrazzld/drillsched/internal/platform/logger"
	"github.com/phrazzld/drillsched/internal/store"
)

// Verify interface compliance at compile time
var _ Service = (*activityService)(nil)

type activityService struct {
	store          store.ActivityStore
	logger         *slog.Logger
	now            func() time.Time
	loc            *time.Location
	drillLogLimit  int
	logLimit       int
	maxLogLimit    int
	heatmapDays    int
	maxHeatmapDays int
}

// NewActivityService creates a new activity Service.
func NewActivityService(activityStore store.ActivityStore, logger *slog.Logger, opts ...Option) Service {
	if activityStore == nil {
		panic("activityStore cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	s := &activityService{
		store:          activityStore,
		logger:         logger.With(slog.String("component", "activity_service")),
		now:            time.Now,
		loc:            time.UTC,
		drillLogLimit:  DefaultDrillLogLimit,
		logLimit:       DefaultLogLimit,
		maxLogLimit:    DefaultMaxLogLimit,
		heatmapDays:    DefaultHeatmapDays,
		maxHeatmapDays: DefaultMaxHeatmapDays,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *activityService) today() time.Time {
	return domain.DateOf(s.now(), s.loc)
}

func (s *activityService) resolveLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > s.maxLogLimit {
		return s.maxLogLimit
	}
	return limit
}

func (s *activityService) LogReps(
	ctx context.Context,
	ownerID, drillID uuid.UUID,
	reps int,
	notes string,
) (*domain.DrillLog, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if reps < 1 {
		log.Warn("invalid rep count",
			slog.String("drill_id", drillID.String()),
			slog.Int("reps", reps))
		return nil, ErrInvalidReps
	}
	if len(strings.TrimSpace(notes)) > domain.MaxNotesLength {
		return nil, domain.ErrNotesTooLong
	}

	if ownerID == uuid.Nil {
		log.Debug("no owner identity, skipping log_reps")
		return nil, nil
	}

	now := s.now()
	entry, err := domain.NewDrillLog(ownerID, drillID, reps, notes, now)
	if err != nil {
		return nil, NewServiceError(OpLogReps, "invalid drill log", err)
	}
	today := domain.DateOf(now, s.loc)

	err = store.RunInTransaction(ctx, s.store.DB(), func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.store.WithTx(tx)

		if err := txStore.InsertLog(ctx, entry); err != nil {
			return err
		}
		if err := txStore.AddDailyActivity(ctx, ownerID, today, 1, reps); err != nil {
			return err
		}

		current, err := txStore.GetStreakForUpdate(ctx, ownerID)
		if err != nil {
			if !errors.Is(err, store.ErrStreakNotFound) {
				return err
			}
			current = &domain.Streak{OwnerID: ownerID}
		}

		next, changed := current.Advance(today)
		if !changed {
			return nil
		}
		next.UpdatedAt = now.UTC()
		return txStore.SaveStreak(ctx, &next)
	})
	if err != nil {
		if errors.Is(err, store.ErrDrillNotFound) {
			log.Warn("reps logged for unknown drill",
				slog.String("owner_id", ownerID.String()),
				slog.String("drill_id", drillID.String()))
		} else {
			log.Error("failed to log reps",
				slog.String("error", err.Error()),
				slog.String("owner_id", ownerID.String()),
				slog.String("drill_id", drillID.String()))
		}
		return nil, NewServiceError(OpLogReps, "failed to log reps", err)
	}

	log.Debug("reps logged",
		slog.String("owner_id", ownerID.String()),
		slog.String("drill_id", drillID.String()),
		slog.Int("reps", reps),
		slog.String("date", domain.FormatDate(today)))
	return entry, nil
}

func (s *activityService) DrillLogs(
	ctx context.Context,
	ownerID, drillID uuid.UUID,
	limit int,
) ([]domain.DrillLog, error) {
	return s.listLogs(ctx, ownerID, store.LogFilter{
		DrillID: drillID,
		Limit:   s.resolveLimit(limit, s.drillLogLimit),
	})
}

func (s *activityService) Logs(ctx context.Context, ownerID uuid.UUID, limit int) ([]domain.DrillLog, error) {
	return s.listLogs(ctx, ownerID, store.LogFilter{Limit: s.resolveLimit(limit, s.logLimit)})
}

func (s *activityService) TodayLogs(ctx context.Context, ownerID uuid.UUID) ([]domain.DrillLog, error) {
	y, m, d := s.now().In(s.loc).Date()
	return s.listLogs(ctx, ownerID, store.LogFilter{Since: time.Date(y, m, d, 0, 0, 0, 0, s.loc)})
}

func (s *activityService) listLogs(
	ctx context.Context,
	ownerID uuid.UUID,
	filter store.LogFilter,
) ([]domain.DrillLog, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if ownerID == uuid.Nil {
		log.Debug("no owner identity, returning empty log list")
		return []domain.DrillLog{}, nil
	}

	logs, err := s.store.ListLogs(ctx, ownerID, filter)
	if err != nil {
		log.Error("failed to list drill logs",
			slog.String("error", err.Error()),
			slog.String("owner_id", ownerID.String()))
		return nil, NewServiceError(OpListLogs, "failed to list drill logs", err)
	}
	return logs, nil
}

func (s *activityService) TotalReps(ctx context.Context, ownerID, drillID uuid.UUID) (int, error) {
	if ownerID == uuid.Nil {
		return 0, nil
	}

	total, err := s.store.TotalReps(ctx, ownerID, drillID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to total reps",
			slog.String("error", err.Error()),
			slog.String("owner_id", ownerID.String()),
			slog.String("drill_id", drillID.String()))
		return 0, NewServiceError(OpTotalReps, "failed to total reps", err)
	}
	return total, nil
}

func (s *activityService) Streak(ctx context.Context, ownerID uuid.UUID) (domain.Streak, error) {
	if ownerID == uuid.Nil {
		return domain.Streak{}, nil
	}

	streak, err := s.store.GetStreak(ctx, ownerID)
	if err != nil {
		if errors.Is(err, store.ErrStreakNotFound) {
			return domain.Streak{OwnerID: ownerID}, nil
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to load streak",
			slog.String("error", err.Error()),
			slog.String("owner_id", ownerID.String()))
		return domain.Streak{}, NewServiceError(OpStreak, "failed to load streak", err)
	}
	return streak.AsOf(s.today()), nil
}

func (s *activityService) DailyActivity(
	ctx context.Context,
	ownerID uuid.UUID,
	from, to time.Time,
) ([]domain.DailyActivity, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if to.IsZero() {
		to = s.today()
	} else {
		to = domain.DateOf(to, to.Location())
	}
	if from.IsZero() {
		from = domain.AddDays(to, -(s.heatmapDays - 1))
	} else {
		from = domain.DateOf(from, from.Location())
	}

	if from.After(to) {
		return nil, NewServiceError(OpDailyActivity, "from is after to", ErrInvalidWindow)
	}
	if days := int(to.Sub(from).Hours()/24) + 1; days > s.maxHeatmapDays {
		return nil, NewServiceError(OpDailyActivity, "window too long", ErrInvalidWindow)
	}

	if ownerID == uuid.Nil {
		log.Debug("no owner identity, returning empty activity")
		return []domain.DailyActivity{}, nil
	}

	days, err := s.store.ListDailyActivity(ctx, ownerID, from, to)
	if err != nil {
		log.Error("failed to list daily activity",
			slog.String("error", err.Error()),
			slog.String("owner_id", ownerID.String()),
			slog.String("from", domain.FormatDate(from)),
			slog.String("to", domain.FormatDate(to)))
		return nil, NewServiceError(OpDailyActivity, "failed to list daily activity", err)
	}
	return days, nil
}
