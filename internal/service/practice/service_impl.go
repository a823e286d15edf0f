package practice

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/drillsched/internal/domain"
	"github.com/phrazzld/drillsched/internal/domain/srs"
	"github.com/phrazzld/drillsched/internal/platform/logger"
	"github.com/phrazzld/drillsched/internal/store"
)

// Verify interface compliance at compile time
var _ Service = (*practiceService)(nil)

type practiceService struct {
	store           store.PracticeStore
	srs             srs.Service
	logger          *slog.Logger
	now             func() time.Time
	dueListLimit    int
	maxForecastDays int
}

// NewPracticeService creates a new practice Service.
func NewPracticeService(
	practiceStore store.PracticeStore,
	srsService srs.Service,
	logger *slog.Logger,
	opts ...Option,
) Service {
	if practiceStore == nil {
		panic("practiceStore cannot be nil")
	}
	if srsService == nil {
		panic("srsService cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	s := &practiceService{
		store:           practiceStore,
		srs:             srsService,
		logger:          logger.With(slog.String("component", "practice_service")),
		now:             time.Now,
		dueListLimit:    DefaultDueListLimit,
		maxForecastDays: DefaultMaxForecastDays,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *practiceService) Today() time.Time {
	return domain.DateOf(s.now(), s.srs.Location())
}

// calendarDate drops the clock part of t, keeping the date as written.
// A zero t means today.
func (s *practiceService) calendarDate(t time.Time) time.Time {
	if t.IsZero() {
		return s.Today()
	}
	return domain.DateOf(t, t.Location())
}

func (s *practiceService) GetOrCreate(
	ctx context.Context,
	ownerID, drillID uuid.UUID,
) (*domain.PracticeState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if ownerID == uuid.Nil {
		log.Debug("no owner identity, skipping get_or_create")
		return nil, nil
	}

	defaults, err := s.srs.Initial(ownerID, drillID, s.now())
	if err != nil {
		return nil, NewServiceError(OpGetOrCreate, "failed to build default state", err)
	}

	state, err := s.store.Ensure(ctx, defaults)
	if err != nil {
		if errors.Is(err, store.ErrDrillNotFound) {
			log.Warn("practice requested for unknown drill",
				slog.String("owner_id", ownerID.String()),
				slog.String("drill_id", drillID.String()))
		} else {
			log.Error("failed to ensure practice record",
				slog.String("error", err.Error()),
				slog.String("owner_id", ownerID.String()),
				slog.String("drill_id", drillID.String()))
		}
		return nil, NewServiceError(OpGetOrCreate, "failed to load practice record", err)
	}

	return state, nil
}

func (s *practiceService) RecordPractice(
	ctx context.Context,
	ownerID, drillID uuid.UUID,
	quality domain.Quality,
) (*domain.PracticeState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := quality.Validate(); err != nil {
		log.Warn("invalid practice quality",
			slog.String("drill_id", drillID.String()),
			slog.Int("quality", int(quality)))
		return nil, err
	}

	if ownerID == uuid.Nil {
		log.Debug("no owner identity, skipping record_practice")
		return nil, nil
	}

	now := s.now()
	defaults, err := s.srs.Initial(ownerID, drillID, now)
	if err != nil {
		return nil, NewServiceError(OpRecordPractice, "failed to build default state", err)
	}

	var updated *domain.PracticeState
	err = store.RunInTransaction(ctx, s.store.DB(), func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.store.WithTx(tx)

		if _, err := txStore.Ensure(ctx, defaults); err != nil {
			return err
		}

		current, err := txStore.GetForUpdate(ctx, ownerID, drillID)
		if err != nil {
			return err
		}

		next, err := s.srs.CalculateNext(current, quality, now)
		if err != nil {
			return err
		}

		if err := txStore.Update(ctx, next); err != nil {
			return err
		}
		updated = next
		return nil
	})
	if err != nil {
		log.Error("failed to record practice",
			slog.String("error", err.Error()),
			slog.String("owner_id", ownerID.String()),
			slog.String("drill_id", drillID.String()))
		return nil, NewServiceError(OpRecordPractice, "failed to record practice", err)
	}

	log.Debug("practice recorded",
		slog.String("owner_id", ownerID.String()),
		slog.String("drill_id", drillID.String()),
		slog.Int("quality", int(quality)),
		slog.Float64("ease_factor", updated.EaseFactor),
		slog.Int("interval_days", updated.IntervalDays),
		slog.Int("repetitions", updated.Repetitions),
		slog.String("next_due_date", domain.FormatDate(updated.NextDueDate)))

	return updated, nil
}

func (s *practiceService) ListDue(
	ctx context.Context,
	ownerID uuid.UUID,
	asOf time.Time,
) ([]domain.DuePractice, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if ownerID == uuid.Nil {
		log.Debug("no owner identity, returning empty due list")
		return []domain.DuePractice{}, nil
	}

	asOf = s.calendarDate(asOf)
	due, err := s.store.ListDue(ctx, ownerID, asOf, s.dueListLimit)
	if err != nil {
		log.Error("failed to list due practice",
			slog.String("error", err.Error()),
			slog.String("owner_id", ownerID.String()),
			slog.String("as_of", domain.FormatDate(asOf)))
		return nil, NewServiceError(OpListDue, "failed to list due practice", err)
	}

	return due, nil
}

func (s *practiceService) CountDue(ctx context.Context, ownerID uuid.UUID, asOf time.Time) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if ownerID == uuid.Nil {
		log.Debug("no owner identity, returning zero due count")
		return 0, nil
	}

	asOf = s.calendarDate(asOf)
	count, err := s.store.CountDue(ctx, ownerID, asOf)
	if err != nil {
		log.Error("failed to count due practice",
			slog.String("error", err.Error()),
			slog.String("owner_id", ownerID.String()))
		return 0, NewServiceError(OpCountDue, "failed to count due practice", err)
	}

	return count, nil
}

func (s *practiceService) Upcoming(
	ctx context.Context,
	ownerID uuid.UUID,
	from, to time.Time,
) (map[string]int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	from = s.calendarDate(from)
	to = s.calendarDate(to)
	if from.After(to) {
		return nil, NewServiceError(OpUpcoming, "from is after to", ErrInvalidWindow)
	}
	if days := int(to.Sub(from).Hours() / 24); days > s.maxForecastDays {
		return nil, NewServiceError(OpUpcoming, "window too long", ErrInvalidWindow)
	}

	schedule := make(map[string]int)
	if ownerID == uuid.Nil {
		log.Debug("no owner identity, returning empty schedule")
		return schedule, nil
	}

	days, err := s.store.CountByDueDate(ctx, ownerID, from, to)
	if err != nil {
		log.Error("failed to count upcoming practice",
			slog.String("error", err.Error()),
			slog.String("owner_id", ownerID.String()),
			slog.String("from", domain.FormatDate(from)),
			slog.String("to", domain.FormatDate(to)))
		return nil, NewServiceError(OpUpcoming, "failed to count upcoming practice", err)
	}

	for _, day := range days {
		if day.Count > 0 {
			schedule[domain.FormatDate(day.Date)] = day.Count
		}
	}
	return schedule, nil
}

func (s *practiceService) Reset(
	ctx context.Context,
	ownerID, drillID uuid.UUID,
) (*domain.PracticeState, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if ownerID == uuid.Nil {
		log.Debug("no owner identity, skipping reset")
		return nil, nil
	}

	now := s.now()
	var reset *domain.PracticeState
	err := store.RunInTransaction(ctx, s.store.DB(), func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.store.WithTx(tx)

		current, err := txStore.GetForUpdate(ctx, ownerID, drillID)
		if err != nil {
			if errors.Is(err, store.ErrPracticeNotFound) {
				return nil
			}
			return err
		}

		next, err := s.srs.Reset(current, now)
		if err != nil {
			return err
		}

		if err := txStore.Update(ctx, next); err != nil {
			return err
		}
		reset = next
		return nil
	})
	if err != nil {
		log.Error("failed to reset practice",
			slog.String("error", err.Error()),
			slog.String("owner_id", ownerID.String()),
			slog.String("drill_id", drillID.String()))
		return nil, NewServiceError(OpReset, "failed to reset practice", err)
	}

	if reset == nil {
		log.Debug("reset requested for drill never practiced",
			slog.String("owner_id", ownerID.String()),
			slog.String("drill_id", drillID.String()))
	}
	return reset, nil
}
