package progressapp

import (
	"context"
	"errors"
	"github.com/burenotti/go_energy_balance/internal/app/energy"
	"github.com/burenotti/go_energy_balance/internal/app/forecast"
	"github.com/burenotti/go_energy_balance/internal/app/unitofwork"
	"github.com/burenotti/go_energy_balance/internal/domain/exercise"
	"github.com/burenotti/go_energy_balance/internal/domain/profile"
	"github.com/burenotti/go_energy_balance/internal/domain/progress"
	"github.com/burenotti/go_energy_balance/internal/metrics"
	"github.com/google/uuid"
	"log/slog"
	"time"
)

type Service struct {
	logger     *slog.Logger
	catalog    *exercise.Catalog
	forecaster *forecast.Service
	metrics    *metrics.Manager
	strict     bool
	now        func() time.Time
}

func New(
	logger *slog.Logger,
	catalog *exercise.Catalog,
	forecaster *forecast.Service,
	m *metrics.Manager,
	strict bool,
) *Service {
	return &Service{
		logger:     logger,
		catalog:    catalog,
		forecaster: forecaster,
		metrics:    m,
		strict:     strict,
		now:        time.Now,
	}
}

type NewRecord struct {
	Date             time.Time
	CaloriesConsumed float64
	CaloriesTarget   float64
	WeightRecorded   *float64
	Notes            string
}

func (s *Service) AddRecord(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	userID string,
	in NewRecord,
) (record progress.DailyRecord, err error) {
	err = uow.Atomic(ctx, func(ctx *AtomicContext) error {
		u, err := ctx.ProgressStorage.Load(ctx.Context(), userID, profile.UserProfile{})
		if err != nil {
			return err
		}

		date := in.Date
		if date.IsZero() {
			date = s.now()
		}
		record, err = progress.NewDailyRecord(uuid.NewString(), date, in.CaloriesConsumed, in.CaloriesTarget, in.WeightRecorded, in.Notes)
		if err != nil {
			return err
		}

		if err := u.AddRecord(record); err != nil {
			return err
		}
		if err := ctx.ProgressStorage.AddRecord(ctx.Context(), userID, record); err != nil {
			return err
		}
		return ctx.Commit()
	})
	if err == nil {
		s.metrics.CounterRecords.Inc()
	}
	return
}

func (s *Service) UpdateRecord(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	userID string,
	recordID string,
	upd progress.RecordUpdate,
) (record progress.DailyRecord, err error) {
	err = uow.Atomic(ctx, func(ctx *AtomicContext) error {
		u, err := ctx.ProgressStorage.Load(ctx.Context(), userID, profile.UserProfile{})
		if err != nil {
			return err
		}

		record, err = u.UpdateRecord(recordID, upd)
		if err != nil {
			return err
		}

		if err := ctx.ProgressStorage.PersistRecord(ctx.Context(), userID, record); err != nil {
			return err
		}
		return ctx.Commit()
	})
	return
}

type NewSession struct {
	ExerciseName    string
	DurationMinutes float64
	Date            time.Time
	CaloriesBurned  *float64
	BodyWeight      float64
	Intensity       string
	Notes           string
}

// AddSession stores an exercise session. Without explicit calories they are
// estimated from the catalog at the given body weight, or at the latest
// weight recorded in the user's history.
func (s *Service) AddSession(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	userID string,
	in NewSession,
) (session progress.Session, err error) {
	intensity, err := progress.ParseIntensity(in.Intensity)
	if err != nil {
		return progress.Session{}, err
	}

	err = uow.Atomic(ctx, func(ctx *AtomicContext) error {
		u, err := ctx.ProgressStorage.Load(ctx.Context(), userID, profile.UserProfile{})
		if err != nil {
			return err
		}

		date := in.Date
		if date.IsZero() {
			date = s.now()
		}
		session = progress.Session{
			ID:              uuid.NewString(),
			ExerciseName:    in.ExerciseName,
			DurationMinutes: in.DurationMinutes,
			Date:            date,
			Intensity:       intensity,
			Notes:           in.Notes,
		}

		if in.CaloriesBurned != nil {
			session.CaloriesBurned = *in.CaloriesBurned
		} else {
			kcal, err := s.estimateCalories(u, in)
			if err != nil {
				return err
			}
			session.CaloriesBurned = kcal
		}

		if err := u.AddSession(session); err != nil {
			return err
		}
		if err := ctx.ProgressStorage.AddSession(ctx.Context(), userID, session); err != nil {
			return err
		}
		return ctx.Commit()
	})
	if err == nil {
		s.metrics.CounterSessions.Inc()
	}
	return
}

func (s *Service) estimateCalories(u *progress.UserProgress, in NewSession) (float64, error) {
	weight := in.BodyWeight
	if weight <= 0 {
		if latest := u.Stats(s.now()).LatestWeight; latest != nil {
			weight = *latest
		}
	}
	if weight <= 0 {
		s.logger.Debug("no body weight to estimate session calories", "exercise", in.ExerciseName)
		return 0, nil
	}

	kcal, err := s.catalog.CaloriesBurned(in.ExerciseName, weight, in.DurationMinutes)
	if errors.Is(err, exercise.ErrUnknownExercise) {
		s.metrics.CounterUnknownExercises.Inc()
		if s.strict {
			return 0, &exercise.UnknownExerciseError{Names: []string{in.ExerciseName}}
		}
		s.logger.Warn("unknown exercise, session stored without calories", "exercise", in.ExerciseName)
		return 0, nil
	}
	return max(0, kcal), nil
}

func (s *Service) Stats(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	userID string,
) (stats progress.Stats, err error) {
	err = uow.Atomic(ctx, func(ctx *AtomicContext) error {
		u, err := ctx.ProgressStorage.Load(ctx.Context(), userID, profile.UserProfile{})
		if err != nil {
			return err
		}
		stats = u.Stats(s.now())
		return nil
	})
	return
}

// Project forecasts from the user's stored daily records instead of the
// records carried by the request.
func (s *Service) Project(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	userID string,
	req forecast.Request,
) (result *forecast.Result, err error) {
	var records []progress.DailyRecord
	err = uow.Atomic(ctx, func(ctx *AtomicContext) error {
		u, err := ctx.ProgressStorage.Load(ctx.Context(), userID, req.Profile)
		if err != nil {
			return err
		}
		records = u.Records()
		return nil
	})
	if err != nil {
		return nil, err
	}

	req.History = energy.FromRecords(records)
	return s.forecaster.Forecast(req)
}
