package forecast

import (
	"github.com/burenotti/go_energy_balance/internal/app/energy"
	"github.com/burenotti/go_energy_balance/internal/domain/exercise"
	"github.com/burenotti/go_energy_balance/internal/domain/profile"
	"github.com/burenotti/go_energy_balance/internal/domain/projection"
	"github.com/burenotti/go_energy_balance/internal/metrics"
	"log/slog"
	"strconv"
	"time"
)

const DefaultHorizonDays = 365

type Request struct {
	Profile     profile.UserProfile
	History     []energy.Intake
	Plans       []exercise.Plan
	HorizonDays *int
	Mode        projection.Mode
	StartDate   time.Time
}

type Result struct {
	Profile    profile.UserProfile
	Balance    energy.Balance
	Projection *projection.Projection
}

func (r Result) MonthsToTarget() *float64 {
	return r.Projection.MonthsToTarget()
}

type Service struct {
	logger      *slog.Logger
	calculator  *energy.Calculator
	metrics     *metrics.Manager
	horizonDays int
	mode        projection.Mode
	now         func() time.Time
}

func New(
	logger *slog.Logger,
	calculator *energy.Calculator,
	m *metrics.Manager,
	horizonDays int,
	mode projection.Mode,
) *Service {
	if horizonDays < 0 || horizonDays > projection.MaxHorizonDays {
		horizonDays = DefaultHorizonDays
	}
	if mode == "" {
		mode = projection.ModePlain
	}
	return &Service{
		logger:      logger,
		calculator:  calculator,
		metrics:     m,
		horizonDays: horizonDays,
		mode:        mode,
		now:         time.Now,
	}
}

func (s *Service) Calculator() *energy.Calculator {
	return s.calculator
}

// Forecast derives the daily deficit from the request and projects the
// profile's weight towards its target.
func (s *Service) Forecast(req Request) (*Result, error) {
	balance, err := s.calculator.DailyDeficit(req.History, req.Plans, req.Profile)
	if err != nil {
		return nil, err
	}

	horizon := s.horizonDays
	if req.HorizonDays != nil {
		horizon = *req.HorizonDays
	}
	mode := req.Mode
	if mode == "" {
		mode = s.mode
	}
	start := req.StartDate
	if start.IsZero() {
		start = s.now().UTC()
	}

	p, err := projection.Project(projection.Params{
		StartWeight:  req.Profile.Weight,
		TargetWeight: req.Profile.TargetWeight,
		DailyDeficit: balance.DailyDeficit,
		HorizonDays:  horizon,
		Mode:         mode,
		StartDate:    start,
	})
	if err != nil {
		return nil, err
	}

	_, reached := p.DaysToGoal()
	s.metrics.CounterProjections.WithLabelValues(string(mode), strconv.FormatBool(reached)).Inc()
	s.metrics.CounterUnknownExercises.Add(float64(len(balance.UnknownExercises)))
	s.metrics.HistHorizonDays.Observe(float64(horizon))
	s.metrics.HistDailyDeficit.Observe(balance.DailyDeficit)

	s.logger.Debug("weight projection computed",
		"horizon_days", horizon,
		"mode", mode,
		"daily_deficit", balance.DailyDeficit,
		"reached", reached,
	)

	return &Result{
		Profile:    req.Profile,
		Balance:    balance,
		Projection: p,
	}, nil
}
