package energy

import (
	"fmt"
	"github.com/burenotti/go_energy_balance/internal/domain"
	"github.com/burenotti/go_energy_balance/internal/domain/exercise"
	"github.com/burenotti/go_energy_balance/internal/domain/profile"
	"github.com/burenotti/go_energy_balance/internal/domain/progress"
	"github.com/samber/lo"
	"log/slog"
)

// DefaultDailyDeficit is assumed when no food records are supplied: intake
// is taken to be TDEE minus this many kcal.
const DefaultDailyDeficit = 500.0

// Intake is one logged day of food. A nil Target means the day is measured
// against the profile's TDEE.
type Intake struct {
	Consumed float64
	Target   *float64
}

type Balance struct {
	BMR              float64
	TDEE             float64
	FoodDeficit      float64
	ExerciseCalories float64
	DailyDeficit     float64
	UnknownExercises []string
}

type Calculator struct {
	catalog        *exercise.Catalog
	strict         bool
	defaultDeficit float64
	logger         *slog.Logger
}

type Option func(*Calculator)

// Strict makes unknown exercise names an error instead of contributing 0 kcal.
func Strict(strict bool) Option {
	return func(c *Calculator) {
		c.strict = strict
	}
}

func DefaultDeficit(kcal float64) Option {
	return func(c *Calculator) {
		c.defaultDeficit = kcal
	}
}

func Logger(l *slog.Logger) Option {
	return func(c *Calculator) {
		c.logger = l
	}
}

func NewCalculator(catalog *exercise.Catalog, opts ...Option) *Calculator {
	c := &Calculator{
		catalog:        catalog,
		defaultDeficit: DefaultDailyDeficit,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Calculator) BMR(p profile.UserProfile) (float64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	return p.BMR(), nil
}

func (c *Calculator) TDEE(p profile.UserProfile) (float64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	if !p.ActivityLevel.Known() {
		c.logger.Debug("unknown activity level, using sedentary factor", "activity_level", p.ActivityLevel)
	}
	return p.TDEE(), nil
}

// FoodDeficit averages target minus consumed over history. Without history
// it falls back to the configured default deficit.
func (c *Calculator) FoodDeficit(history []Intake, p profile.UserProfile) (float64, error) {
	tdee, err := c.TDEE(p)
	if err != nil {
		return 0, err
	}

	if len(history) == 0 {
		return c.defaultDeficit, nil
	}

	var total float64
	for i, in := range history {
		target := tdee
		if in.Target != nil {
			target = *in.Target
		}
		if in.Consumed < 0 || target < 0 {
			return 0, fmt.Errorf("%w: record %d has negative calories", domain.ErrInvalidInput, i)
		}
		total += target - in.Consumed
	}
	return total / float64(len(history)), nil
}

// ExerciseCalories is the daily average of the weekly calories burned by the
// plans at the profile's body weight, never below 0. Unresolved names are
// returned so the caller can report them; in strict mode they are an error
// instead.
func (c *Calculator) ExerciseCalories(plans []exercise.Plan, p profile.UserProfile) (float64, []string, error) {
	if err := p.Validate(); err != nil {
		return 0, nil, err
	}

	var (
		weekly  float64
		unknown []string
	)
	for _, plan := range plans {
		if plan.DurationMinutes < 0 || plan.SessionsPerWeek < 0 {
			return 0, nil, fmt.Errorf("%w: exercise %q has negative duration or frequency", domain.ErrInvalidInput, plan.Name)
		}

		ref, ok := c.catalog.Lookup(plan.Name)
		if !ok {
			unknown = append(unknown, plan.Name)
			continue
		}
		weekly += plan.WeeklyCalories(p.Weight, ref)
	}

	unknown = lo.Uniq(unknown)
	if len(unknown) > 0 {
		if c.strict {
			return 0, unknown, &exercise.UnknownExerciseError{Names: unknown}
		}
		c.logger.Warn("ignoring unknown exercises", "names", unknown)
	}

	// Extrapolated rates can go negative for very light bodies.
	if weekly <= 0 {
		return 0, unknown, nil
	}
	return weekly / 7, unknown, nil
}

func (c *Calculator) DailyDeficit(
	history []Intake,
	plans []exercise.Plan,
	p profile.UserProfile,
) (Balance, error) {
	food, err := c.FoodDeficit(history, p)
	if err != nil {
		return Balance{}, err
	}

	exerciseKcal, unknown, err := c.ExerciseCalories(plans, p)
	if err != nil {
		return Balance{}, err
	}

	return Balance{
		BMR:              p.BMR(),
		TDEE:             p.TDEE(),
		FoodDeficit:      food,
		ExerciseCalories: exerciseKcal,
		DailyDeficit:     food + exerciseKcal,
		UnknownExercises: unknown,
	}, nil
}

// FromRecords turns tracked daily records into calculator history.
func FromRecords(records []progress.DailyRecord) []Intake {
	return lo.Map(records, func(r progress.DailyRecord, _ int) Intake {
		target := r.CaloriesTarget
		return Intake{Consumed: r.CaloriesConsumed, Target: &target}
	})
}
