package forecast

import (
	"github.com/burenotti/go_energy_balance/internal/app/energy"
	"github.com/burenotti/go_energy_balance/internal/domain"
	"github.com/burenotti/go_energy_balance/internal/domain/exercise"
	"github.com/burenotti/go_energy_balance/internal/domain/profile"
	"github.com/burenotti/go_energy_balance/internal/domain/projection"
	"github.com/burenotti/go_energy_balance/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"log/slog"
	"testing"
	"time"
)

func newTestService(horizon int, mode projection.Mode, opts ...energy.Option) (*Service, *metrics.Manager) {
	catalog := exercise.NewCatalog([]exercise.Reference{
		{Name: "Correr", CaloriesPerHour57kg: 566, CaloriesPerHour80kg: 794},
	})
	m := metrics.NewTestManager()
	s := New(slog.Default(), energy.NewCalculator(catalog, opts...), m, horizon, mode)
	s.now = func() time.Time {
		return time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)
	}
	return s, m
}

func testProfile(t *testing.T) profile.UserProfile {
	t.Helper()
	p, err := profile.New(80, 180, 30, "male", 75, "")
	require.NoError(t, err)
	return p
}

func TestService_Forecast_Defaults(t *testing.T) {
	s, m := newTestService(-1, "")

	res, err := s.Forecast(Request{Profile: testProfile(t)})
	require.NoError(t, err)

	assert.Equal(t, DefaultHorizonDays+1, res.Projection.Len())
	assert.Equal(t, energy.DefaultDailyDeficit, res.Balance.DailyDeficit)
	assert.Equal(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), res.Projection.StartDate())

	// 5 kg at 500 kcal/day is reached on day 76.
	months := res.MonthsToTarget()
	require.NotNil(t, months)
	assert.Equal(t, 2.5, *months)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterProjections.WithLabelValues("plain", "true")))
}

func TestService_Forecast_HorizonAndMode(t *testing.T) {
	s, m := newTestService(30, projection.ModeAdapted)

	days := 7
	res, err := s.Forecast(Request{
		Profile:     testProfile(t),
		HorizonDays: &days,
	})
	require.NoError(t, err)

	assert.Equal(t, 8, res.Projection.Len())
	assert.Nil(t, res.MonthsToTarget())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterProjections.WithLabelValues("adapted", "false")))

	res, err = s.Forecast(Request{Profile: testProfile(t), Mode: projection.ModePlain})
	require.NoError(t, err)
	assert.Equal(t, 31, res.Projection.Len())
}

func TestService_Forecast_NegativeHorizon(t *testing.T) {
	s, _ := newTestService(30, "")

	days := -3
	_, err := s.Forecast(Request{Profile: testProfile(t), HorizonDays: &days})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestService_Forecast_HorizonTooLong(t *testing.T) {
	s, m := newTestService(30, "")

	days := 1 << 40
	_, err := s.Forecast(Request{Profile: testProfile(t), HorizonDays: &days})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Zero(t, testutil.CollectAndCount(m.CounterProjections))

	// An out of range configured horizon falls back to the default.
	s, _ = newTestService(projection.MaxHorizonDays+1, "")
	res, err := s.Forecast(Request{Profile: testProfile(t)})
	require.NoError(t, err)
	assert.Equal(t, DefaultHorizonDays+1, res.Projection.Len())
}

func TestService_Forecast_UnknownExercises(t *testing.T) {
	s, m := newTestService(30, "")

	res, err := s.Forecast(Request{
		Profile: testProfile(t),
		Plans: []exercise.Plan{
			{Name: "Correr", DurationMinutes: 60, SessionsPerWeek: 7},
			{Name: "Curling", DurationMinutes: 60, SessionsPerWeek: 1},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Curling"}, res.Balance.UnknownExercises)
	assert.InDelta(t, 500+794, res.Balance.DailyDeficit, 1e-9)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterUnknownExercises))

	strict, _ := newTestService(30, "", energy.Strict(true))
	_, err = strict.Forecast(Request{
		Profile: testProfile(t),
		Plans:   []exercise.Plan{{Name: "Curling", DurationMinutes: 60, SessionsPerWeek: 1}},
	})
	assert.ErrorIs(t, err, exercise.ErrUnknownExercise)
}

func TestService_Forecast_InvalidProfile(t *testing.T) {
	s, _ := newTestService(30, "")

	_, err := s.Forecast(Request{Profile: profile.UserProfile{Weight: 80}})
	assert.ErrorIs(t, err, profile.ErrInvalidProfile)
}
