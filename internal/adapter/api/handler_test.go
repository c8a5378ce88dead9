package api

import (
	"bytes"
	"encoding/json"
	"github.com/burenotti/go_energy_balance/internal/adapter/catalog"
	"github.com/burenotti/go_energy_balance/internal/adapter/storage"
	"github.com/burenotti/go_energy_balance/internal/app/energy"
	"github.com/burenotti/go_energy_balance/internal/app/forecast"
	"github.com/burenotti/go_energy_balance/internal/app/messagebus"
	progressapp "github.com/burenotti/go_energy_balance/internal/app/progress"
	"github.com/burenotti/go_energy_balance/internal/domain/exercise"
	"github.com/burenotti/go_energy_balance/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestServer(t *testing.T, strict bool) *Server {
	t.Helper()

	db, err := storage.Open(storage.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, storage.Migrate(db))

	logger := slog.Default()
	bus := messagebus.New(logger)
	progressapp.RegisterEventHandlers(bus, logger)
	t.Cleanup(bus.Close)

	reg := metrics.NewRegistry()
	m := metrics.NewManager("energy", "", reg)
	exercises := exercise.NewCatalog(catalog.Fallback())
	calc := energy.NewCalculator(exercises, energy.Strict(strict), energy.Logger(logger))
	forecaster := forecast.New(logger, calc, m, forecast.DefaultHorizonDays, "")

	return NewServer(
		Logger(logger),
		DB(db),
		Catalog(exercises),
		ForecastService(forecaster),
		ProgressService(progressapp.New(logger, exercises, forecaster, m, strict)),
		Metrics(reg),
		MessageBus(bus),
	)
}

func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

var userData = map[string]any{
	"weight":         70,
	"height":         165,
	"age":            25,
	"gender":         "female",
	"target-weight":  60,
	"activity_level": "sedentary",
}

func TestServer_ListExercises(t *testing.T) {
	s := newTestServer(t, false)

	rec := do(t, s, http.MethodGet, "/api/exercises", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[[]Exercise](t, rec)
	require.Len(t, resp, 5)
	assert.Equal(t, "Aeróbic", resp[0].Name)
	assert.Equal(t, 283.0, resp[0].Calories57kg)
}

func TestServer_CalculateTargetCalories(t *testing.T) {
	s := newTestServer(t, false)

	rec := do(t, s, http.MethodPost, "/api/calculate_target_calories", map[string]any{
		"userData": map[string]any{
			"weight": 70, "height": 165, "age": 25, "gender": "female", "activity_level": "sedentary",
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[CalculateTargetCaloriesResponse](t, rec)
	assert.InDelta(t, 1445.25, resp.BMR, 1e-9)
	assert.InDelta(t, 1734.3, resp.MaintenanceCalories, 1e-9)
	assert.Equal(t, "sedentary", resp.ActivityLevel)
	assert.Equal(t, "little or no exercise", resp.ActivityDescription)
	assert.Zero(t, resp.WeightToLose)
}

// The web form posts its fields at the top level, with every value as a string.
func TestServer_CalculateTargetCalories_FormBody(t *testing.T) {
	s := newTestServer(t, false)

	rec := do(t, s, http.MethodPost, "/api/calculate_target_calories", map[string]any{
		"weight":        "70",
		"height":        "165",
		"age":           "25",
		"gender":        "female",
		"target-weight": "60,5",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[CalculateTargetCaloriesResponse](t, rec)
	assert.InDelta(t, 1445.25, resp.BMR, 1e-9)
	assert.InDelta(t, 1734.3, resp.MaintenanceCalories, 1e-9)
	assert.InDelta(t, 9.5, resp.WeightToLose, 1e-9)

	rec = do(t, s, http.MethodPost, "/api/calculate_target_calories", map[string]any{
		"weight": "seventy", "height": "165", "age": "25", "gender": "female",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/calculate_target_calories", map[string]any{
		"height": "165", "age": "25", "gender": "female",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_CalculateTargetCalories_Invalid(t *testing.T) {
	s := newTestServer(t, false)

	rec := do(t, s, http.MethodPost, "/api/calculate_target_calories", map[string]any{
		"userData": map[string]any{"weight": 70, "height": 165, "age": 25, "gender": "other"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[JsonErrorModel](t, rec).Message, "invalid profile")

	rec = do(t, s, http.MethodPost, "/api/calculate_target_calories", map[string]any{
		"userData": map[string]any{"weight": -70, "height": 165, "age": 25, "gender": "female"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_Projection(t *testing.T) {
	s := newTestServer(t, false)

	rec := do(t, s, http.MethodPost, "/api/projection", map[string]any{
		"userData":     userData,
		"dailyRecords": []map[string]any{{"consumed": 1300, "target": 1800}},
		"exercises": []map[string]any{
			{"name": "Correr", "duration": 30, "frequency": 0},
			{"name": "Curling", "duration": 30, "frequency": 2},
		},
		"days": 7,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[ProjectionResponse](t, rec)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7}, resp.Days)
	require.Len(t, resp.Weights, 8)
	assert.InDelta(t, 70-7*500.0/7700, resp.Weights[6], 1e-9)
	assert.Nil(t, resp.MonthsToTarget)
	assert.InDelta(t, 500, resp.DailyDeficit, 1e-9)
	assert.InDelta(t, 1445.25, resp.BMR, 1e-9)
	assert.Equal(t, []string{"Curling"}, resp.UnknownExercises)
	assert.NotEmpty(t, resp.TargetDate)
	require.Len(t, resp.Dates, 8)
	assert.Equal(t, resp.TargetDate, resp.Dates[7])
	assert.InDelta(t, 10, resp.WeightToLose, 1e-9)
}

func TestServer_Projection_FormValues(t *testing.T) {
	s := newTestServer(t, false)

	rec := do(t, s, http.MethodPost, "/api/projection", map[string]any{
		"userData": map[string]any{
			"weight": "80", "height": "180", "age": "30", "gender": "male", "target-weight": "75",
		},
		"dailyRecords": []map[string]any{{"consumed": 1500}},
		"exercises":    []map[string]any{{"name": "Correr", "duration": "60", "frequency": "7"}},
		"days":         30,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[ProjectionResponse](t, rec)
	assert.Len(t, resp.Weights, 31)
	// TDEE 2136 - 1500 consumed + 794 burned a day at 80 kg.
	assert.InDelta(t, 636+794, resp.DailyDeficit, 1e-9)
}

func TestServer_Projection_MonthsToTarget(t *testing.T) {
	s := newTestServer(t, false)

	data := map[string]any{
		"weight": 80, "height": 180, "age": 30, "gender": "male", "target-weight": 75,
	}
	rec := do(t, s, http.MethodPost, "/api/projection", map[string]any{"userData": data})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[map[string]any](t, rec)
	assert.Len(t, resp["weights"], forecast.DefaultHorizonDays+1)
	assert.Equal(t, 2.5, resp["months_to_target"])
	assert.Equal(t, []any{}, resp["unknown_exercises"])
}

func TestServer_Projection_BadRequests(t *testing.T) {
	s := newTestServer(t, true)

	tests := map[string]map[string]any{
		"negative days": {"userData": userData, "days": -1},
		"too many days": {"userData": userData, "days": 3651},
		"huge horizon":  {"userData": userData, "days": 1 << 40},
		"bad mode":      {"userData": userData, "mode": "turbo"},
		"no profile":    {"days": 7},
		"strict":        {"userData": userData, "exercises": []map[string]any{{"name": "Curling", "duration": 30, "frequency": 1}}},
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/api/projection", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestServer_ProgressFlow(t *testing.T) {
	s := newTestServer(t, false)

	rec := do(t, s, http.MethodPost, "/progress/alice/records", map[string]any{
		"date":              "2024-06-01",
		"calories_consumed": 1900,
		"calories_target":   1800,
		"weight_recorded":   70.5,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	record := decode[Record](t, rec)
	assert.Equal(t, "2024-06-01", record.Date)
	assert.InDelta(t, -100, record.Deficit, 1e-9)
	assert.True(t, record.OnTrack)

	rec = do(t, s, http.MethodPatch, "/progress/alice/records/"+record.RecordID, map[string]any{
		"calories_consumed": 1300,
		"notes":             "light day",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	record = decode[Record](t, rec)
	assert.InDelta(t, 500, record.Deficit, 1e-9)
	assert.Equal(t, "light day", record.Notes)
	require.NotNil(t, record.WeightRecorded)
	assert.Equal(t, 70.5, *record.WeightRecorded)

	rec = do(t, s, http.MethodPatch, "/progress/alice/records/missing", map[string]any{"notes": "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodPost, "/progress/alice/sessions", map[string]any{
		"exercise_name":    "Correr",
		"duration_minutes": 30,
		"date":             "2024-06-01",
		"body_weight":      57,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	sess := decode[Session](t, rec)
	assert.InDelta(t, 283, sess.CaloriesBurned, 1e-9)
	assert.Equal(t, "moderate", sess.Intensity)

	rec = do(t, s, http.MethodGet, "/progress/alice/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[StatsResponse](t, rec)
	assert.Equal(t, 1, stats.TotalRecords)
	assert.Equal(t, 1, stats.TotalSessions)
	require.NotNil(t, stats.LatestWeight)
	assert.Equal(t, 70.5, *stats.LatestWeight)

	rec = do(t, s, http.MethodPost, "/progress/alice/projection", map[string]any{
		"userData": userData,
		"days":     30,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	proj := decode[ProjectionResponse](t, rec)
	assert.Len(t, proj.Weights, 31)
	assert.InDelta(t, 500, proj.DailyDeficit, 1e-9)
}

func TestServer_Progress_BadRequests(t *testing.T) {
	s := newTestServer(t, false)

	rec := do(t, s, http.MethodPost, "/progress/alice/records", map[string]any{"date": "01/06/2024"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, "/progress/alice/records", map[string]any{"calories_consumed": -1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, "/progress/alice/sessions", map[string]any{"exercise_name": "Correr", "intensity": "extreme"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, "/progress/alice/projection", map[string]any{"userData": userData, "days": 1 << 40})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodGet, "/progress/bad%20id/stats", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_Metrics(t *testing.T) {
	s := newTestServer(t, false)

	rec := do(t, s, http.MethodPost, "/api/projection", map[string]any{"userData": userData, "days": 7})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `energy_projections_total{mode="plain",reached="false"} 1`)
}
