package api

import (
	"github.com/burenotti/go_energy_balance/internal/app/energy"
	"github.com/burenotti/go_energy_balance/internal/app/forecast"
	"github.com/burenotti/go_energy_balance/internal/domain/exercise"
	"github.com/burenotti/go_energy_balance/internal/domain/profile"
	"github.com/burenotti/go_energy_balance/internal/domain/projection"
	"github.com/labstack/echo/v4"
	"github.com/samber/lo"
	"net/http"
	"time"
)

func (s *Server) MountEnergy() {
	g := s.handler.Group("/api")
	g.GET("/exercises", s.ListExercises)
	g.POST("/calculate_target_calories", s.CalculateTargetCalories)
	g.POST("/projection", s.Projection)
}

type UserData struct {
	Weight        Number `json:"weight" validate:"gt=0"`
	Height        Number `json:"height" validate:"gt=0"`
	Age           Number `json:"age" validate:"gt=0"`
	Gender        string `json:"gender" validate:"required"`
	TargetWeight  Number `json:"target-weight" validate:"gte=0"`
	ActivityLevel string `json:"activity_level"`
}

func (d UserData) profile() (profile.UserProfile, error) {
	return profile.New(
		d.Weight.Float(),
		d.Height.Float(),
		d.Age.Float(),
		d.Gender,
		d.TargetWeight.Float(),
		d.ActivityLevel,
	)
}

type ExercisePlan struct {
	Name      string `json:"name" validate:"required"`
	Duration  Number `json:"duration" validate:"gte=0"`
	Frequency Number `json:"frequency" validate:"gte=0"`
}

func toPlans(in []ExercisePlan) []exercise.Plan {
	return lo.Map(in, func(p ExercisePlan, _ int) exercise.Plan {
		return exercise.Plan{
			Name:            p.Name,
			DurationMinutes: p.Duration.Float(),
			SessionsPerWeek: p.Frequency.Float(),
		}
	})
}

type Exercise struct {
	Name            string  `json:"name"`
	Calories57kg    float64 `json:"calories_57kg"`
	Calories80kg    float64 `json:"calories_80kg"`
	Category        string  `json:"category"`
	DefaultDuration int     `json:"default_duration"`
}

// ListExercises answers with a bare JSON array of the catalog.
func (s *Server) ListExercises(c echo.Context) error {
	return c.JSON(http.StatusOK, lo.Map(s.catalog.List(), func(r exercise.Reference, _ int) Exercise {
		return Exercise{
			Name:            r.Name,
			Calories57kg:    r.CaloriesPerHour57kg,
			Calories80kg:    r.CaloriesPerHour80kg,
			Category:        string(r.Category),
			DefaultDuration: r.DefaultDurationMinutes,
		}
	}))
}

// CalculateTargetCaloriesRequest takes the user data at the top level of the
// body. A body wrapped in "userData" is accepted as well.
type CalculateTargetCaloriesRequest struct {
	UserData
	Wrapped *UserData `json:"userData"`
}

func (r CalculateTargetCaloriesRequest) userData() UserData {
	if r.Wrapped != nil {
		return *r.Wrapped
	}
	return r.UserData
}

type CalculateTargetCaloriesResponse struct {
	BMR                 float64 `json:"bmr"`
	MaintenanceCalories float64 `json:"maintenance_calories"`
	ActivityLevel       string  `json:"activity_level"`
	ActivityDescription string  `json:"activity_description"`
	WeightToLose        float64 `json:"weight_to_lose"`
}

func (s *Server) CalculateTargetCalories(c echo.Context) error {
	var req CalculateTargetCaloriesRequest
	if err := c.Bind(&req); err != nil {
		return JsonError(c, http.StatusBadRequest, "bad request")
	}
	data := req.userData()
	if err := s.validate(&data); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}

	// The target weight plays no part in BMR or TDEE.
	if data.TargetWeight == 0 {
		data.TargetWeight = data.Weight
	}
	p, err := data.profile()
	if err != nil {
		return s.fail(c, err)
	}

	calc := s.forecastService.Calculator()
	bmr, err := calc.BMR(p)
	if err != nil {
		return s.fail(c, err)
	}
	tdee, err := calc.TDEE(p)
	if err != nil {
		return s.fail(c, err)
	}

	return c.JSON(http.StatusOK, CalculateTargetCaloriesResponse{
		BMR:                 bmr,
		MaintenanceCalories: tdee,
		ActivityLevel:       string(p.ActivityLevel),
		ActivityDescription: p.ActivityLevel.Description(),
		WeightToLose:        p.WeightToLose(),
	})
}

type DailyIntake struct {
	Consumed Number  `json:"consumed" validate:"gte=0"`
	Target   *Number `json:"target" validate:"omitempty,gte=0"`
}

type ProjectionRequest struct {
	UserData     UserData       `json:"userData"`
	DailyRecords []DailyIntake  `json:"dailyRecords" validate:"dive"`
	Exercises    []ExercisePlan `json:"exercises" validate:"dive"`
	Days         *int           `json:"days" validate:"omitempty,gte=0,lte=3650"`
	Mode         string         `json:"mode" validate:"omitempty,oneof=plain adapted"`
}

type ProjectionResponse struct {
	Days             []int     `json:"days"`
	Weights          []float64 `json:"weights"`
	Dates            []string  `json:"dates"`
	MonthsToTarget   *float64  `json:"months_to_target"`
	DailyDeficit     float64   `json:"daily_deficit"`
	BMR              float64   `json:"bmr"`
	TDEE             float64   `json:"tdee"`
	TotalLoss        float64   `json:"total_loss"`
	WeightToLose     float64   `json:"weight_to_lose"`
	WeeklyRate       float64   `json:"weekly_rate"`
	TargetDate       string    `json:"target_date"`
	UnknownExercises []string  `json:"unknown_exercises"`
}

func (s *Server) Projection(c echo.Context) error {
	var req ProjectionRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}

	p, err := req.UserData.profile()
	if err != nil {
		return s.fail(c, err)
	}
	mode, err := parseMode(req.Mode)
	if err != nil {
		return s.fail(c, err)
	}

	result, err := s.forecastService.Forecast(forecast.Request{
		Profile: p,
		History: lo.Map(req.DailyRecords, func(r DailyIntake, _ int) energy.Intake {
			return energy.Intake{Consumed: r.Consumed.Float(), Target: floatPtr(r.Target)}
		}),
		Plans:       toPlans(req.Exercises),
		HorizonDays: req.Days,
		Mode:        mode,
	})
	if err != nil {
		return s.fail(c, err)
	}

	return c.JSON(http.StatusOK, newProjectionResponse(result))
}

// parseMode leaves an omitted mode empty so the configured default applies.
func parseMode(s string) (projection.Mode, error) {
	if s == "" {
		return "", nil
	}
	return projection.ParseMode(s)
}

func newProjectionResponse(r *forecast.Result) ProjectionResponse {
	unknown := r.Balance.UnknownExercises
	if unknown == nil {
		unknown = []string{}
	}
	dates := lo.Map(r.Projection.Dates(), func(d time.Time, _ int) string {
		return d.Format(time.DateOnly)
	})
	return ProjectionResponse{
		Days:             r.Projection.Days(),
		Weights:          r.Projection.Weights(),
		Dates:            dates,
		MonthsToTarget:   r.MonthsToTarget(),
		DailyDeficit:     r.Balance.DailyDeficit,
		BMR:              r.Balance.BMR,
		TDEE:             r.Balance.TDEE,
		TotalLoss:        r.Projection.TotalLoss(),
		WeightToLose:     r.Profile.WeightToLose(),
		WeeklyRate:       r.Projection.WeeklyRate(),
		TargetDate:       r.Projection.TargetDate().Format(time.DateOnly),
		UnknownExercises: unknown,
	}
}
