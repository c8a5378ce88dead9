package api

import (
	"fmt"
	"github.com/burenotti/go_energy_balance/internal/app/forecast"
	progressapp "github.com/burenotti/go_energy_balance/internal/app/progress"
	"github.com/burenotti/go_energy_balance/internal/app/unitofwork"
	"github.com/burenotti/go_energy_balance/internal/domain"
	"github.com/burenotti/go_energy_balance/internal/domain/progress"
	"github.com/labstack/echo/v4"
	"net/http"
	"time"
)

func (s *Server) MountProgress() {
	g := s.handler.Group("/progress/:user_id", UserIDRequired())
	g.POST("/records", s.AddRecord)
	g.PATCH("/records/:record_id", s.UpdateRecord)
	g.POST("/sessions", s.AddSession)
	g.GET("/stats", s.GetStats)
	g.POST("/projection", s.ProgressProjection)
}

func (s *Server) getProgressUoW() *unitofwork.UnitOfWork[*progressapp.AtomicContext] {
	return unitofwork.New[*progressapp.AtomicContext](
		s.db,
		progressapp.NewAtomicContextFactory(s.db.Dialect()),
		s.msgBus,
		s.logger,
	)
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must look like 2006-01-02, got %q", domain.ErrInvalidInput, s)
	}
	return d, nil
}

type Record struct {
	RecordID         string   `json:"record_id"`
	Date             string   `json:"date"`
	CaloriesConsumed float64  `json:"calories_consumed"`
	CaloriesTarget   float64  `json:"calories_target"`
	WeightRecorded   *float64 `json:"weight_recorded"`
	Notes            string   `json:"notes"`
	Deficit          float64  `json:"deficit"`
	OnTrack          bool     `json:"on_track"`
}

func newRecord(r progress.DailyRecord) Record {
	return Record{
		RecordID:         r.ID,
		Date:             r.Date.Format(time.DateOnly),
		CaloriesConsumed: r.CaloriesConsumed,
		CaloriesTarget:   r.CaloriesTarget,
		WeightRecorded:   r.WeightRecorded,
		Notes:            r.Notes,
		Deficit:          r.Deficit(),
		OnTrack:          r.OnTrack(),
	}
}

type AddRecordRequest struct {
	Date             string   `json:"date"`
	CaloriesConsumed Number  `json:"calories_consumed" validate:"gte=0"`
	CaloriesTarget   Number  `json:"calories_target" validate:"gte=0"`
	WeightRecorded   *Number `json:"weight_recorded" validate:"omitempty,gt=0"`
	Notes            string  `json:"notes" validate:"max=1024"`
}

func (s *Server) AddRecord(c echo.Context) error {
	var req AddRecordRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return s.fail(c, err)
	}

	uow := s.getProgressUoW()
	ctx := c.Request().Context()
	userID := c.Get(KeyUserID).(string)

	r, err := s.progressService.AddRecord(ctx, uow, userID, progressapp.NewRecord{
		Date:             date,
		CaloriesConsumed: req.CaloriesConsumed.Float(),
		CaloriesTarget:   req.CaloriesTarget.Float(),
		WeightRecorded:   floatPtr(req.WeightRecorded),
		Notes:            req.Notes,
	})
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusCreated, newRecord(r))
}

type UpdateRecordRequest struct {
	RecordID         string  `param:"record_id" validate:"required"`
	CaloriesConsumed *Number `json:"calories_consumed" validate:"omitempty,gte=0"`
	CaloriesTarget   *Number `json:"calories_target" validate:"omitempty,gte=0"`
	WeightRecorded   *Number `json:"weight_recorded" validate:"omitempty,gt=0"`
	Notes            *string `json:"notes" validate:"omitempty,max=1024"`
}

func (s *Server) UpdateRecord(c echo.Context) error {
	var req UpdateRecordRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}

	uow := s.getProgressUoW()
	ctx := c.Request().Context()
	userID := c.Get(KeyUserID).(string)

	r, err := s.progressService.UpdateRecord(ctx, uow, userID, req.RecordID, progress.RecordUpdate{
		CaloriesConsumed: floatPtr(req.CaloriesConsumed),
		CaloriesTarget:   floatPtr(req.CaloriesTarget),
		WeightRecorded:   floatPtr(req.WeightRecorded),
		Notes:            req.Notes,
	})
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, newRecord(r))
}

type Session struct {
	SessionID       string  `json:"session_id"`
	ExerciseName    string  `json:"exercise_name"`
	DurationMinutes float64 `json:"duration_minutes"`
	Date            string  `json:"date"`
	CaloriesBurned  float64 `json:"calories_burned"`
	Intensity       string  `json:"intensity"`
	Notes           string  `json:"notes"`
}

type AddSessionRequest struct {
	ExerciseName    string  `json:"exercise_name" validate:"required"`
	DurationMinutes Number  `json:"duration_minutes" validate:"gte=0"`
	Date            string  `json:"date"`
	CaloriesBurned  *Number `json:"calories_burned" validate:"omitempty,gte=0"`
	BodyWeight      Number  `json:"body_weight" validate:"gte=0"`
	Intensity       string  `json:"intensity" validate:"omitempty,oneof=light moderate intense"`
	Notes           string  `json:"notes" validate:"max=1024"`
}

func (s *Server) AddSession(c echo.Context) error {
	var req AddSessionRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return s.fail(c, err)
	}

	uow := s.getProgressUoW()
	ctx := c.Request().Context()
	userID := c.Get(KeyUserID).(string)

	sess, err := s.progressService.AddSession(ctx, uow, userID, progressapp.NewSession{
		ExerciseName:    req.ExerciseName,
		DurationMinutes: req.DurationMinutes.Float(),
		Date:            date,
		CaloriesBurned:  floatPtr(req.CaloriesBurned),
		BodyWeight:      req.BodyWeight.Float(),
		Intensity:       req.Intensity,
		Notes:           req.Notes,
	})
	if err != nil {
		return s.fail(c, err)
	}

	return c.JSON(http.StatusCreated, Session{
		SessionID:       sess.ID,
		ExerciseName:    sess.ExerciseName,
		DurationMinutes: sess.DurationMinutes,
		Date:            sess.Date.Format(time.DateOnly),
		CaloriesBurned:  sess.CaloriesBurned,
		Intensity:       string(sess.Intensity),
		Notes:           sess.Notes,
	})
}

type StatsResponse struct {
	TotalRecords      int      `json:"total_records"`
	TotalSessions     int      `json:"total_sessions"`
	CurrentStreak     int      `json:"current_streak"`
	AvgDeficit7d      float64  `json:"avg_deficit_7d"`
	AvgExerciseKcal7d float64  `json:"avg_exercise_calories_7d"`
	LatestWeight      *float64 `json:"latest_weight"`
}

func (s *Server) GetStats(c echo.Context) error {
	uow := s.getProgressUoW()
	ctx := c.Request().Context()
	userID := c.Get(KeyUserID).(string)

	stats, err := s.progressService.Stats(ctx, uow, userID)
	if err != nil {
		return s.fail(c, err)
	}

	return c.JSON(http.StatusOK, StatsResponse{
		TotalRecords:      stats.TotalRecords,
		TotalSessions:     stats.TotalSessions,
		CurrentStreak:     stats.CurrentStreak,
		AvgDeficit7d:      stats.AvgDeficit7d,
		AvgExerciseKcal7d: stats.AvgExerciseKcal7d,
		LatestWeight:      stats.LatestWeight,
	})
}

type ProgressProjectionRequest struct {
	UserData  UserData       `json:"userData"`
	Exercises []ExercisePlan `json:"exercises" validate:"dive"`
	Days      *int           `json:"days" validate:"omitempty,gte=0,lte=3650"`
	Mode      string         `json:"mode" validate:"omitempty,oneof=plain adapted"`
}

func (s *Server) ProgressProjection(c echo.Context) error {
	var req ProgressProjectionRequest
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

	uow := s.getProgressUoW()
	ctx := c.Request().Context()
	userID := c.Get(KeyUserID).(string)

	result, err := s.progressService.Project(ctx, uow, userID, forecast.Request{
		Profile:     p,
		Plans:       toPlans(req.Exercises),
		HorizonDays: req.Days,
		Mode:        mode,
	})
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, newProjectionResponse(result))
}
