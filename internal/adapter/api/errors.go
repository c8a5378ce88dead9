package api

import (
	"errors"
	"fmt"
	"github.com/burenotti/go_energy_balance/internal/app/unitofwork"
	"github.com/burenotti/go_energy_balance/internal/domain"
	"github.com/burenotti/go_energy_balance/internal/domain/exercise"
	"github.com/burenotti/go_energy_balance/internal/domain/profile"
	"github.com/burenotti/go_energy_balance/internal/domain/progress"
	"github.com/labstack/echo/v4"
	"net/http"
)

type JsonErrorModel struct {
	Message string `json:"message"`
}

func JsonError(c echo.Context, status int, content any) error {
	data := &JsonErrorModel{Message: fmt.Sprintf("%v", content)}
	return c.JSON(status, data)
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, profile.ErrInvalidProfile),
		errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, exercise.ErrUnknownExercise):
		return http.StatusBadRequest
	case errors.Is(err, progress.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, progress.ErrRecordExists),
		errors.Is(err, progress.ErrSessionExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err with the status it maps to. Server errors are logged and
// hidden from the client.
func (s *Server) fail(c echo.Context, err error) error {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.Path(), "error", err)
		return JsonError(c, status, "internal error")
	}
	return JsonError(c, status, unitofwork.Cause(err))
}
