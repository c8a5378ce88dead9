package api

import (
	"context"
	"errors"
	"fmt"
	"github.com/burenotti/go_energy_balance/internal/adapter/storage"
	"github.com/burenotti/go_energy_balance/internal/app/forecast"
	progressapp "github.com/burenotti/go_energy_balance/internal/app/progress"
	"github.com/burenotti/go_energy_balance/internal/app/unitofwork"
	"github.com/burenotti/go_energy_balance/internal/domain/exercise"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	slogecho "github.com/samber/slog-echo"
	"log/slog"
	"net/http"
	"time"
)

const (
	writeTimeout      = 10 * time.Second
	readTimeout       = 10 * time.Second
	idleTimeout       = 10 * time.Second
	readHeaderTimeout = 5 * time.Second
	maxHeaderBytes    = 4096
)

type Server struct {
	handler         *echo.Echo
	logger          *slog.Logger
	addr            string
	db              *storage.DB
	catalog         *exercise.Catalog
	forecastService *forecast.Service
	progressService *progressapp.Service
	gatherer        prometheus.Gatherer
	msgBus          unitofwork.MessageBus
	validator       *validator.Validate
}

func NewServer(opt ...Option) *Server {
	e := echo.New()
	e.HideBanner = true

	e.Server.WriteTimeout = writeTimeout
	e.Server.ReadTimeout = readTimeout
	e.Server.IdleTimeout = idleTimeout
	e.Server.ReadHeaderTimeout = readHeaderTimeout
	e.Server.MaxHeaderBytes = maxHeaderBytes

	v := validator.New(validator.WithRequiredStructEnabled())

	s := &Server{
		handler:   e,
		logger:    slog.Default(),
		validator: v,
	}

	for _, opt := range opt {
		opt(s)
	}

	e.Use(middleware.RequestID())
	e.Use(slogecho.NewWithConfig(s.logger, slogecho.Config{
		DefaultLevel:     slog.LevelInfo,
		ClientErrorLevel: slog.LevelInfo,
		ServerErrorLevel: slog.LevelError,
		WithRequestID:    true,
	}))
	e.Use(middleware.Recover())
	s.Mount()
	return s
}

func (s *Server) Mount() {
	s.MountEnergy()
	if s.progressService != nil && s.db != nil {
		s.MountProgress()
	}
	if s.gatherer != nil {
		s.MountMetrics()
	}
}

func (s *Server) Start() error {
	return s.handler.Start(s.addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.handler.Shutdown(ctx)
}

// ServeHTTP lets the server be driven directly, e.g. by httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) bind(ctx echo.Context, i interface{}) error {
	if err := ctx.Bind(i); err != nil {
		return fmt.Errorf("bad request")
	}
	return s.validate(i)
}

func (s *Server) validate(i interface{}) error {
	if err := s.validator.Struct(i); err != nil {
		var errs validator.ValidationErrors
		if !errors.As(err, &errs) {
			return fmt.Errorf("bad request")
		}
		return fmt.Errorf("%s: %s", errs[0].Field(), errs[0].Error())
	}
	return nil
}
