package api

import (
	"github.com/burenotti/go_energy_balance/internal/adapter/storage"
	"github.com/burenotti/go_energy_balance/internal/app/forecast"
	progressapp "github.com/burenotti/go_energy_balance/internal/app/progress"
	"github.com/burenotti/go_energy_balance/internal/app/unitofwork"
	"github.com/burenotti/go_energy_balance/internal/domain/exercise"
	"github.com/prometheus/client_golang/prometheus"
	"log/slog"
	"net"
	"strconv"
)

type Option func(*Server)

func Addr(host string, port int) Option {
	return func(s *Server) {
		s.addr = net.JoinHostPort(host, strconv.Itoa(port))
	}
}

func Logger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

func DB(db *storage.DB) Option {
	return func(s *Server) {
		s.db = db
	}
}

func Catalog(c *exercise.Catalog) Option {
	return func(s *Server) {
		s.catalog = c
	}
}

func ForecastService(service *forecast.Service) Option {
	return func(s *Server) {
		s.forecastService = service
	}
}

func ProgressService(service *progressapp.Service) Option {
	return func(s *Server) {
		s.progressService = service
	}
}

// Metrics exposes g on GET /metrics.
func Metrics(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

func MessageBus(bus unitofwork.MessageBus) Option {
	return func(s *Server) {
		s.msgBus = bus
	}
}
