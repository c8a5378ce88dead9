package main

import (
	"context"
	"errors"
	"flag"
	"github.com/burenotti/go_energy_balance/internal/adapter/api"
	"github.com/burenotti/go_energy_balance/internal/adapter/catalog"
	"github.com/burenotti/go_energy_balance/internal/adapter/storage"
	"github.com/burenotti/go_energy_balance/internal/app/energy"
	"github.com/burenotti/go_energy_balance/internal/app/forecast"
	"github.com/burenotti/go_energy_balance/internal/app/messagebus"
	progressapp "github.com/burenotti/go_energy_balance/internal/app/progress"
	"github.com/burenotti/go_energy_balance/internal/config"
	"github.com/burenotti/go_energy_balance/internal/domain/projection"
	"github.com/burenotti/go_energy_balance/internal/metrics"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config/config.yaml", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(configPath)
	logger := initLogger(cfg)

	bus := messagebus.New(logger)
	progressapp.RegisterEventHandlers(bus, logger)

	db, err := storage.Open(cfg.DB.Driver, cfg.DB.DSN)
	if err != nil {
		panic("failed to connect database: " + err.Error())
	}
	defer db.Close()

	if err := storage.Migrate(db); err != nil {
		panic("failed to migrate database: " + err.Error())
	}

	reg := metrics.NewRegistry()
	m := metrics.NewManager(cfg.Metrics.Namespace, "", reg)

	exercises := catalog.Load(cfg.Catalog.Path, cfg.Catalog.Sheet, logger)
	m.GaugeCatalogSize.Set(float64(exercises.Len()))

	mode, err := projection.ParseMode(cfg.Projection.Mode)
	if err != nil {
		panic("invalid projection mode: " + err.Error())
	}

	calculator := energy.NewCalculator(exercises,
		energy.Strict(cfg.Exercises.Strict),
		energy.DefaultDeficit(cfg.Projection.DefaultDeficit),
		energy.Logger(logger),
	)
	forecastService := forecast.New(logger, calculator, m, cfg.Projection.DefaultDays, mode)
	progressService := progressapp.New(logger, exercises, forecastService, m, cfg.Exercises.Strict)

	server := api.NewServer(
		api.Addr(cfg.Server.Host, cfg.Server.Port),
		api.Logger(logger),
		api.DB(db),
		api.Catalog(exercises),
		api.ForecastService(forecastService),
		api.ProgressService(progressService),
		api.Metrics(reg),
		api.MessageBus(bus),
	)

	ctx := context.Background()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error)

	go func() {
		defer close(errCh)
		errCh <- server.Start()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server was not shutdown gracefully", "error", err)
		}
	case err := <-errCh:
		if err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logger.Error("server closed with unexpected error", "error", err)
			}
		}
	}
	bus.Close()
	logger.Info("server shutdown")
}

func initLogger(cfg *config.Config) *slog.Logger {
	var handler slog.Handler
	switch cfg.App.Env {
	case config.Development:
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			AddSource: true,
			Level:     slog.LevelDebug,
		})
	case config.Production:
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			AddSource: false,
			Level:     slog.LevelInfo,
		})
	default:
		panic("invalid env")
	}

	return slog.New(handler)
}
