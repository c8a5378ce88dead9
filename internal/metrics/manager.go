package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Manager struct {
	CounterProjections      *prometheus.CounterVec
	CounterUnknownExercises prometheus.Counter
	CounterRecords          prometheus.Counter
	CounterSessions         prometheus.Counter

	HistHorizonDays  prometheus.Histogram
	HistDailyDeficit prometheus.Histogram
	GaugeCatalogSize prometheus.Gauge
}

func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewBuildInfoCollector(),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func NewTestManager() *Manager {
	return NewManager("energy", "test", prometheus.NewRegistry())
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	return &Manager{
		CounterProjections: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "projections_total",
			Help:      "The total number of computed weight projections",
		}, []string{"mode", "reached"}),
		CounterUnknownExercises: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "unknown_exercises_total",
			Help:      "Exercise names that were not found in the catalog",
		}),
		CounterRecords: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "daily_records_total",
			Help:      "The total number of stored daily records",
		}),
		CounterSessions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "exercise_sessions_total",
			Help:      "The total number of stored exercise sessions",
		}),
		HistHorizonDays: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "projection_horizon_days",
			Help:      "Requested projection horizons",
			Buckets:   []float64{7, 30, 90, 180, 365, 730},
		}),
		HistDailyDeficit: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "daily_deficit_kcal",
			Help:      "Daily caloric deficit fed into projections",
			Buckets:   prometheus.LinearBuckets(-1000, 250, 13),
		}),
		GaugeCatalogSize: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "exercise_catalog_size",
			Help:      "Number of exercises in the loaded reference catalog",
		}),
	}
}
