// Package metrics exposes prometheus instrumentation for the service.
package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Config carries metric label defaults.
type Config struct {
	ServiceName string
	Environment string
}

// RefreshMetrics instruments the rate refresh pipeline.
type RefreshMetrics struct {
	unitsProcessed *prometheus.CounterVec
	pointsStored   prometheus.Counter
	cycleDuration  prometheus.Histogram
	cycleUnits     prometheus.Gauge
	staleBacklog   prometheus.Gauge
}

var (
	refreshMetricsOnce sync.Once
	refreshMetrics     *RefreshMetrics
)

// Refresh returns the process-wide refresh metrics.
func Refresh() *RefreshMetrics {
	return RefreshWithConfig(Config{})
}

// RefreshWithConfig returns the process-wide refresh metrics, registering
// them on first use.
func RefreshWithConfig(cfg Config) *RefreshMetrics {
	refreshMetricsOnce.Do(func() {
		refreshMetrics = newRefreshMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return refreshMetrics
}

// ResetRefreshMetricsForTest clears the singleton between tests.
func ResetRefreshMetricsForTest() {
	refreshMetricsOnce = sync.Once{}
	refreshMetrics = nil
}

func newRefreshMetrics(registerer prometheus.Registerer, cfg Config) *RefreshMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "staypoint"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}

	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	unitsProcessed := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "refresh_units_processed_total",
			Help:        "Refresh units processed per cycle, by unit status.",
			ConstLabels: constLabels,
		},
		[]string{"status"},
	)
	pointsStored := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name:        "refresh_points_stored_total",
			Help:        "Extracted rate points persisted by the upserter.",
			ConstLabels: constLabels,
		},
	)
	cycleDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:        "refresh_cycle_duration_seconds",
			Help:        "Wall-clock duration of a full refresh cycle.",
			Buckets:     prometheus.ExponentialBuckets(0.5, 2, 12),
			ConstLabels: constLabels,
		},
	)
	cycleUnits := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name:        "refresh_cycle_units",
			Help:        "Number of (source, window) units in the last cycle.",
			ConstLabels: constLabels,
		},
	)
	staleBacklog := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name:        "refresh_stale_backlog",
			Help:        "Units whose cached data was stale at the last cycle.",
			ConstLabels: constLabels,
		},
	)

	for _, collector := range []prometheus.Collector{
		unitsProcessed,
		pointsStored,
		cycleDuration,
		cycleUnits,
		staleBacklog,
	} {
		if err := registerer.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				panic(err)
			}
		}
	}

	return &RefreshMetrics{
		unitsProcessed: unitsProcessed,
		pointsStored:   pointsStored,
		cycleDuration:  cycleDuration,
		cycleUnits:     cycleUnits,
		staleBacklog:   staleBacklog,
	}
}

// ObserveUnit counts one processed unit with its final status.
func (m *RefreshMetrics) ObserveUnit(status string) {
	if m == nil {
		return
	}
	m.unitsProcessed.WithLabelValues(status).Inc()
}

// ObservePoints counts persisted rate points.
func (m *RefreshMetrics) ObservePoints(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.pointsStored.Add(float64(n))
}

// ObserveCycle records cycle-level aggregates.
func (m *RefreshMetrics) ObserveCycle(duration time.Duration, units, stale int) {
	if m == nil {
		return
	}
	m.cycleDuration.Observe(duration.Seconds())
	m.cycleUnits.Set(float64(units))
	m.staleBacklog.Set(float64(stale))
}
