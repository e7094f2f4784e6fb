// Package observability holds the Prometheus metrics for the engine.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the counters, histograms, and gauges for the monitoring engine.
type Metrics struct {
	TicksTotal        *prometheus.CounterVec // labels: cadence
	TickErrors        *prometheus.CounterVec // labels: cadence
	FetchErrors       *prometheus.CounterVec // labels: source
	NoticesSent       *prometheus.CounterVec // labels: kind
	NoticesSuppressed *prometheus.CounterVec // labels: kind
	DeliveryErrors    prometheus.Counter
	TickDuration      *prometheus.HistogramVec // labels: cadence
	ActiveTimers      prometheus.Gauge
}

func newMetrics() *Metrics {
	return &Metrics{
		TicksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mhews",
			Name:      "ticks_total",
			Help:      "Total scheduled ticks executed, per cadence.",
		}, []string{"cadence"}),
		TickErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mhews",
			Name:      "tick_errors_total",
			Help:      "Total ticks that ended with an error, per cadence.",
		}, []string{"cadence"}),
		FetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mhews",
			Name:      "fetch_errors_total",
			Help:      "Total source adapter fetch failures, per source.",
		}, []string{"source"}),
		NoticesSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mhews",
			Name:      "notices_sent_total",
			Help:      "Total alert notices handed to the delivery transport, per kind.",
		}, []string{"kind"}),
		NoticesSuppressed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mhews",
			Name:      "notices_suppressed_total",
			Help:      "Total notices suppressed by deduplication, per kind.",
		}, []string{"kind"}),
		DeliveryErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mhews",
			Name:      "delivery_errors_total",
			Help:      "Total transport delivery failures (logged and swallowed).",
		}),
		TickDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "mhews",
			Name:      "tick_duration_seconds",
			Help:      "Duration of one pipeline tick, per cadence.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"cadence"}),
		ActiveTimers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "mhews",
			Name:      "active_timers",
			Help:      "Number of registered recurring timers.",
		}),
	}
}

// NewMetrics creates and registers all engine metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.TicksTotal,
		m.TickErrors,
		m.FetchErrors,
		m.NoticesSent,
		m.NoticesSuppressed,
		m.DeliveryErrors,
		m.TickDuration,
		m.ActiveTimers,
	)
	return m
}

// NewMetricsForTesting creates metrics without registering them, so tests can
// construct components freely.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
