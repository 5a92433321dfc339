package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the evaluation pipeline.
type Metrics struct {
	registry *prometheus.Registry

	Evaluations        *prometheus.CounterVec // labels: asset, horizon, signal
	EvaluationErrors   *prometheus.CounterVec // labels: asset, horizon
	EvaluationDuration prometheus.Histogram
	FetchErrors        *prometheus.CounterVec // labels: source
	SubscriberDrops    *prometheus.CounterVec // labels: subscriber
	AlertsSent         prometheus.Counter
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		Evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "predictor_evaluations_total",
			Help: "Completed signal evaluations.",
		}, []string{"asset", "horizon", "signal"}),
		EvaluationErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "predictor_evaluation_errors_total",
			Help: "Evaluations that produced no result.",
		}, []string{"asset", "horizon"}),
		EvaluationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "predictor_evaluation_duration_seconds",
			Help:    "Wall time of fetch plus computation.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		FetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "predictor_fetch_errors_total",
			Help: "Price provider failures by backend.",
		}, []string{"source"}),
		SubscriberDrops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "predictor_subscriber_drops_total",
			Help: "Evaluations dropped because a subscriber buffer was full.",
		}, []string{"subscriber"}),
		AlertsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "predictor_alerts_sent_total",
			Help: "Signal-change alerts delivered.",
		}),
	}
	reg.MustRegister(
		m.Evaluations, m.EvaluationErrors, m.EvaluationDuration,
		m.FetchErrors, m.SubscriberDrops, m.AlertsSent,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
