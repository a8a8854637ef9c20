package api

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus instruments on a private registry,
// so tests can build servers without duplicate-registration panics.
type Metrics struct {
	requests     *prometheus.CounterVec
	latency      *prometheus.HistogramVec
	scores       *prometheus.CounterVec
	trainingRuns *prometheus.CounterVec
	registry     *prometheus.Registry
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "riskd_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "riskd_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		scores: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "riskd_scores_total",
				Help: "Scores produced, by band and strategy",
			},
			[]string{"band", "strategy"},
		),
		trainingRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "riskd_training_runs_total",
				Help: "Training runs, by outcome",
			},
			[]string{"outcome"},
		),
		registry: registry,
	}

	registry.MustRegister(m.requests, m.latency, m.scores, m.trainingRuns)
	return m
}

func (m *Metrics) ObserveRequest(method, path string, status int, seconds float64) {
	m.requests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.latency.WithLabelValues(method, path).Observe(seconds)
}

func (m *Metrics) ObserveScore(band string, ruleBased bool) {
	strategy := "model"
	if ruleBased {
		strategy = "rule"
	}
	m.scores.WithLabelValues(band, strategy).Inc()
}

func (m *Metrics) ObserveTraining(success bool) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.trainingRuns.WithLabelValues(outcome).Inc()
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
