// Package metrics exposes the engine's Prometheus instrumentation.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all Prometheus metrics for the engine.
type Registry struct {
	SignalsTotal    *prometheus.CounterVec
	RiskScore       prometheus.Histogram
	BacktestRuns    prometheus.Counter
	RequestDuration *prometheus.HistogramVec

	registry *prometheus.Registry
}

// NewRegistry creates and registers all engine metrics on a dedicated
// Prometheus registry.
func NewRegistry() *Registry {
	r := &Registry{
		SignalsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalrun_signals_total",
				Help: "Total number of trade signals generated by action",
			},
			[]string{"action"},
		),
		RiskScore: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "signalrun_risk_score",
				Help:    "Distribution of fused risk scores (0-100, lower is riskier)",
				Buckets: prometheus.LinearBuckets(0, 10, 11),
			},
		),
		BacktestRuns: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "signalrun_backtest_runs_total",
				Help: "Total number of completed backtest runs",
			},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "signalrun_request_duration_seconds",
				Help:    "HTTP request duration by route and status code",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
			},
			[]string{"route", "code"},
		),
		registry: prometheus.NewRegistry(),
	}

	r.registry.MustRegister(r.SignalsTotal, r.RiskScore, r.BacktestRuns, r.RequestDuration)
	return r
}

// ObserveSignal records a generated signal and its risk score.
func (r *Registry) ObserveSignal(action string, riskScore float64) {
	r.SignalsTotal.WithLabelValues(action).Inc()
	r.RiskScore.Observe(riskScore)
}

// ObserveRequest records one HTTP request.
func (r *Registry) ObserveRequest(route, code string, duration time.Duration) {
	r.RequestDuration.WithLabelValues(route, code).Observe(duration.Seconds())
}

// Gather exposes the underlying registry for test assertions.
func (r *Registry) Gather() prometheus.Gatherer {
	return r.registry
}

// Handler returns the Prometheus scrape handler for this registry.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
