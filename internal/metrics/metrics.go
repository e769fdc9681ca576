// Package metrics exposes prometheus collectors for turns, generation,
// LLM calls and the HTTP surface.
package metrics

import (
	"time"

	"github.com/alexanderramin/eventwise/internal/llm"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "eventwise"

// Metrics groups every collector. Build one per registry with New.
type Metrics struct {
	TurnsTotal         *prometheus.CounterVec
	TurnDuration       *prometheus.HistogramVec
	StageDisagreements prometheus.Counter
	Confirmations      *prometheus.CounterVec

	GenerationItems    *prometheus.CounterVec
	GenerationFailures *prometheus.CounterVec
	GenerationDuration prometheus.Histogram

	LLMCallTotal    *prometheus.CounterVec
	LLMCallDuration *prometheus.HistogramVec

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		TurnsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "turn",
			Name:      "total",
			Help:      "Conversation turns handled, by resolved stage and outcome",
		}, []string{"stage", "outcome"}),
		TurnDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "turn",
			Name:      "duration_seconds",
			Help:      "Turn handling duration in seconds",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"outcome"}),
		StageDisagreements: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "turn",
			Name:      "stage_disagreements_total",
			Help:      "Turns where the model's proposed stage differed from the resolved stage",
		}),
		Confirmations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "turn",
			Name:      "confirmations_total",
			Help:      "Confirmation classifications, by mode and verdict",
		}, []string{"mode", "confirmed"}),
		GenerationItems: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "generation",
			Name:      "items_total",
			Help:      "Generated content items stored, by category",
		}, []string{"category"}),
		GenerationFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "generation",
			Name:      "failures_total",
			Help:      "Generator failures, by category",
		}, []string{"category"}),
		GenerationDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "generation",
			Name:      "duration_seconds",
			Help:      "Duration of a full generation fan-out",
			Buckets:   []float64{1, 5, 10, 30, 60, 120},
		}),
		LLMCallTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "call_total",
			Help:      "LLM calls, by task and status",
		}, []string{"task", "model", "status"}),
		LLMCallDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "call_duration_seconds",
			Help:      "LLM call duration in seconds",
			Buckets:   []float64{.25, .5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"task"}),
		HTTPRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests, by method, route and status",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
}

// OnCallComplete implements llm.Observer.
func (m *Metrics) OnCallComplete(e llm.LLMCallEvent) {
	status := "ok"
	if !e.Success {
		status = e.ErrorCode
	}
	m.LLMCallTotal.WithLabelValues(string(e.Task), e.Model, status).Inc()
	m.LLMCallDuration.WithLabelValues(string(e.Task)).Observe(float64(e.LatencyMs) / 1000)
}

// ObserveTurn records one handled turn.
func (m *Metrics) ObserveTurn(stage, outcome string, d time.Duration) {
	m.TurnsTotal.WithLabelValues(stage, outcome).Inc()
	m.TurnDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

var _ llm.Observer = (*Metrics)(nil)
