// Package telemetry provides Prometheus metrics and an OpenTelemetry tracer
// for the balancer service.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "balancer"

// Metrics holds the service Prometheus metrics.
type Metrics struct {
	CyclesTotal         prometheus.Counter
	InterventionsTotal  *prometheus.CounterVec
	ClassifierFallbacks prometheus.Counter
	TasksActive         prometheus.Gauge
	TasksCompleted      *prometheus.CounterVec
	EffectivenessScore  prometheus.Histogram
	CycleDuration       prometheus.Histogram
}

// Provider wraps the telemetry providers.
type Provider struct {
	Tracer  trace.Tracer
	Metrics *Metrics
}

// NewProvider initializes telemetry.
func NewProvider() *Provider {
	return &Provider{
		Tracer:  otel.Tracer(serviceName),
		Metrics: initMetrics(),
	}
}

// Handler returns the Prometheus handler for the /metrics endpoint.
func (p *Provider) Handler() http.Handler {
	return promhttp.Handler()
}

func initMetrics() *Metrics {
	return &Metrics{
		CyclesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "balancer_monitoring_cycles_total",
			Help: "Total monitoring cycles executed",
		}),
		InterventionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "balancer_interventions_total",
			Help: "Total interventions executed by outcome",
		}, []string{"outcome"}),
		ClassifierFallbacks: promauto.NewCounter(prometheus.CounterOpts{
			Name: "balancer_classifier_fallbacks_total",
			Help: "Classifier calls that degraded to the rule-based estimator",
		}),
		TasksActive: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "balancer_tasks_active",
			Help: "Currently active monitoring tasks",
		}),
		TasksCompleted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "balancer_tasks_completed_total",
			Help: "Monitoring tasks completed by outcome",
		}, []string{"outcome"}),
		EffectivenessScore: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "balancer_effectiveness_score",
			Help:    "Final effectiveness scores of completed lifecycles",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		}),
		CycleDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "balancer_cycle_duration_seconds",
			Help:    "Duration of one measure/evaluate/intervene cycle",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// ClassifierFallback implements the scoring fallback counter hook.
func (p *Provider) ClassifierFallback() {
	p.Metrics.ClassifierFallbacks.Inc()
}

// CycleCompleted implements the monitor loop metrics hook.
func (p *Provider) CycleCompleted(d time.Duration) {
	p.Metrics.CyclesTotal.Inc()
	p.Metrics.CycleDuration.Observe(d.Seconds())
}

// TaskCompleted records a finished monitoring lifecycle.
func (p *Provider) TaskCompleted(outcome string, finalScore float64) {
	p.Metrics.TasksCompleted.WithLabelValues(outcome).Inc()
	p.Metrics.EffectivenessScore.Observe(finalScore)
}

// TaskStarted and TaskStopped maintain the active-task gauge.
func (p *Provider) TaskStarted() { p.Metrics.TasksActive.Inc() }

// TaskStopped decrements the active-task gauge.
func (p *Provider) TaskStopped() { p.Metrics.TasksActive.Dec() }

// InterventionExecuted implements the intervention metrics hook.
func (p *Provider) InterventionExecuted(success bool) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	p.Metrics.InterventionsTotal.WithLabelValues(outcome).Inc()
}
