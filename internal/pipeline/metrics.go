package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/goliatone/go-invites/internal/domain"
)

const metricsNamespace = "invites"

// Fallback kinds counted when an adapter or the parser degrades.
const (
	FallbackGenerator = "generator"
	FallbackParser    = "parser"
	FallbackGeocoder  = "geocoder"
)

// Metrics groups the pipeline collectors.
type Metrics struct {
	Submitted    prometheus.Counter
	Completed    prometheus.Counter
	Failed       *prometheus.CounterVec
	Fallbacks    *prometheus.CounterVec
	StepDuration *prometheus.HistogramVec
	InFlight     prometheus.Gauge
	Rejected     prometheus.Counter
}

// NewMetrics builds the collectors and registers them on reg when non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Submitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "pipeline",
			Name:      "tasks_submitted_total",
			Help:      "Generation tasks accepted into the queue.",
		}),
		Completed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "pipeline",
			Name:      "tasks_completed_total",
			Help:      "Generation tasks that produced a site.",
		}),
		Failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "pipeline",
			Name:      "tasks_failed_total",
			Help:      "Generation tasks that ended in the failed state.",
		}, []string{"reason"}),
		Fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "pipeline",
			Name:      "fallbacks_total",
			Help:      "Non-fatal degradations recovered locally.",
		}, []string{"kind"}),
		StepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "pipeline",
			Name:      "step_duration_seconds",
			Help:      "Time spent in each pipeline state.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"}),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "pipeline",
			Name:      "tasks_in_flight",
			Help:      "Tasks currently owned by a worker.",
		}),
		Rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "pipeline",
			Name:      "tasks_rejected_total",
			Help:      "Submissions refused because the queue was full.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Submitted, m.Completed, m.Failed, m.Fallbacks, m.StepDuration, m.InFlight, m.Rejected)
	}
	return m
}

func (m *Metrics) observeStep(status domain.Status, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.StepDuration.WithLabelValues(string(status)).Observe(elapsed.Seconds())
}

func (m *Metrics) fallback(kind string) {
	if m == nil {
		return
	}
	m.Fallbacks.WithLabelValues(kind).Inc()
}

func (m *Metrics) finished(task *domain.GenerationTask, kind FailureKind) {
	if m == nil {
		return
	}
	if task.Status == domain.StatusCompleted {
		m.Completed.Inc()
		return
	}
	m.Failed.WithLabelValues(string(kind)).Inc()
}
