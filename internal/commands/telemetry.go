package commands

import (
	"context"
	"time"

	command "github.com/goliatone/go-command"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/goliatone/go-invites/internal/logging"
	"github.com/goliatone/go-invites/pkg/interfaces"
)

// TelemetryStatus is the outcome class of one command execution.
type TelemetryStatus string

const (
	TelemetryStatusSuccess      TelemetryStatus = "success"
	TelemetryStatusFailed       TelemetryStatus = "failed"
	TelemetryStatusContextError TelemetryStatus = "context_error"
)

// TelemetryInfo is handed to telemetry callbacks after each execution.
type TelemetryInfo struct {
	Command   string
	Operation string
	Fields    map[string]any
	Duration  time.Duration
	Error     error
	Status    TelemetryStatus
	Logger    interfaces.Logger
}

// Telemetry runs after every execution, successful or not.
type Telemetry[T command.Message] func(ctx context.Context, msg T, info TelemetryInfo)

// DefaultTelemetry logs one entry per execution.
func DefaultTelemetry[T command.Message](logger interfaces.Logger) Telemetry[T] {
	if logger == nil {
		logger = logging.NoOp()
	}
	return func(_ context.Context, _ T, info TelemetryInfo) {
		entry := logging.WithFields(logger, info.Fields)
		args := []any{"duration_ms", info.Duration.Milliseconds()}
		switch info.Status {
		case TelemetryStatusSuccess:
			entry.Info("command.execute.success", args...)
		case TelemetryStatusContextError:
			entry.Warn("command.execute.context_error", append(args, "error", info.Error)...)
		default:
			entry.Error("command.execute.failed", append(args, "error", info.Error)...)
		}
	}
}

// Metrics records command executions in prometheus.
type Metrics struct {
	Duration *prometheus.HistogramVec
}

// NewMetrics registers invites_command_duration_seconds{command,status} on reg.
// A nil reg leaves the collector unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "invites",
			Subsystem: "command",
			Name:      "duration_seconds",
			Help:      "Command execution time by command and outcome.",
			Buckets:   []float64{.005, .05, .25, 1, 5, 30, 120},
		}, []string{"command", "status"}),
	}
	if reg != nil {
		reg.MustRegister(m.Duration)
	}
	return m
}

// MetricsTelemetry observes every execution on m.
func MetricsTelemetry[T command.Message](m *Metrics) Telemetry[T] {
	return func(_ context.Context, _ T, info TelemetryInfo) {
		if m == nil {
			return
		}
		m.Duration.WithLabelValues(info.Command, string(info.Status)).Observe(info.Duration.Seconds())
	}
}

// ChainTelemetry calls each non-nil callback in order.
func ChainTelemetry[T command.Message](callbacks ...Telemetry[T]) Telemetry[T] {
	return func(ctx context.Context, msg T, info TelemetryInfo) {
		for _, cb := range callbacks {
			if cb != nil {
				cb(ctx, msg, info)
			}
		}
	}
}
