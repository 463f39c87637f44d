package scoringservice

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records service operation outcomes.
type Metrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, duration time.Duration)
	RecordSnapshotWrite(ctx context.Context, skipped bool)
	RecordScoreboardWarnings(ctx context.Context, spec string, count int)
}

// PrometheusMetrics implements Metrics with client_golang collectors.
type PrometheusMetrics struct {
	attempts  *prometheus.CounterVec
	successes *prometheus.CounterVec
	failures  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	snapshots *prometheus.CounterVec
	warnings  *prometheus.CounterVec
}

// NewPrometheusMetrics registers the scoring collectors on reg.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	m := &PrometheusMetrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scoring",
			Name:      "operation_attempts_total",
			Help:      "Service operations started.",
		}, []string{"operation", "service"}),
		successes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scoring",
			Name:      "operation_success_total",
			Help:      "Service operations that completed without an infrastructure error.",
		}, []string{"operation", "service"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scoring",
			Name:      "operation_failure_total",
			Help:      "Service operations that failed with an error or panic.",
		}, []string{"operation", "service"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "scoring",
			Name:      "operation_duration_seconds",
			Help:      "Service operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "service"}),
		snapshots: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scoring",
			Name:      "snapshot_writes_total",
			Help:      "Scoreboard snapshot writes, labelled by whether an unchanged hash skipped them.",
		}, []string{"skipped"}),
		warnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scoring",
			Name:      "scoreboard_warnings_total",
			Help:      "Warnings attached to computed scoreboards.",
		}, []string{"spec"}),
	}
	if reg != nil {
		reg.MustRegister(m.attempts, m.successes, m.failures, m.duration, m.snapshots, m.warnings)
	}
	return m
}

func (m *PrometheusMetrics) RecordOperationAttempt(_ context.Context, operation, service string) {
	m.attempts.WithLabelValues(operation, service).Inc()
}

func (m *PrometheusMetrics) RecordOperationSuccess(_ context.Context, operation, service string) {
	m.successes.WithLabelValues(operation, service).Inc()
}

func (m *PrometheusMetrics) RecordOperationFailure(_ context.Context, operation, service string) {
	m.failures.WithLabelValues(operation, service).Inc()
}

func (m *PrometheusMetrics) RecordOperationDuration(_ context.Context, operation, service string, duration time.Duration) {
	m.duration.WithLabelValues(operation, service).Observe(duration.Seconds())
}

func (m *PrometheusMetrics) RecordSnapshotWrite(_ context.Context, skipped bool) {
	m.snapshots.WithLabelValues(strconv.FormatBool(skipped)).Inc()
}

func (m *PrometheusMetrics) RecordScoreboardWarnings(_ context.Context, spec string, count int) {
	if count > 0 {
		m.warnings.WithLabelValues(spec).Add(float64(count))
	}
}

// NoOpMetrics discards everything.
type NoOpMetrics struct{}

func (NoOpMetrics) RecordOperationAttempt(context.Context, string, string)                 {}
func (NoOpMetrics) RecordOperationSuccess(context.Context, string, string)                 {}
func (NoOpMetrics) RecordOperationFailure(context.Context, string, string)                 {}
func (NoOpMetrics) RecordOperationDuration(context.Context, string, string, time.Duration) {}
func (NoOpMetrics) RecordSnapshotWrite(context.Context, bool)                              {}
func (NoOpMetrics) RecordScoreboardWarnings(context.Context, string, int)                  {}

var (
	_ Metrics = (*PrometheusMetrics)(nil)
	_ Metrics = NoOpMetrics{}
)
