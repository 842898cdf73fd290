// Package wordlemetrics records leaderboard operation metrics.
package wordlemetrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// WordleMetrics is the metrics surface used by the wordle service.
type WordleMetrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, d time.Duration)
	RecordMessageParsed(ctx context.Context, matched bool)
	RecordUpsertOutcome(ctx context.Context, outcome string)
	RecordBackfill(ctx context.Context, scanned, stored, failed int)
}

type prometheusMetrics struct {
	attempts  *prometheus.CounterVec
	successes *prometheus.CounterVec
	failures  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	parsed    *prometheus.CounterVec
	upserts   *prometheus.CounterVec
	backfill  *prometheus.CounterVec
}

// NewPrometheus registers the wordle collectors on reg.
func NewPrometheus(reg prometheus.Registerer) WordleMetrics {
	f := promauto.With(reg)
	return &prometheusMetrics{
		attempts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wordle",
			Name:      "operation_attempts_total",
			Help:      "Service operations started.",
		}, []string{"operation", "service"}),
		successes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wordle",
			Name:      "operation_success_total",
			Help:      "Service operations that completed.",
		}, []string{"operation", "service"}),
		failures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wordle",
			Name:      "operation_failures_total",
			Help:      "Service operations that returned an error.",
		}, []string{"operation", "service"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "wordle",
			Name:      "operation_duration_seconds",
			Help:      "Service operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "service"}),
		parsed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wordle",
			Name:      "messages_parsed_total",
			Help:      "Messages run through the score parser.",
		}, []string{"matched"}),
		upserts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wordle",
			Name:      "upserts_total",
			Help:      "Leaderboard upserts by outcome.",
		}, []string{"outcome"}),
		backfill: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wordle",
			Name:      "backfill_messages_total",
			Help:      "Backfill message counters.",
		}, []string{"kind"}),
	}
}

func (m *prometheusMetrics) RecordOperationAttempt(_ context.Context, operation, service string) {
	m.attempts.WithLabelValues(operation, service).Inc()
}

func (m *prometheusMetrics) RecordOperationSuccess(_ context.Context, operation, service string) {
	m.successes.WithLabelValues(operation, service).Inc()
}

func (m *prometheusMetrics) RecordOperationFailure(_ context.Context, operation, service string) {
	m.failures.WithLabelValues(operation, service).Inc()
}

func (m *prometheusMetrics) RecordOperationDuration(_ context.Context, operation, service string, d time.Duration) {
	m.duration.WithLabelValues(operation, service).Observe(d.Seconds())
}

func (m *prometheusMetrics) RecordMessageParsed(_ context.Context, matched bool) {
	label := "false"
	if matched {
		label = "true"
	}
	m.parsed.WithLabelValues(label).Inc()
}

func (m *prometheusMetrics) RecordUpsertOutcome(_ context.Context, outcome string) {
	m.upserts.WithLabelValues(outcome).Inc()
}

func (m *prometheusMetrics) RecordBackfill(_ context.Context, scanned, stored, failed int) {
	m.backfill.WithLabelValues("scanned").Add(float64(scanned))
	m.backfill.WithLabelValues("stored").Add(float64(stored))
	m.backfill.WithLabelValues("failed").Add(float64(failed))
}

type noop struct{}

// NewNoop returns metrics that record nothing.
func NewNoop() WordleMetrics { return noop{} }

func (noop) RecordOperationAttempt(context.Context, string, string) {}
func (noop) RecordOperationSuccess(context.Context, string, string) {}
func (noop) RecordOperationFailure(context.Context, string, string) {}
func (noop) RecordOperationDuration(context.Context, string, string, time.Duration) {}
func (noop) RecordMessageParsed(context.Context, bool) {}
func (noop) RecordUpsertOutcome(context.Context, string) {}
func (noop) RecordBackfill(context.Context, int, int, int) {}
