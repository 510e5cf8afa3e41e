// Package metrics defines Prometheus metrics for putterbase.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "putterbase"

// HTTP metrics.
var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"method", "path", "status"})
)

// Ingest metrics.
var (
	IngestAcceptedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ingest_accepted_total",
		Help:      "Total number of observations accepted into storage.",
	})

	IngestSkippedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ingest_skipped_total",
		Help:      "Total number of observations skipped, by reason.",
	}, []string{"reason"})

	StreamLagSeconds = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "stream_lag_seconds",
		Help:      "Age of the most recently consumed stream message.",
	})
)

// Aggregation metrics.
var (
	AggregationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "aggregation_duration_seconds",
		Help:      "Duration of aggregation runs per window in seconds.",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
	}, []string{"window_days"})

	AggregationRowsWritten = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "aggregation_rows_written",
		Help:      "Stat rows written by the most recent run, per window.",
	}, []string{"window_days"})

	AggregationFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "aggregation_failures_total",
		Help:      "Total number of failed aggregation runs.",
	})
)

// Health metrics.
var (
	HealthzUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "healthz_up",
		Help:      "1 if the last liveness check succeeded, 0 otherwise.",
	})

	ReadyzUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "readyz_up",
		Help:      "1 if the last readiness check succeeded, 0 otherwise.",
	})
)

// Resolution metrics.
var (
	ResolveOutcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "resolve_outcomes_total",
		Help:      "Total key resolutions, by match method or not_found.",
	}, []string{"method"})
)

// Deal badge metrics.
var (
	DealBadgesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "deal_badges_total",
		Help:      "Total deal badges issued, by tier.",
	}, []string{"tier"})

	DealScoreDistribution = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "deal_score_distribution",
		Help:      "Distribution of computed deal scores.",
		Buckets:   prometheus.LinearBuckets(0, 10, 11), // 0, 10, 20, ..., 100
	})
)
