// Package metrics exposes Prometheus instrumentation for the pricing
// pipeline. Collectors are registered on the default registry and served via
// promhttp on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RunsTotal counts pricing runs by terminal status (completed|failed).
	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pricing_service",
		Name:      "runs_total",
		Help:      "Total pricing runs by terminal status",
	}, []string{"status"})

	// RecommendationsTotal counts emitted recommendations by strategy.
	RecommendationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pricing_service",
		Name:      "recommendations_total",
		Help:      "Total recommendations emitted, labeled by strategy",
	}, []string{"strategy"})

	// RunDuration tracks wall-clock duration of completed runs.
	RunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "pricing_service",
		Name:      "run_duration_seconds",
		Help:      "Duration of completed pricing runs",
		Buckets:   prometheus.DefBuckets,
	})
)
