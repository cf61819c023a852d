// Package metrics holds the Prometheus collectors exported at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CompletionCalls counts completion calls by tier and outcome (ok, error, rejected).
	CompletionCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "brandkit",
		Subsystem: "completion",
		Name:      "calls_total",
		Help:      "Completion calls by model tier and outcome.",
	}, []string{"tier", "outcome"})

	// CompletionLatency observes completion call latency by tier.
	CompletionLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "brandkit",
		Subsystem: "completion",
		Name:      "latency_seconds",
		Help:      "Completion call latency by model tier.",
		Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
	}, []string{"tier"})

	// BreakerState reports the completion circuit breaker state (0 closed, 1 open, 2 half-open).
	BreakerState = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "brandkit",
		Subsystem: "completion",
		Name:      "breaker_state",
		Help:      "Completion circuit breaker state: 0 closed, 1 open, 2 half-open.",
	})

	// Attempts counts logo attempts by outcome (completed, abandoned) and abandoning stage.
	Attempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "brandkit",
		Subsystem: "logo",
		Name:      "attempts_total",
		Help:      "Logo generation attempts by outcome and stage.",
	}, []string{"outcome", "stage"})

	// QualityScores observes review scores of completed attempts.
	QualityScores = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "brandkit",
		Subsystem: "logo",
		Name:      "quality_score",
		Help:      "Quality review score of completed attempts.",
		Buckets:   prometheus.LinearBuckets(0, 1, 11),
	})

	// Generations counts pipeline runs by result (accepted, best_effort, failed, canceled).
	Generations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "brandkit",
		Subsystem: "logo",
		Name:      "generations_total",
		Help:      "Logo pipeline runs by result.",
	}, []string{"result"})

	// GenerationDuration observes whole pipeline runs.
	GenerationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "brandkit",
		Subsystem: "logo",
		Name:      "generation_seconds",
		Help:      "Wall time of a whole logo pipeline run.",
		Buckets:   []float64{5, 15, 30, 60, 120, 240, 480},
	})

	// CacheLookups counts result cache lookups by outcome (hit, miss, error).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "brandkit",
		Subsystem: "cache",
		Name:      "lookups_total",
		Help:      "Generation result cache lookups by outcome.",
	}, []string{"outcome"})
)
