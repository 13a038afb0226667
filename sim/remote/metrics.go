package remote

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// decisionsTotal counts final remote decisions by style and outcome
	decisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "redblue_remote_decisions_total",
		Help: "Final remote-policy decisions by style and outcome",
	}, []string{"style", "outcome"})

	// attemptsTotal counts chat-completion attempts by parameter shape and result
	attemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "redblue_remote_attempts_total",
		Help: "Chat-completion attempts by token field, response format and result",
	}, []string{"token_field", "json_format", "result"})

	// fallbacksTotal counts decisions served by the proof summary
	fallbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "redblue_remote_fallbacks_total",
		Help: "Decisions that fell back to the deterministic proof summary, by cause",
	}, []string{"cause"})

	// forcedLeavesTotal counts stays overridden by the certainty rule
	forcedLeavesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "redblue_remote_forced_leaves_total",
		Help: "Decisions turned into departures because the villager was certain",
	})

	// alignmentOverridesTotal counts model decisions replaced by the proof
	alignmentOverridesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "redblue_remote_alignment_overrides_total",
		Help: "Model decisions replaced by the closed-form proof in alignment mode",
	})

	// requestDuration tracks the latency of a full completion (all attempts)
	requestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "redblue_remote_request_duration_seconds",
		Help:    "Latency of one remote decision's completion call in seconds",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
	})
)
