// Package metrics provides Prometheus instrumentation for the engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "tably"

// Metrics holds all Prometheus collectors for the engine. Initialize once
// at startup via New and inject where needed; all operations are
// thread-safe via Prometheus's internal locking.
type Metrics struct {
	// SessionsCreated counts session initializations.
	SessionsCreated prometheus.Counter

	// SessionsSwept counts sessions removed by expiry sweeps.
	SessionsSwept prometheus.Counter

	// ActiveSessions tracks the current session count in the store.
	ActiveSessions prometheus.Gauge

	// QueriesTotal counts query turns by intent and outcome.
	QueriesTotal *prometheus.CounterVec

	// RowsPatched counts rows modified by applied patch sets.
	RowsPatched prometheus.Counter

	// LLMRequestDuration observes upstream completion latency.
	LLMRequestDuration prometheus.Histogram
}

// New creates the engine metrics registered on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		SessionsCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_created_total",
			Help:      "Total number of sessions created.",
		}),
		SessionsSwept: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_swept_total",
			Help:      "Total number of sessions removed by expiry sweeps.",
		}),
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Current number of sessions held in memory.",
		}),
		QueriesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Total query turns by intent and outcome.",
		}, []string{"intent", "status"}),
		RowsPatched: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_patched_total",
			Help:      "Total rows modified by applied patch sets.",
		}),
		LLMRequestDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_request_duration_seconds",
			Help:      "Latency of upstream model completions.",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10),
		}),
	}
}
