// Package metrics defines and registers the Prometheus collectors used by
// the stats pipeline. Collectors share the common "hockey_" prefix.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds every Prometheus collector used by the pipeline.
type Metrics struct {
	// EventsRecordedTotal counts game events that went through the recorder.
	EventsRecordedTotal *prometheus.CounterVec

	// AtomicStatsWrittenTotal counts atomic stat rows inserted, by stat type.
	AtomicStatsWrittenTotal *prometheus.CounterVec

	// AtomicStatsSkippedTotal counts idempotent-insert skips (row already existed).
	AtomicStatsSkippedTotal *prometheus.CounterVec

	// RoleFailuresTotal counts per-role recording failures by reason.
	RoleFailuresTotal *prometheus.CounterVec

	// AggregateRecomputesTotal counts player aggregate recomputations by status.
	AggregateRecomputesTotal *prometheus.CounterVec

	// ReprocessRunsTotal counts reprocessing runs by scope and terminal status.
	ReprocessRunsTotal *prometheus.CounterVec

	// ReprocessUnitDuration observes per-player reprocess durations.
	ReprocessUnitDuration prometheus.Histogram

	// ConsistencyGapsTotal counts gaps surfaced by the consistency reporter.
	ConsistencyGapsTotal *prometheus.CounterVec
}

// NewMetrics creates and registers all collectors with the supplied
// registerer. Pass prometheus.DefaultRegisterer for global registration or a
// custom registry for testing.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	m := &Metrics{}

	m.EventsRecordedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hockey_events_recorded_total",
		Help: "Total game events processed by the stat recorder.",
	}, []string{"event_type"})
	registerer.MustRegister(m.EventsRecordedTotal)

	m.AtomicStatsWrittenTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hockey_atomic_stats_written_total",
		Help: "Atomic stat rows inserted.",
	}, []string{"stat_type"})
	registerer.MustRegister(m.AtomicStatsWrittenTotal)

	m.AtomicStatsSkippedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hockey_atomic_stats_skipped_total",
		Help: "Atomic stat inserts skipped because the row already existed.",
	}, []string{"stat_type"})
	registerer.MustRegister(m.AtomicStatsSkippedTotal)

	m.RoleFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hockey_role_failures_total",
		Help: "Per-role recording failures.",
	}, []string{"reason"})
	registerer.MustRegister(m.RoleFailuresTotal)

	m.AggregateRecomputesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hockey_aggregate_recomputes_total",
		Help: "Player aggregate recomputations by status.",
	}, []string{"status"})
	registerer.MustRegister(m.AggregateRecomputesTotal)

	m.ReprocessRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hockey_reprocess_runs_total",
		Help: "Reprocessing runs by scope and terminal status.",
	}, []string{"scope", "status"})
	registerer.MustRegister(m.ReprocessRunsTotal)

	m.ReprocessUnitDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "hockey_reprocess_unit_duration_seconds",
		Help:    "Duration of a single player's reprocess unit.",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
	})
	registerer.MustRegister(m.ReprocessUnitDuration)

	m.ConsistencyGapsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hockey_consistency_gaps_total",
		Help: "Gaps surfaced by the consistency reporter.",
	}, []string{"gap"})
	registerer.MustRegister(m.ConsistencyGapsTotal)

	return m
}

// New creates a Metrics instance registered against the default Prometheus
// registry. Convenience wrapper for production wiring.
func New() *Metrics {
	return NewMetrics(prometheus.DefaultRegisterer)
}
