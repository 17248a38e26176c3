package supercollider

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// schedMetrics collects the counters and histogram described in
// SPEC_FULL.md §9.5. It is a package-level singleton, matching the
// teacher's package-level Log: every Interpreter reports into the same
// registry, distinguished only if the caller wraps them behind separate
// prometheus.Registerers at the application layer.
//
// recordTick is called exactly once per tick, by TickMaster, strictly
// after the drain loop — never from the hot path a helper runs.
var schedMetrics = newSchedulerMetrics()

type schedulerMetrics struct {
	ticksCompleted prometheus.Counter
	tickDuration   prometheus.Histogram
	nodesRun       prometheus.Counter
}

func newSchedulerMetrics() *schedulerMetrics {
	return &schedulerMetrics{
		ticksCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "supercollider",
			Subsystem: "scheduler",
			Name:      "ticks_completed_total",
			Help:      "Number of ticks that ran every installed node exactly once.",
		}),
		tickDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: "supercollider",
			Subsystem: "scheduler",
			Name:      "tick_duration_seconds",
			Help:      "Wall-clock duration of TickMaster, from its start through drain.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 2, 16),
		}),
		nodesRun: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "supercollider",
			Subsystem: "scheduler",
			Name:      "nodes_run_total",
			Help:      "Cumulative number of node executions across all ticks.",
		}),
	}
}

func (m *schedulerMetrics) recordTick(d time.Duration, nodeCount int) {
	m.ticksCompleted.Inc()
	m.tickDuration.Observe(d.Seconds())
	m.nodesRun.Add(float64(nodeCount))
}
