package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Removal metrics
var (
	// RemovalsTotal counts invocations by outcome (DELETE, ERROR, BLOCKED, USAGE)
	RemovalsTotal *prometheus.CounterVec

	// BytesFreedTotal tracks bytes released by successful removals
	BytesFreedTotal prometheus.Counter

	// LastRunTimestamp records Unix timestamp of the last invocation
	LastRunTimestamp prometheus.Gauge

	// RemoveDuration tracks how long the removal primitive took
	RemoveDuration prometheus.Histogram
)

func initRemovalMetrics() {
	RemovalsTotal = NewCounterVec(
		"rmfile_removals_total",
		"Total number of rmfile invocations by outcome.",
		[]string{"outcome"},
	)

	BytesFreedTotal = NewBytesCounter(
		"rmfile_bytes_freed_total",
		"Total bytes freed by successful removals.",
	)

	LastRunTimestamp = NewGauge(
		"rmfile_last_run_timestamp",
		"Timestamp of the last rmfile invocation (Unix epoch seconds).",
	)

	RemoveDuration = NewDurationHistogram(
		"rmfile_remove_duration_seconds",
		"Duration of the filesystem removal call in seconds.",
	)
}

func registerRemovalMetrics(reg prometheus.Registerer) {
	reg.MustRegister(RemovalsTotal)
	reg.MustRegister(BytesFreedTotal)
	reg.MustRegister(LastRunTimestamp)
	reg.MustRegister(RemoveDuration)
}

// RecordOutcome counts one invocation and stamps the last run time
func RecordOutcome(outcome string) {
	RemovalsTotal.WithLabelValues(outcome).Inc()
	LastRunTimestamp.Set(float64(time.Now().Unix()))
}

// RecordRemoval observes the duration of a removal call and, when it
// succeeded, the bytes it freed
func RecordRemoval(elapsed time.Duration, freed int64) {
	RemoveDuration.Observe(elapsed.Seconds())
	if freed > 0 {
		BytesFreedTotal.Add(float64(freed))
	}
}
