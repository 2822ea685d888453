package session

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/roach88/coursetree/internal/fault"
)

var (
	// mutationsTotal counts applied mutations by op and outcome.
	mutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coursetree_mutations_total",
		Help: "Mutations applied to a track session by op and outcome",
	}, []string{"op", "outcome"})

	// commitDuration tracks plan plus persist latency.
	commitDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "coursetree_commit_duration_seconds",
		Help:    "Time from planning a mutation to the storage acknowledgement",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14), // 0.5ms to ~4s
	}, []string{"outcome"})

	// rollbacksTotal counts optimistic views discarded after a failed save.
	rollbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coursetree_rollbacks_total",
		Help: "Optimistic views rolled back to the last acknowledged tree",
	}, []string{"reason"})
)

// outcome labels an error for metrics: "ok" or the lowercased fault code.
func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	code := fault.CodeOf(err)
	if code == "" {
		return "unknown"
	}
	return strings.ToLower(string(code))
}
