package compute

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// computationsTotal counts distribution computations by kind and result
	computationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "phasespace_computations_total",
		Help: "Total distribution computations by kind and result",
	}, []string{"kind", "result"})

	// computeDuration tracks builder update latency
	computeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "phasespace_compute_duration_seconds",
		Help:    "Distribution builder update duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~16s
	}, []string{"kind"})

	// reductionsTotal counts marginals and projections
	reductionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "phasespace_reductions_total",
		Help: "Total grid reductions by operation and result",
	}, []string{"op", "result"})

	// gridSamples tracks the number of samples in computed grids
	gridSamples = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "phasespace_grid_samples",
		Help:    "Number of samples in computed grids",
		Buckets: prometheus.ExponentialBuckets(64, 4, 8),
	})
)

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
