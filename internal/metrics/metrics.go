package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// ChecksTotal counts authenticity checks by outcome.
	ChecksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "prodcheck",
		Subsystem: "api",
		Name:      "checks_total",
		Help:      "Total number of authenticity checks handled, labeled by result.",
	}, []string{"result"})

	// CheckDurationSeconds is end-to-end time per check, measured in the handler.
	CheckDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "prodcheck",
		Subsystem: "api",
		Name:      "check_duration_seconds",
		Help:      "End-to-end time to handle an authenticity check, including the upstream model call.",
		// Coarse buckets; the upstream model call dominates and is slow.
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 30, 60, 120},
	}, []string{"result"})

	// MockResponsesTotal counts checks answered by the deterministic mock.
	MockResponsesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "prodcheck",
		Subsystem: "api",
		Name:      "mock_responses_total",
		Help:      "Total number of checks answered in mock mode without an upstream call.",
	})

	// UpstreamErrorsTotal counts failed calls to the external model.
	UpstreamErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "prodcheck",
		Subsystem: "api",
		Name:      "upstream_errors_total",
		Help:      "Total number of failed external model calls.",
	})
)

// Register registers API metrics with the default Prometheus registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			ChecksTotal,
			CheckDurationSeconds,
			MockResponsesTotal,
			UpstreamErrorsTotal,
		)
	})
}
