// Package metrics holds the pipeline counters and exposes them for scraping.
package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every collector this package defines.
var Registry = prometheus.NewRegistry()

var (
	factory = promauto.With(Registry)

	submissionStartedTotal = factory.NewCounter(prometheus.CounterOpts{
		Name: "submission_started_total",
		Help: "Total submissions started",
	})
	submissionCompletedTotal = factory.NewCounter(prometheus.CounterOpts{
		Name: "submission_completed_total",
		Help: "Total submissions completed",
	})
	submissionFailedTotal = factory.NewCounter(prometheus.CounterOpts{
		Name: "submission_failed_total",
		Help: "Total submissions failed",
	})

	bulkDeleteTotal = factory.NewCounter(prometheus.CounterOpts{
		Name: "bulk_delete_total",
		Help: "Total bulk deletions",
	})
	bulkDeleteFileFailuresTotal = factory.NewCounter(prometheus.CounterOpts{
		Name: "bulk_delete_file_failures_total",
		Help: "Files a bulk deletion failed to remove",
	})

	submissionDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Name:    "submission_duration_ms",
		Help:    "Submission duration in milliseconds",
		Buckets: []float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000},
	})
)

// IncSubmissionStarted increments the started counter.
func IncSubmissionStarted() {
	submissionStartedTotal.Inc()
}

// IncSubmissionCompleted increments the completed counter.
func IncSubmissionCompleted() {
	submissionCompletedTotal.Inc()
}

// IncSubmissionFailed increments the failed counter.
func IncSubmissionFailed() {
	submissionFailedTotal.Inc()
}

// IncBulkDelete counts one bulk deletion run.
func IncBulkDelete() {
	bulkDeleteTotal.Inc()
}

// AddBulkDeleteFileFailures counts files a bulk deletion could not remove.
func AddBulkDeleteFileFailures(n int) {
	if n > 0 {
		bulkDeleteFileFailuresTotal.Add(float64(n))
	}
}

// ObserveSubmissionDurationMs records a submission duration in milliseconds.
func ObserveSubmissionDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	submissionDuration.Observe(value)
}

// Handler exposes Registry in Prometheus text format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(Registry, promhttp.HandlerOpts{}))
}
