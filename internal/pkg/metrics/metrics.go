package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// SnapshotRefreshes counts published holdings snapshots.
	SnapshotRefreshes = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sweeper_snapshot_refreshes_total",
		Help: "Number of holdings snapshot refreshes performed.",
	})

	// PipelineErrors counts non-fatal pipeline failures by stage.
	PipelineErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sweeper_pipeline_errors_total",
		Help: "Number of non-fatal pipeline errors, labeled by stage.",
	}, []string{"stage"})

	// ConversionBatches counts orchestration runs.
	ConversionBatches = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sweeper_conversion_batches_total",
		Help: "Number of conversion batches executed.",
	})

	// ConversionJobs counts terminal job outcomes.
	ConversionJobs = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sweeper_conversion_jobs_total",
		Help: "Number of conversion jobs by terminal outcome.",
	}, []string{"outcome"})
)

// MustRegisterMetrics registers all sweeper collectors with the default
// registry. Panics on duplicate registration.
func MustRegisterMetrics() {
	prometheus.MustRegister(
		SnapshotRefreshes,
		PipelineErrors,
		ConversionBatches,
		ConversionJobs,
	)
}
