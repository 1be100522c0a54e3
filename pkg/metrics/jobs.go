package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Job results reported on background_job_runs_total.
const (
	JobResultSuccess = "success"
	JobResultFailure = "failure"
	JobResultSkipped = "skipped"
)

// JobMetrics records background maintenance runs.
type JobMetrics struct {
	duration *prometheus.HistogramVec
	runs     *prometheus.CounterVec
	removed  *prometheus.CounterVec
}

// NewJobMetrics registers the job metrics on the provided registerer.
func NewJobMetrics(reg prometheus.Registerer) *JobMetrics {
	if reg == nil {
		return &JobMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "background_job_duration_seconds",
		Help:    "Duration of background jobs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "background_job_runs_total",
		Help: "Background job runs by result.",
	}, []string{"job", "result"})
	removed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "background_job_rows_removed_total",
		Help: "Rows removed by background jobs.",
	}, []string{"job"})
	reg.MustRegister(duration, runs, removed)
	return &JobMetrics{duration: duration, runs: runs, removed: removed}
}

// ObserveRun records one run of the named job.
func (j *JobMetrics) ObserveRun(job, result string, duration time.Duration) {
	if j == nil || j.runs == nil {
		return
	}
	job = normalizeLabel(job)
	j.runs.WithLabelValues(job, normalizeLabel(result)).Inc()
	if result != JobResultSkipped {
		j.duration.WithLabelValues(job).Observe(duration.Seconds())
	}
}

// AddRemoved counts rows a job deleted.
func (j *JobMetrics) AddRemoved(job string, rows int64) {
	if j == nil || j.removed == nil || rows <= 0 {
		return
	}
	j.removed.WithLabelValues(normalizeLabel(job)).Add(float64(rows))
}
