// Package metrics exposes prometheus instruments for the background workers.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	jobRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "elcore_worker_runs_total",
		Help: "Worker job executions.",
	}, []string{"job"})

	jobErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "elcore_worker_errors_total",
		Help: "Worker job failures.",
	}, []string{"job"})

	jobDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "elcore_worker_duration_seconds",
		Help:    "Worker job duration.",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})

	messagesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "elcore_messages_processed_total",
		Help: "Inbox/outbox messages handled, by direction and outcome.",
	}, []string{"direction", "outcome"})
)

func IncJobRun(job string)   { jobRuns.WithLabelValues(job).Inc() }
func IncJobError(job string) { jobErrors.WithLabelValues(job).Inc() }

func ObserveJobDuration(job string, d time.Duration) {
	jobDuration.WithLabelValues(job).Observe(d.Seconds())
}

func IncMessage(direction, outcome string) {
	messagesProcessed.WithLabelValues(direction, outcome).Inc()
}
