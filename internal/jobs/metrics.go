package jobs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// jobsProcessed counts executed jobs.
	// Labels: type, result (success, error)
	jobsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taskmaster",
		Subsystem: "jobs",
		Name:      "processed_total",
		Help:      "Background jobs executed by type and result",
	}, []string{"type", "result"})

	// jobsRejected counts jobs refused because the queue was full.
	jobsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taskmaster",
		Subsystem: "jobs",
		Name:      "rejected_total",
		Help:      "Background jobs rejected because the queue was full",
	}, []string{"type"})

	// jobDuration measures job execution time.
	jobDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "taskmaster",
		Subsystem: "jobs",
		Name:      "duration_seconds",
		Help:      "Background job execution time in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"type"})

	// queueDepth is the number of jobs waiting after the last enqueue or dequeue.
	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "taskmaster",
		Subsystem: "jobs",
		Name:      "queue_depth",
		Help:      "Jobs waiting in the queue",
	})
)
