package jobs

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Common errors returned by the Queue
var (
	ErrQueueClosed = errors.New("job queue is closed")
	ErrQueueFull   = errors.New("job queue is full")
)

// Queue is a bounded, non-blocking job queue that satisfies both
// QueueReader and QueueWriter.
type Queue struct {
	jobs   chan Job
	logger *slog.Logger

	mu     sync.RWMutex
	closed bool
}

var (
	_ QueueReader = (*Queue)(nil)
	_ QueueWriter = (*Queue)(nil)
)

// NewQueue creates a new queue with the specified buffer size.
func NewQueue(size int, logger *slog.Logger) *Queue {
	if size <= 0 {
		size = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue{
		jobs:   make(chan Job, size),
		logger: logger.With(slog.String("component", "job_queue")),
	}
}

// Enqueue adds a job to the queue without blocking.
func (q *Queue) Enqueue(job Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.jobs <- job:
		queueDepth.Set(float64(len(q.jobs)))
		q.logger.Debug("job enqueued",
			slog.String("job_id", job.ID().String()),
			slog.String("job_type", job.Type()),
			slog.Int("queue_len", len(q.jobs)),
			slog.Int("queue_cap", cap(q.jobs)))
		return nil
	default:
		jobsRejected.WithLabelValues(job.Type()).Inc()
		return fmt.Errorf("%w: queue capacity %d reached", ErrQueueFull, cap(q.jobs))
	}
}

// Close prevents further submission. Jobs already queued are still delivered
// to readers. Close is idempotent.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.closed {
		q.closed = true
		close(q.jobs)
		q.logger.Info("job queue closed")
	}
}

// Channel returns a read-only channel for consuming jobs.
func (q *Queue) Channel() <-chan Job {
	return q.jobs
}
