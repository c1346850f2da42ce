package jobs

import (
	"context"

	"github.com/google/uuid"
)

// Job types
const (
	// TypeBlobCleanup removes the stored files of a deleted task.
	TypeBlobCleanup = "blob_cleanup"
)

// Job represents a unit of background work to be processed.
type Job interface {
	// ID returns the job's unique identifier
	ID() uuid.UUID

	// Type returns the job type identifier
	Type() string

	// Execute runs the job logic
	Execute(ctx context.Context) error
}

// QueueReader provides read-only access to the job channel.
type QueueReader interface {
	// Channel returns a read-only channel for consuming jobs
	Channel() <-chan Job
}

// QueueWriter provides write access to the job queue.
type QueueWriter interface {
	// Enqueue adds a job to the queue for processing.
	// Returns an error if the queue is full or closed.
	Enqueue(job Job) error
}
