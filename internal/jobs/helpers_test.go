package jobs

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type funcJob struct {
	id uuid.UUID
	fn func(ctx context.Context) error
}

func newFuncJob(fn func(ctx context.Context) error) *funcJob {
	return &funcJob{id: uuid.New(), fn: fn}
}

func (j *funcJob) ID() uuid.UUID                     { return j.id }
func (j *funcJob) Type() string                      { return "test" }
func (j *funcJob) Execute(ctx context.Context) error { return j.fn(ctx) }

type recordingDeleter struct {
	mu      sync.Mutex
	deleted []string
	failOn  map[string]error
}

func (d *recordingDeleter) Delete(_ context.Context, name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err, ok := d.failOn[name]; ok {
		return err
	}
	d.deleted = append(d.deleted, name)
	return nil
}
