package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWorkerPool(t *testing.T) {
	q := NewQueue(10, setupTestLogger())

	pool := NewWorkerPool(q, WorkerPoolConfig{WorkerCount: 5}, setupTestLogger())
	assert.Equal(t, 5, pool.workerCount)
	assert.Nil(t, pool.errorHandler)

	pool = NewWorkerPool(q, WorkerPoolConfig{WorkerCount: 0}, setupTestLogger())
	assert.Equal(t, 1, pool.workerCount)

	pool = NewWorkerPool(q, WorkerPoolConfig{WorkerCount: -5}, nil)
	assert.Equal(t, 1, pool.workerCount)

	assert.Equal(t, 2, DefaultWorkerPoolConfig().WorkerCount)
}

func TestWorkerPool_ProcessesAndDrains(t *testing.T) {
	q := NewQueue(50, setupTestLogger())
	pool := NewWorkerPool(q, WorkerPoolConfig{WorkerCount: 3}, setupTestLogger())
	pool.Start()
	pool.Start()

	var count atomic.Int32
	for i := 0; i < 20; i++ {
		require.NoError(t, q.Enqueue(newFuncJob(func(context.Context) error {
			count.Add(1)
			return nil
		})))
	}

	q.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, pool.Stop(ctx))

	assert.Equal(t, int32(20), count.Load())
}

func TestWorkerPool_ErrorHandlerAndPanics(t *testing.T) {
	q := NewQueue(10, setupTestLogger())
	pool := NewWorkerPool(q, WorkerPoolConfig{WorkerCount: 1}, setupTestLogger())

	var (
		mu     sync.Mutex
		failed []error
	)
	pool.SetErrorHandler(func(job Job, err error) {
		mu.Lock()
		defer mu.Unlock()
		failed = append(failed, err)
	})

	errBoom := errors.New("boom")
	before := testutil.ToFloat64(jobsProcessed.WithLabelValues("test", "error"))

	pool.Start()
	require.NoError(t, q.Enqueue(newFuncJob(func(context.Context) error { return errBoom })))
	require.NoError(t, q.Enqueue(newFuncJob(func(context.Context) error { panic("kaboom") })))
	q.Close()
	require.NoError(t, pool.Stop(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, failed, 2)
	assert.ErrorIs(t, failed[0], errBoom)
	assert.Contains(t, failed[1].Error(), "kaboom")
	assert.Equal(t, before+2, testutil.ToFloat64(jobsProcessed.WithLabelValues("test", "error")))
}

func TestWorkerPool_StopTimeoutCancelsJobs(t *testing.T) {
	q := NewQueue(1, setupTestLogger())
	pool := NewWorkerPool(q, WorkerPoolConfig{WorkerCount: 1}, setupTestLogger())
	pool.Start()

	started := make(chan struct{})
	require.NoError(t, q.Enqueue(newFuncJob(func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})))
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := pool.Stop(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
