package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/taskmaster/internal/platform/logger"
)

// WorkerPool manages a pool of worker goroutines that process jobs
// from a queue. It handles graceful shutdown and worker lifecycle.
type WorkerPool struct {
	// queue provides read access to the jobs to be processed
	queue QueueReader

	// workerCount is the number of concurrent workers to start
	workerCount int

	// wg tracks active worker goroutines for clean shutdown
	wg sync.WaitGroup

	// ctx is cancelled to abandon in-flight work on a forced stop
	ctx    context.Context
	cancel context.CancelFunc

	logger *slog.Logger

	// errorHandler is called when a job execution fails.
	// If nil, errors are only logged.
	errorHandler func(job Job, err error)

	startOnce sync.Once
}

// WorkerPoolConfig holds configuration options for the worker pool
type WorkerPoolConfig struct {
	// WorkerCount determines how many concurrent worker goroutines to start.
	// If zero or negative, defaults to 1.
	WorkerCount int
}

// DefaultWorkerPoolConfig returns a WorkerPoolConfig with reasonable defaults
func DefaultWorkerPoolConfig() WorkerPoolConfig {
	return WorkerPoolConfig{
		WorkerCount: 2,
	}
}

// NewWorkerPool creates a new worker pool with the specified configuration
func NewWorkerPool(queue QueueReader, config WorkerPoolConfig, log *slog.Logger) *WorkerPool {
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("component", "worker_pool"))

	workerCount := config.WorkerCount
	if workerCount <= 0 {
		workerCount = 1
		log.Warn("invalid worker count specified, using default",
			slog.Int("specified_count", config.WorkerCount),
			slog.Int("default_count", 1))
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &WorkerPool{
		queue:       queue,
		workerCount: workerCount,
		ctx:         logger.WithLogger(ctx, log),
		cancel:      cancel,
		logger:      log,
	}
}

// SetErrorHandler sets a callback for job execution failures. It must be
// called before Start.
func (p *WorkerPool) SetErrorHandler(handler func(job Job, err error)) {
	p.errorHandler = handler
}

// Start launches the workers. Calling Start more than once has no effect.
func (p *WorkerPool) Start() {
	p.startOnce.Do(func() {
		p.logger.Info("starting worker pool", slog.Int("worker_count", p.workerCount))
		for i := 0; i < p.workerCount; i++ {
			p.wg.Add(1)
			go p.worker(i)
		}
	})
}

// Stop waits for the workers to drain the queue, which must already be
// closed. If ctx expires first, in-flight jobs are cancelled and Stop
// returns ctx.Err() once every worker has exited.
func (p *WorkerPool) Stop(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		p.logger.Info("worker pool stopped")
		return nil
	case <-ctx.Done():
		p.cancel()
		<-done
		p.logger.Warn("worker pool stopped before the queue was drained")
		return ctx.Err()
	}
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	log := p.logger.With(slog.Int("worker_id", id))
	log.Debug("starting worker")

	jobs := p.queue.Channel()
	for {
		select {
		case <-p.ctx.Done():
			log.Debug("stopping worker: context cancelled")
			return
		case job, ok := <-jobs:
			if !ok {
				log.Debug("stopping worker: queue closed")
				return
			}
			queueDepth.Set(float64(len(jobs)))
			p.process(log, job)
		}
	}
}

func (p *WorkerPool) process(log *slog.Logger, job Job) {
	log = log.With(
		slog.String("job_id", job.ID().String()),
		slog.String("job_type", job.Type()))

	start := time.Now()
	err := p.execute(job)
	jobDuration.WithLabelValues(job.Type()).Observe(time.Since(start).Seconds())

	if err != nil {
		jobsProcessed.WithLabelValues(job.Type(), "error").Inc()
		log.Error("job execution failed", slog.String("error", err.Error()))
		if p.errorHandler != nil {
			p.errorHandler(job, err)
		}
		return
	}

	jobsProcessed.WithLabelValues(job.Type(), "success").Inc()
	log.Debug("job completed", slog.Duration("duration", time.Since(start)))
}

// execute runs the job and converts a panic into an error.
func (p *WorkerPool) execute(job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return job.Execute(p.ctx)
}
