// internal/bot/worker.go
package bot

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Job is one unit of work, usually a dispatched interaction.
type Job func(ctx context.Context)

// WorkerPool runs jobs on a fixed number of goroutines so the gateway read
// loop is never blocked by a slow handler.
//
// Jobs get the pool's own context, which is cancelled only after Close and
// Wait: a shutdown signal must not abort a trade that is already submitted.
type WorkerPool struct {
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	jobs   chan Job
	logger *zap.Logger

	mu     sync.RWMutex
	closed bool
}

// NewWorkerPool creates a pool with a queue of size queue.
func NewWorkerPool(queue int, logger *zap.Logger) *WorkerPool {
	if queue <= 0 {
		queue = 64
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &WorkerPool{
		ctx:    ctx,
		cancel: cancel,
		jobs:   make(chan Job, queue),
		logger: logger.Named("workers"),
	}
}

func (wp *WorkerPool) Start(n int) {
	if n <= 0 {
		n = 1
	}
	for i := 0; i < n; i++ {
		wp.wg.Add(1)
		go wp.worker(i + 1)
	}
}

// Submit queues job. It returns false when the queue is full or the pool is
// closed.
func (wp *WorkerPool) Submit(job Job) bool {
	wp.mu.RLock()
	defer wp.mu.RUnlock()
	if wp.closed {
		return false
	}
	select {
	case wp.jobs <- job:
		return true
	default:
		wp.logger.Warn("Worker queue full, job dropped")
		return false
	}
}

// Close stops accepting jobs. Queued jobs still run.
func (wp *WorkerPool) Close() error {
	wp.mu.Lock()
	defer wp.mu.Unlock()
	if !wp.closed {
		wp.closed = true
		close(wp.jobs)
	}
	return nil
}

// Wait blocks until every queued job has finished, then cancels the jobs'
// context.
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
	wp.cancel()
}

func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()
	logger := wp.logger.With(zap.Int("worker_id", id))
	logger.Debug("Worker started")

	for job := range wp.jobs {
		wp.run(job, logger)
	}
	logger.Debug("Job channel closed")
}

func (wp *WorkerPool) run(job Job, logger *zap.Logger) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("Job panicked", zap.Any("panic", rec))
		}
	}()
	job(wp.ctx)
}
