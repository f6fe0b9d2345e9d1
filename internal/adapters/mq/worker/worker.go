// Package worker drains the notification queue: each job is deduplicated,
// rendered, stored and optionally published.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/okian/skillmatch/internal/domain/model"
	"github.com/okian/skillmatch/internal/domain/notification"
	"github.com/okian/skillmatch/pkg/logger"
	"github.com/okian/skillmatch/pkg/metrics"
)

const poolShutdownTimeout = 30 * time.Second

// Failure stages reported to metrics.
const (
	StageCreate  = "create"
	StagePublish = "publish"
)

// Job is what workers read off the queue.
type Job = model.NotificationJob

// Creator renders and stores a notification.
type Creator interface {
	CreateFromTemplate(ctx context.Context, template, recipient string, vars map[string]string, opts notification.Options) (model.Notification, error)
}

// Publisher pushes a stored notification to connected clients.
type Publisher interface {
	PublishNotification(ctx context.Context, n model.Notification) error
}

// Deduper suppresses repeated notices.
type Deduper interface {
	SeenAndRecord(ctx context.Context, key string) bool
	Unrecord(ctx context.Context, key string)
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Job
}

// Worker processes notification jobs.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the queue closes.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue     Queue
	creator   Creator
	deduper   Deduper
	publisher Publisher
	name      string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, creator Creator, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    queue,
		creator:  creator,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			if err := w.Process(ctx, job); err != nil {
				w.logger.Error(ctx, "notification job failed",
					logger.String("job_id", job.JobID),
					logger.String("template", job.Template),
					logger.Error(err),
				)
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Process handles a single job. A job whose dedupe key was already seen is
// skipped; a job that fails to store releases its key so a later match can
// retry it. Publish failures are logged but keep the stored notification.
func (w *InMemoryWorker) Process(ctx context.Context, job Job) error { //nolint:gocritic // hugeParam: Job is passed by value for channel semantics
	start := time.Now()

	if w.deduper != nil && job.DedupeKey != "" && w.deduper.SeenAndRecord(ctx, job.DedupeKey) {
		metrics.RecordNotificationDropped("duplicate")
		w.logger.Debug(ctx, "duplicate notification skipped", logger.String("key", job.DedupeKey))
		return nil
	}

	n, err := w.creator.CreateFromTemplate(ctx, job.Template, job.Recipient, job.Variables, notification.Options{
		Data:      job.Data,
		ActionURL: job.ActionURL,
		Priority:  job.Priority,
	})
	if err != nil {
		if w.deduper != nil && job.DedupeKey != "" {
			w.deduper.Unrecord(ctx, job.DedupeKey)
		}
		metrics.RecordNotificationFailed(StageCreate)
		return fmt.Errorf("job %s: %w", job.JobID, err)
	}

	if w.publisher != nil {
		if err := w.publisher.PublishNotification(ctx, n); err != nil {
			metrics.RecordNotificationFailed(StagePublish)
			w.logger.Warn(ctx, "publish failed",
				logger.String("notification_id", n.ID),
				logger.Error(err),
			)
		}
	}

	metrics.RecordNotificationSent(float64(time.Since(start).Milliseconds()))
	return nil
}

// Pool manages multiple workers.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	logger  logger.Logger
}

// NewPool creates workerCount workers sharing queue and creator. opts are
// applied to every worker. A count below one defaults to runtime.NumCPU().
func NewPool(workerCount int, queue Queue, creator Creator, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   queue,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range workerCount {
		wopts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		pool.workers[i] = NewInMemoryWorker(queue, creator, wopts...)
	}

	metrics.UpdateWorkerCount(workerCount)
	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown closes the queue and waits for workers to drain it.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			return fmt.Errorf("worker pool shutdown: %w", shutdownCtx.Err())
		}
	}
	metrics.UpdateWorkerCount(0)
	return nil
}
