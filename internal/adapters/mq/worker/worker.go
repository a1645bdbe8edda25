// Package worker runs background rescoring of queued applications.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/okian/talentscore/internal/adapters/mq/queue"
	"github.com/okian/talentscore/pkg/logger"
	"github.com/okian/talentscore/pkg/metrics"
)

const poolShutdownTimeout = 30 * time.Second

// Scorer computes and persists scores for one application.
type Scorer interface {
	ScoreApplication(ctx context.Context, applicationID string, force bool) error
}

// Source is where workers receive jobs.
type Source interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// Releaser is told when an application's job has finished.
type Releaser interface {
	Release(ctx context.Context, id string)
}

// InMemoryWorker scores jobs read from a Source until stopped.
type InMemoryWorker struct {
	source   Source
	scorer   Scorer
	releaser Releaser
	name     string
	timeout  time.Duration

	shutdown chan struct{}
	once     sync.Once
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a worker.
func NewInMemoryWorker(source Source, scorer Scorer, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		source:   source,
		scorer:   scorer,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.Named(w.name)
	return w
}

// Run processes jobs until ctx is canceled, Shutdown is called or the source
// closes.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.source.Dequeue(ctx)
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
			if err := w.process(ctx, job); err != nil {
				w.logger.Error(ctx, "scoring job failed",
					logger.String("application_id", job.ApplicationID),
					logger.Error(err))
			}
		}
	}
}

// Shutdown stops the worker after its current job.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.once.Do(func() { close(w.shutdown) })
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Done is closed when Run returns.
func (w *InMemoryWorker) Done() <-chan struct{} {
	return w.done
}

func (w *InMemoryWorker) process(ctx context.Context, job queue.Job) error {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
		if w.releaser != nil {
			w.releaser.Release(ctx, job.ApplicationID)
		}
	}()

	jctx := ctx
	if w.timeout > 0 {
		var cancel context.CancelFunc
		jctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	if err := w.scorer.ScoreApplication(jctx, job.ApplicationID, job.Force); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "scoring_error")
		return fmt.Errorf("score application %s: %w", job.ApplicationID, err)
	}
	w.logger.Debug(ctx, "scored application",
		logger.String("application_id", job.ApplicationID),
		logger.Bool("force", job.Force),
		logger.Float64("queued_ms", float64(start.Sub(job.EnqueuedAt).Milliseconds())))
	return nil
}

// Pool runs a fixed set of workers over one Source.
type Pool struct {
	workers []*InMemoryWorker
	source  Source
	logger  logger.Logger
}

// NewPool creates count workers sharing source. A count below one uses the
// number of CPUs.
func NewPool(count int, source Source, scorer Scorer, opts ...Option) *Pool {
	if count < 1 {
		count = runtime.NumCPU()
	}
	probe := &InMemoryWorker{logger: logger.NewNop()}
	for _, opt := range opts {
		opt(probe)
	}
	p := &Pool{
		workers: make([]*InMemoryWorker, count),
		source:  source,
		logger:  probe.logger.Named("worker-pool"),
	}
	for i := range count {
		wopts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		p.workers[i] = NewInMemoryWorker(source, scorer, wopts...)
	}
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Start launches every worker.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	metrics.UpdateWorkerCount(len(p.workers))
}

// Shutdown closes the source if it can be closed, then waits for workers to
// finish bounded by ctx and poolShutdownTimeout.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.source.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	sctx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var firstErr error
	for i, w := range p.workers {
		if err := w.Shutdown(sctx); err != nil {
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	metrics.UpdateWorkerCount(0)
	return firstErr
}
