package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/mindcheck/internal/domain/assessment"
	"github.com/okian/mindcheck/internal/domain/evaluation"
	"github.com/okian/mindcheck/pkg/logger"
	"github.com/okian/mindcheck/pkg/metrics"
)

const poolShutdownTimeout = 30 * time.Second

// Evaluator evaluates one snapshot.
type Evaluator interface {
	Evaluate(ctx context.Context, s assessment.Snapshot) (evaluation.Result, error)
}

// Outcome is the result of one batch item.
type Outcome struct {
	Result evaluation.Result
	Err    error
}

// job is one batch item. Each job owns its output slot.
type job struct {
	ctx      context.Context
	snapshot assessment.Snapshot
	out      *Outcome
	wg       *sync.WaitGroup
}

// Worker evaluates jobs read from a channel.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown stops the worker after its current job.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	jobs      <-chan job
	evaluator Evaluator
	name      string

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

func newInMemoryWorker(jobs <-chan job, evaluator Evaluator, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		jobs:      jobs,
		evaluator: evaluator,
		name:      "worker",
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
		logger:    logger.Get().Named("worker"),
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

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case j := <-w.jobs:
			w.process(j)
		}
	}
}

// Shutdown stops the worker and waits for it to exit.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) process(j job) {
	defer j.wg.Done()

	if err := j.ctx.Err(); err != nil {
		j.out.Err = err
		return
	}

	metrics.IncWorkerActive()
	defer metrics.DecWorkerActive()

	j.out.Result, j.out.Err = w.evaluator.Evaluate(j.ctx, j.snapshot)
}

// Pool manages a fixed set of workers sharing one job channel.
type Pool struct {
	workers   []*InMemoryWorker
	jobs      chan job
	evaluator Evaluator

	started  atomic.Bool
	shutdown chan struct{}
	stopOnce sync.Once

	logger logger.Logger
}

// NewPool creates a pool of workerCount workers. A non-positive count
// defaults to runtime.NumCPU().
func NewPool(workerCount int, evaluator Evaluator, opts ...PoolOption) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	p := &Pool{
		workers:   make([]*InMemoryWorker, workerCount),
		jobs:      make(chan job),
		evaluator: evaluator,
		shutdown:  make(chan struct{}),
		logger:    logger.Get().Named("worker-pool"),
	}

	for _, opt := range opts {
		opt(p)
	}

	for i := 0; i < workerCount; i++ {
		p.workers[i] = newInMemoryWorker(
			p.jobs,
			evaluator,
			WithLogger(p.logger),
			WithName("worker-"+strconv.Itoa(i)),
		)
	}

	metrics.UpdateWorkerCount(workerCount)

	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Start starts all workers in the pool. Calling it twice is a no-op.
// Workers keep ctx's values but not its cancellation; only Stop or
// Shutdown ends them.
func (p *Pool) Start(ctx context.Context) {
	if !p.started.CompareAndSwap(false, true) {
		return
	}
	runCtx := context.WithoutCancel(ctx)
	for _, w := range p.workers {
		go w.Run(runCtx)
	}
	p.logger.Info(ctx, "worker pool started", logger.Int("workers", len(p.workers)))
}

// Evaluate runs every snapshot on the pool and returns one outcome per
// snapshot, in input order. Items not yet evaluated when ctx is canceled
// carry ctx.Err().
func (p *Pool) Evaluate(ctx context.Context, snapshots []assessment.Snapshot) ([]Outcome, error) {
	if !p.started.Load() {
		return nil, ErrPoolNotStarted
	}

	out := make([]Outcome, len(snapshots))
	var wg sync.WaitGroup

	for i := range snapshots {
		wg.Add(1)
		j := job{ctx: ctx, snapshot: snapshots[i], out: &out[i], wg: &wg}
		select {
		case p.jobs <- j:
		case <-ctx.Done():
			wg.Done()
			for k := i; k < len(snapshots); k++ {
				out[k].Err = ctx.Err()
			}
			wg.Wait()
			return out, nil
		case <-p.shutdown:
			return nil, ErrPoolStopped
		}
	}

	finished := make(chan struct{})
	go func() {
		wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		return out, nil
	case <-p.shutdown:
		return nil, ErrPoolStopped
	}
}

// Stop stops all workers and waits for them to exit.
func (p *Pool) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), poolShutdownTimeout)
	defer cancel()
	_ = p.Shutdown(ctx)
}

// Shutdown stops all workers, waiting until they exit or ctx expires.
// Pending Evaluate calls return ErrPoolStopped.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.stopOnce.Do(func() { close(p.shutdown) })

	if !p.started.Load() {
		return nil
	}

	var firstErr error
	for i, w := range p.workers {
		if err := w.Shutdown(ctx); err != nil {
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
