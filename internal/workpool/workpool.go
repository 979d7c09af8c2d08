// Package workpool provides a bounded job queue serviced by N worker
// goroutines, plus a health-check supervisor that watches for stalled
// workers. It backs web.JobRunner (§4.4.4 "N threads") and the
// nucleator's pick-handling pipeline, generalized from the teacher's
// SerialMux subscriber/channel pattern and UDPListener's context-driven
// poll loop into a reusable worker pool.
package workpool

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/usgs/neic-glass3-sub001/internal/glasserr"
)

// Pool runs submitted jobs on a fixed number of worker goroutines, each
// draining a single shared, bounded job channel.
type Pool struct {
	jobs    chan func()
	workers int

	wg      sync.WaitGroup
	started atomic.Bool

	active atomic.Int64 // jobs currently executing, for the health check
}

// New returns a Pool with the given worker count and queue capacity.
// workers must be >= 1.
func New(workers, queueCapacity int) (*Pool, error) {
	if workers < 1 {
		return nil, &glasserr.ConfigError{Field: "workpool.workers", Err: fmt.Errorf("must be >= 1, got %d", workers)}
	}
	if queueCapacity < 0 {
		queueCapacity = 0
	}
	return &Pool{
		jobs:    make(chan func(), queueCapacity),
		workers: workers,
	}, nil
}

// Start launches the worker goroutines. Start is idempotent; subsequent
// calls are no-ops.
func (p *Pool) Start(ctx context.Context) {
	if !p.started.CompareAndSwap(false, true) {
		return
	}
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.runWorker(ctx)
	}
}

func (p *Pool) runWorker(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			p.active.Add(1)
			job()
			p.active.Add(-1)
		}
	}
}

// Submit enqueues job, blocking if the queue is full. Submit implements
// web.JobRunner.
func (p *Pool) Submit(job func()) {
	p.jobs <- job
}

// TrySubmit enqueues job without blocking, returning a *glasserr.TransientIO
// if the queue is currently full.
func (p *Pool) TrySubmit(job func()) error {
	select {
	case p.jobs <- job:
		return nil
	default:
		return &glasserr.TransientIO{Op: "workpool.Submit"}
	}
}

// ActiveJobs reports how many jobs are currently executing across all
// workers (used by the health-check supervisor to detect a stall).
func (p *Pool) ActiveJobs() int64 {
	return p.active.Load()
}

// QueueDepth reports how many jobs are currently queued but not yet
// picked up by a worker.
func (p *Pool) QueueDepth() int {
	return len(p.jobs)
}

// Close stops accepting new jobs and waits for in-flight jobs and
// workers to finish. Close must be called at most once.
func (p *Pool) Close() {
	close(p.jobs)
	p.wg.Wait()
}
