package pipeline

import (
	"context"
	"sync"

	"github.com/techjusticelab/opinion-ingest/internal/metrics"
	"github.com/techjusticelab/opinion-ingest/internal/store"
)

// Job is one unit of dispatch: one PDF joined against its metadata row,
// run end-to-end inside the worker's own transaction (spec.md §4.1: "a
// worker failure affects only its one case"). It runs against the
// store.Session its worker owns, so the worker's dimension cache is
// amortized across every case that worker processes (spec.md §4.3/§5:
// "each worker owns a single database connection").
type Job interface {
	Run(ctx context.Context, sess store.Session) error
}

// WorkerPool runs W workers pulling from a bounded job queue, adapted from
// the teacher's pkg/processing/pipeline/worker.go WorkerPool/worker shape:
// the channel-of-jobs dispatch and per-worker goroutine loop are kept, the
// Job interface is narrowed to this engine's one-method case-processing
// contract and the priority/timeout bookkeeping the teacher's generic job
// queue carried is dropped since every job here already carries its own
// per-call LLM/embedding timeouts (spec.md §4.9).
type WorkerPool struct {
	workerCount int
	jobs        chan Job
	wg          sync.WaitGroup

	mu      sync.Mutex
	active  int
	running bool
}

// NewWorkerPool builds a pool with the given worker count and job-queue
// depth (spec.md §4.1's "bounded queue").
func NewWorkerPool(workerCount, queueSize int) *WorkerPool {
	if workerCount < 1 {
		workerCount = 1
	}
	if queueSize < 1 {
		queueSize = workerCount
	}
	return &WorkerPool{
		workerCount: workerCount,
		jobs:        make(chan Job, queueSize),
	}
}

// Start launches the worker goroutines, each claiming its own session from
// newSession exactly once (spec.md §5: one database connection per worker,
// held for the worker's lifetime). onDone is called exactly once per
// submitted job, after it runs (or is skipped because ctx was already
// cancelled), with the job's error (nil on success).
func (p *WorkerPool) Start(ctx context.Context, newSession func() store.Session, onDone func(Job, error)) {
	p.mu.Lock()
	p.running = true
	p.mu.Unlock()

	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(ctx, newSession(), onDone)
	}
}

func (p *WorkerPool) worker(ctx context.Context, sess store.Session, onDone func(Job, error)) {
	defer p.wg.Done()
	for {
		select {
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			p.mu.Lock()
			p.active++
			p.mu.Unlock()
			metrics.WorkersActive.Inc()

			err := job.Run(ctx, sess)

			p.mu.Lock()
			p.active--
			p.mu.Unlock()
			metrics.WorkersActive.Dec()

			if onDone != nil {
				onDone(job, err)
			}
		case <-ctx.Done():
			// Jobs still queued are skipped but reported; CloseAndWait
			// closes the channel and ends this loop.
			for job := range p.jobs {
				if onDone != nil {
					onDone(job, ctx.Err())
				}
			}
			return
		}
	}
}

// Submit enqueues a job. It blocks only as long as the queue is full;
// callers that want non-blocking cancellation-aware submission should
// select on ctx.Done() themselves around Submit.
func (p *WorkerPool) Submit(ctx context.Context, job Job) error {
	select {
	case p.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// CloseAndWait stops accepting new jobs and blocks until every in-flight
// job has returned (spec.md §4.1's "in-flight workers are allowed to
// complete or abort their transaction").
func (p *WorkerPool) CloseAndWait() {
	close(p.jobs)
	p.wg.Wait()
}

// ActiveWorkers reports how many workers are currently mid-job.
func (p *WorkerPool) ActiveWorkers() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}
