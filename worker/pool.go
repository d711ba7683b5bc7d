package worker

import (
	"context"
	"errors"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	lm "github.com/gofhir/loinc-mapper"
)

// ErrNoResolver is returned on jobs processed by a pool without a
// resolver.
var ErrNoResolver = errors.New("worker: no resolver configured")

// TermResolver resolves one raw search term. This is a minimal
// interface to avoid a dependency on the engine package.
type TermResolver interface {
	ResolveTerm(ctx context.Context, term string) (*lm.TermResult, error)
}

// Pool manages a pool of worker goroutines for parallel term
// resolution.
type Pool struct {
	workers    int
	jobsChan   chan Job
	resultChan chan *JobResult
	resolver   TermResolver
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	closed     atomic.Bool

	// Metrics
	jobsSubmitted atomic.Uint64
	jobsCompleted atomic.Uint64
	totalDuration atomic.Uint64
}

// NewPool creates a worker pool with the specified number of workers.
// If workers <= 0, it defaults to runtime.NumCPU(). ctx bounds every
// job the pool runs.
func NewPool(ctx context.Context, resolver TermResolver, workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	ctx, cancel := context.WithCancel(ctx)

	p := &Pool{
		workers:    workers,
		jobsChan:   make(chan Job, workers*2),
		resultChan: make(chan *JobResult, workers*2),
		resolver:   resolver,
		ctx:        ctx,
		cancel:     cancel,
	}

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}

	return p
}

// Submit submits a job to the pool. It blocks if the job queue is
// full, and reports false when the pool is closed or cancelled.
func (p *Pool) Submit(job Job) bool {
	if p.closed.Load() {
		return false
	}

	select {
	case <-p.ctx.Done():
		return false
	case p.jobsChan <- job:
		p.jobsSubmitted.Add(1)
		return true
	}
}

// Results returns the channel for receiving job results.
func (p *Pool) Results() <-chan *JobResult {
	return p.resultChan
}

// CloseAndWait closes the pool, waits for in-flight jobs, and returns
// all results sorted by job index.
func (p *Pool) CloseAndWait() *BatchResult {
	if p.closed.Swap(true) {
		return &BatchResult{}
	}

	close(p.jobsChan)

	results := make([]*JobResult, 0, p.jobsSubmitted.Load())
	done := make(chan struct{})

	go func() {
		p.wg.Wait()
		close(p.resultChan)
		close(done)
	}()

	for result := range p.resultChan {
		results = append(results, result)
	}
	<-done
	p.cancel()

	sort.Slice(results, func(i, j int) bool { return results[i].Index < results[j].Index })

	return &BatchResult{
		Results:       results,
		TotalJobs:     int(p.jobsSubmitted.Load()),
		CompletedJobs: int(p.jobsCompleted.Load()),
		TotalDuration: int64(p.totalDuration.Load()),
	}
}

// Cancel aborts outstanding work without waiting for results.
func (p *Pool) Cancel() {
	p.cancel()
}

// PoolStats contains pool statistics.
type PoolStats struct {
	Workers       int
	JobsSubmitted uint64
	JobsCompleted uint64
	AvgDuration   time.Duration
}

// Stats returns current pool statistics.
func (p *Pool) Stats() PoolStats {
	return PoolStats{
		Workers:       p.workers,
		JobsSubmitted: p.jobsSubmitted.Load(),
		JobsCompleted: p.jobsCompleted.Load(),
		AvgDuration:   p.averageDuration(),
	}
}

func (p *Pool) averageDuration() time.Duration {
	completed := p.jobsCompleted.Load()
	if completed == 0 {
		return 0
	}
	return time.Duration(p.totalDuration.Load() / completed)
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for job := range p.jobsChan {
		select {
		case <-p.ctx.Done():
			return
		default:
		}

		result := p.processJob(job)
		p.jobsCompleted.Add(1)
		p.totalDuration.Add(uint64(result.Duration))

		select {
		case <-p.ctx.Done():
			return
		case p.resultChan <- result:
		}
	}
}

func (p *Pool) processJob(job Job) *JobResult {
	start := time.Now()

	result := &JobResult{
		Index: job.Index,
		Term:  job.Term,
	}

	if p.resolver == nil {
		result.Error = ErrNoResolver
		result.Duration = time.Since(start).Nanoseconds()
		return result
	}

	res, err := p.resolver.ResolveTerm(p.ctx, job.Term)
	result.Result = res
	result.Error = err
	result.Duration = time.Since(start).Nanoseconds()
	return result
}
