// Package parallel runs independent planning jobs on a fixed set of
// goroutines.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// WorkerPool is a pool of goroutines draining a shared job queue.
//
// Jobs submitted together through ExecuteAll are spread over all workers;
// a worker that finishes early simply takes the next job, so slow jobs do
// not hold up the rest of a batch.
//
// Thread safety: WorkerPool is safe for concurrent use.
type WorkerPool struct {
	// workers is the number of worker goroutines.
	workers int

	// jobs is the shared queue.
	jobs chan func()

	// mu guards closing jobs against concurrent sends.
	mu sync.RWMutex

	// wg waits for all workers to finish.
	wg sync.WaitGroup

	// running indicates whether the pool is accepting work.
	running atomic.Bool

	// executed counts finished jobs.
	executed atomic.Uint64
}

// NewWorkerPool creates a new worker pool with the specified number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
// The pool starts immediately and workers begin waiting for work.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	p := &WorkerPool{
		workers: workers,
		jobs:    make(chan func(), workers*4),
	}
	p.running.Store(true)

	p.wg.Add(workers)
	for range workers {
		go p.worker()
	}

	return p
}

// worker runs jobs until the queue is closed and drained.
func (p *WorkerPool) worker() {
	defer p.wg.Done()

	for job := range p.jobs {
		job()
		p.executed.Add(1)
	}
}

// ExecuteAll runs every job on the pool and waits for all of them.
// If the pool is closed, the jobs are not run and ExecuteAll returns false.
func (p *WorkerPool) ExecuteAll(work []func()) bool {
	if len(work) == 0 {
		return p.running.Load()
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.running.Load() {
		return false
	}

	var batch sync.WaitGroup
	batch.Add(len(work))
	for _, fn := range work {
		p.jobs <- func() {
			defer batch.Done()
			if fn != nil {
				fn()
			}
		}
	}
	batch.Wait()

	return true
}

// Close stops accepting work, lets queued jobs finish, and stops all
// workers. Close waits for in-flight ExecuteAll calls.
// Close is safe to call multiple times.
func (p *WorkerPool) Close() {
	p.mu.Lock()
	if !p.running.CompareAndSwap(true, false) {
		p.mu.Unlock()
		return
	}
	close(p.jobs)
	p.mu.Unlock()

	p.wg.Wait()
}

// Workers returns the number of workers in the pool.
func (p *WorkerPool) Workers() int {
	return p.workers
}

// IsRunning returns true if the pool is still accepting work.
func (p *WorkerPool) IsRunning() bool {
	return p.running.Load()
}

// Executed returns the number of jobs run so far.
func (p *WorkerPool) Executed() uint64 {
	return p.executed.Load()
}
