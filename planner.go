package imglayout

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gogpu/imglayout/internal/cache"
	"github.com/gogpu/imglayout/internal/parallel"
)

// Planner computes layouts for one hardware generation, memoizing results
// and planning batches in parallel.
//
// Planner is safe for concurrent use. Close releases its workers.
type Planner struct {
	caps   Caps
	cache  *cache.Cache[Request, *Layout]
	logger *slog.Logger

	poolOnce sync.Once
	pool     atomic.Pointer[parallel.WorkerPool]
	workers  int
}

// Result is the outcome of planning one request of a batch.
type Result struct {
	Layout *Layout
	Err    error
}

// PlannerStats reports the cache and worker activity of a planner.
type PlannerStats struct {
	// Cached layouts out of Capacity; Evicted counts the ones dropped.
	Cached   int
	Capacity int
	Hits     uint64
	Misses   uint64
	Evicted  uint64

	// Workers is zero until the first PlanAll starts the pool. Batched
	// counts the requests the workers finished.
	Workers int
	Batched uint64
}

// NewPlanner creates a planner for the hardware described by caps.
func NewPlanner(caps Caps, opts ...PlannerOption) *Planner {
	o := defaultPlannerOptions()
	for _, opt := range opts {
		opt(&o)
	}

	p := &Planner{
		caps:    caps,
		logger:  o.logger,
		workers: o.workers,
	}
	if o.cacheSize > 0 {
		p.cache = cache.New[Request, *Layout](o.cacheSize)
	}
	return p
}

// Caps returns the capability table the planner was created with.
func (p *Planner) Caps() Caps {
	return p.caps
}

func (p *Planner) log() *slog.Logger {
	if p.logger != nil {
		return p.logger
	}
	return Logger()
}

// Plan computes the layout of req. The returned layout is owned by the
// caller.
func (p *Planner) Plan(req Request) (*Layout, error) {
	if p.cache != nil {
		if l, ok := p.cache.Get(req); ok {
			return l.Clone(), nil
		}
	}

	l, err := Compute(p.caps, req)
	if err != nil {
		p.log().Debug("layout rejected",
			slog.String("gen", p.caps.Gen.String()),
			slog.String("err", err.Error()))
		return nil, err
	}

	if p.cache != nil {
		p.cache.Set(req, l.Clone())
	}
	return l, nil
}

// PlanAll plans reqs on the worker pool and returns one result per request,
// in order. Requests not yet started when ctx is done are reported with the
// context error, which PlanAll also returns.
func (p *Planner) PlanAll(ctx context.Context, reqs []Request) ([]Result, error) {
	if len(reqs) == 0 {
		return []Result{}, ctx.Err()
	}

	p.poolOnce.Do(func() {
		p.pool.Store(parallel.NewWorkerPool(p.workers))
	})
	pool := p.pool.Load()
	if pool == nil || !pool.IsRunning() {
		return nil, ErrPlannerClosed
	}

	results := make([]Result, len(reqs))
	work := make([]func(), len(reqs))
	for i := range reqs {
		work[i] = func() {
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return
			}
			results[i].Layout, results[i].Err = p.Plan(reqs[i])
		}
	}
	pool.ExecuteAll(work)

	return results, ctx.Err()
}

// Stats returns the cache and worker statistics of the planner.
func (p *Planner) Stats() PlannerStats {
	var s PlannerStats
	if p.cache != nil {
		cs := p.cache.Stats()
		s.Cached, s.Capacity = cs.Len, cs.Capacity
		s.Hits, s.Misses, s.Evicted = cs.Hits, cs.Misses, cs.Evictions
	}
	if pool := p.pool.Load(); pool != nil {
		s.Workers = pool.Workers()
		s.Batched = pool.Executed()
	}
	return s
}

// Close stops the worker pool. Plan remains usable after Close; PlanAll
// returns ErrPlannerClosed.
func (p *Planner) Close() {
	p.poolOnce.Do(func() {})
	if pool := p.pool.Load(); pool != nil {
		pool.Close()
	}
}
