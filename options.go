package imglayout

import "log/slog"

// PlannerOption configures a Planner during creation.
//
// Example:
//
//	p := imglayout.NewPlanner(caps,
//		imglayout.WithCache(1024),
//		imglayout.WithWorkers(4),
//	)
type PlannerOption func(*plannerOptions)

// plannerOptions holds optional configuration for Planner creation.
type plannerOptions struct {
	cacheSize int
	workers   int
	logger    *slog.Logger
}

// defaultPlannerOptions returns the default planner options.
func defaultPlannerOptions() plannerOptions {
	return plannerOptions{
		cacheSize: 256,
		workers:   0, // GOMAXPROCS
	}
}

// WithCache sets the number of layouts the planner memoizes.
// A size of 0 disables the cache.
func WithCache(size int) PlannerOption {
	return func(o *plannerOptions) {
		o.cacheSize = max(size, 0)
	}
}

// WithWorkers sets the number of goroutines used by PlanAll.
// Zero or negative means GOMAXPROCS.
func WithWorkers(n int) PlannerOption {
	return func(o *plannerOptions) {
		o.workers = n
	}
}

// WithLogger sets the logger of the planner. The package logger is used
// when none is given.
func WithLogger(l *slog.Logger) PlannerOption {
	return func(o *plannerOptions) {
		o.logger = l
	}
}
