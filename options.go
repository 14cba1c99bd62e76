package weave

// Option configures an Engine during creation.
// Use functional options to customize Engine behavior.
//
// Example:
//
//	// Default sequential engine
//	eng := weave.NewEngine()
//
//	// Parallel engine with progress reporting
//	eng := weave.NewEngine(weave.WithWorkers(4), weave.WithProgress(report))
type Option func(*engineOptions)

// engineOptions holds optional configuration for Engine creation.
type engineOptions struct {
	workers  int
	progress func(Progress)
}

// defaultEngineOptions returns the default engine options.
func defaultEngineOptions() engineOptions {
	return engineOptions{
		workers: 1,
	}
}

// WithWorkers sets the number of worker goroutines Apply may use.
// The default is 1, which processes slices sequentially on the calling
// goroutine. Values above 1 distribute complete slices across that many
// workers; 0 or negative selects GOMAXPROCS workers. Slices write to
// disjoint output columns, so the result is identical for every worker
// count.
func WithWorkers(n int) Option {
	return func(o *engineOptions) {
		o.workers = n
	}
}

// WithProgress registers a callback invoked after each complete slice has
// been permuted. Calls are serialized and Done only ever increases, so the
// observed completion ratio is monotonically non-decreasing and reaches
// exactly 1 when Apply finishes. The callback runs on the applying
// goroutine and must not block.
func WithProgress(fn func(Progress)) Option {
	return func(o *engineOptions) {
		o.progress = fn
	}
}
