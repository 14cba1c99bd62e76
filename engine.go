package weave

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"github.com/KartikMangalpalli/weave-image-lab/internal/parallel"
)

// minParallelSlices is the minimum slice count worth spreading across
// workers; below it the pool overhead dominates the copy work.
const minParallelSlices = 4

// Engine applies validated patterns to pixel buffers.
//
// An Engine is cheap to create and safe for concurrent use: every Apply call
// allocates its own output buffer and, in parallel mode, its own worker
// pool. Configure worker count and progress reporting with NewEngine
// options.
type Engine struct {
	opts engineOptions
}

// NewEngine creates an engine. With no options it processes slices
// sequentially and reports no progress.
func NewEngine(opts ...Option) *Engine {
	o := defaultEngineOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.workers <= 0 {
		o.workers = runtime.GOMAXPROCS(0)
	}
	return &Engine{opts: o}
}

// Apply permutes src slice by slice according to pat and returns the result
// as a new pixmap; src is never modified.
//
// The buffer is processed in vertical slices of pat.Size() columns. Every
// complete slice is rewritten by gathering source columns through the
// pattern; a trailing partial slice narrower than the pattern is copied
// through unchanged, as is the whole buffer when it is narrower than one
// slice. After each complete slice the progress callback, if configured,
// observes the updated completion ratio; the final ratio is exactly 1.
//
// Apply checks ctx between slices. On cancellation it returns ctx.Err() and
// no pixmap; the partial result is discarded.
//
// A nil or zero-sized src fails with a *BufferError wrapping ErrEmptyBuffer.
func (e *Engine) Apply(ctx context.Context, src *Pixmap, pat *Pattern) (*Pixmap, error) {
	if src == nil {
		return nil, &BufferError{}
	}
	if src.width < 1 || src.height < 1 {
		return nil, &BufferError{Width: src.width, Height: src.height}
	}
	if pat == nil {
		return nil, errors.New("weave: nil pattern")
	}

	total := src.width / pat.size
	Logger().Debug("apply",
		"width", src.width, "height", src.height,
		"size", pat.size, "slices", total, "workers", e.opts.workers)

	// The output starts as an exact copy, so partial slices and any columns
	// beyond the last complete slice are already correct.
	out := src.Clone()

	if total == 0 {
		e.reportProgress(Progress{Done: 0, Total: 0})
		return out, nil
	}

	var err error
	if e.opts.workers > 1 && total >= minParallelSlices {
		err = e.applyParallel(ctx, src, out, pat, total)
	} else {
		err = e.applySequential(ctx, src, out, pat, total)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// applySequential permutes all complete slices on the calling goroutine.
func (e *Engine) applySequential(ctx context.Context, src, out *Pixmap, pat *Pattern, total int) error {
	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		permuteSlice(src, out, pat, i)
		e.reportProgress(Progress{Done: i + 1, Total: total})
	}
	return nil
}

// applyParallel distributes complete slices across a worker pool. Slices
// write to disjoint column ranges of out, so workers never alias.
func (e *Engine) applyParallel(ctx context.Context, src, out *Pixmap, pat *Pattern, total int) error {
	workers := e.opts.workers
	if workers > total {
		workers = total
	}
	pool := parallel.NewWorkerPool(workers)
	defer pool.Close()

	var (
		mu   sync.Mutex
		done int
	)
	work := make([]func(), total)
	for i := range work {
		slice := i
		work[i] = func() {
			if ctx.Err() != nil {
				return
			}
			permuteSlice(src, out, pat, slice)

			// Progress is reported under the lock so observers see Done
			// strictly increasing.
			mu.Lock()
			done++
			e.reportProgress(Progress{Done: done, Total: total})
			mu.Unlock()
		}
	}
	pool.ExecuteAll(work)

	return ctx.Err()
}

// permuteSlice rewrites complete slice i of out by gathering source columns:
// output column i*S+j takes the pixel of source column i*S+(seq[j]-1) on
// every row.
func permuteSlice(src, out *Pixmap, pat *Pattern, slice int) {
	rowBytes := src.width * 4
	base := slice * pat.size * 4

	for y := 0; y < src.height; y++ {
		row := y * rowBytes
		for j, v := range pat.seq {
			d := row + base + j*4
			s := row + base + (v-1)*4
			out.data[d+0] = src.data[s+0]
			out.data[d+1] = src.data[s+1]
			out.data[d+2] = src.data[s+2]
			out.data[d+3] = src.data[s+3]
		}
	}
}

func (e *Engine) reportProgress(p Progress) {
	if e.opts.progress != nil {
		e.opts.progress(p)
	}
}
