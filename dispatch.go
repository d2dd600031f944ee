package bulkhash

import (
	"golang.org/x/sync/errgroup"
)

// dispatch maps a batch of n elements onto concurrently executing
// goroutines, each handling one contiguous chunk. Small batches run
// serially on the calling goroutine. fn must be safe to call from
// multiple goroutines with disjoint [lo, hi) ranges; dispatch returns
// once every chunk has completed.
func dispatch(n, parallelism int, fn func(lo, hi int)) {
	if n <= 0 {
		return
	}

	chunkSize, chunks := calcParallelism(n, minParallelBatchItems, parallelism)
	if chunks <= 1 {
		fn(0, n)
		return
	}

	var g errgroup.Group
	for lo := 0; lo < n; lo += chunkSize {
		lo := lo
		hi := min(lo+chunkSize, n)
		g.Go(func() error {
			fn(lo, hi)
			return nil
		})
	}
	// Chunk workers report per-element outcomes through the batch
	// buffers and atomic counters, never through errors.
	_ = g.Wait()
}
