package embedding

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// minRowsPerWorker keeps tiny graphs on one goroutine
const minRowsPerWorker = 32

// parallelRows splits [0, n) into contiguous chunks and runs fn on each.
// workers <= 0 uses GOMAXPROCS.
func parallelRows(n, workers int, fn func(lo, hi int)) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if limit := (n + minRowsPerWorker - 1) / minRowsPerWorker; workers > limit {
		workers = limit
	}
	if workers <= 1 {
		fn(0, n)
		return
	}

	chunk := (n + workers - 1) / workers
	var eg errgroup.Group
	for lo := 0; lo < n; lo += chunk {
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		eg.Go(func() error {
			fn(lo, hi)
			return nil
		})
	}
	_ = eg.Wait()
}
