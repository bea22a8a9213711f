package bayesspace

import "sync"

// parallelRange splits [0, n) into contiguous ranges and calls fn on each
// range from its own goroutine. Ranges never overlap, so fn may write to
// per-index slots without synchronization. With numWorkers <= 1, fn runs
// once on the calling goroutine.
func parallelRange(n, numWorkers int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	if numWorkers <= 1 || n == 1 {
		fn(0, n)
		return
	}

	var wg sync.WaitGroup
	perWorker := (n + numWorkers - 1) / numWorkers

	for w := 0; w < numWorkers; w++ {
		start := w * perWorker
		end := start + perWorker
		if end > n {
			end = n
		}
		if start >= n {
			break
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			fn(start, end)
		}(start, end)
	}

	wg.Wait()
}

// parallelRangeErr is parallelRange for fallible work. It returns the error
// from the lowest-indexed range that failed, so the reported error does not
// depend on goroutine scheduling.
func parallelRangeErr(n, numWorkers int, fn func(start, end int) error) error {
	if n <= 0 {
		return nil
	}
	if numWorkers <= 1 || n == 1 {
		return fn(0, n)
	}
	perWorker := (n + numWorkers - 1) / numWorkers
	errs := make([]error, numWorkers)
	parallelRange(n, numWorkers, func(start, end int) {
		errs[start/perWorker] = fn(start, end)
	})
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
