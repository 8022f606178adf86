package worker

import (
	"sync"
)

// pool.go provides a bounded worker pool abstraction.

// Pool runs submitted jobs on at most a fixed number of goroutines.
type Pool struct {
	sem chan struct{}
	wg  sync.WaitGroup
}

// NewPool creates a pool running at most maxWorkers jobs at once.
func NewPool(maxWorkers int) *Pool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &Pool{
		sem: make(chan struct{}, maxWorkers),
	}
}

// Submit schedules a job. The caller never blocks; the job waits for a
// worker slot on its own goroutine.
func (p *Pool) Submit(job func()) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		// Acquire semaphore
		p.sem <- struct{}{}
		defer func() { <-p.sem }()

		job()
	}()
}

// Wait blocks until every submitted job has completed.
func (p *Pool) Wait() {
	p.wg.Wait()
}

// ProcessWithProgress runs fn over items with bounded parallelism.
// results[i] and errs[i] correspond to items[i], with errs[i] nil on
// success. progress, when non-nil, is called after each item with the
// running completion count and is never invoked concurrently with
// itself.
func ProcessWithProgress[T any, R any](
	items []T,
	maxWorkers int,
	fn func(T) (R, error),
	progress func(completed, total int),
) ([]R, []error) {
	pool := NewPool(maxWorkers)

	results := make([]R, len(items))
	errs := make([]error, len(items))

	var mu sync.Mutex
	completed := 0
	total := len(items)

	for i, item := range items {
		i, item := i, item
		pool.Submit(func() {
			results[i], errs[i] = fn(item)

			mu.Lock()
			completed++
			if progress != nil {
				progress(completed, total)
			}
			mu.Unlock()
		})
	}

	pool.Wait()
	return results, errs
}
