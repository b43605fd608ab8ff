// Package concurrency runs small batches of independent jobs on a bounded
// worker pool.
package concurrency

import (
	"context"
	"sync"
)

// ParallelOptions configura el pool.
type ParallelOptions struct {
	// MaxWorkers caps concurrent jobs; <=0 means the default.
	MaxWorkers int
}

func DefaultOptions() ParallelOptions {
	return ParallelOptions{
		MaxWorkers: 10,
	}
}

func (o ParallelOptions) workers(n int) int {
	w := o.MaxWorkers
	if w <= 0 {
		w = DefaultOptions().MaxWorkers
	}
	if w > n {
		w = n
	}
	return w
}

// run feeds every index to job on a bounded pool. Jobs not yet started
// when ctx is done are skipped.
func run(ctx context.Context, n int, opts ParallelOptions, job func(i int)) {
	jobs := make(chan int, n)
	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup
	for w := opts.workers(n); w > 0; w-- {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if ctx.Err() != nil {
					return
				}
				job(i)
			}
		}()
	}
	wg.Wait()
}

// ProcessParallel calls itemFunc for every item and returns the results in
// input order. Skipped items keep the zero value.
func ProcessParallel[T any, R any](
	ctx context.Context,
	items []T,
	opts ParallelOptions,
	itemFunc func(ctx context.Context, index int, item T) (R, error),
) ([]R, []error) {
	if len(items) == 0 {
		return []R{}, nil
	}

	results := make([]R, len(items))
	var (
		mu   sync.Mutex
		errs []error
	)
	run(ctx, len(items), opts, func(i int) {
		r, err := itemFunc(ctx, i, items[i])
		results[i] = r
		if err != nil {
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}
	})
	return results, errs
}

// ForEach es ProcessParallel sin resultados: solo efectos y errores.
func ForEach[T any](
	ctx context.Context,
	items []T,
	opts ParallelOptions,
	itemFunc func(ctx context.Context, index int, item T) error,
) []error {
	if len(items) == 0 {
		return nil
	}

	var (
		mu   sync.Mutex
		errs []error
	)
	run(ctx, len(items), opts, func(i int) {
		if err := itemFunc(ctx, i, items[i]); err != nil {
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}
	})
	return errs
}
