// Package util holds small concurrency helpers.
package util

import (
	"context"
	"sync"
)

// ParallelMap applies fn to every input using at most workerLimit goroutines
// and returns the results in input order. Inputs not yet started when ctx is
// cancelled are left at R's zero value.
func ParallelMap[T, R any](ctx context.Context, inputs []T, workerLimit int, fn func(context.Context, T) R) []R {
	out := make([]R, len(inputs))
	if len(inputs) == 0 {
		return out
	}
	if workerLimit <= 0 {
		workerLimit = 1
	}
	if workerLimit > len(inputs) {
		workerLimit = len(inputs)
	}

	tasks := make(chan int)

	// workers
	wg := sync.WaitGroup{}
	for i := 0; i < workerLimit; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range tasks {
				out[idx] = fn(ctx, inputs[idx])
			}
		}()
	}

	// feed tasks until done or cancelled
	func() {
		defer close(tasks)
		for idx := range inputs {
			select {
			case <-ctx.Done():
				return
			case tasks <- idx:
			}
		}
	}()

	wg.Wait()
	return out
}
