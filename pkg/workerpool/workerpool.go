// Package workerpool runs a bounded number of workers over a sequence.
package workerpool

import (
	"context"
	"iter"
	"sync"
)

// Process calls process for every item of items on up to workerCount
// goroutines. The first error cancels the remaining work and is returned;
// items not yet handed out are never processed.
func Process[T any](
	ctx context.Context,
	workerCount int,
	items iter.Seq[T],
	process func(context.Context, T) error,
) error {
	if workerCount < 1 {
		workerCount = 1
	}
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	tasks := make(chan T)
	wg := sync.WaitGroup{}
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range tasks {
				if ctx.Err() != nil {
					continue
				}
				if err := process(ctx, item); err != nil {
					cancel(err)
				}
			}
		}()
	}

	func() {
		defer close(tasks)
		for item := range items {
			select {
			case <-ctx.Done():
				return
			case tasks <- item:
			}
		}
	}()
	wg.Wait()

	return context.Cause(ctx)
}
