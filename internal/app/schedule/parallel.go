// Package schedule runs per-package work with bounded concurrency, either
// as a flat fan-out (Parallel) or in dependency order (Topological).
package schedule

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Result holds the outcome of processing a single item.
// Either Value is populated (on success) or Err is non-nil (on failure).
type Result[R any] struct {
	Value R
	Err   error
}

// Parallel executes fn for each item using at most concurrency goroutines.
// Results are returned in input order. One item's failure does not stop the
// others; items that had not started when ctx was canceled record ctx.Err()
// without calling fn.
//
// concurrency below 1 is treated as 1.
func Parallel[T, R any](ctx context.Context, concurrency int, items []T, fn func(context.Context, T) (R, error)) []Result[R] {
	results := make([]Result[R], len(items))
	if len(items) == 0 {
		return results
	}

	var g errgroup.Group
	g.SetLimit(max(1, concurrency))

	for i, item := range items {
		if err := ctx.Err(); err != nil {
			results[i] = Result[R]{Err: err}
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = Result[R]{Err: err}
				return nil
			}
			val, err := fn(ctx, item)
			results[i] = Result[R]{Value: val, Err: err}
			return nil
		})
	}

	_ = g.Wait()
	return results
}
