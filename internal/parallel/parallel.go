// Package parallel runs indexed work on a bounded number of goroutines.
package parallel

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Map calls fn for every index in [0, n) on at most workers goroutines and
// returns the results in index order, so callers that scan for the first
// failed index get the same answer on every run.
//
// fn reports per-index failures through its result. Map returns an error
// only when ctx is done; indexes not yet started are then skipped.
func Map[T any](ctx context.Context, n, workers int, fn func(i int) T) ([]T, error) {
	results := make([]T, n)
	if n == 0 {
		return results, ctx.Err()
	}

	var g errgroup.Group
	g.SetLimit(max(1, min(workers, n)))
	for i := range n {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = fn(i)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
