package agent

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// InvokeAll runs independent tasks concurrently, at most limit at a time
// (limit <= 0 means unbounded). Results keep the order of tasks. The first
// failure cancels the tasks still running and is returned; entries for
// tasks that did not finish are nil.
func (iv *Invoker) InvokeAll(ctx context.Context, tasks []Task, limit int) ([]*Invocation, error) {
	results := make([]*Invocation, len(tasks))

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, task := range tasks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			inv, err := iv.Invoke(gctx, task)
			results[i] = inv
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
