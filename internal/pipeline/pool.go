package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the worker count used when none is configured.
const DefaultConcurrency = 4

// forEach runs fn for every item on at most limit workers. Outcomes are
// stored by input index. Per-item failures belong in the outcome; the only
// error returned is the context's.
func forEach[T any](ctx context.Context, limit int, items []T, fn func(context.Context, T) Outcome) ([]Outcome, error) {
	if limit < 1 {
		limit = 1
	}
	out := make([]Outcome, len(items))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, item := range items {
		if gCtx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			out[i] = fn(gCtx, item)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "pipeline: interrupted")
	}
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "pipeline: interrupted")
	}
	return out, nil
}
