// Package batch applies one action to many selected items.
//
// Each item's outcome is recorded on its own: a failing item never skips or
// aborts the remaining ones, and the outcome separates successes from
// failures instead of collapsing them into one pass/fail.
package batch

import (
	"context"

	"golang.org/x/sync/errgroup"

	"cloudpick/internal/ctxlog"
	"cloudpick/internal/domain"
)

// DefaultConcurrency is used when no WithConcurrency option is given.
const DefaultConcurrency = 4

// Action is applied to every item identifier.
type Action func(ctx context.Context, id string) error

type options struct {
	concurrency int
	operation   string
}

// Option tunes ApplyAll.
type Option func(*options)

// WithConcurrency sets the number of items processed at once. 1 processes
// items sequentially in input order.
func WithConcurrency(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithOperation names the action in the outcome and in logs ("remove", "purge").
func WithOperation(name string) Option { return func(o *options) { o.operation = name } }

type itemResult struct {
	index int
	err   error
}

// ApplyAll runs action for every id and reports one outcome per id, in input order.
func ApplyAll(ctx context.Context, ids []string, action Action, opts ...Option) domain.BatchOutcome {
	o := options{concurrency: DefaultConcurrency}
	for _, opt := range opts {
		opt(&o)
	}
	logger := ctxlog.FromContext(ctx).With("component", "batch", "operation", o.operation)

	results := make(chan itemResult, len(ids))

	// Work units always return nil so one failure never stops the group.
	var g errgroup.Group
	g.SetLimit(o.concurrency)
	for i, id := range ids {
		g.Go(func() error {
			results <- itemResult{index: i, err: action(ctx, id)}
			return nil
		})
	}
	_ = g.Wait()
	close(results)

	out := domain.BatchOutcome{Operation: o.operation, Items: make([]domain.ItemOutcome, len(ids))}
	for i, id := range ids {
		out.Items[i].ID = id
	}
	for r := range results {
		out.Items[r.index].Err = r.err
		if r.err != nil {
			logger.WarnContext(ctx, "item failed", "id", ids[r.index], "error", r.err)
		}
	}
	logger.DebugContext(ctx, "batch finished",
		"succeeded", len(out.Succeeded()),
		"failed", len(out.Failed()),
	)
	return out
}
