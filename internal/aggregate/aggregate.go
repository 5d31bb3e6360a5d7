// Package aggregate fans one query out over independent partitions and merges
// the results.
//
// The platform exposes some collections only through status-scoped list
// calls, so seeing everything means querying every status. Each partition is
// fetched concurrently and independently: a failing partition is recorded in
// its outcome and never cancels, blocks or discards the others.
package aggregate

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"cloudpick/internal/ctxlog"
	"cloudpick/internal/domain"
)

// FetchFunc materializes one partition, usually via a full paginated walk.
type FetchFunc func(ctx context.Context, p domain.Partition) ([]domain.Entity, error)

type options struct {
	concurrency int
	tracer      trace.Tracer
}

// Option tunes Aggregate.
type Option func(*options)

// WithConcurrency caps the number of partitions fetched at once.
// n <= 0 fetches all partitions at once.
func WithConcurrency(n int) Option { return func(o *options) { o.concurrency = n } }

// WithTracer records a span per partition.
func WithTracer(t trace.Tracer) Option { return func(o *options) { o.tracer = t } }

type partitionResult struct {
	index    int
	entities []domain.Entity
	err      error
}

// Aggregate fetches every partition and merges the successful ones.
//
// Entities are concatenated in partition input order, which keeps the result
// deterministic for a given set of responses; callers wanting another order
// sort afterward. Outcomes has one entry per partition, also in input order.
func Aggregate(ctx context.Context, partitions []domain.Partition, fetch FetchFunc, opts ...Option) domain.AggregationResult {
	o := options{tracer: noop.NewTracerProvider().Tracer("cloudpick/aggregate")}
	for _, opt := range opts {
		opt(&o)
	}
	logger := ctxlog.FromContext(ctx).With("component", "aggregate")

	results := make(chan partitionResult, len(partitions))

	// Work units never return an error, so the group never cancels siblings.
	var g errgroup.Group
	if o.concurrency > 0 {
		g.SetLimit(o.concurrency)
	}
	for i, p := range partitions {
		g.Go(func() error {
			results <- fetchPartition(ctx, o.tracer, i, p, fetch)
			return nil
		})
	}
	_ = g.Wait()
	close(results)

	byIndex := make([]partitionResult, len(partitions))
	for r := range results {
		byIndex[r.index] = r
	}

	out := domain.AggregationResult{Outcomes: make([]domain.PartitionOutcome, len(partitions))}
	for i, r := range byIndex {
		outcome := domain.PartitionOutcome{Label: partitions[i].Label, Err: r.err}
		if r.err == nil {
			outcome.Count = len(r.entities)
			out.Entities = append(out.Entities, r.entities...)
		}
		out.Outcomes[i] = outcome
		logOutcome(ctx, logger, outcome)
	}
	return out
}

func fetchPartition(ctx context.Context, tracer trace.Tracer, i int, p domain.Partition, fetch FetchFunc) partitionResult {
	ctx, span := tracer.Start(ctx, "aggregate.partition",
		trace.WithAttributes(attribute.String("partition", p.Label)))
	defer span.End()

	entities, err := fetch(ctx, p)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "partition failed")
		return partitionResult{index: i, err: err}
	}
	span.SetAttributes(attribute.Int("count", len(entities)))
	return partitionResult{index: i, entities: entities}
}

func logOutcome(ctx context.Context, logger *slog.Logger, o domain.PartitionOutcome) {
	if o.OK() {
		logger.DebugContext(ctx, "partition fetched", "partition", o.Label, "count", o.Count)
		return
	}
	logger.WarnContext(ctx, "partition failed", "partition", o.Label, "error", o.Err)
}
