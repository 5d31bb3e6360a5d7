package aggregate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"cloudpick/internal/domain"
)

func entities(t *testing.T, label string, n int) []domain.Entity {
	t.Helper()
	out := make([]domain.Entity, 0, n)
	for i := 0; i < n; i++ {
		e, err := domain.NewEntity("jobId", map[string]any{
			"jobId":  fmt.Sprintf("%s-%d", label, i),
			"status": label,
		})
		require.NoError(t, err)
		out = append(out, e)
	}
	return out
}

func partitions(labels ...string) []domain.Partition {
	out := make([]domain.Partition, 0, len(labels))
	for _, l := range labels {
		out = append(out, domain.Partition{Label: l, Params: domain.Params{"jobStatus": l}})
	}
	return out
}

func TestAggregate_FailureIsolation(t *testing.T) {
	a := entities(t, "A", 3)
	fetch := func(_ context.Context, p domain.Partition) ([]domain.Entity, error) {
		switch p.Label {
		case "A":
			return a, nil
		case "B":
			return nil, &domain.TransportError{
				Endpoint:   domain.Endpoint{Service: "batch", Operation: "list-jobs"},
				Diagnostic: "ThrottlingException",
			}
		}
		return nil, nil
	}

	res := Aggregate(context.Background(), partitions("A", "B", "C"), fetch)

	assert.Equal(t, a, res.Entities)
	require.Len(t, res.Outcomes, 3)

	assert.Equal(t, "A", res.Outcomes[0].Label)
	assert.True(t, res.Outcomes[0].OK())
	assert.Equal(t, 3, res.Outcomes[0].Count)

	assert.Equal(t, "B", res.Outcomes[1].Label)
	assert.ErrorIs(t, res.Outcomes[1].Err, domain.ErrTransport)
	assert.Contains(t, res.Outcomes[1].Err.Error(), "ThrottlingException")

	assert.Equal(t, "C", res.Outcomes[2].Label)
	assert.True(t, res.Outcomes[2].OK())
	assert.Zero(t, res.Outcomes[2].Count)

	assert.Len(t, res.Succeeded(), 2)
	assert.Len(t, res.Failed(), 1)
	assert.False(t, res.AllFailed())
	assert.ErrorIs(t, res.Err(), domain.ErrTransport)
}

func TestAggregate_MergeOrderFollowsPartitionOrder(t *testing.T) {
	byLabel := map[string][]domain.Entity{
		"RUNNING":   entities(t, "RUNNING", 2),
		"PENDING":   entities(t, "PENDING", 1),
		"SUCCEEDED": entities(t, "SUCCEEDED", 2),
	}
	// Finish in reverse order of submission.
	delay := map[string]time.Duration{"RUNNING": 30 * time.Millisecond, "PENDING": 15 * time.Millisecond}
	fetch := func(_ context.Context, p domain.Partition) ([]domain.Entity, error) {
		time.Sleep(delay[p.Label])
		return byLabel[p.Label], nil
	}

	res := Aggregate(context.Background(), partitions("RUNNING", "PENDING", "SUCCEEDED"), fetch)

	var want []domain.Entity
	want = append(want, byLabel["RUNNING"]...)
	want = append(want, byLabel["PENDING"]...)
	want = append(want, byLabel["SUCCEEDED"]...)
	assert.Equal(t, want, res.Entities)
}

func TestAggregate_RunsPartitionsConcurrently(t *testing.T) {
	const n = 5
	var wg sync.WaitGroup
	wg.Add(n)
	fetch := func(ctx context.Context, _ domain.Partition) ([]domain.Entity, error) {
		// Every partition waits for all others to start; sequential execution
		// would deadlock until the timeout.
		wg.Done()
		done := make(chan struct{})
		go func() { wg.Wait(); close(done) }()
		select {
		case <-done:
			return nil, nil
		case <-time.After(2 * time.Second):
			return nil, errors.New("partitions were not concurrent")
		}
	}

	res := Aggregate(context.Background(), partitions("a", "b", "c", "d", "e"), fetch)
	assert.NoError(t, res.Err())
}

func TestAggregate_ConcurrencyLimit(t *testing.T) {
	var inFlight, peak atomic.Int32
	fetch := func(context.Context, domain.Partition) ([]domain.Entity, error) {
		cur := inFlight.Add(1)
		for {
			old := peak.Load()
			if cur <= old || peak.CompareAndSwap(old, cur) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		inFlight.Add(-1)
		return nil, nil
	}

	res := Aggregate(context.Background(), partitions("a", "b", "c", "d", "e", "f"), fetch, WithConcurrency(2))
	assert.NoError(t, res.Err())
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestAggregate_FailureDoesNotCancelSiblings(t *testing.T) {
	slow := entities(t, "slow", 1)
	fetch := func(ctx context.Context, p domain.Partition) ([]domain.Entity, error) {
		if p.Label == "bad" {
			return nil, errors.New("boom")
		}
		time.Sleep(20 * time.Millisecond)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return slow, nil
	}

	res := Aggregate(context.Background(), partitions("bad", "slow"), fetch)
	require.Len(t, res.Entities, 1)
	assert.True(t, res.Outcomes[1].OK())
}

func TestAggregate_AllFailedAndEmpty(t *testing.T) {
	fetch := func(context.Context, domain.Partition) ([]domain.Entity, error) {
		return nil, errors.New("down")
	}
	res := Aggregate(context.Background(), partitions("x", "y"), fetch)
	assert.True(t, res.AllFailed())
	assert.Empty(t, res.Entities)

	empty := Aggregate(context.Background(), nil, fetch)
	assert.Empty(t, empty.Outcomes)
	assert.False(t, empty.AllFailed())
}

func TestAggregate_SpanPerPartition(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))

	Aggregate(context.Background(), partitions("RUNNING", "FAILED"),
		func(_ context.Context, p domain.Partition) ([]domain.Entity, error) {
			if p.Label == "FAILED" {
				return nil, errors.New("throttled")
			}
			return entities(t, p.Label, 2), nil
		}, WithTracer(tp.Tracer("test")))

	spans := rec.Ended()
	require.Len(t, spans, 2)
	status := map[string]codes.Code{}
	for _, span := range spans {
		assert.Equal(t, "aggregate.partition", span.Name())
		for _, kv := range span.Attributes() {
			if kv.Key == "partition" {
				status[kv.Value.AsString()] = span.Status().Code
			}
		}
	}
	assert.Equal(t, map[string]codes.Code{"RUNNING": codes.Unset, "FAILED": codes.Error}, status)
}
