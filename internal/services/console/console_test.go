package console_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloudpick/internal/domain"
	"cloudpick/internal/services/console"
	"cloudpick/internal/services/console/consoletest"
)

func TestApply_PrintsSummary(t *testing.T) {
	h := consoletest.New(consoletest.NewSelector())
	out, err := h.Console.Apply(context.Background(), "enable-rule", []string{"a", "b"}, func(_ context.Context, id string) error {
		if id == "b" {
			return errors.New("ResourceNotFoundException")
		}
		return nil
	})
	require.NoError(t, err)
	assert.False(t, out.OK())
	assert.Contains(t, h.Out.String(), "enable-rule: 1 succeeded, 1 failed")
	assert.Contains(t, h.Out.String(), "b: enable-rule: ResourceNotFoundException")
}

func TestConfirm_DeclinePrintsAborted(t *testing.T) {
	h := consoletest.New(consoletest.NewSelector())
	h.Prompter.Answers = []bool{false}

	ok, err := h.Console.Confirm(context.Background(), "Purge %d queues?", 2)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []string{"Purge 2 queues?"}, h.Prompter.Messages)
	assert.Equal(t, "aborted\n", h.Out.String())
}

func TestBreakdown_OnlyOnFailure(t *testing.T) {
	h := consoletest.New(consoletest.NewSelector())

	require.NoError(t, h.Console.Breakdown(domain.AggregationResult{
		Outcomes: []domain.PartitionOutcome{{Label: "RUNNING", Count: 1}},
	}))
	assert.Empty(t, h.Err.String())

	require.NoError(t, h.Console.Breakdown(domain.AggregationResult{
		Outcomes: []domain.PartitionOutcome{
			{Label: "RUNNING", Count: 1},
			{Label: "FAILED", Err: errors.New("throttled")},
		},
	}))
	assert.Contains(t, h.Err.String(), "listing is incomplete")
	assert.Contains(t, h.Err.String(), "FAILED       failed: throttled")
}

func TestArg(t *testing.T) {
	assert.Equal(t, "a", console.Arg([]string{"a"}, 0))
	assert.Equal(t, "", console.Arg([]string{"a"}, 1))
}

func TestPartial(t *testing.T) {
	h := consoletest.New(consoletest.NewSelector())
	err := h.Console.Partial("queues", 3, errors.New("boom"))
	assert.EqualError(t, err, "list queues: boom")
	assert.Equal(t, "queues: listing stopped after 3 items\n", h.Err.String())
}
