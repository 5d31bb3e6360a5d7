package console

import (
	"context"
	"fmt"
	"io"

	"cloudpick/internal/batch"
	"cloudpick/internal/domain"
	"cloudpick/internal/printers"
	"cloudpick/internal/selection"
)

// Console is shared by the domain services. It is safe for concurrent reads
// but interactive calls are expected one at a time.
type Console struct {
	Selector domain.Selector
	Prompter domain.Prompter
	Editor   domain.Editor
	Printer  printers.Printer

	Out io.Writer // results
	Err io.Writer // summaries of partial failure

	// BatchConcurrency bounds batch.ApplyAll; 0 uses the batch default.
	BatchConcurrency int
}

// Pick offers entities and returns the chosen one.
func (c *Console) Pick(ctx context.Context, codec *selection.Codec, entities []domain.Entity, prompt string) (domain.Entity, error) {
	return selection.Pick(ctx, c.Selector, codec, entities, prompt)
}

// PickMany offers entities with multi-select.
func (c *Console) PickMany(ctx context.Context, codec *selection.Codec, entities []domain.Entity, prompt string) ([]domain.Entity, error) {
	return selection.PickMany(ctx, c.Selector, codec, entities, prompt)
}

// Print renders v with the configured printer.
func (c *Console) Print(v any) error {
	return c.Printer.PrintObj(v, c.Out)
}

// Println writes one line of plain output.
func (c *Console) Println(a ...any) {
	fmt.Fprintln(c.Out, a...)
}

// Confirm asks before a destructive or bulk action. Declining is not an error.
func (c *Console) Confirm(ctx context.Context, format string, a ...any) (bool, error) {
	ok, err := c.Prompter.Confirm(ctx, fmt.Sprintf(format, a...), false)
	if err != nil {
		return false, err
	}
	if !ok {
		fmt.Fprintln(c.Out, "aborted")
	}
	return ok, nil
}

// Apply runs action over ids and prints the summary. A partial failure is
// reported in the summary, not as an error.
func (c *Console) Apply(ctx context.Context, operation string, ids []string, action batch.Action) (domain.BatchOutcome, error) {
	out := batch.ApplyAll(ctx, ids, action,
		batch.WithOperation(operation),
		batch.WithConcurrency(c.BatchConcurrency),
	)
	return out, printers.PrintBatchSummary(c.Out, out)
}

// Breakdown prints an aggregation's per-partition counts to Err when any
// partition failed.
func (c *Console) Breakdown(res domain.AggregationResult) error {
	if len(res.Failed()) == 0 {
		return nil
	}
	fmt.Fprintln(c.Err, "listing is incomplete:")
	return printers.PrintBreakdown(c.Err, res)
}

// Arg returns args[i] or "" when absent.
func Arg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

// Partial wraps an enumeration failure, noting how many items came back
// before it.
func (c *Console) Partial(what string, fetched int, err error) error {
	if fetched > 0 {
		fmt.Fprintf(c.Err, "%s: listing stopped after %d items\n", what, fetched)
	}
	return fmt.Errorf("list %s: %w", what, err)
}
