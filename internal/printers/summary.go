package printers

import (
	"fmt"
	"io"

	"cloudpick/internal/domain"
)

// PrintBatchSummary lists succeeded and failed items separately. Each failure
// carries its identifier, the operation and the diagnostic.
func PrintBatchSummary(w io.Writer, out domain.BatchOutcome) error {
	ok := out.Succeeded()
	failed := out.Failed()

	if _, err := fmt.Fprintf(w, "%s: %d succeeded, %d failed\n", out.Operation, len(ok), len(failed)); err != nil {
		return err
	}
	if len(ok) > 0 {
		fmt.Fprintln(w, "succeeded:")
		for _, id := range ok {
			fmt.Fprintf(w, "  %s\n", id)
		}
	}
	if len(failed) > 0 {
		fmt.Fprintln(w, "failed:")
		for _, item := range failed {
			fmt.Fprintf(w, "  %s: %s: %v\n", item.ID, out.Operation, item.Err)
		}
	}
	return nil
}

// PrintBreakdown prints per-partition counts of an aggregation, failures
// included.
func PrintBreakdown(w io.Writer, res domain.AggregationResult) error {
	for _, o := range res.Outcomes {
		var err error
		if o.OK() {
			_, err = fmt.Fprintf(w, "%-12s %d\n", o.Label, o.Count)
		} else {
			_, err = fmt.Fprintf(w, "%-12s failed: %v\n", o.Label, o.Err)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
