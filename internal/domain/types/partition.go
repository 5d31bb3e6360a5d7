package types

import "errors"

// Partition is an independently queryable slice of a larger collection,
// typically one status value.
type Partition struct {
	Label  string
	Params Params
}

// PartitionOutcome records how one partition fared.
type PartitionOutcome struct {
	Label string
	Count int
	Err   error
}

// OK reports whether the partition was fetched successfully.
func (o PartitionOutcome) OK() bool { return o.Err == nil }

// AggregationResult holds the merged entities of every successful partition
// and one outcome per partition, in partition input order.
type AggregationResult struct {
	Entities []Entity
	Outcomes []PartitionOutcome
}

// Succeeded returns the outcomes of partitions that were fetched.
func (r AggregationResult) Succeeded() []PartitionOutcome {
	var out []PartitionOutcome
	for _, o := range r.Outcomes {
		if o.OK() {
			out = append(out, o)
		}
	}
	return out
}

// Failed returns the outcomes of partitions that errored.
func (r AggregationResult) Failed() []PartitionOutcome {
	var out []PartitionOutcome
	for _, o := range r.Outcomes {
		if !o.OK() {
			out = append(out, o)
		}
	}
	return out
}

// Err joins the partition failures, or returns nil when none failed.
func (r AggregationResult) Err() error {
	var errs []error
	for _, o := range r.Failed() {
		errs = append(errs, o.Err)
	}
	return errors.Join(errs...)
}

// AllFailed reports whether there were partitions and none succeeded.
func (r AggregationResult) AllFailed() bool {
	return len(r.Outcomes) > 0 && len(r.Succeeded()) == 0
}
