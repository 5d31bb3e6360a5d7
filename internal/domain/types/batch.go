package types

// ItemOutcome is the result of applying a batch action to one item.
type ItemOutcome struct {
	ID  string
	Err error
}

// BatchOutcome collects one ItemOutcome per input item, in input order.
type BatchOutcome struct {
	Operation string
	Items     []ItemOutcome
}

// Succeeded returns the identifiers whose action succeeded.
func (b BatchOutcome) Succeeded() []string {
	var out []string
	for _, it := range b.Items {
		if it.Err == nil {
			out = append(out, it.ID)
		}
	}
	return out
}

// Failed returns the items whose action failed, with their errors.
func (b BatchOutcome) Failed() []ItemOutcome {
	var out []ItemOutcome
	for _, it := range b.Items {
		if it.Err != nil {
			out = append(out, it)
		}
	}
	return out
}

// OK reports whether every item succeeded.
func (b BatchOutcome) OK() bool { return len(b.Failed()) == 0 }
