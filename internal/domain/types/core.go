package types

import "fmt"

// Endpoint names one remote control-plane operation, e.g. {"sqs", "list-queues"}.
type Endpoint struct {
	Service   string
	Operation string
}

// String returns "service operation".
func (e Endpoint) String() string { return fmt.Sprintf("%s %s", e.Service, e.Operation) }

// Params is the JSON-shaped request body of an invocation.
type Params map[string]any

// With returns a copy of p with the entries of extra laid over it.
func (p Params) With(extra Params) Params {
	out := make(Params, len(p)+len(extra))
	for k, v := range p {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// Result is the decoded JSON payload returned by an invocation.
type Result map[string]any
