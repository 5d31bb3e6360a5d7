// Package consoletest provides scripted fakes for exercising domain services
// without a terminal, a finder or the platform CLI.
package consoletest

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	"cloudpick/internal/domain"
	"cloudpick/internal/printers"
	"cloudpick/internal/services/console"
)

// Call is one recorded invocation.
type Call struct {
	Endpoint domain.Endpoint
	Params   domain.Params
}

// Route answers invocations of one endpoint.
type Route func(params domain.Params) (domain.Result, error)

// Invoker dispatches by "service operation" and records every call.
type Invoker struct {
	mu     sync.Mutex
	routes map[string]Route
	calls  []Call
}

func NewInvoker() *Invoker {
	return &Invoker{routes: make(map[string]Route)}
}

// On registers the handler for "service operation".
func (f *Invoker) On(endpoint string, r Route) *Invoker {
	f.routes[endpoint] = r
	return f
}

func (f *Invoker) Invoke(_ context.Context, ep domain.Endpoint, params domain.Params) (domain.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, Call{Endpoint: ep, Params: params.With(nil)})
	r, ok := f.routes[ep.String()]
	f.mu.Unlock()

	if !ok {
		return nil, &domain.TransportError{Endpoint: ep, Diagnostic: "no route in test"}
	}
	return r(params)
}

// Calls returns the recorded calls to endpoint, or all calls when endpoint
// is empty.
func (f *Invoker) Calls(endpoint string) []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Call
	for _, c := range f.calls {
		if endpoint == "" || c.Endpoint.String() == endpoint {
			out = append(out, c)
		}
	}
	return out
}

// Selector answers each Select call with the next scripted choice. A choice
// is a list of substrings; every candidate containing one of them is
// returned. A nil choice aborts.
type Selector struct {
	mu      sync.Mutex
	choices [][]string
	Prompts []string
	Offered [][]string
}

func NewSelector(choices ...[]string) *Selector {
	return &Selector{choices: choices}
}

func (s *Selector) Select(_ context.Context, candidates []string, _ bool, prompt string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Prompts = append(s.Prompts, prompt)
	s.Offered = append(s.Offered, candidates)
	if len(s.choices) == 0 {
		return nil, fmt.Errorf("unexpected selection %q", prompt)
	}
	want := s.choices[0]
	s.choices = s.choices[1:]

	var out []string
	for _, w := range want {
		for _, c := range candidates {
			if strings.Contains(c, w) {
				out = append(out, c)
				break
			}
		}
	}
	return out, nil
}

// Prompter replays scripted lines and confirmation answers.
type Prompter struct {
	Lines    []string
	Answers  []bool
	Messages []string
}

func (p *Prompter) PromptLine(_ context.Context, message string) (string, error) {
	p.Messages = append(p.Messages, message)
	if len(p.Lines) == 0 {
		return "", fmt.Errorf("unexpected prompt %q", message)
	}
	line := p.Lines[0]
	p.Lines = p.Lines[1:]
	return line, nil
}

func (p *Prompter) Confirm(_ context.Context, message string, _ bool) (bool, error) {
	p.Messages = append(p.Messages, message)
	if len(p.Answers) == 0 {
		return false, fmt.Errorf("unexpected confirmation %q", message)
	}
	a := p.Answers[0]
	p.Answers = p.Answers[1:]
	return a, nil
}

// Editor transforms the initial text with Edit.
type Editor struct {
	Edit    func(initial string) string
	Initial string
	Ext     string
}

func (e *Editor) EditText(_ context.Context, initial, ext string) (string, error) {
	e.Initial, e.Ext = initial, ext
	if e.Edit == nil {
		return initial, nil
	}
	return e.Edit(initial), nil
}

// Harness is a Console wired to fakes with captured output.
type Harness struct {
	Console  *console.Console
	Selector *Selector
	Prompter *Prompter
	Editor   *Editor
	Out      *bytes.Buffer
	Err      *bytes.Buffer
}

// New builds a Harness. Batches run sequentially so output order is stable.
func New(sel *Selector) *Harness {
	h := &Harness{
		Selector: sel,
		Prompter: &Prompter{},
		Editor:   &Editor{},
		Out:      &bytes.Buffer{},
		Err:      &bytes.Buffer{},
	}
	h.Console = &console.Console{
		Selector:         sel,
		Prompter:         h.Prompter,
		Editor:           h.Editor,
		Printer:          printers.NewYAMLPrinter(),
		Out:              h.Out,
		Err:              h.Err,
		BatchConcurrency: 1,
	}
	return h
}

// Frame is the identifier frame a label ends with, for choosing by id.
func Frame(id string) string { return "⟨" + id + "⟩" }

// Choose builds a Selector choice picking the given identifiers.
func Choose(ids ...string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, Frame(id))
	}
	return out
}
