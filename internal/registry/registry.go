package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloudpick/internal/domain"
)

var (
	// ErrUnknownDomain is wrapped by the UsageError for an unregistered domain.
	ErrUnknownDomain = errors.New("unknown domain")
	// ErrUnknownSubcommand is wrapped by the UsageError for a subcommand the
	// domain does not have.
	ErrUnknownSubcommand = errors.New("unknown subcommand")
)

// UsageError is returned by Dispatch when a name does not resolve. No handler
// has run when it is returned.
type UsageError struct {
	Name    string
	Choices []string
	Err     error
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("%v %q (choose one of: %s)", e.Err, e.Name, strings.Join(e.Choices, ", "))
}

func (e *UsageError) Unwrap() error { return e.Err }

type entry struct {
	desc  domain.DomainDescriptor
	index map[string]int
}

// Builder accumulates registrations. It is not safe for concurrent use.
type Builder struct {
	entries []entry
	byName  map[string]int
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{byName: make(map[string]int)}
}

// Register validates d and appends it.
func (b *Builder) Register(d domain.DomainDescriptor) error {
	if d.Name == "" {
		return errors.New("register: domain name must not be empty")
	}
	if _, dup := b.byName[d.Name]; dup {
		return fmt.Errorf("register %s: duplicate domain", d.Name)
	}

	subs := make([]domain.SubcommandDescriptor, len(d.Subcommands))
	copy(subs, d.Subcommands)
	index := make(map[string]int, len(subs))
	for i, s := range subs {
		if s.Name == "" {
			return fmt.Errorf("register %s: subcommand %d has no name", d.Name, i)
		}
		if s.Run == nil {
			return fmt.Errorf("register %s %s: nil handler", d.Name, s.Name)
		}
		if _, dup := index[s.Name]; dup {
			return fmt.Errorf("register %s %s: duplicate subcommand", d.Name, s.Name)
		}
		index[s.Name] = i
	}
	d.Subcommands = subs

	b.byName[d.Name] = len(b.entries)
	b.entries = append(b.entries, entry{desc: d, index: index})
	return nil
}

// MustRegister is Register for static wiring.
func (b *Builder) MustRegister(ds ...domain.DomainDescriptor) *Builder {
	for _, d := range ds {
		if err := b.Register(d); err != nil {
			panic(err)
		}
	}
	return b
}

// Build freezes the registrations. The Builder must not be used afterwards.
func (b *Builder) Build() *Registry {
	r := &Registry{entries: b.entries, byName: b.byName}
	b.entries, b.byName = nil, nil
	return r
}

// Registry is immutable and safe for concurrent readers.
type Registry struct {
	entries []entry
	byName  map[string]int
}

// Dispatch runs the handler bound to domainName/subName exactly once.
func (r *Registry) Dispatch(ctx context.Context, domainName, subName string, args []string) error {
	e, err := r.entry(domainName)
	if err != nil {
		return err
	}
	i, ok := e.index[subName]
	if !ok {
		return &UsageError{Name: subName, Choices: subNames(e.desc), Err: ErrUnknownSubcommand}
	}
	return e.desc.Subcommands[i].Run(ctx, args)
}

// ListDomains returns domain names in registration order.
func (r *Registry) ListDomains() []string {
	out := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.desc.Name)
	}
	return out
}

// ListSubcommands returns the subcommands of a domain in registration order.
func (r *Registry) ListSubcommands(domainName string) ([]string, error) {
	e, err := r.entry(domainName)
	if err != nil {
		return nil, err
	}
	return subNames(e.desc), nil
}

// Lookup returns the descriptor registered under domainName.
func (r *Registry) Lookup(domainName string) (domain.DomainDescriptor, bool) {
	i, ok := r.byName[domainName]
	if !ok {
		return domain.DomainDescriptor{}, false
	}
	return r.entries[i].desc, true
}

// Domains returns every descriptor in registration order.
func (r *Registry) Domains() []domain.DomainDescriptor {
	out := make([]domain.DomainDescriptor, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.desc)
	}
	return out
}

// Completions suggests the next word given the words typed so far, as
// "name\tdescription" pairs for shell completion.
func (r *Registry) Completions(args []string) []string {
	switch len(args) {
	case 0:
		out := make([]string, 0, len(r.entries))
		for _, e := range r.entries {
			out = append(out, e.desc.Name+"\t"+e.desc.Description)
		}
		return out
	case 1:
		d, ok := r.Lookup(args[0])
		if !ok {
			return nil
		}
		out := make([]string, 0, len(d.Subcommands))
		for _, s := range d.Subcommands {
			out = append(out, s.Name+"\t"+s.Description)
		}
		return out
	}
	return nil
}

func (r *Registry) entry(name string) (entry, error) {
	i, ok := r.byName[name]
	if !ok {
		return entry{}, &UsageError{Name: name, Choices: r.ListDomains(), Err: ErrUnknownDomain}
	}
	return r.entries[i], nil
}

func subNames(d domain.DomainDescriptor) []string {
	out := make([]string, 0, len(d.Subcommands))
	for _, s := range d.Subcommands {
		out = append(out, s.Name)
	}
	return out
}
