package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloudpick/internal/domain"
)

type recorder struct {
	calls []string
	args  [][]string
}

func (r *recorder) handler(name string) domain.Handler {
	return func(_ context.Context, args []string) error {
		r.calls = append(r.calls, name)
		r.args = append(r.args, args)
		return nil
	}
}

func storageAndQueue(rec *recorder) []domain.DomainDescriptor {
	return []domain.DomainDescriptor{
		{
			Name:        "storage",
			Description: "object storage",
			Subcommands: []domain.SubcommandDescriptor{
				{Name: "list", Description: "list objects", Run: rec.handler("storage list")},
				{Name: "remove", Description: "remove objects", Run: rec.handler("storage remove")},
			},
		},
		{
			Name:        "queue",
			Description: "message queues",
			Subcommands: []domain.SubcommandDescriptor{
				{Name: "send", Description: "send a message", Run: rec.handler("queue send")},
			},
		},
	}
}

func build(t *testing.T, rec *recorder) *Registry {
	t.Helper()
	b := NewBuilder()
	for _, d := range storageAndQueue(rec) {
		require.NoError(t, b.Register(d))
	}
	return b.Build()
}

func TestRegistry_RegistrationOrder(t *testing.T) {
	r := build(t, &recorder{})

	assert.Equal(t, []string{"storage", "queue"}, r.ListDomains())
	subs, err := r.ListSubcommands("storage")
	require.NoError(t, err)
	assert.Equal(t, []string{"list", "remove"}, subs)
}

func TestRegistry_DispatchKnown(t *testing.T) {
	rec := &recorder{}
	r := build(t, rec)

	require.NoError(t, r.Dispatch(context.Background(), "queue", "send", []string{"https://q"}))
	assert.Equal(t, []string{"queue send"}, rec.calls)
	assert.Equal(t, [][]string{{"https://q"}}, rec.args)
}

func TestRegistry_DispatchUnknown(t *testing.T) {
	rec := &recorder{}
	r := build(t, rec)

	err := r.Dispatch(context.Background(), "compute", "list", nil)
	var usage *UsageError
	require.ErrorAs(t, err, &usage)
	assert.ErrorIs(t, err, ErrUnknownDomain)
	assert.Equal(t, []string{"storage", "queue"}, usage.Choices)

	err = r.Dispatch(context.Background(), "storage", "frobnicate", nil)
	require.ErrorAs(t, err, &usage)
	assert.ErrorIs(t, err, ErrUnknownSubcommand)
	assert.Equal(t, []string{"list", "remove"}, usage.Choices)

	assert.Empty(t, rec.calls)
}

func TestRegistry_HandlerErrorPropagates(t *testing.T) {
	boom := errors.New("boom")
	b := NewBuilder()
	require.NoError(t, b.Register(domain.DomainDescriptor{
		Name: "jobs",
		Subcommands: []domain.SubcommandDescriptor{{
			Name: "list",
			Run:  func(context.Context, []string) error { return boom },
		}},
	}))
	r := b.Build()

	assert.ErrorIs(t, r.Dispatch(context.Background(), "jobs", "list", nil), boom)
}

func TestBuilder_RejectsInvalid(t *testing.T) {
	noop := func(context.Context, []string) error { return nil }
	tests := []struct {
		name string
		desc domain.DomainDescriptor
	}{
		{"empty domain", domain.DomainDescriptor{}},
		{"empty subcommand", domain.DomainDescriptor{
			Name:        "logs",
			Subcommands: []domain.SubcommandDescriptor{{Run: noop}},
		}},
		{"nil handler", domain.DomainDescriptor{
			Name:        "logs",
			Subcommands: []domain.SubcommandDescriptor{{Name: "tail"}},
		}},
		{"duplicate subcommand", domain.DomainDescriptor{
			Name: "logs",
			Subcommands: []domain.SubcommandDescriptor{
				{Name: "tail", Run: noop},
				{Name: "tail", Run: noop},
			},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, NewBuilder().Register(tt.desc))
		})
	}

	b := NewBuilder()
	require.NoError(t, b.Register(domain.DomainDescriptor{Name: "logs"}))
	assert.Error(t, b.Register(domain.DomainDescriptor{Name: "logs"}))
}

func TestRegistry_Completions(t *testing.T) {
	r := build(t, &recorder{})

	assert.Equal(t, []string{"storage\tobject storage", "queue\tmessage queues"}, r.Completions(nil))
	assert.Equal(t, []string{"send\tsend a message"}, r.Completions([]string{"queue"}))
	assert.Nil(t, r.Completions([]string{"nope"}))
	assert.Nil(t, r.Completions([]string{"queue", "send"}))

	d, ok := r.Lookup("storage")
	require.True(t, ok)
	assert.Len(t, d.Subcommands, 2)
}
