package types

import "context"

// Handler runs one subcommand. Handlers own their argument interpretation.
type Handler func(ctx context.Context, args []string) error

// SubcommandDescriptor binds a subcommand name to its handler.
type SubcommandDescriptor struct {
	Name        string
	Description string
	Usage       string
	Run         Handler
}

// DomainDescriptor is the registration record of one resource domain.
// Subcommands are listed in display order.
type DomainDescriptor struct {
	Name        string
	Description string
	Subcommands []SubcommandDescriptor
}
