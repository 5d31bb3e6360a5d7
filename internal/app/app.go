package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloudpick/internal/ctxlog"
	"cloudpick/internal/domain"
	"cloudpick/internal/registry"
	"cloudpick/internal/selection"
)

var menuCodec = selection.MustCodec(selection.Column{Field: "description", Width: 44})

// App runs dispatches against a built registry.
type App struct {
	Registry *registry.Registry
	Selector domain.Selector
	Err      io.Writer
}

func New(reg *registry.Registry, sel domain.Selector, errOut io.Writer) *App {
	return &App{Registry: reg, Selector: sel, Err: errOut}
}

// FromWire builds the App over a wired dependency graph.
func FromWire(w *Wire) *App {
	return New(w.Registry, w.Console.Selector, w.Console.Err)
}

// Run dispatches one "domain subcommand args..." request. Usage mistakes and
// aborted selections are reported to the user and are not errors.
func (a *App) Run(ctx context.Context, domainName, subName string, args []string) error {
	err := a.Registry.Dispatch(ctx, domainName, subName, args)
	switch {
	case err == nil:
		return nil
	case isUsage(err):
		fmt.Fprintf(a.Err, "error: %v\n", err)
		return nil
	case domain.NoSelection(err):
		ctxlog.FromContext(ctx).Debug("nothing selected", "domain", domainName, "subcommand", subName)
		return nil
	}
	return fmt.Errorf("%s %s: %w", domainName, subName, err)
}

// Interactive lets the user pick a domain and a subcommand repeatedly until
// the domain selection is aborted. domainName, when set, skips the first
// domain pick. Handler failures are printed and the loop continues.
func (a *App) Interactive(ctx context.Context, domainName string) error {
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		name := domainName
		domainName = ""
		if name == "" {
			picked, err := a.pickDomain(ctx)
			if domain.NoSelection(err) || (err != nil && ctx.Err() != nil) {
				return nil
			}
			if err != nil {
				return err
			}
			name = picked
		}

		sub, err := a.pickSubcommand(ctx, name)
		if domain.NoSelection(err) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if isUsage(err) {
				fmt.Fprintf(a.Err, "error: %v\n", err)
				continue
			}
			return err
		}

		if err := a.Run(ctx, name, sub, nil); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			fmt.Fprintf(a.Err, "error: %v\n", err)
		}
	}
}

func (a *App) pickDomain(ctx context.Context) (string, error) {
	var menu []domain.Entity
	for _, d := range a.Registry.Domains() {
		e, err := menuEntry(d.Name, d.Description)
		if err != nil {
			return "", err
		}
		menu = append(menu, e)
	}
	e, err := selection.Pick(ctx, a.Selector, menuCodec, menu, "domain")
	if err != nil {
		return "", err
	}
	return e.ID(), nil
}

func (a *App) pickSubcommand(ctx context.Context, domainName string) (string, error) {
	d, ok := a.Registry.Lookup(domainName)
	if !ok {
		_, err := a.Registry.ListSubcommands(domainName)
		return "", err
	}
	var menu []domain.Entity
	for _, s := range d.Subcommands {
		e, err := menuEntry(s.Name, s.Description)
		if err != nil {
			return "", err
		}
		menu = append(menu, e)
	}
	e, err := selection.Pick(ctx, a.Selector, menuCodec, menu, domainName)
	if err != nil {
		return "", err
	}
	return e.ID(), nil
}

func menuEntry(name, description string) (domain.Entity, error) {
	return domain.NewEntityFromFields("name",
		domain.Field{Name: "name", Value: name},
		domain.Field{Name: "description", Value: description},
	)
}

func isUsage(err error) bool {
	var u *registry.UsageError
	return errors.As(err, &u)
}
