package selection

import (
	"context"
	"fmt"

	"cloudpick/internal/domain"
)

// Pick formats entities, lets the user choose one and resolves the choice.
// An aborted or empty selection returns domain.ErrNothingSelected.
func Pick(
	ctx context.Context,
	sel domain.Selector,
	codec *Codec,
	entities []domain.Entity,
	prompt string,
) (domain.Entity, error) {
	chosen, err := choose(ctx, sel, codec, entities, false, prompt)
	if err != nil {
		return domain.Entity{}, err
	}
	return codec.Resolve(chosen[0], entities)
}

// PickMany is Pick with multi-select. Entities come back in selection order.
func PickMany(
	ctx context.Context,
	sel domain.Selector,
	codec *Codec,
	entities []domain.Entity,
	prompt string,
) ([]domain.Entity, error) {
	chosen, err := choose(ctx, sel, codec, entities, true, prompt)
	if err != nil {
		return nil, err
	}
	return codec.ResolveAll(chosen, entities)
}

func choose(
	ctx context.Context,
	sel domain.Selector,
	codec *Codec,
	entities []domain.Entity,
	multiple bool,
	prompt string,
) ([]string, error) {
	if len(entities) == 0 {
		return nil, fmt.Errorf("%w: no %s candidates", domain.ErrNothingSelected, prompt)
	}
	chosen, err := sel.Select(ctx, codec.Format(entities), multiple, prompt)
	if err != nil {
		return nil, err
	}
	if len(chosen) == 0 {
		return nil, domain.ErrNothingSelected
	}
	return chosen, nil
}

// IDs returns the identifiers of entities, in order.
func IDs(entities []domain.Entity) []string {
	out := make([]string, 0, len(entities))
	for _, e := range entities {
		out = append(out, e.ID())
	}
	return out
}
