package remote

import (
	"context"
	"fmt"

	"cloudpick/internal/domain"
	"cloudpick/internal/paginate"
)

// Listing describes a cursor-paginated list endpoint of the platform API.
// Token field names differ between services (NextToken, nextToken,
// ContinuationToken/NextContinuationToken), so both sides are configurable.
type Listing struct {
	Endpoint domain.Endpoint
	Params   domain.Params

	// ItemsField is the response array holding the page's records.
	ItemsField string
	// TokenParam is the request field that carries the cursor.
	TokenParam string
	// NextField is the response field that carries the next cursor.
	// Defaults to TokenParam.
	NextField string
	// IDField names the identifier of each record. When records are bare
	// strings (e.g. queue URLs) they are wrapped as {IDField: value}.
	IDField string
}

// Fetcher returns a page fetcher bound to inv.
func (l Listing) Fetcher(inv domain.Invoker) paginate.FetchFunc[domain.Entity] {
	return func(ctx context.Context, token string) (domain.Page[domain.Entity], error) {
		params := l.Params.With(nil)
		if token != "" {
			params[l.TokenParam] = token
		}

		res, err := inv.Invoke(ctx, l.Endpoint, params)
		if err != nil {
			return domain.Page[domain.Entity]{}, err
		}
		return l.decode(res)
	}
}

// All enumerates every record behind the listing.
func (l Listing) All(ctx context.Context, inv domain.Invoker) ([]domain.Entity, error) {
	return paginate.Enumerate(ctx, l.Fetcher(inv))
}

func (l Listing) decode(res domain.Result) (domain.Page[domain.Entity], error) {
	var page domain.Page[domain.Entity]

	nextField := l.NextField
	if nextField == "" {
		nextField = l.TokenParam
	}
	if next, ok := res[nextField].(string); ok {
		page.NextToken = next
	}

	raw, ok := res[l.ItemsField]
	if !ok || raw == nil {
		return page, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return page, fmt.Errorf("%s: field %q is %T, want array", l.Endpoint, l.ItemsField, raw)
	}

	page.Items = make([]domain.Entity, 0, len(items))
	for i, item := range items {
		e, err := ToEntity(l.IDField, item)
		if err != nil {
			return page, fmt.Errorf("%s: %s[%d]: %w", l.Endpoint, l.ItemsField, i, err)
		}
		page.Items = append(page.Items, e)
	}
	return page, nil
}

// ToEntity converts one decoded JSON record into an Entity.
func ToEntity(idField string, item any) (domain.Entity, error) {
	switch v := item.(type) {
	case map[string]any:
		return domain.NewEntity(idField, v)
	case string:
		return domain.NewEntity(idField, map[string]any{idField: v})
	}
	return domain.Entity{}, fmt.Errorf("record is %T, want object or string", item)
}

// Entities converts a response array that is not paginated.
func Entities(res domain.Result, itemsField, idField string) ([]domain.Entity, error) {
	page, err := Listing{ItemsField: itemsField, IDField: idField}.decode(res)
	return page.Items, err
}
