// Package paginate fully enumerates cursor-paginated collections.
//
// Enumeration starts with the empty token and stops on the first page whose
// NextToken is empty; nothing else (page count, page size, item count) ends
// it. A failed fetch aborts immediately and the items gathered so far are
// returned together with a *PageError, so callers can show partial results
// without mistaking them for complete ones.
//
// Pages are appended in fetch order and items keep their in-page order. If the
// remote collection changes while it is being walked, items may be missed or
// repeated; that race is inherent to cursors and is not hidden here.
package paginate

import (
	"context"
	"errors"
	"fmt"

	"cloudpick/internal/domain"
)

// ErrCursorLoop reports a page that handed back the token used to fetch it.
var ErrCursorLoop = errors.New("continuation token did not advance")

// FetchFunc retrieves the page addressed by token ("" for the first page).
type FetchFunc[T any] func(ctx context.Context, token string) (domain.Page[T], error)

// PageError is the failure flag of an aborted enumeration. Page is the
// 1-based index of the page that failed.
type PageError struct {
	Page int
	Err  error
}

func (e *PageError) Error() string { return fmt.Sprintf("page %d: %v", e.Page, e.Err) }

func (e *PageError) Unwrap() error { return e.Err }

// Enumerate collects every item of the collection behind fetch.
// On error the returned slice holds the items of all pages fetched before the
// failure.
func Enumerate[T any](ctx context.Context, fetch FetchFunc[T]) ([]T, error) {
	var all []T
	err := EnumerateEach(ctx, fetch, func(page domain.Page[T]) error {
		all = append(all, page.Items...)
		return nil
	})
	return all, err
}

// EnumerateEach walks the collection and hands every page to visit in order.
// An error from visit stops the walk and is returned unchanged.
func EnumerateEach[T any](ctx context.Context, fetch FetchFunc[T], visit func(domain.Page[T]) error) error {
	token := ""
	for n := 1; ; n++ {
		if err := ctx.Err(); err != nil {
			return &PageError{Page: n, Err: err}
		}

		page, err := fetch(ctx, token)
		if err != nil {
			return &PageError{Page: n, Err: err}
		}
		if err := visit(page); err != nil {
			return err
		}

		if page.Last() {
			return nil
		}
		if page.NextToken == token {
			return &PageError{Page: n, Err: ErrCursorLoop}
		}
		token = page.NextToken
	}
}
