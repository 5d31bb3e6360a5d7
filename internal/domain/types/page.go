package types

// Page is one slice of a cursor-paginated collection. An empty NextToken
// marks the last page.
type Page[T any] struct {
	Items     []T
	NextToken string
}

// Last reports whether no further pages exist.
func (p Page[T]) Last() bool { return p.NextToken == "" }
