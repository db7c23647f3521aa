// Package resource implements the generic paginated-resource machinery
// behind every management screen: a query controller owning
// paging/sort/search/filter state with stale-response protection, and a
// mutation coordinator that re-synchronizes the list after writes.
package resource

import "context"

// SortOrder is the direction of a sort.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Flip returns the opposite order.
func (o SortOrder) Flip() SortOrder {
	if o == SortAsc {
		return SortDesc
	}
	return SortAsc
}

// Query is the full list-view state driving the next fetch.
type Query struct {
	Page       int
	SortKey    string
	SortOrder  SortOrder
	Search     string
	RoleFilter string
}

// Page is one fetched page of a resource list. It is replaced wholesale
// on every successful fetch, never patched in place.
type Page[T any] struct {
	Items       []T
	CurrentPage int
	TotalPages  int
	Error       string
}

// FetchFunc retrieves one page for a query.
type FetchFunc[T any] func(ctx context.Context, q Query) (Page[T], error)
