package catalog

import (
	"context"
)

//go:generate mockgen -source=ports.go -destination=mock_repository.go -package=catalog

// Repository is the persistent Catalog Store. Implementations keep each kind's ranks
// dense: Create assigns max(rank)+1 and Delete renumbers the survivors, each inside a
// single transaction.
type Repository interface {
	// Create stores it, filling in ID and Rank.
	Create(ctx context.Context, k Kind, it *Item) error
	List(ctx context.Context, k Kind, f Filter) ([]Item, error)
	Get(ctx context.Context, k Kind, id int64) (Item, error)
	Delete(ctx context.Context, k Kind, id int64) error
}
