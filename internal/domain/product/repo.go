package product

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a product lookup matches no row.
var ErrNotFound = errors.New("blood product not found")

type Repository interface {
	// Upsert inserts the product or, when the identifier already exists,
	// overwrites the mutable fields and refreshes updated_at.
	Upsert(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id string) (*Product, error)
	// ListByStatus returns products whose status is in the given set.
	ListByStatus(ctx context.Context, statuses []string) ([]*Product, error)
}
