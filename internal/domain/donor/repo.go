package donor

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a donor lookup matches no row.
var ErrNotFound = errors.New("donor not found")

type Repository interface {
	// Upsert inserts the donor or, when the identifier already exists,
	// overwrites the mutable fields and refreshes updated_at.
	Upsert(ctx context.Context, d *Donor) error
	GetByID(ctx context.Context, id string) (*Donor, error)
	Exists(ctx context.Context, id string) (bool, error)
}
