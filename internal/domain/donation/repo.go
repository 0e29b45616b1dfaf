package donation

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a donation lookup matches no row.
var ErrNotFound = errors.New("donation not found")

type Repository interface {
	// Upsert inserts the donation or, when the identifier already exists,
	// overwrites the mutable fields and refreshes updated_at.
	Upsert(ctx context.Context, d *Donation) error
	GetByID(ctx context.Context, id string) (*Donation, error)
	// ExistsForDonorOnDate reports whether the donor already has a donation
	// on the same calendar day under a different identifier. Used by the
	// duplicate-donation rule; excludeID skips the record itself on update.
	ExistsForDonorOnDate(ctx context.Context, donorID string, date time.Time, excludeID string) (bool, error)
	// ListSince returns donations dated on or after the cutoff, newest first.
	ListSince(ctx context.Context, cutoff time.Time) ([]*Donation, error)
}
