package importer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PIO-VIA/blood-bank/internal/domain/donation"
	"github.com/PIO-VIA/blood-bank/internal/domain/donor"
	"github.com/PIO-VIA/blood-bank/internal/domain/product"
	"github.com/PIO-VIA/blood-bank/internal/domain/screening"
)

type fakeTx struct {
	failCommit bool
}

func (f *fakeTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := fn(ctx); err != nil {
		return err
	}
	if f.failCommit {
		return errors.New("commit failed")
	}
	return nil
}

type fakeDonorRepo struct {
	donors map[string]*donor.Donor
}

func newFakeDonorRepo() *fakeDonorRepo {
	return &fakeDonorRepo{donors: map[string]*donor.Donor{}}
}

func (f *fakeDonorRepo) Upsert(_ context.Context, d *donor.Donor) error {
	cp := *d
	f.donors[d.ID] = &cp
	return nil
}

func (f *fakeDonorRepo) GetByID(_ context.Context, id string) (*donor.Donor, error) {
	d, ok := f.donors[id]
	if !ok {
		return nil, donor.ErrNotFound
	}
	return d, nil
}

func (f *fakeDonorRepo) Exists(_ context.Context, id string) (bool, error) {
	_, ok := f.donors[id]
	return ok, nil
}

type fakeDonationRepo struct {
	donations map[string]*donation.Donation
}

func newFakeDonationRepo() *fakeDonationRepo {
	return &fakeDonationRepo{donations: map[string]*donation.Donation{}}
}

func (f *fakeDonationRepo) Upsert(_ context.Context, d *donation.Donation) error {
	cp := *d
	f.donations[d.ID] = &cp
	return nil
}

func (f *fakeDonationRepo) GetByID(_ context.Context, id string) (*donation.Donation, error) {
	d, ok := f.donations[id]
	if !ok {
		// Wrapped like a caller adding context would; consumers must
		// match the sentinel with errors.Is, not equality.
		return nil, fmt.Errorf("donation %s: %w", id, donation.ErrNotFound)
	}
	return d, nil
}

func (f *fakeDonationRepo) ExistsForDonorOnDate(_ context.Context, donorID string, date time.Time, excludeID string) (bool, error) {
	for _, d := range f.donations {
		if d.DonorID == donorID && d.ID != excludeID && sameDay(d.DonationDate, date) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeDonationRepo) ListSince(_ context.Context, cutoff time.Time) ([]*donation.Donation, error) {
	var out []*donation.Donation
	for _, d := range f.donations {
		if !d.DonationDate.Before(cutoff) {
			out = append(out, d)
		}
	}
	return out, nil
}

func sameDay(a, b time.Time) bool {
	return a.Format("2006-01-02") == b.Format("2006-01-02")
}

type fakeProductRepo struct {
	products map[string]*product.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: map[string]*product.Product{}}
}

func (f *fakeProductRepo) Upsert(_ context.Context, p *product.Product) error {
	cp := *p
	f.products[p.ID] = &cp
	return nil
}

func (f *fakeProductRepo) GetByID(_ context.Context, id string) (*product.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return p, nil
}

func (f *fakeProductRepo) ListByStatus(_ context.Context, statuses []string) ([]*product.Product, error) {
	var out []*product.Product
	for _, p := range f.products {
		for _, s := range statuses {
			if p.Status == s {
				out = append(out, p)
				break
			}
		}
	}
	return out, nil
}

type fakeScreeningRepo struct {
	results []*screening.Result
}

func (f *fakeScreeningRepo) Create(_ context.Context, r *screening.Result) error {
	cp := *r
	f.results = append(f.results, &cp)
	return nil
}
