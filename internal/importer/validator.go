package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PIO-VIA/blood-bank/internal/domain/donation"
	"github.com/PIO-VIA/blood-bank/internal/domain/donor"
	"github.com/PIO-VIA/blood-bank/internal/domain/product"
)

// Validator applies the store-dependent business rules a batch must pass
// before it is persisted or exported. It only reads; the first rule a record
// breaks produces its error and stops further checks for that record.
type Validator struct {
	donors    donor.Repository
	donations donation.Repository
}

func NewValidator(donors donor.Repository, donations donation.Repository) *Validator {
	return &Validator{donors: donors, donations: donations}
}

// ValidateDonations splits the batch into records that pass every rule and
// one error string per rejected record. The returned error is reserved for
// store failures; rule breaks never abort the batch.
func (v *Validator) ValidateDonations(ctx context.Context, batch []*donation.Donation) ([]*donation.Donation, []string, error) {
	valid := make([]*donation.Donation, 0, len(batch))
	var errs []string

	now := time.Now()
	oldest := now.AddDate(-1, 0, 0)
	seen := map[string]bool{}

	for _, d := range batch {
		exists, err := v.donors.Exists(ctx, d.DonorID)
		if err != nil {
			return nil, nil, fmt.Errorf("check donor %s: %w", d.DonorID, err)
		}
		if !exists {
			errs = append(errs, fmt.Sprintf("Donation %s: Donor %s not found", d.ID, d.DonorID))
			continue
		}

		if d.DonationDate.After(now) {
			errs = append(errs, fmt.Sprintf("Donation %s: Future donation date not allowed", d.ID))
			continue
		}
		if d.DonationDate.Before(oldest) {
			errs = append(errs, fmt.Sprintf("Donation %s: Donation date too old (>1 year)", d.ID))
			continue
		}

		if d.VolumeCollected < 300 || d.VolumeCollected > 500 {
			errs = append(errs, fmt.Sprintf("Donation %s: Invalid volume %vml", d.ID, d.VolumeCollected))
			continue
		}

		day := d.DonationDate.Format("2006-01-02")
		dup, err := v.donations.ExistsForDonorOnDate(ctx, d.DonorID, d.DonationDate, d.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("check duplicate donation for donor %s: %w", d.DonorID, err)
		}
		if dup || seen[d.DonorID+"|"+day] {
			errs = append(errs, fmt.Sprintf("Donation %s: Duplicate donation for donor %s on %s", d.ID, d.DonorID, day))
			continue
		}
		seen[d.DonorID+"|"+day] = true

		valid = append(valid, d)
	}
	return valid, errs, nil
}

// ValidateProducts applies the product rules: the source donation must
// exist, expiry must follow collection, blood type and volume must agree
// with the source donation, and a recorded temperature must sit inside the
// cold-chain range for the product type.
func (v *Validator) ValidateProducts(ctx context.Context, batch []*product.Product) ([]*product.Product, []string, error) {
	valid := make([]*product.Product, 0, len(batch))
	var errs []string

	for _, p := range batch {
		src, err := v.donations.GetByID(ctx, p.DonationID)
		if errors.Is(err, donation.ErrNotFound) {
			errs = append(errs, fmt.Sprintf("Product %s: Source donation %s not found", p.ID, p.DonationID))
			continue
		}
		if err != nil {
			return nil, nil, fmt.Errorf("load donation %s: %w", p.DonationID, err)
		}

		if !p.ExpiryDate.After(p.CollectionDate) {
			errs = append(errs, fmt.Sprintf("Product %s: Expiry date must be after collection date", p.ID))
			continue
		}

		if p.BloodType != src.BloodType {
			errs = append(errs, fmt.Sprintf("Product %s: Blood type mismatch with source donation", p.ID))
			continue
		}

		if p.Volume > src.VolumeCollected {
			errs = append(errs, fmt.Sprintf("Product %s: Volume exceeds source donation volume", p.ID))
			continue
		}

		if p.ColdChainViolation() {
			if strings.EqualFold(p.ProductType, product.TypePlasma) {
				errs = append(errs, fmt.Sprintf("Product %s: Plasma must be stored below -18°C", p.ID))
			} else {
				errs = append(errs, fmt.Sprintf("Product %s: Invalid temperature %v°C for %s", p.ID, *p.Temperature, p.ProductType))
			}
			continue
		}

		valid = append(valid, p)
	}
	return valid, errs, nil
}
