package importer

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/PIO-VIA/blood-bank/internal/domain/donation"
	"github.com/PIO-VIA/blood-bank/internal/domain/donor"
	"github.com/PIO-VIA/blood-bank/internal/domain/product"
	"github.com/PIO-VIA/blood-bank/internal/domain/screening"
	"github.com/PIO-VIA/blood-bank/internal/platform/metrics"
)

// Report is the outcome of one import batch. A batch always completes:
// rejected records land in Errors while the rest are persisted, so
// ImportedCount+FailedCount equals the batch size.
type Report struct {
	Status        string   `json:"status"`
	ImportedCount int      `json:"imported_count"`
	FailedCount   int      `json:"failed_count"`
	Errors        []string `json:"errors"`
	Message       string   `json:"message"`
}

func newReport(imported int, errs []string, entity string) *Report {
	if errs == nil {
		errs = []string{}
	}
	return &Report{
		Status:        "completed",
		ImportedCount: imported,
		FailedCount:   len(errs),
		Errors:        errs,
		Message:       fmt.Sprintf("Successfully imported %d %s", imported, entity),
	}
}

// txRunner runs a unit of work atomically; satisfied by db.Transactor.
type txRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service persists import batches. Each batch is validated first, then the
// surviving records are written inside a single transaction: a store failure
// rolls the whole batch back and surfaces as an error, never as a partial
// write.
type Service struct {
	tx         txRunner
	donors     donor.Repository
	donations  donation.Repository
	products   product.Repository
	screenings screening.Repository
	validator  *Validator
	metrics    *metrics.Metrics
	log        zerolog.Logger
}

func NewService(
	tx txRunner,
	donors donor.Repository,
	donations donation.Repository,
	products product.Repository,
	screenings screening.Repository,
	validator *Validator,
	m *metrics.Metrics,
	log zerolog.Logger,
) *Service {
	return &Service{
		tx:         tx,
		donors:     donors,
		donations:  donations,
		products:   products,
		screenings: screenings,
		validator:  validator,
		metrics:    m,
		log:        log.With().Str("component", "importer").Logger(),
	}
}

// ImportDonors upserts every donor in the batch. Donors carry no
// store-dependent rules, so the only failure mode is a store error, which
// aborts the batch.
func (s *Service) ImportDonors(ctx context.Context, reqs []DonorRequest) (*Report, error) {
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		for i := range reqs {
			if err := s.donors.Upsert(ctx, reqs[i].ToModel()); err != nil {
				return fmt.Errorf("upsert donor %s: %w", reqs[i].ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Int("imported", len(reqs)).Msg("donors import completed")
	s.observe("donors", len(reqs), 0)
	return newReport(len(reqs), nil, "donors"), nil
}

// ImportDonations validates the batch, persists the valid records atomically
// and reports the rejected ones.
func (s *Service) ImportDonations(ctx context.Context, reqs []DonationRequest) (*Report, error) {
	batch := make([]*donation.Donation, len(reqs))
	for i := range reqs {
		batch[i] = reqs[i].ToModel()
	}

	valid, errs, err := s.validator.ValidateDonations(ctx, batch)
	if err != nil {
		return nil, err
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		for _, d := range valid {
			if err := s.donations.Upsert(ctx, d); err != nil {
				return fmt.Errorf("upsert donation %s: %w", d.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Int("imported", len(valid)).Int("failed", len(errs)).Msg("donations import completed")
	s.observe("donations", len(valid), len(errs))
	return newReport(len(valid), errs, "donations"), nil
}

// ImportProducts validates the batch against its source donations, persists
// the valid records atomically and reports the rejected ones.
func (s *Service) ImportProducts(ctx context.Context, reqs []ProductRequest) (*Report, error) {
	batch := make([]*product.Product, len(reqs))
	for i := range reqs {
		batch[i] = reqs[i].ToModel()
	}

	valid, errs, err := s.validator.ValidateProducts(ctx, batch)
	if err != nil {
		return nil, err
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		for _, p := range valid {
			if err := s.products.Upsert(ctx, p); err != nil {
				return fmt.Errorf("upsert product %s: %w", p.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Int("imported", len(valid)).Int("failed", len(errs)).Msg("blood products import completed")
	s.observe("blood_products", len(valid), len(errs))
	return newReport(len(valid), errs, "blood products"), nil
}

// ImportScreeningResults appends one row per result whose donor exists.
// Results never update: each accepted record gets a fresh identifier.
func (s *Service) ImportScreeningResults(ctx context.Context, reqs []ScreeningRequest) (*Report, error) {
	var accepted []*screening.Result
	var errs []string

	for i := range reqs {
		exists, err := s.donors.Exists(ctx, reqs[i].DonorID)
		if err != nil {
			return nil, fmt.Errorf("check donor %s: %w", reqs[i].DonorID, err)
		}
		if !exists {
			errs = append(errs, fmt.Sprintf("Screening result for donor %s: Donor not found", reqs[i].DonorID))
			continue
		}
		r := reqs[i].ToModel()
		r.ID = uuid.NewString()
		accepted = append(accepted, r)
	}

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		for _, r := range accepted {
			if err := s.screenings.Create(ctx, r); err != nil {
				return fmt.Errorf("create screening result %s: %w", r.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Int("imported", len(accepted)).Int("failed", len(errs)).Msg("screening results import completed")
	s.observe("screening_results", len(accepted), len(errs))
	return newReport(len(accepted), errs, "screening results"), nil
}

func (s *Service) observe(entity string, imported, failed int) {
	if s.metrics != nil {
		s.metrics.ObserveImport(entity, imported, failed)
	}
}
