package analytics

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/PIO-VIA/blood-bank/internal/domain/donation"
)

// DefaultDaysBack is the inventory-analytics window when none is given.
const DefaultDaysBack = 30

const (
	lowStockThreshold = 5
	outlierSigma      = 2.0
	expiringDays      = 7
	outlierWindowDays = 30
)

type Service struct {
	repo      Repository
	donations donation.Repository
	log       zerolog.Logger
}

func NewService(repo Repository, donations donation.Repository, log zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		donations: donations,
		log:       log.With().Str("component", "analytics").Logger(),
	}
}

type InventoryAnalytics struct {
	BloodTypeDistribution map[string]int    `json:"blood_type_distribution"`
	StatusDistribution    map[string]int    `json:"status_distribution"`
	ExpiringProducts      int               `json:"expiring_products"`
	RecentDonations       int               `json:"recent_donations"`
	AverageDonationVolume float64           `json:"average_donation_volume"`
	AnalysisPeriodDays    int               `json:"analysis_period_days"`
	GeneratedAt           time.Time         `json:"generated_at"`
	Errors                map[string]string `json:"errors,omitempty"`
}

// InventoryAnalytics builds the dashboard aggregation over the last daysBack
// days. Each sub-query fails soft: a broken check lands in Errors while the
// rest of the report is still returned.
func (s *Service) InventoryAnalytics(ctx context.Context, daysBack int) *InventoryAnalytics {
	if daysBack <= 0 {
		daysBack = DefaultDaysBack
	}
	out := &InventoryAnalytics{
		BloodTypeDistribution: map[string]int{},
		StatusDistribution:    map[string]int{},
		AnalysisPeriodDays:    daysBack,
		GeneratedAt:           time.Now(),
	}
	fail := func(check string, err error) {
		if out.Errors == nil {
			out.Errors = map[string]string{}
		}
		out.Errors[check] = err.Error()
		s.log.Error().Err(err).Str("check", check).Msg("inventory analytics check failed")
	}

	if counts, err := s.repo.AvailableCountsByBloodType(ctx); err != nil {
		fail("blood_type_distribution", err)
	} else {
		for _, tc := range counts {
			out.BloodTypeDistribution[tc.BloodType] = tc.Count
		}
	}

	if counts, err := s.repo.StatusCounts(ctx); err != nil {
		fail("status_distribution", err)
	} else {
		for _, sc := range counts {
			out.StatusDistribution[sc.Status] = sc.Count
		}
	}

	if n, err := s.repo.ExpiringWithinDays(ctx, expiringDays); err != nil {
		fail("expiring_products", err)
	} else {
		out.ExpiringProducts = n
	}

	cutoff := time.Now().AddDate(0, 0, -daysBack)
	if recent, err := s.donations.ListSince(ctx, cutoff); err != nil {
		fail("recent_donations", err)
	} else {
		out.RecentDonations = len(recent)
		if len(recent) > 0 {
			var sum float64
			for _, d := range recent {
				sum += d.VolumeCollected
			}
			out.AverageDonationVolume = sum / float64(len(recent))
		}
	}

	return out
}

type ExpiredProduct struct {
	ProductID   string    `json:"product_id"`
	BloodType   string    `json:"blood_type"`
	ExpiryDate  time.Time `json:"expiry_date"`
	DaysExpired int       `json:"days_expired"`
}

type LowStock struct {
	BloodType      string `json:"blood_type"`
	AvailableCount int    `json:"available_count"`
}

type UnusualDonation struct {
	DonationID string    `json:"donation_id"`
	DonorID    string    `json:"donor_id"`
	Volume     float64   `json:"volume"`
	Date       time.Time `json:"date"`
	// Deviation is the distance from the 30-day mean in standard deviations.
	Deviation float64 `json:"deviation"`
}

type TemperatureViolation struct {
	ProductID          string  `json:"product_id"`
	ProductType        string  `json:"product_type"`
	CurrentTemperature float64 `json:"current_temperature"`
	Location           string  `json:"location"`
}

type AnomalyReport struct {
	ExpiredProducts       []ExpiredProduct       `json:"expired_products"`
	LowStockTypes         []LowStock             `json:"low_stock_types"`
	UnusualDonations      []UnusualDonation      `json:"unusual_donations"`
	TemperatureViolations []TemperatureViolation `json:"temperature_violations"`
	Errors                map[string]string      `json:"errors,omitempty"`
	GeneratedAt           time.Time              `json:"generated_at"`
}

// DetectAnomalies runs the four scans. Every slice is present (possibly
// empty) even when a scan fails; failures land in Errors per check.
func (s *Service) DetectAnomalies(ctx context.Context) *AnomalyReport {
	now := time.Now()
	report := &AnomalyReport{
		ExpiredProducts:       []ExpiredProduct{},
		LowStockTypes:         []LowStock{},
		UnusualDonations:      []UnusualDonation{},
		TemperatureViolations: []TemperatureViolation{},
		GeneratedAt:           now,
	}
	fail := func(check string, err error) {
		if report.Errors == nil {
			report.Errors = map[string]string{}
		}
		report.Errors[check] = err.Error()
		s.log.Error().Err(err).Str("check", check).Msg("anomaly scan failed")
	}

	if expired, err := s.repo.ExpiredAvailable(ctx); err != nil {
		fail("expired_products", err)
	} else {
		for _, p := range expired {
			report.ExpiredProducts = append(report.ExpiredProducts, ExpiredProduct{
				ProductID:   p.ID,
				BloodType:   p.BloodType,
				ExpiryDate:  p.ExpiryDate,
				DaysExpired: int(now.Sub(p.ExpiryDate).Hours() / 24),
			})
		}
	}

	if counts, err := s.repo.AvailableCountsByBloodType(ctx); err != nil {
		fail("low_stock_types", err)
	} else {
		for _, tc := range counts {
			if tc.Count < lowStockThreshold {
				report.LowStockTypes = append(report.LowStockTypes, LowStock{
					BloodType:      tc.BloodType,
					AvailableCount: tc.Count,
				})
			}
		}
	}

	if recent, err := s.donations.ListSince(ctx, now.AddDate(0, 0, -outlierWindowDays)); err != nil {
		fail("unusual_donations", err)
	} else {
		report.UnusualDonations = volumeOutliers(recent)
	}

	if violations, err := s.repo.ColdChainViolations(ctx); err != nil {
		fail("temperature_violations", err)
	} else {
		for _, p := range violations {
			if p.Temperature == nil {
				continue
			}
			report.TemperatureViolations = append(report.TemperatureViolations, TemperatureViolation{
				ProductID:          p.ID,
				ProductType:        p.ProductType,
				CurrentTemperature: *p.Temperature,
				Location:           p.Location,
			})
		}
	}

	return report
}

// volumeOutliers flags donations whose volume sits more than two standard
// deviations from the window mean. With fewer than two samples, or no
// spread at all, nothing is an outlier.
func volumeOutliers(recent []*donation.Donation) []UnusualDonation {
	out := []UnusualDonation{}
	if len(recent) < 2 {
		return out
	}

	var sum float64
	for _, d := range recent {
		sum += d.VolumeCollected
	}
	mean := sum / float64(len(recent))

	var sq float64
	for _, d := range recent {
		diff := d.VolumeCollected - mean
		sq += diff * diff
	}
	std := math.Sqrt(sq / float64(len(recent)))
	if std == 0 {
		return out
	}

	for _, d := range recent {
		dev := math.Abs(d.VolumeCollected-mean) / std
		if dev > outlierSigma {
			out = append(out, UnusualDonation{
				DonationID: d.ID,
				DonorID:    d.DonorID,
				Volume:     d.VolumeCollected,
				Date:       d.DonationDate,
				Deviation:  dev,
			})
		}
	}
	return out
}

// ConsistencyRatio reports how many products disagree with their source
// donation for one cross-field rule.
type ConsistencyRatio struct {
	TotalProducts int     `json:"total_products"`
	Inconsistent  int     `json:"inconsistent"`
	Percentage    float64 `json:"percentage"`
}

type QualityReport struct {
	DataCompleteness map[string]Completeness     `json:"data_completeness"`
	DataConsistency  map[string]ConsistencyRatio `json:"data_consistency"`
	Errors           map[string]string           `json:"errors,omitempty"`
	GeneratedAt      time.Time                   `json:"generated_at"`
}

// QualityReport measures completeness of the optional fields and blood-type
// consistency between products and their source donations. Ratios are
// zero-guarded: an empty table reports 0%, never a division error.
func (s *Service) QualityReport(ctx context.Context) *QualityReport {
	report := &QualityReport{
		DataCompleteness: map[string]Completeness{},
		DataConsistency:  map[string]ConsistencyRatio{},
		GeneratedAt:      time.Now(),
	}
	fail := func(check string, err error) {
		if report.Errors == nil {
			report.Errors = map[string]string{}
		}
		report.Errors[check] = err.Error()
		s.log.Error().Err(err).Str("check", check).Msg("quality check failed")
	}

	if total, complete, err := s.repo.DonorContactCompleteness(ctx); err != nil {
		fail("donor_contact_info", err)
	} else {
		report.DataCompleteness["donor_contact_info"] = completeness(total, complete)
	}

	var totalProducts int
	if total, complete, err := s.repo.ProductTemperatureCompleteness(ctx); err != nil {
		fail("product_temperature", err)
	} else {
		totalProducts = total
		report.DataCompleteness["product_temperature"] = completeness(total, complete)
	}

	if mismatched, err := s.repo.BloodTypeMismatchCount(ctx); err != nil {
		fail("blood_type_consistency", err)
	} else {
		ratio := ConsistencyRatio{TotalProducts: totalProducts, Inconsistent: mismatched}
		if totalProducts > 0 {
			ratio.Percentage = float64(mismatched) / float64(totalProducts) * 100
		}
		report.DataConsistency["blood_type_consistency"] = ratio
	}

	return report
}

func completeness(total, complete int) Completeness {
	c := Completeness{Total: total, Complete: complete}
	if total > 0 {
		c.Percentage = float64(complete) / float64(total) * 100
	}
	return c
}
