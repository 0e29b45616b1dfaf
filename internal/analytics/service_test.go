package analytics

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/PIO-VIA/blood-bank/internal/domain/donation"
	"github.com/PIO-VIA/blood-bank/internal/domain/product"
)

type fakeRepo struct {
	expired    []*product.Product
	typeCounts []TypeCount
	statCounts []StatusCount
	expiring   int
	violations []*product.Product

	donorTotal, donorComplete     int
	productTotal, productComplete int
	mismatched                    int

	failing map[string]error
}

func (f *fakeRepo) err(check string) error {
	if f.failing == nil {
		return nil
	}
	return f.failing[check]
}

func (f *fakeRepo) ExpiredAvailable(context.Context) ([]*product.Product, error) {
	return f.expired, f.err("expired")
}

func (f *fakeRepo) AvailableCountsByBloodType(context.Context) ([]TypeCount, error) {
	return f.typeCounts, f.err("typeCounts")
}

func (f *fakeRepo) StatusCounts(context.Context) ([]StatusCount, error) {
	return f.statCounts, f.err("statCounts")
}

func (f *fakeRepo) ExpiringWithinDays(context.Context, int) (int, error) {
	return f.expiring, f.err("expiring")
}

func (f *fakeRepo) ColdChainViolations(context.Context) ([]*product.Product, error) {
	return f.violations, f.err("violations")
}

func (f *fakeRepo) DonorContactCompleteness(context.Context) (int, int, error) {
	return f.donorTotal, f.donorComplete, f.err("donorCompleteness")
}

func (f *fakeRepo) ProductTemperatureCompleteness(context.Context) (int, int, error) {
	return f.productTotal, f.productComplete, f.err("productCompleteness")
}

func (f *fakeRepo) BloodTypeMismatchCount(context.Context) (int, error) {
	return f.mismatched, f.err("mismatch")
}

type fakeDonations struct {
	donations []*donation.Donation
	failList  error
}

func (f *fakeDonations) Upsert(context.Context, *donation.Donation) error { return nil }
func (f *fakeDonations) GetByID(context.Context, string) (*donation.Donation, error) {
	return nil, donation.ErrNotFound
}
func (f *fakeDonations) ExistsForDonorOnDate(context.Context, string, time.Time, string) (bool, error) {
	return false, nil
}

func (f *fakeDonations) ListSince(_ context.Context, cutoff time.Time) ([]*donation.Donation, error) {
	if f.failList != nil {
		return nil, f.failList
	}
	var out []*donation.Donation
	for _, d := range f.donations {
		if !d.DonationDate.Before(cutoff) {
			out = append(out, d)
		}
	}
	return out, nil
}

func donationsWithVolumes(volumes ...float64) []*donation.Donation {
	out := make([]*donation.Donation, len(volumes))
	for i, v := range volumes {
		out[i] = &donation.Donation{
			ID:              "DON_" + string(rune('A'+i)),
			DonorID:         "D1",
			DonationDate:    time.Now().AddDate(0, 0, -1),
			VolumeCollected: v,
		}
	}
	return out
}

func TestDetectAnomalies(t *testing.T) {
	temp := 8.5
	repo := &fakeRepo{
		expired: []*product.Product{{
			ID: "P_EXP", BloodType: "O+", ExpiryDate: time.Now().AddDate(0, 0, -3),
		}},
		typeCounts: []TypeCount{{"A+", 2}, {"O+", 12}},
		violations: []*product.Product{{
			ID: "P_HOT", ProductType: "Whole Blood", Temperature: &temp, Location: "fridge-2",
		}},
	}
	// Nine typical volumes and one far outlier.
	dons := &fakeDonations{donations: donationsWithVolumes(450, 450, 450, 450, 450, 450, 450, 450, 450, 100)}
	svc := NewService(repo, dons, zerolog.Nop())

	report := svc.DetectAnomalies(context.Background())

	if len(report.ExpiredProducts) != 1 || report.ExpiredProducts[0].ProductID != "P_EXP" {
		t.Errorf("unexpected expired products: %+v", report.ExpiredProducts)
	}
	if report.ExpiredProducts[0].DaysExpired != 3 {
		t.Errorf("expected 3 days expired, got %d", report.ExpiredProducts[0].DaysExpired)
	}

	if len(report.LowStockTypes) != 1 || report.LowStockTypes[0].BloodType != "A+" {
		t.Errorf("only A+ is below threshold: %+v", report.LowStockTypes)
	}

	if len(report.UnusualDonations) != 1 {
		t.Fatalf("expected one outlier, got %+v", report.UnusualDonations)
	}
	out := report.UnusualDonations[0]
	if out.Volume != 100 {
		t.Errorf("wrong donation flagged: %+v", out)
	}
	if out.Deviation <= outlierSigma {
		t.Errorf("deviation should exceed threshold, got %v", out.Deviation)
	}

	if len(report.TemperatureViolations) != 1 || report.TemperatureViolations[0].CurrentTemperature != 8.5 {
		t.Errorf("unexpected temperature violations: %+v", report.TemperatureViolations)
	}
	if report.Errors != nil {
		t.Errorf("no check should have failed: %v", report.Errors)
	}
}

func TestDetectAnomalies_NoSpreadNoOutliers(t *testing.T) {
	dons := &fakeDonations{donations: donationsWithVolumes(450, 450, 450)}
	svc := NewService(&fakeRepo{}, dons, zerolog.Nop())

	report := svc.DetectAnomalies(context.Background())
	if len(report.UnusualDonations) != 0 {
		t.Errorf("identical volumes must produce no outliers: %+v", report.UnusualDonations)
	}
}

func TestDetectAnomalies_FailSoftPerCheck(t *testing.T) {
	repo := &fakeRepo{
		typeCounts: []TypeCount{{"A+", 1}},
		failing:    map[string]error{"expired": errors.New("db down")},
	}
	svc := NewService(repo, &fakeDonations{}, zerolog.Nop())

	report := svc.DetectAnomalies(context.Background())
	if report.Errors["expired_products"] == "" {
		t.Error("failed check should be reported in errors")
	}
	if len(report.LowStockTypes) != 1 {
		t.Errorf("other checks must still run: %+v", report.LowStockTypes)
	}
	if report.ExpiredProducts == nil {
		t.Error("slices stay non-nil even when their check fails")
	}
}

func TestInventoryAnalytics(t *testing.T) {
	repo := &fakeRepo{
		typeCounts: []TypeCount{{"A+", 3}, {"O-", 7}},
		statCounts: []StatusCount{{"AVAILABLE", 10}, {"EXPIRED", 2}},
		expiring:   4,
	}
	dons := &fakeDonations{donations: donationsWithVolumes(400, 500)}
	svc := NewService(repo, dons, zerolog.Nop())

	got := svc.InventoryAnalytics(context.Background(), 0)

	if got.AnalysisPeriodDays != DefaultDaysBack {
		t.Errorf("expected default window, got %d", got.AnalysisPeriodDays)
	}
	if got.BloodTypeDistribution["O-"] != 7 || got.StatusDistribution["EXPIRED"] != 2 {
		t.Errorf("unexpected distributions: %+v", got)
	}
	if got.ExpiringProducts != 4 {
		t.Errorf("expected 4 expiring, got %d", got.ExpiringProducts)
	}
	if got.RecentDonations != 2 || math.Abs(got.AverageDonationVolume-450) > 1e-9 {
		t.Errorf("unexpected donation stats: %+v", got)
	}
}

func TestQualityReport(t *testing.T) {
	repo := &fakeRepo{
		donorTotal: 10, donorComplete: 4,
		productTotal: 8, productComplete: 8,
		mismatched: 2,
	}
	svc := NewService(repo, &fakeDonations{}, zerolog.Nop())

	report := svc.QualityReport(context.Background())

	contact := report.DataCompleteness["donor_contact_info"]
	if contact.Total != 10 || contact.Complete != 4 || math.Abs(contact.Percentage-40) > 1e-9 {
		t.Errorf("unexpected contact completeness: %+v", contact)
	}
	temp := report.DataCompleteness["product_temperature"]
	if math.Abs(temp.Percentage-100) > 1e-9 {
		t.Errorf("unexpected temperature completeness: %+v", temp)
	}
	cons := report.DataConsistency["blood_type_consistency"]
	if cons.Inconsistent != 2 || math.Abs(cons.Percentage-25) > 1e-9 {
		t.Errorf("unexpected consistency ratio: %+v", cons)
	}
}

func TestQualityReport_EmptyTablesZeroGuarded(t *testing.T) {
	svc := NewService(&fakeRepo{}, &fakeDonations{}, zerolog.Nop())

	report := svc.QualityReport(context.Background())
	if report.DataCompleteness["donor_contact_info"].Percentage != 0 {
		t.Error("empty donor table should report 0%")
	}
	if report.DataConsistency["blood_type_consistency"].Percentage != 0 {
		t.Error("empty product table should report 0%")
	}
}
