// Package analytics serves the read-only reporting surface: inventory
// dashboards, anomaly scans and the data-quality report. It never writes.
package analytics

import (
	"context"

	"github.com/PIO-VIA/blood-bank/internal/domain/product"
)

// TypeCount is a per-blood-type tally.
type TypeCount struct {
	BloodType string
	Count     int
}

// StatusCount is a per-status tally.
type StatusCount struct {
	Status string
	Count  int
}

// Completeness is a filled-in/total pair for one optional field.
type Completeness struct {
	Total    int `json:"total"`
	Complete int `json:"complete"`
	// Percentage is complete/total*100, zero when the table is empty.
	Percentage float64 `json:"percentage"`
}

type Repository interface {
	// ExpiredAvailable returns products past expiry still marked AVAILABLE.
	ExpiredAvailable(ctx context.Context) ([]*product.Product, error)
	// AvailableCountsByBloodType tallies AVAILABLE stock per blood type.
	// Blood types with no stock do not appear.
	AvailableCountsByBloodType(ctx context.Context) ([]TypeCount, error)
	// StatusCounts tallies all products per lifecycle status.
	StatusCounts(ctx context.Context) ([]StatusCount, error)
	// ExpiringWithinDays counts AVAILABLE products expiring in the window.
	ExpiringWithinDays(ctx context.Context, days int) (int, error)
	// ColdChainViolations returns products whose recorded temperature is
	// outside the storage range for their product type.
	ColdChainViolations(ctx context.Context) ([]*product.Product, error)
	// DonorContactCompleteness counts donors and those with contact info.
	DonorContactCompleteness(ctx context.Context) (total, complete int, err error)
	// ProductTemperatureCompleteness counts products and those with a
	// temperature reading.
	ProductTemperatureCompleteness(ctx context.Context) (total, complete int, err error)
	// BloodTypeMismatchCount counts products whose blood type disagrees
	// with their source donation.
	BloodTypeMismatchCount(ctx context.Context) (int, error)
}
