// Package health exposes the liveness, readiness and composite health
// endpoints plus a small domain-metrics snapshot for monitoring.
package health

import (
	"context"

	"github.com/PIO-VIA/blood-bank/internal/domain/blood"
)

// Snapshot is the domain-metrics view served by /health/metrics.
type Snapshot struct {
	TotalDonations        int            `json:"total_donations"`
	TotalProducts         int            `json:"total_products"`
	AvailableProducts     int            `json:"available_products"`
	ExpiredProducts       int            `json:"expired_products"`
	BloodTypeDistribution map[string]int `json:"blood_type_distribution"`
}

// EmptySnapshot returns an all-zero snapshot with every blood type present.
// It is what /health/metrics serves when the store is unreachable.
func EmptySnapshot() *Snapshot {
	dist := make(map[string]int, len(blood.Types))
	for _, t := range blood.Types {
		dist[t] = 0
	}
	return &Snapshot{BloodTypeDistribution: dist}
}

type Repository interface {
	Snapshot(ctx context.Context) (*Snapshot, error)
}
