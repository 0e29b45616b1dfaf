package health

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/PIO-VIA/blood-bank/internal/domain/blood"
)

type healthRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &healthRepoPG{pool: pool}
}

func (r *healthRepoPG) Snapshot(ctx context.Context) (*Snapshot, error) {
	s := EmptySnapshot()

	err := r.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM donations),
			(SELECT COUNT(*) FROM blood_products),
			(SELECT COUNT(*) FROM blood_products WHERE status = $1),
			(SELECT COUNT(*) FROM blood_products WHERE status = $2)`,
		blood.StatusAvailable, blood.StatusExpired).
		Scan(&s.TotalDonations, &s.TotalProducts, &s.AvailableProducts, &s.ExpiredProducts)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT blood_type, COUNT(*) FROM blood_products
		WHERE status = $1 GROUP BY blood_type`, blood.StatusAvailable)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var bt string
		var count int
		if err := rows.Scan(&bt, &count); err != nil {
			return nil, err
		}
		s.BloodTypeDistribution[bt] = count
	}
	return s, rows.Err()
}
