package analytics

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/PIO-VIA/blood-bank/internal/domain/blood"
	"github.com/PIO-VIA/blood-bank/internal/domain/product"
)

type analyticsRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &analyticsRepoPG{pool: pool}
}

const productCols = `id, donation_id, blood_type, product_type, volume,
	collection_date, expiry_date, status, location, temperature, created_at, updated_at`

func scanProducts(rows pgx.Rows) ([]*product.Product, error) {
	defer rows.Close()
	var out []*product.Product
	for rows.Next() {
		var p product.Product
		if err := rows.Scan(&p.ID, &p.DonationID, &p.BloodType, &p.ProductType, &p.Volume,
			&p.CollectionDate, &p.ExpiryDate, &p.Status, &p.Location, &p.Temperature,
			&p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

func (r *analyticsRepoPG) ExpiredAvailable(ctx context.Context) ([]*product.Product, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+productCols+` FROM blood_products
		WHERE status = $1 AND expiry_date < NOW()
		ORDER BY expiry_date`, blood.StatusAvailable)
	if err != nil {
		return nil, err
	}
	return scanProducts(rows)
}

func (r *analyticsRepoPG) AvailableCountsByBloodType(ctx context.Context) ([]TypeCount, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT blood_type, COUNT(*) FROM blood_products
		WHERE status = $1
		GROUP BY blood_type ORDER BY blood_type`, blood.StatusAvailable)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TypeCount
	for rows.Next() {
		var tc TypeCount
		if err := rows.Scan(&tc.BloodType, &tc.Count); err != nil {
			return nil, err
		}
		out = append(out, tc)
	}
	return out, rows.Err()
}

func (r *analyticsRepoPG) StatusCounts(ctx context.Context) ([]StatusCount, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT status, COUNT(*) FROM blood_products
		GROUP BY status ORDER BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StatusCount
	for rows.Next() {
		var sc StatusCount
		if err := rows.Scan(&sc.Status, &sc.Count); err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

func (r *analyticsRepoPG) ExpiringWithinDays(ctx context.Context, days int) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM blood_products
		WHERE status = $1 AND expiry_date <= NOW() + ($2 * INTERVAL '1 day')`,
		blood.StatusAvailable, days).Scan(&count)
	return count, err
}

// Mirrors Product.ColdChainViolation: whole blood and red cells must sit in
// [2,6]°C, plasma below -18°C; rows without a temperature never match.
func (r *analyticsRepoPG) ColdChainViolations(ctx context.Context) ([]*product.Product, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+productCols+` FROM blood_products
		WHERE temperature IS NOT NULL AND (
			(LOWER(product_type) IN ('whole blood', 'red blood cells')
				AND (temperature < 2 OR temperature > 6))
			OR (LOWER(product_type) = 'plasma' AND temperature >= -18)
		)
		ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return scanProducts(rows)
}

func (r *analyticsRepoPG) DonorContactCompleteness(ctx context.Context) (int, int, error) {
	var total, complete int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(contact_info) FROM donors`).Scan(&total, &complete)
	return total, complete, err
}

func (r *analyticsRepoPG) ProductTemperatureCompleteness(ctx context.Context) (int, int, error) {
	var total, complete int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(temperature) FROM blood_products`).Scan(&total, &complete)
	return total, complete, err
}

func (r *analyticsRepoPG) BloodTypeMismatchCount(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM blood_products p
		JOIN donations d ON d.id = p.donation_id
		WHERE p.blood_type <> d.blood_type`).Scan(&count)
	return count, err
}
