package product

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/PIO-VIA/blood-bank/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type productRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &productRepoPG{pool: pool}
}

func (r *productRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const productCols = `id, donation_id, blood_type, product_type, volume,
	collection_date, expiry_date, status, location, temperature, created_at, updated_at`

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.DonationID, &p.BloodType, &p.ProductType, &p.Volume,
		&p.CollectionDate, &p.ExpiryDate, &p.Status, &p.Location, &p.Temperature,
		&p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *productRepoPG) Upsert(ctx context.Context, p *Product) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO blood_products (id, donation_id, blood_type, product_type, volume,
			collection_date, expiry_date, status, location, temperature)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (id) DO UPDATE SET
			donation_id=EXCLUDED.donation_id, blood_type=EXCLUDED.blood_type,
			product_type=EXCLUDED.product_type, volume=EXCLUDED.volume,
			collection_date=EXCLUDED.collection_date, expiry_date=EXCLUDED.expiry_date,
			status=EXCLUDED.status, location=EXCLUDED.location,
			temperature=EXCLUDED.temperature, updated_at=NOW()`,
		p.ID, p.DonationID, p.BloodType, p.ProductType, p.Volume,
		p.CollectionDate, p.ExpiryDate, p.Status, p.Location, p.Temperature)
	return err
}

func (r *productRepoPG) GetByID(ctx context.Context, id string) (*Product, error) {
	p, err := scanProduct(r.conn(ctx).QueryRow(ctx, `SELECT `+productCols+` FROM blood_products WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *productRepoPG) ListByStatus(ctx context.Context, statuses []string) ([]*Product, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+productCols+` FROM blood_products
		WHERE status = ANY($1)
		ORDER BY blood_type, status, id`, statuses)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}
