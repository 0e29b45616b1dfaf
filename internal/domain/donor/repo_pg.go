package donor

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

type donorRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &donorRepoPG{pool: pool}
}

func (r *donorRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const donorCols = `id, age, gender, occupation, location, contact_info, created_at, updated_at`

func (r *donorRepoPG) Upsert(ctx context.Context, d *Donor) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO donors (id, age, gender, occupation, location, contact_info)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (id) DO UPDATE SET
			age=EXCLUDED.age, gender=EXCLUDED.gender, occupation=EXCLUDED.occupation,
			location=EXCLUDED.location, contact_info=EXCLUDED.contact_info,
			updated_at=NOW()`,
		d.ID, d.Age, d.Gender, d.Occupation, d.Location, d.ContactInfo)
	return err
}

func (r *donorRepoPG) GetByID(ctx context.Context, id string) (*Donor, error) {
	var d Donor
	err := r.conn(ctx).QueryRow(ctx, `SELECT `+donorCols+` FROM donors WHERE id = $1`, id).
		Scan(&d.ID, &d.Age, &d.Gender, &d.Occupation, &d.Location, &d.ContactInfo, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *donorRepoPG) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM donors WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}
