package screening

import (
	"context"

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

type screeningRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &screeningRepoPG{pool: pool}
}

func (r *screeningRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *screeningRepoPG) Create(ctx context.Context, res *Result) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO screening_results (id, donor_id, blood_type, hemoglobin_level,
			hiv_test, hepatitis_b_test, hepatitis_c_test, syphilis_test, screening_date)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		res.ID, res.DonorID, res.BloodType, res.HemoglobinLevel,
		res.HIVTest, res.HepatitisBTest, res.HepatitisCTest, res.SyphilisTest, res.ScreeningDate)
	return err
}
