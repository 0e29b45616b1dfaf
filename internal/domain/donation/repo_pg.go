package donation

import (
	"context"
	"errors"
	"time"

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

type donationRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &donationRepoPG{pool: pool}
}

func (r *donationRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const donationCols = `id, donor_id, donation_date, blood_type, volume_collected,
	collection_site, staff_id, created_at, updated_at`

func scanDonation(row pgx.Row) (*Donation, error) {
	var d Donation
	err := row.Scan(&d.ID, &d.DonorID, &d.DonationDate, &d.BloodType, &d.VolumeCollected,
		&d.CollectionSite, &d.StaffID, &d.CreatedAt, &d.UpdatedAt)
	return &d, err
}

func (r *donationRepoPG) Upsert(ctx context.Context, d *Donation) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO donations (id, donor_id, donation_date, blood_type, volume_collected, collection_site, staff_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (id) DO UPDATE SET
			donor_id=EXCLUDED.donor_id, donation_date=EXCLUDED.donation_date,
			blood_type=EXCLUDED.blood_type, volume_collected=EXCLUDED.volume_collected,
			collection_site=EXCLUDED.collection_site, staff_id=EXCLUDED.staff_id,
			updated_at=NOW()`,
		d.ID, d.DonorID, d.DonationDate, d.BloodType, d.VolumeCollected, d.CollectionSite, d.StaffID)
	return err
}

func (r *donationRepoPG) GetByID(ctx context.Context, id string) (*Donation, error) {
	d, err := scanDonation(r.conn(ctx).QueryRow(ctx, `SELECT `+donationCols+` FROM donations WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *donationRepoPG) ExistsForDonorOnDate(ctx context.Context, donorID string, date time.Time, excludeID string) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM donations
			WHERE donor_id = $1 AND donation_date::date = $2::date AND id <> $3
		)`, donorID, date, excludeID).Scan(&exists)
	return exists, err
}

func (r *donationRepoPG) ListSince(ctx context.Context, cutoff time.Time) ([]*Donation, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+donationCols+` FROM donations
		WHERE donation_date >= $1
		ORDER BY donation_date DESC`, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Donation
	for rows.Next() {
		d, err := scanDonation(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, rows.Err()
}
