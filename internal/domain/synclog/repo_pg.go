package synclog

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

type syncLogRepoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &syncLogRepoPG{pool: pool}
}

func (r *syncLogRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const syncLogCols = `id, sync_type, status, records_processed, records_success,
	records_failed, error_message, started_at, completed_at, dhis2_response`

func scanSyncLog(row pgx.Row) (*SyncLog, error) {
	var l SyncLog
	err := row.Scan(&l.ID, &l.SyncType, &l.Status, &l.RecordsProcessed, &l.RecordsSuccess,
		&l.RecordsFailed, &l.ErrorMessage, &l.StartedAt, &l.CompletedAt, &l.DHIS2Response)
	return &l, err
}

func (r *syncLogRepoPG) Create(ctx context.Context, l *SyncLog) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO sync_logs (id, sync_type, status, started_at)
		VALUES ($1,$2,$3,$4)`,
		l.ID, l.SyncType, l.Status, l.StartedAt)
	return err
}

func (r *syncLogRepoPG) GetByID(ctx context.Context, id string) (*SyncLog, error) {
	l, err := scanSyncLog(r.conn(ctx).QueryRow(ctx, `SELECT `+syncLogCols+` FROM sync_logs WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (r *syncLogRepoPG) Finalize(ctx context.Context, l *SyncLog) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE sync_logs SET
			status=$2, records_processed=$3, records_success=$4, records_failed=$5,
			error_message=$6, completed_at=$7, dhis2_response=$8
		WHERE id = $1 AND completed_at IS NULL`,
		l.ID, l.Status, l.RecordsProcessed, l.RecordsSuccess, l.RecordsFailed,
		l.ErrorMessage, l.CompletedAt, l.DHIS2Response)
	return err
}

func (r *syncLogRepoPG) List(ctx context.Context, limit, offset int) ([]*SyncLog, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM sync_logs`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+syncLogCols+` FROM sync_logs
		ORDER BY started_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*SyncLog
	for rows.Next() {
		l, err := scanSyncLog(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, l)
	}
	return items, total, rows.Err()
}

func (r *syncLogRepoPG) HasRunningSince(ctx context.Context, cutoff time.Time) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM sync_logs
			WHERE completed_at IS NULL AND started_at >= $1
		)`, cutoff).Scan(&exists)
	return exists, err
}

func (r *syncLogRepoPG) RecentErrors(ctx context.Context, cutoff time.Time, limit int) ([]string, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT error_message FROM sync_logs
		WHERE status = $1 AND started_at >= $2 AND error_message IS NOT NULL
		ORDER BY started_at DESC LIMIT $3`, StatusFailed, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []string
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (r *syncLogRepoPG) LatestSuccess(ctx context.Context) (*SyncLog, error) {
	l, err := scanSyncLog(r.conn(ctx).QueryRow(ctx, `
		SELECT `+syncLogCols+` FROM sync_logs
		WHERE status = $1
		ORDER BY completed_at DESC LIMIT 1`, StatusSuccess))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (r *syncLogRepoPG) CountSuccessSince(ctx context.Context, cutoff time.Time) (int, error) {
	var count int
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM sync_logs
		WHERE status = $1 AND started_at >= $2`, StatusSuccess, cutoff).Scan(&count)
	return count, err
}
