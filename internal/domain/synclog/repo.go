package synclog

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a sync log lookup matches no row.
var ErrNotFound = errors.New("sync log not found")

type Repository interface {
	Create(ctx context.Context, l *SyncLog) error
	GetByID(ctx context.Context, id string) (*SyncLog, error)
	// Finalize closes the log: sets the terminal status, counters, optional
	// error message and external response, and stamps completed_at.
	Finalize(ctx context.Context, l *SyncLog) error
	// List returns logs newest first with the total count.
	List(ctx context.Context, limit, offset int) ([]*SyncLog, int, error)

	// Queries backing the derived sync-status endpoint.
	HasRunningSince(ctx context.Context, cutoff time.Time) (bool, error)
	RecentErrors(ctx context.Context, cutoff time.Time, limit int) ([]string, error)
	LatestSuccess(ctx context.Context) (*SyncLog, error)
	CountSuccessSince(ctx context.Context, cutoff time.Time) (int, error)
}
