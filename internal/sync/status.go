package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PIO-VIA/blood-bank/internal/domain/synclog"
)

// Status is the derived health view over recent sync logs.
type Status struct {
	LastSync      *time.Time `json:"last_sync"`
	SyncStatus    string     `json:"sync_status"`
	RecordsSynced int        `json:"records_synced"`
	Errors        []string   `json:"errors"`
}

// GetStatus derives the current sync state from the log history: "syncing"
// while a row opened in the last 30 minutes is still uncompleted, otherwise
// "error" when a run failed in the last 24 hours, otherwise "healthy" when
// the latest success completed within the hour, otherwise "idle".
func (s *Service) GetStatus(ctx context.Context) (*Status, error) {
	now := time.Now()

	running, err := s.logs.HasRunningSince(ctx, now.Add(-runningWindow))
	if err != nil {
		return nil, fmt.Errorf("check running syncs: %w", err)
	}

	recentErrs, err := s.logs.RecentErrors(ctx, now.Add(-errorWindow), recentErrorLimit)
	if err != nil {
		return nil, fmt.Errorf("load recent sync errors: %w", err)
	}
	if recentErrs == nil {
		recentErrs = []string{}
	}

	synced, err := s.logs.CountSuccessSince(ctx, now.Add(-errorWindow))
	if err != nil {
		return nil, fmt.Errorf("count recent successes: %w", err)
	}

	st := &Status{
		SyncStatus:    "idle",
		RecordsSynced: synced,
		Errors:        recentErrs,
	}

	last, err := s.logs.LatestSuccess(ctx)
	if errors.Is(err, synclog.ErrNotFound) {
		last = nil
	} else if err != nil {
		return nil, fmt.Errorf("load latest success: %w", err)
	}
	if last != nil {
		st.LastSync = last.CompletedAt
	}

	switch {
	case running:
		st.SyncStatus = "syncing"
	case len(recentErrs) > 0:
		st.SyncStatus = "error"
	case last != nil && last.CompletedAt != nil && last.CompletedAt.After(now.Add(-healthyWindow)):
		st.SyncStatus = "healthy"
	}
	return st, nil
}
