// Package sync owns the SyncLog lifecycle: it starts export runs against
// DHIS2, records one log row per run before the first external call, and
// finalizes the row with SUCCESS or FAILED. Nothing else writes sync logs.
package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/PIO-VIA/blood-bank/internal/domain/blood"
	"github.com/PIO-VIA/blood-bank/internal/domain/donation"
	"github.com/PIO-VIA/blood-bank/internal/domain/product"
	"github.com/PIO-VIA/blood-bank/internal/domain/synclog"
	"github.com/PIO-VIA/blood-bank/internal/platform/dhis2"
	"github.com/PIO-VIA/blood-bank/internal/platform/metrics"
)

const (
	// DefaultDaysBack is the donation window when the caller gives none.
	DefaultDaysBack = 7
	// fullSyncDaysBack is the donation window a full export always uses.
	fullSyncDaysBack = 30

	// runningWindow bounds how long an open log counts as "syncing";
	// errorWindow and healthyWindow drive the derived status.
	runningWindow = 30 * time.Minute
	errorWindow   = 24 * time.Hour
	healthyWindow = time.Hour

	recentErrorLimit = 5
)

// Exporter is the slice of the DHIS2 client the orchestrator calls.
type Exporter interface {
	ExportDonations(ctx context.Context, donations []*donation.Donation) (*dhis2.ImportResult, error)
	ExportInventory(ctx context.Context, products []*product.Product) (*dhis2.ImportResult, error)
}

type Service struct {
	logs      synclog.Repository
	donations donation.Repository
	products  product.Repository
	exporter  Exporter
	metrics   *metrics.Metrics
	log       zerolog.Logger

	// spawn runs the export after the start endpoint has returned.
	// Tests swap it for a synchronous call.
	spawn func(fn func())
}

func NewService(
	logs synclog.Repository,
	donations donation.Repository,
	products product.Repository,
	exporter Exporter,
	m *metrics.Metrics,
	log zerolog.Logger,
) *Service {
	return &Service{
		logs:      logs,
		donations: donations,
		products:  products,
		exporter:  exporter,
		metrics:   m,
		log:       log.With().Str("component", "sync").Logger(),
		spawn:     func(fn func()) { go fn() },
	}
}

// StartDonationsSync commits a STARTED log row, then exports donations from
// the last daysBack days in the background. The returned log is the caller's
// handle; the run's outcome is only observable through it.
func (s *Service) StartDonationsSync(ctx context.Context, daysBack int) (*synclog.SyncLog, error) {
	if daysBack <= 0 {
		daysBack = DefaultDaysBack
	}
	l, err := s.start(ctx, synclog.TypeExportDonations)
	if err != nil {
		return nil, err
	}
	s.spawn(func() {
		ctx := context.Background()
		res, runErr := s.exportDonations(ctx, daysBack)
		s.finalize(ctx, l.ID, l.SyncType, res, runErr)
	})
	return l, nil
}

// StartInventorySync commits a STARTED log row, then exports the current
// AVAILABLE and RESERVED inventory in the background.
func (s *Service) StartInventorySync(ctx context.Context) (*synclog.SyncLog, error) {
	l, err := s.start(ctx, synclog.TypeExportInventory)
	if err != nil {
		return nil, err
	}
	s.spawn(func() {
		ctx := context.Background()
		res, runErr := s.exportInventory(ctx)
		s.finalize(ctx, l.ID, l.SyncType, res, runErr)
	})
	return l, nil
}

// StartFullSync runs both phases under one log row. The row aggregates both
// phases' counters and fails when either phase fails, so a full export never
// reports SUCCESS over a broken half.
func (s *Service) StartFullSync(ctx context.Context) (*synclog.SyncLog, error) {
	l, err := s.start(ctx, synclog.TypeFullExport)
	if err != nil {
		return nil, err
	}
	s.spawn(func() {
		ctx := context.Background()

		donRes, donErr := s.exportDonations(ctx, fullSyncDaysBack)
		invRes, invErr := s.exportInventory(ctx)

		res := phaseResult{
			processed: donRes.processed + invRes.processed,
			success:   donRes.success + invRes.success,
			failed:    donRes.failed + invRes.failed,
			response:  combineResponses(donRes.response, invRes.response),
		}
		var runErr error
		switch {
		case donErr != nil && invErr != nil:
			runErr = fmt.Errorf("donations: %v; inventory: %v", donErr, invErr)
		case donErr != nil:
			runErr = fmt.Errorf("donations: %w", donErr)
		case invErr != nil:
			runErr = fmt.Errorf("inventory: %w", invErr)
		}
		s.finalize(ctx, l.ID, l.SyncType, res, runErr)
	})
	return l, nil
}

func (s *Service) start(ctx context.Context, syncType string) (*synclog.SyncLog, error) {
	l := &synclog.SyncLog{
		ID:        uuid.NewString(),
		SyncType:  syncType,
		Status:    synclog.StatusStarted,
		StartedAt: time.Now(),
	}
	if err := s.logs.Create(ctx, l); err != nil {
		return nil, fmt.Errorf("create sync log: %w", err)
	}
	s.log.Info().Str("sync_id", l.ID).Str("sync_type", syncType).Msg("sync started")
	return l, nil
}

// phaseResult carries one export phase's counters and raw response.
type phaseResult struct {
	processed int
	success   int
	failed    int
	response  *string
}

func (s *Service) exportDonations(ctx context.Context, daysBack int) (phaseResult, error) {
	cutoff := time.Now().AddDate(0, 0, -daysBack)
	records, err := s.donations.ListSince(ctx, cutoff)
	if err != nil {
		return phaseResult{}, fmt.Errorf("list donations: %w", err)
	}

	res := phaseResult{processed: len(records)}
	if len(records) == 0 {
		return res, nil
	}

	result, err := s.exporter.ExportDonations(ctx, records)
	if err != nil {
		res.failed = len(records)
		return res, fmt.Errorf("export donations: %w", err)
	}

	res.success = result.ImportedCount + result.UpdatedCount
	res.failed = len(records) - res.success
	res.response = marshalResult(result)
	return res, nil
}

func (s *Service) exportInventory(ctx context.Context) (phaseResult, error) {
	records, err := s.products.ListByStatus(ctx, []string{blood.StatusAvailable, blood.StatusReserved})
	if err != nil {
		return phaseResult{}, fmt.Errorf("list inventory: %w", err)
	}

	res := phaseResult{processed: len(records)}
	if len(records) == 0 {
		return res, nil
	}

	result, err := s.exporter.ExportInventory(ctx, records)
	if err != nil {
		res.failed = len(records)
		return res, fmt.Errorf("export inventory: %w", err)
	}

	res.success = result.ImportedCount + result.UpdatedCount
	res.failed = len(records) - res.success
	res.response = marshalResult(result)
	return res, nil
}

// finalize closes the log row. A failure to persist the outcome is logged
// and swallowed: there is no caller left to surface it to.
func (s *Service) finalize(ctx context.Context, syncID, syncType string, res phaseResult, runErr error) {
	now := time.Now()
	l := &synclog.SyncLog{
		ID:               syncID,
		SyncType:         syncType,
		RecordsProcessed: res.processed,
		RecordsSuccess:   res.success,
		RecordsFailed:    res.failed,
		DHIS2Response:    res.response,
		CompletedAt:      &now,
	}
	if runErr != nil {
		l.Status = synclog.StatusFailed
		msg := runErr.Error()
		l.ErrorMessage = &msg
		s.log.Error().Err(runErr).Str("sync_id", syncID).Str("sync_type", syncType).Msg("sync failed")
	} else {
		l.Status = synclog.StatusSuccess
		s.log.Info().
			Str("sync_id", syncID).Str("sync_type", syncType).
			Int("processed", res.processed).Int("success", res.success).Int("failed", res.failed).
			Msg("sync completed")
	}

	if err := s.logs.Finalize(ctx, l); err != nil {
		s.log.Error().Err(err).Str("sync_id", syncID).Msg("finalize sync log")
	}
	if s.metrics != nil {
		s.metrics.ObserveSyncRun(syncType, l.Status)
	}
}

func marshalResult(r *dhis2.ImportResult) *string {
	b, err := json.Marshal(r)
	if err != nil {
		return nil
	}
	s := string(b)
	return &s
}

func combineResponses(donations, inventory *string) *string {
	if donations == nil && inventory == nil {
		return nil
	}
	part := func(p *string) json.RawMessage {
		if p == nil {
			return json.RawMessage("null")
		}
		return json.RawMessage(*p)
	}
	b, err := json.Marshal(map[string]json.RawMessage{
		"donations": part(donations),
		"inventory": part(inventory),
	})
	if err != nil {
		return nil
	}
	s := string(b)
	return &s
}

// GetLog returns one sync log row.
func (s *Service) GetLog(ctx context.Context, id string) (*synclog.SyncLog, error) {
	return s.logs.GetByID(ctx, id)
}

// ListLogs returns sync logs newest first.
func (s *Service) ListLogs(ctx context.Context, limit, offset int) ([]*synclog.SyncLog, int, error) {
	return s.logs.List(ctx, limit, offset)
}
