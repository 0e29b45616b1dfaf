package synclog

import "time"

// Sync types.
const (
	TypeExportDonations = "EXPORT_DONATIONS"
	TypeExportInventory = "EXPORT_INVENTORY"
	TypeFullExport      = "FULL_EXPORT"
)

// Sync statuses. STARTED transitions to exactly one of SUCCESS or FAILED;
// a failed sync is terminal and must be re-initiated as a new log.
const (
	StatusStarted = "STARTED"
	StatusSuccess = "SUCCESS"
	StatusFailed  = "FAILED"
)

// SyncLog records the lifecycle of one sync run against DHIS2. The row is
// committed with status STARTED before any external call so a crash mid-sync
// leaves a visible open row rather than a silently lost operation. Once
// CompletedAt is set the row is immutable.
type SyncLog struct {
	ID               string     `db:"id" json:"id"`
	SyncType         string     `db:"sync_type" json:"sync_type"`
	Status           string     `db:"status" json:"status"`
	RecordsProcessed int        `db:"records_processed" json:"records_processed"`
	RecordsSuccess   int        `db:"records_success" json:"records_success"`
	RecordsFailed    int        `db:"records_failed" json:"records_failed"`
	ErrorMessage     *string    `db:"error_message" json:"error_message,omitempty"`
	StartedAt        time.Time  `db:"started_at" json:"started_at"`
	CompletedAt      *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	DHIS2Response    *string    `db:"dhis2_response" json:"dhis2_response,omitempty"`
}

// Running reports whether the log still represents an open sync: not yet
// completed and started after the given cutoff. Open rows older than the
// cutoff are treated as abandoned, not running.
func (l *SyncLog) Running(cutoff time.Time) bool {
	return l.CompletedAt == nil && !l.StartedAt.Before(cutoff)
}
