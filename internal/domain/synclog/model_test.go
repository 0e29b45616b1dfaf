package synclog

import (
	"testing"
	"time"
)

func TestRunning(t *testing.T) {
	now := time.Now()
	cutoff := now.Add(-30 * time.Minute)
	done := now.Add(-time.Minute)

	tests := []struct {
		name string
		log  SyncLog
		want bool
	}{
		{"open and recent", SyncLog{StartedAt: now.Add(-5 * time.Minute)}, true},
		{"open but abandoned", SyncLog{StartedAt: now.Add(-2 * time.Hour)}, false},
		{"completed", SyncLog{StartedAt: now.Add(-5 * time.Minute), CompletedAt: &done}, false},
		{"started exactly at cutoff", SyncLog{StartedAt: cutoff}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.log.Running(cutoff); got != tt.want {
				t.Errorf("Running() = %v, want %v", got, tt.want)
			}
		})
	}
}
