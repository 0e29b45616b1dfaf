package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/PIO-VIA/blood-bank/internal/platform/metrics"
)

type fakeTester struct{ up bool }

func (f fakeTester) TestConnection(context.Context) bool { return f.up }

type fakeRepo struct {
	snapshot *Snapshot
	err      error
}

func (f *fakeRepo) Snapshot(context.Context) (*Snapshot, error) { return f.snapshot, f.err }

func newTestServer(pingErr error, dhis2Up bool, repo Repository) *echo.Echo {
	ping := func(context.Context) error { return pingErr }
	h := NewHandler(ping, fakeTester{up: dhis2Up}, repo, metrics.New(), "blood-bank", "1.0.0", zerolog.Nop())
	e := echo.New()
	h.RegisterRoutes(e.Group("/health"))
	return e
}

func get(e *echo.Echo, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestCheck_AllHealthy(t *testing.T) {
	e := newTestServer(nil, true, &fakeRepo{})

	rec := get(e, "/health/")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp CheckResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "healthy" || resp.DatabaseStatus != "healthy" || resp.DHIS2Status != "healthy" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if resp.Version != "1.0.0" {
		t.Errorf("unexpected version: %s", resp.Version)
	}
	if resp.UptimeSeconds < 0 {
		t.Errorf("uptime must be non-negative: %v", resp.UptimeSeconds)
	}
}

func TestCheck_DegradedNotFailed(t *testing.T) {
	cases := []struct {
		name    string
		pingErr error
		dhis2Up bool
	}{
		{"db down", errors.New("connection refused"), true},
		{"dhis2 down", nil, false},
		{"both down", errors.New("connection refused"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestServer(tc.pingErr, tc.dhis2Up, &fakeRepo{})
			rec := get(e, "/health/")
			if rec.Code != http.StatusOK {
				t.Fatalf("degraded must still answer 200, got %d", rec.Code)
			}
			var resp CheckResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Status != "degraded" {
				t.Errorf("expected degraded, got %s", resp.Status)
			}
		})
	}
}

func TestLiveAndReady(t *testing.T) {
	e := newTestServer(nil, true, &fakeRepo{})

	if rec := get(e, "/health/live"); rec.Code != http.StatusOK {
		t.Errorf("live: expected 200, got %d", rec.Code)
	}
	if rec := get(e, "/health/ready"); rec.Code != http.StatusOK {
		t.Errorf("ready: expected 200, got %d", rec.Code)
	}

	down := newTestServer(errors.New("no db"), true, &fakeRepo{})
	if rec := get(down, "/health/ready"); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("ready with dead db: expected 503, got %d", rec.Code)
	}
	if rec := get(down, "/health/live"); rec.Code != http.StatusOK {
		t.Errorf("live must not depend on the db, got %d", rec.Code)
	}
}

func TestMetrics_DegradesToZeros(t *testing.T) {
	snap := EmptySnapshot()
	snap.TotalDonations = 12
	snap.BloodTypeDistribution["O+"] = 5

	e := newTestServer(nil, true, &fakeRepo{snapshot: snap})
	rec := get(e, "/health/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.TotalDonations != 12 || got.BloodTypeDistribution["O+"] != 5 {
		t.Errorf("unexpected snapshot: %+v", got)
	}

	broken := newTestServer(nil, true, &fakeRepo{err: errors.New("db down")})
	rec = get(broken, "/health/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("store failure should still answer 200, got %d", rec.Code)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.TotalDonations != 0 || len(got.BloodTypeDistribution) != 8 {
		t.Errorf("expected all-zero snapshot with every blood type, got %+v", got)
	}
}

func TestVersion(t *testing.T) {
	e := newTestServer(nil, true, &fakeRepo{})
	rec := get(e, "/health/version")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["service"] != "blood-bank" || resp["version"] != "1.0.0" || resp["api_version"] != "/api/v1" {
		t.Errorf("unexpected version payload: %v", resp)
	}
}
