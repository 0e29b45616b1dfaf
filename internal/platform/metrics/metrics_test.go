package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestMiddleware_CountsRequests(t *testing.T) {
	m := New()

	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/donors/:id", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", m.Handler())

	req := httptest.NewRequest(http.MethodGet, "/donors/d-1", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	body := rec.Body.String()
	if !strings.Contains(body, `bloodbank_http_requests_total{method="GET",path="/donors/:id",status="200"} 1`) {
		t.Errorf("request counter missing from exposition:\n%s", body)
	}
}

func TestMiddleware_CountsErrorResponsesByRealStatus(t *testing.T) {
	m := New()

	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/sync/logs/:id", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "Sync log not found")
	})
	e.POST("/import/donors", func(c echo.Context) error {
		return errors.New("pool exhausted")
	})
	e.GET("/metrics", m.Handler())

	req := httptest.NewRequest(http.MethodGet, "/sync/logs/nope", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/import/donors", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	body := rec.Body.String()
	if !strings.Contains(body, `bloodbank_http_requests_total{method="GET",path="/sync/logs/:id",status="404"} 1`) {
		t.Errorf("404 response not counted under its real status:\n%s", body)
	}
	if !strings.Contains(body, `bloodbank_http_requests_total{method="POST",path="/import/donors",status="500"} 1`) {
		t.Errorf("plain error not counted as 500:\n%s", body)
	}
	if strings.Contains(body, `status="200"`) {
		t.Errorf("error responses leaked into the 200 bucket:\n%s", body)
	}
}

func TestObserveSyncRun(t *testing.T) {
	m := New()
	m.ObserveSyncRun("EXPORT_DONATIONS", "SUCCESS")
	m.ObserveSyncRun("EXPORT_DONATIONS", "SUCCESS")
	m.ObserveSyncRun("FULL_EXPORT", "FAILED")

	e := echo.New()
	e.GET("/metrics", m.Handler())
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	body := rec.Body.String()
	if !strings.Contains(body, `bloodbank_sync_runs_total{status="SUCCESS",sync_type="EXPORT_DONATIONS"} 2`) {
		t.Errorf("sync counter missing:\n%s", body)
	}
	if !strings.Contains(body, `bloodbank_sync_runs_total{status="FAILED",sync_type="FULL_EXPORT"} 1`) {
		t.Errorf("failed sync counter missing:\n%s", body)
	}
}

func TestUptime(t *testing.T) {
	m := New()
	if m.Uptime() < 0 {
		t.Errorf("uptime should be non-negative")
	}
}
