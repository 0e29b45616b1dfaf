package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func invoke(t *testing.T, mw echo.MiddlewareFunc, handler echo.HandlerFunc, req *http.Request) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return rec, mw(handler)(c)
}

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func TestRequestID_GeneratesWhenMissing(t *testing.T) {
	var seen string
	handler := func(c echo.Context) error {
		seen, _ = c.Get("request_id").(string)
		return c.String(http.StatusOK, "ok")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec, err := invoke(t, RequestID(), handler, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen == "" {
		t.Error("expected a generated request_id on the context")
	}
	if rec.Header().Get(RequestIDHeader) != seen {
		t.Errorf("response header %q does not match context value %q",
			rec.Header().Get(RequestIDHeader), seen)
	}
}

func TestRequestID_PreservesCallerSupplied(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "import-batch-7")

	rec, err := invoke(t, RequestID(), okHandler, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := rec.Header().Get(RequestIDHeader); got != "import-batch-7" {
		t.Errorf("expected caller-supplied id echoed back, got %q", got)
	}
}

func TestLogger_EmitsStructuredLine(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sync/status", nil)
	if _, err := invoke(t, Logger(logger), okHandler, req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var line map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log output is not JSON: %v\n%s", err, buf.String())
	}
	if line["message"] != "http request" {
		t.Errorf("expected message 'http request', got %v", line["message"])
	}
	if line["path"] != "/api/v1/sync/status" {
		t.Errorf("expected request path in log line, got %v", line["path"])
	}
	if line["status"] != float64(http.StatusOK) {
		t.Errorf("expected status 200 in log line, got %v", line["status"])
	}
	if line["level"] != "info" {
		t.Errorf("expected info level for a fast successful request, got %v", line["level"])
	}
}

func TestLogger_ErrorLevelOnHandlerError(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	failing := func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusBadGateway, "upstream unreachable")
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sync/full", nil)
	if _, err := invoke(t, Logger(logger), failing, req); err == nil {
		t.Fatal("expected the handler error to propagate")
	}

	var line map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}
	if line["level"] != "error" {
		t.Errorf("expected error level, got %v", line["level"])
	}
}

func TestRecovery_ConvertsPanicTo500(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	panicking := func(c echo.Context) error {
		panic("nil product pointer")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analytics/anomalies", nil)
	_, err := invoke(t, Recovery(logger), panicking, req)
	if err == nil {
		t.Fatal("expected an error from the recovered panic")
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", httpErr.Code)
	}

	var line map[string]interface{}
	if jsonErr := json.Unmarshal(buf.Bytes(), &line); jsonErr != nil {
		t.Fatalf("log output is not JSON: %v", jsonErr)
	}
	if line["panic"] != "nil product pointer" {
		t.Errorf("expected panic value in log line, got %v", line["panic"])
	}
	if stack, _ := line["stack"].(string); stack == "" {
		t.Error("expected a stack trace in the log line")
	}
}

func TestRecovery_NoInterferenceWithoutPanic(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec, err := invoke(t, Recovery(zerolog.Nop()), okHandler, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}
