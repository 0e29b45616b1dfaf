// Package metrics holds the process-wide observability state: the start
// timestamp used for uptime reporting and the Prometheus collectors. The
// state is built once at startup and injected into handlers; nothing here
// is mutated after init except the counters themselves.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	startTime time.Time
	registry  *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	SyncRunsTotal   *prometheus.CounterVec
	RecordsImported *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		startTime: time.Now(),
		registry:  reg,
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bloodbank_http_requests_total",
			Help: "Total number of HTTP requests handled",
		}, []string{"method", "path", "status"}),
		SyncRunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bloodbank_sync_runs_total",
			Help: "Total number of DHIS2 sync runs by type and outcome",
		}, []string{"sync_type", "status"}),
		RecordsImported: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bloodbank_records_imported_total",
			Help: "Total number of records imported by entity and outcome",
		}, []string{"entity", "outcome"}),
	}

	reg.MustRegister(m.RequestsTotal, m.SyncRunsTotal, m.RecordsImported)
	return m
}

// Uptime returns how long the process has been running.
func (m *Metrics) Uptime() time.Duration {
	return time.Since(m.startTime)
}

// Handler serves the Prometheus text exposition for the private registry.
func (m *Metrics) Handler() echo.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return func(c echo.Context) error {
		h.ServeHTTP(c.Response(), c.Request())
		return nil
	}
}

// Middleware counts every handled request by method, route and status.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)

			path := c.Path()
			if path == "" {
				path = c.Request().URL.Path
			}

			// When a handler returns an error the echo error handler has
			// not written the response yet, so c.Response().Status still
			// holds the default 200. Take the status from the error itself.
			status := c.Response().Status
			if err != nil && !c.Response().Committed {
				status = http.StatusInternalServerError
				var httpErr *echo.HTTPError
				if errors.As(err, &httpErr) {
					status = httpErr.Code
				}
			}
			m.RequestsTotal.WithLabelValues(
				c.Request().Method, path, strconv.Itoa(status),
			).Inc()

			return err
		}
	}
}

// ObserveSyncRun records the outcome of one sync run.
func (m *Metrics) ObserveSyncRun(syncType, status string) {
	m.SyncRunsTotal.WithLabelValues(syncType, status).Inc()
}

// ObserveImport records imported/failed counts for one import batch.
func (m *Metrics) ObserveImport(entity string, imported, failed int) {
	m.RecordsImported.WithLabelValues(entity, "imported").Add(float64(imported))
	m.RecordsImported.WithLabelValues(entity, "failed").Add(float64(failed))
}
