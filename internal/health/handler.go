package health

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/PIO-VIA/blood-bank/internal/platform/metrics"
)

// ConnectionTester reports whether the external DHIS2 instance answers;
// satisfied by the dhis2 client.
type ConnectionTester interface {
	TestConnection(ctx context.Context) bool
}

type Handler struct {
	ping    func(ctx context.Context) error
	dhis2   ConnectionTester
	repo    Repository
	metrics *metrics.Metrics

	serviceName string
	version     string
	log         zerolog.Logger
}

func NewHandler(
	ping func(ctx context.Context) error,
	dhis2 ConnectionTester,
	repo Repository,
	m *metrics.Metrics,
	serviceName, version string,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		ping:        ping,
		dhis2:       dhis2,
		repo:        repo,
		metrics:     m,
		serviceName: serviceName,
		version:     version,
		log:         log.With().Str("component", "health").Logger(),
	}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/", h.Check)
	g.GET("", h.Check)
	g.GET("/live", h.Live)
	g.GET("/ready", h.Ready)
	g.GET("/metrics", h.Metrics)
	g.GET("/version", h.Version)
}

type CheckResponse struct {
	Status         string  `json:"status"`
	Version        string  `json:"version"`
	DatabaseStatus string  `json:"database_status"`
	DHIS2Status    string  `json:"dhis2_status"`
	UptimeSeconds  float64 `json:"uptime_seconds"`
}

// Check probes both dependencies. An unreachable database or DHIS2 degrades
// the overall status but never fails the endpoint: monitoring needs the
// breakdown, not a 500.
func (h *Handler) Check(c echo.Context) error {
	ctx := c.Request().Context()

	dbStatus := "healthy"
	if err := h.ping(ctx); err != nil {
		dbStatus = "unhealthy: " + err.Error()
		h.log.Error().Err(err).Msg("database health check failed")
	}

	dhis2Status := "healthy"
	if !h.dhis2.TestConnection(ctx) {
		dhis2Status = "unhealthy: connection failed"
	}

	overall := "healthy"
	if dbStatus != "healthy" || dhis2Status != "healthy" {
		overall = "degraded"
	}

	return c.JSON(http.StatusOK, CheckResponse{
		Status:         overall,
		Version:        h.version,
		DatabaseStatus: dbStatus,
		DHIS2Status:    dhis2Status,
		UptimeSeconds:  h.metrics.Uptime().Seconds(),
	})
}

func (h *Handler) Live(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":    "alive",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (h *Handler) Ready(c echo.Context) error {
	if err := h.ping(c.Request().Context()); err != nil {
		h.log.Error().Err(err).Msg("readiness probe failed")
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Service not ready")
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status":    "ready",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// Metrics serves the domain snapshot. On a store failure it degrades to an
// all-zero snapshot so dashboards keep a stable shape.
func (h *Handler) Metrics(c echo.Context) error {
	s, err := h.repo.Snapshot(c.Request().Context())
	if err != nil {
		h.log.Error().Err(err).Msg("metrics snapshot failed")
		s = EmptySnapshot()
	}
	return c.JSON(http.StatusOK, s)
}

func (h *Handler) Version(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"service":     h.serviceName,
		"version":     h.version,
		"api_version": "/api/v1",
		"build_time":  time.Now().Format(time.RFC3339),
	})
}
