package analytics

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/analytics/inventory", h.Inventory)
	api.GET("/analytics/anomalies", h.Anomalies)
	api.GET("/analytics/quality", h.Quality)
}

func (h *Handler) Inventory(c echo.Context) error {
	daysBack := DefaultDaysBack
	if raw := c.QueryParam("days_back"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "days_back must be a positive integer")
		}
		daysBack = n
	}
	return c.JSON(http.StatusOK, h.svc.InventoryAnalytics(c.Request().Context(), daysBack))
}

func (h *Handler) Anomalies(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.DetectAnomalies(c.Request().Context()))
}

func (h *Handler) Quality(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.QualityReport(c.Request().Context()))
}
