package sync

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/PIO-VIA/blood-bank/internal/domain/synclog"
	"github.com/PIO-VIA/blood-bank/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/sync/donations", h.SyncDonations)
	api.POST("/sync/inventory", h.SyncInventory)
	api.POST("/sync/full", h.SyncFull)
	api.GET("/sync/status", h.SyncStatus)
	api.GET("/sync/logs", h.ListLogs)
	api.GET("/sync/logs/:id", h.GetLog)
	api.DELETE("/sync/cache", h.ClearCache)
}

type startResponse struct {
	Status  string `json:"status"`
	SyncID  string `json:"sync_id"`
	Message string `json:"message"`
}

func (h *Handler) SyncDonations(c echo.Context) error {
	daysBack := DefaultDaysBack
	if raw := c.QueryParam("days_back"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "days_back must be a positive integer")
		}
		daysBack = n
	}

	l, err := h.svc.StartDonationsSync(c.Request().Context(), daysBack)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Sync failed: "+err.Error())
	}
	return c.JSON(http.StatusOK, startResponse{
		Status:  "started",
		SyncID:  l.ID,
		Message: fmt.Sprintf("Donation sync initiated for last %d days", daysBack),
	})
}

func (h *Handler) SyncInventory(c echo.Context) error {
	l, err := h.svc.StartInventorySync(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Sync failed: "+err.Error())
	}
	return c.JSON(http.StatusOK, startResponse{
		Status:  "started",
		SyncID:  l.ID,
		Message: "Inventory sync initiated",
	})
}

func (h *Handler) SyncFull(c echo.Context) error {
	l, err := h.svc.StartFullSync(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Sync failed: "+err.Error())
	}
	return c.JSON(http.StatusOK, startResponse{
		Status:  "started",
		SyncID:  l.ID,
		Message: "Full sync initiated",
	})
}

func (h *Handler) SyncStatus(c echo.Context) error {
	st, err := h.svc.GetStatus(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to get sync status: "+err.Error())
	}
	return c.JSON(http.StatusOK, st)
}

func (h *Handler) GetLog(c echo.Context) error {
	l, err := h.svc.GetLog(c.Request().Context(), c.Param("id"))
	if errors.Is(err, synclog.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Sync log not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to get sync log: "+err.Error())
	}
	return c.JSON(http.StatusOK, l)
}

func (h *Handler) ListLogs(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListLogs(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if items == nil {
		items = []*synclog.SyncLog{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

// ClearCache exists for operational symmetry with the other sync endpoints.
// Exports are stateless between runs, so there is nothing to drop yet.
func (h *Handler) ClearCache(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Sync cache cleared",
	})
}
