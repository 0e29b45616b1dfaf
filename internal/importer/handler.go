package importer

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/PIO-VIA/blood-bank/internal/domain/blood"
)

type Handler struct {
	svc      *Service
	validate *validator.Validate
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc, validate: newRequestValidator()}
}

// newRequestValidator registers the closed blood-bank enums as custom rules
// so the request tags share one definition with the domain package.
func newRequestValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	for tag, valid := range map[string]func(string) bool{
		"blood_type":     blood.ValidType,
		"gender":         blood.ValidGender,
		"product_status": blood.ValidStatus,
	} {
		valid := valid // per-iteration copy; required while the go directive is below 1.22
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return valid(fl.Field().String())
		}); err != nil {
			panic(err)
		}
	}
	return v
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/import/donors", h.ImportDonors)
	api.POST("/import/donations", h.ImportDonations)
	api.POST("/import/blood-products", h.ImportProducts)
	api.POST("/import/screening-results", h.ImportScreeningResults)
}

// schemaError turns a per-record validation failure into the 422 the import
// endpoints return when a field is out of bounds before any record is
// processed.
func schemaError(i int, err error) error {
	msg := err.Error()
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		f := verrs[0]
		msg = fmt.Sprintf("field %s failed on the '%s' rule", f.Field(), f.Tag())
	}
	return echo.NewHTTPError(http.StatusUnprocessableEntity, fmt.Sprintf("record %d: %s", i, msg))
}

func (h *Handler) ImportDonors(c echo.Context) error {
	var reqs []DonorRequest
	if err := c.Bind(&reqs); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	for i := range reqs {
		if err := h.validate.Struct(&reqs[i]); err != nil {
			return schemaError(i, err)
		}
	}
	report, err := h.svc.ImportDonors(c.Request().Context(), reqs)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Import failed: "+err.Error())
	}
	return c.JSON(http.StatusOK, report)
}

func (h *Handler) ImportDonations(c echo.Context) error {
	var reqs []DonationRequest
	if err := c.Bind(&reqs); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	for i := range reqs {
		if err := h.validate.Struct(&reqs[i]); err != nil {
			return schemaError(i, err)
		}
	}
	report, err := h.svc.ImportDonations(c.Request().Context(), reqs)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Import failed: "+err.Error())
	}
	return c.JSON(http.StatusOK, report)
}

func (h *Handler) ImportProducts(c echo.Context) error {
	var reqs []ProductRequest
	if err := c.Bind(&reqs); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	for i := range reqs {
		if err := h.validate.Struct(&reqs[i]); err != nil {
			return schemaError(i, err)
		}
	}
	report, err := h.svc.ImportProducts(c.Request().Context(), reqs)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Import failed: "+err.Error())
	}
	return c.JSON(http.StatusOK, report)
}

func (h *Handler) ImportScreeningResults(c echo.Context) error {
	var reqs []ScreeningRequest
	if err := c.Bind(&reqs); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	for i := range reqs {
		if err := h.validate.Struct(&reqs[i]); err != nil {
			return schemaError(i, err)
		}
	}
	report, err := h.svc.ImportScreeningResults(c.Request().Context(), reqs)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Import failed: "+err.Error())
	}
	return c.JSON(http.StatusOK, report)
}
