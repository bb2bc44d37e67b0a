package settings

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/serenvale/radcore/internal/platform/errs"
	"github.com/serenvale/radcore/internal/platform/middleware"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/settings/templates", h.CreateTemplate)
	api.GET("/settings/templates", h.ListTemplates)
	api.GET("/settings/templates/:id", h.GetTemplate)
	api.PUT("/settings/templates/:id", h.UpdateTemplate)
	api.DELETE("/settings/templates/:id", h.DeleteTemplate)

	api.GET("/settings/clinic", h.GetClinic)
	api.PUT("/settings/clinic", h.PutClinic)

	api.GET("/settings/doctor", h.GetDoctor)
	api.PUT("/settings/doctor", h.PutDoctor)
}

func respondErr(c echo.Context, err error) error {
	status, detail := errs.HTTPStatus(err)
	return c.JSON(status, detail)
}

func (h *Handler) CreateTemplate(c echo.Context) error {
	var t ReportTemplate
	if err := c.Bind(&t); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	created, err := h.svc.CreateTemplate(c.Request().Context(), &t, middleware.OwnerID(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) ListTemplates(c echo.Context) error {
	items, err := h.svc.ListTemplates(c.Request().Context(), c.QueryParam("modality"), middleware.OwnerID(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) GetTemplate(c echo.Context) error {
	t, err := h.svc.GetTemplate(c.Request().Context(), c.Param("id"), middleware.OwnerID(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) UpdateTemplate(c echo.Context) error {
	var t ReportTemplate
	if err := c.Bind(&t); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	t.ID = c.Param("id")
	updated, err := h.svc.UpdateTemplate(c.Request().Context(), &t, middleware.OwnerID(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *Handler) DeleteTemplate(c echo.Context) error {
	if err := h.svc.DeleteTemplate(c.Request().Context(), c.Param("id"), middleware.OwnerID(c)); err != nil {
		return respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) GetClinic(c echo.Context) error {
	clinic, err := h.svc.GetClinic(c.Request().Context(), middleware.OwnerID(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, clinic)
}

func (h *Handler) PutClinic(c echo.Context) error {
	var clinic ClinicSettings
	if err := c.Bind(&clinic); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	saved, err := h.svc.PutClinic(c.Request().Context(), &clinic, middleware.OwnerID(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, saved)
}

func (h *Handler) GetDoctor(c echo.Context) error {
	doctor, err := h.svc.GetDoctor(c.Request().Context(), middleware.OwnerID(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, doctor)
}

func (h *Handler) PutDoctor(c echo.Context) error {
	var doctor DoctorSettings
	if err := c.Bind(&doctor); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	saved, err := h.svc.PutDoctor(c.Request().Context(), &doctor, middleware.OwnerID(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, saved)
}
