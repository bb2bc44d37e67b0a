package report

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/serenvale/radcore/internal/platform/errs"
	"github.com/serenvale/radcore/internal/platform/middleware"
	"github.com/serenvale/radcore/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/reports", h.Create)
	api.GET("/reports", h.List)
	api.GET("/reports/search", h.Search)
	api.GET("/reports/patient/:pid", h.ListByPatient)
	api.GET("/reports/status/:status", h.ListByStatus)
	api.GET("/reports/accession/:acc", h.GetByAccession)
	api.GET("/reports/:id", h.Get)
	api.PATCH("/reports/:id", h.Update)
	api.POST("/reports/:id/status", h.UpdateStatus)
	api.DELETE("/reports/:id", h.Delete)
	api.POST("/reports/delete-batch", h.DeleteBatch)
	api.DELETE("/reports", h.DeleteAll)
}

func respondErr(c echo.Context, err error) error {
	status, detail := errs.HTTPStatus(err)
	return c.JSON(status, detail)
}

func (h *Handler) Create(c echo.Context) error {
	var r Report
	if err := c.Bind(&r); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	created, err := h.svc.Create(c.Request().Context(), &r, middleware.OwnerID(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), middleware.OwnerID(c), pg.Limit, pg.Offset)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Get(c echo.Context) error {
	r, err := h.svc.Get(c.Request().Context(), c.Param("id"), middleware.OwnerID(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) ListByPatient(c echo.Context) error {
	items, err := h.svc.FindByPatient(c.Request().Context(), c.Param("pid"), middleware.OwnerID(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) ListByStatus(c echo.Context) error {
	items, err := h.svc.FindByStatus(c.Request().Context(), c.Param("status"), middleware.OwnerID(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) GetByAccession(c echo.Context) error {
	acc := c.Param("acc")
	r, err := h.svc.FindByAccession(c.Request().Context(), acc, middleware.OwnerID(c))
	if err != nil {
		return respondErr(c, err)
	}
	if r == nil {
		return respondErr(c, errs.NotFound("report", acc))
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) Search(c echo.Context) error {
	items, err := h.svc.SearchByPatientName(c.Request().Context(), c.QueryParam("name"), middleware.OwnerID(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) Update(c echo.Context) error {
	var r Report
	if err := c.Bind(&r); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	r.ID = c.Param("id")
	updated, err := h.svc.Update(c.Request().Context(), &r, middleware.OwnerID(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	var body struct {
		Status string `json:"status"`
		By     string `json:"by"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	r, err := h.svc.UpdateStatus(c.Request().Context(), c.Param("id"), middleware.OwnerID(c), body.Status, body.By)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) Delete(c echo.Context) error {
	if err := h.svc.Delete(c.Request().Context(), c.Param("id"), middleware.OwnerID(c)); err != nil {
		return respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) DeleteBatch(c echo.Context) error {
	var body struct {
		IDs []string `json:"ids"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	n, err := h.svc.DeleteBatch(c.Request().Context(), body.IDs, middleware.OwnerID(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"deleted": n})
}

func (h *Handler) DeleteAll(c echo.Context) error {
	if err := h.svc.DeleteAll(c.Request().Context(), middleware.OwnerID(c)); err != nil {
		return respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
