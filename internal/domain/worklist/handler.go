package worklist

import (
	"net/http"
	"strconv"

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
	api.GET("/worklist", h.List)
	api.GET("/worklist/study/:uid", h.GetByStudyUID)
	api.GET("/worklist/patient/:pid", h.ListByPatient)
	api.GET("/worklist/date/:date", h.ListByDate)
	api.GET("/worklist/:id", h.Get)
	api.POST("/worklist", h.Upsert)
	api.POST("/worklist/refresh", h.Refresh)
	api.POST("/worklist/evict", h.Evict)
	api.PUT("/worklist/:id", h.Update)
	api.DELETE("/worklist/:id", h.Delete)
	api.DELETE("/worklist", h.DeleteAll)
}

func respondErr(c echo.Context, err error) error {
	status, detail := errs.HTTPStatus(err)
	return c.JSON(status, detail)
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
	e, err := h.svc.Get(c.Request().Context(), c.Param("id"), middleware.OwnerID(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, e)
}

func (h *Handler) GetByStudyUID(c echo.Context) error {
	uid := c.Param("uid")
	e, err := h.svc.FindByStudyUID(c.Request().Context(), uid, middleware.OwnerID(c))
	if err != nil {
		return respondErr(c, err)
	}
	if e == nil {
		return respondErr(c, errs.NotFound("worklist entry", uid))
	}
	return c.JSON(http.StatusOK, e)
}

func (h *Handler) ListByPatient(c echo.Context) error {
	items, err := h.svc.FindByPatient(c.Request().Context(), c.Param("pid"), middleware.OwnerID(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) ListByDate(c echo.Context) error {
	items, err := h.svc.FindByDate(c.Request().Context(), c.Param("date"), middleware.OwnerID(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) Upsert(c echo.Context) error {
	var e Entry
	if err := c.Bind(&e); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	stored, err := h.svc.Upsert(c.Request().Context(), &e, middleware.OwnerID(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, stored)
}

// Refresh ingests a batch of findscu results atomically.
func (h *Handler) Refresh(c echo.Context) error {
	var body struct {
		Entries []*Entry `json:"entries"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	n, err := h.svc.BatchUpsert(c.Request().Context(), body.Entries, middleware.OwnerID(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"stored": n})
}

func (h *Handler) Update(c echo.Context) error {
	var e Entry
	if err := c.Bind(&e); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	e.ID = c.Param("id")
	updated, err := h.svc.Update(c.Request().Context(), &e, middleware.OwnerID(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *Handler) Delete(c echo.Context) error {
	if err := h.svc.Delete(c.Request().Context(), c.Param("id"), middleware.OwnerID(c)); err != nil {
		return respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) DeleteAll(c echo.Context) error {
	if err := h.svc.DeleteAll(c.Request().Context(), middleware.OwnerID(c)); err != nil {
		return respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Evict(c echo.Context) error {
	days := 0
	if raw := c.QueryParam("days"); raw != "" {
		var err error
		days, err = strconv.Atoi(raw)
		if err != nil || days < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid days")
		}
	}
	n, err := h.svc.EvictOlderThan(c.Request().Context(), middleware.OwnerID(c), days)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"evicted": n})
}
