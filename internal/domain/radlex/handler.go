package radlex

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/serenvale/radcore/internal/platform/errs"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/radlex/:rid", h.Get)
	api.POST("/radlex/search", h.Search)
}

func respondErr(c echo.Context, err error) error {
	status, detail := errs.HTTPStatus(err)
	return c.JSON(status, detail)
}

func (h *Handler) Get(c echo.Context) error {
	rid := c.Param("rid")
	t, err := h.svc.FindByRadlexID(c.Request().Context(), rid)
	if err != nil {
		return respondErr(c, err)
	}
	if t == nil {
		return respondErr(c, errs.NotFound("radlex term", rid))
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) Search(c echo.Context) error {
	var body struct {
		QueryVector []float64 `json:"queryVector"`
		Language    string    `json:"language"`
		Filter      Filter    `json:"filter"`
		K           int       `json:"k"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	matches, err := h.svc.Search(c.Request().Context(), body.QueryVector, body.Language, body.Filter, body.K)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, matches)
}
