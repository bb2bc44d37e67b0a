package authoring

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
	api.POST("/authoring/context", h.PrepareContext)
}

func (h *Handler) PrepareContext(c echo.Context) error {
	var body struct {
		Entry    *RawEntry `json:"entry"`
		Language string    `json:"language"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if body.Entry == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "entry is required")
	}
	out, err := h.svc.PrepareContext(c.Request().Context(), body.Entry, body.Language, middleware.OwnerID(c))
	if err != nil {
		status, detail := errs.HTTPStatus(err)
		return c.JSON(status, detail)
	}
	return c.JSON(http.StatusOK, out)
}
