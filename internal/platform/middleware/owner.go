package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HeaderOwnerID identifies the authenticated operator. The fronting
// authentication proxy validates the session and injects this header; this
// service performs no authentication of its own.
const HeaderOwnerID = "X-Owner-ID"

const ownerContextKey = "owner_id"

// RequireOwner rejects requests without an owner identity and stores the
// identity on the echo context for handlers and the request logger.
func RequireOwner() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			owner := c.Request().Header.Get(HeaderOwnerID)
			if owner == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing "+HeaderOwnerID+" header")
			}
			c.Set(ownerContextKey, owner)
			return next(c)
		}
	}
}

// OwnerID returns the owner identity stored by RequireOwner, or "" when the
// route is unscoped (e.g. health checks).
func OwnerID(c echo.Context) string {
	owner, _ := c.Get(ownerContextKey).(string)
	return owner
}
