package middleware // middleware provides shared request processing for handlers

import (
	"fmt"      // fmt formats the forbidden message with the caller's role
	"net/http" // http package defines standard HTTP status codes

	"github.com/labstack/echo/v4" // echo provides middleware chaining and context

	"github.com/iliyamo/fleet-booking/internal/model"
)

// RequireRole returns a middleware function that enforces that the
// authenticated user holds one of the given roles. It must run after
// Protect, which stored the resolved role in the context; it never
// re-verifies the token. A missing or unknown role is rejected with
// 403 Forbidden, never 404 or 500.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get("role").(model.Role)
			if !ok || !model.Allowed(role, roles...) {
				return c.JSON(http.StatusForbidden, echo.Map{
					"message": fmt.Sprintf("role '%s' is not authorized to access this route", role),
				})
			}
			return next(c)
		}
	}
}
