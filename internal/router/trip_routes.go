package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fleet-booking/internal/handler"
	"github.com/iliyamo/fleet-booking/internal/middleware"
	"github.com/iliyamo/fleet-booking/internal/model"
)

// RegisterTrips registers booking endpoints under /api/trips. Role
// gates narrow each route to the roles that can act on it; party
// checks (is this YOUR trip) live in the handlers.
func RegisterTrips(e *echo.Echo, t *handler.TripHandler, gate echo.MiddlewareFunc) {
	g := e.Group("/api/trips", gate)

	g.POST("", t.Book, middleware.RequireRole(model.RoleCustomer))
	g.GET("/my-history", t.MyHistory, middleware.RequireRole(model.RoleCustomer))
	g.GET("/assigned", t.Assigned, middleware.RequireRole(model.RoleDriver))
	g.PATCH("/:id/status", t.UpdateStatus, middleware.RequireRole(model.RoleDriver, model.RoleAdmin))
	g.PATCH("/:id/accept", t.Accept, middleware.RequireRole(model.RoleDriver))
	g.PATCH("/:id/cancel", t.Cancel, middleware.RequireRole(model.RoleCustomer, model.RoleDriver))
}
