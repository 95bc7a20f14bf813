package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fleet-booking/internal/handler"
	"github.com/iliyamo/fleet-booking/internal/middleware"
	"github.com/iliyamo/fleet-booking/internal/model"
)

// RegisterAdmin registers the moderation endpoints under /api/admin.
// Vehicle removal reuses the owner handler so the cascade (cancel
// future trips, invalidate the availability cache) stays in one place.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, v *handler.VehicleHandler, gate echo.MiddlewareFunc) {
	g := e.Group("/api/admin", gate, middleware.RequireRole(model.RoleAdmin))

	g.GET("/users", a.ListUsers)
	g.DELETE("/users/:id", a.SoftDeleteUser)
	g.GET("/analytics", a.Analytics)

	g.GET("/vehicles", a.ListVehicles)
	g.DELETE("/vehicles/:id", v.SoftDelete)

	g.GET("/trips", a.ListTrips)
	g.DELETE("/trips/:id", a.SoftDeleteTrip)
}
