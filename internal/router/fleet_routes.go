package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fleet-booking/internal/handler"
	"github.com/iliyamo/fleet-booking/internal/middleware"
	"github.com/iliyamo/fleet-booking/internal/model"
)

// RegisterOwner registers vehicle management endpoints under
// /api/vehicles. Creation and listing are owner-only; deletion and the
// insights dashboard also admit admins (deletion ownership is verified
// in the handler).
func RegisterOwner(e *echo.Echo, v *handler.VehicleHandler, gate echo.MiddlewareFunc) {
	g := e.Group("/api/vehicles", gate)

	g.POST("", v.Create, middleware.RequireRole(model.RoleOwner))
	g.GET("/my-vehicles", v.MyVehicles, middleware.RequireRole(model.RoleOwner))
	g.GET("/my-insights", v.MyInsights, middleware.RequireRole(model.RoleOwner, model.RoleAdmin))
	g.DELETE("/:id", v.SoftDelete, middleware.RequireRole(model.RoleOwner, model.RoleAdmin))
}

// RegisterDriver registers driver-scoped endpoints under /api/driver.
func RegisterDriver(e *echo.Echo, d *handler.DriverHandler, gate echo.MiddlewareFunc) {
	g := e.Group("/api/driver", gate, middleware.RequireRole(model.RoleDriver))

	g.GET("/available-vehicles", d.AvailableVehicles)
	g.POST("/register-vehicle/:vehicleId", d.RegisterVehicle)
}
