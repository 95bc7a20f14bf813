package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fleet-booking/internal/handler"
)

// RegisterRoutes registers routes that require no authentication: the
// health check and the public vehicle listing. The listing is served
// through the availability cache; see handler.VehicleHandler.Public.
func RegisterRoutes(e *echo.Echo, v *handler.VehicleHandler) {
	e.GET("/healthz", handler.Health)
	e.GET("/api/vehicles/public", v.Public)
}
