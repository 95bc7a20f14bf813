package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fleet-booking/internal/handler"
)

// RegisterAuth registers the session lifecycle endpoints under
// /api/auth. Register and login are throttled by the token bucket
// limiter; refresh and logout authenticate through their own tokens,
// so neither sits behind the bearer gate. /api/auth/me does.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, gate, limiter echo.MiddlewareFunc) {
	g := e.Group("/api/auth")
	g.POST("/register", a.Register, limiter)
	g.POST("/login", a.Login, limiter)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)
	g.GET("/me", a.Me, gate)
}
