package handler // handler defines http handlers

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fleet-booking/internal/model"
)

// currentUser returns the identity the auth gate attached to the
// request context. The second result is false when the route was not
// protected, which is a wiring bug rather than a client error.
func currentUser(c echo.Context) (model.User, bool) {
	u, ok := c.Get("user").(model.User)
	return u, ok
}

// paramID parses a numeric path parameter.
func paramID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}
