package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"context"  // context for dependency calls
	"net/http" // HTTP status codes for responses
	"strings"  // string utilities for prefix checking and trimming

	"github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

	"github.com/iliyamo/fleet-booking/internal/model"
	"github.com/iliyamo/fleet-booking/internal/utils"
)

// TokenChecker answers whether an access token has been revoked. An
// error means the registry could not be consulted; the gate then
// rejects the request rather than risk honoring a revoked token.
type TokenChecker interface {
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// UserResolver loads the user record for a token subject.
type UserResolver interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// Protect returns the bearer-token auth gate. Per request it walks a
// fixed sequence, short-circuiting with 401 at the first failure:
//
//  1. extract the bearer token from the Authorization header
//  2. consult the revocation registry (fail closed on registry errors)
//  3. verify signature and expiry against the access secret
//  4. resolve the subject; missing or soft-deleted users are rejected
//  5. attach the identity to the request context and continue
//
// Handlers read the identity via c.Get("user") (model.User), and the
// shortcuts "user_id" and "role". Role checks are a separate middleware
// (RequireRole) that trusts the identity attached here.
func Protect(accessSecret string, users UserResolver, blacklist TokenChecker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "not authorized, no token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			ctx := c.Request().Context()

			revoked, err := blacklist.IsRevoked(ctx, raw)
			if err != nil {
				// Registry unreachable: reject rather than serve a
				// possibly revoked token.
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "not authorized, token revoked"})
			}
			if revoked {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "not authorized, token revoked"})
			}

			subject, _, err := utils.Verify(accessSecret, raw)
			if err != nil {
				// Expired and forged tokens are the same failure to the client.
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "not authorized, token failed"})
			}

			u, err := users.GetByID(ctx, subject)
			if err != nil || u.IsDeleted {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "not authorized, user not found"})
			}

			c.Set("user", u)
			c.Set("user_id", u.ID)
			c.Set("role", u.Role)
			return next(c)
		}
	}
}
