package handler

import (
	"context"      // provides context with cancellation for DB calls
	"database/sql" // SQL database interactions
	"log"          // best-effort failure logging
	"net/http"     // HTTP status codes and primitives
	"strings"      // string manipulation utilities
	"time"         // timeouts for DB calls and cookie expiry

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing

	"github.com/iliyamo/fleet-booking/internal/config"     // app configuration
	"github.com/iliyamo/fleet-booking/internal/model"      // domain types
	"github.com/iliyamo/fleet-booking/internal/repository" // DB repositories
	"github.com/iliyamo/fleet-booking/internal/utils"      // helper functions (hashing, token issuing)
)

// TokenRevoker is the write side of the revocation registry. Logout
// treats revocation as best-effort: a failed write is logged but never
// keeps the client logged in.
type TokenRevoker interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
}

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg       config.Config
	Users     *repository.UserRepo
	Blacklist TokenRevoker
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, b TokenRevoker) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Blacklist: b}
}

// ----- DTOs -----

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"` // customer | driver | owner
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResp struct {
	ID           uint64     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Role         model.Role `json:"role"`
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token,omitempty"`
}

const refreshCookieName = "refreshToken"

// setRefreshCookie delivers the refresh token in a scoped cookie that
// scripts cannot read. Secure is dropped only in local development.
func (h *AuthHandler) setRefreshCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   h.Cfg.RefreshTTLDays * 24 * 60 * 60,
		HttpOnly: true,
		Secure:   h.Cfg.Env != "dev",
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) clearRefreshCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.Cfg.Env != "dev",
		SameSite: http.SameSiteStrictMode,
	})
}

// Register creates a user and logs them in immediately: the response
// carries the access token and the refresh token rides in the cookie.
// Admin accounts can never be self-registered.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" || req.Role == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "please enter all fields"})
	}
	role := model.Role(strings.ToLower(strings.TrimSpace(req.Role)))
	if !role.SelfAssignable() {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid role"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Name, req.Email, req.Password, role, h.Cfg.BcryptCost)
	if err != nil {
		if err == repository.ErrEmailExists {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "user already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "create user failed"})
	}

	access, err := utils.NewAccessToken(h.Cfg.AccessSecret, uid, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "issue access failed"})
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshSecret, uid, h.Cfg.RefreshTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "issue refresh failed"})
	}
	h.setRefreshCookie(c, refresh.Token)

	return c.JSON(http.StatusCreated, authResp{
		ID: uid, Name: req.Name, Email: req.Email, Role: role,
		AccessToken: access.Token,
	})
}

// Login verifies credentials and returns a fresh token pair. The
// refresh token is sent both in the body and in the cookie.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid email or password"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "query failed"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid email or password"})
	}

	access, err := utils.NewAccessToken(h.Cfg.AccessSecret, u.ID, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "issue access failed"})
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshSecret, u.ID, h.Cfg.RefreshTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "issue refresh failed"})
	}
	h.setRefreshCookie(c, refresh.Token)

	return c.JSON(http.StatusOK, authResp{
		ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role,
		AccessToken:  access.Token,
		RefreshToken: refresh.Token,
	})
}

// Refresh mints a new access token from the refresh cookie. The refresh
// token itself is not rotated; it stays valid until its own expiry.
// Verification failures are answered with one generic message so the
// endpoint cannot be used as an oracle for expired-vs-forged.
func (h *AuthHandler) Refresh(c echo.Context) error {
	ck, err := c.Cookie(refreshCookieName)
	if err != nil || ck.Value == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "not authorized, no refresh token"})
	}

	subject, _, err := utils.Verify(h.Cfg.RefreshSecret, ck.Value)
	if err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "invalid refresh token"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, subject)
	if err != nil || u.IsDeleted {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "user not found"})
	}

	access, err := utils.NewAccessToken(h.Cfg.AccessSecret, u.ID, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "issue access failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"access_token": access.Token})
}

// Logout blacklists the presented access token for its remaining
// lifetime and clears the refresh cookie. The claims are decoded
// without verification because only the expiry matters here; a forged
// token blacklists nothing but itself. Logout always succeeds from the
// client's point of view, even when the revocation write fails.
func (h *AuthHandler) Logout(c echo.Context) error {
	auth := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		raw := strings.TrimPrefix(auth, "Bearer ")
		if _, exp, ok := utils.DecodeUnverified(raw); ok {
			remaining := time.Until(exp)
			if remaining > 0 {
				ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
				defer cancel()
				if err := h.Blacklist.Revoke(ctx, raw, remaining); err != nil {
					log.Printf("logout: revoke failed: %v", err)
				}
			}
		}
	}

	h.clearRefreshCookie(c)
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out successfully"})
}

// Me is a simple protected endpoint returning the caller's identity.
func (h *AuthHandler) Me(c echo.Context) error {
	u, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":    u.ID,
		"name":  u.Name,
		"email": u.Email,
		"role":  u.Role,
	})
}
