package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/fleet-booking/internal/model"
	"github.com/iliyamo/fleet-booking/internal/utils"
)

const gateSecret = "gate-test-secret"

// fakeChecker is a canned revocation registry.
type fakeChecker struct {
	revoked bool
	err     error
}

func (f fakeChecker) IsRevoked(ctx context.Context, token string) (bool, error) {
	return f.revoked, f.err
}

// fakeResolver serves users from a map keyed by ID.
type fakeResolver struct {
	users map[uint64]model.User
}

func (f fakeResolver) GetByID(ctx context.Context, id uint64) (model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return model.User{}, errors.New("no rows")
	}
	return u, nil
}

func newGateServer(t *testing.T, checker fakeChecker, resolver fakeResolver, extra ...echo.MiddlewareFunc) *echo.Echo {
	t.Helper()
	e := echo.New()
	mws := append([]echo.MiddlewareFunc{Protect(gateSecret, resolver, checker)}, extra...)
	e.GET("/protected", func(c echo.Context) error {
		u, _ := c.Get("user").(model.User)
		return c.JSON(http.StatusOK, echo.Map{"id": u.ID, "role": u.Role})
	}, mws...)
	return e
}

func doGet(e *echo.Echo, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func issueToken(t *testing.T, secret string, id uint64) string {
	t.Helper()
	st, err := utils.NewAccessToken(secret, id, 15)
	require.NoError(t, err)
	return st.Token
}

func TestProtectNoToken(t *testing.T) {
	e := newGateServer(t, fakeChecker{}, fakeResolver{})

	rec := doGet(e, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "no token")
}

func TestProtectRevokedToken(t *testing.T) {
	users := map[uint64]model.User{1: {ID: 1, Role: model.RoleCustomer}}
	e := newGateServer(t, fakeChecker{revoked: true}, fakeResolver{users: users})

	rec := doGet(e, "Bearer "+issueToken(t, gateSecret, 1))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "token revoked")
}

// The registry being unreachable must reject the request: a revoked
// token must never slip through while Redis is down.
func TestProtectFailsClosedOnRegistryError(t *testing.T) {
	users := map[uint64]model.User{1: {ID: 1, Role: model.RoleCustomer}}
	e := newGateServer(t, fakeChecker{err: errors.New("connection refused")}, fakeResolver{users: users})

	rec := doGet(e, "Bearer "+issueToken(t, gateSecret, 1))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProtectBadSignature(t *testing.T) {
	users := map[uint64]model.User{1: {ID: 1, Role: model.RoleCustomer}}
	e := newGateServer(t, fakeChecker{}, fakeResolver{users: users})

	rec := doGet(e, "Bearer "+issueToken(t, "some-other-secret", 1))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "token failed")
}

func TestProtectDeletedUser(t *testing.T) {
	users := map[uint64]model.User{1: {ID: 1, Role: model.RoleCustomer, IsDeleted: true}}
	e := newGateServer(t, fakeChecker{}, fakeResolver{users: users})

	rec := doGet(e, "Bearer "+issueToken(t, gateSecret, 1))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "user not found")
}

func TestProtectUnknownSubject(t *testing.T) {
	e := newGateServer(t, fakeChecker{}, fakeResolver{users: map[uint64]model.User{}})

	rec := doGet(e, "Bearer "+issueToken(t, gateSecret, 99))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProtectValidToken(t *testing.T) {
	users := map[uint64]model.User{1: {ID: 1, Name: "Ana", Role: model.RoleOwner}}
	e := newGateServer(t, fakeChecker{}, fakeResolver{users: users})

	rec := doGet(e, "Bearer "+issueToken(t, gateSecret, 1))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":1`)
}

func TestRequireRoleForbidsWrongRole(t *testing.T) {
	users := map[uint64]model.User{1: {ID: 1, Role: model.RoleCustomer}}
	e := newGateServer(t, fakeChecker{}, fakeResolver{users: users}, RequireRole(model.RoleAdmin))

	rec := doGet(e, "Bearer "+issueToken(t, gateSecret, 1))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "not authorized to access this route")
}

func TestRequireRoleAllowsMember(t *testing.T) {
	users := map[uint64]model.User{1: {ID: 1, Role: model.RoleDriver}}
	e := newGateServer(t, fakeChecker{}, fakeResolver{users: users}, RequireRole(model.RoleDriver, model.RoleAdmin))

	rec := doGet(e, "Bearer "+issueToken(t, gateSecret, 1))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRoleWithoutIdentity(t *testing.T) {
	e := echo.New()
	e.GET("/x", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, RequireRole(model.RoleAdmin))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
