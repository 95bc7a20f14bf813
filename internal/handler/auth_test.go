package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/fleet-booking/internal/config"
	"github.com/iliyamo/fleet-booking/internal/repository"
	"github.com/iliyamo/fleet-booking/internal/utils"
)

var testCfg = config.Config{
	Env:            "dev",
	AccessSecret:   "access-test-secret",
	RefreshSecret:  "refresh-test-secret",
	AccessTTLMin:   15,
	RefreshTTLDays: 7,
	BcryptCost:     4,
}

// fakeRevoker records revocations and can be told to fail.
type fakeRevoker struct {
	tokens []string
	ttls   []time.Duration
	err    error
}

func (f *fakeRevoker) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	f.tokens = append(f.tokens, token)
	f.ttls = append(f.ttls, ttl)
	return f.err
}

func newAuthHandler(t *testing.T) (*AuthHandler, sqlmock.Sqlmock, *fakeRevoker) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	rev := &fakeRevoker{}
	return NewAuthHandler(testCfg, repository.NewUserRepo(db), rev), mock, rev
}

func jsonCtx(method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

var userTestCols = []string{"id", "name", "email", "password_hash", "role", "is_deleted", "created_at", "updated_at"}

func TestRegister(t *testing.T) {
	h, mock, _ := newAuthHandler(t)

	mock.ExpectExec("INSERT INTO users").
		WithArgs("Ana", "ana@example.com", sqlmock.AnyArg(), "owner").
		WillReturnResult(sqlmock.NewResult(5, 1))

	c, rec := jsonCtx(http.MethodPost, "/api/auth/register",
		`{"name":"Ana","email":"Ana@Example.com","password":"secret","role":"owner"}`)
	require.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp authResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, uint64(5), resp.ID)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Empty(t, resp.RefreshToken, "refresh token travels only in the cookie on register")

	ck := findCookie(rec, refreshCookieName)
	require.NotNil(t, ck)
	assert.True(t, ck.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, ck.SameSite)
	assert.NotEmpty(t, ck.Value)

	// The cookie token must verify against the refresh secret, not the access one.
	sub, _, err := utils.Verify(testCfg.RefreshSecret, ck.Value)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), sub)
	_, _, err = utils.Verify(testCfg.AccessSecret, ck.Value)
	assert.Error(t, err)
}

func TestRegisterMissingFields(t *testing.T) {
	h, _, _ := newAuthHandler(t)

	c, rec := jsonCtx(http.MethodPost, "/api/auth/register", `{"name":"Ana","email":"a@b.c"}`)
	require.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "please enter all fields")
}

func TestRegisterRejectsAdminRole(t *testing.T) {
	h, _, _ := newAuthHandler(t)

	c, rec := jsonCtx(http.MethodPost, "/api/auth/register",
		`{"name":"Eve","email":"eve@example.com","password":"secret","role":"admin"}`)
	require.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid role")
}

func TestRegisterDuplicateEmail(t *testing.T) {
	h, mock, _ := newAuthHandler(t)

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry"))

	c, rec := jsonCtx(http.MethodPost, "/api/auth/register",
		`{"name":"Ana","email":"ana@example.com","password":"secret","role":"customer"}`)
	require.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "user already exists")
}

func TestLogin(t *testing.T) {
	h, mock, _ := newAuthHandler(t)

	hash, err := utils.HashPassword("secret", testCfg.BcryptCost)
	require.NoError(t, err)
	now := time.Now()
	mock.ExpectQuery("FROM users WHERE email=\\? AND is_deleted=0").
		WithArgs("ana@example.com").
		WillReturnRows(sqlmock.NewRows(userTestCols).
			AddRow(5, "Ana", "ana@example.com", hash, "owner", false, now, now))

	c, rec := jsonCtx(http.MethodPost, "/api/auth/login",
		`{"email":"ana@example.com","password":"secret"}`)
	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp authResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	require.NotNil(t, findCookie(rec, refreshCookieName))
}

func TestLoginWrongPassword(t *testing.T) {
	h, mock, _ := newAuthHandler(t)

	hash, err := utils.HashPassword("secret", testCfg.BcryptCost)
	require.NoError(t, err)
	now := time.Now()
	mock.ExpectQuery("FROM users WHERE email=\\? AND is_deleted=0").
		WillReturnRows(sqlmock.NewRows(userTestCols).
			AddRow(5, "Ana", "ana@example.com", hash, "owner", false, now, now))

	c, rec := jsonCtx(http.MethodPost, "/api/auth/login",
		`{"email":"ana@example.com","password":"wrong"}`)
	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid email or password")
}

func TestLoginUnknownEmail(t *testing.T) {
	h, mock, _ := newAuthHandler(t)

	mock.ExpectQuery("FROM users WHERE email=\\? AND is_deleted=0").
		WillReturnError(sql.ErrNoRows)

	c, rec := jsonCtx(http.MethodPost, "/api/auth/login",
		`{"email":"ghost@example.com","password":"secret"}`)
	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	// Same message as a bad password so the endpoint does not leak
	// which emails exist.
	assert.Contains(t, rec.Body.String(), "invalid email or password")
}

func TestRefresh(t *testing.T) {
	h, mock, _ := newAuthHandler(t)

	refresh, err := utils.NewRefreshToken(testCfg.RefreshSecret, 5, testCfg.RefreshTTLDays)
	require.NoError(t, err)
	now := time.Now()
	mock.ExpectQuery("FROM users WHERE id=\\?").
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows(userTestCols).
			AddRow(5, "Ana", "ana@example.com", "hash", "owner", false, now, now))

	c, rec := jsonCtx(http.MethodPost, "/api/auth/refresh", "")
	c.Request().AddCookie(&http.Cookie{Name: refreshCookieName, Value: refresh.Token})
	require.NoError(t, h.Refresh(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	sub, _, err := utils.Verify(testCfg.AccessSecret, resp["access_token"])
	require.NoError(t, err)
	assert.Equal(t, uint64(5), sub)
}

func TestRefreshWithoutCookie(t *testing.T) {
	h, _, _ := newAuthHandler(t)

	c, rec := jsonCtx(http.MethodPost, "/api/auth/refresh", "")
	require.NoError(t, h.Refresh(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "no refresh token")
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	h, _, _ := newAuthHandler(t)

	// An access token in the refresh cookie must fail: different secret.
	access, err := utils.NewAccessToken(testCfg.AccessSecret, 5, 15)
	require.NoError(t, err)

	c, rec := jsonCtx(http.MethodPost, "/api/auth/refresh", "")
	c.Request().AddCookie(&http.Cookie{Name: refreshCookieName, Value: access.Token})
	require.NoError(t, h.Refresh(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid refresh token")
}

func TestRefreshDeletedUser(t *testing.T) {
	h, mock, _ := newAuthHandler(t)

	refresh, err := utils.NewRefreshToken(testCfg.RefreshSecret, 5, testCfg.RefreshTTLDays)
	require.NoError(t, err)
	now := time.Now()
	mock.ExpectQuery("FROM users WHERE id=\\?").
		WillReturnRows(sqlmock.NewRows(userTestCols).
			AddRow(5, "Ana", "ana@example.com", "hash", "owner", true, now, now))

	c, rec := jsonCtx(http.MethodPost, "/api/auth/refresh", "")
	c.Request().AddCookie(&http.Cookie{Name: refreshCookieName, Value: refresh.Token})
	require.NoError(t, h.Refresh(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutRevokesAccessToken(t *testing.T) {
	h, _, rev := newAuthHandler(t)

	access, err := utils.NewAccessToken(testCfg.AccessSecret, 5, 15)
	require.NoError(t, err)

	c, rec := jsonCtx(http.MethodPost, "/api/auth/logout", "")
	c.Request().Header.Set("Authorization", "Bearer "+access.Token)
	require.NoError(t, h.Logout(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, rev.tokens, 1)
	assert.Equal(t, access.Token, rev.tokens[0])
	assert.Greater(t, rev.ttls[0], time.Duration(0))
	assert.LessOrEqual(t, rev.ttls[0], 15*time.Minute)

	ck := findCookie(rec, refreshCookieName)
	require.NotNil(t, ck, "logout must clear the refresh cookie")
	assert.Empty(t, ck.Value)
	assert.Negative(t, ck.MaxAge)
}

// A broken registry must not trap the user in their session: logout
// still reports success and clears the cookie.
func TestLogoutSucceedsWhenRevokeFails(t *testing.T) {
	h, _, rev := newAuthHandler(t)
	rev.err = errors.New("redis down")

	access, err := utils.NewAccessToken(testCfg.AccessSecret, 5, 15)
	require.NoError(t, err)

	c, rec := jsonCtx(http.MethodPost, "/api/auth/logout", "")
	c.Request().Header.Set("Authorization", "Bearer "+access.Token)
	require.NoError(t, h.Logout(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "logged out successfully")
	require.NotNil(t, findCookie(rec, refreshCookieName))
}

func TestLogoutWithoutToken(t *testing.T) {
	h, _, rev := newAuthHandler(t)

	c, rec := jsonCtx(http.MethodPost, "/api/auth/logout", "")
	require.NoError(t, h.Logout(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rev.tokens, "nothing to revoke without a bearer token")
}
