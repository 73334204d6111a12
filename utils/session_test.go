package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/impulsohub/painel/models"
)

func newContext() (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func contextWithCookies(cookies ...*http.Cookie) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return e.NewContext(req, httptest.NewRecorder())
}

func TestSessionRoundTrip(t *testing.T) {
	c, rec := newContext()
	user := models.SessionUser{ID: "u1", Name: "Ana Souza", Email: "ana@x.com", Role: "manager"}
	opts := SessionOptions{MaxAge: 7 * 24 * time.Hour}

	require.NoError(t, SetSession(c, "tok-1", user, opts))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 2)

	read := contextWithCookies(cookies...)
	assert.Equal(t, "tok-1", CurrentToken(read))
	got := CurrentUser(read)
	require.NotNil(t, got)
	assert.Equal(t, user, *got)
}

func TestSessionCookieAttributes(t *testing.T) {
	c, rec := newContext()
	opts := SessionOptions{MaxAge: time.Hour, Secure: true}
	require.NoError(t, SetSession(c, "tok", models.SessionUser{ID: "u", Role: "admin"}, opts))

	for _, cookie := range rec.Result().Cookies() {
		assert.True(t, cookie.HttpOnly, cookie.Name)
		assert.True(t, cookie.Secure, cookie.Name)
		assert.Equal(t, "/", cookie.Path, cookie.Name)
		assert.Equal(t, 3600, cookie.MaxAge, cookie.Name)
	}
}

func TestClearSessionExpiresCookies(t *testing.T) {
	c, rec := newContext()
	ClearSession(c)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 2)
	for _, cookie := range cookies {
		assert.Empty(t, cookie.Value)
		assert.Negative(t, cookie.MaxAge)
	}
}

func TestCurrentUserMalformedCookie(t *testing.T) {
	read := contextWithCookies(&http.Cookie{Name: UserCookie, Value: "%7Bnot-json"})
	assert.Nil(t, CurrentUser(read))

	read = contextWithCookies(&http.Cookie{Name: UserCookie, Value: "%zz"})
	assert.Nil(t, CurrentUser(read))
}

func TestCurrentTokenMissing(t *testing.T) {
	assert.Empty(t, CurrentToken(contextWithCookies()))
}
