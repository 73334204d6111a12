// utils/session.go
package utils

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/impulsohub/painel/models"
)

// Cookie names. token is the opaque bearer credential forwarded upstream;
// user is the JSON-encoded session user for role routing.
const (
	TokenCookie = "token"
	UserCookie  = "user"
)

// SessionOptions describes how session cookies are written.
type SessionOptions struct {
	MaxAge time.Duration
	Secure bool
}

// SetSession writes both session cookies. Only the login and profile-update
// flows call this.
func SetSession(c echo.Context, token string, user models.SessionUser, opts SessionOptions) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	writeCookie(c, TokenCookie, token, opts)
	// JSON is not cookie-safe in Go's sanitizer; percent-encode it.
	writeCookie(c, UserCookie, url.QueryEscape(string(data)), opts)
	return nil
}

// RefreshUser rewrites only the user cookie, keeping the token untouched.
// Used after a profile update so the header shows the new name immediately.
func RefreshUser(c echo.Context, user models.SessionUser, opts SessionOptions) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	writeCookie(c, UserCookie, url.QueryEscape(string(data)), opts)
	return nil
}

// ClearSession expires both cookies. Only logout calls this.
func ClearSession(c echo.Context) {
	expire := SessionOptions{MaxAge: -time.Second}
	writeCookie(c, TokenCookie, "", expire)
	writeCookie(c, UserCookie, "", expire)
}

// CurrentToken reads the bearer credential, empty when unauthenticated.
func CurrentToken(c echo.Context) string {
	cookie, err := c.Cookie(TokenCookie)
	if err != nil || cookie.Value == "" {
		return ""
	}
	return cookie.Value
}

// CurrentUser reads the session user. Malformed cookie content reads as no
// user rather than an error; the guard then treats the request as roleless.
func CurrentUser(c echo.Context) *models.SessionUser {
	cookie, err := c.Cookie(UserCookie)
	if err != nil || cookie.Value == "" {
		return nil
	}
	raw, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return nil
	}
	var user models.SessionUser
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil
	}
	return &user
}

func writeCookie(c echo.Context, name, value string, opts SessionOptions) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(opts.MaxAge / time.Second),
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
