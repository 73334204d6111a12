// middleware/auth_middleware.go
package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/impulsohub/painel/models"
	"github.com/impulsohub/painel/utils"
)

// Pages reachable without a session.
var publicPaths = []string{"/login", "/forgot-password", "/reset-password"}

func isPublicPath(path string) bool {
	for _, p := range publicPaths {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return strings.HasPrefix(path, "/static/")
}

// DashboardPath maps a role to its landing page. Unknown roles land on the
// login page.
func DashboardPath(role string) string {
	switch role {
	case models.RoleAdmin:
		return "/admin/dashboard"
	case models.RoleManager:
		return "/manager/dashboard"
	case models.RoleInfluencer:
		return "/influencer/dashboard"
	default:
		return "/login"
	}
}

// SessionGuard is the route guard: unauthenticated requests to private pages
// are sent to the login page; authenticated requests to public pages are sent
// to the role dashboard. The role comes from the user cookie, never from the
// network.
func SessionGuard() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			token := utils.CurrentToken(c)
			public := isPublicPath(path)

			if token == "" && !public {
				return c.Redirect(http.StatusFound, "/login")
			}
			if token != "" && public {
				role := ""
				if user := utils.CurrentUser(c); user != nil {
					role = user.Role
				}
				return c.Redirect(http.StatusFound, DashboardPath(role))
			}
			return next(c)
		}
	}
}

// RequireRole gates an area group to the given roles. Page requests are
// redirected to the caller's own dashboard; JSON requests get a 403 in the
// uniform result shape.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := utils.CurrentUser(c)
			if user != nil {
				for _, role := range roles {
					if user.Role == role {
						return next(c)
					}
				}
			}

			if wantsJSON(c) {
				return c.JSON(http.StatusForbidden, models.Fail("Acesso negado para o seu perfil"))
			}
			if user == nil {
				return c.Redirect(http.StatusFound, "/login")
			}
			return c.Redirect(http.StatusFound, DashboardPath(user.Role))
		}
	}
}

func wantsJSON(c echo.Context) bool {
	accept := c.Request().Header.Get(echo.HeaderAccept)
	return strings.Contains(accept, echo.MIMEApplicationJSON) ||
		strings.Contains(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON)
}
