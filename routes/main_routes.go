package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/impulsohub/painel/controllers"
	"github.com/impulsohub/painel/middleware"
	"github.com/impulsohub/painel/utils"
)

// SetupRoutes sets up the routes every logged role shares: the root redirect
// and the settings area.
func SetupRoutes(e *echo.Echo, userController *controllers.UserController) {
	e.GET("/", func(c echo.Context) error {
		role := ""
		if user := utils.CurrentUser(c); user != nil {
			role = user.Role
		}
		return c.Redirect(http.StatusFound, middleware.DashboardPath(role))
	})

	e.GET("/settings", userController.SettingsPage)
	e.PUT("/settings/profile", userController.UpdateProfile)
	e.PUT("/settings/password", userController.UpdatePassword)
	e.PUT("/settings/notifications", userController.UpdateSettings)
	e.PUT("/settings/messages/:kind", userController.UpdateMessageTemplate)
}
