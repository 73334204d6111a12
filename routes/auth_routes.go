package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/impulsohub/painel/controllers"
)

// RegisterAuthRoutes sets up the public pages: login, logout and the password
// recovery flow. The session guard redirects logged users away from these.
func RegisterAuthRoutes(e *echo.Echo, authController *controllers.AuthController) {
	e.GET("/login", authController.ShowLogin)
	e.POST("/login", authController.Login)
	e.GET("/logout", authController.Logout)

	e.GET("/forgot-password", authController.ShowForgotPassword)
	e.POST("/forgot-password", authController.ForgotPassword)
	e.GET("/reset-password", authController.ShowResetPassword)
	e.POST("/reset-password", authController.ResetPassword)
}
