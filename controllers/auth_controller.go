// controllers/auth_controller.go
package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/impulsohub/painel/config"
	"github.com/impulsohub/painel/middleware"
	"github.com/impulsohub/painel/models"
	"github.com/impulsohub/painel/services"
	"github.com/impulsohub/painel/utils"
)

// AuthController serves the public pages (login, password recovery) and owns
// the only flows that write session cookies.
type AuthController struct {
	auth *services.AuthService
	cfg  config.Config
	log  zerolog.Logger
}

// NewAuthController builds the auth controller.
func NewAuthController(auth *services.AuthService, cfg config.Config, log zerolog.Logger) *AuthController {
	return &AuthController{auth: auth, cfg: cfg, log: log.With().Str("controller", "auth").Logger()}
}

func (ac *AuthController) sessionOptions() utils.SessionOptions {
	return utils.SessionOptions{MaxAge: ac.cfg.CookieMaxAge, Secure: ac.cfg.IsProduction()}
}

// ShowLogin renders the login page.
func (ac *AuthController) ShowLogin(c echo.Context) error {
	return c.Render(http.StatusOK, "login", echo.Map{})
}

// Login handles the login form: exchange credentials upstream, write both
// session cookies, land on the role dashboard. On failure no cookie is
// written and the form re-renders with the message.
func (ac *AuthController) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.Render(http.StatusBadRequest, "login", echo.Map{"Error": "Email e senha são obrigatórios"})
	}
	if err := c.Validate(&req); err != nil {
		return c.Render(http.StatusBadRequest, "login", echo.Map{"Error": "Email e senha são obrigatórios", "Email": req.Email})
	}

	result := ac.auth.Login(c.Request().Context(), req.Email, req.Password)
	if !result.Success {
		return c.Render(http.StatusUnauthorized, "login", echo.Map{"Error": result.Message, "Email": req.Email})
	}

	if err := utils.SetSession(c, result.Token, result.User, ac.sessionOptions()); err != nil {
		ac.log.Error().Err(err).Msg("failed to write session cookies")
		return c.Render(http.StatusInternalServerError, "login", echo.Map{"Error": models.MsgConnectionError})
	}

	return c.Redirect(http.StatusFound, middleware.DashboardPath(result.User.Role))
}

// Logout clears the session and returns to the login page.
func (ac *AuthController) Logout(c echo.Context) error {
	utils.ClearSession(c)
	return c.Redirect(http.StatusFound, "/login")
}

// ShowForgotPassword renders the reset-request page.
func (ac *AuthController) ShowForgotPassword(c echo.Context) error {
	return c.Render(http.StatusOK, "forgot_password", echo.Map{})
}

// ForgotPassword forwards the reset request. The page always shows the
// generic confirmation so account existence never leaks.
func (ac *AuthController) ForgotPassword(c echo.Context) error {
	email := c.FormValue("email")
	result := ac.auth.RequestPasswordReset(c.Request().Context(), email)
	if !result.Success {
		return c.Render(http.StatusOK, "forgot_password", echo.Map{"Error": result.Message, "Email": email})
	}
	return c.Render(http.StatusOK, "forgot_password", echo.Map{"Message": result.Message})
}

// ShowResetPassword verifies the token from the email link before rendering
// the new-password form.
func (ac *AuthController) ShowResetPassword(c echo.Context) error {
	token := c.QueryParam("token")
	result := ac.auth.VerifyResetToken(c.Request().Context(), token)
	if !result.Success {
		return c.Render(http.StatusOK, "reset_password", echo.Map{"Error": result.Message, "TokenInvalid": true})
	}
	return c.Render(http.StatusOK, "reset_password", echo.Map{"Token": token})
}

// ResetPassword sets the new password.
func (ac *AuthController) ResetPassword(c echo.Context) error {
	token := c.FormValue("token")
	password := c.FormValue("password")
	confirm := c.FormValue("confirmPassword")
	if password == "" || password != confirm {
		return c.Render(http.StatusBadRequest, "reset_password", echo.Map{"Error": "As senhas não coincidem", "Token": token})
	}

	result := ac.auth.ResetPassword(c.Request().Context(), token, password)
	if !result.Success {
		return c.Render(http.StatusOK, "reset_password", echo.Map{"Error": result.Message, "Token": token})
	}
	return c.Render(http.StatusOK, "reset_password", echo.Map{"Message": result.Message, "Done": true})
}
