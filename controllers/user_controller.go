// controllers/user_controller.go
package controllers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/impulsohub/painel/config"
	"github.com/impulsohub/painel/models"
	"github.com/impulsohub/painel/services"
	"github.com/impulsohub/painel/utils"
)

// UserController serves the admin user-management screens and the logged
// user's own settings page.
type UserController struct {
	users *services.UserService
	auth  *services.AuthService
	cfg   config.Config
	log   zerolog.Logger
}

// NewUserController builds the user controller.
func NewUserController(users *services.UserService, auth *services.AuthService, cfg config.Config, log zerolog.Logger) *UserController {
	return &UserController{users: users, auth: auth, cfg: cfg, log: log.With().Str("controller", "users").Logger()}
}

// UsersPage renders the admin user listing with filters.
func (uc *UserController) UsersPage(c echo.Context) error {
	token := utils.CurrentToken(c)
	filters := models.UserFilters{
		Role:   c.QueryParam("role"),
		Search: c.QueryParam("search"),
		Page:   atoiOrZero(c.QueryParam("page")),
	}
	if active := c.QueryParam("isActive"); active != "" {
		v := active == "true"
		filters.IsActive = &v
	}

	result := uc.users.GetUsers(c.Request().Context(), token, filters)
	managers := uc.users.GetManagers(c.Request().Context(), token)

	return c.Render(http.StatusOK, "users", echo.Map{
		"User":     utils.CurrentUser(c),
		"Users":    result.Users,
		"Total":    result.Total,
		"Pages":    result.Pages,
		"Managers": managers.Users,
		"Filters":  filters,
		"Error":    errorMessage(result.Result),
	})
}

// CreateUser registers a user (admin creating managers/influencers).
func (uc *UserController) CreateUser(c echo.Context) error {
	var req models.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Fail("Dados inválidos"))
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Fail("Preencha nome, email, senha e perfil"))
	}

	result := uc.auth.Register(c.Request().Context(), utils.CurrentToken(c), req)
	if !result.Success {
		return c.JSON(http.StatusBadGateway, result.Result)
	}
	return c.JSON(http.StatusCreated, result)
}

// UpdateUser updates a user's editable fields.
func (uc *UserController) UpdateUser(c echo.Context) error {
	var fields map[string]interface{}
	if err := c.Bind(&fields); err != nil {
		return c.JSON(http.StatusBadRequest, models.Fail("Dados inválidos"))
	}
	delete(fields, "_id")

	result := uc.users.UpdateUser(c.Request().Context(), utils.CurrentToken(c), c.Param("id"), fields)
	if !result.Success {
		return c.JSON(http.StatusBadGateway, result.Result)
	}
	return c.JSON(http.StatusOK, result)
}

// DeleteUser removes a user.
func (uc *UserController) DeleteUser(c echo.Context) error {
	result := uc.users.DeleteUser(c.Request().Context(), utils.CurrentToken(c), c.Param("id"))
	if !result.Success {
		return c.JSON(http.StatusBadGateway, result)
	}
	return c.JSON(http.StatusOK, result)
}

// DeactivateUser flips a user to inactive.
func (uc *UserController) DeactivateUser(c echo.Context) error {
	result := uc.users.DeactivateUser(c.Request().Context(), utils.CurrentToken(c), c.Param("id"))
	if !result.Success {
		return c.JSON(http.StatusBadGateway, result)
	}
	return c.JSON(http.StatusOK, result)
}

// SettingsPage renders the logged user's settings (profile, password,
// notifications, message templates).
func (uc *UserController) SettingsPage(c echo.Context) error {
	token := utils.CurrentToken(c)
	profile := uc.auth.GetProfile(c.Request().Context(), token)
	settings := uc.users.GetSettings(c.Request().Context(), token)

	return c.Render(http.StatusOK, "settings", echo.Map{
		"User":     utils.CurrentUser(c),
		"Profile":  profile.User,
		"Settings": settings.Settings,
		"Error":    errorMessage(profile.Result),
	})
}

// UpdateProfile saves name/email and refreshes the user cookie so the header
// shows the new identity without a re-login.
func (uc *UserController) UpdateProfile(c echo.Context) error {
	var req models.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Fail("Dados inválidos"))
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Fail("Nome e email são obrigatórios"))
	}

	result := uc.users.UpdateProfile(c.Request().Context(), utils.CurrentToken(c), req)
	if !result.Success {
		return c.JSON(http.StatusBadGateway, result.Result)
	}

	if current := utils.CurrentUser(c); current != nil && result.User != nil {
		refreshed := *current
		refreshed.Name = result.User.Name
		refreshed.Email = result.User.Email
		opts := utils.SessionOptions{MaxAge: uc.cfg.CookieMaxAge, Secure: uc.cfg.IsProduction()}
		if err := utils.RefreshUser(c, refreshed, opts); err != nil {
			uc.log.Error().Err(err).Msg("failed to refresh user cookie")
		}
	}
	return c.JSON(http.StatusOK, result)
}

// UpdatePassword changes the logged user's password.
func (uc *UserController) UpdatePassword(c echo.Context) error {
	var req models.UpdatePasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Fail("Dados inválidos"))
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Fail("Informe a senha atual e a nova senha"))
	}

	result := uc.users.UpdatePassword(c.Request().Context(), utils.CurrentToken(c), req)
	if !result.Success {
		return c.JSON(http.StatusBadGateway, result)
	}
	return c.JSON(http.StatusOK, result)
}

// UpdateSettings saves notification settings.
func (uc *UserController) UpdateSettings(c echo.Context) error {
	var settings models.NotificationSettings
	if err := c.Bind(&settings); err != nil {
		return c.JSON(http.StatusBadRequest, models.Fail("Dados inválidos"))
	}
	result := uc.users.UpdateSettings(c.Request().Context(), utils.CurrentToken(c), settings)
	if !result.Success {
		return c.JSON(http.StatusBadGateway, result.Result)
	}
	return c.JSON(http.StatusOK, result)
}

// UpdateMessageTemplate saves one automated message template.
func (uc *UserController) UpdateMessageTemplate(c echo.Context) error {
	kind := c.Param("kind")
	switch kind {
	case "welcome", "report", "reminder":
	default:
		return c.JSON(http.StatusBadRequest, models.Fail("Modelo de mensagem desconhecido"))
	}
	content := c.FormValue("content")
	if content == "" {
		return c.JSON(http.StatusBadRequest, models.Fail("O conteúdo da mensagem é obrigatório"))
	}

	result := uc.users.UpdateMessageTemplate(c.Request().Context(), utils.CurrentToken(c), kind, content)
	if !result.Success {
		return c.JSON(http.StatusBadGateway, result)
	}
	return c.JSON(http.StatusOK, result)
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// errorMessage turns a failed result into a template-friendly string, empty
// on success.
func errorMessage(r models.Result) string {
	if r.Success {
		return ""
	}
	return r.Message
}
