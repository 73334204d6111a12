// services/auth_service.go
package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/impulsohub/painel/models"
)

// Generic success for password-reset requests. Always returned on a
// non-transport outcome so the panel never leaks whether an account exists.
const resetRequestMessage = "If an account with this email exists, a password reset link has been sent."

// AuthService is the gateway for /api/auth/*.
type AuthService struct {
	api *Client
	log zerolog.Logger
}

// NewAuthService builds the auth gateway.
func NewAuthService(api *Client, log zerolog.Logger) *AuthService {
	return &AuthService{api: api, log: log.With().Str("service", "auth").Logger()}
}

// Login exchanges credentials for the opaque bearer token and the session
// user. No cookie is touched here; the controller owns session writes.
func (s *AuthService) Login(ctx context.Context, email, password string) models.LoginResult {
	if email == "" || password == "" {
		return models.LoginResult{Result: models.Fail("Email e senha são obrigatórios")}
	}

	status, body, err := s.api.Do(ctx, http.MethodPost, "/api/auth/login", "", nil, map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return models.LoginResult{Result: models.ConnectionError()}
	}
	if status >= 400 {
		return models.LoginResult{Result: models.Fail(MessageFrom(body, "Falha no login"))}
	}

	doc := gjson.ParseBytes(body)
	user := models.SessionUser{
		ID:    doc.Get("_id").String(),
		Name:  doc.Get("name").String(),
		Email: doc.Get("email").String(),
		Role:  doc.Get("role").String(),
	}
	token := doc.Get("token").String()
	if token == "" || user.ID == "" || user.Role == "" {
		s.log.Error().RawJSON("body", body).Msg("login response missing expected fields")
		return models.LoginResult{Result: models.Fail("Resposta de login inválida recebida do servidor.")}
	}

	return models.LoginResult{Result: models.Ok(""), User: user, Token: token}
}

// Register creates a user. The bearer token is optional: self-registration is
// public, creating managers and influencers requires an admin session.
func (s *AuthService) Register(ctx context.Context, token string, req models.RegisterRequest) models.UserResult {
	status, body, err := s.api.Do(ctx, http.MethodPost, "/api/auth/register", token, nil, req)
	if err != nil {
		return models.UserResult{Result: models.ConnectionError()}
	}
	if status >= 400 {
		return models.UserResult{Result: models.Fail(MessageFrom(body, "Falha ao registrar usuário"))}
	}

	var user models.User
	if err := json.Unmarshal(body, &user); err != nil {
		s.log.Error().Err(err).Msg("failed to decode register response")
		return models.UserResult{Result: models.ConnectionError()}
	}
	return models.UserResult{Result: models.Ok("Registro realizado com sucesso! Aguarde aprovação do administrador."), User: &user}
}

// GetProfile fetches the logged user's profile.
func (s *AuthService) GetProfile(ctx context.Context, token string) models.UserResult {
	if token == "" {
		return models.UserResult{Result: models.Unauthorized()}
	}
	status, body, err := s.api.Do(ctx, http.MethodGet, "/api/auth/profile", token, nil, nil)
	if err != nil {
		return models.UserResult{Result: models.ConnectionError()}
	}
	if status >= 400 {
		return models.UserResult{Result: models.Fail(MessageFrom(body, "Falha ao obter perfil"))}
	}
	var user models.User
	if err := json.Unmarshal(body, &user); err != nil {
		return models.UserResult{Result: models.ConnectionError()}
	}
	return models.UserResult{Result: models.Ok(""), User: &user}
}

// RequestPasswordReset asks the backend to send a reset link. Any non-
// transport outcome reports the generic success message so account existence
// never leaks through this flow.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) models.Result {
	_, body, err := s.api.Do(ctx, http.MethodPost, "/api/auth/request-password-reset", "", nil, map[string]string{"email": email})
	if err != nil {
		return models.Fail("An error occurred while requesting the password reset. Please try again later.")
	}
	return models.Ok(MessageFrom(body, resetRequestMessage))
}

// VerifyResetToken checks a reset token before showing the reset form.
func (s *AuthService) VerifyResetToken(ctx context.Context, token string) models.Result {
	if token == "" {
		return models.Fail("Reset token is missing.")
	}
	q := url.Values{"token": {token}}
	status, body, err := s.api.Do(ctx, http.MethodGet, "/api/auth/verify-reset-token", "", q, nil)
	if err != nil {
		return models.Fail("An error occurred while verifying the token.")
	}
	if status >= 400 {
		return models.Fail(MessageFrom(body, "Invalid or expired token."))
	}
	return models.Ok("")
}

// ResetPassword sets a new password using a valid reset token.
func (s *AuthService) ResetPassword(ctx context.Context, token, password string) models.Result {
	if token == "" || password == "" {
		return models.Fail("Token and password are required.")
	}
	status, body, err := s.api.Do(ctx, http.MethodPost, "/api/auth/reset-password", "", nil, map[string]string{
		"token":    token,
		"password": password,
	})
	if err != nil {
		return models.Fail("An error occurred while resetting the password.")
	}
	if status >= 400 {
		return models.Fail(MessageFrom(body, "Failed to reset password."))
	}
	return models.Ok(MessageFrom(body, "Password has been reset successfully."))
}
