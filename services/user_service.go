// services/user_service.go
package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/impulsohub/painel/models"
)

// UserService is the gateway for /api/users/* (admin user management and the
// logged user's own settings/profile).
type UserService struct {
	api *Client
	log zerolog.Logger
}

// NewUserService builds the users gateway.
func NewUserService(api *Client, log zerolog.Logger) *UserService {
	return &UserService{api: api, log: log.With().Str("service", "users").Logger()}
}

// GetUsers fetches the admin user listing.
func (s *UserService) GetUsers(ctx context.Context, token string, filters models.UserFilters) models.UsersResult {
	if token == "" {
		return models.UsersResult{Result: models.Unauthorized()}
	}
	q := url.Values{}
	if filters.Role != "" {
		q.Set("role", filters.Role)
	}
	if filters.Search != "" {
		q.Set("search", filters.Search)
	}
	if filters.IsActive != nil {
		q.Set("isActive", strconv.FormatBool(*filters.IsActive))
	}
	if filters.Page > 0 {
		q.Set("page", strconv.Itoa(filters.Page))
	}
	if filters.Limit > 0 {
		q.Set("limit", strconv.Itoa(filters.Limit))
	}
	status, body, err := s.api.Do(ctx, http.MethodGet, "/api/users", token, q, nil)
	if err != nil {
		return models.UsersResult{Result: models.ConnectionError()}
	}
	if status >= 400 {
		return models.UsersResult{Result: models.Fail(MessageFrom(body, "Falha ao obter usuários"))}
	}
	doc := gjson.ParseBytes(body)
	var users []models.User
	if err := json.Unmarshal([]byte(doc.Get("users").Raw), &users); err != nil {
		// Some deployments answer a bare array.
		if err := json.Unmarshal(body, &users); err != nil {
			s.log.Error().Err(err).Msg("failed to decode users response")
			return models.UsersResult{Result: models.ConnectionError()}
		}
	}
	return models.UsersResult{
		Result: models.Ok(""),
		Users:  users,
		Total:  int(doc.Get("total").Int()),
		Pages:  int(doc.Get("pages").Int()),
	}
}

// GetUser fetches one user by id.
func (s *UserService) GetUser(ctx context.Context, token, id string) models.UserResult {
	if token == "" {
		return models.UserResult{Result: models.Unauthorized()}
	}
	status, body, err := s.api.Do(ctx, http.MethodGet, "/api/users/"+id, token, nil, nil)
	if err != nil {
		return models.UserResult{Result: models.ConnectionError()}
	}
	if status >= 400 {
		return models.UserResult{Result: models.Fail(MessageFrom(body, "Falha ao obter usuário"))}
	}
	var user models.User
	if err := json.Unmarshal(body, &user); err != nil {
		return models.UserResult{Result: models.ConnectionError()}
	}
	return models.UserResult{Result: models.Ok(""), User: &user}
}

// UpdateUser updates a user's fields.
func (s *UserService) UpdateUser(ctx context.Context, token, id string, fields map[string]interface{}) models.UserResult {
	if token == "" {
		return models.UserResult{Result: models.Unauthorized()}
	}
	status, body, err := s.api.Do(ctx, http.MethodPut, "/api/users/"+id, token, nil, fields)
	if err != nil {
		return models.UserResult{Result: models.ConnectionError()}
	}
	if status >= 400 {
		return models.UserResult{Result: models.Fail(MessageFrom(body, "Falha ao atualizar usuário"))}
	}
	var user models.User
	if err := json.Unmarshal(body, &user); err != nil {
		return models.UserResult{Result: models.ConnectionError()}
	}
	return models.UserResult{Result: models.Ok(""), User: &user}
}

// DeleteUser removes a user.
func (s *UserService) DeleteUser(ctx context.Context, token, id string) models.Result {
	if token == "" {
		return models.Unauthorized()
	}
	status, body, err := s.api.Do(ctx, http.MethodDelete, "/api/users/"+id, token, nil, nil)
	if err != nil {
		return models.ConnectionError()
	}
	if status >= 400 {
		return models.Fail(MessageFrom(body, "Falha ao remover usuário"))
	}
	return models.Ok(MessageFrom(body, ""))
}

// DeactivateUser flips a user to inactive without removing it.
func (s *UserService) DeactivateUser(ctx context.Context, token, id string) models.Result {
	if token == "" {
		return models.Unauthorized()
	}
	status, body, err := s.api.Do(ctx, http.MethodPut, "/api/users/"+id+"/deactivate", token, nil, nil)
	if err != nil {
		return models.ConnectionError()
	}
	if status >= 400 {
		return models.Fail(MessageFrom(body, "Falha ao desativar usuário"))
	}
	return models.Ok(MessageFrom(body, ""))
}

// GetManagers fetches all managers, used to populate assignment dropdowns.
func (s *UserService) GetManagers(ctx context.Context, token string) models.UsersResult {
	if token == "" {
		return models.UsersResult{Result: models.Unauthorized()}
	}
	status, body, err := s.api.Do(ctx, http.MethodGet, "/api/users/managers", token, nil, nil)
	if err != nil {
		return models.UsersResult{Result: models.ConnectionError()}
	}
	if status >= 400 {
		return models.UsersResult{Result: models.Fail(MessageFrom(body, "Falha ao obter gestores"))}
	}
	var managers []models.User
	if err := json.Unmarshal(body, &managers); err != nil {
		return models.UsersResult{Result: models.ConnectionError()}
	}
	return models.UsersResult{Result: models.Ok(""), Users: managers}
}

// UpdatePassword changes the logged user's password.
func (s *UserService) UpdatePassword(ctx context.Context, token string, req models.UpdatePasswordRequest) models.Result {
	if token == "" {
		return models.Unauthorized()
	}
	status, body, err := s.api.Do(ctx, http.MethodPut, "/api/users/password", token, nil, req)
	if err != nil {
		return models.ConnectionError()
	}
	if status >= 400 {
		return models.Fail(MessageFrom(body, "Falha ao atualizar senha"))
	}
	return models.Ok(MessageFrom(body, "Senha atualizada com sucesso"))
}

// UpdateProfile changes the logged user's name and email. The controller
// refreshes the user cookie from the returned document.
func (s *UserService) UpdateProfile(ctx context.Context, token string, req models.UpdateProfileRequest) models.UserResult {
	if token == "" {
		return models.UserResult{Result: models.Unauthorized()}
	}
	status, body, err := s.api.Do(ctx, http.MethodPut, "/api/users/profile", token, nil, req)
	if err != nil {
		return models.UserResult{Result: models.ConnectionError()}
	}
	if status >= 400 {
		return models.UserResult{Result: models.Fail(MessageFrom(body, "Falha ao atualizar perfil"))}
	}
	var user models.User
	if err := json.Unmarshal(body, &user); err != nil {
		return models.UserResult{Result: models.ConnectionError()}
	}
	return models.UserResult{Result: models.Ok("Perfil atualizado com sucesso"), User: &user}
}

// GetSettings fetches the logged user's notification settings.
func (s *UserService) GetSettings(ctx context.Context, token string) models.SettingsResult {
	if token == "" {
		return models.SettingsResult{Result: models.Unauthorized()}
	}
	status, body, err := s.api.Do(ctx, http.MethodGet, "/api/users/settings", token, nil, nil)
	if err != nil {
		return models.SettingsResult{Result: models.ConnectionError()}
	}
	if status >= 400 {
		return models.SettingsResult{Result: models.Fail(MessageFrom(body, "Falha ao obter configurações"))}
	}
	var settings models.NotificationSettings
	if err := json.Unmarshal(body, &settings); err != nil {
		return models.SettingsResult{Result: models.ConnectionError()}
	}
	return models.SettingsResult{Result: models.Ok(""), Settings: &settings}
}

// UpdateSettings saves the logged user's notification settings.
func (s *UserService) UpdateSettings(ctx context.Context, token string, settings models.NotificationSettings) models.SettingsResult {
	if token == "" {
		return models.SettingsResult{Result: models.Unauthorized()}
	}
	status, body, err := s.api.Do(ctx, http.MethodPut, "/api/users/settings", token, nil, settings)
	if err != nil {
		return models.SettingsResult{Result: models.ConnectionError()}
	}
	if status >= 400 {
		return models.SettingsResult{Result: models.Fail(MessageFrom(body, "Falha ao salvar configurações"))}
	}
	var saved models.NotificationSettings
	if err := json.Unmarshal(body, &saved); err != nil {
		return models.SettingsResult{Result: models.ConnectionError()}
	}
	return models.SettingsResult{Result: models.Ok("Configurações salvas"), Settings: &saved}
}

// UpdateMessageTemplate saves one of the automated message templates
// (welcome, report, reminder).
func (s *UserService) UpdateMessageTemplate(ctx context.Context, token, kind, content string) models.Result {
	if token == "" {
		return models.Unauthorized()
	}
	status, body, err := s.api.Do(ctx, http.MethodPut, "/api/users/message-templates/"+kind, token, nil, map[string]string{
		"content": content,
	})
	if err != nil {
		return models.ConnectionError()
	}
	if status >= 400 {
		return models.Fail(MessageFrom(body, "Falha ao salvar modelo de mensagem"))
	}
	return models.Ok(MessageFrom(body, "Modelo de mensagem salvo"))
}
