// services/manager_service.go
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

// ManagerService is the gateway for /api/manager/*: the logged manager's
// own influencers and sales.
type ManagerService struct {
	api *Client
	log zerolog.Logger
}

// NewManagerService builds the manager gateway.
func NewManagerService(api *Client, log zerolog.Logger) *ManagerService {
	return &ManagerService{api: api, log: log.With().Str("service", "manager").Logger()}
}

// GetSales fetches the manager's sales overview for a period.
func (s *ManagerService) GetSales(ctx context.Context, token, period string) models.RawResult {
	if token == "" {
		return models.RawResult{Result: models.Unauthorized()}
	}
	q := url.Values{}
	if period != "" {
		q.Set("period", period)
	}
	status, body, err := s.api.Do(ctx, http.MethodGet, "/api/manager/sales", token, q, nil)
	if err != nil {
		return models.RawResult{Result: models.ConnectionError()}
	}
	if status >= 400 {
		return models.RawResult{Result: models.Fail(MessageFrom(body, "Falha ao obter vendas"))}
	}
	return models.RawResult{Result: models.Ok(""), Data: body}
}

// GetMyInfluencers fetches the logged manager's influencers.
func (s *ManagerService) GetMyInfluencers(ctx context.Context, token string) models.InfluencersResult {
	if token == "" {
		return models.InfluencersResult{Result: models.Unauthorized()}
	}
	status, body, err := s.api.Do(ctx, http.MethodGet, "/api/manager/influencers", token, nil, nil)
	if err != nil {
		return models.InfluencersResult{Result: models.ConnectionError()}
	}
	if status >= 400 {
		return models.InfluencersResult{Result: models.Fail(MessageFrom(body, "Falha ao obter influencers"))}
	}
	var influencers []models.Influencer
	if err := json.Unmarshal(body, &influencers); err != nil {
		s.log.Error().Err(err).Msg("failed to decode influencers response")
		return models.InfluencersResult{Result: models.ConnectionError()}
	}
	return models.InfluencersResult{Result: models.Ok(""), Influencers: influencers}
}

// GetInfluencer fetches one of the manager's influencers by id.
func (s *ManagerService) GetInfluencer(ctx context.Context, token, id string) models.InfluencerResult {
	if token == "" {
		return models.InfluencerResult{Result: models.Unauthorized()}
	}
	status, body, err := s.api.Do(ctx, http.MethodGet, "/api/manager/influencers/"+id, token, nil, nil)
	if err != nil {
		return models.InfluencerResult{Result: models.ConnectionError()}
	}
	if status >= 400 {
		return models.InfluencerResult{Result: models.Fail(MessageFrom(body, "Falha ao obter detalhes do influencer"))}
	}
	var influencer models.Influencer
	if err := json.Unmarshal(body, &influencer); err != nil {
		return models.InfluencerResult{Result: models.ConnectionError()}
	}
	return models.InfluencerResult{Result: models.Ok(""), Influencer: &influencer}
}

// CreateInfluencer registers a new influencer under the logged manager.
func (s *ManagerService) CreateInfluencer(ctx context.Context, token string, req models.InfluencerRequest) models.InfluencerResult {
	if token == "" {
		return models.InfluencerResult{Result: models.Unauthorized()}
	}
	status, body, err := s.api.Do(ctx, http.MethodPost, "/api/manager/influencers", token, nil, req)
	if err != nil {
		return models.InfluencerResult{Result: models.ConnectionError()}
	}
	if status >= 400 {
		return models.InfluencerResult{Result: models.Fail(MessageFrom(body, "Falha ao criar influencer"))}
	}
	var influencer models.Influencer
	if err := json.Unmarshal(body, &influencer); err != nil {
		return models.InfluencerResult{Result: models.ConnectionError()}
	}
	return models.InfluencerResult{Result: models.Ok("Influencer criado com sucesso"), Influencer: &influencer}
}

// UpdateInfluencer updates one of the manager's influencers.
func (s *ManagerService) UpdateInfluencer(ctx context.Context, token, id string, req models.InfluencerRequest) models.InfluencerResult {
	if token == "" {
		return models.InfluencerResult{Result: models.Unauthorized()}
	}
	status, body, err := s.api.Do(ctx, http.MethodPut, "/api/manager/influencers/"+id, token, nil, req)
	if err != nil {
		return models.InfluencerResult{Result: models.ConnectionError()}
	}
	if status >= 400 {
		return models.InfluencerResult{Result: models.Fail(MessageFrom(body, "Falha ao atualizar influencer"))}
	}
	var influencer models.Influencer
	if err := json.Unmarshal(body, &influencer); err != nil {
		return models.InfluencerResult{Result: models.ConnectionError()}
	}
	return models.InfluencerResult{Result: models.Ok("Influencer atualizado com sucesso"), Influencer: &influencer}
}

// DeleteInfluencer removes one of the manager's influencers.
func (s *ManagerService) DeleteInfluencer(ctx context.Context, token, id string) models.Result {
	if token == "" {
		return models.Unauthorized()
	}
	status, body, err := s.api.Do(ctx, http.MethodDelete, "/api/manager/influencers/"+id, token, nil, nil)
	if err != nil {
		return models.ConnectionError()
	}
	if status >= 400 {
		return models.Fail(MessageFrom(body, "Falha ao remover influencer"))
	}
	return models.Ok(MessageFrom(body, ""))
}

// CheckCouponAvailability asks whether a coupon code is free to use.
func (s *ManagerService) CheckCouponAvailability(ctx context.Context, token, code string) models.AvailabilityResult {
	if token == "" {
		return models.AvailabilityResult{Result: models.Unauthorized()}
	}
	q := url.Values{"code": {code}}
	status, body, err := s.api.Do(ctx, http.MethodGet, "/api/manager/coupons/availability", token, q, nil)
	if err != nil {
		return models.AvailabilityResult{Result: models.ConnectionError()}
	}
	if status >= 400 {
		return models.AvailabilityResult{Result: models.Fail(MessageFrom(body, "Falha ao verificar cupom"))}
	}
	return models.AvailabilityResult{Result: models.Ok(""), Available: gjson.GetBytes(body, "available").Bool()}
}

// SaveNotificationSettings saves per-influencer notification preferences.
func (s *ManagerService) SaveNotificationSettings(ctx context.Context, token, influencerID string, settings models.NotificationSettings) models.Result {
	if token == "" {
		return models.Unauthorized()
	}
	status, body, err := s.api.Do(ctx, http.MethodPut, "/api/manager/influencers/"+influencerID+"/notifications", token, nil, settings)
	if err != nil {
		return models.ConnectionError()
	}
	if status >= 400 {
		return models.Fail(MessageFrom(body, "Falha ao salvar notificações"))
	}
	return models.Ok(MessageFrom(body, "Notificações salvas"))
}
