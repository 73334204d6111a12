// services/commission_service.go
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

// CommissionService is the gateway for /api/commissions/* (tiers, sales and
// the commission processing triggers).
type CommissionService struct {
	api *Client
	log zerolog.Logger
}

// NewCommissionService builds the commissions gateway.
func NewCommissionService(api *Client, log zerolog.Logger) *CommissionService {
	return &CommissionService{api: api, log: log.With().Str("service", "commissions").Logger()}
}

// GetTiers fetches the tier list for one partition. isActive nil means no
// activity filter.
func (s *CommissionService) GetTiers(ctx context.Context, token, appliesTo string, isActive *bool) models.TiersResult {
	if token == "" {
		return models.TiersResult{Result: models.Unauthorized()}
	}
	q := url.Values{}
	if appliesTo != "" {
		q.Set("appliesTo", appliesTo)
	}
	if isActive != nil {
		q.Set("isActive", strconv.FormatBool(*isActive))
	}
	status, body, err := s.api.Do(ctx, http.MethodGet, "/api/commissions/tiers", token, q, nil)
	if err != nil {
		return models.TiersResult{Result: models.ConnectionError()}
	}
	if status >= 400 {
		return models.TiersResult{Result: models.Fail(MessageFrom(body, "Falha ao obter faixas de comissão"))}
	}
	var tiers []models.CommissionTier
	if err := json.Unmarshal(body, &tiers); err != nil {
		s.log.Error().Err(err).Msg("failed to decode tiers response")
		return models.TiersResult{Result: models.ConnectionError()}
	}
	return models.TiersResult{Result: models.Ok(""), Tiers: tiers}
}

// CreateTier creates a single tier.
func (s *CommissionService) CreateTier(ctx context.Context, token string, tier models.CommissionTier) models.TierResult {
	if token == "" {
		return models.TierResult{Result: models.Unauthorized()}
	}
	status, body, err := s.api.Do(ctx, http.MethodPost, "/api/commissions/tiers", token, nil, tier)
	if err != nil {
		return models.TierResult{Result: models.ConnectionError()}
	}
	if status >= 400 {
		return models.TierResult{Result: models.Fail(MessageFrom(body, "Falha ao criar faixa de comissão"))}
	}
	var created models.CommissionTier
	if err := json.Unmarshal(body, &created); err != nil {
		return models.TierResult{Result: models.ConnectionError()}
	}
	return models.TierResult{Result: models.Ok(""), Tier: &created}
}

// UpdateTier updates a persisted tier by id.
func (s *CommissionService) UpdateTier(ctx context.Context, token, id string, tier models.CommissionTier) models.TierResult {
	if token == "" {
		return models.TierResult{Result: models.Unauthorized()}
	}
	status, body, err := s.api.Do(ctx, http.MethodPut, "/api/commissions/tiers/"+id, token, nil, tier)
	if err != nil {
		return models.TierResult{Result: models.ConnectionError()}
	}
	if status >= 400 {
		return models.TierResult{Result: models.Fail(MessageFrom(body, "Falha ao atualizar faixa de comissão"))}
	}
	var updated models.CommissionTier
	if err := json.Unmarshal(body, &updated); err != nil {
		return models.TierResult{Result: models.ConnectionError()}
	}
	return models.TierResult{Result: models.Ok(""), Tier: &updated}
}

// DeleteTier deactivates a persisted tier by id.
func (s *CommissionService) DeleteTier(ctx context.Context, token, id string) models.Result {
	if token == "" {
		return models.Unauthorized()
	}
	status, body, err := s.api.Do(ctx, http.MethodDelete, "/api/commissions/tiers/"+id, token, nil, nil)
	if err != nil {
		return models.ConnectionError()
	}
	if status >= 400 {
		return models.Fail(MessageFrom(body, "Falha ao desativar faixa de comissão"))
	}
	return models.Ok(MessageFrom(body, ""))
}

// SaveTiersBulk replaces the whole tier list of a partition. The partition
// tag is stamped on every tier before the call; the backend treats the list
// as authoritative and returns its canonical version.
func (s *CommissionService) SaveTiersBulk(ctx context.Context, token, appliesTo string, tiers []models.CommissionTier) models.TiersResult {
	if token == "" {
		return models.TiersResult{Result: models.Unauthorized()}
	}
	stamped := make([]models.CommissionTier, len(tiers))
	for i, t := range tiers {
		t.AppliesTo = appliesTo
		stamped[i] = t
	}
	status, body, err := s.api.Do(ctx, http.MethodPost, "/api/commissions/tiers/bulk", token, nil, map[string]interface{}{
		"tiers": stamped,
	})
	if err != nil {
		return models.TiersResult{Result: models.ConnectionError()}
	}
	if status >= 400 {
		return models.TiersResult{Result: models.Fail(MessageFrom(body, "Falha ao salvar faixas de comissão"))}
	}
	var saved []models.CommissionTier
	if err := json.Unmarshal(body, &saved); err != nil {
		s.log.Error().Err(err).Msg("failed to decode bulk save response")
		return models.TiersResult{Result: models.ConnectionError()}
	}
	return models.TiersResult{Result: models.Ok(""), Tiers: saved}
}

// GetSales fetches the sales listing with filters and paging.
func (s *CommissionService) GetSales(ctx context.Context, token string, filters models.SaleFilters) models.SalesResult {
	if token == "" {
		return models.SalesResult{Result: models.Unauthorized()}
	}
	q := url.Values{}
	if filters.StartDate != "" {
		q.Set("startDate", filters.StartDate)
	}
	if filters.EndDate != "" {
		q.Set("endDate", filters.EndDate)
	}
	if filters.InfluencerID != "" {
		q.Set("influencerId", filters.InfluencerID)
	}
	if filters.ManagerID != "" {
		q.Set("managerId", filters.ManagerID)
	}
	if filters.Page > 0 {
		q.Set("page", strconv.Itoa(filters.Page))
	}
	if filters.Limit > 0 {
		q.Set("limit", strconv.Itoa(filters.Limit))
	}
	status, body, err := s.api.Do(ctx, http.MethodGet, "/api/commissions/sales", token, q, nil)
	if err != nil {
		return models.SalesResult{Result: models.ConnectionError()}
	}
	if status >= 400 {
		return models.SalesResult{Result: models.Fail(MessageFrom(body, "Falha ao obter vendas"))}
	}
	doc := gjson.ParseBytes(body)
	return models.SalesResult{
		Result: models.Ok(""),
		Sales:  json.RawMessage(doc.Get("sales").Raw),
		Pagination: models.Pagination{
			Page:  int(doc.Get("page").Int()),
			Pages: int(doc.Get("pages").Int()),
			Total: int(doc.Get("total").Int()),
		},
	}
}

// ProcessCommissions triggers commission calculation for sales that have
// none yet. The computation itself is entirely backend-owned.
func (s *CommissionService) ProcessCommissions(ctx context.Context, token string) models.RawResult {
	if token == "" {
		return models.RawResult{Result: models.Unauthorized()}
	}
	status, body, err := s.api.Do(ctx, http.MethodPost, "/api/commissions/process", token, nil, nil)
	if err != nil {
		return models.RawResult{Result: models.ConnectionError()}
	}
	if status >= 400 {
		return models.RawResult{Result: models.Fail(MessageFrom(body, "Falha ao processar comissões"))}
	}
	return models.RawResult{Result: models.Ok(""), Data: body}
}

// GeneratePayments asks the backend to turn commissions within a period into
// payment records.
func (s *CommissionService) GeneratePayments(ctx context.Context, token, startDate, endDate string) models.RawResult {
	if token == "" {
		return models.RawResult{Result: models.Unauthorized()}
	}
	status, body, err := s.api.Do(ctx, http.MethodPost, "/api/commissions/generate-payments", token, nil, map[string]string{
		"startDate": startDate,
		"endDate":   endDate,
	})
	if err != nil {
		return models.RawResult{Result: models.ConnectionError()}
	}
	if status >= 400 {
		return models.RawResult{Result: models.Fail(MessageFrom(body, "Falha ao gerar pagamentos"))}
	}
	return models.RawResult{Result: models.Ok(""), Data: body}
}
