// services/dashboard_service.go
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

// DashboardService is the gateway for /api/dashboard/*. The aggregates have
// no schema this panel owns; the summary fields the cards need are picked out
// with gjson and the raw document rides along for the charts.
type DashboardService struct {
	api *Client
	log zerolog.Logger
}

// NewDashboardService builds the dashboard gateway.
func NewDashboardService(api *Client, log zerolog.Logger) *DashboardService {
	return &DashboardService{api: api, log: log.With().Str("service", "dashboard").Logger()}
}

func (s *DashboardService) stats(ctx context.Context, token, path string) models.StatsResult {
	if token == "" {
		return models.StatsResult{Result: models.Unauthorized()}
	}
	status, body, err := s.api.Do(ctx, http.MethodGet, path, token, nil, nil)
	if err != nil {
		return models.StatsResult{Result: models.ConnectionError()}
	}
	if status >= 400 {
		return models.StatsResult{Result: models.Fail(MessageFrom(body, "Falha ao obter estatísticas"))}
	}
	doc := gjson.ParseBytes(body)
	stats := &models.DashboardStats{
		TotalSales:        doc.Get("totalSales").Float(),
		TotalCommission:   doc.Get("totalCommission").Float(),
		PendingCommission: doc.Get("pendingCommission").Float(),
		ActiveInfluencers: int(doc.Get("activeInfluencers").Int()),
		ActiveManagers:    int(doc.Get("activeManagers").Int()),
		SalesCount:        int(doc.Get("salesCount").Int()),
		ConversionRate:    doc.Get("conversionRate").Float(),
		Raw:               body,
	}
	return models.StatsResult{Result: models.Ok(""), Stats: stats}
}

// AdminStats fetches the admin dashboard aggregate.
func (s *DashboardService) AdminStats(ctx context.Context, token string) models.StatsResult {
	return s.stats(ctx, token, "/api/dashboard/admin")
}

// ManagerStats fetches the manager dashboard aggregate.
func (s *DashboardService) ManagerStats(ctx context.Context, token string) models.StatsResult {
	return s.stats(ctx, token, "/api/dashboard/manager")
}

// InfluencerStats fetches the influencer dashboard aggregate.
func (s *DashboardService) InfluencerStats(ctx context.Context, token string) models.StatsResult {
	return s.stats(ctx, token, "/api/dashboard/influencer")
}

// SalesChart fetches the chart series for a period, optionally scoped to one
// user. The series passes through untouched.
func (s *DashboardService) SalesChart(ctx context.Context, token, period, userID string) models.RawResult {
	if token == "" {
		return models.RawResult{Result: models.Unauthorized()}
	}
	q := url.Values{"period": {period}}
	if userID != "" {
		q.Set("userId", userID)
	}
	status, body, err := s.api.Do(ctx, http.MethodGet, "/api/dashboard/sales-chart", token, q, nil)
	if err != nil {
		return models.RawResult{Result: models.ConnectionError()}
	}
	if status >= 400 {
		return models.RawResult{Result: models.Fail(MessageFrom(body, "Falha ao obter dados do gráfico"))}
	}
	return models.RawResult{Result: models.Ok(""), Data: body}
}

func (s *DashboardService) ranking(ctx context.Context, token, path string, limit int, period string) models.RankingResult {
	if token == "" {
		return models.RankingResult{Result: models.Unauthorized()}
	}
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if period != "" {
		q.Set("period", period)
	}
	status, body, err := s.api.Do(ctx, http.MethodGet, path, token, q, nil)
	if err != nil {
		return models.RankingResult{Result: models.ConnectionError()}
	}
	if status >= 400 {
		return models.RankingResult{Result: models.Fail(MessageFrom(body, "Falha ao obter ranking"))}
	}
	var ranking []models.RankingEntry
	if err := json.Unmarshal(body, &ranking); err != nil {
		s.log.Error().Err(err).Str("path", path).Msg("failed to decode ranking response")
		return models.RankingResult{Result: models.ConnectionError()}
	}
	return models.RankingResult{Result: models.Ok(""), Ranking: ranking}
}

// InfluencerRanking fetches the top influencers for a period.
func (s *DashboardService) InfluencerRanking(ctx context.Context, token string, limit int, period string) models.RankingResult {
	return s.ranking(ctx, token, "/api/dashboard/influencer-ranking", limit, period)
}

// ManagerRanking fetches the top managers for a period.
func (s *DashboardService) ManagerRanking(ctx context.Context, token string, limit int, period string) models.RankingResult {
	return s.ranking(ctx, token, "/api/dashboard/manager-ranking", limit, period)
}

// PerformanceOverview fetches the performance comparison aggregate.
func (s *DashboardService) PerformanceOverview(ctx context.Context, token string, params models.PerformanceParams) models.RawResult {
	return s.performance(ctx, token, "/api/dashboard/performance-overview", params)
}

// PerformanceTimeline fetches the performance timeline series.
func (s *DashboardService) PerformanceTimeline(ctx context.Context, token string, params models.PerformanceParams) models.RawResult {
	return s.performance(ctx, token, "/api/dashboard/performance-timeline", params)
}

func (s *DashboardService) performance(ctx context.Context, token, path string, params models.PerformanceParams) models.RawResult {
	if token == "" {
		return models.RawResult{Result: models.Unauthorized()}
	}
	q := url.Values{}
	if params.StartDate != "" {
		q.Set("startDate", params.StartDate)
	}
	if params.EndDate != "" {
		q.Set("endDate", params.EndDate)
	}
	if params.UserID != "" {
		q.Set("userId", params.UserID)
	}
	if params.Role != "" {
		q.Set("role", params.Role)
	}
	if params.Period != "" {
		q.Set("period", params.Period)
	}
	status, body, err := s.api.Do(ctx, http.MethodGet, path, token, q, nil)
	if err != nil {
		return models.RawResult{Result: models.ConnectionError()}
	}
	if status >= 400 {
		return models.RawResult{Result: models.Fail(MessageFrom(body, "Falha ao obter dados de desempenho"))}
	}
	return models.RawResult{Result: models.Ok(""), Data: body}
}

// PendingCommissions fetches the pending-commissions summary.
func (s *DashboardService) PendingCommissions(ctx context.Context, token string) models.RawResult {
	if token == "" {
		return models.RawResult{Result: models.Unauthorized()}
	}
	status, body, err := s.api.Do(ctx, http.MethodGet, "/api/dashboard/pending-commissions", token, nil, nil)
	if err != nil {
		return models.RawResult{Result: models.ConnectionError()}
	}
	if status >= 400 {
		return models.RawResult{Result: models.Fail(MessageFrom(body, "Falha ao obter comissões pendentes"))}
	}
	return models.RawResult{Result: models.Ok(""), Data: body}
}
