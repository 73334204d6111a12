// services/coupon_service.go
package services

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/impulsohub/painel/models"
)

// CouponService is the gateway for /api/coupons*.
type CouponService struct {
	api *Client
	log zerolog.Logger
}

// NewCouponService builds the coupons gateway.
func NewCouponService(api *Client, log zerolog.Logger) *CouponService {
	return &CouponService{api: api, log: log.With().Str("service", "coupons").Logger()}
}

// GetCoupons fetches all coupons visible to the caller.
func (s *CouponService) GetCoupons(ctx context.Context, token string) models.CouponsResult {
	if token == "" {
		return models.CouponsResult{Result: models.Unauthorized()}
	}
	status, body, err := s.api.Do(ctx, http.MethodGet, "/api/coupons", token, nil, nil)
	if err != nil {
		return models.CouponsResult{Result: models.ConnectionError()}
	}
	if status >= 400 {
		return models.CouponsResult{Result: models.Fail(MessageFrom(body, "Falha ao obter cupons"))}
	}
	var coupons []models.Coupon
	if err := json.Unmarshal(body, &coupons); err != nil {
		s.log.Error().Err(err).Msg("failed to decode coupons response")
		return models.CouponsResult{Result: models.ConnectionError()}
	}
	return models.CouponsResult{Result: models.Ok(""), Coupons: coupons}
}

// GetInfluencerCoupons fetches the coupons of one influencer.
func (s *CouponService) GetInfluencerCoupons(ctx context.Context, token, influencerID string) models.CouponsResult {
	if token == "" {
		return models.CouponsResult{Result: models.Unauthorized()}
	}
	status, body, err := s.api.Do(ctx, http.MethodGet, "/api/coupons/influencer/"+influencerID, token, nil, nil)
	if err != nil {
		return models.CouponsResult{Result: models.ConnectionError()}
	}
	if status >= 400 {
		return models.CouponsResult{Result: models.Fail(MessageFrom(body, "Falha ao obter cupons do influencer"))}
	}
	var coupons []models.Coupon
	if err := json.Unmarshal(body, &coupons); err != nil {
		return models.CouponsResult{Result: models.ConnectionError()}
	}
	return models.CouponsResult{Result: models.Ok(""), Coupons: coupons}
}

// CreateCoupon registers a new coupon code for an influencer.
func (s *CouponService) CreateCoupon(ctx context.Context, token string, req models.CouponRequest) models.CouponResult {
	if token == "" {
		return models.CouponResult{Result: models.Unauthorized()}
	}
	status, body, err := s.api.Do(ctx, http.MethodPost, "/api/coupons", token, nil, req)
	if err != nil {
		return models.CouponResult{Result: models.ConnectionError()}
	}
	if status >= 400 {
		return models.CouponResult{Result: models.Fail(MessageFrom(body, "Falha ao criar cupom"))}
	}
	var coupon models.Coupon
	if err := json.Unmarshal(body, &coupon); err != nil {
		return models.CouponResult{Result: models.ConnectionError()}
	}
	return models.CouponResult{Result: models.Ok("Cupom criado com sucesso"), Coupon: &coupon}
}

// SetActive toggles a coupon's active flag. Controllers treat this as the
// confirm step of an optimistic toggle and roll the UI back on failure.
func (s *CouponService) SetActive(ctx context.Context, token, id string, isActive bool) models.CouponResult {
	if token == "" {
		return models.CouponResult{Result: models.Unauthorized()}
	}
	status, body, err := s.api.Do(ctx, http.MethodPut, "/api/coupons/"+id, token, nil, map[string]bool{"isActive": isActive})
	if err != nil {
		return models.CouponResult{Result: models.ConnectionError()}
	}
	if status >= 400 {
		return models.CouponResult{Result: models.Fail(MessageFrom(body, "Falha ao atualizar cupom"))}
	}
	var coupon models.Coupon
	if err := json.Unmarshal(body, &coupon); err != nil {
		return models.CouponResult{Result: models.ConnectionError()}
	}
	return models.CouponResult{Result: models.Ok(""), Coupon: &coupon}
}

// DeleteCoupon removes a coupon.
func (s *CouponService) DeleteCoupon(ctx context.Context, token, id string) models.Result {
	if token == "" {
		return models.Unauthorized()
	}
	status, body, err := s.api.Do(ctx, http.MethodDelete, "/api/coupons/"+id, token, nil, nil)
	if err != nil {
		return models.ConnectionError()
	}
	if status >= 400 {
		return models.Fail(MessageFrom(body, "Falha ao remover cupom"))
	}
	return models.Ok(MessageFrom(body, ""))
}
