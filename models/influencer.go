// models/influencer.go
package models

// Influencer is a manager's influencer as the manager screens consume it.
type Influencer struct {
	ID             string  `json:"_id,omitempty"`
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	WhatsappNumber string  `json:"whatsappNumber,omitempty"`
	CouponCode     string  `json:"couponCode,omitempty"`
	IsActive       bool    `json:"isActive"`
	TotalSales     float64 `json:"totalSales,omitempty"`
	CreatedAt      string  `json:"createdAt,omitempty"`
}

// InfluencerRequest is the create/update binding for a manager's influencer.
type InfluencerRequest struct {
	Name           string `json:"name" form:"name" validate:"required"`
	Email          string `json:"email" form:"email" validate:"required,email"`
	Password       string `json:"password,omitempty" form:"password"`
	WhatsappNumber string `json:"whatsappNumber,omitempty" form:"whatsappNumber"`
	CouponCode     string `json:"couponCode,omitempty" form:"couponCode"`
}

// Coupon ties a discount code to an influencer. The backend owns redemption;
// the panel only creates, toggles and removes codes.
type Coupon struct {
	ID           string `json:"_id,omitempty"`
	Code         string `json:"code"`
	InfluencerID string `json:"influencerId"`
	IsActive     bool   `json:"isActive"`
	CreatedAt    string `json:"createdAt,omitempty"`
}

// CouponRequest is the coupon creation binding.
type CouponRequest struct {
	Code         string `json:"code" form:"code" validate:"required,min=3"`
	InfluencerID string `json:"influencerId" form:"influencerId" validate:"required"`
}

// InfluencerResult carries one influencer.
type InfluencerResult struct {
	Result
	Influencer *Influencer `json:"influencer,omitempty"`
}

// InfluencersResult carries a manager's influencer listing.
type InfluencersResult struct {
	Result
	Influencers []Influencer `json:"influencers,omitempty"`
}

// CouponResult carries one coupon.
type CouponResult struct {
	Result
	Coupon *Coupon `json:"coupon,omitempty"`
}

// CouponsResult carries a coupon listing.
type CouponsResult struct {
	Result
	Coupons []Coupon `json:"coupons,omitempty"`
}

// AvailabilityResult answers a coupon-code availability check.
type AvailabilityResult struct {
	Result
	Available bool `json:"available"`
}
