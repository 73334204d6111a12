// models/commission.go
package models

import "encoding/json"

// CommissionTier is one contiguous band of sales value mapped to a fixed
// percentage. MaxSalesValue nil means the band is open-ended; only the last
// tier of a partition may be open-ended. ID is assigned by the backend after
// a save; while a list is being edited identity is positional.
type CommissionTier struct {
	ID                   string   `json:"_id,omitempty"`
	MinSalesValue        float64  `json:"minSalesValue"`
	MaxSalesValue        *float64 `json:"maxSalesValue,omitempty"`
	CommissionPercentage float64  `json:"commissionPercentage"`
	AppliesTo            string   `json:"appliesTo,omitempty"`
	IsActive             bool     `json:"isActive,omitempty"`
}

// Tier partitions. Tier lists are edited and saved independently per
// partition.
const (
	AppliesToInfluencer = "influencer"
	AppliesToManager    = "manager"
)

// SaleFilters narrows the sales listing.
type SaleFilters struct {
	StartDate    string
	EndDate      string
	InfluencerID string
	ManagerID    string
	Page         int
	Limit        int
}

// PaymentFilters narrows the commission-payment listing.
type PaymentFilters struct {
	Status    string
	StartDate string
	EndDate   string
	UserID    string
	Page      int
	Limit     int
}

// Pagination is the backend's paging envelope.
type Pagination struct {
	Page  int `json:"page"`
	Pages int `json:"pages"`
	Total int `json:"total"`
}

// TiersResult carries a tier list for one partition.
type TiersResult struct {
	Result
	Tiers []CommissionTier `json:"tiers,omitempty"`
}

// TierResult carries a single tier.
type TierResult struct {
	Result
	Tier *CommissionTier `json:"tier,omitempty"`
}

// SalesResult passes the sales listing through with its paging envelope. The
// sale documents have no fixed schema the panel depends on, so they stay raw.
type SalesResult struct {
	Result
	Sales      json.RawMessage `json:"sales,omitempty"`
	Pagination Pagination      `json:"pagination"`
}

// PaymentsResult passes the payment listing through.
type PaymentsResult struct {
	Result
	Payments   json.RawMessage `json:"payments,omitempty"`
	Pagination Pagination      `json:"pagination"`
}

// PaymentResult carries one payment document untouched.
type PaymentResult struct {
	Result
	Payment json.RawMessage `json:"payment,omitempty"`
}

// ReportResult carries the URL of a generated payments report.
type ReportResult struct {
	Result
	ReportURL string `json:"reportUrl,omitempty"`
}
