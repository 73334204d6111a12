// models/dashboard.go
package models

import "encoding/json"

// DashboardStats is the slice of a role dashboard aggregate the summary
// cards render. The full upstream document rides along in Raw for the charts,
// which consume it as-is.
type DashboardStats struct {
	TotalSales         float64         `json:"totalSales"`
	TotalCommission    float64         `json:"totalCommission"`
	PendingCommission  float64         `json:"pendingCommission"`
	ActiveInfluencers  int             `json:"activeInfluencers"`
	ActiveManagers     int             `json:"activeManagers"`
	SalesCount         int             `json:"salesCount"`
	ConversionRate     float64         `json:"conversionRate"`
	Raw                json.RawMessage `json:"-"`
}

// RankingEntry is one row of the influencer or manager ranking.
type RankingEntry struct {
	ID         string  `json:"_id"`
	Name       string  `json:"name"`
	TotalSales float64 `json:"totalSales"`
	Commission float64 `json:"commission"`
	Position   int     `json:"position"`
}

// PerformanceParams filters the performance overview and timeline.
type PerformanceParams struct {
	StartDate string
	EndDate   string
	UserID    string
	Role      string
	Period    string
}

// StatsResult carries a role dashboard aggregate.
type StatsResult struct {
	Result
	Stats *DashboardStats `json:"stats,omitempty"`
}

// RankingResult carries a ranking listing.
type RankingResult struct {
	Result
	Ranking []RankingEntry `json:"ranking,omitempty"`
}
