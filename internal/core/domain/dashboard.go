package domain

import "time"

// CO2OffsetPerZoneKg is the yearly CO2 offset credited to each mapped zone.
const CO2OffsetPerZoneKg = 22

// ZoneSummary is a recently created zone shown on the dashboard.
type ZoneSummary struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	CoverageLevel CoverageLevel `json:"coverage_level"`
	Verified      bool          `json:"verified"`
	CreatedAt     time.Time     `json:"created_at"`
}

// CoverageGroup is one row of zones grouped by coverage level.
type CoverageGroup struct {
	Level CoverageLevel `json:"level"`
	Count int           `json:"count"`
}

// MonthCount is one row of zones grouped by creation (year, month).
type MonthCount struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Count int `json:"count"`
}

// CommunityRank is a community with its zone and member counts.
type CommunityRank struct {
	Name        string `json:"name"`
	ZoneCount   int    `json:"zone_count"`
	MemberCount int    `json:"member_count"`
}

// DashboardCounts is the raw input to the dashboard snapshot, as read from
// the persistence layer.
type DashboardCounts struct {
	TotalZones         int
	TotalCommunities   int
	VerifiedZones      int
	TotalUsers         int
	TotalVerifications int
	RecentZones        []ZoneSummary
	Coverage           []CoverageGroup
}

// DashboardSnapshot is the aggregated dashboard view. It is computed on
// demand and never stored.
type DashboardSnapshot struct {
	TotalZones          int                   `json:"total_zones"`
	TotalCommunities    int                   `json:"total_communities"`
	VerifiedZones       int                   `json:"verified_zones"`
	TotalUsers          int                   `json:"total_users"`
	TotalVerifications  int                   `json:"total_verifications"`
	CO2OffsetKg         int                   `json:"co2_offset_kg"`
	VerificationRatePct float64               `json:"verification_rate_pct"`
	CoverageHistogram   map[CoverageLevel]int `json:"coverage_histogram"`
	RecentZones         []ZoneSummary         `json:"recent_zones"`
}

// GrowthPeriod is the number of zones added in one calendar month.
type GrowthPeriod struct {
	Period     string `json:"period"` // YYYY-MM
	ZonesAdded int    `json:"zones_added"`
}

// DashboardStats holds the secondary analytics statistics.
type DashboardStats struct {
	GrowthTrend    []GrowthPeriod  `json:"growth_trend"`
	TopCommunities []CommunityRank `json:"top_communities"`
}
