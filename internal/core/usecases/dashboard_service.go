package usecases

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/samirrijal/greenmap/internal/core/domain"
	"github.com/samirrijal/greenmap/internal/core/ports"
	"github.com/samirrijal/greenmap/internal/pkg/metrics"
	"github.com/samirrijal/greenmap/internal/pkg/telemetry"
)

const (
	recentZonesLimit    = 5
	growthTrendMonths   = 12
	topCommunitiesLimit = 5
)

// DashboardService aggregates platform-wide statistics. Results are computed
// per call and never cached.
type DashboardService struct {
	repo ports.DashboardRepository
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(repo ports.DashboardRepository) *DashboardService {
	return &DashboardService{repo: repo}
}

// GetDashboard reads every count concurrently and projects them into a
// snapshot. Any failed read fails the whole call with domain.ErrUnavailable.
func (s *DashboardService) GetDashboard(ctx context.Context) (snap *domain.DashboardSnapshot, err error) {
	start := time.Now()
	defer func() { metrics.ObserveSince("snapshot", start, err) }()

	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanDashboardSnapshot)
	defer span.End()

	var counts domain.DashboardCounts
	verified := true

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		counts.TotalZones, err = s.repo.CountZones(gctx, domain.ZoneFilter{})
		return wrapRead("count zones", err)
	})
	g.Go(func() (err error) {
		counts.TotalCommunities, err = s.repo.CountCommunities(gctx)
		return wrapRead("count communities", err)
	})
	g.Go(func() (err error) {
		counts.VerifiedZones, err = s.repo.CountZones(gctx, domain.ZoneFilter{Verified: &verified})
		return wrapRead("count verified zones", err)
	})
	g.Go(func() (err error) {
		counts.TotalUsers, err = s.repo.CountUsers(gctx)
		return wrapRead("count users", err)
	})
	g.Go(func() (err error) {
		counts.TotalVerifications, err = s.repo.CountVerifications(gctx)
		return wrapRead("count verifications", err)
	})
	g.Go(func() (err error) {
		counts.RecentZones, err = s.repo.RecentZones(gctx, recentZonesLimit)
		return wrapRead("recent zones", err)
	})
	g.Go(func() (err error) {
		counts.Coverage, err = s.repo.GroupZonesByCoverage(gctx)
		return wrapRead("group by coverage", err)
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	out := ComputeSnapshot(counts)
	return &out, nil
}

// GetStats returns the growth trend and the top communities.
func (s *DashboardService) GetStats(ctx context.Context) (stats *domain.DashboardStats, err error) {
	start := time.Now()
	defer func() { metrics.ObserveSince("stats", start, err) }()

	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanDashboardStats)
	defer span.End()

	var (
		months      []domain.MonthCount
		communities []domain.CommunityRank
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		months, err = s.repo.GroupZonesByMonth(gctx)
		return wrapRead("group by month", err)
	})
	g.Go(func() (err error) {
		communities, err = s.repo.TopCommunitiesByZoneCount(gctx, topCommunitiesLimit)
		return wrapRead("top communities", err)
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	return &domain.DashboardStats{
		GrowthTrend:    ComputeGrowthTrend(months),
		TopCommunities: RankCommunities(communities),
	}, nil
}

func wrapRead(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: dashboard %s: %w", domain.ErrUnavailable, op, err)
}

// ComputeSnapshot derives the dashboard view from raw counts.
func ComputeSnapshot(c domain.DashboardCounts) domain.DashboardSnapshot {
	histogram := make(map[domain.CoverageLevel]int, len(domain.CoverageLevels))
	for _, level := range domain.CoverageLevels {
		histogram[level] = 0
	}
	for _, g := range c.Coverage {
		// Groups for unknown or empty levels are dropped.
		if g.Level.Valid() {
			histogram[g.Level] = g.Count
		}
	}

	var rate float64
	if c.TotalZones > 0 {
		rate = round(float64(c.VerifiedZones)/float64(c.TotalZones)*100, 1)
	}

	recent := make([]domain.ZoneSummary, len(c.RecentZones))
	copy(recent, c.RecentZones)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].CreatedAt.After(recent[j].CreatedAt)
	})
	if len(recent) > recentZonesLimit {
		recent = recent[:recentZonesLimit]
	}

	return domain.DashboardSnapshot{
		TotalZones:          c.TotalZones,
		TotalCommunities:    c.TotalCommunities,
		VerifiedZones:       c.VerifiedZones,
		TotalUsers:          c.TotalUsers,
		TotalVerifications:  c.TotalVerifications,
		CO2OffsetKg:         c.TotalZones * domain.CO2OffsetPerZoneKg,
		VerificationRatePct: rate,
		CoverageHistogram:   histogram,
		RecentZones:         recent,
	}
}

// ComputeGrowthTrend orders month groups newest first, keeps the latest 12
// and labels them YYYY-MM.
func ComputeGrowthTrend(months []domain.MonthCount) []domain.GrowthPeriod {
	sorted := make([]domain.MonthCount, len(months))
	copy(sorted, months)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Year != sorted[j].Year {
			return sorted[i].Year > sorted[j].Year
		}
		return sorted[i].Month > sorted[j].Month
	})
	if len(sorted) > growthTrendMonths {
		sorted = sorted[:growthTrendMonths]
	}

	out := make([]domain.GrowthPeriod, 0, len(sorted))
	for _, m := range sorted {
		out = append(out, domain.GrowthPeriod{
			Period:     fmt.Sprintf("%04d-%02d", m.Year, m.Month),
			ZonesAdded: m.Count,
		})
	}
	return out
}

// RankCommunities orders communities by zone count, highest first, and keeps
// the top 5. Ties keep their input order.
func RankCommunities(communities []domain.CommunityRank) []domain.CommunityRank {
	out := make([]domain.CommunityRank, len(communities))
	copy(out, communities)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ZoneCount > out[j].ZoneCount
	})
	if len(out) > topCommunitiesLimit {
		out = out[:topCommunitiesLimit]
	}
	return out
}
