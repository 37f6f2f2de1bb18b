package usecases_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/samirrijal/greenmap/internal/core/domain"
	"github.com/samirrijal/greenmap/internal/core/usecases"
)

// --- Mock DashboardRepository ---

type mockDashboardRepo struct {
	countZonesFn         func(ctx context.Context, filter domain.ZoneFilter) (int, error)
	countCommunitiesFn   func(ctx context.Context) (int, error)
	countUsersFn         func(ctx context.Context) (int, error)
	countVerificationsFn func(ctx context.Context) (int, error)
	recentZonesFn        func(ctx context.Context, limit int) ([]domain.ZoneSummary, error)
	byCoverageFn         func(ctx context.Context) ([]domain.CoverageGroup, error)
	byMonthFn            func(ctx context.Context) ([]domain.MonthCount, error)
	topCommunitiesFn     func(ctx context.Context, limit int) ([]domain.CommunityRank, error)
}

func (m *mockDashboardRepo) CountZones(ctx context.Context, filter domain.ZoneFilter) (int, error) {
	if m.countZonesFn != nil {
		return m.countZonesFn(ctx, filter)
	}
	return 0, nil
}

func (m *mockDashboardRepo) CountCommunities(ctx context.Context) (int, error) {
	if m.countCommunitiesFn != nil {
		return m.countCommunitiesFn(ctx)
	}
	return 0, nil
}

func (m *mockDashboardRepo) CountUsers(ctx context.Context) (int, error) {
	if m.countUsersFn != nil {
		return m.countUsersFn(ctx)
	}
	return 0, nil
}

func (m *mockDashboardRepo) CountVerifications(ctx context.Context) (int, error) {
	if m.countVerificationsFn != nil {
		return m.countVerificationsFn(ctx)
	}
	return 0, nil
}

func (m *mockDashboardRepo) RecentZones(ctx context.Context, limit int) ([]domain.ZoneSummary, error) {
	if m.recentZonesFn != nil {
		return m.recentZonesFn(ctx, limit)
	}
	return nil, nil
}

func (m *mockDashboardRepo) GroupZonesByCoverage(ctx context.Context) ([]domain.CoverageGroup, error) {
	if m.byCoverageFn != nil {
		return m.byCoverageFn(ctx)
	}
	return nil, nil
}

func (m *mockDashboardRepo) GroupZonesByMonth(ctx context.Context) ([]domain.MonthCount, error) {
	if m.byMonthFn != nil {
		return m.byMonthFn(ctx)
	}
	return nil, nil
}

func (m *mockDashboardRepo) TopCommunitiesByZoneCount(ctx context.Context, limit int) ([]domain.CommunityRank, error) {
	if m.topCommunitiesFn != nil {
		return m.topCommunitiesFn(ctx, limit)
	}
	return nil, nil
}

// --- Pure projections ---

func TestComputeSnapshot_Empty(t *testing.T) {
	snap := usecases.ComputeSnapshot(domain.DashboardCounts{})

	if snap.VerificationRatePct != 0 {
		t.Errorf("rate = %g, want 0", snap.VerificationRatePct)
	}
	if snap.CO2OffsetKg != 0 {
		t.Errorf("co2 = %d, want 0", snap.CO2OffsetKg)
	}
	if len(snap.CoverageHistogram) != 3 {
		t.Fatalf("histogram must have exactly 3 keys, got %v", snap.CoverageHistogram)
	}
	for _, lvl := range domain.CoverageLevels {
		if n, ok := snap.CoverageHistogram[lvl]; !ok || n != 0 {
			t.Errorf("histogram[%s] = %d (present %v), want 0", lvl, n, ok)
		}
	}
	if snap.RecentZones == nil || len(snap.RecentZones) != 0 {
		t.Errorf("recent zones should be an empty list, got %v", snap.RecentZones)
	}
}

func TestComputeSnapshot_RateAndCO2(t *testing.T) {
	snap := usecases.ComputeSnapshot(domain.DashboardCounts{TotalZones: 200, VerifiedZones: 50})
	if snap.VerificationRatePct != 25.0 {
		t.Errorf("rate = %g, want 25.0", snap.VerificationRatePct)
	}
	if snap.CO2OffsetKg != 4400 {
		t.Errorf("co2 = %d, want 4400", snap.CO2OffsetKg)
	}
}

func TestComputeSnapshot_RateRounding(t *testing.T) {
	snap := usecases.ComputeSnapshot(domain.DashboardCounts{TotalZones: 3, VerifiedZones: 1})
	if snap.VerificationRatePct != 33.3 {
		t.Errorf("rate = %g, want 33.3", snap.VerificationRatePct)
	}
}

func TestComputeSnapshot_Histogram(t *testing.T) {
	snap := usecases.ComputeSnapshot(domain.DashboardCounts{
		TotalZones: 3,
		Coverage: []domain.CoverageGroup{
			{Level: domain.CoverageHigh, Count: 3},
			{Level: "", Count: 4},
			{Level: "Dense", Count: 9},
		},
	})
	want := map[domain.CoverageLevel]int{"High": 3, "Medium": 0, "Low": 0}
	if len(snap.CoverageHistogram) != len(want) {
		t.Fatalf("histogram = %v, want %v", snap.CoverageHistogram, want)
	}
	for k, v := range want {
		if snap.CoverageHistogram[k] != v {
			t.Errorf("histogram[%s] = %d, want %d", k, snap.CoverageHistogram[k], v)
		}
	}
}

func TestComputeSnapshot_RecentZonesNewestFirst(t *testing.T) {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	var zones []domain.ZoneSummary
	for i := 0; i < 7; i++ {
		zones = append(zones, domain.ZoneSummary{ID: fmt.Sprint(i), CreatedAt: base.Add(time.Duration(i) * time.Hour)})
	}

	snap := usecases.ComputeSnapshot(domain.DashboardCounts{RecentZones: zones})
	if len(snap.RecentZones) != 5 {
		t.Fatalf("expected 5 recent zones, got %d", len(snap.RecentZones))
	}
	if snap.RecentZones[0].ID != "6" || snap.RecentZones[4].ID != "2" {
		t.Errorf("unexpected order: first %s last %s", snap.RecentZones[0].ID, snap.RecentZones[4].ID)
	}
	if zones[0].ID != "0" {
		t.Error("input slice must not be reordered")
	}
}

func TestComputeGrowthTrend_LimitsTo12NewestFirst(t *testing.T) {
	var months []domain.MonthCount
	// 15 months from 2023-01 through 2024-03, shuffled by construction order.
	for i := 14; i >= 0; i -= 2 {
		months = append(months, domain.MonthCount{Year: 2023 + i/12, Month: i%12 + 1, Count: i})
	}
	for i := 13; i >= 0; i -= 2 {
		months = append(months, domain.MonthCount{Year: 2023 + i/12, Month: i%12 + 1, Count: i})
	}

	trend := usecases.ComputeGrowthTrend(months)
	if len(trend) != 12 {
		t.Fatalf("expected 12 periods, got %d", len(trend))
	}
	if trend[0].Period != "2024-03" || trend[0].ZonesAdded != 14 {
		t.Errorf("first period = %+v, want 2024-03 with 14", trend[0])
	}
	if trend[11].Period != "2023-04" {
		t.Errorf("last period = %s, want 2023-04", trend[11].Period)
	}
	for i := 1; i < len(trend); i++ {
		if trend[i-1].Period <= trend[i].Period {
			t.Fatalf("periods not strictly descending at %d: %s, %s", i, trend[i-1].Period, trend[i].Period)
		}
	}
}

func TestComputeGrowthTrend_Empty(t *testing.T) {
	trend := usecases.ComputeGrowthTrend(nil)
	if trend == nil || len(trend) != 0 {
		t.Errorf("expected empty non-nil trend, got %v", trend)
	}
}

func TestRankCommunities(t *testing.T) {
	in := []domain.CommunityRank{
		{Name: "a", ZoneCount: 1},
		{Name: "b", ZoneCount: 9},
		{Name: "c", ZoneCount: 4},
		{Name: "d", ZoneCount: 4},
		{Name: "e", ZoneCount: 0},
		{Name: "f", ZoneCount: 7},
	}
	out := usecases.RankCommunities(in)
	if len(out) != 5 {
		t.Fatalf("expected 5, got %d", len(out))
	}
	want := []string{"b", "f", "c", "d", "a"}
	for i, name := range want {
		if out[i].Name != name {
			t.Errorf("rank %d = %s, want %s", i, out[i].Name, name)
		}
	}
}

// --- Service ---

func TestDashboardService_GetDashboard(t *testing.T) {
	now := time.Now()
	repo := &mockDashboardRepo{
		countZonesFn: func(ctx context.Context, filter domain.ZoneFilter) (int, error) {
			if filter.Verified != nil && *filter.Verified {
				return 50, nil
			}
			return 200, nil
		},
		countCommunitiesFn:   func(ctx context.Context) (int, error) { return 7, nil },
		countUsersFn:         func(ctx context.Context) (int, error) { return 31, nil },
		countVerificationsFn: func(ctx context.Context) (int, error) { return 52, nil },
		recentZonesFn: func(ctx context.Context, limit int) ([]domain.ZoneSummary, error) {
			if limit != 5 {
				t.Errorf("expected limit 5, got %d", limit)
			}
			return []domain.ZoneSummary{{ID: "z1", Name: "Cubbon Park", CreatedAt: now}}, nil
		},
		byCoverageFn: func(ctx context.Context) ([]domain.CoverageGroup, error) {
			return []domain.CoverageGroup{{Level: domain.CoverageHigh, Count: 120}, {Level: domain.CoverageLow, Count: 80}}, nil
		},
	}

	snap, err := usecases.NewDashboardService(repo).GetDashboard(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.TotalZones != 200 || snap.VerifiedZones != 50 || snap.TotalCommunities != 7 ||
		snap.TotalUsers != 31 || snap.TotalVerifications != 52 {
		t.Errorf("unexpected counts: %+v", snap)
	}
	if snap.VerificationRatePct != 25.0 || snap.CO2OffsetKg != 4400 {
		t.Errorf("rate %g co2 %d", snap.VerificationRatePct, snap.CO2OffsetKg)
	}
	if snap.CoverageHistogram[domain.CoverageMedium] != 0 || snap.CoverageHistogram[domain.CoverageHigh] != 120 {
		t.Errorf("unexpected histogram: %v", snap.CoverageHistogram)
	}
	if len(snap.RecentZones) != 1 || snap.RecentZones[0].Name != "Cubbon Park" {
		t.Errorf("unexpected recent zones: %v", snap.RecentZones)
	}
}

func TestDashboardService_GetDashboard_Unavailable(t *testing.T) {
	dbErr := errors.New("connection refused")
	repo := &mockDashboardRepo{
		countUsersFn: func(ctx context.Context) (int, error) { return 0, dbErr },
	}

	snap, err := usecases.NewDashboardService(repo).GetDashboard(context.Background())
	if snap != nil {
		t.Error("no partial snapshot on failure")
	}
	if !errors.Is(err, domain.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if !errors.Is(err, dbErr) {
		t.Error("expected the cause to be preserved")
	}
}

func TestDashboardService_GetStats(t *testing.T) {
	repo := &mockDashboardRepo{
		byMonthFn: func(ctx context.Context) ([]domain.MonthCount, error) {
			return []domain.MonthCount{{Year: 2024, Month: 1, Count: 2}, {Year: 2024, Month: 11, Count: 5}}, nil
		},
		topCommunitiesFn: func(ctx context.Context, limit int) ([]domain.CommunityRank, error) {
			if limit != 5 {
				t.Errorf("expected limit 5, got %d", limit)
			}
			return []domain.CommunityRank{{Name: "Koramangala Greens", ZoneCount: 3, MemberCount: 12}}, nil
		},
	}

	stats, err := usecases.NewDashboardService(repo).GetStats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stats.GrowthTrend) != 2 || stats.GrowthTrend[0].Period != "2024-11" {
		t.Errorf("unexpected trend: %+v", stats.GrowthTrend)
	}
	if len(stats.TopCommunities) != 1 || stats.TopCommunities[0].MemberCount != 12 {
		t.Errorf("unexpected top communities: %+v", stats.TopCommunities)
	}
}

func TestDashboardService_GetStats_Unavailable(t *testing.T) {
	repo := &mockDashboardRepo{
		byMonthFn: func(ctx context.Context) ([]domain.MonthCount, error) {
			return nil, context.DeadlineExceeded
		},
	}
	_, err := usecases.NewDashboardService(repo).GetStats(context.Background())
	if !errors.Is(err, domain.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
