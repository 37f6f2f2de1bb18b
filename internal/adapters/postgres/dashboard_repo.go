package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/greenmap/internal/core/domain"
)

// DashboardRepo implements ports.DashboardRepository with aggregate queries.
type DashboardRepo struct {
	db *DB
}

// NewDashboardRepo creates a new DashboardRepo.
func NewDashboardRepo(db *DB) *DashboardRepo {
	return &DashboardRepo{db: db}
}

// CountZones counts zones matching filter.
func (r *DashboardRepo) CountZones(ctx context.Context, filter domain.ZoneFilter) (int, error) {
	return r.count(ctx, `
		SELECT count(*) FROM green_zones
		WHERE ($1::boolean IS NULL OR verified = $1)
		  AND ($2 = '' OR coverage_level = $2)
	`, filter.Verified, string(filter.CoverageLevel))
}

func (r *DashboardRepo) CountCommunities(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT count(*) FROM communities`)
}

func (r *DashboardRepo) CountUsers(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT count(*) FROM users`)
}

func (r *DashboardRepo) CountVerifications(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT count(*) FROM verifications`)
}

func (r *DashboardRepo) count(ctx context.Context, sql string, args ...any) (int, error) {
	var n int
	if err := r.db.Pool.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// RecentZones returns the newest zones.
func (r *DashboardRepo) RecentZones(ctx context.Context, limit int) ([]domain.ZoneSummary, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, name, coverage_level, verified, created_at
		FROM green_zones
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.ZoneSummary, error) {
		var z domain.ZoneSummary
		err := row.Scan(&z.ID, &z.Name, &z.CoverageLevel, &z.Verified, &z.CreatedAt)
		return z, err
	})
}

// GroupZonesByCoverage counts zones per coverage level.
func (r *DashboardRepo) GroupZonesByCoverage(ctx context.Context) ([]domain.CoverageGroup, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT coverage_level, count(*) FROM green_zones GROUP BY coverage_level
	`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.CoverageGroup, error) {
		var g domain.CoverageGroup
		err := row.Scan(&g.Level, &g.Count)
		return g, err
	})
}

// GroupZonesByMonth counts zones per UTC creation month.
func (r *DashboardRepo) GroupZonesByMonth(ctx context.Context) ([]domain.MonthCount, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT EXTRACT(YEAR FROM created_at AT TIME ZONE 'UTC')::int  AS year,
		       EXTRACT(MONTH FROM created_at AT TIME ZONE 'UTC')::int AS month,
		       count(*)
		FROM green_zones
		GROUP BY 1, 2
	`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.MonthCount, error) {
		var m domain.MonthCount
		err := row.Scan(&m.Year, &m.Month, &m.Count)
		return m, err
	})
}

// TopCommunitiesByZoneCount returns the communities with the most zones.
func (r *DashboardRepo) TopCommunitiesByZoneCount(ctx context.Context, limit int) ([]domain.CommunityRank, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT c.name,
		       (SELECT count(*) FROM green_zones z WHERE z.community_id = c.id)       AS zone_count,
		       (SELECT count(*) FROM community_members m WHERE m.community_id = c.id) AS member_count
		FROM communities c
		ORDER BY zone_count DESC, c.created_at
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.CommunityRank, error) {
		var c domain.CommunityRank
		err := row.Scan(&c.Name, &c.ZoneCount, &c.MemberCount)
		return c, err
	})
}
