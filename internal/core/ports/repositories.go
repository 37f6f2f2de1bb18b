package ports

import (
	"context"

	"github.com/samirrijal/greenmap/internal/core/domain"
)

// UserRepository persists users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// CommunityRepository persists communities and their memberships.
type CommunityRepository interface {
	// Create inserts the community and enrols its creator as the first member.
	Create(ctx context.Context, community *domain.Community) error
	GetByID(ctx context.Context, id string) (*domain.Community, error)
	List(ctx context.Context) ([]domain.Community, error)
	AddMember(ctx context.Context, communityID, userID string) error
}

// GreenZoneRepository persists green zones.
type GreenZoneRepository interface {
	Create(ctx context.Context, zone *domain.GreenZone) error
	GetByID(ctx context.Context, id string) (*domain.GreenZone, error)
	List(ctx context.Context, filter domain.ZoneFilter) ([]domain.GreenZone, error)
	MarkVerified(ctx context.Context, id string) error
}

// VerificationRepository persists planting verifications.
type VerificationRepository interface {
	Create(ctx context.Context, v *domain.Verification) error
	List(ctx context.Context) ([]domain.Verification, error)
	Delete(ctx context.Context, id string) error
}

// DashboardRepository exposes the read-only counts and groupings the
// dashboard is aggregated from. Reads are independent and need not be
// mutually consistent.
type DashboardRepository interface {
	CountZones(ctx context.Context, filter domain.ZoneFilter) (int, error)
	CountCommunities(ctx context.Context) (int, error)
	CountUsers(ctx context.Context) (int, error)
	CountVerifications(ctx context.Context) (int, error)
	RecentZones(ctx context.Context, limit int) ([]domain.ZoneSummary, error)
	GroupZonesByCoverage(ctx context.Context) ([]domain.CoverageGroup, error)
	GroupZonesByMonth(ctx context.Context) ([]domain.MonthCount, error)
	TopCommunitiesByZoneCount(ctx context.Context, limit int) ([]domain.CommunityRank, error)
}
