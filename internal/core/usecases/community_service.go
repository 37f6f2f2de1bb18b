package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/samirrijal/greenmap/internal/core/domain"
	"github.com/samirrijal/greenmap/internal/core/ports"
	"github.com/samirrijal/greenmap/internal/pkg/metrics"
	"github.com/samirrijal/greenmap/internal/pkg/validation"
)

const communityCacheTTL = 60 // seconds

// CreateCommunityInput is the payload for founding a community.
type CreateCommunityInput struct {
	Name        string `json:"name" validate:"required,min=3,max=150"`
	Description string `json:"description" validate:"required,max=1000"`
}

// CommunityService manages communities and their membership.
type CommunityService struct {
	communities ports.CommunityRepository
	cache       ports.CacheService
	events      ports.EventPublisher
}

// NewCommunityService creates a new CommunityService. cache and events may be nil.
func NewCommunityService(communities ports.CommunityRepository, cache ports.CacheService, events ports.EventPublisher) *CommunityService {
	return &CommunityService{communities: communities, cache: cache, events: events}
}

// Create founds a community with the creator as its first member.
func (s *CommunityService) Create(ctx context.Context, creatorID string, in CreateCommunityInput) (*domain.Community, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if err := validation.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}

	c := &domain.Community{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		CreatedBy:   creatorID,
		MemberCount: 1,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.communities.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create community: %w", err)
	}

	if s.events != nil {
		if err := s.events.PublishCommunityCreated(ctx, c); err != nil {
			slog.WarnContext(ctx, "publish community.created failed", "community_id", c.ID, "error", err)
		}
	}
	return c, nil
}

// Get returns a community with its members and zones.
func (s *CommunityService) Get(ctx context.Context, id string) (*domain.Community, error) {
	key := communityCacheKey(id)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, key); err == nil {
			var c domain.Community
			if err := json.Unmarshal(data, &c); err == nil {
				metrics.CacheHits.WithLabelValues("community").Inc()
				return &c, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("community").Inc()
	}

	c, err := s.communities.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(c); err == nil {
			_ = s.cache.Set(ctx, key, data, communityCacheTTL)
		}
	}
	return c, nil
}

// List returns all communities, newest first.
func (s *CommunityService) List(ctx context.Context) ([]domain.Community, error) {
	return s.communities.List(ctx)
}

// Join adds the user to the community. Joining twice is a no-op.
func (s *CommunityService) Join(ctx context.Context, id, userID string) (*domain.Community, error) {
	if err := s.communities.AddMember(ctx, id, userID); err != nil {
		return nil, err
	}
	invalidateCommunity(ctx, s.cache, id)
	return s.Get(ctx, id)
}

// Invalidate drops the cached detail view of a community. Event consumers use
// it when a zone attached to the community changes elsewhere.
func (s *CommunityService) Invalidate(ctx context.Context, id string) {
	invalidateCommunity(ctx, s.cache, id)
}

func communityCacheKey(id string) string {
	return "community:id:" + id
}

func invalidateCommunity(ctx context.Context, cache ports.CacheService, id string) {
	if cache == nil || id == "" {
		return
	}
	if err := cache.Delete(ctx, communityCacheKey(id)); err != nil {
		slog.WarnContext(ctx, "community cache invalidation failed", "community_id", id, "error", err)
	}
}
