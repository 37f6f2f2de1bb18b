package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/samirrijal/greenmap/internal/core/domain"
	"github.com/samirrijal/greenmap/internal/core/ports"
	"github.com/samirrijal/greenmap/internal/pkg/metrics"
	"github.com/samirrijal/greenmap/internal/pkg/validation"
)

// CreateZoneInput is the payload for mapping a green zone.
type CreateZoneInput struct {
	Name          string               `json:"name" validate:"required,max=200"`
	Coordinates   json.RawMessage      `json:"coordinates" validate:"required"`
	CoverageLevel domain.CoverageLevel `json:"coverage_level" validate:"required,coverage"`
	CommunityID   string               `json:"community_id" validate:"omitempty,uuid"`
}

// GreenZoneService manages mapped green zones.
type GreenZoneService struct {
	zones       ports.GreenZoneRepository
	communities ports.CommunityRepository
	cache       ports.CacheService
	events      ports.EventPublisher
}

// NewGreenZoneService creates a new GreenZoneService. cache and events may be nil.
func NewGreenZoneService(zones ports.GreenZoneRepository, communities ports.CommunityRepository, cache ports.CacheService, events ports.EventPublisher) *GreenZoneService {
	return &GreenZoneService{zones: zones, communities: communities, cache: cache, events: events}
}

// Create validates and stores a zone, attaching it to a community when one
// is given.
func (s *GreenZoneService) Create(ctx context.Context, creatorID string, in CreateZoneInput) (*domain.GreenZone, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validation.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}

	geometry, err := ParseZonePolygon(in.Coordinates)
	if err != nil {
		return nil, err
	}

	var community *domain.CommunityRef
	if in.CommunityID != "" {
		c, err := s.communities.GetByID(ctx, in.CommunityID)
		if err != nil {
			return nil, fmt.Errorf("community %s: %w", in.CommunityID, err)
		}
		community = &domain.CommunityRef{ID: c.ID, Name: c.Name}
	}

	zone := &domain.GreenZone{
		ID:            uuid.NewString(),
		Name:          in.Name,
		Coordinates:   geometry,
		CoverageLevel: in.CoverageLevel,
		CommunityID:   in.CommunityID,
		CreatedByID:   creatorID,
		Community:     community,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.zones.Create(ctx, zone); err != nil {
		return nil, fmt.Errorf("create zone: %w", err)
	}
	metrics.ZonesCreated.WithLabelValues(string(zone.CoverageLevel)).Inc()

	invalidateCommunity(ctx, s.cache, zone.CommunityID)
	if s.events != nil {
		if err := s.events.PublishZoneCreated(ctx, zone); err != nil {
			slog.WarnContext(ctx, "publish zone.created failed", "zone_id", zone.ID, "error", err)
		}
	}
	return zone, nil
}

// List returns zones matching filter, newest first.
func (s *GreenZoneService) List(ctx context.Context, filter domain.ZoneFilter) ([]domain.GreenZone, error) {
	if filter.CoverageLevel != "" && !filter.CoverageLevel.Valid() {
		return nil, fmt.Errorf("%w: coverage_level must be High, Medium, or Low", domain.ErrInvalidInput)
	}
	return s.zones.List(ctx, filter)
}

// Get returns a single zone.
func (s *GreenZoneService) Get(ctx context.Context, id string) (*domain.GreenZone, error) {
	return s.zones.GetByID(ctx, id)
}

// ParseZonePolygon checks that raw is a GeoJSON Polygon geometry with closed
// rings of at least 4 in-range positions and returns its normalised encoding.
func ParseZonePolygon(raw json.RawMessage) (json.RawMessage, error) {
	g, err := geojson.UnmarshalGeometry(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: coordinates must be a GeoJSON geometry: %v", domain.ErrInvalidInput, err)
	}
	poly, ok := g.Geometry().(orb.Polygon)
	if !ok {
		return nil, fmt.Errorf("%w: coordinates must be a Polygon, got %s", domain.ErrInvalidInput, g.Type)
	}
	if len(poly) == 0 {
		return nil, fmt.Errorf("%w: polygon has no rings", domain.ErrInvalidInput)
	}
	for i, ring := range poly {
		if len(ring) < 4 {
			return nil, fmt.Errorf("%w: ring %d needs at least 4 positions", domain.ErrInvalidInput, i)
		}
		if !ring.Closed() {
			return nil, fmt.Errorf("%w: ring %d is not closed", domain.ErrInvalidInput, i)
		}
		for _, p := range ring {
			if p.Lon() < -180 || p.Lon() > 180 || p.Lat() < -90 || p.Lat() > 90 {
				return nil, fmt.Errorf("%w: position %v out of range", domain.ErrInvalidInput, p)
			}
		}
	}

	out, err := geojson.NewGeometry(poly).MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encode polygon: %w", err)
	}
	return out, nil
}
