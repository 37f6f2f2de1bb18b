package usecases_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/samirrijal/greenmap/internal/core/domain"
	"github.com/samirrijal/greenmap/internal/core/usecases"
)

const cubbonPark = `{"type":"Polygon","coordinates":[[[77.5920,12.9760],[77.5960,12.9760],[77.5960,12.9720],[77.5920,12.9720],[77.5920,12.9760]]]}`

const communityID = "6f1c8a52-3f43-4b8e-9d0e-2b1f7c9a4d10"

func TestGreenZoneService_Create(t *testing.T) {
	var stored *domain.GreenZone
	zones := &mockZoneRepo{
		createFn: func(ctx context.Context, z *domain.GreenZone) error {
			stored = z
			return nil
		},
	}
	communities := &mockCommunityRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.Community, error) {
			return &domain.Community{ID: id, Name: "Cubbon Walkers"}, nil
		},
	}
	cache := newMemCache()
	_ = cache.Set(context.Background(), "community:id:"+communityID, []byte(`{}`), 60)
	pub := &recordingPublisher{}

	svc := usecases.NewGreenZoneService(zones, communities, cache, pub)
	zone, err := svc.Create(context.Background(), "u1", usecases.CreateZoneInput{
		Name:          "Cubbon Park north lawn",
		Coordinates:   json.RawMessage(cubbonPark),
		CoverageLevel: domain.CoverageHigh,
		CommunityID:   communityID,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored != zone || zone.Verified || zone.CreatedByID != "u1" {
		t.Errorf("unexpected zone: %+v", zone)
	}
	if zone.Community == nil || zone.Community.Name != "Cubbon Walkers" {
		t.Errorf("expected community reference, got %+v", zone.Community)
	}
	if !strings.Contains(string(zone.Coordinates), `"type":"Polygon"`) {
		t.Errorf("expected normalised GeoJSON, got %s", zone.Coordinates)
	}
	if _, err := cache.Get(context.Background(), "community:id:"+communityID); err == nil {
		t.Error("community cache entry should be invalidated")
	}
	if len(pub.zones) != 1 {
		t.Errorf("expected zone.created event, got %d", len(pub.zones))
	}
}

func TestGreenZoneService_Create_UnknownCommunity(t *testing.T) {
	svc := usecases.NewGreenZoneService(&mockZoneRepo{}, &mockCommunityRepo{}, nil, nil)
	_, err := svc.Create(context.Background(), "u1", usecases.CreateZoneInput{
		Name: "Lawn", Coordinates: json.RawMessage(cubbonPark), CoverageLevel: domain.CoverageLow, CommunityID: communityID,
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGreenZoneService_Create_InvalidInput(t *testing.T) {
	svc := usecases.NewGreenZoneService(&mockZoneRepo{}, &mockCommunityRepo{}, nil, nil)
	cases := map[string]usecases.CreateZoneInput{
		"missing name":     {Coordinates: json.RawMessage(cubbonPark), CoverageLevel: domain.CoverageHigh},
		"bad coverage":     {Name: "x", Coordinates: json.RawMessage(cubbonPark), CoverageLevel: "Dense"},
		"missing coords":   {Name: "x", CoverageLevel: domain.CoverageHigh},
		"bad community id": {Name: "x", Coordinates: json.RawMessage(cubbonPark), CoverageLevel: domain.CoverageHigh, CommunityID: "abc"},
		"point geometry":   {Name: "x", Coordinates: json.RawMessage(`{"type":"Point","coordinates":[77.59,12.97]}`), CoverageLevel: domain.CoverageHigh},
	}
	for name, in := range cases {
		if _, err := svc.Create(context.Background(), "u1", in); !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("%s: expected ErrInvalidInput, got %v", name, err)
		}
	}
}

func TestParseZonePolygon(t *testing.T) {
	if _, err := usecases.ParseZonePolygon(json.RawMessage(cubbonPark)); err != nil {
		t.Fatalf("valid polygon rejected: %v", err)
	}

	bad := map[string]string{
		"open ring":    `{"type":"Polygon","coordinates":[[[77.59,12.97],[77.60,12.97],[77.60,12.98],[77.59,12.98]]]}`,
		"too short":    `{"type":"Polygon","coordinates":[[[77.59,12.97],[77.60,12.97],[77.59,12.97]]]}`,
		"out of range": `{"type":"Polygon","coordinates":[[[190,12.97],[77.60,12.97],[77.60,12.98],[190,12.97]]]}`,
		"no rings":     `{"type":"Polygon","coordinates":[]}`,
		"not geojson":  `[1,2,3]`,
	}
	for name, raw := range bad {
		if _, err := usecases.ParseZonePolygon(json.RawMessage(raw)); !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("%s: expected ErrInvalidInput, got %v", name, err)
		}
	}
}

func TestGreenZoneService_List(t *testing.T) {
	repo := &mockZoneRepo{
		listFn: func(ctx context.Context, f domain.ZoneFilter) ([]domain.GreenZone, error) {
			if f.Verified == nil || !*f.Verified || f.CoverageLevel != domain.CoverageMedium {
				t.Errorf("filter not passed through: %+v", f)
			}
			return []domain.GreenZone{{ID: "z1"}}, nil
		},
	}
	svc := usecases.NewGreenZoneService(repo, &mockCommunityRepo{}, nil, nil)

	verified := true
	zones, err := svc.List(context.Background(), domain.ZoneFilter{Verified: &verified, CoverageLevel: domain.CoverageMedium})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(zones) != 1 {
		t.Fatalf("expected 1 zone, got %d", len(zones))
	}

	if _, err := svc.List(context.Background(), domain.ZoneFilter{CoverageLevel: "Sparse"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for unknown level, got %v", err)
	}
}
