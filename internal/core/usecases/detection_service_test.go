package usecases_test

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"math/rand/v2"
	"regexp"
	"testing"

	"github.com/samirrijal/greenmap/internal/core/domain"
	"github.com/samirrijal/greenmap/internal/core/usecases"
	"github.com/samirrijal/greenmap/internal/pkg/validation"
)

// --- Fixed random source ---

type seqSource struct {
	vals []float64
	i    int
}

func (s *seqSource) Float64() float64 {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v
}

func f64(v float64) *float64 { return &v }

// --- Tests ---

func TestDetectionService_Detect_Defaults(t *testing.T) {
	svc := usecases.NewDetectionService(rand.New(rand.NewPCG(1, 1)))

	res, err := svc.Detect(context.Background(), domain.DetectionRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m := res.Metadata
	if m.Center.Latitude != 12.9716 || m.Center.Longitude != 77.5946 {
		t.Errorf("expected Bangalore center, got %+v", m.Center)
	}
	if m.SearchRadius != 0.005 {
		t.Errorf("expected radius 0.005, got %g", m.SearchRadius)
	}
	if !m.MockSimulation {
		t.Error("mock_simulation must be true")
	}
	if res.ZoneCount < 3 || res.ZoneCount > 5 {
		t.Errorf("zone count %d outside [3,5]", res.ZoneCount)
	}
	if len(res.Zones) != res.ZoneCount || m.ZonesDetected != res.ZoneCount {
		t.Errorf("zone count mismatch: len=%d count=%d meta=%d", len(res.Zones), res.ZoneCount, m.ZonesDetected)
	}
}

func TestDetectionService_Detect_Ranges(t *testing.T) {
	svc := usecases.NewDetectionService(rand.New(rand.NewPCG(3, 9)))
	procRe := regexp.MustCompile(`^[123]\.\d{2}s$`)
	seen := map[int]bool{}

	for i := 0; i < 300; i++ {
		res, err := svc.Detect(context.Background(), domain.DetectionRequest{
			Latitude: f64(40.4168), Longitude: f64(-3.7038), Radius: f64(0.01),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		seen[res.ZoneCount] = true

		for _, z := range res.Zones {
			if z.Confidence < 0.70 || z.Confidence > 1.00 {
				t.Fatalf("confidence %g out of range", z.Confidence)
			}
			if math.Abs(z.Confidence*100-math.Round(z.Confidence*100)) > 1e-9 {
				t.Fatalf("confidence %g has more than 2 decimals", z.Confidence)
			}
			if z.EstimatedTreeCount < 10 || z.EstimatedTreeCount >= 100 {
				t.Fatalf("tree count %d out of range", z.EstimatedTreeCount)
			}
			if !z.CoverageLevel.Valid() {
				t.Fatalf("invalid coverage level %q", z.CoverageLevel)
			}
			if !z.Polygon.Closed() || len(z.Polygon) != 6 {
				t.Fatalf("polygon not a closed pentagon: %v", z.Polygon)
			}
			// Zone centers sit within ±radius/2; vertices add up to 1.2 × 0.001.
			for _, p := range z.Polygon {
				if math.Abs(p.Lat-40.4168) > 0.005+0.0012+1e-9 || math.Abs(p.Lng+3.7038) > 0.005+0.0012+1e-9 {
					t.Fatalf("vertex %+v too far from center", p)
				}
			}
		}
		if !procRe.MatchString(res.Metadata.ProcessingTime) {
			t.Fatalf("unexpected processing time %q", res.Metadata.ProcessingTime)
		}
	}
	for _, n := range []int{3, 4, 5} {
		if !seen[n] {
			t.Errorf("zone count %d never produced in 300 runs", n)
		}
	}
}

func TestDetectionService_Detect_Bangalore(t *testing.T) {
	svc := usecases.NewDetectionService(rand.New(rand.NewPCG(12, 77)))
	for i := 0; i < 100; i++ {
		res, err := svc.Detect(context.Background(), domain.DetectionRequest{
			Latitude: f64(12.9716), Longitude: f64(77.5946), Radius: f64(0.005),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.ZoneCount < 3 || res.ZoneCount > 5 || len(res.Zones) != res.ZoneCount {
			t.Fatalf("expected 3-5 zones, got count=%d len=%d", res.ZoneCount, len(res.Zones))
		}
		for _, z := range res.Zones {
			if len(z.Polygon) != 6 || !z.Polygon.Closed() {
				t.Fatalf("expected a closed 6-point ring, got %v", z.Polygon)
			}
			for _, p := range z.Polygon {
				if math.Abs(p.Lat-12.9716) > 2*0.005 || math.Abs(p.Lng-77.5946) > 2*0.005 {
					t.Fatalf("vertex %+v farther than 0.01° from Bangalore", p)
				}
			}
		}
	}
}

func TestDetectionService_Detect_DrawOrder(t *testing.T) {
	// zoneCount r=0 → 3 zones; every later draw is 0.5.
	src := &seqSource{vals: append([]float64{0}, repeat(0.5, 40)...)}
	svc := usecases.NewDetectionService(src)

	res, err := svc.Detect(context.Background(), domain.DetectionRequest{
		Latitude: f64(10), Longitude: f64(20), Radius: f64(0.1),
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.ZoneCount != 3 {
		t.Fatalf("expected 3 zones, got %d", res.ZoneCount)
	}
	z := res.Zones[0]
	// Offset draws of 0.5 put the zone exactly on the center; vertex 0 is due north.
	if math.Abs(z.Polygon[0].Lat-10.001) > 1e-12 || math.Abs(z.Polygon[0].Lng-20) > 1e-12 {
		t.Errorf("vertex 0 = %+v, want lat 10.001 lng 20", z.Polygon[0])
	}
	if z.CoverageLevel != domain.CoverageMedium {
		t.Errorf("coverage = %s, want Medium", z.CoverageLevel)
	}
	if z.Confidence != 0.85 {
		t.Errorf("confidence = %g, want 0.85", z.Confidence)
	}
	if z.EstimatedTreeCount != 55 {
		t.Errorf("tree count = %d, want 55", z.EstimatedTreeCount)
	}
	if res.Metadata.ProcessingTime != "2.00s" {
		t.Errorf("processing time = %s, want 2.00s", res.Metadata.ProcessingTime)
	}
}

func TestDetectionService_Detect_ZeroLatitudeIsValid(t *testing.T) {
	svc := usecases.NewDetectionService(rand.New(rand.NewPCG(5, 5)))
	res, err := svc.Detect(context.Background(), domain.DetectionRequest{Latitude: f64(0), Longitude: f64(0)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Metadata.Center.Latitude != 0 || res.Metadata.Center.Longitude != 0 {
		t.Errorf("explicit 0,0 must not fall back to defaults, got %+v", res.Metadata.Center)
	}
}

func TestDetectionService_Detect_InvalidInput(t *testing.T) {
	svc := usecases.NewDetectionService(rand.New(rand.NewPCG(1, 1)))
	cases := map[string]domain.DetectionRequest{
		"latitude too high":  {Latitude: f64(90.5)},
		"longitude too low":  {Longitude: f64(-181)},
		"zero radius":        {Radius: f64(0)},
		"negative radius":    {Radius: f64(-0.01)},
		"radius above bound": {Radius: f64(1.5)},
		"NaN latitude":       {Latitude: f64(math.NaN())},
		"infinite longitude": {Longitude: f64(math.Inf(1))},
	}
	for name, req := range cases {
		_, err := svc.Detect(context.Background(), req)
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("%s: expected ErrInvalidInput, got %v", name, err)
		}
		var verr *validation.Error
		if !errors.As(err, &verr) {
			t.Errorf("%s: expected field errors, got %v", name, err)
		}
	}
}

func TestDetectionService_Detect_JSONShape(t *testing.T) {
	svc := usecases.NewDetectionService(rand.New(rand.NewPCG(2, 2)))
	res, err := svc.Detect(context.Background(), domain.DetectionRequest{})
	if err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(res)
	if err != nil {
		t.Fatal(err)
	}

	var out struct {
		DetectedZones []struct {
			Type        string         `json:"type"`
			Coordinates [][][2]float64 `json:"coordinates"`
		} `json:"detected_zones"`
		Metadata map[string]any `json:"metadata"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	z := out.DetectedZones[0]
	if z.Type != "Polygon" || len(z.Coordinates) != 1 || len(z.Coordinates[0]) != 6 {
		t.Fatalf("unexpected geometry: %+v", z)
	}
	// GeoJSON positions are [lng, lat].
	if z.Coordinates[0][0][0] < 77 || z.Coordinates[0][0][1] > 13.1 {
		t.Errorf("expected [lng, lat] ordering, got %v", z.Coordinates[0][0])
	}
	if _, ok := out.Metadata["center_location"]; !ok {
		t.Error("metadata missing center_location")
	}
}

func TestDetectionService_Status(t *testing.T) {
	st := usecases.NewDetectionService(nil).Status()
	if st.Status != "online" || st.Mode != "simulation" {
		t.Errorf("unexpected status: %+v", st)
	}
	if len(st.Capabilities) == 0 {
		t.Error("expected capabilities")
	}
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}
