package domain

import "encoding/json"

// DetectedZone is a synthetic zone produced by the mock tree detector.
// It is built fresh per request and never persisted.
type DetectedZone struct {
	Polygon            Polygon
	CoverageLevel      CoverageLevel
	Confidence         float64 // [0.70, 1.00], two decimals
	EstimatedTreeCount int     // [10, 100)
}

// MarshalJSON renders the zone as a GeoJSON Polygon geometry carrying the
// detection annotations alongside "type" and "coordinates".
func (z DetectedZone) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type               string        `json:"type"`
		Coordinates        []Polygon     `json:"coordinates"`
		CoverageLevel      CoverageLevel `json:"coverage_level"`
		Confidence         float64       `json:"confidence"`
		EstimatedTreeCount int           `json:"estimated_tree_count"`
	}{
		Type:               "Polygon",
		Coordinates:        []Polygon{z.Polygon},
		CoverageLevel:      z.CoverageLevel,
		Confidence:         z.Confidence,
		EstimatedTreeCount: z.EstimatedTreeCount,
	})
}

// DetectionMetadata describes the query that produced a detection result.
type DetectionMetadata struct {
	Center         Center  `json:"center_location"`
	SearchRadius   float64 `json:"search_radius"`
	ZonesDetected  int     `json:"zones_detected"`
	ProcessingTime string  `json:"processing_time"` // cosmetic, "1.00s".."3.00s"
	MockSimulation bool    `json:"mock_simulation"`
}

// DetectionResult is the output of a mock tree detection run.
type DetectionResult struct {
	Zones     []DetectedZone    `json:"detected_zones"`
	ZoneCount int               `json:"zone_count"`
	Metadata  DetectionMetadata `json:"metadata"`
}

// DetectionStatus describes the mock detection service.
type DetectionStatus struct {
	Service      string   `json:"service"`
	Status       string   `json:"status"`
	Mode         string   `json:"mode"`
	Version      string   `json:"version"`
	Capabilities []string `json:"capabilities"`
}

// DetectionRequest is a mock detection query. Nil fields fall back to the
// service defaults; present values are range checked.
type DetectionRequest struct {
	Latitude  *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	Radius    *float64 `json:"radius" validate:"omitempty,gt=0,lte=1"`
}
