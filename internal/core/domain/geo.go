package domain

import (
	"encoding/json"
	"fmt"
)

// Point is a geographic position stored as (longitude, latitude).
// It encodes as a GeoJSON position: [lng, lat].
type Point struct {
	Lng float64
	Lat float64
}

// MarshalJSON encodes the point as [lng, lat].
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.Lng, p.Lat})
}

// UnmarshalJSON decodes a [lng, lat] position.
func (p *Point) UnmarshalJSON(data []byte) error {
	var pos []float64
	if err := json.Unmarshal(data, &pos); err != nil {
		return err
	}
	if len(pos) < 2 {
		return fmt.Errorf("position needs 2 coordinates, got %d", len(pos))
	}
	p.Lng, p.Lat = pos[0], pos[1]
	return nil
}

// Polygon is a closed ring of points: the first and last points are identical.
type Polygon []Point

// Closed reports whether the ring has at least 4 points and ends where it starts.
func (p Polygon) Closed() bool {
	return len(p) >= 4 && p[0] == p[len(p)-1]
}

// Center is a query location in the detection API.
type Center struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
