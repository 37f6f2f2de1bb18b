package geospatial

import (
	"math"
	"math/rand/v2"

	"github.com/samirrijal/greenmap/internal/core/domain"
)

// DefaultPolygonRadius is the base vertex distance, in degrees, of a
// synthesized zone polygon.
const DefaultPolygonRadius = 0.001

const polygonVertices = 5

// RandomSource yields uniformly distributed floats in [0, 1).
// *rand.Rand from math/rand/v2 satisfies it.
type RandomSource interface {
	Float64() float64
}

type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() }

// GlobalSource draws from the package-level math/rand/v2 generator, which is
// safe for concurrent use.
var GlobalSource RandomSource = globalSource{}

// GeneratePolygon returns a closed, jittered pentagon around the center.
//
// Vertex i sits at angle (i/5)·2π with its distance from the center drawn
// from radius·[0.8, 1.2). The latitude offset follows cos(angle) and the
// longitude offset sin(angle); existing clients depend on that orientation.
// The first vertex is repeated at the end to close the ring.
func GeneratePolygon(src RandomSource, centerLat, centerLng, radius float64) domain.Polygon {
	ring := make(domain.Polygon, 0, polygonVertices+1)
	for i := 0; i < polygonVertices; i++ {
		angle := float64(i) / polygonVertices * 2 * math.Pi
		jittered := radius * (0.8 + src.Float64()*0.4)
		ring = append(ring, domain.Point{
			Lat: centerLat + jittered*math.Cos(angle),
			Lng: centerLng + jittered*math.Sin(angle),
		})
	}
	return append(ring, ring[0])
}
