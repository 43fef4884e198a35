package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// metersNorth returns a point d meters due north of p.
func metersNorth(p Point, d float64) Point {
	return Point{Lat: p.Lat + d/EarthRadiusMeters*180/3.141592653589793, Lon: p.Lon}
}

func TestDistanceToSelfIsZero(t *testing.T) {
	p := Point{Lat: 41.311081, Lon: 69.240562}
	assert.Equal(t, 0.0, DistanceMeters(p, p))
	assert.True(t, WithinRadius(p, p, 0))
}

func TestDistanceKnownPair(t *testing.T) {
	paris := Point{Lat: 48.8566, Lon: 2.3522}
	london := Point{Lat: 51.5074, Lon: -0.1278}
	assert.InDelta(t, 343_556, DistanceMeters(paris, london), 1_000)
}

func TestWithinRadiusBoundary(t *testing.T) {
	origin := Point{Lat: 41.311081, Lon: 69.240562}

	assert.True(t, WithinRadius(origin, metersNorth(origin, 40), DefaultRadiusMeters))
	assert.False(t, WithinRadius(origin, metersNorth(origin, 60), DefaultRadiusMeters))
	assert.InDelta(t, 60, DistanceMeters(origin, metersNorth(origin, 60)), 0.01)
}

func TestSymmetry(t *testing.T) {
	pairs := [][2]Point{
		{{Lat: 41.311081, Lon: 69.240562}, {Lat: 41.3115, Lon: 69.2401}},
		{{Lat: -33.8688, Lon: 151.2093}, {Lat: 35.6762, Lon: 139.6503}},
		{{Lat: 0, Lon: 179.9999}, {Lat: 0, Lon: -179.9999}},
	}
	for _, pair := range pairs {
		a, b := pair[0], pair[1]
		assert.Equal(t, DistanceMeters(a, b), DistanceMeters(b, a))
		for _, r := range []float64{10, 50, 1e7} {
			assert.Equal(t, WithinRadius(a, b, r), WithinRadius(b, a, r))
		}
	}
}
