package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceKmZero(t *testing.T) {
	assert.Equal(t, 0.0, DistanceKm(28.6139, 77.2090, 28.6139, 77.2090))
}

func TestDistanceKmSymmetry(t *testing.T) {
	pairs := [][4]float64{
		{28.6139, 77.2090, 19.0760, 72.8777},
		{0, 0, 0, 90},
		{-33.8688, 151.2093, 51.5074, -0.1278},
		{26.4499, 80.3319, 26.4670, 80.3214},
	}
	for _, p := range pairs {
		ab := DistanceKm(p[0], p[1], p[2], p[3])
		ba := DistanceKm(p[2], p[3], p[0], p[1])
		assert.InDelta(t, ab, ba, 1e-9)
	}
}

func TestDistanceKmKnownPoints(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		wantKm                 float64
		delta                  float64
	}{
		{
			name: "India Gate to Connaught Place",
			lat1: 28.6139, lon1: 77.2090,
			lat2: 28.6289, lon2: 77.2065,
			wantKm: 1.7, delta: 0.3,
		},
		{
			name: "quarter of the equator",
			lat1: 0, lon1: 0,
			lat2: 0, lon2: 90,
			wantKm: math.Pi / 2 * 6371.0, delta: 0.001,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.wantKm, DistanceKm(tt.lat1, tt.lon1, tt.lat2, tt.lon2), tt.delta)
		})
	}
}

func TestDistanceKmDelhiMumbai(t *testing.T) {
	d := DistanceKm(28.6139, 77.2090, 19.0760, 72.8777)
	assert.Greater(t, d, 1000.0)
	assert.Less(t, d, 1300.0)
}

func TestIsValidLatLon(t *testing.T) {
	assert.True(t, IsValidLatLon(0, 0))
	assert.True(t, IsValidLatLon(-90, 180))
	assert.False(t, IsValidLatLon(90.1, 0))
	assert.False(t, IsValidLatLon(0, -180.5))
	assert.False(t, IsValidLatLon(math.NaN(), 0))
}

func TestBoundingBoxContainsCircle(t *testing.T) {
	centerLat, centerLon := 28.6139, 77.2090
	radius := 5.0
	box := BoundingBoxAround(centerLat, centerLon, radius)

	// Points just inside the radius in all directions must fall in the box.
	for deg := 0.0; deg < 360; deg += 15 {
		bearing := deg * math.Pi / 180
		dLat := radius / 6371.0 * math.Cos(bearing) * 180 / math.Pi
		dLon := radius / (6371.0 * math.Cos(centerLat*math.Pi/180)) * math.Sin(bearing) * 180 / math.Pi
		lat := centerLat + dLat*0.99
		lon := centerLon + dLon*0.99
		assert.True(t, box.Contains(lat, lon), "bearing %v", deg)
	}
}

func TestBoundingBoxNearPole(t *testing.T) {
	box := BoundingBoxAround(89.9, 0, 50)
	assert.Equal(t, -180.0, box.MinLon)
	assert.Equal(t, 180.0, box.MaxLon)
	assert.Equal(t, 90.0, box.MaxLat)
}
