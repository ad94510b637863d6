package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tracking-service/internal/model"
)

func candidateAt(vehicleID string, lat, lon float64) nearbyCandidate {
	id := uuid.New()
	return nearbyCandidate{
		vehicle: model.Vehicle{
			ID:        id,
			VehicleID: vehicleID,
			IsActive:  true,
		},
		position: model.Position{
			VehicleID:  id,
			Latitude:   lat,
			Longitude:  lon,
			RecordedAt: time.Now(),
		},
	}
}

func TestRankNearbyOrdering(t *testing.T) {
	// All near India Gate, increasing offsets.
	candidates := []nearbyCandidate{
		candidateAt("V-FAR", 28.6500, 77.2090),
		candidateAt("V-NEAR", 28.6150, 77.2090),
		candidateAt("V-MID", 28.6300, 77.2090),
	}

	ranked := rankNearby(28.6139, 77.2090, 10, 10, candidates)
	require.Len(t, ranked, 3)
	assert.Equal(t, "V-NEAR", ranked[0].vehicle.VehicleID)
	assert.Equal(t, "V-MID", ranked[1].vehicle.VehicleID)
	assert.Equal(t, "V-FAR", ranked[2].vehicle.VehicleID)

	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i].distance, ranked[i-1].distance)
	}
}

func TestRankNearbyRadiusMonotonic(t *testing.T) {
	candidates := []nearbyCandidate{
		candidateAt("V1", 28.6150, 77.2090),
		candidateAt("V2", 28.6300, 77.2090),
		candidateAt("V3", 28.7000, 77.2090),
		candidateAt("V4", 29.0000, 77.2090),
	}

	var previous int
	for _, radius := range []float64{0.5, 2, 5, 20, 100} {
		count := len(rankNearby(28.6139, 77.2090, radius, 100, candidates))
		assert.GreaterOrEqual(t, count, previous, "radius %v", radius)
		previous = count
	}
}

func TestRankNearbyLimit(t *testing.T) {
	candidates := []nearbyCandidate{
		candidateAt("V1", 28.6150, 77.2090),
		candidateAt("V2", 28.6160, 77.2090),
		candidateAt("V3", 28.6170, 77.2090),
	}
	ranked := rankNearby(28.6139, 77.2090, 50, 2, candidates)
	require.Len(t, ranked, 2)
	assert.Equal(t, "V1", ranked[0].vehicle.VehicleID)
	assert.Equal(t, "V2", ranked[1].vehicle.VehicleID)
}

func TestRankNearbyExcludesDistantCity(t *testing.T) {
	// Delhi query must find the Delhi vehicle and never the Mumbai one.
	candidates := []nearbyCandidate{
		candidateAt("V1", 28.6139, 77.2090),
		candidateAt("V2", 19.0760, 72.8777),
	}
	ranked := rankNearby(28.6139, 77.2090, 5, 10, candidates)
	require.Len(t, ranked, 1)
	assert.Equal(t, "V1", ranked[0].vehicle.VehicleID)
}

func TestRankNearbyTiesKeepFetchOrder(t *testing.T) {
	// Two vehicles at the exact same point: stable sort keeps input order.
	candidates := []nearbyCandidate{
		candidateAt("FIRST", 28.6150, 77.2090),
		candidateAt("SECOND", 28.6150, 77.2090),
	}
	ranked := rankNearby(28.6139, 77.2090, 5, 10, candidates)
	require.Len(t, ranked, 2)
	assert.Equal(t, "FIRST", ranked[0].vehicle.VehicleID)
	assert.Equal(t, "SECOND", ranked[1].vehicle.VehicleID)
}

func TestFindNearbyRejectsBadArguments(t *testing.T) {
	svc := NewProximityService(nil, nil, nil)
	ctx := context.Background()

	_, err := svc.FindNearby(ctx, 28.6, 77.2, -1, 10)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.FindNearby(ctx, 28.6, 77.2, 5, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.FindNearby(ctx, 91, 77.2, 5, 10)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.FindNearby(ctx, 28.6, -190, 5, 10)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
