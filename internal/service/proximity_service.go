package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"tracking-service/internal/geo"
	"tracking-service/internal/model"
	"tracking-service/internal/repository"
)

const (
	DefaultSearchRadiusKm = 5.0
	DefaultSearchLimit    = 10
)

type ProximityService struct {
	positionRepo *repository.PositionRepository
	vehicleRepo  *repository.VehicleRepository
	routeRepo    *repository.RouteRepository
}

func NewProximityService(
	positionRepo *repository.PositionRepository,
	vehicleRepo *repository.VehicleRepository,
	routeRepo *repository.RouteRepository,
) *ProximityService {
	return &ProximityService{
		positionRepo: positionRepo,
		vehicleRepo:  vehicleRepo,
		routeRepo:    routeRepo,
	}
}

type NearbyVehicle struct {
	VehicleID    string    `json:"vehicle_id"`
	Registration string    `json:"registration"`
	RouteID      *string   `json:"route_id"`
	RouteName    *string   `json:"route_name"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	Speed        float64   `json:"speed"`
	DistanceKm   float64   `json:"distance_km"`
	RecordedAt   time.Time `json:"last_updated"`
}

type nearbyCandidate struct {
	vehicle  model.Vehicle
	position model.Position
	distance float64
}

// FindNearby returns active vehicles within radiusKm of the query point,
// nearest first, at most limit entries.
func (s *ProximityService) FindNearby(ctx context.Context, lat, lon, radiusKm float64, limit int) ([]NearbyVehicle, error) {
	if !geo.IsValidLatLon(lat, lon) {
		return nil, fmt.Errorf("%w: latitude/longitude out of range", ErrInvalidInput)
	}
	if radiusKm <= 0 {
		return nil, fmt.Errorf("%w: radius must be positive", ErrInvalidInput)
	}
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", ErrInvalidInput)
	}

	positions, err := s.positionRepo.LatestForActiveVehicles(ctx)
	if err != nil {
		return nil, err
	}

	vehicleIDs := make([]uuid.UUID, 0, len(positions))
	for _, p := range positions {
		vehicleIDs = append(vehicleIDs, p.VehicleID)
	}
	vehicles, err := s.vehicleRepo.ListByIDs(ctx, vehicleIDs)
	if err != nil {
		return nil, err
	}
	vehiclesByID := make(map[uuid.UUID]model.Vehicle, len(vehicles))
	for _, v := range vehicles {
		vehiclesByID[v.ID] = v
	}

	candidates := make([]nearbyCandidate, 0, len(positions))
	for _, p := range positions {
		vehicle, ok := vehiclesByID[p.VehicleID]
		if !ok {
			continue
		}
		candidates = append(candidates, nearbyCandidate{vehicle: vehicle, position: p})
	}

	ranked := rankNearby(lat, lon, radiusKm, limit, candidates)

	routeIDs := make([]uuid.UUID, 0, len(ranked))
	for _, c := range ranked {
		routeIDs = append(routeIDs, c.vehicle.RouteID)
	}
	routes, err := s.routeRepo.ListByIDs(ctx, routeIDs)
	if err != nil {
		return nil, err
	}
	routesByID := make(map[uuid.UUID]model.Route, len(routes))
	for _, r := range routes {
		routesByID[r.ID] = r
	}

	results := make([]NearbyVehicle, 0, len(ranked))
	for _, c := range ranked {
		entry := NearbyVehicle{
			VehicleID:    c.vehicle.VehicleID,
			Registration: c.vehicle.Registration,
			Latitude:     c.position.Latitude,
			Longitude:    c.position.Longitude,
			Speed:        c.position.Speed,
			DistanceKm:   math.Round(c.distance*100) / 100,
			RecordedAt:   c.position.RecordedAt,
		}
		if route, ok := routesByID[c.vehicle.RouteID]; ok {
			entry.RouteID = &route.RouteID
			entry.RouteName = &route.Name
		}
		results = append(results, entry)
	}
	return results, nil
}

// rankNearby filters candidates to the radius and sorts nearest first. A
// bounding-box check prunes candidates before the haversine call; the box
// always contains the full circle, so the prefilter never changes the
// result set. Sorting is stable so ties keep fetch order.
func rankNearby(lat, lon, radiusKm float64, limit int, candidates []nearbyCandidate) []nearbyCandidate {
	box := geo.BoundingBoxAround(lat, lon, radiusKm)

	matched := make([]nearbyCandidate, 0, len(candidates))
	for _, c := range candidates {
		if !box.Contains(c.position.Latitude, c.position.Longitude) {
			continue
		}
		c.distance = geo.DistanceKm(lat, lon, c.position.Latitude, c.position.Longitude)
		if c.distance > radiusKm {
			continue
		}
		matched = append(matched, c)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].distance < matched[j].distance
	})

	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched
}
