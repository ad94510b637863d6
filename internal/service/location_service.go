package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"tracking-service/internal/geo"
	"tracking-service/internal/model"
	"tracking-service/internal/repository"
	"tracking-service/internal/utils"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidInput     = errors.New("invalid input")
	ErrValidation       = errors.New("validation failed")
	ErrConflict         = errors.New("conflict")
)

// LocationNotifier is invoked after a successful position write so an
// external mirror can be kept up to date. Failures must never fail the
// write; the service calls it on a detached goroutine and only logs errors.
type LocationNotifier interface {
	NotifyPosition(ctx context.Context, vehicle model.Vehicle, position model.Position) error
}

type LocationService struct {
	positionRepo *repository.PositionRepository
	vehicleRepo  *repository.VehicleRepository
	routeRepo    *repository.RouteRepository
	notifier     LocationNotifier
	log          zerolog.Logger
}

func NewLocationService(
	positionRepo *repository.PositionRepository,
	vehicleRepo *repository.VehicleRepository,
	routeRepo *repository.RouteRepository,
	notifier LocationNotifier,
	log zerolog.Logger,
) *LocationService {
	return &LocationService{
		positionRepo: positionRepo,
		vehicleRepo:  vehicleRepo,
		routeRepo:    routeRepo,
		notifier:     notifier,
		log:          log,
	}
}

type RecordLocationInput struct {
	VehicleID  string
	Latitude   *float64
	Longitude  *float64
	Speed      float64
	Heading    float64
	RecordedAt *time.Time
}

type RecordLocationResult struct {
	Position       *model.Position `json:"position"`
	VehicleCreated bool            `json:"vehicle_created"`
}

// Record appends one position sample. Unknown vehicle ids are
// auto-registered against the default route so simulator and device traffic
// is never dropped.
func (s *LocationService) Record(ctx context.Context, input RecordLocationInput) (*RecordLocationResult, error) {
	vehicleID := strings.TrimSpace(input.VehicleID)
	if vehicleID == "" {
		return nil, fmt.Errorf("%w: vehicle_id is required", ErrValidation)
	}
	if input.Latitude == nil || input.Longitude == nil {
		return nil, fmt.Errorf("%w: latitude and longitude are required", ErrValidation)
	}
	if !geo.IsValidLatLon(*input.Latitude, *input.Longitude) {
		return nil, fmt.Errorf("%w: latitude/longitude out of range", ErrValidation)
	}

	vehicle, err := s.vehicleRepo.GetByVehicleID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}

	created := false
	if vehicle == nil {
		route, err := s.routeRepo.GetOrCreateDefault(ctx)
		if err != nil {
			return nil, err
		}
		vehicle = &model.Vehicle{
			VehicleID:    vehicleID,
			Registration: utils.NormalizeRegistration(vehicleID),
			RouteID:      route.ID,
			VehicleType:  model.VehicleTypeBus,
			Capacity:     50,
			IsActive:     true,
		}
		if err := s.vehicleRepo.Create(ctx, vehicle); err != nil {
			// A concurrent ingest for the same id may have registered it
			// first; the unique index on vehicle_id decides the winner.
			if !isUniqueViolation(err) {
				return nil, err
			}
			vehicle, err = s.vehicleRepo.GetByVehicleID(ctx, vehicleID)
			if err != nil {
				return nil, err
			}
			if vehicle == nil {
				return nil, fmt.Errorf("vehicle %s vanished after duplicate insert", vehicleID)
			}
		} else {
			created = true
		}
	}

	recordedAt := time.Now().UTC()
	if input.RecordedAt != nil {
		recordedAt = input.RecordedAt.UTC()
	}

	position := &model.Position{
		VehicleID:  vehicle.ID,
		Latitude:   *input.Latitude,
		Longitude:  *input.Longitude,
		Speed:      input.Speed,
		Heading:    input.Heading,
		RecordedAt: recordedAt,
	}
	if err := s.positionRepo.Create(ctx, position); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		vehicleCopy := *vehicle
		positionCopy := *position
		go func() {
			notifyCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := s.notifier.NotifyPosition(notifyCtx, vehicleCopy, positionCopy); err != nil {
				s.log.Warn().Err(err).
					Str("vehicle_id", vehicleCopy.VehicleID).
					Msg("failed to mirror position")
			}
		}()
	}

	return &RecordLocationResult{Position: position, VehicleCreated: created}, nil
}

type VehicleLocation struct {
	VehicleID    string    `json:"vehicle_id"`
	Registration string    `json:"registration"`
	RouteID      *string   `json:"route_id"`
	RouteName    *string   `json:"route_name"`
	DriverName   string    `json:"driver_name"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	Speed        float64   `json:"speed"`
	Heading      float64   `json:"heading"`
	RecordedAt   time.Time `json:"last_updated"`
}

// FleetSnapshot returns the latest position of every active vehicle,
// vehicles with no recorded position omitted.
func (s *LocationService) FleetSnapshot(ctx context.Context) ([]VehicleLocation, error) {
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
	routeIDs := make([]uuid.UUID, 0, len(vehicles))
	for _, v := range vehicles {
		vehiclesByID[v.ID] = v
		routeIDs = append(routeIDs, v.RouteID)
	}
	routesByID, err := s.routesByID(ctx, routeIDs)
	if err != nil {
		return nil, err
	}

	snapshot := make([]VehicleLocation, 0, len(positions))
	for _, p := range positions {
		vehicle, ok := vehiclesByID[p.VehicleID]
		if !ok {
			continue
		}
		entry := VehicleLocation{
			VehicleID:    vehicle.VehicleID,
			Registration: vehicle.Registration,
			DriverName:   vehicle.DriverName,
			Latitude:     p.Latitude,
			Longitude:    p.Longitude,
			Speed:        p.Speed,
			Heading:      p.Heading,
			RecordedAt:   p.RecordedAt,
		}
		if route, ok := routesByID[vehicle.RouteID]; ok {
			entry.RouteID = &route.RouteID
			entry.RouteName = &route.Name
		}
		snapshot = append(snapshot, entry)
	}
	return snapshot, nil
}

// PurgeOlderThan hard-deletes the owner's position rows recorded before
// cutoff and returns the count removed.
func (s *LocationService) PurgeOlderThan(ctx context.Context, principal model.Principal, cutoff time.Time) (int64, error) {
	if cutoff.IsZero() {
		return 0, fmt.Errorf("%w: cutoff is required", ErrValidation)
	}
	return s.positionRepo.DeleteOlderThanForOwner(ctx, principal.OwnerID(), cutoff)
}

func (s *LocationService) routesByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.Route, error) {
	routes, err := s.routeRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]model.Route, len(routes))
	for _, r := range routes {
		byID[r.ID] = r
	}
	return byID, nil
}
