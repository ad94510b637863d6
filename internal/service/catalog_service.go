package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"tracking-service/internal/model"
	"tracking-service/internal/repository"
	"tracking-service/internal/utils"
)

// CatalogService covers the owner-scoped route/driver/vehicle administration
// plus the public route listing and vehicle search.
type CatalogService struct {
	routeRepo    *repository.RouteRepository
	driverRepo   *repository.DriverRepository
	vehicleRepo  *repository.VehicleRepository
	positionRepo *repository.PositionRepository
}

func NewCatalogService(
	routeRepo *repository.RouteRepository,
	driverRepo *repository.DriverRepository,
	vehicleRepo *repository.VehicleRepository,
	positionRepo *repository.PositionRepository,
) *CatalogService {
	return &CatalogService{
		routeRepo:    routeRepo,
		driverRepo:   driverRepo,
		vehicleRepo:  vehicleRepo,
		positionRepo: positionRepo,
	}
}

type CreateRouteInput struct {
	RouteID       string
	Name          string
	StartLocation string
	EndLocation   string
	Description   string
}

func (s *CatalogService) CreateRoute(ctx context.Context, principal model.Principal, input CreateRouteInput) (*model.Route, error) {
	if input.RouteID == "" || input.Name == "" {
		return nil, fmt.Errorf("%w: route_id and name are required", ErrValidation)
	}
	existing, err := s.routeRepo.GetByOwnerAndRouteID(ctx, principal.OwnerID(), input.RouteID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: route with this id already exists", ErrConflict)
	}
	ownerID := principal.OwnerID()
	route := &model.Route{
		OwnerID:       &ownerID,
		RouteID:       input.RouteID,
		Name:          input.Name,
		StartLocation: input.StartLocation,
		EndLocation:   input.EndLocation,
		Description:   input.Description,
		IsActive:      true,
	}
	if err := s.routeRepo.Create(ctx, route); err != nil {
		return nil, err
	}
	return route, nil
}

func (s *CatalogService) ListRoutes(ctx context.Context, principal model.Principal) ([]model.Route, error) {
	return s.routeRepo.ListByOwner(ctx, principal.OwnerID())
}

type PublicRoute struct {
	RouteID        string    `json:"route_id"`
	Name           string    `json:"name"`
	StartLocation  string    `json:"start_location"`
	EndLocation    string    `json:"end_location"`
	Description    string    `json:"description"`
	ActiveVehicles int64     `json:"active_vehicles"`
	CreatedAt      time.Time `json:"created_at"`
}

// PublicRoutes lists all active routes with their active-vehicle counts.
func (s *CatalogService) PublicRoutes(ctx context.Context) ([]PublicRoute, error) {
	routes, err := s.routeRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	results := make([]PublicRoute, 0, len(routes))
	for _, route := range routes {
		count, err := s.routeRepo.CountActiveVehicles(ctx, route.ID)
		if err != nil {
			return nil, err
		}
		results = append(results, PublicRoute{
			RouteID:        route.RouteID,
			Name:           route.Name,
			StartLocation:  route.StartLocation,
			EndLocation:    route.EndLocation,
			Description:    route.Description,
			ActiveVehicles: count,
			CreatedAt:      route.CreatedAt,
		})
	}
	return results, nil
}

type CreateDriverInput struct {
	DriverID      string
	Name          string
	Mobile        string
	LicenseNumber string
	Email         string
}

func (s *CatalogService) CreateDriver(ctx context.Context, principal model.Principal, input CreateDriverInput) (*model.Driver, error) {
	if input.DriverID == "" || input.Name == "" {
		return nil, fmt.Errorf("%w: driver_id and name are required", ErrValidation)
	}
	existing, err := s.driverRepo.GetByOwnerAndDriverID(ctx, principal.OwnerID(), input.DriverID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: driver with this id already exists", ErrConflict)
	}
	driver := &model.Driver{
		OwnerID:       principal.OwnerID(),
		DriverID:      input.DriverID,
		Name:          input.Name,
		Mobile:        input.Mobile,
		LicenseNumber: input.LicenseNumber,
		Email:         input.Email,
		IsActive:      true,
	}
	if err := s.driverRepo.Create(ctx, driver); err != nil {
		return nil, err
	}
	return driver, nil
}

func (s *CatalogService) ListDrivers(ctx context.Context, principal model.Principal) ([]model.Driver, error) {
	return s.driverRepo.ListByOwner(ctx, principal.OwnerID())
}

type CreateVehicleInput struct {
	VehicleID    string
	Registration string
	RouteID      string
	DriverName   string
	DriverMobile string
	VehicleType  string
	Capacity     int
}

func (s *CatalogService) CreateVehicle(ctx context.Context, principal model.Principal, input CreateVehicleInput) (*model.Vehicle, error) {
	if input.VehicleID == "" || input.Registration == "" || input.RouteID == "" {
		return nil, fmt.Errorf("%w: vehicle_id, registration and route_id are required", ErrValidation)
	}
	// vehicle_id is globally unique (the anonymous ingest path looks it up
	// without an owner), so the duplicate check must span owners too.
	existing, err := s.vehicleRepo.GetByVehicleID(ctx, input.VehicleID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: vehicle with this id already exists", ErrConflict)
	}
	route, err := s.routeRepo.GetByOwnerAndRouteID(ctx, principal.OwnerID(), input.RouteID)
	if err != nil {
		return nil, err
	}
	if route == nil {
		return nil, fmt.Errorf("%w: route", ErrNotFound)
	}

	vehicleType := model.VehicleType(input.VehicleType)
	if vehicleType == "" {
		vehicleType = model.VehicleTypeBus
	}
	capacity := input.Capacity
	if capacity == 0 {
		capacity = 50
	}

	ownerID := principal.OwnerID()
	vehicle := &model.Vehicle{
		OwnerID:      &ownerID,
		VehicleID:    input.VehicleID,
		RouteID:      route.ID,
		DriverName:   input.DriverName,
		DriverMobile: input.DriverMobile,
		Registration: utils.NormalizeRegistration(input.Registration),
		VehicleType:  vehicleType,
		Capacity:     capacity,
		IsActive:     true,
	}
	if err := s.vehicleRepo.Create(ctx, vehicle); err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: vehicle with this id already exists", ErrConflict)
		}
		return nil, err
	}
	return vehicle, nil
}

func (s *CatalogService) ListVehicles(ctx context.Context, principal model.Principal) ([]model.Vehicle, error) {
	return s.vehicleRepo.ListByOwner(ctx, principal.OwnerID())
}

// UpdateVehicleRoute reassigns a vehicle to another of the owner's routes.
func (s *CatalogService) UpdateVehicleRoute(ctx context.Context, principal model.Principal, vehicleID, routeID string) (*model.Vehicle, error) {
	vehicle, err := s.ownedVehicle(ctx, principal, vehicleID)
	if err != nil {
		return nil, err
	}
	route, err := s.routeRepo.GetByOwnerAndRouteID(ctx, principal.OwnerID(), routeID)
	if err != nil {
		return nil, err
	}
	if route == nil {
		return nil, fmt.Errorf("%w: route", ErrNotFound)
	}
	vehicle.RouteID = route.ID
	if err := s.vehicleRepo.Update(ctx, vehicle); err != nil {
		return nil, err
	}
	return vehicle, nil
}

// UpdateVehicleDriver copies a driver's contact details into the vehicle's
// static fallback fields.
func (s *CatalogService) UpdateVehicleDriver(ctx context.Context, principal model.Principal, vehicleID, driverID string) (*model.Vehicle, error) {
	vehicle, err := s.ownedVehicle(ctx, principal, vehicleID)
	if err != nil {
		return nil, err
	}
	driver, err := s.driverRepo.GetByOwnerAndDriverID(ctx, principal.OwnerID(), driverID)
	if err != nil {
		return nil, err
	}
	if driver == nil {
		return nil, fmt.Errorf("%w: driver", ErrNotFound)
	}
	vehicle.DriverName = driver.Name
	vehicle.DriverMobile = driver.Mobile
	if err := s.vehicleRepo.Update(ctx, vehicle); err != nil {
		return nil, err
	}
	return vehicle, nil
}

// ToggleVehicle flips the active flag and returns the updated vehicle.
func (s *CatalogService) ToggleVehicle(ctx context.Context, principal model.Principal, vehicleID string) (*model.Vehicle, error) {
	vehicle, err := s.ownedVehicle(ctx, principal, vehicleID)
	if err != nil {
		return nil, err
	}
	vehicle.IsActive = !vehicle.IsActive
	if err := s.vehicleRepo.Update(ctx, vehicle); err != nil {
		return nil, err
	}
	return vehicle, nil
}

type VehicleSearchResult struct {
	VehicleID       string           `json:"vehicle_id"`
	Registration    string           `json:"registration"`
	RouteID         *string          `json:"route_id"`
	RouteName       *string          `json:"route_name"`
	DriverName      string           `json:"driver_name"`
	Capacity        int              `json:"capacity"`
	VehicleType     string           `json:"vehicle_type"`
	CurrentLocation *VehicleLocation `json:"current_location"`
}

// SearchVehicles matches active vehicles by id/registration/route substring
// and attaches each match's latest position when one exists. Public,
// fleet-wide.
func (s *CatalogService) SearchVehicles(ctx context.Context, query, routeID string) ([]VehicleSearchResult, error) {
	vehicles, err := s.vehicleRepo.Search(ctx, strings.TrimSpace(query), routeID)
	if err != nil {
		return nil, err
	}

	routeIDs := make([]uuid.UUID, 0, len(vehicles))
	for _, v := range vehicles {
		routeIDs = append(routeIDs, v.RouteID)
	}
	routes, err := s.routeRepo.ListByIDs(ctx, routeIDs)
	if err != nil {
		return nil, err
	}
	routesByID := make(map[uuid.UUID]model.Route, len(routes))
	for _, r := range routes {
		routesByID[r.ID] = r
	}

	results := make([]VehicleSearchResult, 0, len(vehicles))
	for _, vehicle := range vehicles {
		entry := VehicleSearchResult{
			VehicleID:    vehicle.VehicleID,
			Registration: vehicle.Registration,
			DriverName:   vehicle.DriverName,
			Capacity:     vehicle.Capacity,
			VehicleType:  string(vehicle.VehicleType),
		}
		if route, ok := routesByID[vehicle.RouteID]; ok {
			entry.RouteID = &route.RouteID
			entry.RouteName = &route.Name
		}
		position, err := s.positionRepo.GetLastByVehicleID(ctx, vehicle.ID)
		if err != nil {
			return nil, err
		}
		if position != nil {
			entry.CurrentLocation = &VehicleLocation{
				VehicleID:    vehicle.VehicleID,
				Registration: vehicle.Registration,
				DriverName:   vehicle.DriverName,
				Latitude:     position.Latitude,
				Longitude:    position.Longitude,
				Speed:        position.Speed,
				Heading:      position.Heading,
				RecordedAt:   position.RecordedAt,
			}
		}
		results = append(results, entry)
	}
	return results, nil
}

func (s *CatalogService) ownedVehicle(ctx context.Context, principal model.Principal, vehicleID string) (*model.Vehicle, error) {
	if vehicleID == "" {
		return nil, fmt.Errorf("%w: vehicle id is required", ErrValidation)
	}
	vehicle, err := s.vehicleRepo.GetByOwnerAndVehicleID(ctx, principal.OwnerID(), vehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle == nil {
		return nil, fmt.Errorf("%w: vehicle", ErrNotFound)
	}
	return vehicle, nil
}
