package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tracking-service/internal/model"
)

// DefaultRouteID is the external id of the route assigned to vehicles that
// are auto-registered from simulator or device traffic.
const DefaultRouteID = "ROUTE-DEFAULT"

type RouteRepository struct {
	db *gorm.DB
}

func NewRouteRepository(db *gorm.DB) *RouteRepository {
	return &RouteRepository{db: db}
}

func (r *RouteRepository) Create(ctx context.Context, route *model.Route) error {
	return r.db.WithContext(ctx).Create(route).Error
}

func (r *RouteRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Route, error) {
	var route model.Route
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&route).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &route, nil
}

func (r *RouteRepository) GetByOwnerAndRouteID(ctx context.Context, ownerID uuid.UUID, routeID string) (*model.Route, error) {
	var route model.Route
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND route_id = ?", ownerID, routeID).
		First(&route).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &route, nil
}

func (r *RouteRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Route, error) {
	var routes []model.Route
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("route_id ASC").
		Find(&routes).Error
	return routes, err
}

func (r *RouteRepository) ListActive(ctx context.Context) ([]model.Route, error) {
	var routes []model.Route
	err := r.db.WithContext(ctx).
		Where("is_active").
		Order("route_id ASC").
		Find(&routes).Error
	return routes, err
}

func (r *RouteRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Route, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var routes []model.Route
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&routes).Error
	return routes, err
}

// GetOrCreateDefault returns the ownerless fallback route, creating it on
// first use.
func (r *RouteRepository) GetOrCreateDefault(ctx context.Context) (*model.Route, error) {
	var route model.Route
	err := r.db.WithContext(ctx).
		Where("route_id = ? AND owner_id IS NULL", DefaultRouteID).
		First(&route).Error
	if err == nil {
		return &route, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}
	route = model.Route{
		RouteID:       DefaultRouteID,
		Name:          "Default Simulation Route",
		StartLocation: "Start",
		EndLocation:   "End",
		Description:   "Autocreated route for simulator data",
		IsActive:      true,
	}
	if err := r.db.WithContext(ctx).Create(&route).Error; err != nil {
		return nil, err
	}
	return &route, nil
}

// CountActiveVehicles returns the number of active vehicles assigned to the
// route.
func (r *RouteRepository) CountActiveVehicles(ctx context.Context, routeID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Vehicle{}).
		Where("route_id = ? AND is_active", routeID).
		Count(&count).Error
	return count, err
}
