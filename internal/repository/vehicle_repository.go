package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tracking-service/internal/model"
)

type VehicleRepository struct {
	db *gorm.DB
}

func NewVehicleRepository(db *gorm.DB) *VehicleRepository {
	return &VehicleRepository{db: db}
}

func (r *VehicleRepository) Create(ctx context.Context, vehicle *model.Vehicle) error {
	return r.db.WithContext(ctx).Create(vehicle).Error
}

func (r *VehicleRepository) Update(ctx context.Context, vehicle *model.Vehicle) error {
	return r.db.WithContext(ctx).Save(vehicle).Error
}

func (r *VehicleRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Vehicle, error) {
	var vehicle model.Vehicle
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&vehicle).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &vehicle, nil
}

// GetByVehicleID looks a vehicle up by its external id regardless of owner.
// Used by the anonymous location ingest path.
func (r *VehicleRepository) GetByVehicleID(ctx context.Context, vehicleID string) (*model.Vehicle, error) {
	if vehicleID == "" {
		return nil, nil
	}
	var vehicle model.Vehicle
	err := r.db.WithContext(ctx).
		Where("vehicle_id = ?", vehicleID).
		First(&vehicle).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &vehicle, nil
}

func (r *VehicleRepository) GetByOwnerAndVehicleID(ctx context.Context, ownerID uuid.UUID, vehicleID string) (*model.Vehicle, error) {
	var vehicle model.Vehicle
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND vehicle_id = ?", ownerID, vehicleID).
		First(&vehicle).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &vehicle, nil
}

func (r *VehicleRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Vehicle, error) {
	var vehicles []model.Vehicle
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("vehicle_id ASC").
		Find(&vehicles).Error
	return vehicles, err
}

func (r *VehicleRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Vehicle, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var vehicles []model.Vehicle
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&vehicles).Error
	return vehicles, err
}

// Search matches active vehicles by external id, registration or route name
// substring; routeID additionally narrows to one route's external id.
func (r *VehicleRepository) Search(ctx context.Context, query, routeID string) ([]model.Vehicle, error) {
	q := r.db.WithContext(ctx).
		Table("vehicles v").
		Select("v.*").
		Joins("JOIN routes rt ON rt.id = v.route_id").
		Where("v.is_active")
	if query != "" {
		like := "%" + query + "%"
		q = q.Where("v.vehicle_id ILIKE ? OR v.registration ILIKE ? OR rt.name ILIKE ? OR rt.route_id ILIKE ?", like, like, like, like)
	}
	if routeID != "" {
		q = q.Where("rt.route_id = ?", routeID)
	}
	var vehicles []model.Vehicle
	err := q.Order("v.vehicle_id ASC").Scan(&vehicles).Error
	return vehicles, err
}
