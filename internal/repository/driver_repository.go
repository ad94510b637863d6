package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tracking-service/internal/model"
)

type DriverRepository struct {
	db *gorm.DB
}

func NewDriverRepository(db *gorm.DB) *DriverRepository {
	return &DriverRepository{db: db}
}

func (r *DriverRepository) Create(ctx context.Context, driver *model.Driver) error {
	return r.db.WithContext(ctx).Create(driver).Error
}

func (r *DriverRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Driver, error) {
	var driver model.Driver
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&driver).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &driver, nil
}

func (r *DriverRepository) GetByOwnerAndDriverID(ctx context.Context, ownerID uuid.UUID, driverID string) (*model.Driver, error) {
	var driver model.Driver
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND driver_id = ?", ownerID, driverID).
		First(&driver).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &driver, nil
}

func (r *DriverRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Driver, error) {
	var drivers []model.Driver
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("driver_id ASC").
		Find(&drivers).Error
	return drivers, err
}
