package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tracking-service/internal/model"
)

type ExceptionRepository struct {
	db *gorm.DB
}

func NewExceptionRepository(db *gorm.DB) *ExceptionRepository {
	return &ExceptionRepository{db: db}
}

func (r *ExceptionRepository) Create(ctx context.Context, exception *model.ScheduleException) error {
	return r.db.WithContext(ctx).Create(exception).Error
}

func (r *ExceptionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ScheduleException, error) {
	var exception model.ScheduleException
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&exception).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &exception, nil
}

func (r *ExceptionRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.ScheduleException, error) {
	var exceptions []model.ScheduleException
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("exception_date ASC").
		Find(&exceptions).Error
	return exceptions, err
}

// ListActiveByVehicleAndDate returns the vehicle's active exceptions for one
// calendar date, most recently created first.
func (r *ExceptionRepository) ListActiveByVehicleAndDate(ctx context.Context, vehicleID uuid.UUID, date time.Time) ([]model.ScheduleException, error) {
	var exceptions []model.ScheduleException
	err := r.db.WithContext(ctx).
		Where("vehicle_id = ? AND exception_date = ? AND is_active", vehicleID, date.Format("2006-01-02")).
		Order("created_at DESC, id DESC").
		Find(&exceptions).Error
	return exceptions, err
}

func (r *ExceptionRepository) Update(ctx context.Context, exception *model.ScheduleException) error {
	return r.db.WithContext(ctx).Save(exception).Error
}
