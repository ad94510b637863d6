package repository

import (
	"context"
	"encoding/binary"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tracking-service/internal/model"
)

type ScheduleRepository struct {
	db *gorm.DB
}

func NewScheduleRepository(db *gorm.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

func (r *ScheduleRepository) Create(ctx context.Context, schedule *model.Schedule) error {
	return r.db.WithContext(ctx).Create(schedule).Error
}

func (r *ScheduleRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Schedule, error) {
	var schedule model.Schedule
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&schedule).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &schedule, nil
}

func (r *ScheduleRepository) GetByOwnerAndScheduleID(ctx context.Context, ownerID uuid.UUID, scheduleID string) (*model.Schedule, error) {
	var schedule model.Schedule
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND schedule_id = ?", ownerID, scheduleID).
		First(&schedule).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &schedule, nil
}

func (r *ScheduleRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Schedule, error) {
	var schedules []model.Schedule
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("priority DESC, start_time ASC").
		Find(&schedules).Error
	return schedules, err
}

func (r *ScheduleRepository) ListByVehicle(ctx context.Context, vehicleID uuid.UUID) ([]model.Schedule, error) {
	var schedules []model.Schedule
	err := r.db.WithContext(ctx).
		Where("vehicle_id = ?", vehicleID).
		Order("priority DESC, start_time ASC").
		Find(&schedules).Error
	return schedules, err
}

// LockOwner serializes schedule writes for one owner with a
// transaction-scoped advisory lock. Row locks cannot do this: a concurrent
// create's newly inserted row is a phantom the other session never sees,
// and an owner with zero schedules has no rows to lock at all. The lock
// releases on commit or rollback. Must be called inside a transaction.
func (r *ScheduleRepository) LockOwner(ctx context.Context, ownerID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Exec("SELECT pg_advisory_xact_lock(?)", ownerAdvisoryLockKey(ownerID)).Error
}

func (r *ScheduleRepository) ListActiveByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Schedule, error) {
	var schedules []model.Schedule
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND is_active", ownerID).
		Find(&schedules).Error
	return schedules, err
}

// ownerAdvisoryLockKey derives a stable int64 lock key from the owner id.
// The advisory lock space is shared database-wide, so the key must be the
// same for every session locking the same owner.
func ownerAdvisoryLockKey(ownerID uuid.UUID) int64 {
	return int64(binary.BigEndian.Uint64(ownerID[:8]))
}
