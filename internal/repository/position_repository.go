package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tracking-service/internal/model"
)

type PositionRepository struct {
	db *gorm.DB
}

func NewPositionRepository(db *gorm.DB) *PositionRepository {
	return &PositionRepository{db: db}
}

func (r *PositionRepository) Create(ctx context.Context, position *model.Position) error {
	return r.db.WithContext(ctx).Create(position).Error
}

// latestPerVehicleSQL picks the single most recent sample per active
// vehicle. Ties on recorded_at go to the later arrival (higher seq).
const latestPerVehicleSQL = `
	SELECT DISTINCT ON (p.vehicle_id)
		p.id, p.seq, p.vehicle_id, p.latitude, p.longitude, p.speed, p.heading, p.recorded_at
	FROM positions p
	JOIN vehicles v ON v.id = p.vehicle_id
	WHERE v.is_active
	ORDER BY p.vehicle_id, p.recorded_at DESC, p.seq DESC
`

// purgePositionsSQL removes the owner's samples recorded strictly before
// the cutoff; a sample recorded exactly at the cutoff stays.
const purgePositionsSQL = `
	DELETE FROM positions p
	USING vehicles v
	WHERE p.vehicle_id = v.id
	  AND v.owner_id = ?
	  AND p.recorded_at < ?
`

func (r *PositionRepository) GetLastByVehicleID(ctx context.Context, vehicleID uuid.UUID) (*model.Position, error) {
	var pos model.Position
	err := r.db.WithContext(ctx).
		Where("vehicle_id = ?", vehicleID).
		Order("recorded_at DESC, seq DESC").
		First(&pos).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &pos, nil
}

// LatestForActiveVehicles returns the single most recent position per active
// vehicle, pushed down to the database so only one row per vehicle comes
// back.
func (r *PositionRepository) LatestForActiveVehicles(ctx context.Context) ([]model.Position, error) {
	var positions []model.Position
	err := r.db.WithContext(ctx).Raw(latestPerVehicleSQL).Scan(&positions).Error
	return positions, err
}

// DeleteOlderThanForOwner removes the owner's position rows recorded before
// cutoff and returns the number deleted. Hard delete, no soft-delete.
func (r *PositionRepository) DeleteOlderThanForOwner(ctx context.Context, ownerID uuid.UUID, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Exec(purgePositionsSQL, ownerID, cutoff)
	return result.RowsAffected, result.Error
}
