package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VehicleType string

const (
	VehicleTypeBus   VehicleType = "bus"
	VehicleTypeAuto  VehicleType = "auto"
	VehicleTypeTruck VehicleType = "truck"
	VehicleTypeTrain VehicleType = "train"
	VehicleTypeFerry VehicleType = "ferry"
)

// Vehicle is a tracked transport asset. OwnerID is nil for legacy vehicles
// auto-registered from the location ingest endpoint.
type Vehicle struct {
	ID           uuid.UUID   `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	OwnerID      *uuid.UUID  `gorm:"type:uuid;index" json:"owner_id"`
	VehicleID    string      `gorm:"type:varchar(50);not null;index" json:"vehicle_id"`
	RouteID      uuid.UUID   `gorm:"type:uuid;not null;index" json:"route_id"`
	DriverName   string      `gorm:"type:varchar(100)" json:"driver_name"`
	DriverMobile string      `gorm:"type:varchar(15)" json:"driver_mobile"`
	Registration string      `gorm:"type:varchar(50);not null" json:"registration"`
	VehicleType  VehicleType `gorm:"type:varchar(20);not null;default:bus" json:"vehicle_type"`
	Capacity     int         `gorm:"not null;default:50" json:"capacity"`
	IsActive     bool        `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Vehicle) TableName() string {
	return "vehicles"
}

func (v *Vehicle) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
