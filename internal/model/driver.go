package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Driver struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	OwnerID       uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`
	DriverID      string    `gorm:"type:varchar(50);not null" json:"driver_id"`
	Name          string    `gorm:"type:varchar(100);not null" json:"name"`
	Mobile        string    `gorm:"type:varchar(15)" json:"mobile"`
	LicenseNumber string    `gorm:"type:varchar(50)" json:"license_number"`
	Email         string    `gorm:"type:varchar(254)" json:"email"`
	IsActive      bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Driver) TableName() string {
	return "drivers"
}

func (d *Driver) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
