package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Route struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	OwnerID       *uuid.UUID `gorm:"type:uuid;index" json:"owner_id"`
	RouteID       string     `gorm:"type:varchar(50);not null" json:"route_id"`
	Name          string     `gorm:"type:varchar(100);not null" json:"name"`
	StartLocation string     `gorm:"type:varchar(200)" json:"start_location"`
	EndLocation   string     `gorm:"type:varchar(200)" json:"end_location"`
	Description   string     `gorm:"type:text" json:"description"`
	IsActive      bool       `gorm:"not null;default:true" json:"is_active"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Route) TableName() string {
	return "routes"
}

func (r *Route) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
