package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Position is one immutable GPS sample. Rows are append-only; the latest
// sample per vehicle (by recorded_at, then arrival order) is its current
// position.
type Position struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	// Seq is assigned by the database sequence and orders samples by
	// arrival when recorded_at ties. Read-only from Go.
	Seq        int64     `gorm:"column:seq;->" json:"-"`
	VehicleID  uuid.UUID `gorm:"type:uuid;not null;index" json:"vehicle_id"`
	Latitude   float64   `gorm:"not null" json:"latitude"`
	Longitude  float64   `gorm:"not null" json:"longitude"`
	Speed      float64   `gorm:"not null;default:0" json:"speed"`
	Heading    float64   `gorm:"not null;default:0" json:"heading"`
	RecordedAt time.Time `gorm:"index;not null" json:"recorded_at"`
}

func (Position) TableName() string {
	return "positions"
}

func (p *Position) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
