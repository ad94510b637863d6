package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WeekdaySet is a set of weekday indices, 0=Monday .. 6=Sunday, stored as JSONB.
type WeekdaySet []int

func (s WeekdaySet) Value() (driver.Value, error) {
	if s == nil {
		s = WeekdaySet{}
	}
	return json.Marshal(s)
}

func (s *WeekdaySet) Scan(value interface{}) error {
	if value == nil {
		*s = WeekdaySet{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("unsupported weekday set type %T", value)
	}
}

func (s WeekdaySet) Contains(day int) bool {
	for _, d := range s {
		if d == day {
			return true
		}
	}
	return false
}

// Intersects reports whether the two sets share at least one weekday.
func (s WeekdaySet) Intersects(other WeekdaySet) bool {
	for _, d := range s {
		if other.Contains(d) {
			return true
		}
	}
	return false
}

// Schedule is a recurring weekly assignment of a vehicle to a route and
// optionally a driver, valid within a date range. Start/end times are clock
// strings ("15:04"); a window with start after end wraps past midnight.
type Schedule struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	OwnerID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"owner_id"`
	ScheduleID    string     `gorm:"type:varchar(50);not null" json:"schedule_id"`
	Name          string     `gorm:"type:varchar(100);not null" json:"name"`
	VehicleID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"vehicle_id"`
	RouteID       uuid.UUID  `gorm:"type:uuid;not null" json:"route_id"`
	DriverID      *uuid.UUID `gorm:"type:uuid;index" json:"driver_id"`
	StartTime     string     `gorm:"type:varchar(8);not null" json:"start_time"`
	EndTime       string     `gorm:"type:varchar(8);not null" json:"end_time"`
	DaysOfWeek    WeekdaySet `gorm:"type:jsonb;not null" json:"days_of_week"`
	EffectiveFrom time.Time  `gorm:"type:date;not null" json:"effective_from"`
	EffectiveTo   *time.Time `gorm:"type:date" json:"effective_to"`
	Priority      int        `gorm:"not null;default:1" json:"priority"`
	IsActive      bool       `gorm:"not null;default:true" json:"is_active"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Schedule) TableName() string {
	return "schedules"
}

func (s *Schedule) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
