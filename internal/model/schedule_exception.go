package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ExceptionType string

const (
	ExceptionTypeOverride     ExceptionType = "override"
	ExceptionTypeCancel       ExceptionType = "cancel"
	ExceptionTypeDriverChange ExceptionType = "driver_change"
	ExceptionTypeRouteChange  ExceptionType = "route_change"
	ExceptionTypeMaintenance  ExceptionType = "maintenance"
	ExceptionTypeHoliday      ExceptionType = "holiday"
)

// CancelsService reports whether the exception type means no service at all
// on its date.
func (t ExceptionType) CancelsService() bool {
	return t == ExceptionTypeCancel || t == ExceptionTypeMaintenance || t == ExceptionTypeHoliday
}

func (t ExceptionType) Valid() bool {
	switch t {
	case ExceptionTypeOverride, ExceptionTypeCancel, ExceptionTypeDriverChange,
		ExceptionTypeRouteChange, ExceptionTypeMaintenance, ExceptionTypeHoliday:
		return true
	}
	return false
}

// ScheduleException is a one-day deviation from a vehicle's regular
// schedule. Override fields replace the whole window, change fields swap a
// single aspect; unset fields fall back to the linked schedule, then to the
// vehicle's static assignment.
type ScheduleException struct {
	ID                uuid.UUID     `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	OwnerID           uuid.UUID     `gorm:"type:uuid;not null;index" json:"owner_id"`
	ScheduleID        *uuid.UUID    `gorm:"type:uuid" json:"schedule_id"`
	VehicleID         uuid.UUID     `gorm:"type:uuid;not null;index" json:"vehicle_id"`
	ExceptionDate     time.Time     `gorm:"type:date;not null;index" json:"exception_date"`
	ExceptionType     ExceptionType `gorm:"type:varchar(20);not null" json:"exception_type"`
	OverrideRouteID   *uuid.UUID    `gorm:"type:uuid" json:"override_route_id"`
	OverrideDriverID  *uuid.UUID    `gorm:"type:uuid" json:"override_driver_id"`
	OverrideStartTime *string       `gorm:"type:varchar(8)" json:"override_start_time"`
	OverrideEndTime   *string       `gorm:"type:varchar(8)" json:"override_end_time"`
	ChangeRouteID     *uuid.UUID    `gorm:"type:uuid" json:"change_route_id"`
	ChangeDriverID    *uuid.UUID    `gorm:"type:uuid" json:"change_driver_id"`
	Reason            string        `gorm:"type:text" json:"reason"`
	IsActive          bool          `gorm:"not null;default:true" json:"is_active"`
	CreatedAt         time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ScheduleException) TableName() string {
	return "schedule_exceptions"
}

func (e *ScheduleException) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
