package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"tracking-service/internal/model"
)

func conflictSchedule(vehicleID uuid.UUID, driverID *uuid.UUID, days []int, start, end, from string, to *string) model.Schedule {
	effectiveFrom, _ := time.Parse("2006-01-02", from)
	sch := model.Schedule{
		ID:            uuid.New(),
		Name:          "Existing Run",
		VehicleID:     vehicleID,
		RouteID:       uuid.New(),
		DriverID:      driverID,
		StartTime:     start,
		EndTime:       end,
		DaysOfWeek:    model.WeekdaySet(days),
		EffectiveFrom: effectiveFrom,
		Priority:      1,
		IsActive:      true,
	}
	if to != nil {
		effectiveTo, _ := time.Parse("2006-01-02", *to)
		sch.EffectiveTo = &effectiveTo
	}
	return sch
}

func strPtr(s string) *string { return &s }

func TestConflictSameVehicleOverlappingWindow(t *testing.T) {
	vehicleID := uuid.New()
	existing := conflictSchedule(vehicleID, nil, []int{0}, "09:00", "12:00", "2024-01-01", strPtr("2024-12-31"))
	candidate := conflictSchedule(vehicleID, nil, []int{0}, "10:00", "11:00", "2024-01-01", strPtr("2024-12-31"))

	reason := findScheduleConflict(candidate, []model.Schedule{existing})
	assert.Contains(t, reason, "vehicle")
	assert.Contains(t, reason, existing.Name)
}

func TestConflictBoundaryTouchIsAllowed(t *testing.T) {
	vehicleID := uuid.New()
	existing := conflictSchedule(vehicleID, nil, []int{0}, "09:00", "12:00", "2024-01-01", strPtr("2024-12-31"))
	candidate := conflictSchedule(vehicleID, nil, []int{0}, "12:00", "13:00", "2024-01-01", strPtr("2024-12-31"))

	assert.Empty(t, findScheduleConflict(candidate, []model.Schedule{existing}))
}

func TestConflictDifferentWeekdaysAllowed(t *testing.T) {
	vehicleID := uuid.New()
	existing := conflictSchedule(vehicleID, nil, []int{0, 1}, "09:00", "12:00", "2024-01-01", nil)
	candidate := conflictSchedule(vehicleID, nil, []int{4, 5}, "09:00", "12:00", "2024-01-01", nil)

	assert.Empty(t, findScheduleConflict(candidate, []model.Schedule{existing}))
}

func TestConflictDisjointDateRangesAllowed(t *testing.T) {
	vehicleID := uuid.New()
	existing := conflictSchedule(vehicleID, nil, []int{0}, "09:00", "12:00", "2024-01-01", strPtr("2024-06-30"))
	candidate := conflictSchedule(vehicleID, nil, []int{0}, "09:00", "12:00", "2024-07-01", strPtr("2024-12-31"))

	assert.Empty(t, findScheduleConflict(candidate, []model.Schedule{existing}))
}

func TestConflictOpenEndedRangeOverlaps(t *testing.T) {
	vehicleID := uuid.New()
	existing := conflictSchedule(vehicleID, nil, []int{0}, "09:00", "12:00", "2024-01-01", nil)
	candidate := conflictSchedule(vehicleID, nil, []int{0}, "10:00", "11:00", "2030-01-01", nil)

	assert.NotEmpty(t, findScheduleConflict(candidate, []model.Schedule{existing}))
}

func TestConflictDriverAxis(t *testing.T) {
	driverID := uuid.New()
	existing := conflictSchedule(uuid.New(), &driverID, []int{2}, "09:00", "12:00", "2024-01-01", nil)
	candidate := conflictSchedule(uuid.New(), &driverID, []int{2}, "11:00", "15:00", "2024-01-01", nil)

	reason := findScheduleConflict(candidate, []model.Schedule{existing})
	assert.Contains(t, reason, "driver")
}

func TestConflictNoDriverNoDriverAxis(t *testing.T) {
	existing := conflictSchedule(uuid.New(), nil, []int{2}, "09:00", "12:00", "2024-01-01", nil)
	candidate := conflictSchedule(uuid.New(), nil, []int{2}, "09:00", "12:00", "2024-01-01", nil)

	// Different vehicles, no drivers on either side: nothing to collide.
	assert.Empty(t, findScheduleConflict(candidate, []model.Schedule{existing}))
}

func TestConflictEmptyWeekdaySetIsLenient(t *testing.T) {
	vehicleID := uuid.New()
	existing := conflictSchedule(vehicleID, nil, []int{0, 1, 2, 3, 4}, "09:00", "12:00", "2024-01-01", nil)
	candidate := conflictSchedule(vehicleID, nil, nil, "09:00", "12:00", "2024-01-01", nil)

	assert.Empty(t, findScheduleConflict(candidate, []model.Schedule{existing}))
}

func TestConflictSkipsInactiveSchedules(t *testing.T) {
	vehicleID := uuid.New()
	existing := conflictSchedule(vehicleID, nil, []int{0}, "09:00", "12:00", "2024-01-01", nil)
	existing.IsActive = false
	candidate := conflictSchedule(vehicleID, nil, []int{0}, "09:00", "12:00", "2024-01-01", nil)

	assert.Empty(t, findScheduleConflict(candidate, []model.Schedule{existing}))
}

func TestConflictSkipsSelf(t *testing.T) {
	vehicleID := uuid.New()
	existing := conflictSchedule(vehicleID, nil, []int{0}, "09:00", "12:00", "2024-01-01", nil)

	assert.Empty(t, findScheduleConflict(existing, []model.Schedule{existing}))
}
