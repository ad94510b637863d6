package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tracking-service/internal/model"
)

// 2024-01-01 is a Monday.
var monday9am = time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)

func testVehicle() model.Vehicle {
	return model.Vehicle{
		ID:           uuid.New(),
		VehicleID:    "BUS-001",
		RouteID:      uuid.New(),
		DriverName:   "Static Driver",
		DriverMobile: "9876543210",
		IsActive:     true,
	}
}

func weeklySchedule(vehicle model.Vehicle, days []int, start, end string, priority int) model.Schedule {
	return model.Schedule{
		ID:            uuid.New(),
		OwnerID:       uuid.New(),
		Name:          "Weekday Run",
		VehicleID:     vehicle.ID,
		RouteID:       uuid.New(),
		StartTime:     start,
		EndTime:       end,
		DaysOfWeek:    model.WeekdaySet(days),
		EffectiveFrom: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Priority:      priority,
		IsActive:      true,
	}
}

func cancelException(vehicle model.Vehicle, date time.Time) model.ScheduleException {
	return model.ScheduleException{
		ID:            uuid.New(),
		VehicleID:     vehicle.ID,
		ExceptionDate: date,
		ExceptionType: model.ExceptionTypeCancel,
		IsActive:      true,
		CreatedAt:     time.Now(),
	}
}

func TestResolveStaticFallback(t *testing.T) {
	vehicle := testVehicle()
	resolved := resolveAssignment(vehicle, nil, nil, monday9am)

	assert.Equal(t, AssignmentStatic, resolved.State)
	require.NotNil(t, resolved.RouteID)
	assert.Equal(t, vehicle.RouteID, *resolved.RouteID)
	assert.Nil(t, resolved.DriverID)
}

func TestResolveScheduledWindow(t *testing.T) {
	vehicle := testVehicle()
	sch := weeklySchedule(vehicle, []int{0}, "09:00", "12:00", 1)

	resolved := resolveAssignment(vehicle, []model.Schedule{sch}, nil, monday9am)
	assert.Equal(t, AssignmentScheduled, resolved.State)
	require.NotNil(t, resolved.RouteID)
	assert.Equal(t, sch.RouteID, *resolved.RouteID)
	assert.Equal(t, "09:00", resolved.WindowStart)
	assert.Equal(t, "12:00", resolved.WindowEnd)
}

func TestResolveOutsideWindowFallsBack(t *testing.T) {
	vehicle := testVehicle()
	sch := weeklySchedule(vehicle, []int{0}, "13:00", "17:00", 1)

	resolved := resolveAssignment(vehicle, []model.Schedule{sch}, nil, monday9am)
	assert.Equal(t, AssignmentStatic, resolved.State)
}

func TestResolveWrongWeekdayFallsBack(t *testing.T) {
	vehicle := testVehicle()
	sch := weeklySchedule(vehicle, []int{5, 6}, "09:00", "12:00", 1)

	resolved := resolveAssignment(vehicle, []model.Schedule{sch}, nil, monday9am)
	assert.Equal(t, AssignmentStatic, resolved.State)
}

func TestResolveRespectsEffectiveRange(t *testing.T) {
	vehicle := testVehicle()
	expired := weeklySchedule(vehicle, []int{0}, "09:00", "12:00", 1)
	end := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)
	expired.EffectiveFrom = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	expired.EffectiveTo = &end

	resolved := resolveAssignment(vehicle, []model.Schedule{expired}, nil, monday9am)
	assert.Equal(t, AssignmentStatic, resolved.State)
}

func TestResolveOvernightWindow(t *testing.T) {
	vehicle := testVehicle()
	sch := weeklySchedule(vehicle, []int{0}, "22:00", "06:00", 1)

	lateNight := time.Date(2024, 1, 1, 23, 15, 0, 0, time.UTC)
	resolved := resolveAssignment(vehicle, []model.Schedule{sch}, nil, lateNight)
	assert.Equal(t, AssignmentScheduled, resolved.State)

	earlyMorning := time.Date(2024, 1, 1, 5, 0, 0, 0, time.UTC)
	resolved = resolveAssignment(vehicle, []model.Schedule{sch}, nil, earlyMorning)
	assert.Equal(t, AssignmentScheduled, resolved.State)

	midday := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	resolved = resolveAssignment(vehicle, []model.Schedule{sch}, nil, midday)
	assert.Equal(t, AssignmentStatic, resolved.State)
}

func TestResolvePriorityBreaksTies(t *testing.T) {
	vehicle := testVehicle()
	low := weeklySchedule(vehicle, []int{0}, "08:00", "18:00", 1)
	high := weeklySchedule(vehicle, []int{0}, "09:00", "12:00", 5)

	resolved := resolveAssignment(vehicle, []model.Schedule{low, high}, nil, monday9am)
	assert.Equal(t, AssignmentScheduled, resolved.State)
	require.NotNil(t, resolved.RouteID)
	assert.Equal(t, high.RouteID, *resolved.RouteID)
}

func TestResolveEqualPriorityPrefersEarlierStart(t *testing.T) {
	vehicle := testVehicle()
	later := weeklySchedule(vehicle, []int{0}, "09:00", "12:00", 2)
	earlier := weeklySchedule(vehicle, []int{0}, "08:00", "12:00", 2)

	resolved := resolveAssignment(vehicle, []model.Schedule{later, earlier}, nil, monday9am)
	require.NotNil(t, resolved.RouteID)
	assert.Equal(t, earlier.RouteID, *resolved.RouteID)
}

func TestResolveCancelExceptionWinsOverSchedule(t *testing.T) {
	vehicle := testVehicle()
	sch := weeklySchedule(vehicle, []int{0}, "09:00", "12:00", 1)
	exc := cancelException(vehicle, dateOnly(monday9am))

	resolved := resolveAssignment(vehicle, []model.Schedule{sch}, []model.ScheduleException{exc}, monday9am)
	assert.Equal(t, AssignmentNoService, resolved.State)
	assert.Nil(t, resolved.RouteID)
}

func TestResolveMaintenanceAndHolidayCancel(t *testing.T) {
	vehicle := testVehicle()
	for _, excType := range []model.ExceptionType{model.ExceptionTypeMaintenance, model.ExceptionTypeHoliday} {
		exc := cancelException(vehicle, dateOnly(monday9am))
		exc.ExceptionType = excType
		resolved := resolveAssignment(vehicle, nil, []model.ScheduleException{exc}, monday9am)
		assert.Equal(t, AssignmentNoService, resolved.State, string(excType))
	}
}

func TestResolveOverrideException(t *testing.T) {
	vehicle := testVehicle()
	overrideRoute := uuid.New()
	overrideDriver := uuid.New()
	start, end := "10:00", "14:00"

	exc := model.ScheduleException{
		ID:                uuid.New(),
		VehicleID:         vehicle.ID,
		ExceptionDate:     dateOnly(monday9am),
		ExceptionType:     model.ExceptionTypeOverride,
		OverrideRouteID:   &overrideRoute,
		OverrideDriverID:  &overrideDriver,
		OverrideStartTime: &start,
		OverrideEndTime:   &end,
		IsActive:          true,
	}

	resolved := resolveAssignment(vehicle, nil, []model.ScheduleException{exc}, monday9am)
	assert.Equal(t, AssignmentException, resolved.State)
	require.NotNil(t, resolved.RouteID)
	assert.Equal(t, overrideRoute, *resolved.RouteID)
	require.NotNil(t, resolved.DriverID)
	assert.Equal(t, overrideDriver, *resolved.DriverID)
	assert.Equal(t, "10:00", resolved.WindowStart)
	assert.Equal(t, "14:00", resolved.WindowEnd)
}

func TestResolveDriverChangeFallsBackToLinkedSchedule(t *testing.T) {
	vehicle := testVehicle()
	sch := weeklySchedule(vehicle, []int{0}, "09:00", "12:00", 1)
	newDriver := uuid.New()

	exc := model.ScheduleException{
		ID:             uuid.New(),
		ScheduleID:     &sch.ID,
		VehicleID:      vehicle.ID,
		ExceptionDate:  dateOnly(monday9am),
		ExceptionType:  model.ExceptionTypeDriverChange,
		ChangeDriverID: &newDriver,
		IsActive:       true,
	}

	resolved := resolveAssignment(vehicle, []model.Schedule{sch}, []model.ScheduleException{exc}, monday9am)
	assert.Equal(t, AssignmentException, resolved.State)
	require.NotNil(t, resolved.RouteID)
	assert.Equal(t, sch.RouteID, *resolved.RouteID)
	require.NotNil(t, resolved.DriverID)
	assert.Equal(t, newDriver, *resolved.DriverID)
	assert.Equal(t, sch.StartTime, resolved.WindowStart)
	assert.Equal(t, sch.EndTime, resolved.WindowEnd)
}

func TestResolveUnlinkedExceptionUsesStaticRoute(t *testing.T) {
	vehicle := testVehicle()
	exc := model.ScheduleException{
		ID:            uuid.New(),
		VehicleID:     vehicle.ID,
		ExceptionDate: dateOnly(monday9am),
		ExceptionType: model.ExceptionTypeOverride,
		IsActive:      true,
	}

	resolved := resolveAssignment(vehicle, nil, []model.ScheduleException{exc}, monday9am)
	assert.Equal(t, AssignmentException, resolved.State)
	require.NotNil(t, resolved.RouteID)
	assert.Equal(t, vehicle.RouteID, *resolved.RouteID)
}

func TestResolveLatestCreatedExceptionWins(t *testing.T) {
	vehicle := testVehicle()
	older := cancelException(vehicle, dateOnly(monday9am))
	older.CreatedAt = time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)

	newerRoute := uuid.New()
	newer := model.ScheduleException{
		ID:              uuid.New(),
		VehicleID:       vehicle.ID,
		ExceptionDate:   dateOnly(monday9am),
		ExceptionType:   model.ExceptionTypeRouteChange,
		ChangeRouteID:   &newerRoute,
		IsActive:        true,
		CreatedAt:       time.Date(2023, 12, 15, 0, 0, 0, 0, time.UTC),
	}

	resolved := resolveAssignment(vehicle, nil, []model.ScheduleException{older, newer}, monday9am)
	assert.Equal(t, AssignmentException, resolved.State)
	require.NotNil(t, resolved.RouteID)
	assert.Equal(t, newerRoute, *resolved.RouteID)
}

func TestWeekdayIndexMondayBased(t *testing.T) {
	assert.Equal(t, 0, weekdayIndex(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))  // Monday
	assert.Equal(t, 6, weekdayIndex(time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC)))  // Sunday
	assert.Equal(t, 3, weekdayIndex(time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC)))  // Thursday
}

func TestParseClock(t *testing.T) {
	m, err := parseClock("09:30")
	require.NoError(t, err)
	assert.Equal(t, 570, m)

	m, err = parseClock("23:59:59")
	require.NoError(t, err)
	assert.Equal(t, 23*60+59, m)

	_, err = parseClock("9am")
	assert.Error(t, err)
}
