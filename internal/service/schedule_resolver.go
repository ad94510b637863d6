package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"tracking-service/internal/model"
)

type AssignmentState string

const (
	AssignmentNoService AssignmentState = "NO_SERVICE"
	AssignmentException AssignmentState = "EXCEPTION"
	AssignmentScheduled AssignmentState = "SCHEDULED"
	AssignmentStatic    AssignmentState = "STATIC"
)

// resolvedAssignment is the raw resolver output. It only carries catalog
// ids; the service hydrates route and driver display fields afterwards.
type resolvedAssignment struct {
	State       AssignmentState
	RouteID     *uuid.UUID
	DriverID    *uuid.UUID
	WindowStart string
	WindowEnd   string
}

// resolveAssignment computes the effective assignment of a vehicle at one
// instant. Pure: always recomputed from the records passed in, never cached.
// Precedence: cancelling exception > other exception > recurring schedule >
// static vehicle assignment. The exceptions slice must already be filtered
// to active records on the date of `at`; when several exist, the most
// recently created one wins.
func resolveAssignment(vehicle model.Vehicle, schedules []model.Schedule, exceptions []model.ScheduleException, at time.Time) resolvedAssignment {
	if len(exceptions) > 0 {
		exc := exceptions[0]
		for _, e := range exceptions[1:] {
			if e.CreatedAt.After(exc.CreatedAt) {
				exc = e
			}
		}
		if exc.ExceptionType.CancelsService() {
			return resolvedAssignment{State: AssignmentNoService}
		}
		return resolveException(vehicle, exc, schedules)
	}

	date := dateOnly(at)
	day := weekdayIndex(at)
	minute := at.Hour()*60 + at.Minute()

	var best *model.Schedule
	for i := range schedules {
		sch := &schedules[i]
		if !sch.IsActive {
			continue
		}
		if date.Before(dateOnly(sch.EffectiveFrom)) {
			continue
		}
		if sch.EffectiveTo != nil && date.After(dateOnly(*sch.EffectiveTo)) {
			continue
		}
		if !sch.DaysOfWeek.Contains(day) {
			continue
		}
		if !clockWindowContains(sch.StartTime, sch.EndTime, minute) {
			continue
		}
		if best == nil || betterSchedule(sch, best) {
			best = sch
		}
	}
	if best != nil {
		routeID := best.RouteID
		return resolvedAssignment{
			State:       AssignmentScheduled,
			RouteID:     &routeID,
			DriverID:    best.DriverID,
			WindowStart: best.StartTime,
			WindowEnd:   best.EndTime,
		}
	}

	routeID := vehicle.RouteID
	return resolvedAssignment{State: AssignmentStatic, RouteID: &routeID}
}

// resolveException builds the EXCEPTION result. Any field the exception does
// not set falls back to the linked schedule, then to the vehicle's static
// route.
func resolveException(vehicle model.Vehicle, exc model.ScheduleException, schedules []model.Schedule) resolvedAssignment {
	res := resolvedAssignment{State: AssignmentException}

	var linked *model.Schedule
	if exc.ScheduleID != nil {
		for i := range schedules {
			if schedules[i].ID == *exc.ScheduleID {
				linked = &schedules[i]
				break
			}
		}
	}

	switch {
	case exc.OverrideRouteID != nil:
		res.RouteID = exc.OverrideRouteID
	case exc.ChangeRouteID != nil:
		res.RouteID = exc.ChangeRouteID
	case linked != nil:
		routeID := linked.RouteID
		res.RouteID = &routeID
	default:
		routeID := vehicle.RouteID
		res.RouteID = &routeID
	}

	switch {
	case exc.OverrideDriverID != nil:
		res.DriverID = exc.OverrideDriverID
	case exc.ChangeDriverID != nil:
		res.DriverID = exc.ChangeDriverID
	case linked != nil:
		res.DriverID = linked.DriverID
	}

	if exc.OverrideStartTime != nil {
		res.WindowStart = *exc.OverrideStartTime
	} else if linked != nil {
		res.WindowStart = linked.StartTime
	}
	if exc.OverrideEndTime != nil {
		res.WindowEnd = *exc.OverrideEndTime
	} else if linked != nil {
		res.WindowEnd = linked.EndTime
	}

	return res
}

// betterSchedule orders matching schedules by priority descending, then
// earlier start time.
func betterSchedule(a, b *model.Schedule) bool {
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	am, aErr := parseClock(a.StartTime)
	bm, bErr := parseClock(b.StartTime)
	if aErr != nil || bErr != nil {
		return false
	}
	return am < bm
}

// clockWindowContains reports whether minute-of-day falls in [start, end],
// both bounds inclusive. A window whose start is after its end wraps past
// midnight.
func clockWindowContains(start, end string, minute int) bool {
	s, err := parseClock(start)
	if err != nil {
		return false
	}
	e, err := parseClock(end)
	if err != nil {
		return false
	}
	if s <= e {
		return minute >= s && minute <= e
	}
	return minute >= s || minute <= e
}

// parseClock converts "15:04" (or "15:04:05") to minutes since midnight.
func parseClock(value string) (int, error) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Hour()*60 + t.Minute(), nil
		}
	}
	return 0, fmt.Errorf("invalid clock value %q", value)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// weekdayIndex maps time.Weekday to the Monday=0..Sunday=6 convention used
// by days_of_week.
func weekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
