package service

import (
	"fmt"
	"time"

	"tracking-service/internal/model"
)

// farFutureDate normalizes open-ended schedules for interval math.
var farFutureDate = time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)

// findScheduleConflict checks a candidate against the owner's existing
// active schedules and returns a human-readable reason for the first
// conflict found, or "" if the candidate is clear. A conflict needs all
// three overlaps at once: date range (inclusive), time window (half-open,
// so a boundary touch is fine) and weekday set. The vehicle axis is always
// checked; the driver axis only when the candidate names a driver. A
// candidate with an empty weekday set conflicts with nothing.
func findScheduleConflict(candidate model.Schedule, existing []model.Schedule) string {
	candStart, err := parseClock(candidate.StartTime)
	if err != nil {
		return ""
	}
	candEnd, err := parseClock(candidate.EndTime)
	if err != nil {
		return ""
	}
	candFrom := dateOnly(candidate.EffectiveFrom)
	candTo := farFutureDate
	if candidate.EffectiveTo != nil {
		candTo = dateOnly(*candidate.EffectiveTo)
	}

	for _, other := range existing {
		if other.ID == candidate.ID || !other.IsActive {
			continue
		}

		sameVehicle := other.VehicleID == candidate.VehicleID
		sameDriver := candidate.DriverID != nil && other.DriverID != nil &&
			*candidate.DriverID == *other.DriverID
		if !sameVehicle && !sameDriver {
			continue
		}

		otherFrom := dateOnly(other.EffectiveFrom)
		otherTo := farFutureDate
		if other.EffectiveTo != nil {
			otherTo = dateOnly(*other.EffectiveTo)
		}
		if candFrom.After(otherTo) || otherFrom.After(candTo) {
			continue
		}

		otherStart, err := parseClock(other.StartTime)
		if err != nil {
			continue
		}
		otherEnd, err := parseClock(other.EndTime)
		if err != nil {
			continue
		}
		if candStart >= otherEnd || otherStart >= candEnd {
			continue
		}

		if !candidate.DaysOfWeek.Intersects(other.DaysOfWeek) {
			continue
		}

		axis := "vehicle"
		if !sameVehicle {
			axis = "driver"
		}
		return fmt.Sprintf("%s already committed by schedule %q (%s-%s)",
			axis, other.Name, other.StartTime, other.EndTime)
	}
	return ""
}
