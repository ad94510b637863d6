package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tracking-service/internal/model"
	"tracking-service/internal/repository"
)

type ScheduleService struct {
	db            *gorm.DB
	scheduleRepo  *repository.ScheduleRepository
	exceptionRepo *repository.ExceptionRepository
	vehicleRepo   *repository.VehicleRepository
	routeRepo     *repository.RouteRepository
	driverRepo    *repository.DriverRepository
}

func NewScheduleService(
	db *gorm.DB,
	scheduleRepo *repository.ScheduleRepository,
	exceptionRepo *repository.ExceptionRepository,
	vehicleRepo *repository.VehicleRepository,
	routeRepo *repository.RouteRepository,
	driverRepo *repository.DriverRepository,
) *ScheduleService {
	return &ScheduleService{
		db:            db,
		scheduleRepo:  scheduleRepo,
		exceptionRepo: exceptionRepo,
		vehicleRepo:   vehicleRepo,
		routeRepo:     routeRepo,
		driverRepo:    driverRepo,
	}
}

type CreateScheduleInput struct {
	ScheduleID    string
	Name          string
	VehicleID     string
	RouteID       string
	DriverID      *string
	StartTime     string
	EndTime       string
	DaysOfWeek    []int
	EffectiveFrom string
	EffectiveTo   *string
	Priority      int
}

// Create persists a new recurring schedule. The conflict check and the
// insert run in one transaction under a per-owner advisory lock, so two
// concurrent creates for the same owner serialize and the second one sees
// the first one's row before it checks.
func (s *ScheduleService) Create(ctx context.Context, principal model.Principal, input CreateScheduleInput) (*model.Schedule, error) {
	candidate, err := s.buildCandidate(ctx, principal, input)
	if err != nil {
		return nil, err
	}

	existing, err := s.scheduleRepo.GetByOwnerAndScheduleID(ctx, principal.OwnerID(), input.ScheduleID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: schedule with this id already exists", ErrConflict)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := repository.NewScheduleRepository(tx)
		if err := txRepo.LockOwner(ctx, principal.OwnerID()); err != nil {
			return err
		}
		others, err := txRepo.ListActiveByOwner(ctx, principal.OwnerID())
		if err != nil {
			return err
		}
		if reason := findScheduleConflict(*candidate, others); reason != "" {
			return fmt.Errorf("%w: %s", ErrConflict, reason)
		}
		if err := txRepo.Create(ctx, candidate); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: schedule with this id already exists", ErrConflict)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return candidate, nil
}

// CheckConflicts runs the conflict check without persisting anything.
// Advisory only: a clear verdict here does not reserve the slot.
func (s *ScheduleService) CheckConflicts(ctx context.Context, principal model.Principal, input CreateScheduleInput) (string, error) {
	candidate, err := s.buildCandidate(ctx, principal, input)
	if err != nil {
		return "", err
	}
	others, err := s.scheduleRepo.ListByOwner(ctx, principal.OwnerID())
	if err != nil {
		return "", err
	}
	return findScheduleConflict(*candidate, others), nil
}

func (s *ScheduleService) List(ctx context.Context, principal model.Principal) ([]model.Schedule, error) {
	return s.scheduleRepo.ListByOwner(ctx, principal.OwnerID())
}

// buildCandidate validates the input and resolves its catalog references
// within the caller's tenancy.
func (s *ScheduleService) buildCandidate(ctx context.Context, principal model.Principal, input CreateScheduleInput) (*model.Schedule, error) {
	if input.ScheduleID == "" || input.Name == "" {
		return nil, fmt.Errorf("%w: schedule_id and name are required", ErrValidation)
	}
	if _, err := parseClock(input.StartTime); err != nil {
		return nil, fmt.Errorf("%w: invalid start_time", ErrValidation)
	}
	if _, err := parseClock(input.EndTime); err != nil {
		return nil, fmt.Errorf("%w: invalid end_time", ErrValidation)
	}
	for _, day := range input.DaysOfWeek {
		if day < 0 || day > 6 {
			return nil, fmt.Errorf("%w: weekday %d out of range", ErrValidation, day)
		}
	}
	effectiveFrom, err := time.Parse("2006-01-02", input.EffectiveFrom)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid effective_from", ErrValidation)
	}
	var effectiveTo *time.Time
	if input.EffectiveTo != nil && *input.EffectiveTo != "" {
		parsed, err := time.Parse("2006-01-02", *input.EffectiveTo)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid effective_to", ErrValidation)
		}
		if parsed.Before(effectiveFrom) {
			return nil, fmt.Errorf("%w: effective_to before effective_from", ErrValidation)
		}
		effectiveTo = &parsed
	}

	vehicle, err := s.ownedVehicle(ctx, principal, input.VehicleID)
	if err != nil {
		return nil, err
	}

	routeUUID, err := uuid.Parse(input.RouteID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid route id", ErrValidation)
	}
	route, err := s.routeRepo.GetByID(ctx, routeUUID)
	if err != nil {
		return nil, err
	}
	if route == nil || route.OwnerID == nil || *route.OwnerID != principal.OwnerID() {
		return nil, fmt.Errorf("%w: route", ErrNotFound)
	}

	var driverID *uuid.UUID
	if input.DriverID != nil && *input.DriverID != "" {
		parsed, err := uuid.Parse(*input.DriverID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid driver id", ErrValidation)
		}
		driver, err := s.driverRepo.GetByID(ctx, parsed)
		if err != nil {
			return nil, err
		}
		if driver == nil || driver.OwnerID != principal.OwnerID() {
			return nil, fmt.Errorf("%w: driver", ErrNotFound)
		}
		driverID = &driver.ID
	}

	priority := input.Priority
	if priority == 0 {
		priority = 1
	}

	days := input.DaysOfWeek
	if days == nil {
		days = []int{}
	}

	return &model.Schedule{
		OwnerID:       principal.OwnerID(),
		ScheduleID:    input.ScheduleID,
		Name:          input.Name,
		VehicleID:     vehicle.ID,
		RouteID:       route.ID,
		DriverID:      driverID,
		StartTime:     input.StartTime,
		EndTime:       input.EndTime,
		DaysOfWeek:    model.WeekdaySet(days),
		EffectiveFrom: effectiveFrom,
		EffectiveTo:   effectiveTo,
		Priority:      priority,
		IsActive:      true,
	}, nil
}

type AssignmentView struct {
	VehicleID    string          `json:"vehicle_id"`
	State        AssignmentState `json:"state"`
	RouteID      *string         `json:"route_id"`
	RouteName    *string         `json:"route_name"`
	DriverName   string          `json:"driver_name"`
	DriverMobile string          `json:"driver_mobile"`
	WindowStart  string          `json:"window_start,omitempty"`
	WindowEnd    string          `json:"window_end,omitempty"`
}

// ResolveAssignment computes the effective assignment of one vehicle at the
// given instant, layering exceptions over schedules over the static
// assignment.
func (s *ScheduleService) ResolveAssignment(ctx context.Context, principal model.Principal, vehicleID string, at time.Time) (*AssignmentView, error) {
	vehicle, err := s.ownedVehicle(ctx, principal, vehicleID)
	if err != nil {
		return nil, err
	}
	return s.resolveForVehicle(ctx, *vehicle, at)
}

// CurrentAssignments resolves every one of the owner's vehicles at the
// given instant.
func (s *ScheduleService) CurrentAssignments(ctx context.Context, principal model.Principal, at time.Time) ([]AssignmentView, error) {
	vehicles, err := s.vehicleRepo.ListByOwner(ctx, principal.OwnerID())
	if err != nil {
		return nil, err
	}
	views := make([]AssignmentView, 0, len(vehicles))
	for _, vehicle := range vehicles {
		view, err := s.resolveForVehicle(ctx, vehicle, at)
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

func (s *ScheduleService) resolveForVehicle(ctx context.Context, vehicle model.Vehicle, at time.Time) (*AssignmentView, error) {
	exceptions, err := s.exceptionRepo.ListActiveByVehicleAndDate(ctx, vehicle.ID, dateOnly(at))
	if err != nil {
		return nil, err
	}
	schedules, err := s.scheduleRepo.ListByVehicle(ctx, vehicle.ID)
	if err != nil {
		return nil, err
	}

	resolved := resolveAssignment(vehicle, schedules, exceptions, at)

	view := &AssignmentView{
		VehicleID:   vehicle.VehicleID,
		State:       resolved.State,
		WindowStart: resolved.WindowStart,
		WindowEnd:   resolved.WindowEnd,
	}
	if resolved.State == AssignmentNoService {
		return view, nil
	}

	if resolved.RouteID != nil {
		route, err := s.routeRepo.GetByID(ctx, *resolved.RouteID)
		if err != nil {
			return nil, err
		}
		if route != nil {
			view.RouteID = &route.RouteID
			view.RouteName = &route.Name
		}
	}

	if resolved.DriverID != nil {
		driver, err := s.driverRepo.GetByID(ctx, *resolved.DriverID)
		if err != nil {
			return nil, err
		}
		if driver != nil {
			view.DriverName = driver.Name
			view.DriverMobile = driver.Mobile
			return view, nil
		}
	}
	view.DriverName = vehicle.DriverName
	view.DriverMobile = vehicle.DriverMobile
	return view, nil
}

type CreateExceptionInput struct {
	VehicleID         string
	ScheduleID        *string
	ExceptionDate     string
	ExceptionType     string
	OverrideRouteID   *string
	OverrideDriverID  *string
	OverrideStartTime *string
	OverrideEndTime   *string
	ChangeRouteID     *string
	ChangeDriverID    *string
	Reason            string
}

func (s *ScheduleService) CreateException(ctx context.Context, principal model.Principal, input CreateExceptionInput) (*model.ScheduleException, error) {
	excType := model.ExceptionType(input.ExceptionType)
	if !excType.Valid() {
		return nil, fmt.Errorf("%w: unknown exception_type %q", ErrValidation, input.ExceptionType)
	}
	date, err := time.Parse("2006-01-02", input.ExceptionDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid exception_date", ErrValidation)
	}
	for _, clock := range []*string{input.OverrideStartTime, input.OverrideEndTime} {
		if clock != nil && *clock != "" {
			if _, err := parseClock(*clock); err != nil {
				return nil, fmt.Errorf("%w: invalid override time", ErrValidation)
			}
		}
	}

	vehicle, err := s.ownedVehicle(ctx, principal, input.VehicleID)
	if err != nil {
		return nil, err
	}

	exception := &model.ScheduleException{
		OwnerID:       principal.OwnerID(),
		VehicleID:     vehicle.ID,
		ExceptionDate: date,
		ExceptionType: excType,
		Reason:        input.Reason,
		IsActive:      true,
	}

	if input.ScheduleID != nil && *input.ScheduleID != "" {
		schedule, err := s.scheduleRepo.GetByOwnerAndScheduleID(ctx, principal.OwnerID(), *input.ScheduleID)
		if err != nil {
			return nil, err
		}
		if schedule == nil {
			return nil, fmt.Errorf("%w: schedule", ErrNotFound)
		}
		exception.ScheduleID = &schedule.ID
	}

	exception.OverrideRouteID, err = s.ownedRouteRef(ctx, principal, input.OverrideRouteID)
	if err != nil {
		return nil, err
	}
	exception.ChangeRouteID, err = s.ownedRouteRef(ctx, principal, input.ChangeRouteID)
	if err != nil {
		return nil, err
	}
	exception.OverrideDriverID, err = s.ownedDriverRef(ctx, principal, input.OverrideDriverID)
	if err != nil {
		return nil, err
	}
	exception.ChangeDriverID, err = s.ownedDriverRef(ctx, principal, input.ChangeDriverID)
	if err != nil {
		return nil, err
	}
	if input.OverrideStartTime != nil && *input.OverrideStartTime != "" {
		exception.OverrideStartTime = input.OverrideStartTime
	}
	if input.OverrideEndTime != nil && *input.OverrideEndTime != "" {
		exception.OverrideEndTime = input.OverrideEndTime
	}

	if err := s.exceptionRepo.Create(ctx, exception); err != nil {
		return nil, err
	}
	return exception, nil
}

func (s *ScheduleService) ListExceptions(ctx context.Context, principal model.Principal) ([]model.ScheduleException, error) {
	return s.exceptionRepo.ListByOwner(ctx, principal.OwnerID())
}

// DeactivateException retires an exception. Exceptions are never deleted;
// past ones simply stop matching.
func (s *ScheduleService) DeactivateException(ctx context.Context, principal model.Principal, id string) error {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("%w: invalid exception id", ErrValidation)
	}
	exception, err := s.exceptionRepo.GetByID(ctx, parsed)
	if err != nil {
		return err
	}
	if exception == nil || exception.OwnerID != principal.OwnerID() {
		return fmt.Errorf("%w: exception", ErrNotFound)
	}
	exception.IsActive = false
	return s.exceptionRepo.Update(ctx, exception)
}

func (s *ScheduleService) ownedVehicle(ctx context.Context, principal model.Principal, vehicleID string) (*model.Vehicle, error) {
	if vehicleID == "" {
		return nil, fmt.Errorf("%w: vehicle id is required", ErrValidation)
	}
	vehicle, err := s.vehicleRepo.GetByOwnerAndVehicleID(ctx, principal.OwnerID(), vehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle == nil {
		return nil, fmt.Errorf("%w: vehicle", ErrNotFound)
	}
	return vehicle, nil
}

func (s *ScheduleService) ownedRouteRef(ctx context.Context, principal model.Principal, raw *string) (*uuid.UUID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	parsed, err := uuid.Parse(*raw)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid route id", ErrValidation)
	}
	route, err := s.routeRepo.GetByID(ctx, parsed)
	if err != nil {
		return nil, err
	}
	if route == nil || route.OwnerID == nil || *route.OwnerID != principal.OwnerID() {
		return nil, fmt.Errorf("%w: route", ErrNotFound)
	}
	return &route.ID, nil
}

func (s *ScheduleService) ownedDriverRef(ctx context.Context, principal model.Principal, raw *string) (*uuid.UUID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	parsed, err := uuid.Parse(*raw)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid driver id", ErrValidation)
	}
	driver, err := s.driverRepo.GetByID(ctx, parsed)
	if err != nil {
		return nil, err
	}
	if driver == nil || driver.OwnerID != principal.OwnerID() {
		return nil, fmt.Errorf("%w: driver", ErrNotFound)
	}
	return &driver.ID, nil
}
