package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"tracking-service/internal/http/middleware"
	"tracking-service/internal/service"
)

type Handler struct {
	locationService  *service.LocationService
	proximityService *service.ProximityService
	scheduleService  *service.ScheduleService
	catalogService   *service.CatalogService
	log              zerolog.Logger
}

func NewHandler(
	locationService *service.LocationService,
	proximityService *service.ProximityService,
	scheduleService *service.ScheduleService,
	catalogService *service.CatalogService,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		locationService:  locationService,
		proximityService: proximityService,
		scheduleService:  scheduleService,
		catalogService:   catalogService,
		log:              log,
	}
}

func (h *Handler) Register(r *gin.Engine, authMiddleware gin.HandlerFunc) {
	// Rider-facing endpoints. Intentionally anonymous: position ingest comes
	// from devices and simulators, the rest is read-only fleet data.
	api := r.Group("/api")
	{
		api.POST("/locations", h.recordLocation)
		api.GET("/locations", h.fleetSnapshot)
		api.GET("/nearby", h.findNearby)
		api.GET("/vehicles/search", h.searchVehicles)
		api.GET("/routes", h.publicRoutes)
	}

	admin := r.Group("/admin")
	admin.Use(authMiddleware)
	{
		admin.POST("/routes", h.createRoute)
		admin.GET("/routes", h.listRoutes)

		admin.POST("/drivers", h.createDriver)
		admin.GET("/drivers", h.listDrivers)

		admin.POST("/vehicles", h.createVehicle)
		admin.GET("/vehicles", h.listVehicles)
		admin.PUT("/vehicles/:id/route", h.updateVehicleRoute)
		admin.PUT("/vehicles/:id/driver", h.updateVehicleDriver)
		admin.PUT("/vehicles/:id/toggle", h.toggleVehicle)
		admin.GET("/vehicles/:id/assignment", h.resolveAssignment)

		admin.POST("/schedules", h.createSchedule)
		admin.GET("/schedules", h.listSchedules)
		admin.POST("/schedules/check", h.checkScheduleConflicts)
		admin.GET("/schedules/current", h.currentAssignments)

		admin.POST("/exceptions", h.createException)
		admin.GET("/exceptions", h.listExceptions)
		admin.PUT("/exceptions/:id/deactivate", h.deactivateException)

		admin.POST("/positions/purge", h.purgePositions)
	}
}

func (h *Handler) recordLocation(c *gin.Context) {
	var req struct {
		VehicleID  string   `json:"vehicle_id" binding:"required"`
		Latitude   *float64 `json:"latitude"`
		Longitude  *float64 `json:"longitude"`
		Speed      float64  `json:"speed"`
		Heading    float64  `json:"heading"`
		RecordedAt string   `json:"recorded_at"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	input := service.RecordLocationInput{
		VehicleID: req.VehicleID,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Speed:     req.Speed,
		Heading:   req.Heading,
	}
	if req.RecordedAt != "" {
		t, err := parseTime(req.RecordedAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("invalid recorded_at"))
			return
		}
		input.RecordedAt = &t
	}

	result, err := h.locationService.Record(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(result))
}

func (h *Handler) fleetSnapshot(c *gin.Context) {
	snapshot, err := h.locationService.FleetSnapshot(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(snapshot))
}

func (h *Handler) findNearby(c *gin.Context) {
	lat, err := strconv.ParseFloat(strings.TrimSpace(c.Query("lat")), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("lat is required"))
		return
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(c.Query("lng")), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("lng is required"))
		return
	}

	radiusKm := service.DefaultSearchRadiusKm
	if raw := strings.TrimSpace(c.Query("radius")); raw != "" {
		radiusKm, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("invalid radius"))
			return
		}
	}

	limit := service.DefaultSearchLimit
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("invalid limit"))
			return
		}
	}

	vehicles, err := h.proximityService.FindNearby(c.Request.Context(), lat, lon, radiusKm, limit)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{
		"count":    len(vehicles),
		"vehicles": vehicles,
	}))
}

func (h *Handler) searchVehicles(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, errorResponse("q is required"))
		return
	}
	routeID := strings.TrimSpace(c.Query("route"))

	results, err := h.catalogService.SearchVehicles(c.Request.Context(), query, routeID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(results))
}

func (h *Handler) publicRoutes(c *gin.Context) {
	routes, err := h.catalogService.PublicRoutes(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(routes))
}

func (h *Handler) createRoute(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	var req struct {
		RouteID       string `json:"route_id" binding:"required"`
		Name          string `json:"name" binding:"required"`
		StartLocation string `json:"start_location"`
		EndLocation   string `json:"end_location"`
		Description   string `json:"description"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	route, err := h.catalogService.CreateRoute(c.Request.Context(), principal, service.CreateRouteInput{
		RouteID:       req.RouteID,
		Name:          req.Name,
		StartLocation: req.StartLocation,
		EndLocation:   req.EndLocation,
		Description:   req.Description,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(route))
}

func (h *Handler) listRoutes(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	routes, err := h.catalogService.ListRoutes(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(routes))
}

func (h *Handler) createDriver(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	var req struct {
		DriverID      string `json:"driver_id" binding:"required"`
		Name          string `json:"name" binding:"required"`
		Mobile        string `json:"mobile"`
		LicenseNumber string `json:"license_number"`
		Email         string `json:"email"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	driver, err := h.catalogService.CreateDriver(c.Request.Context(), principal, service.CreateDriverInput{
		DriverID:      req.DriverID,
		Name:          req.Name,
		Mobile:        req.Mobile,
		LicenseNumber: req.LicenseNumber,
		Email:         req.Email,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(driver))
}

func (h *Handler) listDrivers(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	drivers, err := h.catalogService.ListDrivers(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(drivers))
}

func (h *Handler) createVehicle(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	var req struct {
		VehicleID    string `json:"vehicle_id" binding:"required"`
		Registration string `json:"registration"`
		RouteID      string `json:"route_id" binding:"required"`
		DriverName   string `json:"driver_name"`
		DriverMobile string `json:"driver_mobile"`
		VehicleType  string `json:"vehicle_type"`
		Capacity     int    `json:"capacity"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	vehicle, err := h.catalogService.CreateVehicle(c.Request.Context(), principal, service.CreateVehicleInput{
		VehicleID:    req.VehicleID,
		Registration: req.Registration,
		RouteID:      req.RouteID,
		DriverName:   req.DriverName,
		DriverMobile: req.DriverMobile,
		VehicleType:  req.VehicleType,
		Capacity:     req.Capacity,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(vehicle))
}

func (h *Handler) listVehicles(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	vehicles, err := h.catalogService.ListVehicles(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(vehicles))
}

func (h *Handler) updateVehicleRoute(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	vehicleID := strings.TrimSpace(c.Param("id"))
	if vehicleID == "" {
		c.JSON(http.StatusBadRequest, errorResponse("invalid vehicle id"))
		return
	}

	var req struct {
		RouteID string `json:"route_id" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	vehicle, err := h.catalogService.UpdateVehicleRoute(c.Request.Context(), principal, vehicleID, req.RouteID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(vehicle))
}

func (h *Handler) updateVehicleDriver(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	vehicleID := strings.TrimSpace(c.Param("id"))
	if vehicleID == "" {
		c.JSON(http.StatusBadRequest, errorResponse("invalid vehicle id"))
		return
	}

	var req struct {
		DriverID string `json:"driver_id" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	vehicle, err := h.catalogService.UpdateVehicleDriver(c.Request.Context(), principal, vehicleID, req.DriverID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(vehicle))
}

func (h *Handler) toggleVehicle(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	vehicleID := strings.TrimSpace(c.Param("id"))
	if vehicleID == "" {
		c.JSON(http.StatusBadRequest, errorResponse("invalid vehicle id"))
		return
	}

	vehicle, err := h.catalogService.ToggleVehicle(c.Request.Context(), principal, vehicleID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(vehicle))
}

func (h *Handler) resolveAssignment(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	vehicleID := strings.TrimSpace(c.Param("id"))
	if vehicleID == "" {
		c.JSON(http.StatusBadRequest, errorResponse("invalid vehicle id"))
		return
	}

	at := time.Now()
	if raw := strings.TrimSpace(c.Query("at")); raw != "" {
		parsed, err := parseTime(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("invalid at"))
			return
		}
		at = parsed
	}

	view, err := h.scheduleService.ResolveAssignment(c.Request.Context(), principal, vehicleID, at)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(view))
}

func (h *Handler) createSchedule(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	req, ok := bindScheduleRequest(c)
	if !ok {
		return
	}

	schedule, err := h.scheduleService.Create(c.Request.Context(), principal, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(schedule))
}

func (h *Handler) listSchedules(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	schedules, err := h.scheduleService.List(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(schedules))
}

func (h *Handler) checkScheduleConflicts(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	req, ok := bindScheduleRequest(c)
	if !ok {
		return
	}

	conflict, err := h.scheduleService.CheckConflicts(c.Request.Context(), principal, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{
		"has_conflict": conflict != "",
		"conflict":     conflict,
	}))
}

func bindScheduleRequest(c *gin.Context) (service.CreateScheduleInput, bool) {
	var req struct {
		ScheduleID    string  `json:"schedule_id" binding:"required"`
		Name          string  `json:"name" binding:"required"`
		VehicleID     string  `json:"vehicle_id" binding:"required"`
		RouteID       string  `json:"route_id" binding:"required"`
		DriverID      *string `json:"driver_id"`
		StartTime     string  `json:"start_time" binding:"required"`
		EndTime       string  `json:"end_time" binding:"required"`
		DaysOfWeek    []int   `json:"days_of_week"`
		EffectiveFrom string  `json:"effective_from" binding:"required"`
		EffectiveTo   *string `json:"effective_to"`
		Priority      int     `json:"priority"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return service.CreateScheduleInput{}, false
	}

	return service.CreateScheduleInput{
		ScheduleID:    req.ScheduleID,
		Name:          req.Name,
		VehicleID:     req.VehicleID,
		RouteID:       req.RouteID,
		DriverID:      req.DriverID,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		DaysOfWeek:    req.DaysOfWeek,
		EffectiveFrom: req.EffectiveFrom,
		EffectiveTo:   req.EffectiveTo,
		Priority:      req.Priority,
	}, true
}

func (h *Handler) currentAssignments(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	at := time.Now()
	if raw := strings.TrimSpace(c.Query("at")); raw != "" {
		parsed, err := parseTime(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("invalid at"))
			return
		}
		at = parsed
	}

	views, err := h.scheduleService.CurrentAssignments(c.Request.Context(), principal, at)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(views))
}

func (h *Handler) createException(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	var req struct {
		VehicleID         string  `json:"vehicle_id" binding:"required"`
		ScheduleID        *string `json:"schedule_id"`
		ExceptionDate     string  `json:"exception_date" binding:"required"`
		ExceptionType     string  `json:"exception_type" binding:"required"`
		OverrideRouteID   *string `json:"override_route_id"`
		OverrideDriverID  *string `json:"override_driver_id"`
		OverrideStartTime *string `json:"override_start_time"`
		OverrideEndTime   *string `json:"override_end_time"`
		ChangeRouteID     *string `json:"change_route_id"`
		ChangeDriverID    *string `json:"change_driver_id"`
		Reason            string  `json:"reason"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	exception, err := h.scheduleService.CreateException(c.Request.Context(), principal, service.CreateExceptionInput{
		VehicleID:         req.VehicleID,
		ScheduleID:        req.ScheduleID,
		ExceptionDate:     req.ExceptionDate,
		ExceptionType:     req.ExceptionType,
		OverrideRouteID:   req.OverrideRouteID,
		OverrideDriverID:  req.OverrideDriverID,
		OverrideStartTime: req.OverrideStartTime,
		OverrideEndTime:   req.OverrideEndTime,
		ChangeRouteID:     req.ChangeRouteID,
		ChangeDriverID:    req.ChangeDriverID,
		Reason:            req.Reason,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(exception))
}

func (h *Handler) listExceptions(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	exceptions, err := h.scheduleService.ListExceptions(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(exceptions))
}

func (h *Handler) deactivateException(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, errorResponse("invalid exception id"))
		return
	}

	if err := h.scheduleService.DeactivateException(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"message": "exception deactivated"}))
}

func (h *Handler) purgePositions(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
		return
	}

	var req struct {
		Cutoff string `json:"cutoff" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	cutoff, err := parseTime(req.Cutoff)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid cutoff"))
		return
	}

	deleted, err := h.locationService.PurgeOlderThan(c.Request.Context(), principal, cutoff)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"deleted": deleted}))
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, errorResponse(err.Error()))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse(err.Error()))
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, errorResponse(err.Error()))
	default:
		h.log.Error().Err(err).Msg("handler error")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
	}
}

func successResponse(data interface{}) gin.H {
	return gin.H{
		"data": data,
	}
}

func errorResponse(message string) gin.H {
	return gin.H{
		"error": message,
	}
}

func parseTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"2006-01-02T15:04:05",
		"2006-01-02T15:04:05Z",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, errors.New("invalid time format")
}
