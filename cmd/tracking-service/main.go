package main

import (
	"fmt"
	"os"

	"tracking-service/internal/auth"
	"tracking-service/internal/client"
	"tracking-service/internal/config"
	"tracking-service/internal/db"
	httphandler "tracking-service/internal/http"
	"tracking-service/internal/http/middleware"
	"tracking-service/internal/logger"
	"tracking-service/internal/repository"
	"tracking-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	appLogger := logger.New(cfg.Environment)

	database, err := db.New(cfg, appLogger)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to connect database")
	}

	routeRepo := repository.NewRouteRepository(database)
	driverRepo := repository.NewDriverRepository(database)
	vehicleRepo := repository.NewVehicleRepository(database)
	positionRepo := repository.NewPositionRepository(database)
	scheduleRepo := repository.NewScheduleRepository(database)
	exceptionRepo := repository.NewExceptionRepository(database)

	var notifier service.LocationNotifier
	if cfg.ExternalServices.MirrorServiceURL != "" {
		notifier = client.NewMirrorClient(cfg)
	}

	locationService := service.NewLocationService(positionRepo, vehicleRepo, routeRepo, notifier, appLogger)
	proximityService := service.NewProximityService(positionRepo, vehicleRepo, routeRepo)
	scheduleService := service.NewScheduleService(database, scheduleRepo, exceptionRepo, vehicleRepo, routeRepo, driverRepo)
	catalogService := service.NewCatalogService(routeRepo, driverRepo, vehicleRepo, positionRepo)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)

	handler := httphandler.NewHandler(locationService, proximityService, scheduleService, catalogService, appLogger)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment, appLogger)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	appLogger.Info().Str("addr", addr).Msg("starting tracking service")

	if err := router.Run(addr); err != nil {
		appLogger.Error().Err(err).Msg("failed to start server")
		os.Exit(1)
	}
}
