package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`CREATE TABLE IF NOT EXISTS routes (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		owner_id UUID,
		route_id VARCHAR(64) NOT NULL,
		name VARCHAR(255) NOT NULL,
		start_location VARCHAR(255),
		end_location VARCHAR(255),
		description TEXT,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_routes_owner_route_id ON routes (owner_id, route_id) WHERE owner_id IS NOT NULL;`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_routes_default_route_id ON routes (route_id) WHERE owner_id IS NULL;`,
	`CREATE TABLE IF NOT EXISTS drivers (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		owner_id UUID NOT NULL,
		driver_id VARCHAR(64) NOT NULL,
		name VARCHAR(255) NOT NULL,
		mobile VARCHAR(32),
		license_number VARCHAR(64),
		email VARCHAR(255),
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_drivers_owner_driver_id ON drivers (owner_id, driver_id);`,
	`CREATE TABLE IF NOT EXISTS vehicles (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		owner_id UUID,
		vehicle_id VARCHAR(64) NOT NULL UNIQUE,
		route_id UUID NOT NULL REFERENCES routes(id) ON DELETE RESTRICT,
		driver_name VARCHAR(255),
		driver_mobile VARCHAR(32),
		registration VARCHAR(32),
		vehicle_type VARCHAR(20) NOT NULL DEFAULT 'bus',
		capacity INTEGER NOT NULL DEFAULT 50,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_vehicles_owner_id ON vehicles (owner_id);`,
	`CREATE INDEX IF NOT EXISTS idx_vehicles_route_id ON vehicles (route_id);`,
	`CREATE TABLE IF NOT EXISTS positions (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		seq BIGSERIAL NOT NULL,
		vehicle_id UUID NOT NULL REFERENCES vehicles(id) ON DELETE CASCADE,
		latitude DOUBLE PRECISION NOT NULL,
		longitude DOUBLE PRECISION NOT NULL,
		speed DOUBLE PRECISION NOT NULL DEFAULT 0,
		heading DOUBLE PRECISION NOT NULL DEFAULT 0,
		recorded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_positions_vehicle_recorded_seq ON positions (vehicle_id, recorded_at DESC, seq DESC);`,
	`CREATE INDEX IF NOT EXISTS idx_positions_recorded_at ON positions (recorded_at);`,
	`CREATE TABLE IF NOT EXISTS schedules (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		owner_id UUID NOT NULL,
		schedule_id VARCHAR(64) NOT NULL,
		name VARCHAR(255) NOT NULL,
		vehicle_id UUID NOT NULL REFERENCES vehicles(id) ON DELETE CASCADE,
		route_id UUID NOT NULL REFERENCES routes(id) ON DELETE RESTRICT,
		driver_id UUID REFERENCES drivers(id) ON DELETE SET NULL,
		start_time VARCHAR(8) NOT NULL,
		end_time VARCHAR(8) NOT NULL,
		days_of_week JSONB NOT NULL DEFAULT '[]',
		effective_from DATE NOT NULL,
		effective_to DATE,
		priority INTEGER NOT NULL DEFAULT 1,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_schedules_owner_schedule_id ON schedules (owner_id, schedule_id);`,
	`CREATE INDEX IF NOT EXISTS idx_schedules_vehicle_id ON schedules (vehicle_id);`,
	`CREATE INDEX IF NOT EXISTS idx_schedules_owner_active ON schedules (owner_id, is_active);`,
	`CREATE TABLE IF NOT EXISTS schedule_exceptions (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		owner_id UUID NOT NULL,
		schedule_id UUID REFERENCES schedules(id) ON DELETE CASCADE,
		vehicle_id UUID NOT NULL REFERENCES vehicles(id) ON DELETE CASCADE,
		exception_date DATE NOT NULL,
		exception_type VARCHAR(20) NOT NULL,
		override_route_id UUID REFERENCES routes(id) ON DELETE SET NULL,
		override_driver_id UUID REFERENCES drivers(id) ON DELETE SET NULL,
		override_start_time VARCHAR(8),
		override_end_time VARCHAR(8),
		change_route_id UUID REFERENCES routes(id) ON DELETE SET NULL,
		change_driver_id UUID REFERENCES drivers(id) ON DELETE SET NULL,
		reason TEXT,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_schedule_exceptions_vehicle_date ON schedule_exceptions (vehicle_id, exception_date);`,
	`CREATE INDEX IF NOT EXISTS idx_schedule_exceptions_owner_id ON schedule_exceptions (owner_id);`,
	`CREATE OR REPLACE FUNCTION set_updated_at()
	RETURNS TRIGGER AS $$
	BEGIN
		NEW.updated_at = NOW();
		RETURN NEW;
	END;
	$$ LANGUAGE plpgsql;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = 'trg_routes_updated_at') THEN
			CREATE TRIGGER trg_routes_updated_at
				BEFORE UPDATE ON routes
				FOR EACH ROW
				EXECUTE PROCEDURE set_updated_at();
		END IF;
	END
	$$;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = 'trg_drivers_updated_at') THEN
			CREATE TRIGGER trg_drivers_updated_at
				BEFORE UPDATE ON drivers
				FOR EACH ROW
				EXECUTE PROCEDURE set_updated_at();
		END IF;
	END
	$$;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = 'trg_vehicles_updated_at') THEN
			CREATE TRIGGER trg_vehicles_updated_at
				BEFORE UPDATE ON vehicles
				FOR EACH ROW
				EXECUTE PROCEDURE set_updated_at();
		END IF;
	END
	$$;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = 'trg_schedules_updated_at') THEN
			CREATE TRIGGER trg_schedules_updated_at
				BEFORE UPDATE ON schedules
				FOR EACH ROW
				EXECUTE PROCEDURE set_updated_at();
		END IF;
	END
	$$;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = 'trg_schedule_exceptions_updated_at') THEN
			CREATE TRIGGER trg_schedule_exceptions_updated_at
				BEFORE UPDATE ON schedule_exceptions
				FOR EACH ROW
				EXECUTE PROCEDURE set_updated_at();
		END IF;
	END
	$$;`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
