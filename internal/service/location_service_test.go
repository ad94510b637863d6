package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"tracking-service/internal/model"
)

func floatPtr(f float64) *float64 { return &f }

// Validation runs before any repository access, so a zero-value service is
// enough to exercise the rejection paths.
func TestRecordRejectsMissingFields(t *testing.T) {
	svc := NewLocationService(nil, nil, nil, nil, zerolog.Nop())
	ctx := context.Background()

	_, err := svc.Record(ctx, RecordLocationInput{
		Latitude:  floatPtr(28.6),
		Longitude: floatPtr(77.2),
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Record(ctx, RecordLocationInput{
		VehicleID: "BUS-001",
		Longitude: floatPtr(77.2),
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Record(ctx, RecordLocationInput{
		VehicleID: "BUS-001",
		Latitude:  floatPtr(28.6),
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRecordRejectsOutOfRangeCoordinates(t *testing.T) {
	svc := NewLocationService(nil, nil, nil, nil, zerolog.Nop())

	_, err := svc.Record(context.Background(), RecordLocationInput{
		VehicleID: "BUS-001",
		Latitude:  floatPtr(95),
		Longitude: floatPtr(77.2),
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPurgeRejectsZeroCutoff(t *testing.T) {
	svc := NewLocationService(nil, nil, nil, nil, zerolog.Nop())

	_, err := svc.PurgeOlderThan(context.Background(), model.Principal{}, time.Time{})
	assert.ErrorIs(t, err, ErrValidation)
}
