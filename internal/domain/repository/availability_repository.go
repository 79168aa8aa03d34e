package repository

import (
	"context"
	"time"

	"clinic-appointment-system/internal/domain/entity"

	"github.com/google/uuid"
)

type AvailabilityRepository interface {
	// Upsert writes the override keyed by (doctor_id, date); a later write
	// for the same key updates reason/emergency_only in place.
	Upsert(ctx context.Context, override *entity.AvailabilityOverride) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.AvailabilityOverride, error)
	FindByDoctorAndDate(ctx context.Context, doctorID uuid.UUID, date time.Time) (*entity.AvailabilityOverride, error)
	FindByDoctorInRange(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]entity.AvailabilityOverride, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
