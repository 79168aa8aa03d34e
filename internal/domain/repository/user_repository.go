package repository

import (
	"context"

	"clinic-appointment-system/internal/domain/entity"

	"github.com/google/uuid"
)

// UserRepository is the identity-store lookup contract consumed by the
// scheduling core. User records are owned elsewhere.
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
}

type DoctorProfileRepository interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.DoctorProfile, error)
}
