package repository

import (
	"context"
	"time"

	"clinic-appointment-system/internal/domain/entity"

	"github.com/google/uuid"
)

type AppointmentRepository interface {
	// Create inserts the appointment. A concurrent insert into the same
	// active slot surfaces as a slot-conflict error.
	Create(ctx context.Context, appointment *entity.Appointment) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Appointment, error)
	// FindActiveBySlot returns the non-cancelled occupant of
	// (doctorID, date, timeOfDay), or nil when the slot is free.
	FindActiveBySlot(ctx context.Context, doctorID uuid.UUID, date time.Time, timeOfDay string) (*entity.Appointment, error)
	FindByPatientID(ctx context.Context, patientID uuid.UUID) ([]entity.Appointment, error)
	FindByDoctorID(ctx context.Context, doctorID uuid.UUID) ([]entity.Appointment, error)
	// FindActiveByDoctorDate lists scheduled/confirmed appointments for a
	// doctor on a date; the cascade input set.
	FindActiveByDoctorDate(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]entity.Appointment, error)
	Update(ctx context.Context, appointment *entity.Appointment) error
	// CancelWithNotes atomically cancels the appointment ONLY while it is
	// still active. Returns affected rows: 1 = cancelled, 0 = lost the race.
	CancelWithNotes(ctx context.Context, id uuid.UUID, notes string) (int64, error)
}
