package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"clinic-appointment-system/internal/domain/entity"
	domainRepo "clinic-appointment-system/internal/domain/repository"
	"clinic-appointment-system/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// activeSlotConstraint is the partial unique index on
// (doctor_id, date, time) WHERE status <> 'cancelled'.
// See db/migrations/000001_init_schema.up.sql.
const activeSlotConstraint = "idx_appointments_active_slot"

type appointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) domainRepo.AppointmentRepository {
	return &appointmentRepository{db: db}
}

// Create inserts the appointment inside a transaction. The conflict check
// performed by the usecase and this insert are made indivisible by the
// active-slot partial unique index: a concurrent insert into the same slot
// loses with a unique violation, which we surface as a slot conflict.
func (r *appointmentRepository) Create(ctx context.Context, appointment *entity.Appointment) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(appointment).Error
	})
	if err != nil {
		if isUniqueViolation(err, activeSlotConstraint) {
			return apperror.SlotConflict()
		}
		return wrapStoreErr(err)
	}
	return nil
}

func (r *appointmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := r.db.WithContext(ctx).Preload("Doctor.User").Where("id = ?", id).First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, wrapStoreErr(err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) FindActiveBySlot(ctx context.Context, doctorID uuid.UUID, date time.Time, timeOfDay string) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := r.db.WithContext(ctx).
		Where("doctor_id = ? AND date = ? AND time = ? AND status != ?",
			doctorID, date, timeOfDay, entity.AppointmentStatusCancelled).
		First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, wrapStoreErr(err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) FindByPatientID(ctx context.Context, patientID uuid.UUID) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := r.db.WithContext(ctx).Preload("Doctor.User").
		Where("patient_id = ?", patientID).
		Order("date DESC, time DESC").
		Find(&appointments).Error
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return appointments, nil
}

func (r *appointmentRepository) FindByDoctorID(ctx context.Context, doctorID uuid.UUID) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := r.db.WithContext(ctx).Preload("Patient").
		Where("doctor_id = ?", doctorID).
		Order("date DESC, time DESC").
		Find(&appointments).Error
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return appointments, nil
}

func (r *appointmentRepository) FindActiveByDoctorDate(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := r.db.WithContext(ctx).
		Where("doctor_id = ? AND date = ? AND status IN ?",
			doctorID, date,
			[]entity.AppointmentStatus{entity.AppointmentStatusScheduled, entity.AppointmentStatusConfirmed}).
		Order("time ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return appointments, nil
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *entity.Appointment) error {
	err := r.db.WithContext(ctx).Save(appointment).Error
	if err != nil {
		if isUniqueViolation(err, activeSlotConstraint) {
			return apperror.SlotConflict()
		}
		return wrapStoreErr(err)
	}
	return nil
}

// CancelWithNotes atomically cancels the appointment ONLY while it is still
// scheduled or confirmed. Returns affected rows: 1 = cancelled here,
// 0 = someone else moved it to a terminal state first.
func (r *appointmentRepository) CancelWithNotes(ctx context.Context, id uuid.UUID, notes string) (int64, error) {
	result := r.db.WithContext(ctx).Model(&entity.Appointment{}).
		Where("id = ? AND status IN ?", id,
			[]entity.AppointmentStatus{entity.AppointmentStatusScheduled, entity.AppointmentStatusConfirmed}).
		Updates(map[string]interface{}{
			"status": entity.AppointmentStatusCancelled,
			"notes":  notes,
		})
	if result.Error != nil {
		return 0, wrapStoreErr(result.Error)
	}
	return result.RowsAffected, nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique violation
// on the named constraint. PostgreSQL error code 23505 = unique_violation.
func isUniqueViolation(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" &&
			strings.Contains(strings.ToLower(pgErr.ConstraintName), strings.ToLower(constraintName))
	}
	return false
}

// wrapStoreErr marks storage timeouts as retryable; everything else
// passes through untouched.
func wrapStoreErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperror.Transient("storage timeout", err)
	}
	return err
}
