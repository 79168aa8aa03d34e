package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusNoShow    AppointmentStatus = "no-show"
)

// DefaultDurationMinutes is applied when a booking request carries no duration.
const DefaultDurationMinutes = 30

// Appointment represents a booked visit. The slot (doctor_id, date, time)
// must be exclusive among non-cancelled rows; the partial unique index
// idx_appointments_active_slot enforces this at the store.
type Appointment struct {
	ID           uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PatientID    uuid.UUID         `gorm:"type:uuid;not null;index" json:"patientId"`
	DoctorID     uuid.UUID         `gorm:"type:uuid;not null;index:idx_appointments_doctor_date" json:"doctorId"`
	Date         time.Time         `gorm:"type:date;not null;index:idx_appointments_doctor_date" json:"date"`
	Time         string            `gorm:"type:time;not null" json:"time"`
	Service      string            `gorm:"type:varchar(100);not null" json:"service"`
	Reason       string            `gorm:"type:text" json:"reason,omitempty"`
	Status       AppointmentStatus `gorm:"type:varchar(20);not null;default:'scheduled';index" json:"status"`
	Notes        string            `gorm:"type:text" json:"notes,omitempty"`
	Duration     int               `gorm:"not null;default:30" json:"duration"`
	Fee          decimal.Decimal   `gorm:"type:decimal(10,2);not null" json:"fee"`
	IsPaid       bool              `gorm:"not null;default:false" json:"isPaid"`
	ReminderSent bool              `gorm:"not null;default:false" json:"reminderSent"`
	BookedBy     *uuid.UUID        `gorm:"type:uuid" json:"bookedBy,omitempty"`
	CreatedAt    time.Time         `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time         `gorm:"autoUpdateTime" json:"updatedAt"`

	// Relationships
	Patient User          `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Doctor  DoctorProfile `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// IsTerminal reports whether no further transition is permitted.
func (s AppointmentStatus) IsTerminal() bool {
	switch s {
	case AppointmentStatusCancelled, AppointmentStatusCompleted, AppointmentStatusNoShow:
		return true
	}
	return false
}

// IsActive reports whether the appointment still occupies its slot.
func (a *Appointment) IsActive() bool {
	return a.Status == AppointmentStatusScheduled || a.Status == AppointmentStatusConfirmed
}

// IsCancelled checks if the appointment is cancelled
func (a *Appointment) IsCancelled() bool {
	return a.Status == AppointmentStatusCancelled
}

// CanTransitionTo reports whether the status machine permits moving to next:
//
//	scheduled --confirm--> confirmed --complete--> completed
//	scheduled --reject/cancel--> cancelled
//	confirmed --cancel--> cancelled
//	(scheduled|confirmed) --no-show--> no-show
func (a *Appointment) CanTransitionTo(next AppointmentStatus) bool {
	if a.Status.IsTerminal() {
		return false
	}
	switch a.Status {
	case AppointmentStatusScheduled:
		return next == AppointmentStatusConfirmed ||
			next == AppointmentStatusCancelled ||
			next == AppointmentStatusNoShow
	case AppointmentStatusConfirmed:
		return next == AppointmentStatusCompleted ||
			next == AppointmentStatusCancelled ||
			next == AppointmentStatusNoShow
	}
	return false
}

// Cancel changes the appointment status to cancelled
func (a *Appointment) Cancel() {
	a.Status = AppointmentStatusCancelled
}

// Confirm changes the appointment status to confirmed
func (a *Appointment) Confirm() {
	a.Status = AppointmentStatusConfirmed
}
