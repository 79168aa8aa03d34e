package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type CreateAppointmentRequest struct {
	DoctorID uuid.UUID `json:"doctorId" validate:"required"`
	// PatientID is only honored for staff booking on a patient's behalf;
	// patients always book for themselves.
	PatientID *uuid.UUID `json:"patientId,omitempty"`
	Date      string     `json:"date" validate:"required"`
	Time      string     `json:"time" validate:"required"`
	Service   string     `json:"service" validate:"required,max=100"`
	Reason    string     `json:"reason,omitempty" validate:"omitempty,max=1000"`
	Duration  int        `json:"duration,omitempty" validate:"omitempty,min=5,max=240"`
}

type UpdateAppointmentRequest struct {
	Date    string `json:"date,omitempty"`
	Time    string `json:"time,omitempty"`
	Service string `json:"service,omitempty" validate:"omitempty,max=100"`
	Reason  string `json:"reason,omitempty" validate:"omitempty,max=1000"`
	Status  string `json:"status,omitempty"`
	Notes   string `json:"notes,omitempty"`
}

// Response DTOs

type AppointmentResponse struct {
	ID           uuid.UUID       `json:"id"`
	PatientID    uuid.UUID       `json:"patientId"`
	DoctorID     uuid.UUID       `json:"doctorId"`
	Date         string          `json:"date"`
	Time         string          `json:"time"`
	Service      string          `json:"service"`
	Reason       string          `json:"reason,omitempty"`
	Status       string          `json:"status"`
	Notes        string          `json:"notes,omitempty"`
	Duration     int             `json:"duration"`
	Fee          decimal.Decimal `json:"fee"`
	IsPaid       bool            `json:"isPaid"`
	ReminderSent bool            `json:"reminderSent"`
	Doctor       *DoctorResponse `json:"doctor,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}

type DoctorResponse struct {
	ID              uuid.UUID       `json:"id"`
	FullName        string          `json:"fullName"`
	Specialization  string          `json:"specialization"`
	ConsultationFee decimal.Decimal `json:"consultationFee"`
	IsActive        bool            `json:"isActive"`
}
