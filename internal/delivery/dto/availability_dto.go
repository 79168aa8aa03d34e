package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type SetUnavailableRequest struct {
	// DoctorID is only honored for admin callers; doctors always declare
	// unavailability for themselves.
	DoctorID             *uuid.UUID `json:"doctorId,omitempty"`
	Dates                []string   `json:"dates" validate:"required,min=1,dive,required"`
	Reason               string     `json:"reason" validate:"required,max=255"`
	EmergencyOnly        bool       `json:"emergencyOnly"`
	UnavailableTimeSlots []string   `json:"unavailableTimeSlots,omitempty"`
}

// Response DTOs

type OverrideResponse struct {
	ID                   uuid.UUID `json:"id"`
	DoctorID             uuid.UUID `json:"doctorId"`
	Date                 string    `json:"date"`
	IsAvailable          bool      `json:"isAvailable"`
	Reason               string    `json:"reason"`
	EmergencyOnly        bool      `json:"emergencyOnly"`
	UnavailableTimeSlots []string  `json:"unavailableTimeSlots,omitempty"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

// CascadeSummary reports partial-failure results of a cancel cascade.
// Failures do not roll back the appointments already cancelled.
type CascadeSummary struct {
	Cancelled int `json:"cancelled"`
	Failed    int `json:"failed"`
	Notified  int `json:"notified"`
}

func (s *CascadeSummary) Add(other CascadeSummary) {
	s.Cancelled += other.Cancelled
	s.Failed += other.Failed
	s.Notified += other.Notified
}

type SetUnavailableResponse struct {
	Overrides      []OverrideResponse `json:"overrides"`
	CascadeSummary CascadeSummary     `json:"cascadeSummary"`
}

type AvailabilityListResponse struct {
	Overrides []OverrideResponse `json:"overrides"`
	Total     int                `json:"total"`
}
