package entity

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DoctorProfile represents doctor-specific profile data.
// ConsultationFee is snapshotted onto appointments at creation time.
type DoctorProfile struct {
	UserID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"user_id"`
	Specialization  string          `gorm:"type:varchar(100);not null;index" json:"specialization"`
	ConsultationFee decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"consultation_fee"`
	WorkStart       string          `gorm:"type:time;not null;default:'09:00'" json:"work_start"`
	WorkEnd         string          `gorm:"type:time;not null;default:'17:00'" json:"work_end"`
	Biography       string          `gorm:"type:text" json:"biography,omitempty"`

	// Relationships
	User         User                   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Appointments []Appointment          `gorm:"foreignKey:DoctorID" json:"appointments,omitempty"`
	Overrides    []AvailabilityOverride `gorm:"foreignKey:DoctorID" json:"overrides,omitempty"`
}

func (DoctorProfile) TableName() string {
	return "doctor_profiles"
}
