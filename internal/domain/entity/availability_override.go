package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AvailabilityOverride marks a doctor unavailable on a specific date.
// No row means the doctor is available (default availability).
// At most one row exists per (doctor_id, date); writes upsert in place.
type AvailabilityOverride struct {
	ID                   uuid.UUID   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	DoctorID             uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_overrides_doctor_date" json:"doctorId"`
	Date                 time.Time   `gorm:"type:date;not null;uniqueIndex:idx_overrides_doctor_date" json:"date"`
	IsAvailable          bool        `gorm:"not null;default:false" json:"isAvailable"`
	Reason               string      `gorm:"type:varchar(255);not null" json:"reason"`
	EmergencyOnly        bool        `gorm:"not null;default:false" json:"emergencyOnly"`
	UnavailableTimeSlots StringSlice `gorm:"type:jsonb" json:"unavailableTimeSlots,omitempty"`
	CreatedAt            time.Time   `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt            time.Time   `gorm:"autoUpdateTime" json:"updatedAt"`

	// Relationships
	Doctor DoctorProfile `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
}

func (AvailabilityOverride) TableName() string {
	return "availability_overrides"
}

// AvailabilityStatus is the tagged result of resolving a doctor's
// availability for a date. Available defaults to true when no override
// row exists, so call sites never deal with nil.
type AvailabilityStatus struct {
	Available     bool   `json:"available"`
	Reason        string `json:"reason,omitempty"`
	EmergencyOnly bool   `json:"emergencyOnly,omitempty"`
}

// AvailableStatus is the default when no override row exists.
func AvailableStatus() AvailabilityStatus {
	return AvailabilityStatus{Available: true}
}

// UnavailableStatus builds the status for an existing override row.
func UnavailableStatus(reason string, emergencyOnly bool) AvailabilityStatus {
	return AvailabilityStatus{Available: false, Reason: reason, EmergencyOnly: emergencyOnly}
}

// StringSlice type for GORM JSONB support
type StringSlice []string

// Value returns json value, implement driver.Valuer interface
func (s StringSlice) Value() (driver.Value, error) {
	if len(s) == 0 {
		return nil, nil
	}
	return json.Marshal(s)
}

// Scan scans value into StringSlice, implements sql.Scanner interface
func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New(fmt.Sprint("Failed to unmarshal JSONB value:", value))
	}

	result := []string{}
	err := json.Unmarshal(bytes, &result)
	*s = StringSlice(result)
	return err
}
