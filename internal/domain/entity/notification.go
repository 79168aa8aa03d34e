package entity

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType enumerates the notice kinds the scheduling core emits
type NotificationType string

const (
	NotificationTypeAppointmentRequest   NotificationType = "appointment_request"
	NotificationTypeAppointmentConfirmed NotificationType = "appointment_confirmed"
	NotificationTypeAppointmentRejected  NotificationType = "appointment_rejected"
	NotificationTypeAppointmentCompleted NotificationType = "appointment_completed"
	NotificationTypeAppointmentCancelled NotificationType = "appointment_cancelled"
	NotificationTypeMedicalReportReady   NotificationType = "medical_report_ready"
	NotificationTypeDoctorUnavailable    NotificationType = "doctor_unavailable"
	NotificationTypeUrgentNotice         NotificationType = "urgent_notice"
	NotificationTypePaymentReminder      NotificationType = "payment_reminder"
	NotificationTypeAppointmentReminder  NotificationType = "appointment_reminder"
)

// NotificationPriority levels
type NotificationPriority string

const (
	NotificationPriorityLow    NotificationPriority = "low"
	NotificationPriorityMedium NotificationPriority = "medium"
	NotificationPriorityHigh   NotificationPriority = "high"
	NotificationPriorityUrgent NotificationPriority = "urgent"
)

// NotificationActionType is the action a notification asks its recipient to take
type NotificationActionType string

const (
	NotificationActionConfirm    NotificationActionType = "confirm"
	NotificationActionReject     NotificationActionType = "reject"
	NotificationActionReschedule NotificationActionType = "reschedule"
	NotificationActionView       NotificationActionType = "view"
	NotificationActionPay        NotificationActionType = "pay"
)

// RelatedType values for the polymorphic back-link
const (
	RelatedTypeAppointment = "appointment"
	RelatedTypeOverride    = "availability_override"
)

// Notification is an addressed notice created as a side effect of a
// scheduling transition. The core only ever flips IsRead after creation;
// retention is an external concern.
type Notification struct {
	ID             uuid.UUID              `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID         uuid.UUID              `gorm:"type:uuid;not null;index" json:"userId"`
	Type           NotificationType       `gorm:"type:varchar(50);not null" json:"type"`
	Title          string                 `gorm:"type:varchar(255);not null" json:"title"`
	Message        string                 `gorm:"type:text" json:"message"`
	RelatedID      *uuid.UUID             `gorm:"type:uuid" json:"relatedId,omitempty"`
	RelatedType    string                 `gorm:"type:varchar(50)" json:"relatedType,omitempty"`
	IsRead         bool                   `gorm:"not null;default:false;index" json:"isRead"`
	Priority       NotificationPriority   `gorm:"type:varchar(10);not null;default:'medium'" json:"priority"`
	ActionRequired bool                   `gorm:"not null;default:false" json:"actionRequired"`
	ActionType     NotificationActionType `gorm:"type:varchar(20)" json:"actionType,omitempty"`
	ExpiresAt      *time.Time             `json:"expiresAt,omitempty"`
	Metadata       JSON                   `gorm:"type:jsonb" json:"metadata,omitempty"`
	ReadAt         *time.Time             `json:"readAt,omitempty"`
	CreatedAt      time.Time              `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt      time.Time              `gorm:"autoUpdateTime" json:"updatedAt"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Notification) TableName() string {
	return "notifications"
}
