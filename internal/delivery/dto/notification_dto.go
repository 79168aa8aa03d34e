package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type ApplyActionRequest struct {
	Action string                 `json:"action" validate:"required"`
	Data   map[string]interface{} `json:"data,omitempty"`
}

// Response DTOs

type NotificationResponse struct {
	ID             uuid.UUID              `json:"id"`
	UserID         uuid.UUID              `json:"userId"`
	Type           string                 `json:"type"`
	Title          string                 `json:"title"`
	Message        string                 `json:"message,omitempty"`
	RelatedID      *uuid.UUID             `json:"relatedId,omitempty"`
	RelatedType    string                 `json:"relatedType,omitempty"`
	IsRead         bool                   `json:"isRead"`
	Priority       string                 `json:"priority"`
	ActionRequired bool                   `json:"actionRequired"`
	ActionType     string                 `json:"actionType,omitempty"`
	ExpiresAt      *time.Time             `json:"expiresAt,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt      time.Time              `json:"createdAt"`
}

type NotificationListResponse struct {
	Items       []NotificationResponse `json:"items"`
	UnreadCount int64                  `json:"unreadCount"`
	Total       int64                  `json:"total"`
	Page        int                    `json:"page"`
	Limit       int                    `json:"limit"`
}
