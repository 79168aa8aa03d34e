package converter

import (
	"clinic-appointment-system/internal/delivery/dto"
	"clinic-appointment-system/internal/domain/entity"
)

// NotificationToResponse converts a Notification entity to NotificationResponse DTO
func NotificationToResponse(notification *entity.Notification) *dto.NotificationResponse {
	if notification == nil {
		return nil
	}

	return &dto.NotificationResponse{
		ID:             notification.ID,
		UserID:         notification.UserID,
		Type:           string(notification.Type),
		Title:          notification.Title,
		Message:        notification.Message,
		RelatedID:      notification.RelatedID,
		RelatedType:    notification.RelatedType,
		IsRead:         notification.IsRead,
		Priority:       string(notification.Priority),
		ActionRequired: notification.ActionRequired,
		ActionType:     string(notification.ActionType),
		ExpiresAt:      notification.ExpiresAt,
		Metadata:       notification.Metadata,
		CreatedAt:      notification.CreatedAt,
	}
}

// NotificationsToResponses converts a slice of Notification entities to slice of NotificationResponse DTOs
func NotificationsToResponses(notifications []entity.Notification) []dto.NotificationResponse {
	responses := make([]dto.NotificationResponse, len(notifications))
	for i, notification := range notifications {
		resp := NotificationToResponse(&notification)
		if resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}
