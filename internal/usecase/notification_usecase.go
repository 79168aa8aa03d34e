package usecase

import (
	"context"
	"fmt"

	"clinic-appointment-system/internal/converter"
	"clinic-appointment-system/internal/delivery/dto"
	"clinic-appointment-system/internal/domain/entity"
	"clinic-appointment-system/internal/domain/repository"
	"clinic-appointment-system/pkg/apperror"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// NotificationAction is the closed set of actions a recipient may apply
// to a notification. Anything else is rejected up front.
type NotificationAction string

const (
	ActionConfirm    NotificationAction = "confirm"
	ActionReject     NotificationAction = "reject"
	ActionReschedule NotificationAction = "reschedule"
	ActionView       NotificationAction = "view"
	ActionPay        NotificationAction = "pay"
)

// ParseNotificationAction validates the wire value against the closed set.
func ParseNotificationAction(s string) (NotificationAction, error) {
	action := NotificationAction(s)
	switch action {
	case ActionConfirm, ActionReject, ActionReschedule, ActionView, ActionPay:
		return action, nil
	}
	return "", apperror.Validation(fmt.Sprintf("unknown notification action %q", s))
}

type NotificationUsecase interface {
	// Create validates and persists a notification record. Delivery
	// transport is out of scope; creation never fails on recipient
	// reachability concerns.
	Create(ctx context.Context, notification *entity.Notification) (*dto.NotificationResponse, error)
	ListForUser(ctx context.Context, unreadOnly bool, page, limit int) (*dto.NotificationListResponse, error)
	// MarkRead flips isRead; re-reading an already-read notification is a
	// no-op, not an error.
	MarkRead(ctx context.Context, id uuid.UUID) error
	MarkAllRead(ctx context.Context) (int64, error)
	// ApplyAction dispatches appointment-related actions into the
	// scheduling engine, then marks the notification read.
	ApplyAction(ctx context.Context, id uuid.UUID, req *dto.ApplyActionRequest) error
}

type notificationUsecase struct {
	log              *logrus.Logger
	notificationRepo repository.NotificationRepository
	scheduling       SchedulingUsecase
}

func NewNotificationUsecase(
	log *logrus.Logger,
	notificationRepo repository.NotificationRepository,
	scheduling SchedulingUsecase,
) NotificationUsecase {
	return &notificationUsecase{
		log:              log,
		notificationRepo: notificationRepo,
		scheduling:       scheduling,
	}
}

func (u *notificationUsecase) Create(ctx context.Context, notification *entity.Notification) (*dto.NotificationResponse, error) {
	if notification.UserID == uuid.Nil {
		return nil, apperror.Validation("userId is required")
	}
	if notification.Type == "" {
		return nil, apperror.Validation("type is required")
	}
	if notification.Priority == "" {
		notification.Priority = entity.NotificationPriorityMedium
	}

	if err := u.notificationRepo.Create(ctx, notification); err != nil {
		u.log.Warnf("Failed to create notification for user %s: %+v", notification.UserID, err)
		return nil, err
	}

	return converter.NotificationToResponse(notification), nil
}

func (u *notificationUsecase) ListForUser(ctx context.Context, unreadOnly bool, page, limit int) (*dto.NotificationListResponse, error) {
	actorID, _, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	offset := (page - 1) * limit

	notifications, err := u.notificationRepo.FindByUser(ctx, actorID, unreadOnly, limit, offset)
	if err != nil {
		u.log.Warnf("Failed to list notifications for user %s: %+v", actorID, err)
		return nil, err
	}

	total, err := u.notificationRepo.CountByUser(ctx, actorID, unreadOnly)
	if err != nil {
		u.log.Warnf("Failed to count notifications for user %s: %+v", actorID, err)
		return nil, err
	}
	unreadCount, err := u.notificationRepo.CountByUser(ctx, actorID, true)
	if err != nil {
		u.log.Warnf("Failed to count unread notifications for user %s: %+v", actorID, err)
		return nil, err
	}

	return &dto.NotificationListResponse{
		Items:       converter.NotificationsToResponses(notifications),
		UnreadCount: unreadCount,
		Total:       total,
		Page:        page,
		Limit:       limit,
	}, nil
}

func (u *notificationUsecase) MarkRead(ctx context.Context, id uuid.UUID) error {
	actorID, _, err := actorFromContext(ctx)
	if err != nil {
		return err
	}

	notification, err := u.notificationRepo.FindByID(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to find notification %s: %+v", id, err)
		return err
	}
	if notification == nil {
		return apperror.NotFound("notification not found")
	}
	if notification.UserID != actorID {
		return apperror.Authorization("notification does not belong to you")
	}
	if notification.IsRead {
		return nil
	}

	if err := u.notificationRepo.MarkRead(ctx, id); err != nil {
		u.log.Warnf("Failed to mark notification %s read: %+v", id, err)
		return err
	}
	return nil
}

func (u *notificationUsecase) MarkAllRead(ctx context.Context) (int64, error) {
	actorID, _, err := actorFromContext(ctx)
	if err != nil {
		return 0, err
	}

	count, err := u.notificationRepo.MarkAllRead(ctx, actorID)
	if err != nil {
		u.log.Warnf("Failed to mark all notifications read for user %s: %+v", actorID, err)
		return 0, err
	}
	return count, nil
}

func (u *notificationUsecase) ApplyAction(ctx context.Context, id uuid.UUID, req *dto.ApplyActionRequest) error {
	actorID, _, err := actorFromContext(ctx)
	if err != nil {
		return err
	}

	notification, err := u.notificationRepo.FindByID(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to find notification %s: %+v", id, err)
		return err
	}
	if notification == nil {
		return apperror.NotFound("notification not found")
	}
	if notification.UserID != actorID {
		return apperror.Authorization("notification does not belong to you")
	}

	action, err := ParseNotificationAction(req.Action)
	if err != nil {
		return err
	}

	if notification.RelatedType == entity.RelatedTypeAppointment && notification.RelatedID != nil {
		if err := u.dispatchAppointmentAction(ctx, *notification.RelatedID, action, req.Data); err != nil {
			return err
		}
	}

	if !notification.IsRead {
		if err := u.notificationRepo.MarkRead(ctx, id); err != nil {
			u.log.Warnf("Failed to mark notification %s read after action: %+v", id, err)
			return err
		}
	}
	return nil
}

func (u *notificationUsecase) dispatchAppointmentAction(ctx context.Context, appointmentID uuid.UUID, action NotificationAction, data map[string]interface{}) error {
	switch action {
	case ActionConfirm:
		_, err := u.scheduling.UpdateAppointment(ctx, appointmentID, &dto.UpdateAppointmentRequest{
			Status: string(entity.AppointmentStatusConfirmed),
		})
		return err
	case ActionReject:
		_, err := u.scheduling.UpdateAppointment(ctx, appointmentID, &dto.UpdateAppointmentRequest{
			Status: string(entity.AppointmentStatusCancelled),
			Reason: stringField(data, "reason"),
		})
		return err
	case ActionReschedule:
		date := stringField(data, "date")
		timeOfDay := stringField(data, "time")
		if date == "" && timeOfDay == "" {
			return apperror.Validation("reschedule requires a date or time")
		}
		_, err := u.scheduling.UpdateAppointment(ctx, appointmentID, &dto.UpdateAppointmentRequest{
			Date: date,
			Time: timeOfDay,
		})
		return err
	case ActionView, ActionPay:
		// No engine dispatch; the action only acknowledges the notice
		return nil
	}
	return apperror.Validation(fmt.Sprintf("unknown notification action %q", action))
}

func stringField(data map[string]interface{}, key string) string {
	if data == nil {
		return ""
	}
	if v, ok := data[key].(string); ok {
		return v
	}
	return ""
}
