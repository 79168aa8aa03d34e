package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"clinic-appointment-system/internal/delivery/dto"
	"clinic-appointment-system/internal/usecase"
	"clinic-appointment-system/pkg/apperror"
	"clinic-appointment-system/pkg/response"
	"clinic-appointment-system/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type NotificationHandler struct {
	notificationUsecase usecase.NotificationUsecase
	validator           *validator.CustomValidator
}

func NewNotificationHandler(notificationUsecase usecase.NotificationUsecase, validator *validator.CustomValidator) *NotificationHandler {
	return &NotificationHandler{
		notificationUsecase: notificationUsecase,
		validator:           validator,
	}
}

func (h *NotificationHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	unreadOnly := query.Get("unreadOnly") == "true"
	page, _ := strconv.Atoi(query.Get("page"))
	limit, _ := strconv.Atoi(query.Get("limit"))

	result, err := h.notificationUsecase.ListForUser(r.Context(), unreadOnly, page, limit)
	if err != nil {
		h.respondError(w, err, "Failed to list notifications")
		return
	}

	response.Success(w, http.StatusOK, "Notifications retrieved successfully", result)
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := uuid.Parse(vars["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid notification ID", nil)
		return
	}

	if err := h.notificationUsecase.MarkRead(r.Context(), id); err != nil {
		h.respondError(w, err, "Failed to mark notification read")
		return
	}

	response.Success(w, http.StatusOK, "Notification marked as read", nil)
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	count, err := h.notificationUsecase.MarkAllRead(r.Context())
	if err != nil {
		h.respondError(w, err, "Failed to mark notifications read")
		return
	}

	response.Success(w, http.StatusOK, "Notifications marked as read", map[string]int64{"updated": count})
}

func (h *NotificationHandler) ApplyAction(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := uuid.Parse(vars["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid notification ID", nil)
		return
	}

	var req dto.ApplyActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	if err := h.notificationUsecase.ApplyAction(r.Context(), id, &req); err != nil {
		h.respondError(w, err, "Failed to apply notification action")
		return
	}

	response.Success(w, http.StatusOK, "Notification action applied", nil)
}

func (h *NotificationHandler) respondError(w http.ResponseWriter, err error, fallback string) {
	if apperror.KindOf(err) != "" {
		response.FromError(w, err)
		return
	}
	response.InternalServerError(w, fallback)
}
