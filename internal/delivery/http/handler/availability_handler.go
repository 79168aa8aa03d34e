package handler

import (
	"encoding/json"
	"net/http"

	"clinic-appointment-system/internal/delivery/dto"
	"clinic-appointment-system/internal/usecase"
	"clinic-appointment-system/pkg/apperror"
	"clinic-appointment-system/pkg/response"
	"clinic-appointment-system/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type AvailabilityHandler struct {
	availabilityUsecase usecase.AvailabilityUsecase
	validator           *validator.CustomValidator
}

func NewAvailabilityHandler(availabilityUsecase usecase.AvailabilityUsecase, validator *validator.CustomValidator) *AvailabilityHandler {
	return &AvailabilityHandler{
		availabilityUsecase: availabilityUsecase,
		validator:           validator,
	}
}

func (h *AvailabilityHandler) SetUnavailable(w http.ResponseWriter, r *http.Request) {
	var req dto.SetUnavailableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	result, err := h.availabilityUsecase.SetUnavailable(r.Context(), &req)
	if err != nil {
		h.respondError(w, err, "Failed to set unavailability")
		return
	}

	response.Success(w, http.StatusCreated, "Unavailability recorded successfully", result)
}

func (h *AvailabilityHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	doctorID, err := uuid.Parse(vars["doctorId"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid doctor ID", nil)
		return
	}

	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")

	result, err := h.availabilityUsecase.GetAvailability(r.Context(), doctorID, from, to)
	if err != nil {
		h.respondError(w, err, "Failed to get availability")
		return
	}

	response.Success(w, http.StatusOK, "Availability retrieved successfully", result)
}

func (h *AvailabilityHandler) ResolveAvailability(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	doctorID, err := uuid.Parse(vars["doctorId"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid doctor ID", nil)
		return
	}

	date := r.URL.Query().Get("date")

	status, err := h.availabilityUsecase.ResolveAvailability(r.Context(), doctorID, date)
	if err != nil {
		h.respondError(w, err, "Failed to resolve availability")
		return
	}

	response.Success(w, http.StatusOK, "Availability resolved successfully", status)
}

func (h *AvailabilityHandler) ClearUnavailability(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	overrideID, err := uuid.Parse(vars["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid override ID", nil)
		return
	}

	if err := h.availabilityUsecase.ClearUnavailability(r.Context(), overrideID); err != nil {
		h.respondError(w, err, "Failed to clear unavailability")
		return
	}

	response.Success(w, http.StatusOK, "Unavailability cleared successfully", nil)
}

func (h *AvailabilityHandler) respondError(w http.ResponseWriter, err error, fallback string) {
	if apperror.KindOf(err) != "" {
		response.FromError(w, err)
		return
	}
	response.InternalServerError(w, fallback)
}
