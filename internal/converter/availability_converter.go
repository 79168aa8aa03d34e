package converter

import (
	"clinic-appointment-system/internal/delivery/dto"
	"clinic-appointment-system/internal/domain/entity"
)

// OverrideToResponse converts an AvailabilityOverride entity to OverrideResponse DTO
func OverrideToResponse(override *entity.AvailabilityOverride) *dto.OverrideResponse {
	if override == nil {
		return nil
	}

	return &dto.OverrideResponse{
		ID:                   override.ID,
		DoctorID:             override.DoctorID,
		Date:                 override.Date.Format("2006-01-02"),
		IsAvailable:          override.IsAvailable,
		Reason:               override.Reason,
		EmergencyOnly:        override.EmergencyOnly,
		UnavailableTimeSlots: override.UnavailableTimeSlots,
		CreatedAt:            override.CreatedAt,
		UpdatedAt:            override.UpdatedAt,
	}
}

// OverridesToResponses converts a slice of AvailabilityOverride entities to slice of OverrideResponse DTOs
func OverridesToResponses(overrides []entity.AvailabilityOverride) []dto.OverrideResponse {
	responses := make([]dto.OverrideResponse, len(overrides))
	for i, override := range overrides {
		resp := OverrideToResponse(&override)
		if resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}
