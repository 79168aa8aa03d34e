package usecase

import (
	"context"
	"strings"
	"time"

	"clinic-appointment-system/internal/converter"
	"clinic-appointment-system/internal/delivery/dto"
	"clinic-appointment-system/internal/domain/entity"
	"clinic-appointment-system/internal/domain/repository"
	"clinic-appointment-system/internal/service"
	"clinic-appointment-system/pkg/apperror"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type AvailabilityUsecase interface {
	// GetAvailability returns the override rows for the doctor in
	// [from, to], ordered by date. Read-only.
	GetAvailability(ctx context.Context, doctorID uuid.UUID, from, to string) (*dto.AvailabilityListResponse, error)
	// ResolveAvailability answers "is doctor D bookable on date T".
	// No override row means available.
	ResolveAvailability(ctx context.Context, doctorID uuid.UUID, date string) (entity.AvailabilityStatus, error)
	// SetUnavailable upserts one override per date and, unless the
	// declaration is emergency-only, cascades cancellation of the
	// doctor's existing appointments on each date.
	SetUnavailable(ctx context.Context, req *dto.SetUnavailableRequest) (*dto.SetUnavailableResponse, error)
	// ClearUnavailability deletes the override, restoring default
	// availability. Appointments cancelled by an earlier cascade stay
	// cancelled.
	ClearUnavailability(ctx context.Context, overrideID uuid.UUID) error
}

type availabilityUsecase struct {
	log              *logrus.Logger
	availabilityRepo repository.AvailabilityRepository
	doctorRepo       repository.DoctorProfileRepository
	scheduling       SchedulingUsecase
	audit            service.AuditService
}

func NewAvailabilityUsecase(
	log *logrus.Logger,
	availabilityRepo repository.AvailabilityRepository,
	doctorRepo repository.DoctorProfileRepository,
	scheduling SchedulingUsecase,
	audit service.AuditService,
) AvailabilityUsecase {
	return &availabilityUsecase{
		log:              log,
		availabilityRepo: availabilityRepo,
		doctorRepo:       doctorRepo,
		scheduling:       scheduling,
		audit:            audit,
	}
}

func (u *availabilityUsecase) GetAvailability(ctx context.Context, doctorID uuid.UUID, from, to string) (*dto.AvailabilityListResponse, error) {
	fromDate, err := time.Parse(dateLayout, from)
	if err != nil {
		return nil, apperror.Validation("invalid date format, use YYYY-MM-DD")
	}
	toDate, err := time.Parse(dateLayout, to)
	if err != nil {
		return nil, apperror.Validation("invalid date format, use YYYY-MM-DD")
	}
	if toDate.Before(fromDate) {
		return nil, apperror.Validation("date range end precedes start")
	}

	overrides, err := u.availabilityRepo.FindByDoctorInRange(ctx, doctorID, fromDate, toDate)
	if err != nil {
		u.log.Warnf("Failed to list overrides for doctor %s: %+v", doctorID, err)
		return nil, err
	}

	return &dto.AvailabilityListResponse{
		Overrides: converter.OverridesToResponses(overrides),
		Total:     len(overrides),
	}, nil
}

func (u *availabilityUsecase) ResolveAvailability(ctx context.Context, doctorID uuid.UUID, date string) (entity.AvailabilityStatus, error) {
	day, err := time.Parse(dateLayout, date)
	if err != nil {
		return entity.AvailabilityStatus{}, apperror.Validation("invalid date format, use YYYY-MM-DD")
	}

	override, err := u.availabilityRepo.FindByDoctorAndDate(ctx, doctorID, day)
	if err != nil {
		u.log.Warnf("Failed to resolve availability for doctor %s: %+v", doctorID, err)
		return entity.AvailabilityStatus{}, err
	}
	if override == nil {
		return entity.AvailableStatus(), nil
	}
	return entity.UnavailableStatus(override.Reason, override.EmergencyOnly), nil
}

func (u *availabilityUsecase) SetUnavailable(ctx context.Context, req *dto.SetUnavailableRequest) (*dto.SetUnavailableResponse, error) {
	actorID, roleID, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	doctorID := actorID
	switch roleID {
	case entity.RoleIDDoctor:
		// Doctors only declare for themselves
	case entity.RoleIDAdmin:
		if req.DoctorID == nil {
			return nil, apperror.Validation("doctorId is required for staff calls")
		}
		doctorID = *req.DoctorID
	default:
		return nil, apperror.Authorization("only doctors or staff may declare unavailability")
	}

	if len(req.Dates) == 0 {
		return nil, apperror.Validation("dates is required")
	}
	if strings.TrimSpace(req.Reason) == "" {
		return nil, apperror.Validation("reason is required")
	}

	doctor, err := u.doctorRepo.FindByUserID(ctx, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", doctorID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, apperror.NotFound("doctor not found")
	}

	dates := make([]time.Time, 0, len(req.Dates))
	for _, d := range req.Dates {
		date, err := time.Parse(dateLayout, d)
		if err != nil {
			return nil, apperror.Validation("invalid date format, use YYYY-MM-DD")
		}
		dates = append(dates, date)
	}

	response := &dto.SetUnavailableResponse{
		Overrides: make([]dto.OverrideResponse, 0, len(dates)),
	}

	for _, date := range dates {
		override := &entity.AvailabilityOverride{
			DoctorID:             doctorID,
			Date:                 date,
			IsAvailable:          false,
			Reason:               req.Reason,
			EmergencyOnly:        req.EmergencyOnly,
			UnavailableTimeSlots: req.UnavailableTimeSlots,
		}
		if err := u.availabilityRepo.Upsert(ctx, override); err != nil {
			u.log.Warnf("Failed to upsert override doctor=%s date=%s: %+v", doctorID, date.Format(dateLayout), err)
			return nil, err
		}

		// Reload: on a conflicting upsert the stored row keeps its id
		stored, err := u.availabilityRepo.FindByDoctorAndDate(ctx, doctorID, date)
		if err != nil {
			u.log.Warnf("Failed to reload override doctor=%s date=%s: %+v", doctorID, date.Format(dateLayout), err)
			return nil, err
		}
		if stored != nil {
			response.Overrides = append(response.Overrides, *converter.OverrideToResponse(stored))
		}

		// Emergency-only keeps previously booked routine visits; a full
		// block cancels them and notifies each patient.
		if !req.EmergencyOnly {
			cascade, err := u.scheduling.CancelCascade(ctx, doctorID, date, req.Reason)
			if err != nil {
				u.log.Warnf("Cascade failed for doctor=%s date=%s: %+v", doctorID, date.Format(dateLayout), err)
			}
			response.CascadeSummary.Add(cascade)
		}
	}

	u.audit.Record(ctx, &actorID, entity.AuditActionAvailabilitySet, "doctor", doctorID.String(), entity.JSON{
		"dates":          req.Dates,
		"reason":         req.Reason,
		"emergency_only": req.EmergencyOnly,
	})
	u.log.Infof("Doctor %s unavailable on %d date(s), emergencyOnly=%t", doctorID, len(dates), req.EmergencyOnly)

	return response, nil
}

func (u *availabilityUsecase) ClearUnavailability(ctx context.Context, overrideID uuid.UUID) error {
	actorID, roleID, err := actorFromContext(ctx)
	if err != nil {
		return err
	}

	override, err := u.availabilityRepo.FindByID(ctx, overrideID)
	if err != nil {
		u.log.Warnf("Failed to find override %s: %+v", overrideID, err)
		return err
	}
	if override == nil {
		return apperror.NotFound("availability override not found")
	}
	if roleID != entity.RoleIDAdmin && override.DoctorID != actorID {
		return apperror.Authorization("override does not belong to you")
	}

	if err := u.availabilityRepo.Delete(ctx, overrideID); err != nil {
		u.log.Warnf("Failed to delete override %s: %+v", overrideID, err)
		return err
	}

	u.audit.Record(ctx, &actorID, entity.AuditActionAvailabilityClear, "availability_override", overrideID.String(), entity.JSON{
		"doctor_id": override.DoctorID.String(),
		"date":      override.Date.Format(dateLayout),
	})
	u.log.Infof("Override cleared: id=%s doctor=%s", overrideID, override.DoctorID)
	return nil
}
