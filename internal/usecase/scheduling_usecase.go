package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"clinic-appointment-system/internal/converter"
	"clinic-appointment-system/internal/delivery/dto"
	"clinic-appointment-system/internal/delivery/http/middleware"
	"clinic-appointment-system/internal/domain/entity"
	"clinic-appointment-system/internal/domain/repository"
	"clinic-appointment-system/internal/service"
	"clinic-appointment-system/pkg/apperror"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"

	// cascadeWorkers bounds the fan-out of a cancel cascade. Each
	// appointment is cancelled and notified atomically on its own; the
	// cascade itself is deliberately not all-or-nothing.
	cascadeWorkers = 8

	releaseTimeout = 5 * time.Second
)

type SchedulingUsecase interface {
	CreateAppointment(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error)
	GetAppointment(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error)
	GetMyAppointments(ctx context.Context) (*dto.AppointmentListResponse, error)
	UpdateAppointment(ctx context.Context, id uuid.UUID, req *dto.UpdateAppointmentRequest) (*dto.AppointmentResponse, error)
	CancelAppointment(ctx context.Context, id uuid.UUID) error
	// CancelCascade cancels every scheduled/confirmed appointment for the
	// doctor on the date and notifies each affected patient. Invoked by the
	// availability ledger when a non-emergency-only override lands.
	CancelCascade(ctx context.Context, doctorID uuid.UUID, date time.Time, reason string) (dto.CascadeSummary, error)
}

type schedulingUsecase struct {
	log              *logrus.Logger
	appointmentRepo  repository.AppointmentRepository
	availabilityRepo repository.AvailabilityRepository
	userRepo         repository.UserRepository
	doctorRepo       repository.DoctorProfileRepository
	notificationRepo repository.NotificationRepository
	slotHolder       service.SlotHolder
	audit            service.AuditService
}

func NewSchedulingUsecase(
	log *logrus.Logger,
	appointmentRepo repository.AppointmentRepository,
	availabilityRepo repository.AvailabilityRepository,
	userRepo repository.UserRepository,
	doctorRepo repository.DoctorProfileRepository,
	notificationRepo repository.NotificationRepository,
	slotHolder service.SlotHolder,
	audit service.AuditService,
) SchedulingUsecase {
	return &schedulingUsecase{
		log:              log,
		appointmentRepo:  appointmentRepo,
		availabilityRepo: availabilityRepo,
		userRepo:         userRepo,
		doctorRepo:       doctorRepo,
		notificationRepo: notificationRepo,
		slotHolder:       slotHolder,
		audit:            audit,
	}
}

// CreateAppointment books a slot for a patient.
//
// Flow:
// 1. Resolve patient (self, or on-behalf for admin callers) and doctor
// 2. Reject dates the doctor declared unavailable
// 3. Redis slot hold (fast-path serialization of concurrent requests)
// 4. Conflict check + insert; the active-slot unique index makes the pair
//    indivisible even if two requests slip past the hold
// 5. Snapshot the doctor's consultation fee onto the appointment
func (u *schedulingUsecase) CreateAppointment(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error) {
	actorID, roleID, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	// Step 1: resolve who the appointment is for
	patientID := actorID
	var bookedBy *uuid.UUID
	staffAssisted := false
	if roleID == entity.RoleIDAdmin && req.PatientID != nil {
		patientID = *req.PatientID
		bookedBy = &actorID
		staffAssisted = true
	}

	patient, err := u.userRepo.FindByID(ctx, patientID)
	if err != nil {
		u.log.Warnf("Failed to find patient %s: %+v", patientID, err)
		return nil, err
	}
	if patient == nil {
		return nil, apperror.NotFound("patient not found")
	}
	if !patient.Active() {
		return nil, apperror.Authorization("patient account is inactive")
	}

	doctor, err := u.doctorRepo.FindByUserID(ctx, req.DoctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", req.DoctorID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, apperror.NotFound("doctor not found")
	}
	if !doctor.User.Active() {
		return nil, apperror.Authorization("doctor account is inactive")
	}

	date, timeOfDay, err := parseSlot(req.Date, req.Time)
	if err != nil {
		return nil, err
	}

	// Step 2: an override row means the doctor is off that day, for new
	// routine bookings emergency-only is just as closed
	override, err := u.availabilityRepo.FindByDoctorAndDate(ctx, req.DoctorID, date)
	if err != nil {
		u.log.Warnf("Failed to resolve availability for doctor %s on %s: %+v", req.DoctorID, req.Date, err)
		return nil, err
	}
	if override != nil {
		return nil, apperror.Validation(fmt.Sprintf("doctor is not available on this date: %s", override.Reason))
	}

	// Step 3: hold the slot while the insert is in flight
	token, err := u.slotHolder.Acquire(ctx, req.DoctorID, req.Date, req.Time)
	if err != nil {
		if errors.Is(err, service.ErrSlotHeld) {
			return nil, apperror.SlotConflict()
		}
		u.log.Warnf("Failed to acquire slot hold for doctor %s: %+v", req.DoctorID, err)
		return nil, err
	}
	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
		defer cancel()
		if releaseErr := u.slotHolder.Release(releaseCtx, req.DoctorID, req.Date, req.Time, token); releaseErr != nil {
			u.log.Warnf("Failed to release slot hold for doctor %s (non-fatal): %+v", req.DoctorID, releaseErr)
		}
	}()

	// Step 4: conflict check; cancelled rows never block a slot
	existing, err := u.appointmentRepo.FindActiveBySlot(ctx, req.DoctorID, date, timeOfDay)
	if err != nil {
		u.log.Warnf("Failed to check slot occupancy: %+v", err)
		return nil, err
	}
	if existing != nil {
		return nil, apperror.SlotConflict()
	}

	duration := req.Duration
	if duration == 0 {
		duration = entity.DefaultDurationMinutes
	}

	// Step 5: insert with the fee snapshotted from the doctor's current rate
	appointment := &entity.Appointment{
		PatientID: patientID,
		DoctorID:  req.DoctorID,
		Date:      date,
		Time:      timeOfDay,
		Service:   req.Service,
		Reason:    req.Reason,
		Status:    entity.AppointmentStatusScheduled,
		Duration:  duration,
		Fee:       doctor.ConsultationFee,
		BookedBy:  bookedBy,
	}

	if err := u.appointmentRepo.Create(ctx, appointment); err != nil {
		if apperror.IsKind(err, apperror.KindSlotConflict) {
			return nil, err
		}
		u.log.Errorf("Failed to insert appointment: %+v", err)
		return nil, err
	}

	u.audit.Record(ctx, &actorID, entity.AuditActionAppointmentCreate, "appointment", appointment.ID.String(), entity.JSON{
		"doctor_id": req.DoctorID.String(),
		"date":      req.Date,
		"time":      req.Time,
	})

	// Staff-assisted bookings ask the doctor to confirm; a patient's own
	// request creates no notification.
	if staffAssisted {
		u.emitNotification(ctx, &entity.Notification{
			UserID:         req.DoctorID,
			Type:           entity.NotificationTypeAppointmentRequest,
			Title:          "New Appointment Request",
			Message:        fmt.Sprintf("%s requested %s on %s at %s", patient.FullName, req.Service, req.Date, req.Time),
			RelatedID:      &appointment.ID,
			RelatedType:    entity.RelatedTypeAppointment,
			Priority:       entity.NotificationPriorityMedium,
			ActionRequired: true,
			ActionType:     entity.NotificationActionConfirm,
		})
	}

	u.log.Infof("Appointment created: id=%s, doctor=%s, slot=%s %s", appointment.ID, req.DoctorID, req.Date, req.Time)

	full, err := u.appointmentRepo.FindByID(ctx, appointment.ID)
	if err != nil || full == nil {
		// Return basic response if reload fails
		u.log.Warnf("Failed to reload appointment %s: %+v", appointment.ID, err)
		return converter.AppointmentToResponse(appointment), nil
	}
	return converter.AppointmentToResponse(full), nil
}

func (u *schedulingUsecase) GetAppointment(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error) {
	actorID, roleID, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	appointment, err := u.appointmentRepo.FindByID(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", id, err)
		return nil, err
	}
	if appointment == nil {
		return nil, apperror.NotFound("appointment not found")
	}
	if err := authorizeActor(appointment, actorID, roleID); err != nil {
		return nil, err
	}

	return converter.AppointmentToResponse(appointment), nil
}

func (u *schedulingUsecase) GetMyAppointments(ctx context.Context) (*dto.AppointmentListResponse, error) {
	actorID, roleID, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var (
		appointments []entity.Appointment
	)
	if roleID == entity.RoleIDDoctor {
		appointments, err = u.appointmentRepo.FindByDoctorID(ctx, actorID)
	} else {
		appointments, err = u.appointmentRepo.FindByPatientID(ctx, actorID)
	}
	if err != nil {
		u.log.Warnf("Failed to list appointments for %s: %+v", actorID, err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        len(appointments),
	}, nil
}

// UpdateAppointment patches fields and, when the patch carries a status,
// runs the transition through the state machine. Terminal rows reject
// every change.
func (u *schedulingUsecase) UpdateAppointment(ctx context.Context, id uuid.UUID, req *dto.UpdateAppointmentRequest) (*dto.AppointmentResponse, error) {
	actorID, roleID, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	appointment, err := u.appointmentRepo.FindByID(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", id, err)
		return nil, err
	}
	if appointment == nil {
		return nil, apperror.NotFound("appointment not found")
	}

	if err := authorizeActor(appointment, actorID, roleID); err != nil {
		return nil, err
	}

	if appointment.Status.IsTerminal() {
		return nil, apperror.InvalidStateTransition(
			fmt.Sprintf("appointment is already %s", appointment.Status))
	}

	prevStatus := appointment.Status

	// Slot move: re-validate exclusivity for the new slot
	if req.Date != "" || req.Time != "" {
		newDateStr := req.Date
		if newDateStr == "" {
			newDateStr = appointment.Date.Format(dateLayout)
		}
		newTimeStr := req.Time
		if newTimeStr == "" {
			newTimeStr = appointment.Time
		}
		newDate, newTime, err := parseSlot(newDateStr, newTimeStr)
		if err != nil {
			return nil, err
		}

		occupant, err := u.appointmentRepo.FindActiveBySlot(ctx, appointment.DoctorID, newDate, newTime)
		if err != nil {
			u.log.Warnf("Failed to check slot occupancy: %+v", err)
			return nil, err
		}
		if occupant != nil && occupant.ID != appointment.ID {
			return nil, apperror.SlotConflict()
		}

		appointment.Date = newDate
		appointment.Time = newTime
	}

	if req.Service != "" {
		appointment.Service = req.Service
	}
	if req.Reason != "" {
		appointment.Reason = req.Reason
	}
	if req.Notes != "" {
		appointment.Notes = req.Notes
	}

	rejected := false
	if req.Status != "" && entity.AppointmentStatus(req.Status) != prevStatus {
		next, err := parseStatus(req.Status)
		if err != nil {
			return nil, err
		}

		if !appointment.CanTransitionTo(next) {
			return nil, apperror.InvalidStateTransition(
				fmt.Sprintf("cannot move a %s appointment to %s", prevStatus, next))
		}

		// Confirmation, completion and no-show are clinic-side decisions
		if next != entity.AppointmentStatusCancelled && roleID == entity.RoleIDPatient {
			return nil, apperror.Authorization("only the doctor or staff may set this status")
		}

		if next == entity.AppointmentStatusNoShow && !slotHasPassed(appointment.Date, appointment.Time) {
			return nil, apperror.InvalidStateTransition("cannot mark an appointment as no-show before its date has passed")
		}

		// A doctor/admin cancellation carrying a reason is a rejection
		rejected = next == entity.AppointmentStatusCancelled &&
			roleID != entity.RoleIDPatient && req.Reason != ""

		appointment.Status = next
	}

	if err := u.appointmentRepo.Update(ctx, appointment); err != nil {
		u.log.Warnf("Failed to update appointment %s: %+v", id, err)
		return nil, err
	}

	switch {
	case appointment.Status == entity.AppointmentStatusConfirmed && prevStatus != entity.AppointmentStatusConfirmed:
		u.emitNotification(ctx, &entity.Notification{
			UserID:      appointment.PatientID,
			Type:        entity.NotificationTypeAppointmentConfirmed,
			Title:       "Appointment Confirmed",
			Message:     fmt.Sprintf("Your appointment on %s at %s has been confirmed", appointment.Date.Format(dateLayout), appointment.Time),
			RelatedID:   &appointment.ID,
			RelatedType: entity.RelatedTypeAppointment,
			Priority:    entity.NotificationPriorityMedium,
		})
	case rejected:
		u.emitNotification(ctx, &entity.Notification{
			UserID:         appointment.PatientID,
			Type:           entity.NotificationTypeAppointmentRejected,
			Title:          "Appointment Rejected",
			Message:        fmt.Sprintf("Your appointment on %s at %s was rejected: %s", appointment.Date.Format(dateLayout), appointment.Time, req.Reason),
			RelatedID:      &appointment.ID,
			RelatedType:    entity.RelatedTypeAppointment,
			Priority:       entity.NotificationPriorityHigh,
			ActionRequired: true,
			ActionType:     entity.NotificationActionReschedule,
		})
	}

	if appointment.Status != prevStatus {
		u.audit.Record(ctx, &actorID, auditActionForStatus(appointment.Status), "appointment", appointment.ID.String(), entity.JSON{
			"from": string(prevStatus),
			"to":   string(appointment.Status),
		})
		u.log.Infof("Appointment %s: %s -> %s", appointment.ID, prevStatus, appointment.Status)
	} else {
		u.audit.Record(ctx, &actorID, entity.AuditActionAppointmentUpdate, "appointment", appointment.ID.String(), nil)
	}

	return converter.AppointmentToResponse(appointment), nil
}

// CancelAppointment sets the appointment to cancelled. Patients may only
// cancel their own; the row is retained for audit.
func (u *schedulingUsecase) CancelAppointment(ctx context.Context, id uuid.UUID) error {
	actorID, roleID, err := actorFromContext(ctx)
	if err != nil {
		return err
	}

	appointment, err := u.appointmentRepo.FindByID(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", id, err)
		return err
	}
	if appointment == nil {
		return apperror.NotFound("appointment not found")
	}

	if err := authorizeActor(appointment, actorID, roleID); err != nil {
		return err
	}

	if appointment.Status.IsTerminal() {
		return apperror.InvalidStateTransition(
			fmt.Sprintf("appointment is already %s", appointment.Status))
	}

	rows, err := u.appointmentRepo.CancelWithNotes(ctx, id, appointment.Notes)
	if err != nil {
		u.log.Warnf("Failed to cancel appointment %s: %+v", id, err)
		return err
	}
	if rows == 0 {
		// Lost a race with another terminal transition
		return apperror.InvalidStateTransition("appointment is no longer active")
	}

	u.audit.Record(ctx, &actorID, entity.AuditActionAppointmentCancel, "appointment", id.String(), nil)
	u.log.Infof("Appointment cancelled: id=%s", id)
	return nil
}

// CancelCascade cancels every active appointment on (doctorID, date) and
// notifies each patient. Per-appointment failures are collected into the
// summary instead of aborting the batch: cascades touch independent
// patients and partial progress beats none.
func (u *schedulingUsecase) CancelCascade(ctx context.Context, doctorID uuid.UUID, date time.Time, reason string) (dto.CascadeSummary, error) {
	var summary dto.CascadeSummary

	appointments, err := u.appointmentRepo.FindActiveByDoctorDate(ctx, doctorID, date)
	if err != nil {
		u.log.Warnf("Failed to list appointments for cascade doctor=%s date=%s: %+v", doctorID, date.Format(dateLayout), err)
		return summary, err
	}
	if len(appointments) == 0 {
		return summary, nil
	}

	doctorName := ""
	if doctor, err := u.doctorRepo.FindByUserID(ctx, doctorID); err == nil && doctor != nil {
		doctorName = doctor.User.FullName
	}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, cascadeWorkers)
	)

	for i := range appointments {
		appointment := appointments[i]
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			notes := fmt.Sprintf("Doctor unavailable: %s", reason)
			rows, err := u.appointmentRepo.CancelWithNotes(ctx, appointment.ID, notes)
			if err != nil {
				u.log.Warnf("Cascade failed to cancel appointment %s: %+v", appointment.ID, err)
				mu.Lock()
				summary.Failed++
				mu.Unlock()
				return
			}
			if rows == 0 {
				// Already moved to a terminal state by someone else
				return
			}

			notified := u.emitNotification(ctx, &entity.Notification{
				UserID:         appointment.PatientID,
				Type:           entity.NotificationTypeAppointmentCancelled,
				Title:          "Appointment Cancelled",
				Message:        fmt.Sprintf("Your appointment on %s at %s was cancelled: doctor unavailable (%s)", appointment.Date.Format(dateLayout), appointment.Time, reason),
				RelatedID:      &appointment.ID,
				RelatedType:    entity.RelatedTypeAppointment,
				Priority:       entity.NotificationPriorityHigh,
				ActionRequired: true,
				ActionType:     entity.NotificationActionReschedule,
				Metadata: entity.JSON{
					"originalDate": appointment.Date.Format(dateLayout),
					"originalTime": appointment.Time,
					"doctorName":   doctorName,
				},
			})

			mu.Lock()
			summary.Cancelled++
			if notified {
				summary.Notified++
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	u.audit.Record(ctx, nil, entity.AuditActionCascadeCancel, "doctor", doctorID.String(), entity.JSON{
		"date":      date.Format(dateLayout),
		"reason":    reason,
		"cancelled": summary.Cancelled,
		"failed":    summary.Failed,
	})
	u.log.Infof("Cascade for doctor %s on %s: cancelled=%d failed=%d notified=%d",
		doctorID, date.Format(dateLayout), summary.Cancelled, summary.Failed, summary.Notified)

	return summary, nil
}

// emitNotification persists a notice; a failed insert is logged and never
// unwinds the scheduling transition that triggered it.
func (u *schedulingUsecase) emitNotification(ctx context.Context, notification *entity.Notification) bool {
	if err := u.notificationRepo.Create(ctx, notification); err != nil {
		u.log.Warnf("Failed to create %s notification for user %s: %+v", notification.Type, notification.UserID, err)
		return false
	}
	return true
}

func actorFromContext(ctx context.Context) (uuid.UUID, int, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return uuid.Nil, 0, apperror.Authorization("user not found in context")
	}
	roleID, ok := middleware.GetRoleIDFromContext(ctx)
	if !ok {
		return uuid.Nil, 0, apperror.Authorization("role not found in context")
	}
	return userID, roleID, nil
}

// authorizeActor permits the appointment's patient, its doctor, or admin.
func authorizeActor(appointment *entity.Appointment, actorID uuid.UUID, roleID int) error {
	if roleID == entity.RoleIDAdmin {
		return nil
	}
	if actorID == appointment.PatientID || actorID == appointment.DoctorID {
		return nil
	}
	return apperror.Authorization("you do not have access to this appointment")
}

func parseSlot(dateStr, timeStr string) (time.Time, string, error) {
	date, err := time.Parse(dateLayout, dateStr)
	if err != nil {
		return time.Time{}, "", apperror.Validation("invalid date format, use YYYY-MM-DD")
	}
	if _, err := time.Parse(timeLayout, timeStr); err != nil {
		return time.Time{}, "", apperror.Validation("invalid time format, use HH:MM")
	}
	return date, timeStr, nil
}

func parseStatus(s string) (entity.AppointmentStatus, error) {
	status := entity.AppointmentStatus(s)
	switch status {
	case entity.AppointmentStatusScheduled,
		entity.AppointmentStatusConfirmed,
		entity.AppointmentStatusCompleted,
		entity.AppointmentStatusCancelled,
		entity.AppointmentStatusNoShow:
		return status, nil
	}
	return "", apperror.Validation(fmt.Sprintf("unknown appointment status %q", s))
}

func slotHasPassed(date time.Time, timeOfDay string) bool {
	t, err := time.Parse(timeLayout, timeOfDay)
	if err != nil {
		return date.Before(time.Now().UTC().Truncate(24 * time.Hour))
	}
	slot := time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC)
	return slot.Before(time.Now().UTC())
}

func auditActionForStatus(status entity.AppointmentStatus) string {
	switch status {
	case entity.AppointmentStatusConfirmed:
		return entity.AuditActionAppointmentConfirm
	case entity.AppointmentStatusCompleted:
		return entity.AuditActionAppointmentComplete
	case entity.AppointmentStatusCancelled:
		return entity.AuditActionAppointmentCancel
	case entity.AppointmentStatusNoShow:
		return entity.AuditActionAppointmentNoShow
	}
	return entity.AuditActionAppointmentUpdate
}
