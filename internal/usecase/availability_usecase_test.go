package usecase

import (
	"testing"
	"time"

	"clinic-appointment-system/internal/delivery/dto"
	"clinic-appointment-system/internal/domain/entity"
	"clinic-appointment-system/pkg/apperror"

	"github.com/google/uuid"
)

type availabilityFixture struct {
	*schedulingFixture
	usecase AvailabilityUsecase
}

func newAvailabilityFixture(t *testing.T) *availabilityFixture {
	t.Helper()
	base := newSchedulingFixture(t)
	return &availabilityFixture{
		schedulingFixture: base,
		usecase: NewAvailabilityUsecase(
			testLogger(),
			base.availabilityRepo,
			base.doctorRepo,
			base.usecase,
			base.audit,
		),
	}
}

func TestSetUnavailable_CascadesAndNotifies(t *testing.T) {
	f := newAvailabilityFixture(t)
	f.seed(t, entity.AppointmentStatusScheduled, "2030-06-10", "09:00")
	f.seed(t, entity.AppointmentStatusConfirmed, "2030-06-10", "10:00")
	untouched := f.seed(t, entity.AppointmentStatusScheduled, "2030-06-12", "09:00")

	resp, err := f.usecase.SetUnavailable(testCtx(f.doctorID, entity.RoleIDDoctor), &dto.SetUnavailableRequest{
		Dates:  []string{"2030-06-10"},
		Reason: "family emergency",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Overrides) != 1 {
		t.Fatalf("expected 1 override, got %d", len(resp.Overrides))
	}
	if resp.CascadeSummary.Cancelled != 2 || resp.CascadeSummary.Notified != 2 {
		t.Fatalf("unexpected cascade summary: %+v", resp.CascadeSummary)
	}

	ctx := testCtx(f.doctorID, entity.RoleIDDoctor)
	stored, _ := f.appointmentRepo.FindByID(ctx, untouched.ID)
	if stored.Status != entity.AppointmentStatusScheduled {
		t.Errorf("appointment on another date must survive, got %s", stored.Status)
	}

	notices := f.notificationRepo.byType(entity.NotificationTypeAppointmentCancelled)
	if len(notices) != 2 {
		t.Errorf("expected 2 cancellation notifications, got %d", len(notices))
	}
	if !f.audit.has(entity.AuditActionAvailabilitySet) {
		t.Error("expected an availability audit record")
	}
}

func TestSetUnavailable_EmergencyOnlyKeepsAppointments(t *testing.T) {
	f := newAvailabilityFixture(t)
	booked := f.seed(t, entity.AppointmentStatusConfirmed, "2030-06-10", "10:00")

	resp, err := f.usecase.SetUnavailable(testCtx(f.doctorID, entity.RoleIDDoctor), &dto.SetUnavailableRequest{
		Dates:         []string{"2030-06-10"},
		Reason:        "emergency surgeries only",
		EmergencyOnly: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.CascadeSummary.Cancelled != 0 {
		t.Fatalf("emergency-only must not cascade: %+v", resp.CascadeSummary)
	}

	stored, _ := f.appointmentRepo.FindByID(testCtx(f.doctorID, entity.RoleIDDoctor), booked.ID)
	if stored.Status != entity.AppointmentStatusConfirmed {
		t.Errorf("existing appointment must survive emergency-only, got %s", stored.Status)
	}
	if len(f.notificationRepo.byType(entity.NotificationTypeAppointmentCancelled)) != 0 {
		t.Error("emergency-only must not emit cancellation notifications")
	}

	// The override still blocks new routine bookings
	_, err = f.schedulingFixture.usecase.CreateAppointment(testCtx(f.patientID, entity.RoleIDPatient), &dto.CreateAppointmentRequest{
		DoctorID: f.doctorID,
		Date:     "2030-06-10",
		Time:     "14:00",
		Service:  "consultation",
	})
	assertKind(t, err, apperror.KindValidation)
}

func TestSetUnavailable_UpsertIsIdempotent(t *testing.T) {
	f := newAvailabilityFixture(t)
	ctx := testCtx(f.doctorID, entity.RoleIDDoctor)

	first, err := f.usecase.SetUnavailable(ctx, &dto.SetUnavailableRequest{
		Dates:  []string{"2030-06-10"},
		Reason: "conference",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := f.usecase.SetUnavailable(ctx, &dto.SetUnavailableRequest{
		Dates:  []string{"2030-06-10"},
		Reason: "extended conference",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.availabilityRepo.store) != 1 {
		t.Fatalf("expected a single override row, got %d", len(f.availabilityRepo.store))
	}
	if first.Overrides[0].ID != second.Overrides[0].ID {
		t.Error("re-declaring the same date must keep the stored row id")
	}
	if second.Overrides[0].Reason != "extended conference" {
		t.Errorf("reason should update in place, got %q", second.Overrides[0].Reason)
	}
}

func TestSetUnavailable_MultipleDates(t *testing.T) {
	f := newAvailabilityFixture(t)
	f.seed(t, entity.AppointmentStatusScheduled, "2030-06-10", "09:00")
	f.seed(t, entity.AppointmentStatusScheduled, "2030-06-11", "09:00")

	resp, err := f.usecase.SetUnavailable(testCtx(f.doctorID, entity.RoleIDDoctor), &dto.SetUnavailableRequest{
		Dates:  []string{"2030-06-10", "2030-06-11"},
		Reason: "travel",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Overrides) != 2 {
		t.Errorf("expected 2 overrides, got %d", len(resp.Overrides))
	}
	if resp.CascadeSummary.Cancelled != 2 {
		t.Errorf("expected both dates cascaded, got %+v", resp.CascadeSummary)
	}
}

func TestSetUnavailable_Validation(t *testing.T) {
	f := newAvailabilityFixture(t)
	doctorCtx := testCtx(f.doctorID, entity.RoleIDDoctor)

	_, err := f.usecase.SetUnavailable(doctorCtx, &dto.SetUnavailableRequest{Reason: "sick"})
	assertKind(t, err, apperror.KindValidation)

	_, err = f.usecase.SetUnavailable(doctorCtx, &dto.SetUnavailableRequest{Dates: []string{"2030-06-10"}, Reason: "   "})
	assertKind(t, err, apperror.KindValidation)

	_, err = f.usecase.SetUnavailable(doctorCtx, &dto.SetUnavailableRequest{Dates: []string{"June 10"}, Reason: "sick"})
	assertKind(t, err, apperror.KindValidation)

	// Admin calls must name the doctor
	_, err = f.usecase.SetUnavailable(testCtx(f.adminID, entity.RoleIDAdmin), &dto.SetUnavailableRequest{
		Dates: []string{"2030-06-10"}, Reason: "sick",
	})
	assertKind(t, err, apperror.KindValidation)

	// Patients cannot declare unavailability at all
	_, err = f.usecase.SetUnavailable(testCtx(f.patientID, entity.RoleIDPatient), &dto.SetUnavailableRequest{
		Dates: []string{"2030-06-10"}, Reason: "sick",
	})
	assertKind(t, err, apperror.KindAuthorization)
}

func TestSetUnavailable_AdminForDoctor(t *testing.T) {
	f := newAvailabilityFixture(t)

	resp, err := f.usecase.SetUnavailable(testCtx(f.adminID, entity.RoleIDAdmin), &dto.SetUnavailableRequest{
		DoctorID: &f.doctorID,
		Dates:    []string{"2030-06-10"},
		Reason:   "administrative leave",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Overrides[0].DoctorID != f.doctorID {
		t.Errorf("override should target the named doctor, got %s", resp.Overrides[0].DoctorID)
	}
}

func TestSetUnavailable_UnknownDoctor(t *testing.T) {
	f := newAvailabilityFixture(t)
	unknown := uuid.New()

	_, err := f.usecase.SetUnavailable(testCtx(f.adminID, entity.RoleIDAdmin), &dto.SetUnavailableRequest{
		DoctorID: &unknown,
		Dates:    []string{"2030-06-10"},
		Reason:   "sick",
	})
	assertKind(t, err, apperror.KindNotFound)
}

func TestResolveAvailability(t *testing.T) {
	f := newAvailabilityFixture(t)
	ctx := testCtx(f.patientID, entity.RoleIDPatient)

	status, err := f.usecase.ResolveAvailability(ctx, f.doctorID, "2030-06-10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !status.Available {
		t.Error("no override row means available")
	}

	date, _ := time.Parse("2006-01-02", "2030-06-10")
	f.availabilityRepo.store[uuid.New()] = &entity.AvailabilityOverride{
		ID:            uuid.New(),
		DoctorID:      f.doctorID,
		Date:          date,
		Reason:        "conference",
		EmergencyOnly: true,
	}

	status, err = f.usecase.ResolveAvailability(ctx, f.doctorID, "2030-06-10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.Available {
		t.Error("override row means unavailable")
	}
	if status.Reason != "conference" || !status.EmergencyOnly {
		t.Errorf("unexpected status: %+v", status)
	}

	_, err = f.usecase.ResolveAvailability(ctx, f.doctorID, "June 10")
	assertKind(t, err, apperror.KindValidation)
}

func TestGetAvailability(t *testing.T) {
	f := newAvailabilityFixture(t)
	ctx := testCtx(f.patientID, entity.RoleIDPatient)

	for _, d := range []string{"2030-06-10", "2030-06-11", "2030-07-01"} {
		date, _ := time.Parse("2006-01-02", d)
		f.availabilityRepo.store[uuid.New()] = &entity.AvailabilityOverride{
			ID: uuid.New(), DoctorID: f.doctorID, Date: date, Reason: "off",
		}
	}

	resp, err := f.usecase.GetAvailability(ctx, f.doctorID, "2030-06-01", "2030-06-30")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Total != 2 {
		t.Errorf("expected 2 overrides in June, got %d", resp.Total)
	}

	_, err = f.usecase.GetAvailability(ctx, f.doctorID, "2030-06-30", "2030-06-01")
	assertKind(t, err, apperror.KindValidation)

	_, err = f.usecase.GetAvailability(ctx, f.doctorID, "soon", "2030-06-30")
	assertKind(t, err, apperror.KindValidation)
}

func TestClearUnavailability(t *testing.T) {
	f := newAvailabilityFixture(t)
	date, _ := time.Parse("2006-01-02", "2030-06-10")
	override := &entity.AvailabilityOverride{
		ID: uuid.New(), DoctorID: f.doctorID, Date: date, Reason: "off",
	}
	f.availabilityRepo.store[override.ID] = override

	// Another doctor may not clear it
	err := f.usecase.ClearUnavailability(testCtx(uuid.New(), entity.RoleIDDoctor), override.ID)
	assertKind(t, err, apperror.KindAuthorization)

	if err := f.usecase.ClearUnavailability(testCtx(f.doctorID, entity.RoleIDDoctor), override.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.availabilityRepo.store) != 0 {
		t.Error("override should be deleted")
	}

	err = f.usecase.ClearUnavailability(testCtx(f.doctorID, entity.RoleIDDoctor), override.ID)
	assertKind(t, err, apperror.KindNotFound)
}

func TestClearUnavailability_AdminMayClearAny(t *testing.T) {
	f := newAvailabilityFixture(t)
	date, _ := time.Parse("2006-01-02", "2030-06-10")
	override := &entity.AvailabilityOverride{
		ID: uuid.New(), DoctorID: f.doctorID, Date: date, Reason: "off",
	}
	f.availabilityRepo.store[override.ID] = override

	if err := f.usecase.ClearUnavailability(testCtx(f.adminID, entity.RoleIDAdmin), override.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
