package usecase

import (
	"testing"

	"clinic-appointment-system/internal/delivery/dto"
	"clinic-appointment-system/internal/domain/entity"
	"clinic-appointment-system/pkg/apperror"

	"github.com/google/uuid"
)

type notificationFixture struct {
	*schedulingFixture
	usecase NotificationUsecase
}

func newNotificationFixture(t *testing.T) *notificationFixture {
	t.Helper()
	base := newSchedulingFixture(t)
	return &notificationFixture{
		schedulingFixture: base,
		usecase: NewNotificationUsecase(
			testLogger(),
			base.notificationRepo,
			base.usecase,
		),
	}
}

// notify stores a notification addressed to userID, optionally linked to
// an appointment.
func (f *notificationFixture) notify(t *testing.T, userID uuid.UUID, relatedID *uuid.UUID) *entity.Notification {
	t.Helper()
	n := &entity.Notification{
		UserID:   userID,
		Type:     entity.NotificationTypeAppointmentRequest,
		Title:    "New Appointment Request",
		Priority: entity.NotificationPriorityMedium,
	}
	if relatedID != nil {
		n.RelatedID = relatedID
		n.RelatedType = entity.RelatedTypeAppointment
	}
	if err := f.notificationRepo.Create(testCtx(userID, entity.RoleIDPatient), n); err != nil {
		t.Fatalf("failed to store notification: %v", err)
	}
	return n
}

func TestNotificationCreate_Validation(t *testing.T) {
	f := newNotificationFixture(t)
	ctx := testCtx(f.patientID, entity.RoleIDPatient)

	_, err := f.usecase.Create(ctx, &entity.Notification{Type: entity.NotificationTypeUrgentNotice})
	assertKind(t, err, apperror.KindValidation)

	_, err = f.usecase.Create(ctx, &entity.Notification{UserID: f.patientID})
	assertKind(t, err, apperror.KindValidation)

	resp, err := f.usecase.Create(ctx, &entity.Notification{
		UserID: f.patientID,
		Type:   entity.NotificationTypeAppointmentReminder,
		Title:  "Reminder",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Priority != string(entity.NotificationPriorityMedium) {
		t.Errorf("expected default medium priority, got %s", resp.Priority)
	}
}

func TestMarkRead_Idempotent(t *testing.T) {
	f := newNotificationFixture(t)
	n := f.notify(t, f.patientID, nil)
	ctx := testCtx(f.patientID, entity.RoleIDPatient)

	if err := f.usecase.MarkRead(ctx, n.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stored, _ := f.notificationRepo.FindByID(ctx, n.ID)
	if !stored.IsRead || stored.ReadAt == nil {
		t.Fatal("expected notification marked read with a timestamp")
	}
	firstReadAt := *stored.ReadAt

	// Reading again is a no-op, not an error
	if err := f.usecase.MarkRead(ctx, n.ID); err != nil {
		t.Fatalf("second mark-read must be a no-op: %v", err)
	}
	stored, _ = f.notificationRepo.FindByID(ctx, n.ID)
	if !stored.ReadAt.Equal(firstReadAt) {
		t.Error("readAt must not move on re-read")
	}
}

func TestMarkRead_OwnershipAndExistence(t *testing.T) {
	f := newNotificationFixture(t)
	n := f.notify(t, f.patientID, nil)

	err := f.usecase.MarkRead(testCtx(uuid.New(), entity.RoleIDPatient), n.ID)
	assertKind(t, err, apperror.KindAuthorization)

	err = f.usecase.MarkRead(testCtx(f.patientID, entity.RoleIDPatient), uuid.New())
	assertKind(t, err, apperror.KindNotFound)
}

func TestMarkAllRead(t *testing.T) {
	f := newNotificationFixture(t)
	f.notify(t, f.patientID, nil)
	f.notify(t, f.patientID, nil)
	f.notify(t, f.doctorID, nil)

	count, err := f.usecase.MarkAllRead(testCtx(f.patientID, entity.RoleIDPatient))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 marked, got %d", count)
	}

	// Other users' notifications stay unread
	unread, _ := f.notificationRepo.CountByUser(testCtx(f.doctorID, entity.RoleIDDoctor), f.doctorID, true)
	if unread != 1 {
		t.Errorf("doctor's notification must stay unread, got unread=%d", unread)
	}
}

func TestListForUser(t *testing.T) {
	f := newNotificationFixture(t)
	for i := 0; i < 5; i++ {
		f.notify(t, f.patientID, nil)
	}
	read := f.notify(t, f.patientID, nil)
	ctx := testCtx(f.patientID, entity.RoleIDPatient)
	if err := f.usecase.MarkRead(ctx, read.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp, err := f.usecase.ListForUser(ctx, false, 1, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Items) != 4 {
		t.Errorf("expected page of 4, got %d", len(resp.Items))
	}
	if resp.Total != 6 {
		t.Errorf("expected total 6, got %d", resp.Total)
	}
	if resp.UnreadCount != 5 {
		t.Errorf("expected 5 unread, got %d", resp.UnreadCount)
	}

	resp, err = f.usecase.ListForUser(ctx, true, 1, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Items) != 5 {
		t.Errorf("unreadOnly should list 5, got %d", len(resp.Items))
	}

	// Out-of-range paging values are clamped, not rejected
	resp, err = f.usecase.ListForUser(ctx, false, 0, 500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Page != 1 || resp.Limit != 100 {
		t.Errorf("expected clamped page=1 limit=100, got page=%d limit=%d", resp.Page, resp.Limit)
	}
}

func TestApplyAction_ConfirmDispatchesToScheduler(t *testing.T) {
	f := newNotificationFixture(t)
	appointment := f.seed(t, entity.AppointmentStatusScheduled, "2030-06-10", "10:00")
	n := f.notify(t, f.doctorID, &appointment.ID)
	ctx := testCtx(f.doctorID, entity.RoleIDDoctor)

	if err := f.usecase.ApplyAction(ctx, n.ID, &dto.ApplyActionRequest{Action: "confirm"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored, _ := f.appointmentRepo.FindByID(ctx, appointment.ID)
	if stored.Status != entity.AppointmentStatusConfirmed {
		t.Errorf("confirm action should confirm the appointment, got %s", stored.Status)
	}
	storedNotice, _ := f.notificationRepo.FindByID(ctx, n.ID)
	if !storedNotice.IsRead {
		t.Error("applying an action should mark the notification read")
	}
}

func TestApplyAction_RejectCancelsWithReason(t *testing.T) {
	f := newNotificationFixture(t)
	appointment := f.seed(t, entity.AppointmentStatusScheduled, "2030-06-10", "10:00")
	n := f.notify(t, f.doctorID, &appointment.ID)
	ctx := testCtx(f.doctorID, entity.RoleIDDoctor)

	err := f.usecase.ApplyAction(ctx, n.ID, &dto.ApplyActionRequest{
		Action: "reject",
		Data:   map[string]interface{}{"reason": "fully booked"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored, _ := f.appointmentRepo.FindByID(ctx, appointment.ID)
	if stored.Status != entity.AppointmentStatusCancelled {
		t.Errorf("reject action should cancel the appointment, got %s", stored.Status)
	}
	rejected := f.notificationRepo.byType(entity.NotificationTypeAppointmentRejected)
	if len(rejected) != 1 {
		t.Errorf("reject should notify the patient, got %d notices", len(rejected))
	}
}

func TestApplyAction_RescheduleMovesSlot(t *testing.T) {
	f := newNotificationFixture(t)
	appointment := f.seed(t, entity.AppointmentStatusScheduled, "2030-06-10", "10:00")
	n := f.notify(t, f.doctorID, &appointment.ID)
	ctx := testCtx(f.doctorID, entity.RoleIDDoctor)

	err := f.usecase.ApplyAction(ctx, n.ID, &dto.ApplyActionRequest{
		Action: "reschedule",
		Data:   map[string]interface{}{"date": "2030-06-12", "time": "11:30"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored, _ := f.appointmentRepo.FindByID(ctx, appointment.ID)
	if stored.Date.Format("2006-01-02") != "2030-06-12" || stored.Time != "11:30" {
		t.Errorf("expected moved slot, got %s %s", stored.Date.Format("2006-01-02"), stored.Time)
	}
}

func TestApplyAction_RescheduleRequiresSlotData(t *testing.T) {
	f := newNotificationFixture(t)
	appointment := f.seed(t, entity.AppointmentStatusScheduled, "2030-06-10", "10:00")
	n := f.notify(t, f.doctorID, &appointment.ID)

	err := f.usecase.ApplyAction(testCtx(f.doctorID, entity.RoleIDDoctor), n.ID, &dto.ApplyActionRequest{
		Action: "reschedule",
	})
	assertKind(t, err, apperror.KindValidation)
}

func TestApplyAction_ViewOnlyAcknowledges(t *testing.T) {
	f := newNotificationFixture(t)
	appointment := f.seed(t, entity.AppointmentStatusScheduled, "2030-06-10", "10:00")
	n := f.notify(t, f.doctorID, &appointment.ID)
	ctx := testCtx(f.doctorID, entity.RoleIDDoctor)

	if err := f.usecase.ApplyAction(ctx, n.ID, &dto.ApplyActionRequest{Action: "view"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored, _ := f.appointmentRepo.FindByID(ctx, appointment.ID)
	if stored.Status != entity.AppointmentStatusScheduled {
		t.Errorf("view must not touch the appointment, got %s", stored.Status)
	}
	storedNotice, _ := f.notificationRepo.FindByID(ctx, n.ID)
	if !storedNotice.IsRead {
		t.Error("view should still mark the notification read")
	}
}

func TestApplyAction_UnknownActionRejected(t *testing.T) {
	f := newNotificationFixture(t)
	n := f.notify(t, f.patientID, nil)
	ctx := testCtx(f.patientID, entity.RoleIDPatient)

	err := f.usecase.ApplyAction(ctx, n.ID, &dto.ApplyActionRequest{Action: "snooze"})
	assertKind(t, err, apperror.KindValidation)

	stored, _ := f.notificationRepo.FindByID(ctx, n.ID)
	if stored.IsRead {
		t.Error("a rejected action must leave the notification unread")
	}
}

func TestApplyAction_Ownership(t *testing.T) {
	f := newNotificationFixture(t)
	n := f.notify(t, f.patientID, nil)

	err := f.usecase.ApplyAction(testCtx(uuid.New(), entity.RoleIDPatient), n.ID, &dto.ApplyActionRequest{Action: "view"})
	assertKind(t, err, apperror.KindAuthorization)
}

func TestParseNotificationAction(t *testing.T) {
	for _, valid := range []string{"confirm", "reject", "reschedule", "view", "pay"} {
		if _, err := ParseNotificationAction(valid); err != nil {
			t.Errorf("%q should parse: %v", valid, err)
		}
	}
	for _, invalid := range []string{"", "snooze", "CONFIRM", "delete"} {
		if _, err := ParseNotificationAction(invalid); err == nil {
			t.Errorf("%q should be rejected", invalid)
		}
	}
}
