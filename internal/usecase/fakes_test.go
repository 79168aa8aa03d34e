package usecase

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"clinic-appointment-system/internal/delivery/http/middleware"
	"clinic-appointment-system/internal/domain/entity"
	"clinic-appointment-system/internal/service"
	"clinic-appointment-system/pkg/apperror"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// In-memory repository fakes. They mirror the store contracts closely
// enough for usecase tests, including the active-slot exclusivity rule
// and the conditional cancel semantics.

var errTestBoom = errors.New("boom")

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testCtx(userID uuid.UUID, roleID int) context.Context {
	ctx := context.WithValue(context.Background(), middleware.UserIDKey, userID)
	return context.WithValue(ctx, middleware.RoleIDKey, roleID)
}

type fakeAppointmentRepo struct {
	mu    sync.Mutex
	store map[uuid.UUID]*entity.Appointment
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{store: make(map[uuid.UUID]*entity.Appointment)}
}

func (r *fakeAppointmentRepo) Create(ctx context.Context, appointment *entity.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.store {
		if a.DoctorID == appointment.DoctorID && a.Date.Equal(appointment.Date) &&
			a.Time == appointment.Time && a.IsActive() {
			return apperror.SlotConflict()
		}
	}
	if appointment.ID == uuid.Nil {
		appointment.ID = uuid.New()
	}
	copied := *appointment
	r.store[appointment.ID] = &copied
	return nil
}

func (r *fakeAppointmentRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.store[id]
	if !ok {
		return nil, nil
	}
	copied := *a
	return &copied, nil
}

func (r *fakeAppointmentRepo) FindActiveBySlot(ctx context.Context, doctorID uuid.UUID, date time.Time, timeOfDay string) (*entity.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.store {
		if a.DoctorID == doctorID && a.Date.Equal(date) && a.Time == timeOfDay && a.IsActive() {
			copied := *a
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeAppointmentRepo) FindByPatientID(ctx context.Context, patientID uuid.UUID) ([]entity.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Appointment
	for _, a := range r.store {
		if a.PatientID == patientID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeAppointmentRepo) FindByDoctorID(ctx context.Context, doctorID uuid.UUID) ([]entity.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Appointment
	for _, a := range r.store {
		if a.DoctorID == doctorID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeAppointmentRepo) FindActiveByDoctorDate(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]entity.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Appointment
	for _, a := range r.store {
		if a.DoctorID == doctorID && a.Date.Equal(date) && a.IsActive() {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeAppointmentRepo) Update(ctx context.Context, appointment *entity.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *appointment
	r.store[appointment.ID] = &copied
	return nil
}

func (r *fakeAppointmentRepo) CancelWithNotes(ctx context.Context, id uuid.UUID, notes string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.store[id]
	if !ok || !a.IsActive() {
		return 0, nil
	}
	a.Status = entity.AppointmentStatusCancelled
	a.Notes = notes
	return 1, nil
}

type fakeAvailabilityRepo struct {
	mu    sync.Mutex
	store map[uuid.UUID]*entity.AvailabilityOverride
}

func newFakeAvailabilityRepo() *fakeAvailabilityRepo {
	return &fakeAvailabilityRepo{store: make(map[uuid.UUID]*entity.AvailabilityOverride)}
}

func (r *fakeAvailabilityRepo) Upsert(ctx context.Context, override *entity.AvailabilityOverride) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.store {
		if o.DoctorID == override.DoctorID && o.Date.Equal(override.Date) {
			o.IsAvailable = override.IsAvailable
			o.Reason = override.Reason
			o.EmergencyOnly = override.EmergencyOnly
			o.UnavailableTimeSlots = override.UnavailableTimeSlots
			return nil
		}
	}
	if override.ID == uuid.Nil {
		override.ID = uuid.New()
	}
	copied := *override
	r.store[override.ID] = &copied
	return nil
}

func (r *fakeAvailabilityRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.AvailabilityOverride, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.store[id]
	if !ok {
		return nil, nil
	}
	copied := *o
	return &copied, nil
}

func (r *fakeAvailabilityRepo) FindByDoctorAndDate(ctx context.Context, doctorID uuid.UUID, date time.Time) (*entity.AvailabilityOverride, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.store {
		if o.DoctorID == doctorID && o.Date.Equal(date) {
			copied := *o
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeAvailabilityRepo) FindByDoctorInRange(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]entity.AvailabilityOverride, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.AvailabilityOverride
	for _, o := range r.store {
		if o.DoctorID == doctorID && !o.Date.Before(from) && !o.Date.After(to) {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *fakeAvailabilityRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.store, id)
	return nil
}

type fakeUserRepo struct {
	store map[uuid.UUID]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{store: make(map[uuid.UUID]*entity.User)}
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	u, ok := r.store[id]
	if !ok {
		return nil, nil
	}
	copied := *u
	return &copied, nil
}

type fakeDoctorRepo struct {
	store map[uuid.UUID]*entity.DoctorProfile
}

func newFakeDoctorRepo() *fakeDoctorRepo {
	return &fakeDoctorRepo{store: make(map[uuid.UUID]*entity.DoctorProfile)}
}

func (r *fakeDoctorRepo) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.DoctorProfile, error) {
	d, ok := r.store[userID]
	if !ok {
		return nil, nil
	}
	copied := *d
	return &copied, nil
}

type fakeNotificationRepo struct {
	mu        sync.Mutex
	store     []*entity.Notification
	createErr error
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{}
}

func (r *fakeNotificationRepo) Create(ctx context.Context, notification *entity.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	if notification.ID == uuid.Nil {
		notification.ID = uuid.New()
	}
	notification.CreatedAt = time.Now()
	copied := *notification
	r.store = append(r.store, &copied)
	return nil
}

func (r *fakeNotificationRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.store {
		if n.ID == id {
			copied := *n
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeNotificationRepo) FindByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]entity.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []entity.Notification
	for _, n := range r.store {
		if n.UserID == userID && (!unreadOnly || !n.IsRead) {
			matched = append(matched, *n)
		}
	}
	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

func (r *fakeNotificationRepo) CountByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, n := range r.store {
		if n.UserID == userID && (!unreadOnly || !n.IsRead) {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) MarkRead(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.store {
		if n.ID == id {
			n.IsRead = true
			now := time.Now()
			n.ReadAt = &now
			return nil
		}
	}
	return nil
}

func (r *fakeNotificationRepo) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	now := time.Now()
	for _, n := range r.store {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			n.ReadAt = &now
			count++
		}
	}
	return count, nil
}

// byType filters stored notifications, most useful when asserting exactly
// which side-effect notices an operation emitted.
func (r *fakeNotificationRepo) byType(t entity.NotificationType) []entity.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Notification
	for _, n := range r.store {
		if n.Type == t {
			out = append(out, *n)
		}
	}
	return out
}

type fakeSlotHolder struct {
	mu       sync.Mutex
	held     bool
	acquires int
	releases int
}

func (h *fakeSlotHolder) Acquire(ctx context.Context, doctorID uuid.UUID, date, timeOfDay string) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.held {
		return "", service.ErrSlotHeld
	}
	h.acquires++
	return "token", nil
}

func (h *fakeSlotHolder) Release(ctx context.Context, doctorID uuid.UUID, date, timeOfDay, token string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.releases++
	return nil
}

type fakeAuditService struct {
	mu      sync.Mutex
	actions []string
}

func (s *fakeAuditService) Record(ctx context.Context, userID *uuid.UUID, action string, entityName string, entityID string, details entity.JSON) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions = append(s.actions, action)
}

func (s *fakeAuditService) has(action string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.actions {
		if a == action {
			return true
		}
	}
	return false
}

func boolPtr(b bool) *bool { return &b }
