package repository

import (
	"context"
	"errors"
	"time"

	"clinic-appointment-system/internal/domain/entity"
	domainRepo "clinic-appointment-system/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type availabilityRepository struct {
	db *gorm.DB
}

func NewAvailabilityRepository(db *gorm.DB) domainRepo.AvailabilityRepository {
	return &availabilityRepository{db: db}
}

// Upsert writes the override keyed by (doctor_id, date). Last write wins
// on reason/emergency_only, which makes SetUnavailable safe to retry.
func (r *availabilityRepository) Upsert(ctx context.Context, override *entity.AvailabilityOverride) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "doctor_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"is_available", "reason", "emergency_only", "unavailable_time_slots", "updated_at",
		}),
	}).Create(override).Error
	if err != nil {
		return wrapStoreErr(err)
	}
	return nil
}

func (r *availabilityRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.AvailabilityOverride, error) {
	var override entity.AvailabilityOverride
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&override).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, wrapStoreErr(err)
	}
	return &override, nil
}

func (r *availabilityRepository) FindByDoctorAndDate(ctx context.Context, doctorID uuid.UUID, date time.Time) (*entity.AvailabilityOverride, error) {
	var override entity.AvailabilityOverride
	err := r.db.WithContext(ctx).
		Where("doctor_id = ? AND date = ?", doctorID, date).
		First(&override).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, wrapStoreErr(err)
	}
	return &override, nil
}

func (r *availabilityRepository) FindByDoctorInRange(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]entity.AvailabilityOverride, error) {
	var overrides []entity.AvailabilityOverride
	err := r.db.WithContext(ctx).
		Where("doctor_id = ? AND date BETWEEN ? AND ?", doctorID, from, to).
		Order("date ASC").
		Find(&overrides).Error
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return overrides, nil
}

func (r *availabilityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Delete(&entity.AvailabilityOverride{}, "id = ?", id).Error
	if err != nil {
		return wrapStoreErr(err)
	}
	return nil
}
