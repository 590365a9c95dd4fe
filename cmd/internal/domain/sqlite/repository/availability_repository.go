package repository

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"vaxsched/cmd/internal/domain/entity"
)

type DefaultAvailabilityRepository struct {
	db *gorm.DB
}

func NewAvailabilityRepository(db *gorm.DB) *DefaultAvailabilityRepository {
	return &DefaultAvailabilityRepository{db: db}
}

// Upload inserts a fresh slot. Returns false when the caregiver already has
// an open slot on that date; a duplicate upload is an error to the caller,
// not a no-op.
func (a *DefaultAvailabilityRepository) Upload(caregiver, date string) (bool, error) {
	slot := &entity.AvailabilitySlot{CaregiverUsername: caregiver, Date: date}
	res := a.db.Clauses(clause.OnConflict{DoNothing: true}).Create(slot)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (a *DefaultAvailabilityRepository) ListCaregivers(date string) ([]string, error) {
	var names []string
	err := a.db.Model(&entity.AvailabilitySlot{}).
		Where("date = ?", date).
		Order("caregiver_username asc").
		Pluck("caregiver_username", &names).Error
	return names, err
}

// ReserveAny picks the open slot with the lowest caregiver username on the
// date and deletes it within the caller's transaction. The patient never
// chooses the caregiver, only the date. Returns "" when nobody is free.
func (a *DefaultAvailabilityRepository) ReserveAny(tx *gorm.DB, date string) (string, error) {
	var slot entity.AvailabilitySlot
	err := tx.Where("date = ?", date).
		Order("caregiver_username asc").
		First(&slot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	res := tx.Where("caregiver_username = ? AND date = ?", slot.CaregiverUsername, slot.Date).
		Delete(&entity.AvailabilitySlot{})
	if res.Error != nil {
		return "", res.Error
	}
	return slot.CaregiverUsername, nil
}

// Restore puts a consumed slot back on cancellation. The caregiver may have
// re-uploaded the same date in the meantime, so this insert merges silently
// instead of failing on the duplicate.
func (a *DefaultAvailabilityRepository) Restore(tx *gorm.DB, caregiver, date string) error {
	slot := &entity.AvailabilitySlot{CaregiverUsername: caregiver, Date: date}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(slot).Error
}
