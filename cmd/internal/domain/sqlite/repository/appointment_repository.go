package repository

import (
	"errors"

	"gorm.io/gorm"

	"vaxsched/cmd/internal/domain/entity"
)

type DefaultAppointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) *DefaultAppointmentRepository {
	return &DefaultAppointmentRepository{db: db}
}

func (a *DefaultAppointmentRepository) CreateTx(tx *gorm.DB, appt *entity.Appointment) error {
	return tx.Create(appt).Error
}

func (a *DefaultAppointmentRepository) FindByID(id string) (*entity.Appointment, error) {
	var appt entity.Appointment
	err := a.db.First(&appt, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &appt, err
}

// DeleteTx removes the appointment within the caller's transaction. Returns
// false when the id is already gone, which is how a second cancel of the
// same appointment surfaces.
func (a *DefaultAppointmentRepository) DeleteTx(tx *gorm.DB, id string) (bool, error) {
	res := tx.Where("id = ?", id).Delete(&entity.Appointment{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (a *DefaultAppointmentRepository) FindByPatient(username string) ([]*entity.Appointment, error) {
	var appts []*entity.Appointment
	err := a.db.Where("patient_username = ?", username).
		Order("id asc").
		Find(&appts).Error
	return appts, err
}

func (a *DefaultAppointmentRepository) FindByCaregiver(username string) ([]*entity.Appointment, error) {
	var appts []*entity.Appointment
	err := a.db.Where("caregiver_username = ?", username).
		Order("id asc").
		Find(&appts).Error
	return appts, err
}
