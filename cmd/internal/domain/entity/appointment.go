package entity

type Appointment struct {
	ID                string `gorm:"primaryKey"` // uuid, generated at reservation time
	Date              string `gorm:"not null"`
	PatientUsername   string `gorm:"not null;index"`
	CaregiverUsername string `gorm:"not null;index"`
	VaccineName       string `gorm:"not null"`
	CreatedAt         int64  `gorm:"not null"`
}
