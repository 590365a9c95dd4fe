package entity

// AvailabilitySlot is one caregiver's open calendar date. The composite
// primary key means a caregiver has at most one open slot per date, and a
// slot is consumed by exactly one reservation.
type AvailabilitySlot struct {
	CaregiverUsername string `gorm:"primaryKey"`
	Date              string `gorm:"primaryKey"` // calendar date, "2006-01-02"
}
