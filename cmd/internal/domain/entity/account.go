package entity

const (
	RolePatient   = "patient"
	RoleCaregiver = "caregiver"
)

type Account struct {
	Username  string `gorm:"primaryKey"`
	Salt      []byte `gorm:"not null"`
	Hash      []byte `gorm:"not null"`
	Role      string `gorm:"not null"` // RolePatient or RoleCaregiver
	CreatedAt int64  `gorm:"not null"`
}
