package entity

type VaccineStock struct {
	Name  string `gorm:"primaryKey"`
	Doses int    `gorm:"not null;check:doses >= 0"`
}
