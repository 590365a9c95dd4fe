package sqlite

import (
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"vaxsched/cmd/internal/domain/entity"
)

func Init(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(
		&entity.Account{},
		&entity.AvailabilitySlot{},
		&entity.VaccineStock{},
		&entity.Appointment{},
	)
	if err != nil {
		return nil, err
	}

	// SQLite allows a single writer; one connection keeps gorm from
	// tripping over its own transactions.
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}
