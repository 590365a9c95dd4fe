package repository

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"vaxsched/cmd/internal/domain/entity"
)

type DefaultVaccineRepository struct {
	db *gorm.DB
}

func NewVaccineRepository(db *gorm.DB) *DefaultVaccineRepository {
	return &DefaultVaccineRepository{db: db}
}

func (v *DefaultVaccineRepository) FindByName(name string) (*entity.VaccineStock, error) {
	return findVaccine(v.db, name)
}

// FindByNameTx is FindByName scoped to an open transaction. With a single
// SQLite connection, reading through the pool while a transaction holds the
// connection would deadlock.
func (v *DefaultVaccineRepository) FindByNameTx(tx *gorm.DB, name string) (*entity.VaccineStock, error) {
	return findVaccine(tx, name)
}

func (v *DefaultVaccineRepository) FindAll() ([]*entity.VaccineStock, error) {
	var stocks []*entity.VaccineStock
	err := v.db.Order("name asc").Find(&stocks).Error
	return stocks, err
}

// Create registers a new vaccine name. Returns false if the name exists.
func (v *DefaultVaccineRepository) Create(name string, doses int) (bool, error) {
	if doses < 0 {
		return false, errors.New("initial doses must not be negative")
	}
	stock := &entity.VaccineStock{Name: name, Doses: doses}
	res := v.db.Clauses(clause.OnConflict{DoNothing: true}).Create(stock)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Increase adds n doses. Returns false if the vaccine does not exist.
func (v *DefaultVaccineRepository) Increase(name string, n int) (bool, error) {
	return increaseVaccine(v.db, name, n)
}

func (v *DefaultVaccineRepository) IncreaseTx(tx *gorm.DB, name string, n int) error {
	_, err := increaseVaccine(tx, name, n)
	return err
}

// DecreaseTx removes n doses as one test-and-modify statement. The counter
// never goes negative: when fewer than n doses remain the update matches no
// row and ok is false.
func (v *DefaultVaccineRepository) DecreaseTx(tx *gorm.DB, name string, n int) (bool, error) {
	res := tx.Model(&entity.VaccineStock{}).
		Where("name = ? AND doses >= ?", name, n).
		Update("doses", gorm.Expr("doses - ?", n))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func findVaccine(db *gorm.DB, name string) (*entity.VaccineStock, error) {
	var stock entity.VaccineStock
	err := db.First(&stock, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &stock, err
}

func increaseVaccine(db *gorm.DB, name string, n int) (bool, error) {
	res := db.Model(&entity.VaccineStock{}).
		Where("name = ?", name).
		Update("doses", gorm.Expr("doses + ?", n))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
