package repository

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"vaxsched/cmd/internal/domain/entity"
)

type DefaultAccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *DefaultAccountRepository {
	return &DefaultAccountRepository{db: db}
}

func (a *DefaultAccountRepository) FindByUsername(username string) (*entity.Account, error) {
	var account entity.Account
	err := a.db.First(&account, "username = ?", username).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &account, err
}

// Create inserts the account. Returns false when the username is already
// taken (usernames are case-sensitive and unique across both roles).
func (a *DefaultAccountRepository) Create(account *entity.Account) (bool, error) {
	res := a.db.Clauses(clause.OnConflict{DoNothing: true}).Create(account)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
