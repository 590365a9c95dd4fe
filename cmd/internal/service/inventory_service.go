package service

import (
	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
	"gorm.io/gorm"

	"vaxsched/cmd/internal/domain/entity"
	"vaxsched/cmd/internal/utils"
	"vaxsched/cmd/internal/utils/apierror"
	"vaxsched/cmd/internal/utils/token"
)

type VaccineRepository interface {
	FindByName(name string) (*entity.VaccineStock, error)
	FindByNameTx(tx *gorm.DB, name string) (*entity.VaccineStock, error)
	FindAll() ([]*entity.VaccineStock, error)
	Create(name string, doses int) (bool, error)
	Increase(name string, n int) (bool, error)
	IncreaseTx(tx *gorm.DB, name string, n int) error
	DecreaseTx(tx *gorm.DB, name string, n int) (bool, error)
}

type AddDosesRequest struct {
	VaccineName string `json:"vaccine" validate:"required,max=128"`
	Doses       int    `json:"doses" validate:"required,gt=0"`
}

type DefaultInventoryService struct {
	VaccineRepo VaccineRepository
	Validate    *validator.Validate
}

func NewInventoryService(vaccineRepo VaccineRepository, validate *validator.Validate) *DefaultInventoryService {
	return &DefaultInventoryService{VaccineRepo: vaccineRepo, Validate: validate}
}

// AddDoses registers the vaccine on first sight, otherwise restocks it.
func (i *DefaultInventoryService) AddDoses(session *token.Session, req *AddDosesRequest) (*VaccineResponse, apierror.ErrorResponse) {
	if session == nil || session.Role != entity.RoleCaregiver {
		return nil, apierror.CaregiverRoleRequiredError
	}

	utils.Sanitize(req)
	if err := i.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	stock, err := i.VaccineRepo.FindByName(req.VaccineName)
	if err != nil {
		log.Errorf("failed to fetch vaccine %s: %v", req.VaccineName, err)
		return nil, apierror.InternalServerError
	}

	if stock == nil {
		created, err := i.VaccineRepo.Create(req.VaccineName, req.Doses)
		if err != nil {
			log.Errorf("failed to create vaccine %s: %v", req.VaccineName, err)
			return nil, apierror.InternalServerError
		}
		if created {
			return &VaccineResponse{Name: req.VaccineName, Doses: req.Doses}, nil
		}
		// lost a race with a concurrent create, fall through to restock
	}

	found, err := i.VaccineRepo.Increase(req.VaccineName, req.Doses)
	if err != nil {
		log.Errorf("failed to increase doses of %s: %v", req.VaccineName, err)
		return nil, apierror.InternalServerError
	}
	if !found {
		return nil, apierror.UnknownVaccineError
	}

	stock, err = i.VaccineRepo.FindByName(req.VaccineName)
	if err != nil || stock == nil {
		log.Errorf("failed to fetch vaccine %s after restock: %v", req.VaccineName, err)
		return nil, apierror.InternalServerError
	}
	return &VaccineResponse{Name: stock.Name, Doses: stock.Doses}, nil
}
