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

type AvailabilityRepository interface {
	Upload(caregiver, date string) (bool, error)
	ListCaregivers(date string) ([]string, error)
	ReserveAny(tx *gorm.DB, date string) (string, error)
	Restore(tx *gorm.DB, caregiver, date string) error
}

type UploadAvailabilityRequest struct {
	Date string `json:"date" validate:"required,dateonly"`
}

type SearchScheduleRequest struct {
	Date string `json:"date" validate:"required,dateonly"`
}

// ScheduleResponse lists the caregivers free on the requested date together
// with a snapshot of every vaccine's remaining doses. An empty caregiver
// list is a normal result, not an error.
type ScheduleResponse struct {
	Date       string             `json:"date"`
	Caregivers []string           `json:"caregivers"`
	Vaccines   []*VaccineResponse `json:"vaccines"`
}

type VaccineResponse struct {
	Name  string `json:"name"`
	Doses int    `json:"doses"`
}

type DefaultScheduleService struct {
	AvailabilityRepo AvailabilityRepository
	VaccineRepo      VaccineRepository
	Validate         *validator.Validate
}

func NewScheduleService(availabilityRepo AvailabilityRepository, vaccineRepo VaccineRepository, validate *validator.Validate) *DefaultScheduleService {
	return &DefaultScheduleService{AvailabilityRepo: availabilityRepo, VaccineRepo: vaccineRepo, Validate: validate}
}

func (s *DefaultScheduleService) UploadAvailability(session *token.Session, req *UploadAvailabilityRequest) apierror.ErrorResponse {
	if session == nil || session.Role != entity.RoleCaregiver {
		return apierror.CaregiverRoleRequiredError
	}

	utils.Sanitize(req)
	if err := s.Validate.Struct(req); err != nil {
		return apierror.FromValidationError(err)
	}

	uploaded, err := s.AvailabilityRepo.Upload(session.Username, req.Date)
	if err != nil {
		log.Errorf("failed to upload availability for %s on %s: %v", session.Username, req.Date, err)
		return apierror.InternalServerError
	}
	if !uploaded {
		return apierror.SlotAlreadyUploadedError
	}
	return nil
}

func (s *DefaultScheduleService) SearchSchedule(session *token.Session, req *SearchScheduleRequest) (*ScheduleResponse, apierror.ErrorResponse) {
	if session == nil {
		return nil, apierror.InvalidAuthTokenError
	}

	utils.Sanitize(req)
	if err := s.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	caregivers, err := s.AvailabilityRepo.ListCaregivers(req.Date)
	if err != nil {
		log.Errorf("failed to list caregivers on %s: %v", req.Date, err)
		return nil, apierror.InternalServerError
	}

	stocks, err := s.VaccineRepo.FindAll()
	if err != nil {
		log.Errorf("failed to fetch vaccine inventory: %v", err)
		return nil, apierror.InternalServerError
	}

	vaccines := make([]*VaccineResponse, len(stocks))
	for i, stock := range stocks {
		vaccines[i] = &VaccineResponse{Name: stock.Name, Doses: stock.Doses}
	}
	if caregivers == nil {
		caregivers = []string{}
	}
	return &ScheduleResponse{Date: req.Date, Caregivers: caregivers, Vaccines: vaccines}, nil
}
