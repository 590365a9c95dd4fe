package service

import (
	"errors"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
	"gorm.io/gorm"

	"vaxsched/cmd/internal/domain/entity"
	"vaxsched/cmd/internal/utils"
	"vaxsched/cmd/internal/utils/apierror"
	"vaxsched/cmd/internal/utils/token"
)

type AppointmentRepository interface {
	CreateTx(tx *gorm.DB, appt *entity.Appointment) error
	FindByID(id string) (*entity.Appointment, error)
	DeleteTx(tx *gorm.DB, id string) (bool, error)
	FindByPatient(username string) ([]*entity.Appointment, error)
	FindByCaregiver(username string) ([]*entity.Appointment, error)
}

type ReserveRequest struct {
	Date        string `json:"date" validate:"required,dateonly"`
	VaccineName string `json:"vaccine" validate:"required,max=128"`
}

type ReserveResponse struct {
	AppointmentID     string `json:"appointment_id"`
	CaregiverUsername string `json:"caregiver_username"`
}

type AppointmentResponse struct {
	ID                string `json:"id"`
	Date              string `json:"date"`
	PatientUsername   string `json:"patient_username"`
	CaregiverUsername string `json:"caregiver_username"`
	VaccineName       string `json:"vaccine"`
	CreatedAt         string `json:"created_at"`
}

// errRolledBack aborts the booking transaction when a business rule fails.
// The typed error for the caller travels in a separate variable; the
// rollback itself is what undoes any slot or dose consumed so far.
var errRolledBack = errors.New("booking rolled back")

// DefaultBookingService is the only place where the calendar, the vaccine
// ledger and the appointment registry change together. Every mutation runs
// inside one transaction so no observer can see a slot gone without its
// appointment, or a dose gone without its appointment.
type DefaultBookingService struct {
	DB               *gorm.DB
	AvailabilityRepo AvailabilityRepository
	VaccineRepo      VaccineRepository
	AppointmentRepo  AppointmentRepository
	Validate         *validator.Validate

	// serializes bookings; SQLite has a single writer anyway, and blocking
	// beats surfacing busy errors to callers
	mu sync.Mutex
}

func NewBookingService(availabilityRepo AvailabilityRepository, vaccineRepo VaccineRepository, appointmentRepo AppointmentRepository, db *gorm.DB, validate *validator.Validate) *DefaultBookingService {
	return &DefaultBookingService{
		DB:               db,
		AvailabilityRepo: availabilityRepo,
		VaccineRepo:      vaccineRepo,
		AppointmentRepo:  appointmentRepo,
		Validate:         validate,
	}
}

// Reserve books one appointment: it takes the lowest-username caregiver free
// on the date, consumes one dose of the vaccine and records the appointment.
// The three effects commit together or not at all.
func (b *DefaultBookingService) Reserve(session *token.Session, req *ReserveRequest) (*ReserveResponse, apierror.ErrorResponse) {
	if session == nil || session.Role != entity.RolePatient {
		return nil, apierror.PatientRoleRequiredError
	}

	utils.Sanitize(req)
	if err := b.Validate.Struct(req); err != nil {
		return nil, apierror.FromValidationError(err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	var resp *ReserveResponse
	var apierr apierror.ErrorResponse
	err := b.DB.Transaction(func(tx *gorm.DB) error {
		caregiver, err := b.AvailabilityRepo.ReserveAny(tx, req.Date)
		if err != nil {
			return err
		}
		if caregiver == "" {
			apierr = apierror.NoCaregiverAvailableError
			return errRolledBack
		}

		// from here on the slot is provisionally consumed; every failure
		// path must leave the transaction so it comes back
		stock, err := b.VaccineRepo.FindByNameTx(tx, req.VaccineName)
		if err != nil {
			return err
		}
		if stock == nil {
			apierr = apierror.UnknownVaccineError
			return errRolledBack
		}

		ok, err := b.VaccineRepo.DecreaseTx(tx, req.VaccineName, 1)
		if err != nil {
			return err
		}
		if !ok {
			apierr = apierror.NotEnoughDosesError
			return errRolledBack
		}

		appt := &entity.Appointment{
			ID:                uuid.NewString(),
			Date:              req.Date,
			PatientUsername:   session.Username,
			CaregiverUsername: caregiver,
			VaccineName:       req.VaccineName,
			CreatedAt:         utils.NowUTC(),
		}
		if err := b.AppointmentRepo.CreateTx(tx, appt); err != nil {
			return err
		}

		resp = &ReserveResponse{AppointmentID: appt.ID, CaregiverUsername: caregiver}
		return nil
	})
	if apierr != nil {
		return nil, apierr
	}
	if err != nil {
		log.Errorf("failed to reserve %s on %s for %s: %v", req.VaccineName, req.Date, session.Username, err)
		return nil, apierror.InternalServerError
	}
	return resp, nil
}

// Cancel reverses a reservation: the appointment record goes away, the
// caregiver's slot comes back and the dose returns to stock. Only the
// patient or the caregiver named on the appointment may cancel it, and a
// cancelled id stays cancelled.
func (b *DefaultBookingService) Cancel(session *token.Session, id string) apierror.ErrorResponse {
	if session == nil {
		return apierror.InvalidAuthTokenError
	}

	appt, err := b.AppointmentRepo.FindByID(id)
	if err != nil {
		log.Errorf("failed to fetch appointment %s: %v", id, err)
		return apierror.InternalServerError
	}
	if appt == nil {
		return apierror.AppointmentNotFoundError
	}
	if appt.PatientUsername != session.Username && appt.CaregiverUsername != session.Username {
		return apierror.NotYourAppointmentError
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	var apierr apierror.ErrorResponse
	err = b.DB.Transaction(func(tx *gorm.DB) error {
		// delete first: there must be no window where the appointment and
		// its freed slot both exist
		deleted, err := b.AppointmentRepo.DeleteTx(tx, id)
		if err != nil {
			return err
		}
		if !deleted {
			// someone cancelled it between our lookup and now
			apierr = apierror.AppointmentNotFoundError
			return errRolledBack
		}

		if err := b.AvailabilityRepo.Restore(tx, appt.CaregiverUsername, appt.Date); err != nil {
			return err
		}
		return b.VaccineRepo.IncreaseTx(tx, appt.VaccineName, 1)
	})
	if apierr != nil {
		return apierr
	}
	if err != nil {
		log.Errorf("failed to cancel appointment %s: %v", id, err)
		return apierror.InternalServerError
	}
	return nil
}

// Appointments lists the caller's own appointments, id ascending.
func (b *DefaultBookingService) Appointments(session *token.Session) ([]*AppointmentResponse, apierror.ErrorResponse) {
	if session == nil {
		return nil, apierror.InvalidAuthTokenError
	}

	var appts []*entity.Appointment
	var err error
	switch session.Role {
	case entity.RolePatient:
		appts, err = b.AppointmentRepo.FindByPatient(session.Username)
	case entity.RoleCaregiver:
		appts, err = b.AppointmentRepo.FindByCaregiver(session.Username)
	default:
		return nil, apierror.InvalidAuthTokenError
	}
	if err != nil {
		log.Errorf("failed to list appointments for %s: %v", session.Username, err)
		return nil, apierror.InternalServerError
	}

	resp := make([]*AppointmentResponse, len(appts))
	for i, appt := range appts {
		resp[i] = toAppointmentResponse(appt)
	}
	return resp, nil
}

func toAppointmentResponse(appt *entity.Appointment) *AppointmentResponse {
	return &AppointmentResponse{
		ID:                appt.ID,
		Date:              appt.Date,
		PatientUsername:   appt.PatientUsername,
		CaregiverUsername: appt.CaregiverUsername,
		VaccineName:       appt.VaccineName,
		CreatedAt:         utils.FormatEpoch(appt.CreatedAt),
	}
}
