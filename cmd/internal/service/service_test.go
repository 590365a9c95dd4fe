package service_test

import (
	"path/filepath"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"vaxsched/cmd/internal/domain/entity"
	"vaxsched/cmd/internal/domain/sqlite"
	"vaxsched/cmd/internal/domain/sqlite/repository"
	"vaxsched/cmd/internal/service"
	"vaxsched/cmd/internal/utils/token"
	"vaxsched/cmd/internal/utils/validators"
)

const testSecret = "test-secret"

type testEnv struct {
	db *gorm.DB

	availabilityRepo *repository.DefaultAvailabilityRepository
	vaccineRepo      *repository.DefaultVaccineRepository
	apptRepo         *repository.DefaultAppointmentRepository

	accounts  *service.DefaultAccountService
	schedule  *service.DefaultScheduleService
	inventory *service.DefaultInventoryService
	booking   *service.DefaultBookingService
}

func setup(t *testing.T) *testEnv {
	t.Helper()

	db, err := sqlite.Init(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	validate := validator.New()
	require.NoError(t, validate.RegisterValidation("hasupper", validators.HasUpper))
	require.NoError(t, validate.RegisterValidation("haslower", validators.HasLower))
	require.NoError(t, validate.RegisterValidation("hasdigit", validators.HasDigit))
	require.NoError(t, validate.RegisterValidation("hasspecial", validators.HasSpecial))
	require.NoError(t, validate.RegisterValidation("nospaces", validators.NoWhiteSpaces))
	require.NoError(t, validate.RegisterValidation("dateonly", validators.IsDateOnly))

	accountRepo := repository.NewAccountRepository(db)
	availabilityRepo := repository.NewAvailabilityRepository(db)
	vaccineRepo := repository.NewVaccineRepository(db)
	apptRepo := repository.NewAppointmentRepository(db)

	return &testEnv{
		db:               db,
		availabilityRepo: availabilityRepo,
		vaccineRepo:      vaccineRepo,
		apptRepo:         apptRepo,
		accounts:         service.NewAccountService(accountRepo, validate, testSecret),
		schedule:         service.NewScheduleService(availabilityRepo, vaccineRepo, validate),
		inventory:        service.NewInventoryService(vaccineRepo, validate),
		booking:          service.NewBookingService(availabilityRepo, vaccineRepo, apptRepo, db, validate),
	}
}

func patientSession(username string) *token.Session {
	return &token.Session{Username: username, Role: entity.RolePatient}
}

func caregiverSession(username string) *token.Session {
	return &token.Session{Username: username, Role: entity.RoleCaregiver}
}

func (e *testEnv) uploadSlot(t *testing.T, caregiver, date string) {
	t.Helper()
	apierr := e.schedule.UploadAvailability(caregiverSession(caregiver), &service.UploadAvailabilityRequest{Date: date})
	require.Nil(t, apierr)
}

func (e *testEnv) addDoses(t *testing.T, caregiver, vaccine string, doses int) {
	t.Helper()
	_, apierr := e.inventory.AddDoses(caregiverSession(caregiver), &service.AddDosesRequest{VaccineName: vaccine, Doses: doses})
	require.Nil(t, apierr)
}

func (e *testEnv) doses(t *testing.T, vaccine string) int {
	t.Helper()
	stock, err := e.vaccineRepo.FindByName(vaccine)
	require.NoError(t, err)
	require.NotNil(t, stock)
	return stock.Doses
}

func (e *testEnv) openCaregivers(t *testing.T, date string) []string {
	t.Helper()
	names, err := e.availabilityRepo.ListCaregivers(date)
	require.NoError(t, err)
	return names
}
