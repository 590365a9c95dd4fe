package main

import (
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"golang.org/x/time/rate"

	"vaxsched/cmd/internal/domain/sqlite"
	"vaxsched/cmd/internal/domain/sqlite/repository"
	"vaxsched/cmd/internal/routes"
	"vaxsched/cmd/internal/service"
	"vaxsched/cmd/internal/utils/validators"
)

func main() {
	validate := validator.New()
	registerValidators(validate)

	_ = godotenv.Load()
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	db, err := sqlite.Init(env("DB_PATH", "./database.db"))
	if err != nil {
		log.Fatal("failed to initialize database", err)
	}

	// Getting repositories
	accountRepo := repository.NewAccountRepository(db)
	availabilityRepo := repository.NewAvailabilityRepository(db)
	vaccineRepo := repository.NewVaccineRepository(db)
	apptRepo := repository.NewAppointmentRepository(db)

	// Getting services
	accountService := service.NewAccountService(accountRepo, validate, secret)
	scheduleService := service.NewScheduleService(availabilityRepo, vaccineRepo, validate)
	inventoryService := service.NewInventoryService(vaccineRepo, validate)
	bookingService := service.NewBookingService(availabilityRepo, vaccineRepo, apptRepo, db, validate)

	// Getting routes
	accountRoutes := routes.NewAccountDefault(accountService)
	scheduleRoutes := routes.NewScheduleDefault(scheduleService, secret)
	inventoryRoutes := routes.NewInventoryDefault(inventoryService, secret)
	bookingRoutes := routes.NewBookingDefault(bookingService, secret)

	e := echo.New()
	e.Use(middleware.CORS())
	e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(20))))

	// Accounts
	e.POST("/api/accounts", accountRoutes.CreateAccount)
	e.POST("/api/accounts/login", accountRoutes.CreateLogin)

	// Caregiver schedule
	e.POST("/api/availabilities", scheduleRoutes.CreateAvailability)
	e.GET("/api/schedule", scheduleRoutes.GetSchedule)

	// Vaccine inventory
	e.POST("/api/vaccines/doses", inventoryRoutes.AddDoses)

	// Appointments
	e.POST("/api/appointments", bookingRoutes.CreateAppointment)
	e.GET("/api/appointments", bookingRoutes.GetAppointments)
	e.DELETE("/api/appointments/:id", bookingRoutes.DeleteAppointment)

	err = e.Start(":" + env("PORT", "6060"))
	if err != nil {
		e.Logger.Fatal(err)
	}
}

func registerValidators(validate *validator.Validate) {
	_ = validate.RegisterValidation("hasupper", validators.HasUpper)
	_ = validate.RegisterValidation("haslower", validators.HasLower)
	_ = validate.RegisterValidation("hasdigit", validators.HasDigit)
	_ = validate.RegisterValidation("hasspecial", validators.HasSpecial)
	_ = validate.RegisterValidation("nospaces", validators.NoWhiteSpaces)
	_ = validate.RegisterValidation("dateonly", validators.IsDateOnly)
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
