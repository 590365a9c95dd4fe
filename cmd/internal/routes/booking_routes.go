package routes

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"vaxsched/cmd/internal/service"
	"vaxsched/cmd/internal/utils/apierror"
	"vaxsched/cmd/internal/utils/token"
)

type BookingService interface {
	Reserve(session *token.Session, req *service.ReserveRequest) (*service.ReserveResponse, apierror.ErrorResponse)
	Cancel(session *token.Session, id string) apierror.ErrorResponse
	Appointments(session *token.Session) ([]*service.AppointmentResponse, apierror.ErrorResponse)
}

type DefaultBookingRoute struct {
	BookingService BookingService
	Secret         string
}

func NewBookingDefault(bookingService BookingService, secret string) *DefaultBookingRoute {
	return &DefaultBookingRoute{BookingService: bookingService, Secret: secret}
}

func (b *DefaultBookingRoute) CreateAppointment(c echo.Context) error {
	var req service.ReserveRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	session, err := token.FromHeader(c, b.Secret)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, apierror.InvalidAuthTokenError)
	}

	resp, apierr := b.BookingService.Reserve(session, &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusCreated, resp)
}

func (b *DefaultBookingRoute) DeleteAppointment(c echo.Context) error {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return c.JSON(http.StatusBadRequest, apierror.NewMissingParamError("id"))
	}

	session, err := token.FromHeader(c, b.Secret)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, apierror.InvalidAuthTokenError)
	}

	apierr := b.BookingService.Cancel(session, id)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.NoContent(http.StatusOK)
}

func (b *DefaultBookingRoute) GetAppointments(c echo.Context) error {
	session, err := token.FromHeader(c, b.Secret)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, apierror.InvalidAuthTokenError)
	}

	appts, apierr := b.BookingService.Appointments(session)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"appointments": appts}
	return c.JSON(http.StatusOK, &resp)
}
