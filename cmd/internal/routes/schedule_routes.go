package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"vaxsched/cmd/internal/service"
	"vaxsched/cmd/internal/utils/apierror"
	"vaxsched/cmd/internal/utils/token"
)

type ScheduleService interface {
	UploadAvailability(session *token.Session, req *service.UploadAvailabilityRequest) apierror.ErrorResponse
	SearchSchedule(session *token.Session, req *service.SearchScheduleRequest) (*service.ScheduleResponse, apierror.ErrorResponse)
}

type DefaultScheduleRoute struct {
	ScheduleService ScheduleService
	Secret          string
}

func NewScheduleDefault(scheduleService ScheduleService, secret string) *DefaultScheduleRoute {
	return &DefaultScheduleRoute{ScheduleService: scheduleService, Secret: secret}
}

func (s *DefaultScheduleRoute) CreateAvailability(c echo.Context) error {
	var req service.UploadAvailabilityRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	session, err := token.FromHeader(c, s.Secret)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, apierror.InvalidAuthTokenError)
	}

	if apierr := s.ScheduleService.UploadAvailability(session, &req); apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.NoContent(http.StatusCreated)
}

func (s *DefaultScheduleRoute) GetSchedule(c echo.Context) error {
	date := c.QueryParam("date")
	if date == "" {
		return c.JSON(http.StatusBadRequest, apierror.NewMissingParamError("date"))
	}

	session, err := token.FromHeader(c, s.Secret)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, apierror.InvalidAuthTokenError)
	}

	schedule, apierr := s.ScheduleService.SearchSchedule(session, &service.SearchScheduleRequest{Date: date})
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, schedule)
}
