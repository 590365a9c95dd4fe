package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"vaxsched/cmd/internal/service"
	"vaxsched/cmd/internal/utils/apierror"
)

type AccountService interface {
	Register(req *service.RegisterRequest) (*service.AccountResponse, apierror.ErrorResponse)
	Login(req *service.LoginRequest) (*service.LoginResponse, apierror.ErrorResponse)
}

type DefaultAccountRoute struct {
	AccountService AccountService
}

func NewAccountDefault(accountService AccountService) *DefaultAccountRoute {
	return &DefaultAccountRoute{AccountService: accountService}
}

func (a *DefaultAccountRoute) CreateAccount(c echo.Context) error {
	var req service.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	account, apierr := a.AccountService.Register(&req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusCreated, account)
}

func (a *DefaultAccountRoute) CreateLogin(c echo.Context) error {
	var req service.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	resp, apierr := a.AccountService.Login(&req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, resp)
}
