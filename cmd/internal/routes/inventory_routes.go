package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"vaxsched/cmd/internal/service"
	"vaxsched/cmd/internal/utils/apierror"
	"vaxsched/cmd/internal/utils/token"
)

type InventoryService interface {
	AddDoses(session *token.Session, req *service.AddDosesRequest) (*service.VaccineResponse, apierror.ErrorResponse)
}

type DefaultInventoryRoute struct {
	InventoryService InventoryService
	Secret           string
}

func NewInventoryDefault(inventoryService InventoryService, secret string) *DefaultInventoryRoute {
	return &DefaultInventoryRoute{InventoryService: inventoryService, Secret: secret}
}

func (i *DefaultInventoryRoute) AddDoses(c echo.Context) error {
	var req service.AddDosesRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	session, err := token.FromHeader(c, i.Secret)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, apierror.InvalidAuthTokenError)
	}

	stock, apierr := i.InventoryService.AddDoses(session, &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, stock)
}
