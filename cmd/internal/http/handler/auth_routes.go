package handler

import (
	"context"
	"net/http"
	"notekeeper/cmd/internal/contract"
	"notekeeper/cmd/internal/utils"
	"notekeeper/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
)

type AuthService interface {
	Login(ctx context.Context, req *contract.LoginRequest) (*contract.LoginResponse, apierror.ErrorResponse)
}

type DefaultAuthRoute struct {
	AuthService AuthService
}

func NewAuthDefault(authService AuthService) *DefaultAuthRoute {
	return &DefaultAuthRoute{AuthService: authService}
}

// CreateLogin takes username and password either form encoded or as JSON.
func (a *DefaultAuthRoute) CreateLogin(c echo.Context) error {
	var req contract.LoginRequest
	if err := c.Bind(&req); err != nil {
		return utils.SendError(c, apierror.MalformedBodyError)
	}

	resp, apierr := a.AuthService.Login(c.Request().Context(), &req)
	if apierr != nil {
		return utils.SendError(c, apierr)
	}
	return c.JSON(http.StatusOK, resp)
}
