package handler

import (
	"context"
	"net/http"
	"notekeeper/cmd/internal/contract"
	"notekeeper/cmd/internal/domain/entity"
	"notekeeper/cmd/internal/utils"
	"notekeeper/cmd/internal/utils/apierror"
	"strings"

	"github.com/labstack/echo/v4"
)

type UserService interface {
	Register(ctx context.Context, req *contract.RegisterRequest) (*contract.UserResponse, apierror.ErrorResponse)
	GetProfile(actor *entity.User) *contract.UserResponse
	GetUsers(ctx context.Context) ([]*contract.UserResponse, apierror.ErrorResponse)
	GetUser(ctx context.Context, requester *entity.User, rawId string) (*contract.UserResponse, apierror.ErrorResponse)
	UpdateUser(ctx context.Context, requester *entity.User, targetId string, req *contract.UpdateUserRequest) (*contract.UserResponse, apierror.ErrorResponse)
	DeleteUser(ctx context.Context, requester *entity.User, targetId string) apierror.ErrorResponse
}

type DefaultUserRoute struct {
	UserService UserService
}

func NewUserDefault(userService UserService) *DefaultUserRoute {
	return &DefaultUserRoute{UserService: userService}
}

func (u *DefaultUserRoute) Register(c echo.Context) error {
	var req contract.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return utils.SendError(c, apierror.MalformedBodyError)
	}

	user, apierr := u.UserService.Register(c.Request().Context(), &req)
	if apierr != nil {
		return utils.SendError(c, apierr)
	}
	return c.JSON(http.StatusCreated, user)
}

func (u *DefaultUserRoute) GetProfile(c echo.Context) error {
	user, cerr := utils.GetUserFromContext(c)
	if cerr != nil {
		return utils.SendError(c, cerr)
	}
	return c.JSON(http.StatusOK, u.UserService.GetProfile(user))
}

func (u *DefaultUserRoute) GetUsers(c echo.Context) error {
	users, apierr := u.UserService.GetUsers(c.Request().Context())
	if apierr != nil {
		return utils.SendError(c, apierr)
	}
	return c.JSON(http.StatusOK, users)
}

func (u *DefaultUserRoute) GetUser(c echo.Context) error {
	user, cerr := utils.GetUserFromContext(c)
	if cerr != nil {
		return utils.SendError(c, cerr)
	}

	targetId := strings.TrimSpace(c.Param("id"))
	resp, apierr := u.UserService.GetUser(c.Request().Context(), user, targetId)
	if apierr != nil {
		return utils.SendError(c, apierr)
	}
	return c.JSON(http.StatusOK, resp)
}

func (u *DefaultUserRoute) UpdateUser(c echo.Context) error {
	user, cerr := utils.GetUserFromContext(c)
	if cerr != nil {
		return utils.SendError(c, cerr)
	}

	targetId := strings.TrimSpace(c.Param("id"))
	var req contract.UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return utils.SendError(c, apierror.MalformedBodyError)
	}

	newUser, apierr := u.UserService.UpdateUser(c.Request().Context(), user, targetId, &req)
	if apierr != nil {
		return utils.SendError(c, apierr)
	}
	return c.JSON(http.StatusOK, newUser)
}

func (u *DefaultUserRoute) DeleteUser(c echo.Context) error {
	user, cerr := utils.GetUserFromContext(c)
	if cerr != nil {
		return utils.SendError(c, cerr)
	}

	targetId := strings.TrimSpace(c.Param("id"))
	if apierr := u.UserService.DeleteUser(c.Request().Context(), user, targetId); apierr != nil {
		return utils.SendError(c, apierr)
	}
	return c.JSON(http.StatusOK, &contract.MessageResponse{Message: "User deleted"})
}
