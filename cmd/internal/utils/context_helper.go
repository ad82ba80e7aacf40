package utils

import (
	"notekeeper/cmd/internal/domain/entity"
	"notekeeper/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

// UserContextKey is the echo context key holding the authenticated *entity.User.
const UserContextKey = "user"

func GetUserFromContext(c echo.Context) (*entity.User, apierror.ErrorResponse) {
	val := c.Get(UserContextKey)
	if val == nil {
		log.Warnf("route %s attempted to read nil user from context", c.Request().URL)
		return nil, apierror.UnauthorizedError
	}

	user, ok := val.(*entity.User)
	if !ok {
		log.Warnf("expected user type at '%s' context key, got %T", UserContextKey, val)
		return nil, apierror.InternalServerError
	}
	return user, nil
}
