package middleware

import (
	"context"
	"notekeeper/cmd/internal/domain/entity"
	"notekeeper/cmd/internal/utils"
	"notekeeper/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
)

type IdentityResolver interface {
	Resolve(ctx context.Context, rawToken string) (*entity.User, apierror.ErrorResponse)
}

type AuthMiddlewareConfig struct {
	Resolver IdentityResolver
}

// NewAuthMiddleware creates the handler with dependencies injected
func NewAuthMiddleware(cfg *AuthMiddlewareConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := utils.BearerToken(c)

			user, apierr := cfg.Resolver.Resolve(c.Request().Context(), token)
			if apierr != nil {
				return utils.SendError(c, apierr)
			}

			c.Set(utils.UserContextKey, user)
			return next(c)
		}
	}
}
