package utils

import (
	"net/http"
	"notekeeper/cmd/internal/utils/apierror"

	"github.com/labstack/echo/v4"
)

// SendError writes apierr as the JSON response. Every 401 carries a Bearer challenge.
func SendError(c echo.Context, apierr apierror.ErrorResponse) error {
	if apierr.Code() == http.StatusUnauthorized {
		c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
	}
	return c.JSON(apierr.Code(), apierr)
}
