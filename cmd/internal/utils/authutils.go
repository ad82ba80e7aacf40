package utils

import (
	"strings"

	"github.com/labstack/echo/v4"
)

const bearerPrefix = "bearer "

// BearerToken returns the credential carried by the Authorization header,
// or "" when the header is missing or uses another scheme.
func BearerToken(c echo.Context) string {
	return sanitizeToken(c.Request().Header.Get(echo.HeaderAuthorization))
}

func sanitizeToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(header[len(bearerPrefix):])
}
