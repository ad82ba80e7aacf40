package handler

import (
	"net/http"
	"notekeeper/cmd/internal/contract"

	"github.com/labstack/echo/v4"
)

func Root(c echo.Context) error {
	return c.JSON(http.StatusOK, &contract.MessageResponse{Message: "Hello World"})
}

// HealthCheck answers the Docker Compose healthcheck.
func HealthCheck(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}
