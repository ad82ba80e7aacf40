// Package server assembles the echo application: global middleware, the
// bearer-token guard and every route.
package server

import (
	"notekeeper/cmd/internal/http/handler"
	"notekeeper/cmd/internal/http/middleware"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
)

type Options struct {
	BodyLimit      string
	RequestTimeout time.Duration
}

type Services struct {
	Auth     handler.AuthService
	Users    handler.UserService
	Notes    handler.NoteService
	Resolver middleware.IdentityResolver
	Metrics  *middleware.Metrics
}

// New returns a ready to start echo instance.
func New(opts Options, svc Services) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(svc.Metrics.Middleware())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			log.Infof("%s %s %d %s request_id=%s", v.Method, v.URI, v.Status, v.Latency, v.RequestID)
			return nil
		},
	}))
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())
	if opts.BodyLimit != "" {
		e.Use(echomw.BodyLimit(opts.BodyLimit))
	}
	if opts.RequestTimeout > 0 {
		e.Use(echomw.ContextTimeout(opts.RequestTimeout))
	}

	authMW := middleware.NewAuthMiddleware(&middleware.AuthMiddlewareConfig{
		Resolver: svc.Resolver,
	})

	authRoutes := handler.NewAuthDefault(svc.Auth)
	userRoutes := handler.NewUserDefault(svc.Users)
	noteRoutes := handler.NewNoteDefault(svc.Notes)

	e.GET("/", handler.Root)
	e.POST("/register", userRoutes.Register)
	e.POST("/token", authRoutes.CreateLogin)

	// Users
	e.GET("/my_profile", userRoutes.GetProfile, authMW)
	e.GET("/user", userRoutes.GetUsers, authMW)
	e.GET("/user/:id", userRoutes.GetUser, authMW)
	e.PUT("/user/:id", userRoutes.UpdateUser, authMW)
	e.DELETE("/user/:id", userRoutes.DeleteUser, authMW)

	// Notes
	e.GET("/notes", noteRoutes.GetNotes, authMW)
	e.GET("/notes/:id", noteRoutes.GetNote, authMW)
	e.POST("/notes", noteRoutes.CreateNote, authMW)
	e.PUT("/notes/:id", noteRoutes.UpdateNote, authMW)
	e.DELETE("/notes/:id", noteRoutes.DeleteNote, authMW)

	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", svc.Metrics.Handler())
	return e
}
