package main

import (
	"context"
	"errors"
	"net/http"
	"notekeeper/cmd/internal/auth"
	"notekeeper/cmd/internal/config"
	"notekeeper/cmd/internal/domain/policy"
	"notekeeper/cmd/internal/domain/sqlite"
	"notekeeper/cmd/internal/domain/sqlite/repository"
	"notekeeper/cmd/internal/http/middleware"
	"notekeeper/cmd/internal/http/server"
	"notekeeper/cmd/internal/service"
	"notekeeper/cmd/internal/utils/validators"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/labstack/gommon/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Loads env vars depending on environment
	if err := config.LoadEnv(ctx); err != nil {
		log.Fatalf("unable to load environment: %v", err)
	}

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatal(err)
	}
	log.SetLevel(parseLevel(cfg.LogLevel))

	// Init SQLite
	db, err := sqlite.Init(cfg.DBPath)
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		if err := sqlite.Close(db); err != nil {
			log.Errorf("failed to close database: %v", err)
		}
	}()

	validate := validators.New()
	hasher := auth.NewHasher(cfg.BcryptCost)
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)

	// Gettings repos
	noteRepo := repository.NewNoteRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Getting services
	userService := service.NewUserService(userRepo, hasher, validate, policy.NewUserPolicy())
	noteService := service.NewNoteService(noteRepo, validate, policy.NewNotePolicy())
	authService, err := service.NewAuthService(userRepo, tokens, hasher, validate)
	if err != nil {
		log.Fatal(err)
	}

	if cfg.HasAdmin() {
		if err := userService.EnsureAdmin(ctx, cfg.AdminName, cfg.AdminPassword); err != nil {
			log.Fatalf("unable to seed administrator: %v", err)
		}
	}

	e := server.New(server.Options{
		BodyLimit:      cfg.BodyLimit,
		RequestTimeout: cfg.RequestTimeout,
	}, server.Services{
		Auth:     authService,
		Users:    userService,
		Notes:    noteService,
		Resolver: authService,
		Metrics:  middleware.NewMetrics(),
	})

	go func() {
		log.Infof("listening on %s", cfg.HTTPAddr)
		if err := e.Start(cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server stopped: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Errorf("graceful shutdown failed: %v", err)
	}
}

func parseLevel(level string) log.Lvl {
	switch strings.ToLower(level) {
	case "debug":
		return log.DEBUG
	case "warn":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		return log.INFO
	}
}
