package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/arnold/smartgoals-api/internal/config"
	"github.com/arnold/smartgoals-api/internal/database"
	"github.com/arnold/smartgoals-api/internal/logger"
	"github.com/arnold/smartgoals-api/internal/middleware"
	"github.com/arnold/smartgoals-api/internal/routes"
	"github.com/arnold/smartgoals-api/internal/services"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// A missing .env is fine; the environment may already be set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration:\n%w", err)
	}

	l, err := logger.Init(logger.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.Env,
		File:        cfg.LogFile,
	})
	if err != nil {
		return err
	}

	middleware.Configure(cfg.JWTSecret, cfg.JWTExpires)

	if err := database.Connect(cfg); err != nil {
		return err
	}
	if err := database.Migrate(); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	ctx := context.Background()
	services.InitPush(ctx, cfg.FCMServiceAccount)
	services.InitEmail(cfg.Email)
	services.InitAI(ctx, cfg.AI)

	scheduler, err := services.NewScheduler(cfg)
	if err != nil {
		return err
	}
	scheduler.Start()

	app := routes.NewApp(cfg)

	errc := make(chan error, 1)
	go func() {
		l.Info("server starting", "port", cfg.Port, "env", cfg.Env, "services", cfg.Services())
		errc <- app.Listen(":" + cfg.Port)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errc:
		return fmt.Errorf("server stopped: %w", err)
	case s := <-sig:
		l.Info("shutting down", "signal", s.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	scheduler.Stop(shutdownCtx)
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		l.Error("server shutdown failed", "error", err)
	}
	if err := database.Close(); err != nil {
		l.Error("close database failed", "error", err)
	}
	l.Info("shutdown complete")
	return nil
}
