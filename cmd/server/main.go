// Package main implements the entry point for the task manager API server:
// user accounts with email verification and login lockout, per-user tasks
// with a due-date driven lifecycle, and the background maintenance sweeps
// that keep both consistent over time.
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/vicentejluz/taskmanager/internal/config"
	"github.com/vicentejluz/taskmanager/internal/platform/logger"
)

func main() {
	app, err := initializeApp()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer app.cleanup()

	ctx := context.Background()

	if err := app.migrate(ctx); err != nil {
		app.logger.Error("Failed to run migrations", "error", err)
		log.Fatalf("Failed to run migrations: %v", err)
	}

	if err := app.userService.EnsureAdmin(ctx, app.config.Admin); err != nil {
		app.logger.Error("Failed to seed admin account", "error", err)
		log.Fatalf("Failed to seed admin account: %v", err)
	}

	app.scheduler.Start(ctx)
	defer app.scheduler.Stop()

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// initializeApp loads configuration, sets up logging, and wires all the
// application components together.
func initializeApp() (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(logger.LoggerConfig{Level: cfg.Server.LogLevel})
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"sweep_interval_minutes", cfg.Maintenance.SweepIntervalMinutes)

	return newApplication(cfg, appLogger)
}
