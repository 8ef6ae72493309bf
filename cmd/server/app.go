package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/vicentejluz/taskmanager/internal/config"
	"github.com/vicentejluz/taskmanager/internal/maintenance"
	"github.com/vicentejluz/taskmanager/internal/platform/mailer"
	"github.com/vicentejluz/taskmanager/internal/platform/postgres"
	"github.com/vicentejluz/taskmanager/internal/service"
	"github.com/vicentejluz/taskmanager/internal/service/auth"
	"github.com/vicentejluz/taskmanager/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore  store.UserStore
	taskStore  store.TaskStore
	tokenStore store.TokenStore

	jwtService   auth.JWTService
	userService  *service.UserService
	taskService  *service.TaskService
	tokenService *service.TokenService
	scheduler    *maintenance.Scheduler
}

// newApplication wires stores, services and the maintenance scheduler over a
// shared database handle.
func newApplication(cfg *config.Config, logger *slog.Logger) (*application, error) {
	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}

	userStore := postgres.NewPostgresUserStore(db)
	taskStore := postgres.NewPostgresTaskStore(db)
	tokenStore := postgres.NewPostgresTokenStore(db)
	txRunner := store.NewSQLTxRunner(db)

	smtpMailer := mailer.NewSMTPMailer(cfg.SMTP, logger)
	tokenService := service.NewTokenService(tokenStore, cfg.Token, logger)
	userService := service.NewUserService(
		userStore,
		tokenStore,
		tokenService,
		txRunner,
		auth.NewBcryptVerifier(),
		auth.NewBcryptHasher(cfg.Security.BcryptCost),
		jwtService,
		smtpMailer,
		cfg.Security,
		logger,
	)
	taskService := service.NewTaskService(taskStore, logger)

	taskSweeper := maintenance.NewTaskSweeper(taskStore, txRunner, cfg.Retention, logger)
	userSweeper := maintenance.NewUserSweeper(userStore, txRunner, cfg.Retention, logger)
	scheduler := maintenance.NewScheduler(taskSweeper, userSweeper, cfg.Maintenance, logger)

	return &application{
		config:       cfg,
		logger:       logger,
		db:           db,
		userStore:    userStore,
		taskStore:    taskStore,
		tokenStore:   tokenStore,
		jwtService:   jwtService,
		userService:  userService,
		taskService:  taskService,
		tokenService: tokenService,
		scheduler:    scheduler,
	}, nil
}

// cleanup releases resources held by the application.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("failed to close database connection", "error", err)
		}
	}
}
