package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/avelkov/cardvault/internal/config"
	"github.com/avelkov/cardvault/internal/platform/postgres"
	"github.com/avelkov/cardvault/internal/service"
	"github.com/avelkov/cardvault/internal/service/auth"
	"github.com/avelkov/cardvault/internal/store"
)

// application holds the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore store.UserStore
	cardStore store.CardStore

	jwtService       auth.JWTService
	passwordHasher   auth.PasswordHasher
	passwordVerifier auth.PasswordVerifier

	userService     service.UserService
	cardService     service.CardService
	transferService service.TransferService
}

// newApplication creates a new application instance with all dependencies
// initialized. Configuration, logger and database connection must already
// be established.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes,
		"refresh_token_lifetime_minutes", cfg.Auth.RefreshTokenLifetimeMinutes)

	app.passwordHasher = auth.NewBcryptHasher(cfg.Auth.BCryptCost)
	app.passwordVerifier = auth.NewBcryptVerifier()

	app.userStore = postgres.NewPostgresUserStore(db, logger)
	app.cardStore = postgres.NewPostgresCardStore(db, logger)

	identity := service.NewCardIdentity(
		app.passwordHasher,
		app.passwordVerifier,
		app.cardStore,
		logger,
	)

	app.userService, err = service.NewUserService(
		app.userStore,
		app.cardStore,
		app.passwordHasher,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user service: %w", err)
	}

	app.cardService, err = service.NewCardService(
		app.cardStore,
		app.userStore,
		identity,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create card service: %w", err)
	}

	app.transferService, err = service.NewTransferService(db, app.cardStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create transfer service: %w", err)
	}

	logger.Info("application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}

	app.logger.Info("application shutdown completed")
}
