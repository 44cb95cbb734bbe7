package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/taskhive/taskhive-api/internal/api"
	apimiddleware "github.com/taskhive/taskhive-api/internal/api/middleware"
	"github.com/taskhive/taskhive-api/internal/config"
	"github.com/taskhive/taskhive-api/internal/platform/mongodb"
	"github.com/taskhive/taskhive-api/internal/platform/postgres"
	"github.com/taskhive/taskhive-api/internal/service/auth"
	"github.com/taskhive/taskhive-api/internal/store"
)

// application bundles the wired dependencies of a running server: the
// configuration, the datastore handles, the stores and services built on
// them, and the HTTP handlers. cmd/server owns the composition root; the
// packages underneath never construct their own dependencies.
type application struct {
	cfg    *config.Config
	logger *slog.Logger

	db          *sql.DB
	mongoClient *mongo.Client

	userStore    store.UserStore
	taskStore    store.TaskStore
	docTaskStore store.DocTaskStore

	tokenService auth.TokenService

	authHandler    *api.AuthHandler
	taskHandler    *api.TaskHandler
	docTaskHandler *api.DocTaskHandler
	authMiddleware *apimiddleware.AuthMiddleware
}

// newApplication wires stores, services, and handlers from the already
// established datastore connections. It also ensures the document
// collection's indexes exist so text search and owner queries are served
// from the first request.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
	mongoClient *mongo.Client,
	mongoDB *mongo.Database,
) (*application, error) {
	userStore := postgres.NewUserStore(db, logger)
	taskStore := postgres.NewTaskStore(db, logger)

	docTaskStore := mongodb.NewTaskStore(mongoDB, userStore, logger)
	if err := docTaskStore.EnsureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure mongodb indexes: %w", err)
	}

	tokenService, err := auth.NewTokenService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create token service: %w", err)
	}
	passwordVerifier := auth.NewBcryptVerifier()

	return &application{
		cfg:    cfg,
		logger: logger,

		db:          db,
		mongoClient: mongoClient,

		userStore:    userStore,
		taskStore:    taskStore,
		docTaskStore: docTaskStore,

		tokenService: tokenService,

		authHandler:    api.NewAuthHandler(userStore, tokenService, passwordVerifier, cfg.Auth, logger),
		taskHandler:    api.NewTaskHandler(taskStore, logger),
		docTaskHandler: api.NewDocTaskHandler(docTaskStore, logger),
		authMiddleware: apimiddleware.NewAuthMiddleware(tokenService, userStore),
	}, nil
}

// Run starts the HTTP server and blocks until the context is cancelled or a
// termination signal arrives, then drains in-flight requests within the
// configured shutdown timeout.
func (app *application) Run(ctx context.Context) error {
	defer app.cleanup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", app.cfg.Server.Port),
		Handler:      app.routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		app.logger.Info("Starting server", "addr", srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		app.logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		app.logger.Info("Context cancelled, shutting down")
	}

	timeout := time.Duration(app.cfg.Server.ShutdownTimeoutSeconds) * time.Second
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		if closeErr := srv.Close(); closeErr != nil {
			return fmt.Errorf("failed to close server after shutdown error: %w", closeErr)
		}
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	app.logger.Info("Server stopped")
	return nil
}

// cleanup releases the datastore connections. Errors are logged rather than
// returned: shutdown continues regardless.
func (app *application) cleanup() {
	if err := app.db.Close(); err != nil {
		app.logger.Error("Failed to close database connection", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.mongoClient.Disconnect(ctx); err != nil {
		app.logger.Error("Failed to disconnect mongodb client", "error", err)
	}
}
