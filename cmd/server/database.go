package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/taskhive/taskhive-api/internal/config"
)

// setupDatabase establishes the PostgreSQL connection and configures the
// connection pool. The connection is verified with a bounded ping before
// being handed to the application.
func setupDatabase(cfg *config.Config, logger *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Database connection established")
	return db, nil
}

// setupMongo establishes the MongoDB connection and verifies it with a
// bounded ping. Returns both the client (for shutdown) and the configured
// database handle.
func setupMongo(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*mongo.Client, *mongo.Database, error) {
	maxPoolSize := cfg.Mongo.MaxPoolSize
	if maxPoolSize == 0 {
		maxPoolSize = 10
	}

	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().
		ApplyURI(cfg.Mongo.URI).
		SetMaxPoolSize(maxPoolSize))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	pingCtx, cancelPing := context.WithTimeout(ctx, 5*time.Second)
	defer cancelPing()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		return nil, nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	logger.Info("MongoDB connection established", "database", cfg.Mongo.Database)
	return client, client.Database(cfg.Mongo.Database), nil
}
