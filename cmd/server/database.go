package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/taskmaster/internal/config"
	"github.com/phrazzld/taskmaster/internal/redact"
)

// pingTimeout bounds the start-up connectivity check.
const pingTimeout = 5 * time.Second

// setupAppDatabase establishes a connection to the database and configures
// the connection pool.
func setupAppDatabase(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*sql.DB, error) {
	db, err := openDatabase(cfg)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %s", redact.Error(err))
	}

	logger.Info("database connection established",
		slog.String("url", redact.String(cfg.URL)),
		slog.Int("max_open_conns", cfg.MaxOpenConns))
	return db, nil
}

// openDatabase opens a pgx-backed *sql.DB without touching the network.
func openDatabase(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %s", redact.Error(err))
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)
	return db, nil
}
