// Package main implements the entry point for the TaskMaster server, which
// serves the task tracker REST API, the real-time relay and stored
// attachments.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/phrazzld/taskmaster/internal/config"
	"github.com/phrazzld/taskmaster/internal/platform/logger"
)

func main() {
	migrateCmd := flag.String("migrate", "",
		"run a database migration command and exit (up|down|status|version|reset)")
	flag.Parse()

	cfg, appLog, err := initializeApp()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if *migrateCmd != "" {
		if err := runMigrations(cfg, *migrateCmd, appLog); err != nil {
			appLog.Error("migration failed", slog.String("command", *migrateCmd), slog.String("error", err.Error()))
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, appLog); err != nil {
		appLog.Error("server stopped with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// initializeApp loads configuration and sets up structured logging.
func initializeApp() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	l.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("storage_backend", cfg.Storage.Backend),
		slog.Bool("relay_backplane", cfg.Relay.RedisURL != ""))
	return cfg, l, nil
}

// run wires the application against a live database and serves until ctx
// is cancelled.
func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	db, err := setupAppDatabase(ctx, cfg.Database, log)
	if err != nil {
		return err
	}

	app, err := newApplication(ctx, cfg, log, db)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}
