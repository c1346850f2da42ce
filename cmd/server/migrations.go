package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskmaster/internal/config"
	"github.com/phrazzld/taskmaster/internal/platform/postgres"
	"github.com/pressly/goose/v3"
)

// migrationCommands are the goose commands exposed through -migrate.
var migrationCommands = []string{"up", "down", "status", "version", "reset"}

// validateMigrationCommand rejects anything outside migrationCommands.
func validateMigrationCommand(command string) error {
	if !slices.Contains(migrationCommands, command) {
		return fmt.Errorf("unknown migration command %q (expected one of %v)", command, migrationCommands)
	}
	return nil
}

// runMigrations opens the configured database and applies command with the
// embedded migration set.
func runMigrations(cfg *config.Config, command string, logger *slog.Logger) error {
	if err := validateMigrationCommand(command); err != nil {
		return err
	}

	log := logger.With(
		slog.String("component", "migrations"),
		slog.String("correlation_id", uuid.NewString()),
		slog.String("command", command),
	)

	ctx := context.Background()
	db, err := setupAppDatabase(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("error closing database connection", slog.String("error", err.Error()))
		}
	}()

	start := time.Now()
	log.Info("starting migration operation")
	if err := applyMigrations(ctx, db, command, log); err != nil {
		return err
	}
	log.Info("migration operation completed", slog.Int64("duration_ms", time.Since(start).Milliseconds()))
	return nil
}

// applyMigrations runs a goose command against db using the embedded
// migrations.
func applyMigrations(ctx context.Context, db *sql.DB, command string, log *slog.Logger) error {
	goose.SetBaseFS(postgres.Migrations)
	goose.SetTableName(postgres.MigrationsTable)
	goose.SetLogger(&slogGooseLogger{log: log})

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.RunContext(ctx, command, db, postgres.MigrationsDir); err != nil {
		return fmt.Errorf("goose %s failed: %w", command, err)
	}
	return nil
}

// slogGooseLogger adapts the goose logger interface to slog.
type slogGooseLogger struct {
	log *slog.Logger
}

// Printf forwards goose progress output at info level.
func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	l.log.Info(fmt.Sprintf(format, v...))
}

// Fatalf logs at error level. It does not exit; the error reaches main
// through the returned value.
func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	l.log.Error(fmt.Sprintf(format, v...))
}
