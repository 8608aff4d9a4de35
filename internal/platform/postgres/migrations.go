package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// MigrationFiles exposes the embedded migration SQL for the goose runner in
// cmd/server.
func MigrationFiles() embed.FS {
	return migrationFiles
}

// MigrationsDir is the path of the embedded migration files within
// MigrationFiles.
const MigrationsDir = "migrations"

// slogGooseLogger adapts slog to goose's logger interface.
type slogGooseLogger struct {
	logger *slog.Logger
}

// NewGooseLogger returns a goose-compatible logger that forwards to slog.
func NewGooseLogger(log *slog.Logger) goose.Logger {
	if log == nil {
		log = slog.Default()
	}
	return &slogGooseLogger{logger: log.With("component", "migrations")}
}

func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, v...))
}

func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, v...))
}

// Ping verifies the database connection with the given context.
func Ping(ctx context.Context, db *sql.DB) error {
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}
