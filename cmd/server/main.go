// Package main implements the entry point for the exam API server, which
// accepts CEFR exam generation and evaluation requests, persists them as
// queued jobs, and serves the produced documents.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/goethe-exam/exam-api/internal/config"
	"github.com/goethe-exam/exam-api/internal/dispatch"
	"github.com/goethe-exam/exam-api/internal/platform/gemini"
	"github.com/goethe-exam/exam-api/internal/platform/logger"
	"github.com/goethe-exam/exam-api/internal/platform/postgres"
	"github.com/goethe-exam/exam-api/internal/worker"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// run wires the whole application together and blocks until shutdown.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"launch_mode", cfg.Dispatch.LaunchMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openDatabase(ctx, cfg.Database, appLogger)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			appLogger.Error("failed to close database", "error", err)
		}
	}()

	if err := runMigrations(ctx, db, appLogger); err != nil {
		return err
	}

	// Stores
	jobStore := postgres.NewPostgresJobStore(db, appLogger)
	readExamStore := postgres.NewPostgresReadExamStore(db, appLogger)
	writeExamStore := postgres.NewPostgresWriteExamStore(db, appLogger)
	listenExamStore := postgres.NewPostgresListenExamStore(db, appLogger)

	// Exam generation
	generator, err := gemini.NewGeminiExamGenerator(ctx, appLogger, cfg.LLM)
	if err != nil {
		return fmt.Errorf("failed to create exam generator: %w", err)
	}

	// Worker and launcher. In goroutine mode every enqueued job also fires
	// one in-process worker invocation; in none mode an external scheduler
	// is expected to run cmd/worker.
	wrk := worker.NewWorker(
		jobStore,
		writeExamStore,
		generator,
		time.Duration(cfg.LLM.TimeoutSeconds)*time.Second,
		appLogger,
	)

	var launcher dispatch.Launcher
	switch cfg.Dispatch.LaunchMode {
	case "goroutine":
		launcher = dispatch.NewGoroutineLauncher(wrk.RunOnce, appLogger)
	case "none":
		launcher = dispatch.NoopLauncher{}
	default:
		return fmt.Errorf("unknown launch mode: %q", cfg.Dispatch.LaunchMode)
	}

	dispatcher := dispatch.NewDispatcher(
		jobStore,
		readExamStore,
		writeExamStore,
		listenExamStore,
		launcher,
		appLogger,
	)

	router := newRouter(routerDeps{
		dispatcher:  dispatcher,
		jobs:        jobStore,
		readExams:   readExamStore,
		writeExams:  writeExamStore,
		listenExams: listenExamStore,
		logger:      appLogger,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		appLogger.Info("HTTP server listening", "addr", server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		appLogger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			appLogger.Error("graceful shutdown failed", "error", err)
			if err := server.Close(); err != nil {
				return fmt.Errorf("forced shutdown failed: %w", err)
			}
		}
	}

	appLogger.Info("Server stopped")
	return nil
}

// openDatabase opens the connection pool and verifies connectivity.
func openDatabase(ctx context.Context, cfg config.DatabaseConfig, log *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := postgres.Ping(pingCtx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	log.Info("Database connection established")
	return db, nil
}

// runMigrations applies all pending embedded migrations.
func runMigrations(ctx context.Context, db *sql.DB, log *slog.Logger) error {
	goose.SetLogger(postgres.NewGooseLogger(log))
	goose.SetBaseFS(postgres.MigrationFiles())

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, postgres.MigrationsDir); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	log.Info("Database migrations applied")
	return nil
}
