// Package main implements the one-shot exam worker. Each invocation claims
// at most one queued job, processes it to a terminal state, and exits. An
// external scheduler (or the server's goroutine launcher) provides the loop.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/goethe-exam/exam-api/internal/config"
	"github.com/goethe-exam/exam-api/internal/platform/gemini"
	"github.com/goethe-exam/exam-api/internal/platform/logger"
	"github.com/goethe-exam/exam-api/internal/platform/postgres"
	"github.com/goethe-exam/exam-api/internal/worker"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Worker failed: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			appLogger.Error("failed to close database", "error", err)
		}
	}()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := postgres.Ping(pingCtx, db); err != nil {
		return err
	}

	jobStore := postgres.NewPostgresJobStore(db, appLogger)
	writeExamStore := postgres.NewPostgresWriteExamStore(db, appLogger)

	generator, err := gemini.NewGeminiExamGenerator(ctx, appLogger, cfg.LLM)
	if err != nil {
		return fmt.Errorf("failed to create exam generator: %w", err)
	}

	wrk := worker.NewWorker(
		jobStore,
		writeExamStore,
		generator,
		time.Duration(cfg.LLM.TimeoutSeconds)*time.Second,
		appLogger,
	)

	processed, err := wrk.RunOnce(ctx)
	if err != nil {
		return fmt.Errorf("worker run failed: %w", err)
	}

	if !processed {
		appLogger.Info("No jobs available")
		return nil
	}

	appLogger.Info("Job processed")
	return nil
}
