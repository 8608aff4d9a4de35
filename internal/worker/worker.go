package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/goethe-exam/exam-api/internal/domain"
	"github.com/goethe-exam/exam-api/internal/generation"
	"github.com/goethe-exam/exam-api/internal/platform/logger"
	"github.com/goethe-exam/exam-api/internal/store"
)

// PassThreshold is the evaluation score at or above which a writing
// submission passes.
const PassThreshold = 60.0

// DefaultProviderTimeout is the hard ceiling on a single provider call when
// no explicit timeout is configured.
const DefaultProviderTimeout = 300 * time.Second

// Worker claims and processes one exam job per invocation. There is no
// internal loop: throughput scales by running more invocations, and the job
// store's row locking keeps concurrent invocations from colliding.
type Worker struct {
	jobs            store.JobStore
	writeExams      store.WriteExamStore
	generator       generation.ExamGenerator
	providerTimeout time.Duration
	logger          *slog.Logger
}

// NewWorker creates a new Worker. A providerTimeout of zero selects
// DefaultProviderTimeout.
func NewWorker(
	jobs store.JobStore,
	writeExams store.WriteExamStore,
	generator generation.ExamGenerator,
	providerTimeout time.Duration,
	log *slog.Logger,
) *Worker {
	if jobs == nil || writeExams == nil || generator == nil {
		// ALLOW-PANIC: Constructor enforcing required dependencies
		panic("worker dependencies cannot be nil")
	}

	if providerTimeout <= 0 {
		providerTimeout = DefaultProviderTimeout
	}

	if log == nil {
		log = slog.Default()
	}

	return &Worker{
		jobs:            jobs,
		writeExams:      writeExams,
		generator:       generator,
		providerTimeout: providerTimeout,
		logger:          log.With(slog.String("component", "worker")),
	}
}

// RunOnce claims at most one job and processes it to a terminal state.
//
// The returned bool answers "did I do work", not "did the work succeed":
// it is true whenever a job was claimed, even if that job ended up failed.
// The returned error is non-nil only for conditions that prevented doing
// work at all, such as a consistency error during the claim.
func (w *Worker) RunOnce(ctx context.Context) (bool, error) {
	log := logger.FromContextOrDefault(ctx, w.logger)

	claimed, err := w.jobs.ClaimNext(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNoJobs) {
			log.Debug("no jobs available")
			return false, nil
		}
		// Includes ErrInconsistentJob: abort this invocation loudly rather
		// than guess at a job whose exam record is missing.
		log.Error("failed to claim job", slog.String("error", err.Error()))
		return false, err
	}

	jobLog := log.With(
		slog.Int64("job_id", claimed.JobID),
		slog.String("queue_id", claimed.QueueID.String()),
		slog.String("category", claimed.Category.String()),
		slog.String("level", claimed.Level.String()),
	)
	ctx = logger.WithLogger(ctx, jobLog)

	jobLog.Info("processing job")

	result, err := w.process(ctx, claimed)
	if err != nil {
		// Failure handling is a separate, unconditional path: the job must
		// reach a terminal state even though none of the success-side writes
		// happened.
		jobLog.Error("job failed", slog.String("error", err.Error()))
		if failErr := w.jobs.MarkFailed(ctx, claimed.QueueID, err.Error()); failErr != nil {
			jobLog.Error("failed to mark job failed",
				slog.String("error", failErr.Error()))
		}
		return true, nil
	}

	if err := w.jobs.MarkDone(ctx, claimed.JobID, claimed.Category, result); err != nil {
		jobLog.Error("failed to mark job done", slog.String("error", err.Error()))
		if failErr := w.jobs.MarkFailed(ctx, claimed.QueueID, err.Error()); failErr != nil {
			jobLog.Error("failed to mark job failed",
				slog.String("error", failErr.Error()))
		}
		return true, nil
	}

	if claimed.Category == domain.CategoryWriteEvaluation {
		w.recordScore(ctx, claimed, result)
	}

	jobLog.Info("job completed")
	return true, nil
}

// process runs the category-specific generation or evaluation routine under
// the provider call ceiling. Exceeding the ceiling is a failure, never a
// retry.
func (w *Worker) process(ctx context.Context, claimed *store.ClaimedJob) (json.RawMessage, error) {
	callCtx, cancel := context.WithTimeout(ctx, w.providerTimeout)
	defer cancel()

	switch claimed.Category {
	case domain.CategoryRead, domain.CategoryWriteGeneration, domain.CategoryListen:
		return w.generator.GenerateExam(callCtx, claimed.Category, claimed.Level)

	case domain.CategoryWriteEvaluation:
		payload, answers, err := w.writeExams.GetForEvaluation(ctx, claimed.QueueID)
		if err != nil {
			return nil, fmt.Errorf("failed to load write exam for evaluation: %w", err)
		}
		if len(payload) == 0 {
			return nil, fmt.Errorf("%w: exam payload not generated yet", domain.ErrEmptyContent)
		}
		if len(answers) == 0 {
			return nil, fmt.Errorf("%w: no participant answers submitted", domain.ErrEmptyContent)
		}
		return w.generator.EvaluateWriting(callCtx, payload, answers)

	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidCategory, claimed.Category)
	}
}

// recordScore extracts the numeric score from an evaluation document and
// stores it with the pass verdict. A missing or non-numeric score is logged
// and skipped; the evaluation document itself is already persisted, so the
// job does not fail over it.
func (w *Worker) recordScore(ctx context.Context, claimed *store.ClaimedJob, evaluation json.RawMessage) {
	log := logger.FromContextOrDefault(ctx, w.logger)

	score, ok := extractScore(evaluation)
	if !ok {
		log.Warn("evaluation document has no numeric score, skipping score update")
		return
	}

	isPass := score >= PassThreshold
	if err := w.writeExams.UpdateScore(ctx, claimed.QueueID, score, isPass); err != nil {
		log.Error("failed to update score",
			slog.String("error", err.Error()),
			slog.Float64("score", score))
		return
	}

	log.Info("score recorded",
		slog.Float64("score", score),
		slog.Bool("is_pass", isPass))
}

// extractScore reads the top-level "score" field of an evaluation document.
func extractScore(evaluation json.RawMessage) (float64, bool) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(evaluation, &doc); err != nil {
		return 0, false
	}

	raw, ok := doc["score"]
	if !ok {
		return 0, false
	}

	var score float64
	if err := json.Unmarshal(raw, &score); err != nil {
		return 0, false
	}

	return score, true
}
