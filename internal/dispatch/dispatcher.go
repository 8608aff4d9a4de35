package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/goethe-exam/exam-api/internal/domain"
	"github.com/goethe-exam/exam-api/internal/platform/logger"
	"github.com/goethe-exam/exam-api/internal/store"
)

// Dispatcher creates exam jobs and triggers worker invocations. Each
// request produces a fresh queue ID, an exam record (except for
// write_evaluation, which reuses the existing record), one job row, and
// exactly one launcher trigger.
//
// The three writes are not one transaction; a trigger that fails after the
// rows committed leaves the job not_started until something else triggers a
// worker. There is deliberately no periodic sweep; this is a known
// operational gap of the design.
type Dispatcher struct {
	jobs        store.JobStore
	readExams   store.ExamStore
	writeExams  store.WriteExamStore
	listenExams store.ExamStore
	launcher    Launcher
	logger      *slog.Logger
}

// NewDispatcher creates a new Dispatcher. All dependencies are required.
func NewDispatcher(
	jobs store.JobStore,
	readExams store.ExamStore,
	writeExams store.WriteExamStore,
	listenExams store.ExamStore,
	launcher Launcher,
	log *slog.Logger,
) *Dispatcher {
	if jobs == nil || readExams == nil || writeExams == nil || listenExams == nil || launcher == nil {
		// ALLOW-PANIC: Constructor enforcing required dependencies
		panic("dispatcher dependencies cannot be nil")
	}

	if log == nil {
		log = slog.Default()
	}

	return &Dispatcher{
		jobs:        jobs,
		readExams:   readExams,
		writeExams:  writeExams,
		listenExams: listenExams,
		launcher:    launcher,
		logger:      log.With(slog.String("component", "dispatcher")),
	}
}

// examStoreFor returns the exam store backing the given category.
func (d *Dispatcher) examStoreFor(category domain.Category) (store.ExamStore, error) {
	switch category {
	case domain.CategoryRead:
		return d.readExams, nil
	case domain.CategoryListen:
		return d.listenExams, nil
	case domain.CategoryWriteGeneration, domain.CategoryWriteEvaluation:
		return d.writeExams, nil
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidCategory, category)
	}
}

// RequestJob creates a generation job for the given category and level:
// a blank exam record, a not_started job row, and one worker trigger.
// Returns the queue ID clients poll with.
func (d *Dispatcher) RequestJob(ctx context.Context, category domain.Category, level domain.Level) (uuid.UUID, error) {
	log := logger.FromContextOrDefault(ctx, d.logger)

	if !category.IsValid() {
		return uuid.Nil, fmt.Errorf("%w: %q", domain.ErrInvalidCategory, category)
	}

	if category.RequiresLevel() && !level.IsValid() {
		if level == "" {
			return uuid.Nil, domain.ErrLevelRequired
		}
		return uuid.Nil, fmt.Errorf("%w: %q", domain.ErrInvalidLevel, level)
	}

	if category == domain.CategoryWriteEvaluation {
		return uuid.Nil, fmt.Errorf("%w: evaluation jobs are created via RequestEvaluation", domain.ErrInvalidCategory)
	}

	exams, err := d.examStoreFor(category)
	if err != nil {
		return uuid.Nil, err
	}

	queueID := uuid.New()

	if err := exams.Create(ctx, queueID, level); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create exam record: %w", err)
	}

	job, err := domain.NewExamJob(queueID, category)
	if err != nil {
		return uuid.Nil, err
	}

	if err := d.jobs.Enqueue(ctx, job); err != nil {
		return uuid.Nil, fmt.Errorf("failed to enqueue job: %w", err)
	}

	if err := d.launcher.Launch(ctx); err != nil {
		// Rows are committed; the job stays not_started until some other
		// trigger picks it up. Surface the failure to the caller.
		log.Error("failed to trigger worker invocation",
			slog.String("queue_id", queueID.String()),
			slog.String("category", category.String()),
			slog.String("error", err.Error()))
		return uuid.Nil, fmt.Errorf("failed to launch worker: %w", err)
	}

	log.Info("job requested",
		slog.String("queue_id", queueID.String()),
		slog.String("category", category.String()),
		slog.String("level", level.String()))
	return queueID, nil
}

// RequestEvaluation stores a writing participant's answers and creates a
// write_evaluation job reusing the same queue ID: evaluation is a second
// phase of the same exam instance, not a new one.
// Returns store.ErrUpdateFailed if the queue ID is unknown.
func (d *Dispatcher) RequestEvaluation(ctx context.Context, queueID uuid.UUID, answers json.RawMessage) error {
	log := logger.FromContextOrDefault(ctx, d.logger)

	if queueID == uuid.Nil {
		return fmt.Errorf("%w: queue ID cannot be empty", domain.ErrInvalidID)
	}

	if len(answers) == 0 {
		return fmt.Errorf("%w: participant answers", domain.ErrEmptyContent)
	}

	if err := d.writeExams.UpdateParticipantAnswers(ctx, queueID, answers); err != nil {
		return err
	}

	job, err := domain.NewExamJob(queueID, domain.CategoryWriteEvaluation)
	if err != nil {
		return err
	}

	if err := d.jobs.Enqueue(ctx, job); err != nil {
		return fmt.Errorf("failed to enqueue evaluation job: %w", err)
	}

	if err := d.launcher.Launch(ctx); err != nil {
		log.Error("failed to trigger worker invocation",
			slog.String("queue_id", queueID.String()),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to launch worker: %w", err)
	}

	log.Info("evaluation requested",
		slog.String("queue_id", queueID.String()))
	return nil
}
