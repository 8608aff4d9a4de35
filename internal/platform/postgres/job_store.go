package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/goethe-exam/exam-api/internal/domain"
	"github.com/goethe-exam/exam-api/internal/platform/logger"
	"github.com/goethe-exam/exam-api/internal/store"
)

// PostgresJobStore implements the store.JobStore interface using PostgreSQL.
//
// Enqueue and the read operations run on whatever DBTX the store was built
// with. ClaimNext and MarkDone each open their own transaction, so they are
// only available on a store constructed from a *sql.DB.
type PostgresJobStore struct {
	db     store.DBTX
	sqlDB  *sql.DB // nil when the store is transaction-scoped
	logger *slog.Logger
}

// NewPostgresJobStore creates a new PostgresJobStore on top of a database
// connection pool. If logger is nil, a default logger will be used.
func NewPostgresJobStore(db *sql.DB, log *slog.Logger) *PostgresJobStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}

	if log == nil {
		log = slog.Default()
	}

	return &PostgresJobStore{
		db:     db,
		sqlDB:  db,
		logger: log.With(slog.String("component", "job_store")),
	}
}

// Ensure PostgresJobStore implements store.JobStore
var _ store.JobStore = (*PostgresJobStore)(nil)

// WithTx implements store.JobStore.WithTx
func (s *PostgresJobStore) WithTx(tx *sql.Tx) store.JobStore {
	return &PostgresJobStore{
		db:     tx,
		logger: s.logger,
	}
}

// examTable returns the exam record table backing the given category.
// write_generation and write_evaluation share write_exam: evaluation is a
// second phase of the same exam instance, not a new one.
func examTable(category domain.Category) (string, error) {
	switch category {
	case domain.CategoryRead:
		return "read_exam", nil
	case domain.CategoryListen:
		return "listen_exam", nil
	case domain.CategoryWriteGeneration, domain.CategoryWriteEvaluation:
		return "write_exam", nil
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidCategory, category)
	}
}

// resultColumn returns the exam record column a finished job of the given
// category writes into.
func resultColumn(category domain.Category) string {
	if category == domain.CategoryWriteEvaluation {
		return "evaluation"
	}
	return "payload"
}

// Enqueue implements store.JobStore.Enqueue
func (s *PostgresJobStore) Enqueue(ctx context.Context, job *domain.ExamJob) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := job.Validate(); err != nil {
		log.Warn("job validation failed during enqueue",
			slog.String("error", err.Error()),
			slog.String("queue_id", job.QueueID.String()))
		return err
	}

	query := `
		INSERT INTO exam_jobs (queue_id, category, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := s.db.QueryRowContext(
		ctx,
		query,
		job.QueueID,
		job.Category,
		job.Status,
		job.CreatedAt,
		job.UpdatedAt,
	).Scan(&job.ID)

	if err != nil {
		log.Error("failed to enqueue job",
			slog.String("error", err.Error()),
			slog.String("queue_id", job.QueueID.String()),
			slog.String("category", job.Category.String()))
		return MapError(err)
	}

	log.Info("job enqueued",
		slog.Int64("job_id", job.ID),
		slog.String("queue_id", job.QueueID.String()),
		slog.String("category", job.Category.String()))
	return nil
}

// ClaimNext implements store.JobStore.ClaimNext
//
// The candidate row is selected oldest-first by internal ID and locked with
// FOR UPDATE SKIP LOCKED, so two concurrent claimants never observe the same
// not_started row: the second caller skips it and sees the next candidate,
// or none.
func (s *PostgresJobStore) ClaimNext(ctx context.Context) (*store.ClaimedJob, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if s.sqlDB == nil {
		return nil, store.NewStoreError("exam_job", "claim", "claim requires a connection-backed store", nil)
	}

	var claimed *store.ClaimedJob

	err := store.RunInTransaction(ctx, s.sqlDB, func(ctx context.Context, tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `
			SELECT id, queue_id, category
			FROM exam_jobs
			WHERE status = $1
			ORDER BY id ASC
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		`, domain.JobStatusNotStarted)

		var (
			jobID    int64
			queueID  uuid.UUID
			category domain.Category
		)
		if err := row.Scan(&jobID, &queueID, &category); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return store.ErrNoJobs
			}
			return MapError(err)
		}

		table, err := examTable(category)
		if err != nil {
			return err
		}

		// Denormalize the level from the matching exam record. A job with no
		// record is a consistency error the worker must not process.
		var level domain.Level
		levelQuery := fmt.Sprintf("SELECT level FROM %s WHERE queue_id = $1", table)
		if err := tx.QueryRowContext(ctx, levelQuery, queueID).Scan(&level); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				log.Error("claimed job has no exam record",
					slog.Int64("job_id", jobID),
					slog.String("queue_id", queueID.String()),
					slog.String("category", category.String()))
				return fmt.Errorf("%w: job %d (queue_id %s)", store.ErrInconsistentJob, jobID, queueID)
			}
			return MapError(err)
		}

		result, err := tx.ExecContext(ctx, `
			UPDATE exam_jobs
			SET status = $1, updated_at = $2
			WHERE id = $3
		`, domain.JobStatusInProgress, time.Now().UTC(), jobID)
		if err != nil {
			return MapError(err)
		}
		if n, err := result.RowsAffected(); err != nil {
			return MapError(err)
		} else if n == 0 {
			// Cannot happen while we hold the row lock.
			return store.NewStoreError("exam_job", "claim", "locked row vanished", nil)
		}

		claimed = &store.ClaimedJob{
			JobID:    jobID,
			QueueID:  queueID,
			Category: category,
			Level:    level,
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	log.Info("job claimed",
		slog.Int64("job_id", claimed.JobID),
		slog.String("queue_id", claimed.QueueID.String()),
		slog.String("category", claimed.Category.String()),
		slog.String("level", claimed.Level.String()))
	return claimed, nil
}

// MarkDone implements store.JobStore.MarkDone
//
// The status transition and the payload write happen in one transaction so
// a job is never observable as done with a null payload.
func (s *PostgresJobStore) MarkDone(ctx context.Context, jobID int64, category domain.Category, payload json.RawMessage) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if s.sqlDB == nil {
		return store.NewStoreError("exam_job", "mark_done", "mark_done requires a connection-backed store", nil)
	}

	table, err := examTable(category)
	if err != nil {
		return err
	}
	column := resultColumn(category)

	return store.RunInTransaction(ctx, s.sqlDB, func(ctx context.Context, tx *sql.Tx) error {
		now := time.Now().UTC()

		var queueID uuid.UUID
		err := tx.QueryRowContext(ctx, `
			UPDATE exam_jobs
			SET status = $1, updated_at = $2
			WHERE id = $3 AND status = $4
			RETURNING queue_id
		`, domain.JobStatusDone, now, jobID, domain.JobStatusInProgress).Scan(&queueID)

		if errors.Is(err, sql.ErrNoRows) {
			// Job is not in_progress: either unknown or already terminal.
			// A terminal job is a no-op; an unknown ID is an error.
			var status domain.JobStatus
			statusErr := tx.QueryRowContext(ctx,
				`SELECT status FROM exam_jobs WHERE id = $1`, jobID).Scan(&status)
			if errors.Is(statusErr, sql.ErrNoRows) {
				return fmt.Errorf("%w: id %d", store.ErrJobNotFound, jobID)
			}
			if statusErr != nil {
				return MapError(statusErr)
			}
			if status.IsTerminal() {
				log.Warn("mark_done on already-terminal job, ignoring",
					slog.Int64("job_id", jobID),
					slog.String("status", string(status)))
				return nil
			}
			return fmt.Errorf("%w: job %d is %s, not %s",
				store.ErrUpdateFailed, jobID, status, domain.JobStatusInProgress)
		}
		if err != nil {
			return MapError(err)
		}

		updateQuery := fmt.Sprintf(
			"UPDATE %s SET %s = $1, updated_at = $2 WHERE queue_id = $3",
			table, column,
		)
		result, err := tx.ExecContext(ctx, updateQuery, []byte(payload), now, queueID)
		if err != nil {
			return MapError(err)
		}
		if n, err := result.RowsAffected(); err != nil {
			return MapError(err)
		} else if n == 0 {
			return fmt.Errorf("%w: job %d (queue_id %s)", store.ErrInconsistentJob, jobID, queueID)
		}

		log.Info("job marked done",
			slog.Int64("job_id", jobID),
			slog.String("queue_id", queueID.String()),
			slog.String("category", category.String()))
		return nil
	})
}

// MarkFailed implements store.JobStore.MarkFailed
//
// The transition is unconditional and idempotent: a second call leaves the
// status failed. No retry is scheduled; failed is terminal.
func (s *PostgresJobStore) MarkFailed(ctx context.Context, queueID uuid.UUID, errMsg string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `
		UPDATE exam_jobs
		SET status = $1, error_message = $2, updated_at = $3
		WHERE queue_id = $4
	`, domain.JobStatusFailed, errMsg, time.Now().UTC(), queueID)

	if err != nil {
		log.Error("failed to mark job failed",
			slog.String("error", err.Error()),
			slog.String("queue_id", queueID.String()))
		return MapError(err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return MapError(err)
	}
	if n == 0 {
		log.Warn("no job found to mark failed",
			slog.String("queue_id", queueID.String()))
		return fmt.Errorf("%w: queue_id %s", store.ErrJobNotFound, queueID)
	}

	log.Info("job marked failed",
		slog.String("queue_id", queueID.String()),
		slog.String("error_message", errMsg))
	return nil
}

// ListJobs implements store.JobStore.ListJobs
func (s *PostgresJobStore) ListJobs(ctx context.Context) ([]*domain.ExamJob, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, queue_id, category, status, error_message, created_at, updated_at
		FROM exam_jobs
		ORDER BY id DESC
	`)
	if err != nil {
		log.Error("failed to list jobs", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var jobs []*domain.ExamJob
	for rows.Next() {
		var (
			job      domain.ExamJob
			errorMsg sql.NullString
		)
		if err := rows.Scan(
			&job.ID,
			&job.QueueID,
			&job.Category,
			&job.Status,
			&errorMsg,
			&job.CreatedAt,
			&job.UpdatedAt,
		); err != nil {
			return nil, MapError(err)
		}
		job.ErrorMessage = errorMsg.String
		jobs = append(jobs, &job)
	}

	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return jobs, nil
}
