package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/goethe-exam/exam-api/internal/domain"
)

// ClaimedJob is the result of successfully claiming a job. The CEFR level is
// denormalized from the matching exam record at claim time so the worker does
// not need a second lookup.
type ClaimedJob struct {
	JobID    int64
	QueueID  uuid.UUID
	Category domain.Category
	Level    domain.Level
}

// JobStore defines the interface for the durable job queue.
//
// ClaimNext is the single correctness-critical operation of the system: two
// concurrent callers must never both receive the same not_started job.
// Implementations enforce this with a transactional row lock on exactly one
// candidate row.
type JobStore interface {
	// Enqueue inserts a new exam job in the not_started state and fills in
	// the database-assigned internal ID.
	Enqueue(ctx context.Context, job *domain.ExamJob) error

	// ClaimNext atomically transitions the oldest not_started job to
	// in_progress and returns it, with the level denormalized from the
	// matching exam record. Returns ErrNoJobs when the queue is empty and
	// ErrInconsistentJob when the claimed job has no exam record.
	ClaimNext(ctx context.Context) (*ClaimedJob, error)

	// MarkDone transitions a job to done and writes the result payload into
	// the matching exam record, in one transaction. Calling it on an
	// already-terminal job is a logged no-op.
	MarkDone(ctx context.Context, jobID int64, category domain.Category, payload json.RawMessage) error

	// MarkFailed transitions the job(s) for the given queue ID to failed and
	// records the error message. Unconditional and idempotent; no retry is
	// ever scheduled.
	MarkFailed(ctx context.Context, queueID uuid.UUID, errMsg string) error

	// ListJobs returns all exam jobs, newest first.
	ListJobs(ctx context.Context) ([]*domain.ExamJob, error)

	// WithTx returns a JobStore that runs its statements on the provided
	// transaction. The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) JobStore
}
