package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/goethe-exam/exam-api/internal/domain"
)

// ExamStore is the per-category store over the read_exam, write_exam and
// listen_exam tables. All operations are keyed by queue ID.
//
// GetPayload deliberately conflates "no such row" and "payload not generated
// yet": both return an error satisfying errors.Is(err, ErrNotFound). Callers
// that need to distinguish the two cases cannot, and that is the documented
// contract, not an oversight.
type ExamStore interface {
	// Create inserts a blank exam record with the given level.
	Create(ctx context.Context, queueID uuid.UUID, level domain.Level) error

	// Level returns the CEFR level stored with the exam record.
	// Returns ErrExamNotFound if no record exists.
	Level(ctx context.Context, queueID uuid.UUID) (domain.Level, error)

	// GetPayload returns the generated exam content. Returns ErrExamNotFound
	// for an unknown queue ID and ErrNotReady when the payload is still null.
	GetPayload(ctx context.Context, queueID uuid.UUID) (json.RawMessage, error)

	// UpdatePayload writes the generated exam content. Called only on job
	// completion, inside the MarkDone transaction.
	UpdatePayload(ctx context.Context, queueID uuid.UUID, payload json.RawMessage) error

	// UpdateParticipantAnswers stores the participant's submitted answers.
	// Returns ErrUpdateFailed if no record matched.
	UpdateParticipantAnswers(ctx context.Context, queueID uuid.UUID, answers json.RawMessage) error

	// UpdateParticipantResults stores answers together with a grading
	// outcome in one statement. Returns ErrUpdateFailed if no record matched.
	UpdateParticipantResults(ctx context.Context, queueID uuid.UUID, answers json.RawMessage, score float64, isPass bool) error

	// UpdateScore stores a grading outcome. Returns ErrUpdateFailed if no
	// record matched.
	UpdateScore(ctx context.Context, queueID uuid.UUID, score float64, isPass bool) error

	// WithTx returns an ExamStore that runs its statements on the provided
	// transaction.
	WithTx(tx *sql.Tx) ExamStore
}

// WriteExamStore extends ExamStore with the evaluation-phase operations that
// exist only on the write_exam table.
type WriteExamStore interface {
	ExamStore

	// GetEvaluation returns the evaluation document, with the same
	// not-found/not-ready conflation as GetPayload.
	GetEvaluation(ctx context.Context, queueID uuid.UUID) (json.RawMessage, error)

	// UpdateEvaluation writes the evaluation document produced by a
	// write_evaluation job.
	UpdateEvaluation(ctx context.Context, queueID uuid.UUID, evaluation json.RawMessage) error

	// GetForEvaluation returns the exam payload and the participant's
	// answers, the two inputs of an evaluation job.
	GetForEvaluation(ctx context.Context, queueID uuid.UUID) (payload, answers json.RawMessage, err error)
}
