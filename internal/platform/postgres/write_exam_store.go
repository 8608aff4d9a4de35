package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/goethe-exam/exam-api/internal/platform/logger"
	"github.com/goethe-exam/exam-api/internal/store"
)

// PostgresWriteExamStore implements store.WriteExamStore. It is the
// write_exam variant of PostgresExamStore with the evaluation-phase
// operations layered on top.
type PostgresWriteExamStore struct {
	PostgresExamStore
}

// NewPostgresWriteExamStore creates the store over the write_exam table.
func NewPostgresWriteExamStore(db store.DBTX, log *slog.Logger) *PostgresWriteExamStore {
	return &PostgresWriteExamStore{
		PostgresExamStore: *newExamStore(db, log, "write_exam"),
	}
}

// Ensure PostgresWriteExamStore implements store.WriteExamStore
var _ store.WriteExamStore = (*PostgresWriteExamStore)(nil)

// WithTx implements store.ExamStore.WithTx
func (s *PostgresWriteExamStore) WithTx(tx *sql.Tx) store.ExamStore {
	return &PostgresWriteExamStore{
		PostgresExamStore: PostgresExamStore{
			db:     tx,
			logger: s.logger,
			table:  s.table,
		},
	}
}

// GetEvaluation implements store.WriteExamStore.GetEvaluation
func (s *PostgresWriteExamStore) GetEvaluation(ctx context.Context, queueID uuid.UUID) (json.RawMessage, error) {
	return s.getDocument(ctx, queueID, "evaluation")
}

// UpdateEvaluation implements store.WriteExamStore.UpdateEvaluation
func (s *PostgresWriteExamStore) UpdateEvaluation(ctx context.Context, queueID uuid.UUID, evaluation json.RawMessage) error {
	return s.updateDocument(ctx, queueID, "evaluation", evaluation)
}

// GetForEvaluation implements store.WriteExamStore.GetForEvaluation
//
// Returns the generated exam payload and the participant's answers, the two
// inputs a write_evaluation job needs. Null columns come back as nil rather
// than as errors: the worker decides whether missing inputs are fatal.
func (s *PostgresWriteExamStore) GetForEvaluation(ctx context.Context, queueID uuid.UUID) (json.RawMessage, json.RawMessage, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var payload, answers []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT payload, participant_answers
		FROM write_exam
		WHERE queue_id = $1
	`, queueID).Scan(&payload, &answers)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, fmt.Errorf("%w: queue_id %s", store.ErrExamNotFound, queueID)
		}
		log.Error("failed to load write exam for evaluation",
			slog.String("error", err.Error()),
			slog.String("queue_id", queueID.String()))
		return nil, nil, MapError(err)
	}

	return json.RawMessage(payload), json.RawMessage(answers), nil
}
