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

// PostgresExamStore implements store.ExamStore for a single exam record
// table. The three category tables (read_exam, write_exam, listen_exam)
// share the same shape except for write_exam's evaluation column, so one
// implementation parameterized by table name covers them all.
type PostgresExamStore struct {
	db     store.DBTX
	logger *slog.Logger
	table  string
}

// NewPostgresReadExamStore creates the store over the read_exam table.
func NewPostgresReadExamStore(db store.DBTX, log *slog.Logger) *PostgresExamStore {
	return newExamStore(db, log, "read_exam")
}

// NewPostgresListenExamStore creates the store over the listen_exam table.
func NewPostgresListenExamStore(db store.DBTX, log *slog.Logger) *PostgresExamStore {
	return newExamStore(db, log, "listen_exam")
}

func newExamStore(db store.DBTX, log *slog.Logger, table string) *PostgresExamStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}

	if log == nil {
		log = slog.Default()
	}

	return &PostgresExamStore{
		db:     db,
		logger: log.With(slog.String("component", table+"_store")),
		table:  table,
	}
}

// Ensure PostgresExamStore implements store.ExamStore
var _ store.ExamStore = (*PostgresExamStore)(nil)

// WithTx implements store.ExamStore.WithTx
func (s *PostgresExamStore) WithTx(tx *sql.Tx) store.ExamStore {
	return &PostgresExamStore{
		db:     tx,
		logger: s.logger,
		table:  s.table,
	}
}

// Create implements store.ExamStore.Create
func (s *PostgresExamStore) Create(ctx context.Context, queueID uuid.UUID, level domain.Level) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := domain.ValidateExamKey(queueID, level); err != nil {
		return err
	}

	now := time.Now().UTC()
	query := fmt.Sprintf(`
		INSERT INTO %s (queue_id, level, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
	`, s.table)

	if _, err := s.db.ExecContext(ctx, query, queueID, level, now, now); err != nil {
		log.Error("failed to create exam record",
			slog.String("error", err.Error()),
			slog.String("queue_id", queueID.String()),
			slog.String("level", level.String()))
		return MapError(err)
	}

	log.Info("exam record created",
		slog.String("queue_id", queueID.String()),
		slog.String("level", level.String()))
	return nil
}

// Level implements store.ExamStore.Level
func (s *PostgresExamStore) Level(ctx context.Context, queueID uuid.UUID) (domain.Level, error) {
	var level domain.Level
	query := fmt.Sprintf("SELECT level FROM %s WHERE queue_id = $1", s.table)
	if err := s.db.QueryRowContext(ctx, query, queueID).Scan(&level); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%w: queue_id %s", store.ErrExamNotFound, queueID)
		}
		return "", MapError(err)
	}
	return level, nil
}

// GetPayload implements store.ExamStore.GetPayload
//
// An unknown queue ID and a not-yet-generated payload are both reported as
// not-found; the two cases are observably identical to callers by design.
func (s *PostgresExamStore) GetPayload(ctx context.Context, queueID uuid.UUID) (json.RawMessage, error) {
	return s.getDocument(ctx, queueID, "payload")
}

// getDocument reads one nullable JSONB column for the given queue ID.
func (s *PostgresExamStore) getDocument(ctx context.Context, queueID uuid.UUID, column string) (json.RawMessage, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var raw []byte
	query := fmt.Sprintf("SELECT %s FROM %s WHERE queue_id = $1", column, s.table)
	if err := s.db.QueryRowContext(ctx, query, queueID).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: queue_id %s", store.ErrExamNotFound, queueID)
		}
		return nil, MapError(err)
	}

	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: %s for queue_id %s", store.ErrNotReady, column, queueID)
	}

	// Tolerate a column value that is not valid JSON (e.g. raw provider text
	// stored by an earlier version): return it as a JSON string rather than
	// failing the whole read.
	if !json.Valid(raw) {
		log.Warn("exam document column is not valid JSON, returning raw value",
			slog.String("queue_id", queueID.String()),
			slog.String("column", column))
		wrapped, err := json.Marshal(string(raw))
		if err != nil {
			return nil, fmt.Errorf("failed to wrap raw %s value: %w", column, err)
		}
		return wrapped, nil
	}

	return json.RawMessage(raw), nil
}

// UpdatePayload implements store.ExamStore.UpdatePayload
func (s *PostgresExamStore) UpdatePayload(ctx context.Context, queueID uuid.UUID, payload json.RawMessage) error {
	return s.updateDocument(ctx, queueID, "payload", payload)
}

func (s *PostgresExamStore) updateDocument(ctx context.Context, queueID uuid.UUID, column string, doc json.RawMessage) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := fmt.Sprintf(
		"UPDATE %s SET %s = $1, updated_at = $2 WHERE queue_id = $3",
		s.table, column,
	)
	result, err := s.db.ExecContext(ctx, query, []byte(doc), time.Now().UTC(), queueID)
	if err != nil {
		log.Error("failed to update exam document",
			slog.String("error", err.Error()),
			slog.String("queue_id", queueID.String()),
			slog.String("column", column))
		return MapError(err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return MapError(err)
	}
	if n == 0 {
		return fmt.Errorf("%w: queue_id %s", store.ErrUpdateFailed, queueID)
	}

	return nil
}

// UpdateParticipantAnswers implements store.ExamStore.UpdateParticipantAnswers
func (s *PostgresExamStore) UpdateParticipantAnswers(ctx context.Context, queueID uuid.UUID, answers json.RawMessage) error {
	return s.updateDocument(ctx, queueID, "participant_answers", answers)
}

// UpdateParticipantResults implements store.ExamStore.UpdateParticipantResults
func (s *PostgresExamStore) UpdateParticipantResults(ctx context.Context, queueID uuid.UUID, answers json.RawMessage, score float64, isPass bool) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := fmt.Sprintf(`
		UPDATE %s
		SET participant_answers = $1, score = $2, is_pass = $3, updated_at = $4
		WHERE queue_id = $5
	`, s.table)
	result, err := s.db.ExecContext(ctx, query, []byte(answers), score, isPass, time.Now().UTC(), queueID)
	if err != nil {
		log.Error("failed to update participant results",
			slog.String("error", err.Error()),
			slog.String("queue_id", queueID.String()))
		return MapError(err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return MapError(err)
	}
	if n == 0 {
		return fmt.Errorf("%w: queue_id %s", store.ErrUpdateFailed, queueID)
	}

	log.Info("participant results updated",
		slog.String("queue_id", queueID.String()),
		slog.Float64("score", score),
		slog.Bool("is_pass", isPass))
	return nil
}

// UpdateScore implements store.ExamStore.UpdateScore
func (s *PostgresExamStore) UpdateScore(ctx context.Context, queueID uuid.UUID, score float64, isPass bool) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := fmt.Sprintf(
		"UPDATE %s SET score = $1, is_pass = $2, updated_at = $3 WHERE queue_id = $4",
		s.table,
	)
	result, err := s.db.ExecContext(ctx, query, score, isPass, time.Now().UTC(), queueID)
	if err != nil {
		log.Error("failed to update score",
			slog.String("error", err.Error()),
			slog.String("queue_id", queueID.String()))
		return MapError(err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return MapError(err)
	}
	if n == 0 {
		log.Warn("no exam record to update score for",
			slog.String("queue_id", queueID.String()))
		return fmt.Errorf("%w: queue_id %s", store.ErrUpdateFailed, queueID)
	}

	log.Info("exam score updated",
		slog.String("queue_id", queueID.String()),
		slog.Float64("score", score),
		slog.Bool("is_pass", isPass))
	return nil
}
