package api_test

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/goethe-exam/exam-api/internal/domain"
	"github.com/goethe-exam/exam-api/internal/store"
)

// mockDispatcher records requests and returns canned results.
type mockDispatcher struct {
	queueID uuid.UUID
	jobErr  error
	evalErr error

	requestedCategory domain.Category
	requestedLevel    domain.Level
	evaluatedQueueID  uuid.UUID
	evaluatedAnswers  json.RawMessage
	jobCalls          int
	evalCalls         int
}

func (m *mockDispatcher) RequestJob(_ context.Context, category domain.Category, level domain.Level) (uuid.UUID, error) {
	m.jobCalls++
	m.requestedCategory = category
	m.requestedLevel = level
	if m.jobErr != nil {
		return uuid.Nil, m.jobErr
	}
	return m.queueID, nil
}

func (m *mockDispatcher) RequestEvaluation(_ context.Context, queueID uuid.UUID, answers json.RawMessage) error {
	m.evalCalls++
	m.evaluatedQueueID = queueID
	m.evaluatedAnswers = answers
	return m.evalErr
}

// stubExamStore serves documents keyed by queue ID and records result
// submissions.
type stubExamStore struct {
	payloads    map[uuid.UUID]json.RawMessage
	evaluations map[uuid.UUID]json.RawMessage

	resultsQueueID uuid.UUID
	resultsAnswers json.RawMessage
	resultsScore   float64
	resultsIsPass  bool
	resultsCalls   int
	resultsErr     error
}

func newStubExamStore() *stubExamStore {
	return &stubExamStore{
		payloads:    make(map[uuid.UUID]json.RawMessage),
		evaluations: make(map[uuid.UUID]json.RawMessage),
	}
}

func (s *stubExamStore) Create(context.Context, uuid.UUID, domain.Level) error { return nil }

func (s *stubExamStore) Level(context.Context, uuid.UUID) (domain.Level, error) {
	return domain.LevelB1, nil
}

func (s *stubExamStore) GetPayload(_ context.Context, queueID uuid.UUID) (json.RawMessage, error) {
	payload, ok := s.payloads[queueID]
	if !ok {
		return nil, store.ErrExamNotFound
	}
	return payload, nil
}

func (s *stubExamStore) UpdatePayload(context.Context, uuid.UUID, json.RawMessage) error {
	return nil
}

func (s *stubExamStore) UpdateParticipantAnswers(context.Context, uuid.UUID, json.RawMessage) error {
	return nil
}

func (s *stubExamStore) UpdateParticipantResults(_ context.Context, queueID uuid.UUID, answers json.RawMessage, score float64, isPass bool) error {
	s.resultsCalls++
	if s.resultsErr != nil {
		return s.resultsErr
	}
	s.resultsQueueID = queueID
	s.resultsAnswers = answers
	s.resultsScore = score
	s.resultsIsPass = isPass
	return nil
}

func (s *stubExamStore) UpdateScore(context.Context, uuid.UUID, float64, bool) error { return nil }

func (s *stubExamStore) WithTx(*sql.Tx) store.ExamStore { return s }

// stubWriteExamStore adds the evaluation document operations.
type stubWriteExamStore struct {
	*stubExamStore
}

func newStubWriteExamStore() *stubWriteExamStore {
	return &stubWriteExamStore{stubExamStore: newStubExamStore()}
}

func (s *stubWriteExamStore) GetEvaluation(_ context.Context, queueID uuid.UUID) (json.RawMessage, error) {
	evaluation, ok := s.evaluations[queueID]
	if !ok {
		return nil, store.ErrExamNotFound
	}
	return evaluation, nil
}

func (s *stubWriteExamStore) UpdateEvaluation(context.Context, uuid.UUID, json.RawMessage) error {
	return nil
}

func (s *stubWriteExamStore) GetForEvaluation(context.Context, uuid.UUID) (json.RawMessage, json.RawMessage, error) {
	return nil, nil, store.ErrExamNotFound
}
