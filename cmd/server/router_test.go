package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goethe-exam/exam-api/internal/domain"
	"github.com/goethe-exam/exam-api/internal/store"
)

type fakeDispatcher struct {
	queueID uuid.UUID
}

func (f *fakeDispatcher) RequestJob(context.Context, domain.Category, domain.Level) (uuid.UUID, error) {
	return f.queueID, nil
}

func (f *fakeDispatcher) RequestEvaluation(context.Context, uuid.UUID, json.RawMessage) error {
	return nil
}

type fakeJobStore struct{}

func (fakeJobStore) Enqueue(context.Context, *domain.ExamJob) error { return nil }
func (fakeJobStore) ClaimNext(context.Context) (*store.ClaimedJob, error) {
	return nil, store.ErrNoJobs
}
func (fakeJobStore) MarkDone(context.Context, int64, domain.Category, json.RawMessage) error {
	return nil
}
func (fakeJobStore) MarkFailed(context.Context, uuid.UUID, string) error { return nil }
func (fakeJobStore) ListJobs(context.Context) ([]*domain.ExamJob, error) {
	return nil, nil
}
func (fakeJobStore) WithTx(*sql.Tx) store.JobStore { return fakeJobStore{} }

type fakeExamStore struct{}

func (fakeExamStore) Create(context.Context, uuid.UUID, domain.Level) error { return nil }
func (fakeExamStore) Level(context.Context, uuid.UUID) (domain.Level, error) {
	return domain.LevelB1, nil
}
func (fakeExamStore) GetPayload(context.Context, uuid.UUID) (json.RawMessage, error) {
	return nil, store.ErrNotReady
}
func (fakeExamStore) UpdatePayload(context.Context, uuid.UUID, json.RawMessage) error { return nil }
func (fakeExamStore) UpdateParticipantAnswers(context.Context, uuid.UUID, json.RawMessage) error {
	return nil
}
func (fakeExamStore) UpdateParticipantResults(context.Context, uuid.UUID, json.RawMessage, float64, bool) error {
	return nil
}
func (fakeExamStore) UpdateScore(context.Context, uuid.UUID, float64, bool) error { return nil }
func (fakeExamStore) WithTx(*sql.Tx) store.ExamStore                              { return fakeExamStore{} }

type fakeWriteExamStore struct{ fakeExamStore }

func (fakeWriteExamStore) GetEvaluation(context.Context, uuid.UUID) (json.RawMessage, error) {
	return nil, store.ErrNotReady
}
func (fakeWriteExamStore) UpdateEvaluation(context.Context, uuid.UUID, json.RawMessage) error {
	return nil
}
func (fakeWriteExamStore) GetForEvaluation(context.Context, uuid.UUID) (json.RawMessage, json.RawMessage, error) {
	return nil, nil, store.ErrNotReady
}

func newTestRouter() http.Handler {
	return newRouter(routerDeps{
		dispatcher:  &fakeDispatcher{queueID: uuid.New()},
		jobs:        fakeJobStore{},
		readExams:   fakeExamStore{},
		writeExams:  fakeWriteExamStore{},
		listenExams: fakeExamStore{},
		logger:      slog.Default(),
	})
}

func TestRouterRoutes(t *testing.T) {
	t.Parallel()
	router := newTestRouter()

	cases := []struct {
		method string
		target string
		status int
	}{
		{http.MethodPut, "/read?level=B1", http.StatusOK},
		{http.MethodGet, "/read?queue_id=" + uuid.NewString(), http.StatusNotFound},
		{http.MethodPut, "/listen?level=A1", http.StatusOK},
		{http.MethodPut, "/write?level=C1", http.StatusOK},
		{http.MethodGet, "/write?modus=generate&queue_id=" + uuid.NewString(), http.StatusNotFound},
		{http.MethodGet, "/jobs", http.StatusOK},
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodPut, "/read?level=B7", http.StatusBadRequest},
		{http.MethodGet, "/speak", http.StatusNotFound},
		{http.MethodDelete, "/read", http.StatusMethodNotAllowed},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.target, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, tc.status, rec.Code, "%s %s", tc.method, tc.target)
	}
}

func TestRouterCORSPreflight(t *testing.T) {
	t.Parallel()
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodOptions, "/read", nil)
	req.Header.Set("Origin", "https://exam-frontend.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPut)
}

func TestRouterCORSActualRequest(t *testing.T) {
	t.Parallel()
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://exam-frontend.example")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
