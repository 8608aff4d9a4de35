package api_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goethe-exam/exam-api/internal/api"
	"github.com/goethe-exam/exam-api/internal/domain"
	"github.com/goethe-exam/exam-api/internal/store"
)

func TestWriteExamHandlerStart(t *testing.T) {
	t.Parallel()

	t.Run("without queue_id starts generation", func(t *testing.T) {
		t.Parallel()

		queueID := uuid.New()
		dispatcher := &mockDispatcher{queueID: queueID}
		handler := api.NewWriteExamHandler(dispatcher, newStubWriteExamStore(), slog.Default())

		req := httptest.NewRequest(http.MethodPut, "/write?level=B2", nil)
		rec := httptest.NewRecorder()
		handler.Start(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp api.JobStartedResponse
		decodeBody(t, rec, &resp)
		assert.Equal(t, "Write generation job started", resp.Message)
		assert.Equal(t, queueID.String(), resp.QueueID)

		assert.Equal(t, domain.CategoryWriteGeneration, dispatcher.requestedCategory)
		assert.Equal(t, domain.LevelB2, dispatcher.requestedLevel)
		assert.Zero(t, dispatcher.evalCalls)
	})

	t.Run("with queue_id starts evaluation", func(t *testing.T) {
		t.Parallel()

		queueID := uuid.New()
		dispatcher := &mockDispatcher{}
		handler := api.NewWriteExamHandler(dispatcher, newStubWriteExamStore(), slog.Default())

		body := `{"participant_answers": ["Sehr geehrte Damen und Herren, ..."]}`
		req := httptest.NewRequest(http.MethodPut, "/write?queue_id="+queueID.String(), strings.NewReader(body))
		rec := httptest.NewRecorder()
		handler.Start(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp api.JobStartedResponse
		decodeBody(t, rec, &resp)
		assert.Equal(t, "Write evaluation job started", resp.Message)
		assert.Equal(t, queueID.String(), resp.QueueID)

		assert.Equal(t, 1, dispatcher.evalCalls)
		assert.Equal(t, queueID, dispatcher.evaluatedQueueID)
		assert.JSONEq(t, `["Sehr geehrte Damen und Herren, ..."]`, string(dispatcher.evaluatedAnswers))
		assert.Zero(t, dispatcher.jobCalls)
	})

	t.Run("evaluation without answers is 400", func(t *testing.T) {
		t.Parallel()

		dispatcher := &mockDispatcher{}
		handler := api.NewWriteExamHandler(dispatcher, newStubWriteExamStore(), slog.Default())

		req := httptest.NewRequest(http.MethodPut, "/write?queue_id="+uuid.NewString(), strings.NewReader(`{}`))
		rec := httptest.NewRecorder()
		handler.Start(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "participant_answers")
		assert.Zero(t, dispatcher.evalCalls)
	})

	t.Run("evaluation for unknown queue ID is 404", func(t *testing.T) {
		t.Parallel()

		dispatcher := &mockDispatcher{evalErr: store.ErrUpdateFailed}
		handler := api.NewWriteExamHandler(dispatcher, newStubWriteExamStore(), slog.Default())

		body := `{"participant_answers": ["text"]}`
		req := httptest.NewRequest(http.MethodPut, "/write?queue_id="+uuid.NewString(), strings.NewReader(body))
		rec := httptest.NewRecorder()
		handler.Start(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("generation with invalid level is 400", func(t *testing.T) {
		t.Parallel()

		dispatcher := &mockDispatcher{}
		handler := api.NewWriteExamHandler(dispatcher, newStubWriteExamStore(), slog.Default())

		req := httptest.NewRequest(http.MethodPut, "/write?level=X9", nil)
		rec := httptest.NewRecorder()
		handler.Start(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid level")
	})
}

func TestWriteExamHandlerGetResult(t *testing.T) {
	t.Parallel()

	queueID := uuid.New()

	newHandler := func() (*stubWriteExamStore, *api.WriteExamHandler) {
		exams := newStubWriteExamStore()
		return exams, api.NewWriteExamHandler(&mockDispatcher{}, exams, slog.Default())
	}

	t.Run("modus generate returns the exam payload", func(t *testing.T) {
		t.Parallel()

		exams, handler := newHandler()
		exams.payloads[queueID] = json.RawMessage(`{"task":"Schreiben Sie einen Brief"}`)

		req := httptest.NewRequest(http.MethodGet, "/write?modus=generate&queue_id="+queueID.String(), nil)
		rec := httptest.NewRecorder()
		handler.GetResult(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp api.PayloadResponse
		decodeBody(t, rec, &resp)
		assert.JSONEq(t, `{"task":"Schreiben Sie einen Brief"}`, string(resp.Payload))
	})

	t.Run("modus evaluate returns the evaluation document", func(t *testing.T) {
		t.Parallel()

		exams, handler := newHandler()
		exams.evaluations[queueID] = json.RawMessage(`{"score": 75, "feedback": "gut"}`)

		req := httptest.NewRequest(http.MethodGet, "/write?modus=evaluate&queue_id="+queueID.String(), nil)
		rec := httptest.NewRecorder()
		handler.GetResult(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp api.PayloadResponse
		decodeBody(t, rec, &resp)
		assert.JSONEq(t, `{"score": 75, "feedback": "gut"}`, string(resp.Payload))
	})

	t.Run("pending evaluation is 404", func(t *testing.T) {
		t.Parallel()

		exams, handler := newHandler()
		exams.payloads[queueID] = json.RawMessage(`{"task":"..."}`)

		req := httptest.NewRequest(http.MethodGet, "/write?modus=evaluate&queue_id="+queueID.String(), nil)
		rec := httptest.NewRecorder()
		handler.GetResult(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("missing or unknown modus is 400", func(t *testing.T) {
		t.Parallel()

		_, handler := newHandler()

		for _, target := range []string{
			"/write?queue_id=" + queueID.String(),
			"/write?modus=grade&queue_id=" + queueID.String(),
		} {
			req := httptest.NewRequest(http.MethodGet, target, nil)
			rec := httptest.NewRecorder()
			handler.GetResult(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code, "target %s", target)
			assert.Contains(t, rec.Body.String(), "modus")
		}
	})
}
