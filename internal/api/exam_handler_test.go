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

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(v))
}

func TestExamHandlerStartGeneration(t *testing.T) {
	t.Parallel()

	t.Run("starts a read generation job", func(t *testing.T) {
		t.Parallel()

		queueID := uuid.New()
		dispatcher := &mockDispatcher{queueID: queueID}
		handler := api.NewReadExamHandler(dispatcher, newStubExamStore(), slog.Default())

		req := httptest.NewRequest(http.MethodPut, "/read?level=B1", nil)
		rec := httptest.NewRecorder()
		handler.StartGeneration(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp api.JobStartedResponse
		decodeBody(t, rec, &resp)
		assert.Equal(t, "Read generation job started", resp.Message)
		assert.Equal(t, queueID.String(), resp.QueueID)

		assert.Equal(t, 1, dispatcher.jobCalls)
		assert.Equal(t, domain.CategoryRead, dispatcher.requestedCategory)
		assert.Equal(t, domain.LevelB1, dispatcher.requestedLevel)
	})

	t.Run("listen handler enqueues the listen category", func(t *testing.T) {
		t.Parallel()

		dispatcher := &mockDispatcher{queueID: uuid.New()}
		handler := api.NewListenExamHandler(dispatcher, newStubExamStore(), slog.Default())

		req := httptest.NewRequest(http.MethodPut, "/listen?level=C2", nil)
		rec := httptest.NewRecorder()
		handler.StartGeneration(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, domain.CategoryListen, dispatcher.requestedCategory)
	})

	t.Run("invalid level is rejected without creating a job", func(t *testing.T) {
		t.Parallel()

		dispatcher := &mockDispatcher{queueID: uuid.New()}
		handler := api.NewReadExamHandler(dispatcher, newStubExamStore(), slog.Default())

		req := httptest.NewRequest(http.MethodPut, "/read?level=B7", nil)
		rec := httptest.NewRecorder()
		handler.StartGeneration(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid level")
		assert.Zero(t, dispatcher.jobCalls)
	})

	t.Run("missing level is rejected", func(t *testing.T) {
		t.Parallel()

		dispatcher := &mockDispatcher{queueID: uuid.New()}
		handler := api.NewReadExamHandler(dispatcher, newStubExamStore(), slog.Default())

		req := httptest.NewRequest(http.MethodPut, "/read", nil)
		rec := httptest.NewRecorder()
		handler.StartGeneration(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid level")
		assert.Zero(t, dispatcher.jobCalls)
	})
}

func TestExamHandlerGetResult(t *testing.T) {
	t.Parallel()

	t.Run("pending result is 404", func(t *testing.T) {
		t.Parallel()

		handler := api.NewReadExamHandler(&mockDispatcher{}, newStubExamStore(), slog.Default())

		req := httptest.NewRequest(http.MethodGet, "/read?queue_id="+uuid.NewString(), nil)
		rec := httptest.NewRecorder()
		handler.GetResult(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "Queue ID not found")
	})

	t.Run("ready result returns the payload", func(t *testing.T) {
		t.Parallel()

		queueID := uuid.New()
		exams := newStubExamStore()
		exams.payloads[queueID] = json.RawMessage(`{"title":"Lesen Teil 1"}`)
		handler := api.NewReadExamHandler(&mockDispatcher{}, exams, slog.Default())

		req := httptest.NewRequest(http.MethodGet, "/read?queue_id="+queueID.String(), nil)
		rec := httptest.NewRecorder()
		handler.GetResult(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp api.PayloadResponse
		decodeBody(t, rec, &resp)
		assert.JSONEq(t, `{"title":"Lesen Teil 1"}`, string(resp.Payload))
	})

	t.Run("missing queue_id is 400", func(t *testing.T) {
		t.Parallel()

		handler := api.NewReadExamHandler(&mockDispatcher{}, newStubExamStore(), slog.Default())

		req := httptest.NewRequest(http.MethodGet, "/read", nil)
		rec := httptest.NewRecorder()
		handler.GetResult(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed queue_id is 400", func(t *testing.T) {
		t.Parallel()

		handler := api.NewReadExamHandler(&mockDispatcher{}, newStubExamStore(), slog.Default())

		req := httptest.NewRequest(http.MethodGet, "/read?queue_id=not-a-uuid", nil)
		rec := httptest.NewRecorder()
		handler.GetResult(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestExamHandlerUpdateParticipantResults(t *testing.T) {
	t.Parallel()

	t.Run("stores answers and grading outcome", func(t *testing.T) {
		t.Parallel()

		queueID := uuid.New()
		exams := newStubExamStore()
		handler := api.NewListenExamHandler(&mockDispatcher{}, exams, slog.Default())

		body := `{"participant_answers": ["a", "b"], "score": 72.5, "is_pass": true}`
		req := httptest.NewRequest(http.MethodPatch, "/listen?queue_id="+queueID.String(), strings.NewReader(body))
		rec := httptest.NewRecorder()
		handler.UpdateParticipantResults(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp api.ParticipantResultsResponse
		decodeBody(t, rec, &resp)
		assert.Equal(t, queueID.String(), resp.QueueID)
		assert.Equal(t, 72.5, resp.Score)
		assert.True(t, resp.IsPass)

		assert.Equal(t, 1, exams.resultsCalls)
		assert.Equal(t, queueID, exams.resultsQueueID)
		assert.JSONEq(t, `["a", "b"]`, string(exams.resultsAnswers))
		assert.Equal(t, 72.5, exams.resultsScore)
		assert.True(t, exams.resultsIsPass)
	})

	t.Run("unknown queue ID is 404", func(t *testing.T) {
		t.Parallel()

		exams := newStubExamStore()
		exams.resultsErr = store.ErrUpdateFailed
		handler := api.NewReadExamHandler(&mockDispatcher{}, exams, slog.Default())

		body := `{"participant_answers": [], "score": 0, "is_pass": false}`
		req := httptest.NewRequest(http.MethodPatch, "/read?queue_id="+uuid.NewString(), strings.NewReader(body))
		rec := httptest.NewRecorder()
		handler.UpdateParticipantResults(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("missing fields are rejected", func(t *testing.T) {
		t.Parallel()

		handler := api.NewReadExamHandler(&mockDispatcher{}, newStubExamStore(), slog.Default())

		cases := map[string]string{
			"no answers":          `{"score": 50, "is_pass": false}`,
			"answers not a list":  `{"participant_answers": "abc", "score": 50, "is_pass": false}`,
			"no score":            `{"participant_answers": [], "is_pass": false}`,
			"no is_pass":          `{"participant_answers": [], "score": 50}`,
			"score not a number":  `{"participant_answers": [], "score": "fifty", "is_pass": false}`,
			"is_pass not boolean": `{"participant_answers": [], "score": 50, "is_pass": "yes"}`,
		}
		for name, body := range cases {
			req := httptest.NewRequest(http.MethodPatch, "/read?queue_id="+uuid.NewString(), strings.NewReader(body))
			rec := httptest.NewRecorder()
			handler.UpdateParticipantResults(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code, "case %q", name)
		}
	})

	t.Run("invalid JSON body is 400", func(t *testing.T) {
		t.Parallel()

		handler := api.NewReadExamHandler(&mockDispatcher{}, newStubExamStore(), slog.Default())

		req := httptest.NewRequest(http.MethodPatch, "/read?queue_id="+uuid.NewString(), strings.NewReader("{not json"))
		rec := httptest.NewRecorder()
		handler.UpdateParticipantResults(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
