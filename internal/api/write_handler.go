package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/goethe-exam/exam-api/internal/api/shared"
	"github.com/goethe-exam/exam-api/internal/domain"
	"github.com/goethe-exam/exam-api/internal/platform/logger"
	"github.com/goethe-exam/exam-api/internal/store"
)

// Modus values for GET /write, selecting which document to return.
const (
	ModusGenerate = "generate"
	ModusEvaluate = "evaluate"
)

// WriteExamHandler serves the /write endpoint. Unlike read and listen, the
// write category is two-phase: a generation job produces the exam prompt, and
// a later evaluation job grades the participant's submitted text. PUT starts
// either phase depending on whether a queue_id is supplied.
type WriteExamHandler struct {
	dispatcher JobDispatcher
	exams      store.WriteExamStore
	logger     *slog.Logger
}

// NewWriteExamHandler creates the handler for the /write endpoint.
func NewWriteExamHandler(dispatcher JobDispatcher, exams store.WriteExamStore, log *slog.Logger) *WriteExamHandler {
	if log == nil {
		log = slog.Default()
	}
	return &WriteExamHandler{
		dispatcher: dispatcher,
		exams:      exams,
		logger:     log.With("component", "write_exam_handler"),
	}
}

// Start handles PUT requests. Without a queue_id it starts generation of a
// new writing exam; with one it submits the participant's answers and starts
// evaluation on the existing record.
func (h *WriteExamHandler) Start(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("queue_id") != "" {
		h.startEvaluation(w, r)
		return
	}
	h.startGeneration(w, r)
}

func (h *WriteExamHandler) startGeneration(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContextOrDefault(ctx, h.logger)

	level, err := levelFromQuery(r)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	queueID, err := h.dispatcher.RequestJob(ctx, domain.CategoryWriteGeneration, level)
	if err != nil {
		log.Error("failed to request write generation job",
			"error", err, "level", level)
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Info("write generation job started", "queue_id", queueID, "level", level)
	shared.RespondWithJSON(w, r, http.StatusOK, JobStartedResponse{
		Message: "Write generation job started",
		QueueID: queueID.String(),
	})
}

func (h *WriteExamHandler) startEvaluation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContextOrDefault(ctx, h.logger)

	queueID, err := queueIDFromQuery(r)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	var req EvaluationRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, decodeErrorMessage(err), err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.dispatcher.RequestEvaluation(ctx, queueID, req.ParticipantAnswers); err != nil {
		log.Error("failed to request write evaluation job",
			"error", err, "queue_id", queueID)
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Info("write evaluation job started", "queue_id", queueID)
	shared.RespondWithJSON(w, r, http.StatusOK, JobStartedResponse{
		Message: "Write evaluation job started",
		QueueID: queueID.String(),
	})
}

// GetResult handles GET requests. The modus parameter selects between the
// generated exam (modus=generate) and the evaluation document
// (modus=evaluate); both 404 until the corresponding job has completed.
func (h *WriteExamHandler) GetResult(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	queueID, err := queueIDFromQuery(r)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	var payload json.RawMessage
	switch r.URL.Query().Get("modus") {
	case ModusGenerate:
		payload, err = h.exams.GetPayload(ctx, queueID)
	case ModusEvaluate:
		payload, err = h.exams.GetEvaluation(ctx, queueID)
	default:
		shared.RespondWithError(w, r, http.StatusBadRequest,
			"Invalid modus. Must be one of: generate, evaluate")
		return
	}
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, PayloadResponse{Payload: payload})
}
