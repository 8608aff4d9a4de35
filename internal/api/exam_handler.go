package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/goethe-exam/exam-api/internal/api/shared"
	"github.com/goethe-exam/exam-api/internal/domain"
	"github.com/goethe-exam/exam-api/internal/platform/logger"
	"github.com/goethe-exam/exam-api/internal/store"
)

// ExamHandler serves the read and listen exam endpoints. Both categories have
// identical request handling; the only differences are the category enqueued
// and the exam table behind the store.
type ExamHandler struct {
	category   domain.Category
	label      string
	dispatcher JobDispatcher
	exams      store.ExamStore
	logger     *slog.Logger
}

// NewReadExamHandler creates the handler for the /read endpoint.
func NewReadExamHandler(dispatcher JobDispatcher, exams store.ExamStore, log *slog.Logger) *ExamHandler {
	return newExamHandler(domain.CategoryRead, "Read", dispatcher, exams, log)
}

// NewListenExamHandler creates the handler for the /listen endpoint.
func NewListenExamHandler(dispatcher JobDispatcher, exams store.ExamStore, log *slog.Logger) *ExamHandler {
	return newExamHandler(domain.CategoryListen, "Listen", dispatcher, exams, log)
}

func newExamHandler(category domain.Category, label string, dispatcher JobDispatcher, exams store.ExamStore, log *slog.Logger) *ExamHandler {
	if log == nil {
		log = slog.Default()
	}
	return &ExamHandler{
		category:   category,
		label:      label,
		dispatcher: dispatcher,
		exams:      exams,
		logger:     log.With("component", fmt.Sprintf("%s_exam_handler", category)),
	}
}

// StartGeneration handles PUT requests. It validates the level query
// parameter, creates the exam record and job, and returns the queue ID the
// client polls with.
func (h *ExamHandler) StartGeneration(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContextOrDefault(ctx, h.logger)

	level, err := levelFromQuery(r)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	queueID, err := h.dispatcher.RequestJob(ctx, h.category, level)
	if err != nil {
		log.Error("failed to request generation job",
			"error", err, "category", h.category, "level", level)
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Info("generation job started", "queue_id", queueID, "level", level)
	shared.RespondWithJSON(w, r, http.StatusOK, JobStartedResponse{
		Message: fmt.Sprintf("%s generation job started", h.label),
		QueueID: queueID.String(),
	})
}

// GetResult handles GET requests. It returns the generated exam payload, or
// 404 while the job has not completed. An unknown queue ID and a pending one
// are indistinguishable to the client.
func (h *ExamHandler) GetResult(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	queueID, err := queueIDFromQuery(r)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	payload, err := h.exams.GetPayload(ctx, queueID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, PayloadResponse{Payload: payload})
}

// UpdateParticipantResults handles PATCH requests. Read and listen exams are
// graded client-side, so the submission carries the answers together with the
// computed score and pass flag.
func (h *ExamHandler) UpdateParticipantResults(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContextOrDefault(ctx, h.logger)

	queueID, err := queueIDFromQuery(r)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	var req ParticipantResultsRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, decodeErrorMessage(err), err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	err = h.exams.UpdateParticipantResults(ctx, queueID, req.ParticipantAnswers, *req.Score, *req.IsPass)
	if err != nil {
		log.Error("failed to store participant results",
			"error", err, "queue_id", queueID)
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Info("participant results stored",
		"queue_id", queueID, "score", *req.Score, "is_pass", *req.IsPass)
	shared.RespondWithJSON(w, r, http.StatusOK, ParticipantResultsResponse{
		Message: "Participant results saved",
		QueueID: queueID.String(),
		Score:   *req.Score,
		IsPass:  *req.IsPass,
	})
}

// levelFromQuery extracts and validates the level query parameter.
func levelFromQuery(r *http.Request) (domain.Level, error) {
	raw := r.URL.Query().Get("level")
	if raw == "" {
		return "", domain.ErrLevelRequired
	}
	return domain.ParseLevel(raw)
}

// queueIDFromQuery extracts and validates the queue_id query parameter.
func queueIDFromQuery(r *http.Request) (uuid.UUID, error) {
	raw := r.URL.Query().Get("queue_id")
	if raw == "" {
		return uuid.Nil, fmt.Errorf("%w: missing queue_id", domain.ErrInvalidID)
	}
	queueID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", domain.ErrInvalidID, err)
	}
	return queueID, nil
}
