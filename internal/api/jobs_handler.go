package api

import (
	"log/slog"
	"net/http"

	"github.com/goethe-exam/exam-api/internal/api/shared"
	"github.com/goethe-exam/exam-api/internal/domain"
	"github.com/goethe-exam/exam-api/internal/platform/logger"
	"github.com/goethe-exam/exam-api/internal/store"
)

// JobsHandler serves the administrative job listing.
type JobsHandler struct {
	jobs   store.JobStore
	logger *slog.Logger
}

// NewJobsHandler creates the handler for the /jobs endpoint.
func NewJobsHandler(jobs store.JobStore, log *slog.Logger) *JobsHandler {
	if log == nil {
		log = slog.Default()
	}
	return &JobsHandler{
		jobs:   jobs,
		logger: log.With("component", "jobs_handler"),
	}
}

// ListJobs handles GET requests, returning every job newest first.
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContextOrDefault(ctx, h.logger)

	jobs, err := h.jobs.ListJobs(ctx)
	if err != nil {
		log.Error("failed to list jobs", "error", err)
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	if jobs == nil {
		jobs = []*domain.ExamJob{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, JobsResponse{Jobs: jobs})
}
