package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/goethe-exam/exam-api/internal/api"
	apimiddleware "github.com/goethe-exam/exam-api/internal/api/middleware"
	"github.com/goethe-exam/exam-api/internal/api/shared"
	"github.com/goethe-exam/exam-api/internal/store"
)

// routerDeps bundles everything the HTTP routes need.
type routerDeps struct {
	dispatcher  api.JobDispatcher
	jobs        store.JobStore
	readExams   store.ExamStore
	writeExams  store.WriteExamStore
	listenExams store.ExamStore
	logger      *slog.Logger
}

// newRouter builds the chi router with the full middleware stack and all
// exam routes. CORS is deliberately permissive; the API carries no
// credentials and is consumed by browser clients on other origins.
func newRouter(deps routerDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(apimiddleware.TraceMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet, http.MethodPut, http.MethodPatch,
			http.MethodPost, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"*"},
		MaxAge:         300,
	}))

	readHandler := api.NewReadExamHandler(deps.dispatcher, deps.readExams, deps.logger)
	listenHandler := api.NewListenExamHandler(deps.dispatcher, deps.listenExams, deps.logger)
	writeHandler := api.NewWriteExamHandler(deps.dispatcher, deps.writeExams, deps.logger)
	jobsHandler := api.NewJobsHandler(deps.jobs, deps.logger)

	r.Route("/read", func(r chi.Router) {
		r.Put("/", readHandler.StartGeneration)
		r.Get("/", readHandler.GetResult)
		r.Patch("/", readHandler.UpdateParticipantResults)
	})

	r.Route("/listen", func(r chi.Router) {
		r.Put("/", listenHandler.StartGeneration)
		r.Get("/", listenHandler.GetResult)
		r.Patch("/", listenHandler.UpdateParticipantResults)
	})

	r.Route("/write", func(r chi.Router) {
		r.Put("/", writeHandler.Start)
		r.Get("/", writeHandler.GetResult)
	})

	r.Get("/jobs", jobsHandler.ListJobs)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}
