// Package api exposes the interview engine and the transcript analyzer over HTTP.
package api

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// NewRouter creates the chi router with all routes and middleware.
// generator names the configured generative provider, empty when none is set.
func NewRouter(engine Interviewer, analyzer Analyzer, generator string, logger *zap.Logger) *chi.Mux {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()

	r.Use(CORS)
	r.Use(RequestID)
	r.Use(Logger(logger))
	r.Use(Recovery(logger))

	interviewH := NewInterviewHandler(engine, logger)
	analyzeH := NewAnalyzeHandler(analyzer)
	healthH := NewHealthHandler(analyzer, generator)

	r.Get("/health", healthH.Health)
	r.Post("/analyze", analyzeH.Analyze)

	r.Route("/interview", func(r chi.Router) {
		r.Post("/start", interviewH.Start)
		r.Post("/respond", interviewH.Respond)
		r.Post("/end", interviewH.End)
		r.Get("/{id}", interviewH.Get)
	})

	return r
}
