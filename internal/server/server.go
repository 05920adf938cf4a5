// Package server exposes the pipeline operations as a JSON HTTP API for
// the browser UI.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/scicheck/scicheck/internal/model"
	"github.com/scicheck/scicheck/internal/pipeline"
)

// Orchestrator is the pipeline surface the server consumes. Declared
// here so handlers can be tested against a stub.
type Orchestrator interface {
	AcquireURL(ctx context.Context, rawURL string) (model.Article, error)
	AcquireText(text string) model.Article
	ExtractClaims(ctx context.Context, article model.Article, focus model.FocusMode) ([]model.Claim, error)
	VerifyClaim(ctx context.Context, claim model.Claim) (*model.Verdict, error)
	SuggestQuestions(ctx context.Context, claim model.Claim) ([]model.ResearchQuestion, error)
	GenerateReport(ctx context.Context, article model.Article, question model.ResearchQuestion) (*model.Report, error)
	Analyze(ctx context.Context, article model.Article, focus model.FocusMode, opts pipeline.AnalyzeOptions) (*model.Analysis, error)
}

// Server serves the JSON API
type Server struct {
	orchestrator Orchestrator
	router       chi.Router
}

// New creates a server around an orchestrator
func New(orchestrator Orchestrator, allowedOrigins []string) *Server {
	s := &Server{orchestrator: orchestrator}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Minute))

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/extract", s.handleExtract)
		r.Post("/verify", s.handleVerify)
		r.Post("/questions", s.handleQuestions)
		r.Post("/report", s.handleReport)
		r.Post("/analyze", s.handleAnalyze)
	})

	s.router = r
	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe runs the server until ctx is canceled
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
