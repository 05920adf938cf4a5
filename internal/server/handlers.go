package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/scicheck/scicheck/internal/llm"
	"github.com/scicheck/scicheck/internal/model"
	"github.com/scicheck/scicheck/internal/parse"
	"github.com/scicheck/scicheck/internal/pipeline"
)

type errorResponse struct {
	Error string `json:"error"`
	Stage string `json:"stage,omitempty"`
	Raw   string `json:"raw,omitempty"` // Model output attached for ParseError diagnostics
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the error taxonomy onto HTTP statuses
func writeError(w http.ResponseWriter, err error) {
	resp := errorResponse{Error: err.Error()}
	status := http.StatusInternalServerError

	var pipeErr *pipeline.PipelineError
	if errors.As(err, &pipeErr) {
		resp.Stage = string(pipeErr.Stage)
	}

	var parseErr *parse.ParseError
	var fetchErr *pipeline.FetchError
	var remoteErr *llm.RemoteError
	var netErr *llm.NetworkError
	var emptyErr *llm.EmptyResponseError

	switch {
	case errors.Is(err, llm.ErrNoAPIKey):
		status = http.StatusServiceUnavailable
	case errors.As(err, &parseErr):
		status = http.StatusBadGateway
		resp.Raw = parseErr.Raw
	case errors.As(err, &fetchErr):
		status = http.StatusBadGateway
	case errors.As(err, &remoteErr), errors.As(err, &netErr), errors.As(err, &emptyErr):
		status = http.StatusBadGateway
	}

	writeJSON(w, status, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// articleRequest accepts either pasted text or a URL to fetch
type articleRequest struct {
	Text  string `json:"text,omitempty"`
	URL   string `json:"url,omitempty"`
	Focus string `json:"focus,omitempty"`
}

func (s *Server) acquire(r *http.Request, req articleRequest) (model.Article, error) {
	if req.Text != "" {
		return s.orchestrator.AcquireText(req.Text), nil
	}
	return s.orchestrator.AcquireURL(r.Context(), req.URL)
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req articleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if req.Text == "" && req.URL == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "either text or url is required"})
		return
	}

	focus, err := model.ParseFocusMode(req.Focus)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	article, err := s.acquire(r, req)
	if err != nil {
		writeError(w, err)
		return
	}

	claims, err := s.orchestrator.ExtractClaims(r.Context(), article, focus)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"article": article,
		"claims":  claims,
	})
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Claim model.Claim `json:"claim"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Claim.Text == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "claim with non-empty text is required"})
		return
	}

	verdict, err := s.orchestrator.VerifyClaim(r.Context(), req.Claim)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, verdict)
}

func (s *Server) handleQuestions(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Claim model.Claim `json:"claim"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Claim.Text == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "claim with non-empty text is required"})
		return
	}

	questions, err := s.orchestrator.SuggestQuestions(r.Context(), req.Claim)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"questions": questions})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Question model.ResearchQuestion `json:"question"`
		Article  model.Article          `json:"article"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Question.Text == "" || req.Article.Text == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "question and article with non-empty text are required"})
		return
	}

	report, err := s.orchestrator.GenerateReport(r.Context(), req.Article, req.Question)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req struct {
		articleRequest
		Questions bool `json:"questions"`
		Reports   bool `json:"reports"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if req.Text == "" && req.URL == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "either text or url is required"})
		return
	}

	focus, err := model.ParseFocusMode(req.Focus)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	article, err := s.acquire(r, req.articleRequest)
	if err != nil {
		writeError(w, err)
		return
	}

	analysis, err := s.orchestrator.Analyze(r.Context(), article, focus, pipeline.AnalyzeOptions{
		Questions: req.Questions,
		Reports:   req.Reports,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, analysis)
}
