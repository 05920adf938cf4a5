package worker

import (
	"context"

	"github.com/scicheck/scicheck/internal/model"
)

// ClaimWorker is the subset of the pipeline a per-claim job needs.
// Declared here so the pool can be tested without a live pipeline.
type ClaimWorker interface {
	VerifyClaim(ctx context.Context, claim model.Claim) (*model.Verdict, error)
	SuggestQuestions(ctx context.Context, claim model.Claim) ([]model.ResearchQuestion, error)
	GenerateReport(ctx context.Context, article model.Article, question model.ResearchQuestion) (*model.Report, error)
}

// ClaimJob runs the verify -> questions -> reports branch for one
// claim. Failures are recorded in the ClaimAnalysis and never abort
// sibling claims.
type ClaimJob struct {
	Article       model.Article
	Claim         model.Claim
	Worker        ClaimWorker
	WithQuestions bool
	WithReports   bool
}

// ClaimResult carries the finished per-claim analysis
type ClaimResult struct {
	Analysis model.ClaimAnalysis
	Err      error
}

// GetError returns the hard error, if any
func (r *ClaimResult) GetError() error {
	return r.Err
}

// Execute runs the per-claim branch
func (j *ClaimJob) Execute(ctx context.Context) Result {
	ca := model.ClaimAnalysis{Claim: j.Claim}

	verdict, err := j.Worker.VerifyClaim(ctx, j.Claim)
	if err != nil {
		ca.Error = err.Error()
		return &ClaimResult{Analysis: ca}
	}
	ca.Verdict = verdict

	if !j.WithQuestions {
		return &ClaimResult{Analysis: ca}
	}

	questions, err := j.Worker.SuggestQuestions(ctx, j.Claim)
	if err != nil {
		ca.Error = err.Error()
		return &ClaimResult{Analysis: ca}
	}
	ca.Questions = questions

	if !j.WithReports {
		return &ClaimResult{Analysis: ca}
	}

	for _, q := range questions {
		report, err := j.Worker.GenerateReport(ctx, j.Article, q)
		if err != nil {
			ca.Error = err.Error()
			break
		}
		ca.Reports = append(ca.Reports, *report)
	}

	return &ClaimResult{Analysis: ca}
}

// ProcessClaims fans the per-claim branch out over the pool and returns
// the analyses reordered to match the input claims.
func ProcessClaims(ctx context.Context, w ClaimWorker, article model.Article, claims []model.Claim, workers int, withQuestions, withReports bool) []model.ClaimAnalysis {
	if len(claims) == 0 {
		return nil
	}

	pool := NewPool(workers)
	pool.Start()

	go func() {
		<-ctx.Done()
		pool.Shutdown()
	}()

	for _, claim := range claims {
		pool.Submit(&ClaimJob{
			Article:       article,
			Claim:         claim,
			Worker:        w,
			WithQuestions: withQuestions,
			WithReports:   withReports,
		})
	}

	results := pool.Wait()

	// Pool results arrive in completion order; restore claim order.
	// Claims dropped by cancellation keep a placeholder entry.
	analyses := make([]model.ClaimAnalysis, len(claims))
	for i, claim := range claims {
		analyses[i] = model.ClaimAnalysis{Claim: claim, Error: "canceled before processing"}
	}
	for _, res := range results {
		cr := res.(*ClaimResult)
		idx := cr.Analysis.Claim.Index
		if idx >= 0 && idx < len(analyses) {
			analyses[idx] = cr.Analysis
		}
	}
	return analyses
}
