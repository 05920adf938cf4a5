// Package pipeline sequences prompt building, model completion and
// response parsing for the four analysis operations.
package pipeline

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/scicheck/scicheck/internal/cache"
	"github.com/scicheck/scicheck/internal/enrich"
	"github.com/scicheck/scicheck/internal/llm"
	"github.com/scicheck/scicheck/internal/model"
	"github.com/scicheck/scicheck/internal/parse"
	"github.com/scicheck/scicheck/internal/prompt"
	"github.com/scicheck/scicheck/internal/worker"
)

// Pipeline orchestrates the claim-processing operations. Every entry
// point is a pure composition of its own inputs plus one or more model
// calls; safe for concurrent use across claims.
type Pipeline struct {
	completer llm.Completer
	fetcher   *Fetcher
	searcher  *enrich.Searcher // nil when enrichment is disabled
	cfg       *model.Config
}

// New creates a pipeline. A nil completer is allowed; every model-backed
// operation then fails with a configuration error before any network
// call.
func New(cfg *model.Config, completer llm.Completer) *Pipeline {
	var store cache.Cache
	if cfg.Cache.Enabled {
		if cfg.Cache.Dir != "" {
			store = cache.NewLayeredCache(cfg.Cache.MemoryTTL, filepath.Clean(cfg.Cache.Dir), cfg.Cache.DiskTTL)
		} else {
			store = cache.NewMemoryCache(cfg.Cache.MemoryTTL, 10*time.Minute)
		}
	}

	var searcher *enrich.Searcher
	if cfg.Enrich.Enabled {
		limiter := worker.NewLimiter(cfg.Concurrency.RatePerDomain, cfg.Concurrency.RateBurst)
		searcher = enrich.NewSearcher(cfg.Enrich, cfg.HTTP, limiter, store)
	}

	return &Pipeline{
		completer: completer,
		fetcher:   NewFetcher(cfg.HTTP, store),
		searcher:  searcher,
		cfg:       cfg,
	}
}

// complete guards every model call behind the credential check
func (p *Pipeline) complete(ctx context.Context, stage Stage, promptText string) (string, error) {
	if p.completer == nil {
		return "", &PipelineError{Stage: stage, Err: llm.ErrNoAPIKey}
	}
	raw, err := p.completer.Complete(ctx, promptText)
	if err != nil {
		return "", &PipelineError{Stage: stage, Err: err}
	}
	return raw, nil
}

// AcquireURL fetches an article from a URL
func (p *Pipeline) AcquireURL(ctx context.Context, rawURL string) (model.Article, error) {
	article, err := p.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return model.Article{}, &PipelineError{Stage: StageAcquire, Err: err}
	}
	return article, nil
}

// AcquireText wraps pasted text as an article unchanged
func (p *Pipeline) AcquireText(text string) model.Article {
	return model.Article{Text: text}
}

// ExtractClaims extracts the testable claims from an article. Zero
// claims is a valid outcome. Each claim is checked against the article
// text; paraphrased claims are kept but flagged as non-verbatim.
func (p *Pipeline) ExtractClaims(ctx context.Context, article model.Article, focus model.FocusMode) ([]model.Claim, error) {
	raw, err := p.complete(ctx, StageExtract, prompt.Extract(focus, article.Text))
	if err != nil {
		return nil, err
	}

	claims, err := parse.Claims(raw)
	if err != nil {
		return nil, &PipelineError{Stage: StageExtract, Err: err}
	}

	normalized := normalizeSpace(article.Text)
	for i := range claims {
		claims[i].Verbatim = strings.Contains(normalized, normalizeSpace(claims[i].Text))
	}
	return claims, nil
}

// VerifyClaim checks one claim and returns its verdict. When enrichment
// is enabled the prompt carries supplemental Crossref/CORE links.
func (p *Pipeline) VerifyClaim(ctx context.Context, claim model.Claim) (*model.Verdict, error) {
	var promptText string
	if p.searcher != nil {
		papers := p.searcher.Search(ctx, claim.Text)
		promptText = prompt.VerifyEnriched(claim, enrich.Links(papers))
	} else {
		promptText = prompt.Verify(claim)
	}

	raw, err := p.complete(ctx, StageVerify, promptText)
	if err != nil {
		return nil, err
	}

	verdict, err := parse.Verdict(raw, claim)
	if err != nil {
		return nil, &PipelineError{Stage: StageVerify, Err: err}
	}
	return verdict, nil
}

// SuggestQuestions proposes at most 3 follow-up research questions for
// a claim
func (p *Pipeline) SuggestQuestions(ctx context.Context, claim model.Claim) ([]model.ResearchQuestion, error) {
	raw, err := p.complete(ctx, StageQuestions, prompt.Questions(claim))
	if err != nil {
		return nil, err
	}

	questions, err := parse.Questions(raw)
	if err != nil {
		return nil, &PipelineError{Stage: StageQuestions, Err: err}
	}
	return questions, nil
}

// GenerateReport writes a short research summary answering a question
// about the article
func (p *Pipeline) GenerateReport(ctx context.Context, article model.Article, question model.ResearchQuestion) (*model.Report, error) {
	raw, err := p.complete(ctx, StageReport, prompt.Report(article, question))
	if err != nil {
		return nil, err
	}

	report, err := parse.Report(raw, question)
	if err != nil {
		return nil, &PipelineError{Stage: StageReport, Err: err}
	}
	return report, nil
}

// AnalyzeOptions controls which per-claim stages an analysis run
// executes
type AnalyzeOptions struct {
	Questions bool
	Reports   bool
}

// Analyze runs the full pipeline for one article: extract, then the
// per-claim verify/questions/reports branches fanned out over the
// worker pool. Per-claim failures are soft; extraction failure aborts
// the run.
func (p *Pipeline) Analyze(ctx context.Context, article model.Article, focus model.FocusMode, opts AnalyzeOptions) (*model.Analysis, error) {
	claims, err := p.ExtractClaims(ctx, article, focus)
	if err != nil {
		return nil, err
	}

	analysis := &model.Analysis{
		Article:    article,
		Focus:      focus,
		AnalyzedAt: time.Now().UTC(),
	}
	if p.completer != nil {
		analysis.Model = p.completer.Model()
	}

	analysis.Claims = worker.ProcessClaims(ctx, p, article, claims, p.cfg.Concurrency.ClaimWorkers, opts.Questions, opts.Reports)
	analysis.Tally()

	return analysis, nil
}

// normalizeSpace collapses whitespace runs so the verbatim check is not
// defeated by wrapping differences
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
