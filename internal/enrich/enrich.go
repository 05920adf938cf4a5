// Package enrich looks up scholarly sources for a claim via the
// Crossref and CORE search APIs. Results supplement the verification
// prompt; lookup failures are soft and yield fewer links, not errors.
package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/scicheck/scicheck/internal/cache"
	"github.com/scicheck/scicheck/internal/model"
	"github.com/scicheck/scicheck/internal/worker"
)

const (
	defaultCrossrefBaseURL = "https://api.crossref.org"
	defaultCOREBaseURL     = "https://core.ac.uk/api-v2"
)

// Paper is one scholarly search hit
type Paper struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// String renders the paper the way the verification prompt embeds it
func (p Paper) String() string {
	if p.Title == "" {
		return p.URL
	}
	return fmt.Sprintf("%s: %s", p.Title, p.URL)
}

// Searcher queries Crossref and CORE with per-domain rate limiting and
// cached lookups.
type Searcher struct {
	httpClient *http.Client
	limiter    *worker.Limiter
	store      cache.Cache // nil disables caching
	userAgent  string
	contact    string
	maxResults int

	// Overridable in tests
	crossrefBaseURL string
	coreBaseURL     string
}

// NewSearcher creates a scholarly searcher
func NewSearcher(cfg model.EnrichConfig, httpCfg model.HTTPConfig, limiter *worker.Limiter, store cache.Cache) *Searcher {
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 3
	}

	return &Searcher{
		httpClient:      &http.Client{Timeout: httpCfg.Timeout},
		limiter:         limiter,
		store:           store,
		userAgent:       fmt.Sprintf("%s (mailto:%s)", httpCfg.UserAgent, cfg.Contact),
		contact:         cfg.Contact,
		maxResults:      maxResults,
		crossrefBaseURL: defaultCrossrefBaseURL,
		coreBaseURL:     defaultCOREBaseURL,
	}
}

// Search merges Crossref and CORE hits for a query. Provider failures
// degrade to fewer results.
func (s *Searcher) Search(ctx context.Context, query string) []Paper {
	if s.store != nil {
		if data, found := s.store.Get(cache.Key("enrich", query)); found {
			var papers []Paper
			if err := json.Unmarshal(data, &papers); err == nil {
				return papers
			}
		}
	}

	var papers []Paper
	if crossref, err := s.searchCrossref(ctx, query); err == nil {
		papers = append(papers, crossref...)
	}
	if core, err := s.searchCORE(ctx, query); err == nil {
		papers = append(papers, core...)
	}

	if s.store != nil && len(papers) > 0 {
		if data, err := json.Marshal(papers); err == nil {
			_ = s.store.Set(cache.Key("enrich", query), data, 0)
		}
	}

	return papers
}

// searchCrossref queries the Crossref works endpoint
func (s *Searcher) searchCrossref(ctx context.Context, query string) ([]Paper, error) {
	reqURL := fmt.Sprintf("%s/works?query=%s&rows=%d", s.crossrefBaseURL, url.QueryEscape(query), s.maxResults)

	body, err := s.get(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Message struct {
			Items []struct {
				Title []string `json:"title"`
				URL   string   `json:"URL"`
			} `json:"items"`
		} `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode crossref response: %w", err)
	}

	var papers []Paper
	for _, item := range payload.Message.Items {
		if item.URL == "" {
			continue
		}
		title := ""
		if len(item.Title) > 0 {
			title = item.Title[0]
		}
		papers = append(papers, Paper{Title: title, URL: item.URL})
	}
	return papers, nil
}

// searchCORE queries the CORE article search endpoint
func (s *Searcher) searchCORE(ctx context.Context, query string) ([]Paper, error) {
	reqURL := fmt.Sprintf("%s/articles/search/%s?page=1&pageSize=%d&metadata=true", s.coreBaseURL, url.PathEscape(query), s.maxResults)

	body, err := s.get(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Data []struct {
			Title       string   `json:"title"`
			DownloadURL string   `json:"downloadUrl"`
			URLs        []string `json:"urls"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode CORE response: %w", err)
	}

	var papers []Paper
	for _, item := range payload.Data {
		link := item.DownloadURL
		if link == "" && len(item.URLs) > 0 {
			link = item.URLs[0]
		}
		if link == "" {
			continue
		}
		papers = append(papers, Paper{Title: item.Title, URL: link})
	}
	return papers, nil
}

func (s *Searcher) get(ctx context.Context, reqURL string) ([]byte, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx, reqURL); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// Links renders papers as prompt-ready strings
func Links(papers []Paper) []string {
	links := make([]string, 0, len(papers))
	for _, p := range papers {
		links = append(links, p.String())
	}
	return links
}
