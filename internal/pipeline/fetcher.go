package pipeline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"golang.org/x/net/html"

	"github.com/scicheck/scicheck/internal/cache"
	"github.com/scicheck/scicheck/internal/model"
	"github.com/scicheck/scicheck/internal/util"
)

// Fetcher acquires article text from URLs: fetch the page, strip
// boilerplate, convert the main content to readable markdown.
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	robots     *util.RobotsChecker
	store      cache.Cache // nil disables caching
	converter  *md.Converter
}

// NewFetcher creates an article fetcher
func NewFetcher(cfg model.HTTPConfig, store cache.Cache) *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent: cfg.UserAgent,
		maxBytes:  cfg.MaxBodyBytes,
		robots:    util.NewRobotsChecker(cfg.UserAgent, cfg.Timeout),
		store:     store,
		converter: md.NewConverter("", true, nil),
	}
}

// Fetch retrieves and extracts the readable text of an article URL
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (model.Article, error) {
	if f.store != nil {
		if data, found := f.store.Get(cache.Key("article", rawURL)); found {
			return model.Article{Text: string(data), SourceURL: rawURL}, nil
		}
	}

	allowed, err := f.robots.CanFetch(ctx, rawURL)
	if err != nil {
		return model.Article{}, &FetchError{URL: rawURL, Reason: "robots check failed", Err: err}
	}
	if !allowed {
		return model.Article{}, &FetchError{URL: rawURL, Reason: "disallowed by robots.txt"}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return model.Article{}, &FetchError{URL: rawURL, Reason: "create request", Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return model.Article{}, &FetchError{URL: rawURL, Reason: "request failed", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return model.Article{}, &FetchError{URL: rawURL, Reason: fmt.Sprintf("unexpected status: %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return model.Article{}, &FetchError{URL: rawURL, Reason: "read body", Err: err}
	}

	text, err := f.extractReadable(string(body))
	if err != nil {
		return model.Article{}, &FetchError{URL: rawURL, Reason: "extract text", Err: err}
	}
	if strings.TrimSpace(text) == "" {
		return model.Article{}, &FetchError{URL: rawURL, Reason: "no extractable text"}
	}

	finalURL := resp.Request.URL.String()
	if f.store != nil {
		_ = f.store.Set(cache.Key("article", rawURL), []byte(text), 0)
	}

	return model.Article{Text: text, SourceURL: finalURL}, nil
}

// boilerplateTags are pruned before markdown conversion
var boilerplateTags = map[string]bool{
	"script": true, "style": true, "noscript": true, "iframe": true,
	"nav": true, "header": true, "footer": true, "aside": true,
	"form": true, "button": true, "svg": true,
}

// extractReadable prunes boilerplate from the document, picks the main
// content node and converts it to markdown.
func (f *Fetcher) extractReadable(htmlContent string) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return "", fmt.Errorf("parse HTML: %w", err)
	}

	prune(doc)

	node := findMainContent(doc)
	if node == nil {
		node = doc
	}

	var buf strings.Builder
	if err := html.Render(&buf, node); err != nil {
		return "", fmt.Errorf("render HTML: %w", err)
	}

	text, err := f.converter.ConvertString(buf.String())
	if err != nil {
		return "", fmt.Errorf("convert to markdown: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// prune removes boilerplate elements in place
func prune(n *html.Node) {
	var next *html.Node
	for c := n.FirstChild; c != nil; c = next {
		next = c.NextSibling
		if c.Type == html.ElementNode && boilerplateTags[c.Data] {
			n.RemoveChild(c)
			continue
		}
		prune(c)
	}
}

// findMainContent prefers <article>, then <main>, then <body>
func findMainContent(doc *html.Node) *html.Node {
	for _, tag := range []string{"article", "main", "body"} {
		if node := findElement(doc, tag); node != nil {
			return node
		}
	}
	return nil
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}
