package pipeline

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/scicheck/scicheck/internal/cache"
	"github.com/scicheck/scicheck/internal/model"
)

func testHTTPConfig() model.HTTPConfig {
	return model.HTTPConfig{
		Timeout:      5 * time.Second,
		UserAgent:    "scicheck-test",
		MaxBodyBytes: 1 << 20,
	}
}

const articleHTML = `<!DOCTYPE html>
<html>
<head><title>Test</title><script>var tracking = true;</script></head>
<body>
<nav><a href="/">Home</a> <a href="/about">About</a></nav>
<article>
<h1>Boiling Points</h1>
<p>Water boils at 100°C at sea level.</p>
</article>
<footer>Copyright 2026</footer>
</body>
</html>`

func TestFetch_ExtractsReadableText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/robots.txt":
			http.NotFound(w, r)
		default:
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte(articleHTML))
		}
	}))
	defer server.Close()

	f := NewFetcher(testHTTPConfig(), nil)
	article, err := f.Fetch(context.Background(), server.URL+"/story")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if !strings.Contains(article.Text, "Water boils at 100°C at sea level.") {
		t.Errorf("extracted text missing article body: %q", article.Text)
	}
	if strings.Contains(article.Text, "tracking") || strings.Contains(article.Text, "Copyright") {
		t.Errorf("boilerplate leaked into extracted text: %q", article.Text)
	}
	if strings.Contains(article.Text, "About") {
		t.Errorf("navigation leaked into extracted text: %q", article.Text)
	}
	if article.SourceURL != server.URL+"/story" {
		t.Errorf("unexpected source URL: %q", article.SourceURL)
	}
}

func TestFetch_SendsUserAgent(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte(articleHTML))
	}))
	defer server.Close()

	f := NewFetcher(testHTTPConfig(), nil)
	if _, err := f.Fetch(context.Background(), server.URL); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if gotUA != "scicheck-test" {
		t.Errorf("expected configured user agent, got %q", gotUA)
	}
}

func TestFetch_NotFoundIsFetchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	f := NewFetcher(testHTTPConfig(), nil)
	_, err := f.Fetch(context.Background(), server.URL+"/missing")

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if !strings.Contains(fetchErr.Reason, "404") {
		t.Errorf("expected status in reason, got %q", fetchErr.Reason)
	}
}

func TestFetch_RespectsRobotsDisallow(t *testing.T) {
	var articleHits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			w.Write([]byte("User-agent: *\nDisallow: /\n"))
			return
		}
		articleHits.Add(1)
		w.Write([]byte(articleHTML))
	}))
	defer server.Close()

	f := NewFetcher(testHTTPConfig(), nil)
	_, err := f.Fetch(context.Background(), server.URL+"/story")

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if !strings.Contains(fetchErr.Reason, "robots") {
		t.Errorf("expected robots reason, got %q", fetchErr.Reason)
	}
	if articleHits.Load() != 0 {
		t.Errorf("article fetched despite robots disallow")
	}
}

func TestFetch_NoExtractableText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("<html><body><script>only()</script></body></html>"))
	}))
	defer server.Close()

	f := NewFetcher(testHTTPConfig(), nil)
	_, err := f.Fetch(context.Background(), server.URL)

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if !strings.Contains(fetchErr.Reason, "no extractable text") {
		t.Errorf("unexpected reason: %q", fetchErr.Reason)
	}
}

func TestFetch_SecondFetchServedFromCache(t *testing.T) {
	var articleHits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		articleHits.Add(1)
		w.Write([]byte(articleHTML))
	}))
	defer server.Close()

	store := cache.NewMemoryCache(time.Minute, time.Minute)
	f := NewFetcher(testHTTPConfig(), store)
	url := server.URL + "/story"

	first, err := f.Fetch(context.Background(), url)
	if err != nil {
		t.Fatalf("first Fetch: %v", err)
	}
	second, err := f.Fetch(context.Background(), url)
	if err != nil {
		t.Fatalf("second Fetch: %v", err)
	}

	if articleHits.Load() != 1 {
		t.Errorf("expected 1 origin hit, got %d", articleHits.Load())
	}
	if first.Text != second.Text {
		t.Errorf("cached text differs from fetched text")
	}
}
