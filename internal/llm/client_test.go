package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/scicheck/scicheck/internal/model"
)

func testConfig(baseURL string) model.LLMConfig {
	return model.LLMConfig{
		Provider: "perplexity",
		Model:    "sonar",
		APIKey:   "test-key",
		BaseURL:  baseURL,
		Timeout:  5,
	}
}

// chatResponse builds a minimal chat completion response body
func chatResponse(content string) map[string]any {
	return map[string]any{
		"id":      "cmpl-test",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "sonar",
		"choices": []map[string]any{
			{
				"index": 0,
				"message": map[string]any{
					"role":    "assistant",
					"content": content,
				},
				"finish_reason": "stop",
			},
		},
	}
}

func TestNewClient_NoAPIKey(t *testing.T) {
	cfg := testConfig("")
	cfg.APIKey = ""

	_, err := NewClient(cfg)
	if !errors.Is(err, ErrNoAPIKey) {
		t.Fatalf("expected ErrNoAPIKey, got %v", err)
	}
}

func TestComplete_Success(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(chatResponse("1. The sky is blue."))
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	text, err := client.Complete(context.Background(), "list claims")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if text != "1. The sky is blue." {
		t.Errorf("unexpected text: %q", text)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("expected bearer auth, got %q", gotAuth)
	}
}

func TestComplete_SendsExplicitZeroTemperature(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		json.NewEncoder(w).Encode(chatResponse("ok"))
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.Temperature = 0
	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	if _, err := client.Complete(context.Background(), "p"); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	temp, ok := body["temperature"]
	if !ok {
		t.Fatal("temperature field absent from request body")
	}
	if v, ok := temp.(float64); !ok || v > 1e-6 {
		t.Errorf("expected near-zero temperature, got %v", temp)
	}
}

func TestComplete_PassesConfiguredTemperature(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		json.NewEncoder(w).Encode(chatResponse("ok"))
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.Temperature = 0.7
	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	if _, err := client.Complete(context.Background(), "p"); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	v, ok := body["temperature"].(float64)
	if !ok || v < 0.69 || v > 0.71 {
		t.Errorf("expected temperature 0.7, got %v", body["temperature"])
	}
}

func TestComplete_ServerErrorIsRemoteError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"boom"}}`, http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.Retry = false
	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	_, err = client.Complete(context.Background(), "p")

	var remoteErr *RemoteError
	if !errors.As(err, &remoteErr) {
		t.Fatalf("expected RemoteError, got %v", err)
	}
	if remoteErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", remoteErr.StatusCode)
	}
	if !remoteErr.Transient() {
		t.Errorf("500 should be transient")
	}
}

func TestComplete_EmptyChoicesIsEmptyResponseError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := chatResponse("")
		resp["choices"] = []map[string]any{}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.Retry = false
	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	_, err = client.Complete(context.Background(), "p")

	var emptyErr *EmptyResponseError
	if !errors.As(err, &emptyErr) {
		t.Fatalf("expected EmptyResponseError, got %v", err)
	}
	if emptyErr.Model != "sonar" {
		t.Errorf("expected model name in error, got %q", emptyErr.Model)
	}
}

func TestComplete_BlankContentIsEmptyResponseError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(chatResponse("   \n  "))
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.Retry = false
	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	_, err = client.Complete(context.Background(), "p")

	var emptyErr *EmptyResponseError
	if !errors.As(err, &emptyErr) {
		t.Fatalf("expected EmptyResponseError, got %v", err)
	}
}

func TestComplete_RetriesOnceOnTransientFailure(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, `{"error":{"message":"overloaded"}}`, http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(chatResponse("recovered"))
	}))
	defer server.Close()

	originalSleep := retrySleep
	retrySleep = func(ctx context.Context, d time.Duration) error { return nil }
	defer func() { retrySleep = originalSleep }()

	cfg := testConfig(server.URL)
	cfg.Retry = true
	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	text, err := client.Complete(context.Background(), "p")
	if err != nil {
		t.Fatalf("Complete after retry: %v", err)
	}
	if text != "recovered" {
		t.Errorf("unexpected text: %q", text)
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 requests, got %d", calls.Load())
	}
}

func TestComplete_NoRetryWhenDisabled(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"error":{"message":"overloaded"}}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.Retry = false
	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	if _, err = client.Complete(context.Background(), "p"); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Errorf("expected 1 request, got %d", calls.Load())
	}
}

func TestComplete_SingleRetryOnly(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"error":{"message":"down"}}`, http.StatusServiceUnavailable)
	}))
	defer server.Close()

	originalSleep := retrySleep
	retrySleep = func(ctx context.Context, d time.Duration) error { return nil }
	defer func() { retrySleep = originalSleep }()

	cfg := testConfig(server.URL)
	cfg.Retry = true
	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	if _, err = client.Complete(context.Background(), "p"); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 2 {
		t.Errorf("expected exactly 2 requests, got %d", calls.Load())
	}
}

func TestBaseURLForProvider(t *testing.T) {
	cases := []struct {
		provider string
		want     string
	}{
		{"perplexity", "https://api.perplexity.ai"},
		{"openrouter", "https://openrouter.ai/api/v1"},
		{"openai", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := BaseURLForProvider(tc.provider); got != tc.want {
			t.Errorf("provider %q: got %q, want %q", tc.provider, got, tc.want)
		}
	}
}

func TestEnvKeyForProvider(t *testing.T) {
	cases := []struct {
		provider string
		want     string
	}{
		{"perplexity", "PERPLEXITY_API_KEY"},
		{"openrouter", "OPENROUTER_API_KEY"},
		{"openai", "OPENAI_API_KEY"},
		{"", "OPENAI_API_KEY"},
	}
	for _, tc := range cases {
		if got := EnvKeyForProvider(tc.provider); got != tc.want {
			t.Errorf("provider %q: got %q, want %q", tc.provider, got, tc.want)
		}
	}
}
