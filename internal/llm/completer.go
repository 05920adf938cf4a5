// Package llm wraps the remote completion endpoint behind the Completer
// capability so a deterministic stub can replace the network client in
// tests.
package llm

import "context"

// Completer turns a prompt into generated text. One outbound network
// call per invocation; results are never cached.
type Completer interface {
	// Complete sends a single prompt and returns the raw response text
	Complete(ctx context.Context, prompt string) (string, error)

	// Model returns the model name used for completions
	Model() string
}

// Provider presets for OpenAI-compatible chat completion endpoints
const (
	baseURLPerplexity = "https://api.perplexity.ai"
	baseURLOpenRouter = "https://openrouter.ai/api/v1"
)

// BaseURLForProvider resolves a provider name to its endpoint base URL.
// An empty string means the client library default (OpenAI).
func BaseURLForProvider(provider string) string {
	switch provider {
	case "perplexity":
		return baseURLPerplexity
	case "openrouter":
		return baseURLOpenRouter
	default:
		return ""
	}
}

// EnvKeyForProvider returns the environment variable holding the
// credential for a provider.
func EnvKeyForProvider(provider string) string {
	switch provider {
	case "perplexity":
		return "PERPLEXITY_API_KEY"
	case "openrouter":
		return "OPENROUTER_API_KEY"
	default:
		return "OPENAI_API_KEY"
	}
}
