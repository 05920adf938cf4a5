package model

import "time"

// Config holds the complete application configuration
type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	LLM         LLMConfig         `yaml:"llm"`
	Cache       CacheConfig       `yaml:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Enrich      EnrichConfig      `yaml:"enrich"`
	Output      OutputConfig      `yaml:"output"`
}

// HTTPConfig controls article fetching
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	UserAgent    string        `yaml:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
}

// LLMConfig controls the completion endpoint
type LLMConfig struct {
	Provider    string  `yaml:"provider"` // perplexity, openrouter, openai
	Model       string  `yaml:"model"`
	APIKey      string  `yaml:"api_key,omitempty"`
	BaseURL     string  `yaml:"base_url,omitempty"` // Overrides the provider preset
	Timeout     int     `yaml:"timeout"`            // seconds
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float32 `yaml:"temperature"`
	Retry       bool    `yaml:"retry"` // One bounded retry on transient failures
}

// CacheConfig controls article and enrichment caching.
// Model completions are never cached.
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Dir       string        `yaml:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl"`
}

// ConcurrencyConfig controls per-claim fan-out and outbound politeness
type ConcurrencyConfig struct {
	ClaimWorkers  int     `yaml:"claim_workers"`
	RatePerDomain float64 `yaml:"rate_per_domain"` // requests/second
	RateBurst     int     `yaml:"rate_burst"`
}

// EnrichConfig controls scholarly source enrichment (Crossref + CORE)
type EnrichConfig struct {
	Enabled    bool   `yaml:"enabled"`
	MaxResults int    `yaml:"max_results"` // Per provider
	Contact    string `yaml:"contact"`     // mailto for the Crossref polite pool
}

// OutputConfig controls rendering
type OutputConfig struct {
	Verbose       bool `yaml:"verbose"`
	IncludeFooter bool `yaml:"include_footer"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:      30 * time.Second,
			UserAgent:    "SciCheck/0.2 (+https://github.com/scicheck/scicheck)",
			MaxBodyBytes: 2_000_000,
		},
		LLM: LLMConfig{
			Provider:    "perplexity",
			Model:       "sonar",
			Timeout:     60,
			MaxTokens:   1500,
			Temperature: 0,
			Retry:       true,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       "", // Resolved to ~/.scicheck/cache at startup
			MemoryTTL: 15 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			ClaimWorkers:  4,
			RatePerDomain: 2,
			RateBurst:     5,
		},
		Enrich: EnrichConfig{
			Enabled:    false,
			MaxResults: 3,
			Contact:    "scicheck@example.com",
		},
		Output: OutputConfig{
			Verbose:       false,
			IncludeFooter: true,
		},
	}
}
