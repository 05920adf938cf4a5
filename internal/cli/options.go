package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/scicheck/scicheck/internal/llm"
	"github.com/scicheck/scicheck/internal/model"
)

// llmFlags are shared between analyze and serve
var (
	llmProvider string
	llmModel    string
	llmBaseURL  string
	llmTimeout  time.Duration
	noRetry     bool
)

// httpFlags are shared fetch settings
var (
	httpTimeout time.Duration
	userAgent   string
	maxBytes    int64
	noCache     bool
)

// buildConfig assembles the effective configuration from defaults,
// config file, environment and flags.
func buildConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()

	// Config file values (viper) override defaults
	if v := viper.GetString("llm.provider"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := viper.GetString("llm.model"); v != "" {
		cfg.LLM.Model = v
	}
	if v := viper.GetString("llm.api_key"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := viper.GetString("llm.base_url"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := viper.GetInt("llm.max_tokens"); v != 0 {
		cfg.LLM.MaxTokens = v
	}
	if v := viper.GetString("enrich.contact"); v != "" {
		cfg.Enrich.Contact = v
	}

	// Flags override everything
	if llmProvider != "" {
		cfg.LLM.Provider = llmProvider
	}
	if llmModel != "" {
		cfg.LLM.Model = llmModel
	}
	if llmBaseURL != "" {
		cfg.LLM.BaseURL = llmBaseURL
	}
	if llmTimeout != 0 {
		cfg.LLM.Timeout = int(llmTimeout.Seconds())
	}
	cfg.LLM.Retry = !noRetry

	if httpTimeout != 0 {
		cfg.HTTP.Timeout = httpTimeout
	}
	if userAgent != "" {
		cfg.HTTP.UserAgent = userAgent
	}
	if maxBytes != 0 {
		cfg.HTTP.MaxBodyBytes = maxBytes
	}
	cfg.Cache.Enabled = !noCache
	cfg.Output.Verbose = verbose

	if cfg.Cache.Enabled && cfg.Cache.Dir == "" {
		if dir, err := configDir(); err == nil {
			cfg.Cache.Dir = filepath.Join(dir, "cache")
		}
	}

	// Credential resolution: config file, then the provider's env var
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv(llm.EnvKeyForProvider(cfg.LLM.Provider))
	}

	return cfg, nil
}

// newCompleter builds the completion client, surfacing a clear
// configuration error before any network call is attempted.
func newCompleter(cfg *model.Config) (llm.Completer, error) {
	client, err := llm.NewClient(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("%s environment variable not set: %w",
			llm.EnvKeyForProvider(cfg.LLM.Provider), err)
	}
	return client, nil
}
