package llm

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/scicheck/scicheck/internal/model"
)

// retrySleep is the pause before the single bounded retry (injectable
// for tests)
var retrySleep = func(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// Client is a Completer backed by an OpenAI-compatible chat completion
// endpoint (Perplexity Sonar by default).
type Client struct {
	client *openai.Client
	cfg    model.LLMConfig
}

// NewClient creates a completion client. It fails with ErrNoAPIKey when
// no credential is configured so that callers surface the problem
// before any network call.
func NewClient(cfg model.LLMConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = BaseURLForProvider(cfg.Provider)
	}
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}

	return &Client{
		client: openai.NewClientWithConfig(clientConfig),
		cfg:    cfg,
	}, nil
}

// Model returns the configured model name
func (c *Client) Model() string {
	return c.cfg.Model
}

// Complete sends one prompt to the endpoint and returns the raw text.
// A single bounded retry on transient failures is an enhancement over
// the observed behavior; it is controlled by cfg.Retry.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	text, err := c.complete(ctx, prompt)
	if err == nil {
		return text, nil
	}

	if c.cfg.Retry && isTransient(err) {
		if sleepErr := retrySleep(ctx, 2*time.Second); sleepErr != nil {
			return "", err
		}
		return c.complete(ctx, prompt)
	}

	return "", err
}

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	timeout := time.Duration(c.cfg.Timeout) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// The request struct marshals temperature with omitempty, so a
	// configured 0 would vanish and the provider default would apply.
	// The smallest nonzero value keeps the field on the wire.
	temperature := c.cfg.Temperature
	if temperature == 0 {
		temperature = math.SmallestNonzeroFloat32
	}

	req := openai.ChatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: temperature,
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", translateError(err)
	}

	if len(resp.Choices) == 0 {
		return "", &EmptyResponseError{Model: c.cfg.Model}
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", &EmptyResponseError{Model: c.cfg.Model}
	}

	return text, nil
}

// translateError maps client library failures onto the error taxonomy
func translateError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &RemoteError{StatusCode: apiErr.HTTPStatusCode, Err: err}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &RemoteError{StatusCode: reqErr.HTTPStatusCode, Err: err}
	}

	return &NetworkError{Err: err}
}

func isTransient(err error) bool {
	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) {
		return remoteErr.Transient()
	}
	var netErr *NetworkError
	return errors.As(err, &netErr)
}
