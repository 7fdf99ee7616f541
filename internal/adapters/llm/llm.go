// Package llm forwards analysis prompts to an OpenAI-compatible
// chat-completions endpoint.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/okian/postpulse/pkg/metrics"
)

// Defaults applied by New for zero Config fields.
const (
	DefaultAPIURL       = "https://api.openai.com/v1"
	DefaultModel        = "gpt-4"
	DefaultTimeout      = 60 * time.Second
	DefaultTemperature  = 0.7
	DefaultSystemPrompt = "You are a social media analytics expert. Analyze the provided data and give clear, actionable insights."
)

const maxErrorBody = 4 << 10

// Config is passed explicitly to New; the package keeps no global key.
// A nil Temperature selects DefaultTemperature; an explicit 0 is kept.
type Config struct {
	APIURL       string
	APIKey       string
	Model        string
	Temperature  *float64
	SystemPrompt string
	Timeout      time.Duration
}

// Client sends single, non-retried analysis requests.
type Client struct {
	http   *http.Client
	cfg    Config
	apiURL string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.http = c
		}
	}
}

// New creates a Client for cfg.
func New(cfg Config, opts ...Option) *Client {
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = DefaultSystemPrompt
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Temperature == nil {
		t := DefaultTemperature
		cfg.Temperature = &t
	}
	c := &Client{
		http:   &http.Client{Timeout: cfg.Timeout},
		cfg:    cfg,
		apiURL: strings.TrimRight(cfg.APIURL, "/"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.cfg.APIKey != ""
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.cfg.Model }

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

// Analyze sends prompt as the user message and returns the model's reply.
func (c *Client) Analyze(ctx context.Context, prompt string) (string, error) {
	if !c.Enabled() {
		return "", ErrMissingAPIKey
	}
	start := time.Now()
	text, outcome, err := c.analyze(ctx, prompt)
	metrics.RecordLLMRequest(outcome, float64(time.Since(start).Milliseconds()))
	return text, err
}

func (c *Client) analyze(ctx context.Context, prompt string) (string, string, error) {
	payload, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []message{
			{Role: "system", Content: c.cfg.SystemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: *c.cfg.Temperature,
	})
	if err != nil {
		return "", "encode_error", fmt.Errorf("llm: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", "request_error", fmt.Errorf("llm: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", "transport_error", fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", "upstream_error", fmt.Errorf("%w: unexpected status %s: %s",
			ErrUpstream, resp.Status, strings.TrimSpace(string(body)))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", "decode_error", fmt.Errorf("%w: decode response: %w", ErrUpstream, err)
	}
	if len(out.Choices) == 0 {
		return "", "empty", ErrEmptyResponse
	}
	return out.Choices[0].Message.Content, "ok", nil
}
