// Package llm asks an OpenAI-compatible chat model for short structured
// verdicts, such as whether a Kalshi contract settles like a sportsbook side.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/hetulpatel/KalshiOdds/internal/logging"
)

const (
	defaultBaseURL   = "https://api.openai.com/v1"
	defaultModel     = "gpt-4o-mini"
	defaultMaxTokens = 300
	defaultTimeout   = 20 * time.Second
	defaultRetries   = 2
	retryBase        = 500 * time.Millisecond
)

var (
	ErrNoAPIKey      = errors.New("llm: API key is required")
	ErrEmptyResponse = errors.New("llm: empty response")
	// ErrTruncated means the model hit MaxTokens, so a JSON verdict is incomplete.
	ErrTruncated = errors.New("llm: response truncated")
)

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	// Timeout bounds each attempt, not the whole call.
	Timeout     time.Duration
	Temperature float32
	MaxTokens   int
	// Retries on 429 and 5xx; negative disables.
	Retries int
	// JSONMode asks the server for a JSON object and strips code fences from the reply.
	JSONMode bool
}

// Client is safe for concurrent use.
type Client struct {
	api         *openai.Client
	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration
	retries     int
	jsonMode    bool
}

func New(cfg Config) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	retries := cfg.Retries
	switch {
	case retries == 0:
		retries = defaultRetries
	case retries < 0:
		retries = 0
	}

	openaiCfg := openai.DefaultConfig(apiKey)
	openaiCfg.BaseURL = baseURL

	return &Client{
		api:         openai.NewClientWithConfig(openaiCfg),
		model:       model,
		temperature: max(cfg.Temperature, 0),
		maxTokens:   maxTokens,
		timeout:     timeout,
		retries:     retries,
		jsonMode:    cfg.JSONMode,
	}, nil
}

func (c *Client) Model() string {
	return c.model
}

// Complete sends one system + user exchange and returns the trimmed reply.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if c == nil {
		return "", errors.New("llm: client is nil")
	}
	if systemPrompt == "" || userPrompt == "" {
		return "", errors.New("llm: prompts must be provided")
	}

	req := c.request(systemPrompt, userPrompt)
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, retryBase<<(attempt-1)); err != nil {
				return "", err
			}
			logging.Debugf("[llm] retry %d after: %v", attempt, lastErr)
		}
		out, err := c.once(ctx, req)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if !retryable(err) {
			break
		}
	}
	return "", lastErr
}

func (c *Client) request(systemPrompt, userPrompt string) openai.ChatCompletionRequest {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}
	if c.jsonMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}
	return req
}

func (c *Client) once(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.api.CreateChatCompletion(attemptCtx, req)
	if err != nil {
		return "", fmt.Errorf("llm: chat completion: %w", err)
	}
	logging.Debugf("[llm] model=%s prompt_tokens=%d completion_tokens=%d",
		c.model, resp.Usage.PromptTokens, resp.Usage.CompletionTokens)

	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	choice := resp.Choices[0]
	if choice.FinishReason == openai.FinishReasonLength {
		return "", ErrTruncated
	}
	out := strings.TrimSpace(choice.Message.Content)
	if c.jsonMode {
		out = stripFences(out)
	}
	if out == "" {
		return "", ErrEmptyResponse
	}
	return out, nil
}

// stripFences removes a surrounding ```json ... ``` block.
func stripFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func retryable(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests || reqErr.HTTPStatusCode >= 500
	}
	return false
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
