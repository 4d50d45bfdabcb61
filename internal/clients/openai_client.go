package clients

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	DEFAULT_OPENAI_MODEL       = "gpt-4.1-2025-04-14"
	DEFAULT_OPENAI_MAX_TOKENS  = 1500
	DEFAULT_OPENAI_TEMPERATURE = float32(0.7)
)

var ErrEmptyCompletion = errors.New("completion returned no choices")

type OpenAIConfig struct {
	APIKey string
	Model  string
	// BaseURL overrides the OpenAI API root, e.g. for a compatible gateway.
	BaseURL     string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
}

type OpenAIClient struct {
	Client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

// NewOpenAIClient returns nil when no API key is configured. Callers treat a nil client
// as "recommendations disabled" rather than as an error.
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		slog.Warn("[OpenAIClient] No API key configured, recommendations disabled")
		return nil
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DEFAULT_OPENAI_TIMEOUT
	}
	model := cfg.Model
	if model == "" {
		model = DEFAULT_OPENAI_MODEL
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DEFAULT_OPENAI_MAX_TOKENS
	}
	// A zero temperature is dropped from the request body, so it could never reach the API.
	temperature := cfg.Temperature
	if temperature <= 0 {
		temperature = DEFAULT_OPENAI_TEMPERATURE
	}

	config := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		config.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	config.HTTPClient = &http.Client{
		Timeout: timeout,
	}

	slog.Info("[OpenAIClient] OpenAI client initialized with custom HTTP timeout",
		slog.Duration("timeout", timeout),
		slog.String("model", model))

	return &OpenAIClient{
		Client:      openai.NewClientWithConfig(config),
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

// Enabled is safe to call on a nil client.
func (c *OpenAIClient) Enabled() bool {
	return c != nil && c.Client != nil
}

func (c *OpenAIClient) Model() string {
	if c == nil {
		return ""
	}
	return c.model
}

// Complete sends one system and one user message and returns the first choice.
func (c *OpenAIClient) Complete(ctx context.Context, system, user string) (string, error) {
	if !c.Enabled() {
		return "", ErrNotConfigured
	}

	start := time.Now()
	resp, err := c.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		slog.Error("[OpenAIClient] Chat completion failed",
			slog.Duration("elapsed", time.Since(start)),
			slog.String("error", err.Error()))
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	slog.Info("[OpenAIClient] Chat completion successful",
		slog.Duration("elapsed", time.Since(start)),
		slog.Int("total_tokens", resp.Usage.TotalTokens))
	return resp.Choices[0].Message.Content, nil
}
