// Package openai implements llm.Completer for OpenAI's chat completions API
// and the many servers that mimic it (Ollama, vLLM, LM Studio).
package openai

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/phrazzld/flashdeck/internal/config"
	"github.com/phrazzld/flashdeck/internal/llm"
	openaisdk "github.com/sashabaranov/go-openai"
)

const providerName = "openai"

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "https://api.openai.com/v1"

// systemPrompt frames every request.
const systemPrompt = "You write concise study flashcards in the exact format requested."

// Client calls the /chat/completions endpoint through go-openai.
type Client struct {
	api    *openaisdk.Client
	model  string
	base   string
	logger *slog.Logger
}

// Ensure Client implements llm.Completer interface
var _ llm.Completer = (*Client)(nil)

// NewClient creates a client from LLM configuration. An empty base URL
// targets api.openai.com. httpClient may be nil. Per-call timeouts come from
// the caller's context.
func NewClient(cfg config.LLMConfig, httpClient *http.Client, logger *slog.Logger) (*Client, error) {
	if cfg.Model == "" {
		return nil, errors.New("openai: model name cannot be empty")
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}

	sdkCfg := openaisdk.DefaultConfig(cfg.APIKey)
	sdkCfg.BaseURL = base
	if httpClient != nil {
		sdkCfg.HTTPClient = httpClient
	}

	return &Client{
		api:    openaisdk.NewClientWithConfig(sdkCfg),
		model:  cfg.Model,
		base:   base,
		logger: logger.With(slog.String("component", "openai_client"), slog.String("model", cfg.Model)),
	}, nil
}

// Complete implements llm.Completer.
func (c *Client) Complete(ctx context.Context, prompt string, opts llm.Options) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openaisdk.ChatCompletionRequest{
		Model: c.model,
		Messages: []openaisdk.ChatCompletionMessage{
			{Role: openaisdk.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openaisdk.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		pe := toProviderError(err)
		c.logger.WarnContext(ctx, "chat completion failed",
			slog.Int("status", pe.Status),
			slog.String("message", pe.Message))
		return "", pe
	}
	if len(resp.Choices) == 0 {
		return "", llm.NewProviderError(providerName, http.StatusOK, "response contained no choices", nil)
	}

	choice := resp.Choices[0]
	c.logger.DebugContext(ctx, "chat completion succeeded",
		slog.Int("response_length", len(choice.Message.Content)),
		slog.String("finish_reason", string(choice.FinishReason)))
	return choice.Message.Content, nil
}

// toProviderError maps go-openai errors onto llm.ProviderError. Errors
// without an HTTP status are transport failures and get status 0.
func toProviderError(err error) *llm.ProviderError {
	var apiErr *openaisdk.APIError
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = statusMessage(apiErr.HTTPStatusCode)
		}
		return llm.NewProviderError(providerName, apiErr.HTTPStatusCode, msg, err)
	}

	var reqErr *openaisdk.RequestError
	if errors.As(err, &reqErr) {
		return llm.NewProviderError(providerName, reqErr.HTTPStatusCode, statusMessage(reqErr.HTTPStatusCode), err)
	}

	return llm.NewProviderError(providerName, 0, friendlyNetworkError(err), err)
}

// statusMessage describes an error status that carried no message.
func statusMessage(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return "authentication failed, check your API key"
	case http.StatusNotFound:
		return "model or endpoint not found"
	case http.StatusTooManyRequests:
		return "rate limited"
	}
	if text := http.StatusText(status); text != "" {
		return strings.ToLower(text)
	}
	return "request failed"
}

// friendlyNetworkError shortens common transport failures.
func friendlyNetworkError(err error) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"):
		return "connection refused (is the server running?)"
	case strings.Contains(msg, "no such host"):
		return "host not found (check base_url)"
	case strings.Contains(msg, "EOF"):
		return "connection closed unexpectedly"
	default:
		return "request failed"
	}
}
