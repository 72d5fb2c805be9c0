package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phrazzld/flashdeck/internal/config"
	"github.com/phrazzld/flashdeck/internal/llm"
	"google.golang.org/genai"
)

const providerName = "gemini"

// ErrInvalidConfig is returned when the client cannot be configured.
var ErrInvalidConfig = errors.New("invalid gemini configuration")

// contentGenerator is the subset of *genai.Models the client uses.
type contentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// Client implements llm.Completer against the Gemini API.
type Client struct {
	models contentGenerator
	model  string
	logger *slog.Logger
}

// Ensure Client implements llm.Completer interface
var _ llm.Completer = (*Client)(nil)

// NewClient creates a Gemini client from LLM configuration.
// If logger is nil, a default logger will be used.
func NewClient(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", ErrInvalidConfig)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", ErrInvalidConfig, err)
	}

	return newClient(client.Models, cfg.Model, logger), nil
}

func newClient(models contentGenerator, model string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		models: models,
		model:  model,
		logger: logger.With(slog.String("component", "gemini_client"), slog.String("model", model)),
	}
}

// Complete implements llm.Completer. A response blocked by safety filters
// yields empty text rather than an error, so the chunk simply contributes
// no cards.
func (c *Client) Complete(ctx context.Context, prompt string, opts llm.Options) (string, error) {
	genCfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(opts.Temperature),
		MaxOutputTokens: int32(opts.MaxTokens),
	}

	c.logger.DebugContext(ctx, "calling Gemini API", slog.Int("prompt_length", len(prompt)))

	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(prompt), genCfg)
	if err != nil {
		return "", mapError(err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", llm.NewProviderError(providerName, 0, "response contained no candidates", nil)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		c.logger.WarnContext(ctx, "response blocked by safety filters")
		return "", nil
	}
	if candidate.Content == nil {
		return "", nil
	}

	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}

	c.logger.DebugContext(ctx, "Gemini API call successful",
		slog.Int("response_length", b.Len()),
		slog.String("finish_reason", string(candidate.FinishReason)))
	return b.String(), nil
}

// mapError converts genai errors to *llm.ProviderError. Context errors pass
// through unchanged; the generator maps its own timeouts.
func mapError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return llm.NewProviderError(providerName, apiErr.Code, apiErr.Message, err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return llm.NewProviderError(providerName, apiErrPtr.Code, apiErrPtr.Message, err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return llm.NewProviderError(providerName, 0, "request failed", err)
}
