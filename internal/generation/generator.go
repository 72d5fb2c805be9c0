package generation

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/template"
	"time"
	"unicode/utf8"

	"github.com/phrazzld/flashdeck/internal/config"
	"github.com/phrazzld/flashdeck/internal/domain"
	"github.com/phrazzld/flashdeck/internal/llm"
	"github.com/phrazzld/flashdeck/internal/platform/logger"
)

//go:embed prompt.tmpl
var defaultPromptTemplate string

// sourceHintRunes bounds the chunk excerpt attached to each candidate.
const sourceHintRunes = 80

// promptData represents the data passed to the prompt template
type promptData struct {
	TargetCount int
	Text        string
}

// CardGenerator produces flashcard candidates for one chunk of text.
type CardGenerator interface {
	Generate(ctx context.Context, chunk string, targetCount int) ([]domain.Candidate, error)
}

// Generator implements CardGenerator on top of an llm.Completer.
type Generator struct {
	client         llm.Completer
	logger         *slog.Logger
	promptTemplate *template.Template
	opts           llm.Options
	timeout        time.Duration
	retryBackoff   time.Duration
}

// Ensure Generator implements CardGenerator interface
var _ CardGenerator = (*Generator)(nil)

// NewGenerator creates a Generator with the provided dependencies.
//
// The prompt template is read from cfg.PromptTemplatePath when set, otherwise
// the built-in template is used.
func NewGenerator(client llm.Completer, cfg config.LLMConfig, logger *slog.Logger) (*Generator, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: llm client cannot be nil", ErrInvalidConfig)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxTokens <= 0 {
		return nil, fmt.Errorf("%w: max tokens must be positive", ErrInvalidConfig)
	}
	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("%w: timeout must be positive", ErrInvalidConfig)
	}
	if cfg.RetryBackoff < 0 {
		return nil, fmt.Errorf("%w: retry backoff cannot be negative", ErrInvalidConfig)
	}

	templateContent := defaultPromptTemplate
	if cfg.PromptTemplatePath != "" {
		content, err := os.ReadFile(cfg.PromptTemplatePath)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read prompt template from %s: %v",
				ErrInvalidConfig, cfg.PromptTemplatePath, err)
		}
		templateContent = string(content)
	}

	promptTemplate, err := template.New("flashcard").Option("missingkey=error").Parse(templateContent)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse prompt template: %v", ErrInvalidConfig, err)
	}

	return &Generator{
		client:         client,
		logger:         logger.With(slog.String("component", "generator")),
		promptTemplate: promptTemplate,
		opts:           llm.Options{MaxTokens: cfg.MaxTokens, Temperature: cfg.Temperature},
		timeout:        cfg.Timeout,
		retryBackoff:   cfg.RetryBackoff,
	}, nil
}

// Prompt renders the prompt for a chunk. The output depends only on its inputs.
func (g *Generator) Prompt(chunk string, targetCount int) (string, error) {
	if strings.TrimSpace(chunk) == "" {
		return "", ErrEmptyChunk
	}
	if targetCount <= 0 {
		return "", fmt.Errorf("%w: %d", ErrInvalidTargetCount, targetCount)
	}

	var buf bytes.Buffer
	data := promptData{TargetCount: targetCount, Text: strings.TrimSpace(chunk)}
	if err := g.promptTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}
	return buf.String(), nil
}

// Generate prompts the model for up to targetCount cards from chunk and
// parses whatever well-formed units the response contains. An empty result
// is not an error. Provider failures are retried once after a fixed backoff.
func (g *Generator) Generate(ctx context.Context, chunk string, targetCount int) ([]domain.Candidate, error) {
	log := logger.FromContextOrDefault(ctx, g.logger)

	prompt, err := g.Prompt(chunk, targetCount)
	if err != nil {
		return nil, err
	}

	log.DebugContext(ctx, "prompt generated",
		slog.Int("chunk_length", len(chunk)),
		slog.Int("prompt_length", len(prompt)),
		slog.Int("target_count", targetCount))

	text, err := g.completeWithRetry(ctx, prompt)
	if err != nil {
		return nil, err
	}

	candidates := ParseCandidates(text)
	hint := excerpt(chunk, sourceHintRunes)
	for i := range candidates {
		candidates[i].SourceHint = hint
	}

	log.InfoContext(ctx, "parsed model response",
		slog.Int("response_length", len(text)),
		slog.Int("candidates", len(candidates)))

	return candidates, nil
}

// completeWithRetry makes at most two attempts. Only provider errors are
// retried; cancellation of the caller's context is returned immediately.
func (g *Generator) completeWithRetry(ctx context.Context, prompt string) (string, error) {
	log := logger.FromContextOrDefault(ctx, g.logger)

	const maxAttempts = 2
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		text, err := g.complete(ctx, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err

		var pe *llm.ProviderError
		if !errors.As(err, &pe) || ctx.Err() != nil {
			return "", err
		}
		if attempt == maxAttempts {
			break
		}

		log.WarnContext(ctx, "completion failed, retrying",
			slog.Int("attempt", attempt),
			slog.Int("status", pe.Status),
			slog.Duration("backoff", g.retryBackoff),
			slog.String("error", err.Error()))

		if err := wait(ctx, g.retryBackoff); err != nil {
			return "", lastErr
		}
	}

	log.ErrorContext(ctx, "completion failed after retry", slog.String("error", lastErr.Error()))
	return "", lastErr
}

// complete performs one call under the per-call timeout. A timeout becomes a
// transient ProviderError so that it is retried like any provider fault.
func (g *Generator) complete(ctx context.Context, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	text, err := g.client.Complete(callCtx, prompt, g.opts)
	if err == nil {
		return text, nil
	}

	var pe *llm.ProviderError
	if errors.As(err, &pe) {
		return "", err
	}
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		return "", llm.NewProviderError("llm", 0, fmt.Sprintf("timed out after %s", g.timeout), err)
	}
	return "", err
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// excerpt returns the first n runes of s with whitespace collapsed.
func excerpt(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:n])) + "…"
}
