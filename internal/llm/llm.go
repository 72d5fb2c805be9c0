// Package llm defines the single text-completion contract flashdeck needs
// from a language-model provider, along with the provider error type that
// drives retry decisions.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrProvider is matched by every *ProviderError.
var ErrProvider = errors.New("llm provider error")

// Options tune one completion call.
type Options struct {
	MaxTokens   int
	Temperature float32
}

// Completer sends one prompt and returns the model's text.
// Implementations return *ProviderError for transport and API failures.
type Completer interface {
	Complete(ctx context.Context, prompt string, opts Options) (string, error)
}

// CompleterFunc adapts a function to the Completer interface.
type CompleterFunc func(ctx context.Context, prompt string, opts Options) (string, error)

// Complete implements Completer.
func (f CompleterFunc) Complete(ctx context.Context, prompt string, opts Options) (string, error) {
	return f(ctx, prompt, opts)
}

// ProviderError is a failure reported by, or on the way to, the provider.
type ProviderError struct {
	// Provider names the backend, e.g. "gemini" or "openai".
	Provider string
	// Status is the HTTP status code, or 0 for network errors and timeouts.
	Status  int
	Message string
	Err     error
}

// Error implements the error interface for ProviderError.
func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("%s provider error", e.Provider)
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match ErrProvider.
func (e *ProviderError) Is(target error) bool {
	return target == ErrProvider
}

// Transient reports whether retrying the call could succeed: network errors,
// timeouts, rate limiting and server-side failures.
func (e *ProviderError) Transient() bool {
	switch {
	case e.Status == 0:
		return true
	case e.Status == http.StatusRequestTimeout, e.Status == http.StatusTooManyRequests:
		return true
	case e.Status >= 500:
		return true
	default:
		return false
	}
}

// NewProviderError builds a ProviderError.
func NewProviderError(provider string, status int, message string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Status: status, Message: message, Err: err}
}

// IsTransient reports whether err is a transient ProviderError or a deadline.
func IsTransient(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Transient()
	}
	return errors.Is(err, context.DeadlineExceeded)
}
