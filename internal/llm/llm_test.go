package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProviderError_Error(t *testing.T) {
	t.Parallel()

	err := NewProviderError("openai", 429, "rate limited", nil)
	assert.Equal(t, "openai provider error (status 429): rate limited", err.Error())

	wrapped := NewProviderError("gemini", 0, "", context.DeadlineExceeded)
	assert.Equal(t, "gemini provider error: context deadline exceeded", wrapped.Error())
	assert.ErrorIs(t, wrapped, context.DeadlineExceeded)
	assert.ErrorIs(t, wrapped, ErrProvider)
}

func TestProviderError_Transient(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status int
		want   bool
	}{
		{0, true},
		{400, false},
		{401, false},
		{404, false},
		{408, true},
		{429, true},
		{500, true},
		{503, true},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, NewProviderError("p", tt.status, "", nil).Transient())
		})
	}
}

func TestIsTransient(t *testing.T) {
	t.Parallel()

	assert.True(t, IsTransient(fmt.Errorf("chunk 2: %w", NewProviderError("p", 502, "", nil))))
	assert.False(t, IsTransient(NewProviderError("p", 401, "", nil)))
	assert.True(t, IsTransient(context.DeadlineExceeded))
	assert.False(t, IsTransient(errors.New("boom")))
}

func TestCompleterFunc(t *testing.T) {
	t.Parallel()

	var c Completer = CompleterFunc(func(_ context.Context, prompt string, opts Options) (string, error) {
		return fmt.Sprintf("%s/%d", prompt, opts.MaxTokens), nil
	})
	out, err := c.Complete(context.Background(), "hi", Options{MaxTokens: 5})
	assert.NoError(t, err)
	assert.Equal(t, "hi/5", out)
}
