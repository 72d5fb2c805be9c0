package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/phrazzld/flashdeck/internal/config"
	"github.com/phrazzld/flashdeck/internal/llm"
	openaisdk "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, apiKey string) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(config.LLMConfig{Model: "gpt-4o-mini", APIKey: apiKey, BaseURL: srv.URL + "/v1/"}, srv.Client(), nil)
	require.NoError(t, err)
	return c
}

func TestClient_Complete(t *testing.T) {
	t.Parallel()

	var got openaisdk.ChatCompletionRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Q: a?\nA: b"},"finish_reason":"stop"}]}`))
	}, "sk-test")

	text, err := c.Complete(context.Background(), "the prompt", llm.Options{MaxTokens: 700, Temperature: 0.2})
	require.NoError(t, err)
	assert.Equal(t, "Q: a?\nA: b", text)

	assert.Equal(t, "gpt-4o-mini", got.Model)
	assert.Equal(t, 700, got.MaxTokens)
	assert.InDelta(t, 0.2, got.Temperature, 1e-6)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, "the prompt", got.Messages[1].Content)
}

func TestClient_WorksWithoutKey(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}, "")

	text, err := c.Complete(context.Background(), "p", llm.Options{MaxTokens: 1})
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
}

func TestClient_ErrorResponses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		status    int
		body      string
		wantMsg   string
		transient bool
	}{
		{name: "api error", status: 400, body: `{"error":{"message":"bad model","type":"invalid_request_error"}}`, wantMsg: "bad model"},
		{name: "unauthorized without message", status: 401, body: `{}`, wantMsg: "authentication failed"},
		{name: "rate limited", status: 429, body: `{"error":{"message":"slow down","type":"rate_limit"}}`, wantMsg: "slow down", transient: true},
		{name: "server error", status: 502, body: `{}`, wantMsg: "bad gateway", transient: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}, "k")

			_, err := c.Complete(context.Background(), "p", llm.Options{MaxTokens: 1})
			var pe *llm.ProviderError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.status, pe.Status)
			assert.Contains(t, pe.Message, tt.wantMsg)
			assert.Equal(t, tt.transient, pe.Transient())
		})
	}
}

func TestClient_MalformedAndEmpty(t *testing.T) {
	t.Parallel()

	malformed := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`not json`))
	}, "k")
	_, err := malformed.Complete(context.Background(), "p", llm.Options{MaxTokens: 1})
	assert.ErrorIs(t, err, llm.ErrProvider)

	empty := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}, "k")
	_, err = empty.Complete(context.Background(), "p", llm.Options{MaxTokens: 1})
	assert.ErrorIs(t, err, llm.ErrProvider)
}

func TestClient_NetworkErrorIsTransient(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c, err := NewClient(config.LLMConfig{Model: "m", BaseURL: url}, nil, nil)
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), "p", llm.Options{MaxTokens: 1})
	var pe *llm.ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 0, pe.Status)
	assert.True(t, pe.Transient())
}

func TestClient_ContextDeadlinePassesThrough(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}, "k")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.Complete(ctx, "p", llm.Options{MaxTokens: 1})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestToProviderError(t *testing.T) {
	t.Parallel()

	pe := toProviderError(&openaisdk.APIError{HTTPStatusCode: 404})
	assert.Equal(t, 404, pe.Status)
	assert.Equal(t, "model or endpoint not found", pe.Message)

	pe = toProviderError(&openaisdk.RequestError{HTTPStatusCode: 503})
	assert.Equal(t, 503, pe.Status)
	assert.True(t, pe.Transient())

	pe = toProviderError(errors.New("dial tcp: connection refused"))
	assert.Equal(t, 0, pe.Status)
	assert.Contains(t, pe.Message, "connection refused")
}

func TestNewClient(t *testing.T) {
	t.Parallel()

	_, err := NewClient(config.LLMConfig{}, nil, nil)
	assert.Error(t, err)

	c, err := NewClient(config.LLMConfig{Model: "m"}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, c.base)
}
