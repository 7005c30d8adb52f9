package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Yzairi/CDA/internal/domain"
	"github.com/Yzairi/CDA/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatRequest struct {
	Model       string  `json:"model"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float32 `json:"temperature"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func newServer(t *testing.T, status int, body string, got *chatRequest, auth *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got != nil {
			_ = json.NewDecoder(r.Body).Decode(got)
		}
		if auth != nil {
			*auth = r.Header.Get("Authorization")
		}
		assert.Equal(t, "/chat/completions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCompleteSendsPromptAndReturnsReply(t *testing.T) {
	var got chatRequest
	var auth string
	srv := newServer(t, http.StatusOK, `{
		"id": "c1", "object": "chat.completion", "model": "gpt-test",
		"choices": [{"index": 0, "message": {"role": "assistant", "content": "{\"estimatedPrice\": 1}"}, "finish_reason": "stop"}],
		"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
	}`, &got, &auth)

	client := NewOpenAIClient(Config{APIKey: "sk-test", BaseURL: srv.URL, Model: "gpt-test"}, logger.NewNop())
	reply, err := client.Complete(context.Background(), domain.CompletionRequest{
		System:      "system prompt",
		Prompt:      "user prompt",
		MaxTokens:   500,
		Temperature: 0.1,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"estimatedPrice": 1}`, reply)

	assert.Equal(t, "Bearer sk-test", auth)
	assert.Equal(t, "gpt-test", got.Model)
	assert.Equal(t, 500, got.MaxTokens)
	assert.InDelta(t, 0.1, got.Temperature, 0.0001)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "system prompt", got.Messages[0].Content)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, "user prompt", got.Messages[1].Content)
}

func TestCompleteWithoutSystemPrompt(t *testing.T) {
	var got chatRequest
	srv := newServer(t, http.StatusOK, `{"choices": [{"message": {"role": "assistant", "content": "better text"}}]}`, &got, nil)

	client := NewOpenAIClient(Config{APIKey: "k", BaseURL: srv.URL}, logger.NewNop())
	reply, err := client.Complete(context.Background(), domain.CompletionRequest{Prompt: "text"})
	require.NoError(t, err)
	assert.Equal(t, "better text", reply)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "gpt-3.5-turbo", got.Model)
}

func TestCompleteAPIError(t *testing.T) {
	srv := newServer(t, http.StatusUnauthorized, `{"error": {"message": "invalid key", "type": "invalid_request_error"}}`, nil, nil)

	client := NewOpenAIClient(Config{APIKey: "bad", BaseURL: srv.URL}, logger.NewNop())
	_, err := client.Complete(context.Background(), domain.CompletionRequest{Prompt: "text"})
	assert.ErrorContains(t, err, "chat completion")
}

func TestCompleteNoChoices(t *testing.T) {
	srv := newServer(t, http.StatusOK, `{"choices": []}`, nil, nil)

	client := NewOpenAIClient(Config{APIKey: "k", BaseURL: srv.URL}, logger.NewNop())
	_, err := client.Complete(context.Background(), domain.CompletionRequest{Prompt: "text"})
	assert.ErrorIs(t, err, errNoChoices)
}
