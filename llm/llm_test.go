package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sf1tzp/symbology-sub000/config"
	"github.com/sf1tzp/symbology-sub000/orm"
)

func newStubServer(t *testing.T, finishReason string) (*httptest.Server, *map[string]any) {
	t.Helper()

	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{
					"message":       map[string]any{"role": "assistant", "content": "generated summary"},
					"finish_reason": finishReason,
				},
			},
			"usage": map[string]any{
				"prompt_tokens":     120,
				"completion_tokens": 40,
				"total_tokens":      160,
			},
		})
	}))
	t.Cleanup(server.Close)

	return server, &captured
}

func TestGenerate(t *testing.T) {
	server, captured := newStubServer(t, "stop")

	client := NewClient(config.LLMConfig{
		BaseURL: server.URL,
		APIKey:  "test-key",
		Model:   "default-model",
	})

	result, err := client.Generate(context.Background(), Request{
		ModelConfig: &orm.ModelConfig{
			Model:       "qwen2.5:32b",
			Temperature: 0.2,
		},
		SystemPrompt: "You summarize SEC filings.",
		UserPrompt:   "Summarize the risk factors section.",
	})
	require.NoError(t, err)

	assert.Equal(t, "generated summary", result.Content)
	assert.Equal(t, 120, result.PromptTokens)
	assert.Equal(t, 40, result.CompletionTokens)
	assert.Equal(t, 160, result.TotalTokens)
	assert.Empty(t, result.Warning)
	assert.GreaterOrEqual(t, result.DurationMS, int64(0))

	assert.Equal(t, "qwen2.5:32b", (*captured)["model"])
	messages, ok := (*captured)["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
}

func TestGenerateTruncationWarning(t *testing.T) {
	server, _ := newStubServer(t, "length")

	client := NewClient(config.LLMConfig{BaseURL: server.URL, Model: "default-model"})

	result, err := client.Generate(context.Background(), Request{
		UserPrompt: "Summarize.",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Warning)
}

func TestGenerateRequiresUserPrompt(t *testing.T) {
	client := NewClient(config.LLMConfig{Model: "default-model"})

	_, err := client.Generate(context.Background(), Request{})
	require.Error(t, err)
}
