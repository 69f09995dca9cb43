// Package llm talks to an OpenAI-compatible completion endpoint and shapes
// its responses into the fields the artifact store records: content, token
// usage, wall-clock duration and a truncation warning if generation was cut
// off.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"

	"github.com/sf1tzp/symbology-sub000/config"
	"github.com/sf1tzp/symbology-sub000/orm"
)

// ErrEmptyCompletion is returned when the endpoint answers with no choices.
var ErrEmptyCompletion = errors.New("completion returned no choices")

// Client wraps a chat-completion endpoint. BaseURL in the config redirects
// it at local inference servers that speak the OpenAI API.
type Client struct {
	api          *openai.Client
	defaultModel string
}

// NewClient builds a client from configuration.
func NewClient(cfg config.LLMConfig) *Client {
	apiConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiConfig.BaseURL = cfg.BaseURL
	}

	return &Client{
		api:          openai.NewClientWithConfig(apiConfig),
		defaultModel: cfg.Model,
	}
}

// Request is one generation call: the prompts to send and the model
// configuration governing it. A nil ModelConfig falls back to the client's
// default model with default sampling.
type Request struct {
	ModelConfig  *orm.ModelConfig
	SystemPrompt string
	UserPrompt   string
}

// Result carries the completion plus the accounting fields recorded on the
// artifact row.
type Result struct {
	Content          string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	DurationMS       int64
	Warning          string
}

// Generate runs one chat completion and measures it.
func (c *Client) Generate(ctx context.Context, request Request) (*Result, error) {
	if request.UserPrompt == "" {
		return nil, errors.New("user prompt must not be empty")
	}

	model := c.defaultModel
	req := openai.ChatCompletionRequest{}
	if request.ModelConfig != nil {
		if request.ModelConfig.Model != "" {
			model = request.ModelConfig.Model
		}
		req.Temperature = request.ModelConfig.Temperature
	}
	req.Model = model

	if request.SystemPrompt != "" {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: request.SystemPrompt,
		})
	}
	req.Messages = append(req.Messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: request.UserPrompt,
	})

	started := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	duration := time.Since(started)

	if len(resp.Choices) == 0 {
		return nil, ErrEmptyCompletion
	}

	choice := resp.Choices[0]
	result := &Result{
		Content:          choice.Message.Content,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
		DurationMS:       duration.Milliseconds(),
	}
	if choice.FinishReason == openai.FinishReasonLength {
		result.Warning = "completion truncated at the token limit"
	}

	log.Debug().
		Str("model", model).
		Int("total_tokens", result.TotalTokens).
		Int64("duration_ms", result.DurationMS).
		Str("finish_reason", string(choice.FinishReason)).
		Msg("completion finished")

	return result, nil
}
