// Package gpt is the OpenAI chat-completions engine.
package gpt

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"copy-check/api/internal/llm"
	"copy-check/api/internal/prompt"
)

type Engine struct {
	APIKey string
	Model  string
	client openai.Client
}

// New builds the engine. baseURL may be empty for the public API. SDK-level
// retries are disabled; retry policy belongs to llm.Suggester.
func New(apiKey, model, baseURL string) *Engine {
	apiKey = strings.TrimSpace(apiKey)
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &Engine{
		APIKey: apiKey,
		Model:  strings.TrimSpace(model),
		client: openai.NewClient(opts...),
	}
}

func (e *Engine) Name() string     { return "gpt" }
func (e *Engine) GetModel() string { return e.Model }

func (e *Engine) Complete(ctx context.Context, p prompt.Prompt, opts llm.Options) (string, error) {
	if e.APIKey == "" {
		return "", fmt.Errorf("OPENAI_API_KEY is empty: %w", llm.ErrNoCredentials)
	}
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(e.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(p.System),
			openai.UserMessage(p.User),
		},
		Temperature: openai.Float(opts.Temperature),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		},
	}
	resp, err := e.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai chat: %w", err)
	}
	// an empty answer is a model problem, not a transport one
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
