// Package claude is the Anthropic Messages engine.
package claude

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"copy-check/api/internal/llm"
	"copy-check/api/internal/prompt"
)

const maxTokens = 1024

type Engine struct {
	APIKey string
	Model  string
	client anthropic.Client
}

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
		client: anthropic.NewClient(opts...),
	}
}

func (e *Engine) Name() string     { return "claude" }
func (e *Engine) GetModel() string { return e.Model }

func (e *Engine) Complete(ctx context.Context, p prompt.Prompt, opts llm.Options) (string, error) {
	if e.APIKey == "" {
		return "", fmt.Errorf("ANTHROPIC_API_KEY is empty: %w", llm.ErrNoCredentials)
	}
	msg, err := e.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(e.Model),
		MaxTokens:   maxTokens,
		System:      []anthropic.TextBlockParam{{Text: p.System}},
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(p.User))},
		Temperature: anthropic.Float(opts.Temperature),
	})
	if err != nil {
		return "", fmt.Errorf("anthropic messages: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(tb.Text)
		}
	}
	return sb.String(), nil
}
