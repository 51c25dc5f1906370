// Package llm invokes the external language model and classifies every
// attempt into an explicit Outcome.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"copy-check/api/internal/prompt"
)

var (
	// ErrNoCredentials is returned by engines that have no API key configured.
	ErrNoCredentials = errors.New("model credentials not configured")
	// ErrMalformedOutput wraps every failure to turn model text into an Output.
	ErrMalformedOutput = errors.New("malformed model output")
)

// Options tune a single completion call.
type Options struct {
	Temperature float64
}

// Engine is one model provider. Complete returns the raw model text; it must
// not retry on its own.
type Engine interface {
	Name() string
	GetModel() string
	Complete(ctx context.Context, p prompt.Prompt, opts Options) (string, error)
}

type Engines struct {
	GPT    Engine
	Gemini Engine
	Claude Engine
}

func (e *Engines) GetEngine(name string) (Engine, error) {
	var eng Engine
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "gpt", "openai":
		eng = e.GPT
	case "gemini", "google":
		eng = e.Gemini
	case "claude", "anthropic":
		eng = e.Claude
	default:
		return nil, fmt.Errorf("unknown model provider %q; use 'gpt', 'gemini' or 'claude'", name)
	}
	if eng == nil {
		return nil, fmt.Errorf("%s: %w", name, ErrNoCredentials)
	}
	return eng, nil
}
