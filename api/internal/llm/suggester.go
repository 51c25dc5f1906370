package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"copy-check/api/internal/copycheck/types"
	"copy-check/api/internal/prompt"
)

const (
	DefaultTimeout     = 30 * time.Second
	DefaultTemperature = 0.3
	defaultRetryDelay  = 100 * time.Millisecond
	// retryCooling is subtracted from the temperature for the strict attempt.
	retryCooling = 0.1
)

// Cache stores decoded model candidates. Implementations must be safe for
// concurrent use; a miss is (nil, false, nil).
type Cache interface {
	Get(ctx context.Context, key string) (*types.Output, bool, error)
	Put(ctx context.Context, key string, provider, model string, out *types.Output) error
}

type SuggesterConfig struct {
	Timeout time.Duration
	// Temperature nil means DefaultTemperature; zero is a valid setting.
	Temperature *float64
	RetryDelay  time.Duration
	Cache       Cache
	Logger      *zap.Logger
}

// Suggester asks one engine for a candidate output. A decode failure is
// retried once with a stricter prompt at a lower temperature; transport
// failures are not retried.
type Suggester struct {
	engine  Engine
	builder *prompt.Builder
	cache   Cache
	log     *zap.Logger

	timeout     time.Duration
	temperature float64
	retryDelay  time.Duration
}

// NewSuggester builds a Suggester. A nil engine is allowed: every call then
// reports Unavailable with ErrNoCredentials.
func NewSuggester(engine Engine, builder *prompt.Builder, cfg SuggesterConfig) *Suggester {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	temperature := DefaultTemperature
	if cfg.Temperature != nil {
		temperature = *cfg.Temperature
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = defaultRetryDelay
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Suggester{
		engine:      engine,
		builder:     builder,
		cache:       cfg.Cache,
		log:         cfg.Logger,
		timeout:     cfg.Timeout,
		temperature: temperature,
		retryDelay:  cfg.RetryDelay,
	}
}

func (s *Suggester) Suggest(ctx context.Context, in types.Input) Outcome {
	if s.engine == nil {
		return Outcome{Kind: Unavailable, Err: ErrNoCredentials}
	}
	name, model := s.engine.Name(), s.engine.GetModel()

	key, err := CacheKey(name, model, in)
	if err != nil {
		return Outcome{Kind: Unavailable, Err: err}
	}
	if s.cache != nil {
		out, ok, err := s.cache.Get(ctx, key)
		switch {
		case err != nil:
			s.log.Warn("suggestion cache lookup failed", zap.Error(err))
		case ok:
			return Outcome{Kind: Success, Output: out, Source: SourceCache}
		}
	}

	p, err := s.builder.Build(in)
	if err != nil {
		return Outcome{Kind: Unavailable, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var (
		out      *types.Output
		attempts int
	)
	b := retry.WithMaxRetries(1, retry.NewConstant(s.retryDelay))
	err = retry.Do(ctx, b, func(ctx context.Context) error {
		attempts++
		pr, opts := p, Options{Temperature: s.temperature}
		if attempts > 1 {
			pr = prompt.Strict(p)
			opts.Temperature = max(0, s.temperature-retryCooling)
		}

		raw, err := s.engine.Complete(ctx, pr, opts)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		o, err := types.DecodeOutput(raw)
		if err != nil {
			s.log.Debug("model output rejected",
				zap.String("provider", name),
				zap.Int("attempt", attempts),
				zap.Error(err))
			return retry.RetryableError(fmt.Errorf("%w: %v", ErrMalformedOutput, err))
		}
		out = o
		return nil
	})

	switch {
	case err == nil:
	case errors.Is(err, ErrMalformedOutput):
		return Outcome{Kind: ParseFailure, Attempts: attempts, Err: err}
	default:
		return Outcome{Kind: Unavailable, Attempts: attempts, Err: err}
	}

	if s.cache != nil {
		if err := s.cache.Put(ctx, key, name, model, out); err != nil {
			s.log.Warn("suggestion cache store failed", zap.Error(err))
		}
	}
	return Outcome{Kind: Success, Output: out, Source: SourceModel, Attempts: attempts}
}

// CacheKey identifies a candidate by provider, model and the full input.
func CacheKey(provider, model string, in types.Input) (string, error) {
	js, err := json.Marshal(in)
	if err != nil {
		return "", fmt.Errorf("cache key: %w", err)
	}
	h := sha256.New()
	h.Write([]byte(provider + "|" + model + "|"))
	h.Write(js)
	return hex.EncodeToString(h.Sum(nil)), nil
}
