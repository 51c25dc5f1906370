// Package copycheck sequences a copy check: rate limit, validation, the
// optional model attempt and the mandatory constraint enforcement.
package copycheck

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"copy-check/api/internal/copycheck/types"
	"copy-check/api/internal/llm"
	"copy-check/api/internal/ratelimit"
)

// DefaultFallbackStatus is the HTTP status of a response produced without
// the model.
const DefaultFallbackStatus = http.StatusUnprocessableEntity

var ErrRateLimited = errors.New("rate limit exceeded")

// Path names how a response was produced.
const (
	PathModel    = "model"
	PathCache    = "cache"
	PathFallback = "fallback"
)

// Suggester is the model side of the pipeline; llm.Suggester implements it.
type Suggester interface {
	Suggest(ctx context.Context, in types.Input) llm.Outcome
}

type Result struct {
	Status  int
	Path    string
	Output  *types.Output
	Outcome llm.Outcome
}

type Service struct {
	limiter        ratelimit.Limiter
	suggester      Suggester
	log            *zap.Logger
	fallbackStatus int
}

type Config struct {
	Limiter        ratelimit.Limiter
	Suggester      Suggester
	Logger         *zap.Logger
	FallbackStatus int
}

// New builds the service. A nil Limiter admits everything and a nil
// Suggester sends every request down the fallback path.
func New(cfg Config) *Service {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.FallbackStatus == 0 {
		cfg.FallbackStatus = DefaultFallbackStatus
	}
	return &Service{
		limiter:        cfg.Limiter,
		suggester:      cfg.Suggester,
		log:            cfg.Logger,
		fallbackStatus: cfg.FallbackStatus,
	}
}

// Check runs the whole pipeline for one request body. The only errors are
// ErrRateLimited and *ValidationError; every later failure degrades to the
// fallback answer.
func (s *Service) Check(ctx context.Context, identity string, body []byte) (*Result, error) {
	if s.limiter != nil && !s.limiter.Allow(ctx, identity) {
		return nil, ErrRateLimited
	}
	in, err := Validate(body)
	if err != nil {
		return nil, err
	}
	return s.Run(ctx, in), nil
}

// Run produces the enforced answer for an already validated input.
func (s *Service) Run(ctx context.Context, in types.Input) *Result {
	if s.suggester == nil {
		return s.fallback(in, llm.Outcome{Kind: llm.Unavailable, Err: llm.ErrNoCredentials})
	}

	oc := s.suggester.Suggest(ctx, in)
	switch oc.Kind {
	case llm.Success:
		path := PathModel
		if oc.Source == llm.SourceCache {
			path = PathCache
		}
		return &Result{
			Status:  http.StatusOK,
			Path:    path,
			Output:  Enforce(oc.Output, in),
			Outcome: oc,
		}
	case llm.ParseFailure:
		s.log.Warn("model output unusable after retry, using fallback",
			zap.Int("attempts", oc.Attempts), zap.Error(oc.Err))
	default:
		if errors.Is(oc.Err, llm.ErrNoCredentials) {
			s.log.Debug("model not configured, using fallback")
		} else {
			s.log.Warn("model unavailable, using fallback", zap.Error(oc.Err))
		}
	}
	return s.fallback(in, oc)
}

// fallback enforces Fallback(in). The rewriter is a fixpoint on its own
// output, so enforcement leaves the text and flags of a fallback as built.
func (s *Service) fallback(in types.Input, oc llm.Outcome) *Result {
	return &Result{
		Status:  s.fallbackStatus,
		Path:    PathFallback,
		Output:  Enforce(Fallback(in), in),
		Outcome: oc,
	}
}
