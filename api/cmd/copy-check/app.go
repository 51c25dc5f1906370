package main

import (
	"context"
	"database/sql"
	"errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"copy-check/api/internal/config"
	"copy-check/api/internal/copycheck"
	"copy-check/api/internal/llm"
	"copy-check/api/internal/llm/claude"
	"copy-check/api/internal/llm/gemini"
	"copy-check/api/internal/llm/gpt"
	"copy-check/api/internal/prompt"
	"copy-check/api/internal/ratelimit"
	"copy-check/api/internal/store"
)

type app struct {
	svc *copycheck.Service

	db   *sql.DB
	repo *store.SuggestionRepo
	rdb  *redis.Client
}

func (a *app) Close() error {
	var errs []error
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	if a.rdb != nil {
		errs = append(errs, a.rdb.Close())
	}
	return errors.Join(errs...)
}

func engines(cfg *config.Config) *llm.Engines {
	e := &llm.Engines{}
	if cfg.OpenAIAPIKey != "" {
		e.GPT = gpt.New(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL)
	}
	if cfg.GeminiAPIKey != "" {
		e.Gemini = gemini.New(cfg.GeminiAPIKey, cfg.GeminiModel)
	}
	if cfg.AnthropicAPIKey != "" {
		e.Claude = claude.New(cfg.AnthropicAPIKey, cfg.AnthropicModel, "")
	}
	return e
}

// newApp wires the service. Without a usable engine every request takes the
// fallback path; withLimiter is false for one-shot CLI runs.
func newApp(ctx context.Context, cfg *config.Config, log *zap.Logger, offline, withLimiter bool) (*app, error) {
	a := &app{}

	var engine llm.Engine
	if !offline {
		e, err := engines(cfg).GetEngine(cfg.ModelProvider)
		if err != nil {
			log.Warn("model unavailable, serving rule-based fallbacks only", zap.Error(err))
		} else {
			engine = e
		}
	}

	var cache llm.Cache
	if cfg.DatabaseURL != "" {
		db, err := store.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		a.db = db
		repo := store.NewSuggestionRepo(db, cfg.CacheTTL)
		if err := repo.Migrate(ctx); err != nil {
			_ = a.Close()
			return nil, err
		}
		a.repo = repo
		cache = repo
	} else {
		cache = store.NewMemoryCache(cfg.CacheSize, cfg.CacheTTL)
	}

	builder, err := prompt.NewBuilder(cfg.PromptDir, log)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	var suggester copycheck.Suggester
	if engine != nil {
		suggester = llm.NewSuggester(engine, builder, llm.SuggesterConfig{
			Timeout:     cfg.ModelTimeout,
			Temperature: &cfg.ModelTemperature,
			Cache:       cache,
			Logger:      log,
		})
	}

	var limiter ratelimit.Limiter
	if withLimiter {
		rlCfg := ratelimit.Config{Limit: cfg.RateLimit, Interval: cfg.RateInterval}
		if cfg.RedisAddr != "" {
			rdb, err := ratelimit.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
			if err != nil {
				_ = a.Close()
				return nil, err
			}
			a.rdb = rdb
			limiter = ratelimit.NewRedis(rdb, rlCfg, log)
		} else {
			limiter = ratelimit.NewMemory(rlCfg)
		}
	}

	a.svc = copycheck.New(copycheck.Config{
		Limiter:        limiter,
		Suggester:      suggester,
		Logger:         log,
		FallbackStatus: cfg.FallbackStatus,
	})
	return a, nil
}
