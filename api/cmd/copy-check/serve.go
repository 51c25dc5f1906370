package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"copy-check/api/internal/config"
	"copy-check/api/internal/handle"
	"copy-check/api/internal/httpserver"
	"copy-check/api/internal/logging"
)

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, log)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	a, err := newApp(ctx, cfg, log, false, true)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warn("close backends", zap.Error(err))
		}
	}()

	mux := http.NewServeMux()
	handle.New(a.svc, handle.Options{
		AllowedOrigin: cfg.AllowedOrigin,
		MaxBodyBytes:  cfg.MaxBodyBytes,
		Logger:        log,
	}).Register(mux)

	log.Info("copy-check starting",
		zap.String("addr", cfg.Addr()),
		zap.String("provider", cfg.ModelProvider),
		zap.String("model", cfg.Model()),
		zap.Bool("redis", cfg.RedisAddr != ""),
		zap.Bool("postgres", cfg.DatabaseURL != ""))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpserver.New(cfg.Addr(), mux, log).Run(gctx)
	})
	if a.repo != nil {
		g.Go(func() error {
			return a.repo.RunJanitor(gctx, janitorInterval(cfg.CacheTTL), log)
		})
	}
	return g.Wait()
}

// janitorInterval sweeps a few times per TTL, at most hourly and at least
// once a minute.
func janitorInterval(ttl time.Duration) time.Duration {
	return min(time.Hour, max(time.Minute, ttl/4))
}
