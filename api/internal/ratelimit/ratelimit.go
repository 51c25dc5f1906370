// Package ratelimit gates requests per caller identity. It is abuse
// mitigation only: small races that admit an extra request are tolerated.
package ratelimit

import (
	"context"
	"time"
)

const (
	DefaultLimit    = 20
	DefaultInterval = 60 * time.Second
)

// Limiter decides whether the caller identified by identity may proceed.
type Limiter interface {
	Allow(ctx context.Context, identity string) bool
}

type Config struct {
	Limit    int
	Interval time.Duration
}

func (c Config) withDefaults() Config {
	if c.Limit <= 0 {
		c.Limit = DefaultLimit
	}
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
	return c
}
