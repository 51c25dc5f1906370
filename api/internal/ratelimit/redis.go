package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "copycheck:rl:"

// Redis is a fixed-window counter shared by every instance pointing at the
// same server. A Redis failure admits the request.
type Redis struct {
	rdb redis.UniversalClient
	cfg Config
	log *zap.Logger
}

func NewRedis(rdb redis.UniversalClient, cfg Config, log *zap.Logger) *Redis {
	if log == nil {
		log = zap.NewNop()
	}
	return &Redis{rdb: rdb, cfg: cfg.withDefaults(), log: log}
}

func (r *Redis) Allow(ctx context.Context, identity string) bool {
	key := keyPrefix + identity

	var incr *redis.IntCmd
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, r.cfg.Interval)
		return nil
	})
	if err != nil {
		r.log.Warn("rate limit backend unavailable, admitting request",
			zap.String("identity", identity), zap.Error(err))
		return true
	}
	return incr.Val() <= int64(r.cfg.Limit)
}

// NewRedisClient connects to addr and verifies the connection with PING.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}
