package ratelimit

import (
	"context"
	"sync"
	"time"
)

type bucket struct {
	tokens int
	ts     time.Time
}

// Memory is a process-local token bucket per identity. Buckets are created
// full on first use and live for the life of the process.
type Memory struct {
	cfg Config
	now func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket
}

func NewMemory(cfg Config) *Memory {
	return &Memory{
		cfg:     cfg.withDefaults(),
		now:     time.Now,
		buckets: make(map[string]*bucket),
	}
}

// WithClock replaces the time source.
func (m *Memory) WithClock(now func() time.Time) *Memory {
	if now != nil {
		m.now = now
	}
	return m
}

// Allow refills the bucket by floor(elapsed/interval*limit) tokens, capped at
// the limit, and then spends one token if any is left. The refill timestamp
// only moves when at least one token was added, so slow trickles of requests
// still accumulate elapsed time.
func (m *Memory) Allow(_ context.Context, identity string) bool {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.buckets[identity]
	if !ok {
		b = &bucket{tokens: m.cfg.Limit, ts: now}
		m.buckets[identity] = b
	}

	if elapsed := now.Sub(b.ts); elapsed > 0 {
		refill := m.cfg.Limit
		if elapsed < m.cfg.Interval {
			refill = int(elapsed * time.Duration(m.cfg.Limit) / m.cfg.Interval)
		}
		if refill > 0 {
			b.tokens = min(m.cfg.Limit, b.tokens+refill)
			b.ts = now
		}
	}

	if b.tokens <= 0 {
		return false
	}
	b.tokens--
	return true
}

// Len reports how many identities have a bucket.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.buckets)
}
