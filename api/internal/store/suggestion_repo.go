package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"go.uber.org/zap"

	"copy-check/api/internal/copycheck/types"
)

var ErrNotFound = sql.ErrNoRows

const schemaDDL = `
create table if not exists copy_suggestions (
    key         text primary key,
    provider    text not null,
    model       text not null,
    output_json jsonb not null,
    created_at  timestamptz not null default now()
)`

// SuggestionRepo caches model candidates in Postgres, keyed by the hash of
// provider, model and input.
type SuggestionRepo struct {
	DB     *sql.DB
	MaxAge time.Duration
}

func NewSuggestionRepo(db *sql.DB, maxAge time.Duration) *SuggestionRepo {
	return &SuggestionRepo{DB: db, MaxAge: maxAge}
}

// Open connects through the pgx stdlib driver and pings the server.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db.Ping: %w", err)
	}
	return db, nil
}

// Migrate creates the cache table when it does not exist.
func (r *SuggestionRepo) Migrate(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, schemaDDL)
	return err
}

// Find returns the cached output for key. A row older than maxAge (when
// maxAge > 0) or one that no longer decodes reports ErrNotFound.
func (r *SuggestionRepo) Find(ctx context.Context, key string, maxAge time.Duration) (*types.Output, error) {
	const q = `select output_json, created_at from copy_suggestions where key=$1`
	var (
		js []byte
		ts time.Time
	)
	if err := r.DB.QueryRowContext(ctx, q, key).Scan(&js, &ts); err != nil {
		return nil, err
	}
	if maxAge > 0 && time.Since(ts) > maxAge {
		return nil, ErrNotFound
	}
	var out types.Output
	if err := json.Unmarshal(js, &out); err != nil {
		return nil, ErrNotFound
	}
	return &out, nil
}

// Upsert stores out under key, refreshing created_at on conflict.
func (r *SuggestionRepo) Upsert(ctx context.Context, key, provider, model string, out *types.Output) error {
	js, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	const q = `
insert into copy_suggestions(key, provider, model, output_json)
values ($1,$2,$3,$4)
on conflict (key)
do update set provider=excluded.provider, model=excluded.model, output_json=excluded.output_json, created_at=now()`
	_, err = r.DB.ExecContext(ctx, q, key, provider, model, js)
	return err
}

// Prune deletes rows older than maxAge and reports how many went.
func (r *SuggestionRepo) Prune(ctx context.Context, maxAge time.Duration) (int64, error) {
	const q = `delete from copy_suggestions where created_at < now() - make_interval(secs => $1)`
	res, err := r.DB.ExecContext(ctx, q, maxAge.Seconds())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// RunJanitor prunes expired rows every interval until ctx is done. Failures
// are logged and retried on the next tick.
func (r *SuggestionRepo) RunJanitor(ctx context.Context, interval time.Duration, log *zap.Logger) error {
	if r.MaxAge <= 0 {
		<-ctx.Done()
		return nil
	}
	if log == nil {
		log = zap.NewNop()
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			n, err := r.Prune(ctx, r.MaxAge)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				log.Warn("prune suggestion cache", zap.Error(err))
				continue
			}
			if n > 0 {
				log.Debug("pruned suggestion cache", zap.Int64("rows", n))
			}
		}
	}
}

func (r *SuggestionRepo) Get(ctx context.Context, key string) (*types.Output, bool, error) {
	out, err := r.Find(ctx, key, r.MaxAge)
	switch {
	case errors.Is(err, ErrNotFound):
		return nil, false, nil
	case err != nil:
		return nil, false, err
	}
	return out, true, nil
}

func (r *SuggestionRepo) Put(ctx context.Context, key, provider, model string, out *types.Output) error {
	return r.Upsert(ctx, key, provider, model, out)
}
