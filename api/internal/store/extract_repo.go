package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"llm-extract/api/internal/extract"
	"llm-extract/api/internal/util"
)

var ErrNotFound = sql.ErrNoRows

type ExtractRepo struct{ DB *sql.DB }

func NewExtractRepo(db *sql.DB) *ExtractRepo { return &ExtractRepo{DB: db} }

// Key is the cache key of one extraction: the same text sent through the same
// variant and model yields the same key.
func Key(variant, engine, model, text string) string {
	return util.SHA256Hex(variant, engine, model, text)
}

// Entry is one cached extraction.
type Entry struct {
	Key     string
	Variant string
	Engine  string
	Model   string
	Result  extract.Result
}

// Find returns the cached result for key. Missing, broken or (when maxAge > 0)
// stale rows yield ErrNotFound.
func (r *ExtractRepo) Find(ctx context.Context, key string, maxAge time.Duration) (extract.Result, error) {
	const q = `select result_json, created_at from extract_cache where cache_key=$1`
	var (
		js string
		ts int64
	)
	if err := r.DB.QueryRowContext(ctx, q, key).Scan(&js, &ts); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return extract.Result{}, ErrNotFound
		}
		return extract.Result{}, fmt.Errorf("find %s: %w", key, err)
	}
	if maxAge > 0 && time.Since(time.Unix(ts, 0)) > maxAge {
		return extract.Result{}, ErrNotFound
	}
	var res extract.Result
	if err := json.Unmarshal([]byte(js), &res); err != nil {
		return extract.Result{}, ErrNotFound
	}
	return res, nil
}

// Upsert stores e, replacing any row with the same key.
func (r *ExtractRepo) Upsert(ctx context.Context, e Entry) error {
	js, err := json.Marshal(e.Result)
	if err != nil {
		return err
	}
	const q = `
insert into extract_cache(cache_key, variant, engine, model, result_json, created_at)
values ($1,$2,$3,$4,$5,$6)
on conflict (cache_key)
do update set result_json=excluded.result_json, created_at=excluded.created_at`
	_, err = r.DB.ExecContext(ctx, q, e.Key, e.Variant, e.Engine, e.Model, string(js), time.Now().Unix())
	return err
}

// Prune deletes rows older than maxAge and returns how many went away.
func (r *ExtractRepo) Prune(ctx context.Context, maxAge time.Duration) (int64, error) {
	const q = `delete from extract_cache where created_at < $1`
	res, err := r.DB.ExecContext(ctx, q, time.Now().Add(-maxAge).Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
