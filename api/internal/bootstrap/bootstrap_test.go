package bootstrap

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llm-extract/api/internal/config"
	"llm-extract/api/internal/extract"
	"llm-extract/api/internal/store"
)

func TestEngines(t *testing.T) {
	cfg := &config.Config{DefaultLLM: "gemini", GeminiAPIKey: "k", GeminiModel: "gemini-2.5-flash"}
	engs := Engines(cfg)

	e, err := engs.GetEngine("")
	require.NoError(t, err)
	assert.Equal(t, "gemini", e.Name())
	assert.Equal(t, "gemini-2.5-flash", e.GetModel())

	_, err = engs.GetEngine("gpt")
	assert.ErrorContains(t, err, "not configured")

	cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.RateLimit, cfg.RateBurst = "o", "gpt-4o-mini", 5, 2
	e, err = Engines(cfg).GetEngine("openai")
	require.NoError(t, err)
	assert.Equal(t, "gpt", e.Name())
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := Logger(&buf, "warn")
	log.Info("hidden")
	log.Warn("shown", "k", "v")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
}

func TestCache(t *testing.T) {
	log := Logger(io.Discard, "info")

	repo, closeFn, err := Cache(context.Background(), &config.Config{}, log)
	require.NoError(t, err)
	assert.Nil(t, repo)
	closeFn()

	repo, closeFn, err = Cache(context.Background(), &config.Config{CacheDSN: ":memory:"}, log)
	require.NoError(t, err)
	require.NotNil(t, repo)
	closeFn()
}

func TestCache_PrunesStaleRowsOnOpen(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "cache.db")

	db, err := store.Open(ctx, dsn)
	require.NoError(t, err)
	seed := store.NewExtractRepo(db)
	fresh := store.Entry{Key: "fresh", Variant: "chat", Engine: "gemini", Model: "m", Result: extract.Result{Text: extract.Str("new")}}
	require.NoError(t, seed.Upsert(ctx, fresh))
	_, err = db.ExecContext(ctx,
		`insert into extract_cache(cache_key, variant, engine, model, result_json, created_at) values ($1,$2,$3,$4,$5,$6)`,
		"stale", "chat", "gemini", "m", `{"Text":"old"}`, int64(1))
	require.NoError(t, err)
	require.NoError(t, db.Close())

	repo, closeFn, err := Cache(ctx, &config.Config{CacheDSN: dsn, CacheMaxAge: time.Hour}, Logger(io.Discard, "info"))
	require.NoError(t, err)
	defer closeFn()

	_, err = repo.Find(ctx, "stale", 0)
	assert.ErrorIs(t, err, store.ErrNotFound)
	got, err := repo.Find(ctx, "fresh", 0)
	require.NoError(t, err)
	assert.Equal(t, "new", extract.Value(got.Text))
}
