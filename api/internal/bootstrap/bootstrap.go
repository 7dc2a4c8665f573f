// Package bootstrap wires config into the logger, engines and cache shared by
// the HTTP server and the Telegram bot.
package bootstrap

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"strings"

	"llm-extract/api/internal/config"
	"llm-extract/api/internal/llm"
	"llm-extract/api/internal/llm/gemini"
	"llm-extract/api/internal/llm/gpt"
	"llm-extract/api/internal/store"
)

// Logger returns a JSON logger at level ("debug", "info", "warn", "error").
func Logger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// Engines builds a client for every provider that has a key. All engines share
// one rate limiter when LLM_RATE_LIMIT is set.
func Engines(cfg *config.Config) *llm.Engines {
	lim := llm.NewLimiter(cfg.RateLimit, cfg.RateBurst)
	engs := &llm.Engines{Default: cfg.DefaultLLM}

	if cfg.GeminiAPIKey != "" {
		g := gemini.New(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiImageModel)
		g.Endpoint = cfg.GeminiEndpoint
		g.BaseURL = cfg.GeminiBaseURL
		g.Temperature = cfg.Temperature
		engs.Gemini = llm.WithLimiter(g, lim)
	}
	if cfg.OpenAIAPIKey != "" {
		o := gpt.New(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIImageModel)
		o.BaseURL = cfg.OpenAIBaseURL
		o.Temperature = cfg.Temperature
		engs.OpenAI = llm.WithLimiter(o, lim)
	}
	return engs
}

// Cache opens the result cache when CACHE_DSN is set and drops rows older than
// CACHE_MAX_AGE. A nil repo means caching is off; the returned close func is
// always safe to call.
func Cache(ctx context.Context, cfg *config.Config, log *slog.Logger) (*store.ExtractRepo, func(), error) {
	if cfg.CacheDSN == "" {
		return nil, func() {}, nil
	}
	db, err := store.Open(ctx, cfg.CacheDSN)
	if err != nil {
		return nil, func() {}, err
	}
	log.Info("cache connected", "dsn", store.SafeDSNSummary(cfg.CacheDSN), "max_age", cfg.CacheMaxAge.String())
	repo := store.NewExtractRepo(db)
	if cfg.CacheMaxAge > 0 {
		n, err := repo.Prune(ctx, cfg.CacheMaxAge)
		if err != nil {
			log.Warn("cache prune failed", "error", err)
		} else {
			log.Info("cache pruned", "rows", n)
		}
	}
	return repo, closer(db, log), nil
}

func closer(db *sql.DB, log *slog.Logger) func() {
	return func() {
		if err := db.Close(); err != nil {
			log.Warn("cache close failed", "error", err)
		}
	}
}
