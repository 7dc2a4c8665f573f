package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"llm-extract/api/internal/bootstrap"
	"llm-extract/api/internal/config"
	"llm-extract/api/internal/handle"
	"llm-extract/api/internal/httpserver"
	"llm-extract/api/internal/pipeline"
)

func main() {
	cfg := config.Load()
	logger := bootstrap.Logger(os.Stdout, cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		logger.Error("bad config", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := handle.Options{
		Timeout:            cfg.RequestTimeout,
		ExposeErrorDetails: cfg.ExposeErrorDetails,
		CacheMaxAge:        cfg.CacheMaxAge,
	}
	repo, closeCache, err := bootstrap.Cache(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open cache", "error", err)
		os.Exit(1)
	}
	defer closeCache()
	if repo != nil {
		opts.Cache = repo
	}

	engines := bootstrap.Engines(cfg)
	h := handle.New(engines, opts, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", httpserver.Healthz("ok"))
	h.Register(mux, pipeline.Variants(cfg.TextPlaceholder))

	srv := httpserver.New(":"+cfg.Port, httpserver.WithRequestLog(logger, mux), cfg.RequestTimeout+10*time.Second)
	logger.Info("llm-extract starting",
		"default_llm", cfg.DefaultLLM,
		"gemini", engines.Gemini != nil,
		"openai", engines.OpenAI != nil,
		"cache", repo != nil)
	if err := httpserver.Run(ctx, srv, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
