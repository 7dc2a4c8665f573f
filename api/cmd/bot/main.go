package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"regexp"
	"strconv"
	"strings"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"llm-extract/api/internal/bootstrap"
	"llm-extract/api/internal/config"
	"llm-extract/api/internal/httpserver"
	"llm-extract/api/internal/llm"
	"llm-extract/api/internal/pipeline"
	"llm-extract/api/internal/telegram"
)

func main() {
	cfg := config.Load()
	logger := bootstrap.Logger(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("bot stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	token := cfg.TelegramBotToken
	if token == "" {
		t, err := config.RequireEnv("TELEGRAM_BOT_TOKEN")
		if err != nil {
			return err
		}
		token = t
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, closeCache, err := bootstrap.Cache(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer closeCache()

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return fmt.Errorf("telegram login: %w", err)
	}
	bot.Debug = false

	engines := bootstrap.Engines(cfg)
	def, err := engines.GetEngine("")
	if err != nil {
		return fmt.Errorf("default engine: %w", err)
	}

	r := telegram.NewRouter(bot, engines, llm.NewManager(def), pipeline.Variants(cfg.TextPlaceholder), logger)
	r.Timeout = cfg.RequestTimeout
	if repo != nil {
		r.Cache = repo
		r.CacheMaxAge = cfg.CacheMaxAge
	}

	addr := "0.0.0.0:" + cfg.Port
	writeTimeout := cfg.RequestTimeout + 10*time.Second

	if webhookURL := strings.TrimSpace(cfg.WebhookURL); webhookURL != "" {
		return startWebhookMode(ctx, addr, writeTimeout, bot, r, webhookURL, logger)
	}
	return startPollingMode(ctx, addr, writeTimeout, bot, r, logger)
}

// ---------------- Modes -----------------

func startWebhookMode(ctx context.Context, addr string, writeTimeout time.Duration, bot *tgbotapi.BotAPI, r *telegram.Router, baseURL string, log *slog.Logger) error {
	// secret webhook path
	path := "/webhook/" + shortHash(bot.Token)
	public := strings.TrimRight(baseURL, "/") + path

	wh, err := tgbotapi.NewWebhook(public)
	if err != nil {
		return fmt.Errorf("webhook config: %w", err)
	}
	wh.DropPendingUpdates = true
	if _, err := bot.Request(wh); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}

	updates := make(chan tgbotapi.Update, bot.Buffer)
	go func() {
		for {
			select {
			case <-ctx.Done():
				log.Info("webhook dispatcher stopped")
				return
			case upd := <-updates:
				r.HandleUpdate(upd)
			}
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", httpserver.Healthz("ok"))
	mux.Handle(path, webhookHandler(bot, updates))

	log.Info("webhook listening", "addr", addr, "path", path)
	return httpserver.Run(ctx, httpserver.New(addr, mux, writeTimeout), log)
}

func startPollingMode(ctx context.Context, addr string, writeTimeout time.Duration, bot *tgbotapi.BotAPI, r *telegram.Router, log *slog.Logger) error {
	// health endpoint, not needed for polling itself
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", httpserver.Healthz("ok"))
	health := make(chan error, 1)
	go func() {
		health <- httpserver.Run(ctx, httpserver.New(addr, mux, writeTimeout), log)
	}()

	runPolling(ctx, bot, r.HandleUpdate, log)
	return <-health
}

// ---------------- Webhook -----------------

// updateDecoder is the part of *tgbotapi.BotAPI the webhook handler uses.
type updateDecoder interface {
	HandleUpdate(r *http.Request) (*tgbotapi.Update, error)
}

// webhookHandler decodes one update per request and queues it on out. Bad
// requests get 400 with a JSON error, as tgbotapi.ListenForWebhook does.
func webhookHandler(dec updateDecoder, out chan<- tgbotapi.Update) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		upd, err := dec.HandleUpdate(req)
		if err != nil {
			msg, _ := json.Marshal(map[string]string{"error": err.Error()})
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write(msg)
			return
		}
		select {
		case out <- *upd:
		case <-req.Context().Done():
		}
	}
}

// ---------------- Polling loop -----------------

var reRetryAfter = regexp.MustCompile(`(?i)retry after\s+(\d+)`)

func retryDelayFromError(err error) time.Duration {
	if err == nil {
		return 0
	}
	s := strings.ToLower(err.Error())
	if strings.Contains(s, "too many requests") { // HTTP 429 from Telegram
		if m := reRetryAfter.FindStringSubmatch(s); len(m) == 2 {
			if n, _ := strconv.Atoi(m[1]); n > 0 {
				return time.Duration(n) * time.Second
			}
		}
		return 3 * time.Second
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return 2 * time.Second
	}
	return 1 * time.Second
}

// updateSource is the part of *tgbotapi.BotAPI the polling loop uses.
type updateSource interface {
	GetUpdates(cfg tgbotapi.UpdateConfig) ([]tgbotapi.Update, error)
}

func runPolling(ctx context.Context, bot updateSource, handle func(tgbotapi.Update), log *slog.Logger) {
	offset := 0
	baseDelay := 1 * time.Second
	maxDelay := 15 * time.Second

	for {
		select {
		case <-ctx.Done():
			log.Info("polling: context cancelled")
			return
		default:
		}

		u := tgbotapi.NewUpdate(offset)
		u.Timeout = 30 // long polling timeout (sec)

		updates, err := bot.GetUpdates(u)
		if err != nil {
			d := max(retryDelayFromError(err), baseDelay)
			d = min(d, maxDelay)
			log.Warn("polling error", "error", err, "retry_in", d.String())
			sleep(ctx, d)
			continue
		}

		for _, upd := range updates {
			if upd.UpdateID >= offset {
				offset = upd.UpdateID + 1
			}
			handle(upd)
		}

		if len(updates) == 0 {
			sleep(ctx, 200*time.Millisecond)
		}
	}
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// ---------------- Helpers -----------------

// shortHash is FNV-1a over s as 16 hex digits; stable per token, not a secret.
func shortHash(s string) string {
	h := uint64(1469598103934665603)
	const prime = 1099511628211
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= prime
	}
	const hexdigits = "0123456789abcdef"
	out := make([]byte, 16)
	for i := 15; i >= 0; i-- {
		out[i] = hexdigits[h&0xF]
		h >>= 4
	}
	return string(out)
}
