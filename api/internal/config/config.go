package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port     string
	LogLevel string

	DefaultLLM string

	GeminiAPIKey     string
	GeminiModel      string
	GeminiImageModel string
	GeminiEndpoint   string
	GeminiBaseURL    string

	OpenAIAPIKey     string
	OpenAIModel      string
	OpenAIImageModel string
	OpenAIBaseURL    string

	Temperature    float32
	RequestTimeout time.Duration
	RateLimit      float64 // model calls per second, 0 disables the limiter
	RateBurst      int

	TextPlaceholder    string
	ExposeErrorDetails bool

	CacheDSN    string
	CacheMaxAge time.Duration

	TelegramBotToken string
	WebhookURL       string
}

// RequireEnv returns the value of k, or ErrInvalid when it is unset or blank.
func RequireEnv(k string) (string, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return "", fmt.Errorf("%w: missing required env %s", ErrInvalid, k)
	}
	return v, nil
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getEnvAsInt(k string, def int) int {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvAsFloat(k string, def float64) float64 {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getEnvAsBool(k string, def bool) bool {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

// getEnvAsDuration accepts Go durations ("90s") and plain seconds ("90").
func getEnvAsDuration(k string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return def
}

func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8000"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DefaultLLM: strings.ToLower(getEnv("DEFAULT_LLM", "gemini")),

		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		GeminiModel:      getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiImageModel: getEnv("GEMINI_IMAGE_MODEL", "gemini-2.0-flash-preview-image-generation"),
		GeminiEndpoint:   getEnv("GEMINI_ENDPOINT", ""),
		GeminiBaseURL:    getEnv("GEMINI_BASE_URL", ""),

		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:      getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIImageModel: getEnv("OPENAI_IMAGE_MODEL", "dall-e-3"),
		OpenAIBaseURL:    getEnv("OPENAI_BASE_URL", ""),

		Temperature:    float32(getEnvAsFloat("LLM_TEMPERATURE", 0.2)),
		RequestTimeout: getEnvAsDuration("REQUEST_TIMEOUT", 70*time.Second),
		RateLimit:      getEnvAsFloat("LLM_RATE_LIMIT", 0),
		RateBurst:      getEnvAsInt("LLM_RATE_BURST", 1),

		TextPlaceholder:    getEnv("TEXT_PLACEHOLDER", ""),
		ExposeErrorDetails: getEnvAsBool("EXPOSE_ERROR_DETAILS", false),

		CacheDSN:    getEnv("CACHE_DSN", ""),
		CacheMaxAge: getEnvAsDuration("CACHE_MAX_AGE", 24*time.Hour),

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		WebhookURL:       getEnv("WEBHOOK_URL", ""),
	}
}

var ErrInvalid = errors.New("invalid config")

// Validate checks that at least one provider is usable and that DEFAULT_LLM
// names a configured one.
func (c *Config) Validate() error {
	if c.GeminiAPIKey == "" && c.OpenAIAPIKey == "" {
		return fmt.Errorf("%w: set GEMINI_API_KEY or OPENAI_API_KEY", ErrInvalid)
	}
	switch c.DefaultLLM {
	case "gemini", "google":
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("%w: DEFAULT_LLM=%s but GEMINI_API_KEY is empty", ErrInvalid, c.DefaultLLM)
		}
	case "gpt", "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("%w: DEFAULT_LLM=%s but OPENAI_API_KEY is empty", ErrInvalid, c.DefaultLLM)
		}
	default:
		return fmt.Errorf("%w: unknown DEFAULT_LLM %q (use gemini|gpt)", ErrInvalid, c.DefaultLLM)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("%w: REQUEST_TIMEOUT must be positive", ErrInvalid)
	}
	if c.RateLimit < 0 || c.RateBurst < 1 {
		return fmt.Errorf("%w: LLM_RATE_LIMIT must be >= 0 and LLM_RATE_BURST >= 1", ErrInvalid)
	}
	return nil
}
