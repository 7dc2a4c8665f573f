package llm

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// NewLimiter returns a token bucket for outbound model calls, or nil when rps <= 0.
func NewLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

type limited struct {
	Engine
	lim *rate.Limiter
}

// WithLimiter makes every call on e wait for lim. Engines may share one limiter.
// A nil e or lim returns e unchanged.
func WithLimiter(e Engine, lim *rate.Limiter) Engine {
	if e == nil || lim == nil {
		return e
	}
	return &limited{Engine: e, lim: lim}
}

func (l *limited) Generate(ctx context.Context, req TextRequest) (string, error) {
	if err := l.lim.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit error: %w", err)
	}
	return l.Engine.Generate(ctx, req)
}

func (l *limited) GenerateImage(ctx context.Context, prompt string) (Image, error) {
	if err := l.lim.Wait(ctx); err != nil {
		return Image{}, fmt.Errorf("rate limit error: %w", err)
	}
	return l.Engine.GenerateImage(ctx, prompt)
}

// SetModel forwards to the wrapped engine when it can switch models.
func (l *limited) SetModel(m string) {
	if ms, ok := l.Engine.(interface{ SetModel(string) }); ok {
		ms.SetModel(m)
	}
}
