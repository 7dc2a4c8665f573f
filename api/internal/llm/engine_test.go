package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

type stubEngine struct {
	name  string
	calls int
}

func (s *stubEngine) Name() string     { return s.name }
func (s *stubEngine) GetModel() string { return s.name + "-model" }

func (s *stubEngine) Generate(_ context.Context, req TextRequest) (string, error) {
	s.calls++
	return "echo: " + req.Prompt, nil
}

func (s *stubEngine) GenerateImage(_ context.Context, _ string) (Image, error) {
	s.calls++
	return Image{MIMEType: "image/png", Data: []byte{1}}, nil
}

func TestEngines_GetEngine(t *testing.T) {
	g, o := &stubEngine{name: "gemini"}, &stubEngine{name: "gpt"}
	engs := &Engines{Gemini: g, OpenAI: o, Default: "gemini"}

	e, err := engs.GetEngine("")
	require.NoError(t, err)
	assert.Same(t, g, e)

	e, err = engs.GetEngine(" OpenAI ")
	require.NoError(t, err)
	assert.Same(t, o, e)

	_, err = engs.GetEngine("claude")
	assert.ErrorIs(t, err, ErrUnknownEngine)

	engs.OpenAI = nil
	_, err = engs.GetEngine("gpt")
	assert.ErrorContains(t, err, "not configured")
}

func TestManager(t *testing.T) {
	g, o := &stubEngine{name: "gemini"}, &stubEngine{name: "gpt"}
	m := NewManager(g)
	assert.Same(t, g, m.Get(1))
	m.Set(1, o)
	assert.Same(t, o, m.Get(1))
	assert.Same(t, g, m.Get(2))
}

func TestWithLimiter(t *testing.T) {
	s := &stubEngine{name: "gemini"}
	assert.Same(t, s, WithLimiter(s, nil))
	assert.Nil(t, NewLimiter(0, 3))

	e := WithLimiter(s, NewLimiter(1000, 2))
	out, err := e.Generate(context.Background(), TextRequest{Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "echo: hi", out)
	assert.Equal(t, "gemini", e.Name())

	_, err = e.GenerateImage(context.Background(), "cat")
	require.NoError(t, err)
	assert.Equal(t, 2, s.calls)
}

func TestWithLimiter_ContextDeadline(t *testing.T) {
	s := &stubEngine{name: "gemini"}
	lim := rate.NewLimiter(rate.Every(time.Hour), 1)
	e := WithLimiter(s, lim)

	_, err := e.Generate(context.Background(), TextRequest{Prompt: "first"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = e.Generate(ctx, TextRequest{Prompt: "second"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit error")
	assert.Equal(t, 1, s.calls)
}
