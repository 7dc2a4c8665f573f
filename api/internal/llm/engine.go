package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// TextRequest is one prompt for a text model.
type TextRequest struct {
	System string // optional system instruction
	Prompt string
	JSON   bool // ask the provider for a JSON-only response when it supports it
}

// Image is an inline binary payload returned by an image model.
type Image struct {
	MIMEType string
	Data     []byte
}

// Engine is a model client. Generate and GenerateImage block on the network.
type Engine interface {
	Name() string
	GetModel() string
	Generate(ctx context.Context, req TextRequest) (string, error)
	GenerateImage(ctx context.Context, prompt string) (Image, error)
}

var (
	// ErrNoImage is returned when a call succeeds but carries no image bytes.
	ErrNoImage = errors.New("model returned no image")
	// ErrUnknownEngine is returned by GetEngine for names it does not know.
	ErrUnknownEngine = errors.New("unknown llm_name")
)

type Engines struct {
	Gemini  Engine
	OpenAI  Engine
	Default string // llm_name used when a request names none
}

// GetEngine resolves llm_name to a configured engine.
func (e *Engines) GetEngine(llmName string) (Engine, error) {
	name := strings.ToLower(strings.TrimSpace(llmName))
	if name == "" {
		name = e.Default
	}
	var eng Engine
	switch name {
	case "gemini", "google":
		eng = e.Gemini
	case "gpt", "openai":
		eng = e.OpenAI
	default:
		return nil, fmt.Errorf("%w %q; use 'gemini' or 'gpt'", ErrUnknownEngine, llmName)
	}
	if eng == nil {
		return nil, fmt.Errorf("llm %q is not configured", name)
	}
	return eng, nil
}

// Manager keeps a per-chat engine choice with a fallback default.
type Manager struct {
	def Engine
	m   sync.Map // chatID -> Engine
}

func NewManager(defaultEngine Engine) *Manager {
	return &Manager{def: defaultEngine}
}

func (m *Manager) Get(chatID int64) Engine {
	if v, ok := m.m.Load(chatID); ok {
		return v.(Engine)
	}
	return m.def
}

func (m *Manager) Set(chatID int64, e Engine) {
	m.m.Store(chatID, e)
}
