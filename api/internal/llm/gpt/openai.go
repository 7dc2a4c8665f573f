package gpt

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"

	"llm-extract/api/internal/llm"
	"llm-extract/api/internal/util"
)

type Engine struct {
	APIKey      string
	Model       string
	ImageModel  string
	BaseURL     string // optional, for OpenAI-compatible endpoints
	Temperature float32
	httpc       *http.Client
}

func New(key, model, imageModel string) *Engine {
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 120 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   100,
	}

	return &Engine{
		APIKey:     strings.TrimSpace(key),
		Model:      strings.TrimSpace(model),
		ImageModel: strings.TrimSpace(imageModel),
		// Timeout=0: the request context carries the deadline.
		httpc: &http.Client{
			Timeout:   0,
			Transport: tr,
		},
	}
}

// WithHTTPClient overrides the internal HTTP client (e.g., for custom timeouts or tracing).
func (e *Engine) WithHTTPClient(c *http.Client) *Engine {
	if c != nil {
		e.httpc = c
	}
	return e
}

func (e *Engine) Name() string     { return "gpt" }
func (e *Engine) GetModel() string { return e.Model }

func (e *Engine) SetModel(m string) {
	if m = strings.TrimSpace(m); m != "" {
		e.Model = m
	}
}

func (e *Engine) client() (*openai.Client, error) {
	if e.APIKey == "" {
		return nil, errors.New("OPENAI_API_KEY is empty")
	}
	opts := []option.RequestOption{
		option.WithAPIKey(e.APIKey),
		option.WithMaxRetries(0),
		option.WithHTTPClient(e.httpc),
	}
	if e.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(e.BaseURL))
	}
	c := openai.NewClient(opts...)
	return &c, nil
}

// Generate runs one chat completion and returns the assistant text. No retries.
func (e *Engine) Generate(ctx context.Context, req llm.TextRequest) (string, error) {
	cl, err := e.client()
	if err != nil {
		return "", err
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if s := strings.TrimSpace(req.System); s != "" {
		messages = append(messages, openai.SystemMessage(s))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(e.Model),
		Messages:    messages,
		Temperature: openai.Float(float64(e.Temperature)),
	}
	if req.JSON {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	resp, err := cl.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", describe("gpt generate", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", fmt.Errorf("gpt generate: empty response")
	}
	msg := resp.Choices[0].Message
	text := msg.Content
	if strings.TrimSpace(text) == "" {
		text = msg.Refusal
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("gpt generate: empty response")
	}
	return text, nil
}

// GenerateImage requests one base64 image from the images API.
func (e *Engine) GenerateImage(ctx context.Context, prompt string) (llm.Image, error) {
	cl, err := e.client()
	if err != nil {
		return llm.Image{}, err
	}
	model := e.ImageModel
	if model == "" {
		model = string(openai.ImageModelDallE3)
	}
	params := openai.ImageGenerateParams{
		Prompt: prompt,
		Model:  openai.ImageModel(model),
	}
	// gpt-image-* always answers with base64 and rejects response_format.
	if strings.HasPrefix(model, "dall-e") {
		params.ResponseFormat = openai.ImageGenerateParamsResponseFormatB64JSON
	}

	resp, err := cl.Images.Generate(ctx, params)
	if err != nil {
		return llm.Image{}, describe("gpt image", err)
	}
	if resp == nil {
		return llm.Image{}, llm.ErrNoImage
	}
	for _, d := range resp.Data {
		if strings.TrimSpace(d.B64JSON) == "" {
			continue
		}
		data, err := base64.StdEncoding.DecodeString(d.B64JSON)
		if err != nil {
			return llm.Image{}, fmt.Errorf("gpt image: bad base64: %w", err)
		}
		if len(data) == 0 {
			continue
		}
		return llm.Image{MIMEType: util.SniffMimeHTTP(data), Data: data}, nil
	}
	return llm.Image{}, llm.ErrNoImage
}

func describe(op string, err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s: openai %d: %w", op, apiErr.StatusCode, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
