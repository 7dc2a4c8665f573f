package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"llm-extract/api/internal/llm"
	"llm-extract/api/internal/util"
)

// Image generation goes through the newer google.golang.org/genai client: the
// older SDK used for text cannot ask for IMAGE response modalities.

func (e *Engine) imageClient(ctx context.Context) (*genai.Client, error) {
	if e.APIKey == "" {
		return nil, errors.New("GEMINI_API_KEY is empty")
	}
	cc := &genai.ClientConfig{
		APIKey:     e.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: e.HTTPClient,
	}
	if e.BaseURL != "" {
		cc.HTTPOptions.BaseURL = e.BaseURL
	}
	return genai.NewClient(ctx, cc)
}

// GenerateImage asks the image model for a picture. Imagen models go through
// the predict endpoint, everything else through generateContent with TEXT and
// IMAGE modalities; the first inline blob is returned.
func (e *Engine) GenerateImage(ctx context.Context, prompt string) (llm.Image, error) {
	cl, err := e.imageClient(ctx)
	if err != nil {
		return llm.Image{}, err
	}

	model := e.ImageModel
	if model == "" {
		model = e.Model
	}

	var (
		mime string
		data []byte
	)
	if isImagen(model) {
		resp, err := cl.Models.GenerateImages(ctx, model, prompt, &genai.GenerateImagesConfig{NumberOfImages: 1})
		if err != nil {
			return llm.Image{}, fmt.Errorf("gemini image: %w", err)
		}
		mime, data = firstGenerated(resp)
	} else {
		resp, err := cl.Models.GenerateContent(ctx, model, genai.Text(prompt), &genai.GenerateContentConfig{
			ResponseModalities: []string{string(genai.ModalityText), string(genai.ModalityImage)},
		})
		if err != nil {
			return llm.Image{}, fmt.Errorf("gemini image: %w", err)
		}
		mime, data = firstInline(resp)
	}
	if len(data) == 0 {
		return llm.Image{}, llm.ErrNoImage
	}
	return llm.Image{MIMEType: util.PickMIME(mime, data), Data: data}, nil
}

func isImagen(model string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimPrefix(model, "models/")), "imagen")
}

func firstInline(resp *genai.GenerateContentResponse) (string, []byte) {
	if resp == nil {
		return "", nil
	}
	for _, c := range resp.Candidates {
		if c == nil || c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if p != nil && p.InlineData != nil && len(p.InlineData.Data) > 0 {
				return p.InlineData.MIMEType, p.InlineData.Data
			}
		}
	}
	return "", nil
}

func firstGenerated(resp *genai.GenerateImagesResponse) (string, []byte) {
	if resp == nil {
		return "", nil
	}
	for _, g := range resp.GeneratedImages {
		if g != nil && g.Image != nil && len(g.Image.ImageBytes) > 0 {
			return g.Image.MIMEType, g.Image.ImageBytes
		}
	}
	return "", nil
}
