// Package pipeline runs one extraction request: heuristics, prompt, model call,
// normalization and code styling, in the order a Variant asks for.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"llm-extract/api/internal/extract"
	"llm-extract/api/internal/llm"
	"llm-extract/api/internal/normalize"
	"llm-extract/api/internal/prompt"
)

type Pipeline struct {
	Variant Variant
	log     *slog.Logger
}

func New(v Variant, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{Variant: v, log: log.With("variant", v.Name)}
}

// Run extracts a Result from text. Only a failed model call is returned as an
// error (UpstreamFailure); unparseable model output is recovered.
func (p *Pipeline) Run(ctx context.Context, eng llm.Engine, text string) (extract.Result, error) {
	if strings.TrimSpace(text) == "" {
		return extract.Result{}, NewError(InvalidRequest, "Text (non-empty string) is required", nil)
	}
	v := p.Variant
	policy := v.policy()

	var heur extract.Result
	if v.Order == HeuristicFirst {
		heur = extract.Heuristic(text)
		if v.ShortCircuit && heur.HasCode() {
			r := heur
			if !extract.Present(r.Text) {
				r.Text = extract.Str(policy.TextFor(text))
			}
			p.log.Debug("heuristic short-circuit", "language", extract.Value(r.Language))
			return p.finish(r), nil
		}
	}

	if eng == nil {
		return extract.Result{}, NewError(UpstreamFailure, "no model is configured", nil)
	}
	opts := v.promptOptions()
	out, err := eng.Generate(ctx, llm.TextRequest{
		System: prompt.System(opts),
		Prompt: prompt.Build(text, opts),
		JSON:   v.Template != prompt.TemplateRaw,
	})
	if err != nil {
		return extract.Result{}, NewError(UpstreamFailure, "model call failed", err)
	}

	r, src := normalize.Parse(out, text, policy)
	if src == normalize.SourcePlainText && v.Template != prompt.TemplateRaw {
		p.log.Warn("model output is not JSON; using it as text",
			"kind", MalformedModelOutput, "engine", eng.Name(), "output_len", len(out))
	}
	if v.Order == HeuristicFirst && heur.HasCode() {
		r.Code, r.Language = heur.Code, heur.Language
	}
	p.log.Debug("extraction done", "engine", eng.Name(), "model", eng.GetModel(), "source", src)
	return p.finish(r), nil
}

func (p *Pipeline) finish(r extract.Result) extract.Result {
	if extract.Present(r.Code) {
		r.Code = extract.Str(p.Variant.CodeStyle.Apply(*r.Code))
	}
	return r
}

// Image generates one image for prompt. A successful call without image bytes is
// a MissingArtifact error.
func (p *Pipeline) Image(ctx context.Context, eng llm.Engine, promptText string) (llm.Image, error) {
	if strings.TrimSpace(promptText) == "" {
		return llm.Image{}, NewError(InvalidRequest, "Prompt (non-empty string) is required", nil)
	}
	if eng == nil {
		return llm.Image{}, NewError(UpstreamFailure, "no model is configured", nil)
	}
	img, err := eng.GenerateImage(ctx, promptText)
	if errors.Is(err, llm.ErrNoImage) || (err == nil && len(img.Data) == 0) {
		return llm.Image{}, NewError(MissingArtifact, "No image was returned by the model", err)
	}
	if err != nil {
		return llm.Image{}, NewError(UpstreamFailure, "image call failed", err)
	}
	return img, nil
}
