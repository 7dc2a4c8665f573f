// Package normalize turns raw model output into a complete extract.Result.
package normalize

import (
	"encoding/json"
	"strings"

	"llm-extract/api/internal/extract"
	"llm-extract/api/internal/util"
)

// TextDefault says what fills Text when neither the model nor the heuristics set it.
type TextDefault string

const (
	TextFromInput   TextDefault = "input"       // the original input text
	TextPlaceholder TextDefault = "placeholder" // Policy.Placeholder
)

// DefaultPlaceholder is used when Policy.Placeholder is empty.
const DefaultPlaceholder = "No text content was provided."

// Policy holds the per-variant choices of the normalizer.
type Policy struct {
	DefaultText TextDefault
	Placeholder string
}

// Source tells which step of Normalize produced the fields.
type Source string

const (
	SourceJSON      Source = "json"       // whole output parsed
	SourceEmbedded  Source = "embedded"   // first balanced {...} parsed
	SourcePlainText Source = "plain_text" // output used as Text
)

// Normalize is Parse without the source.
func Normalize(modelOutput, original string, p Policy) extract.Result {
	r, _ := Parse(modelOutput, original, p)
	return r
}

// Parse builds a Result from modelOutput and the original input:
//  1. the whole output as one JSON object, a surrounding ``` fence allowed;
//  2. else the first balanced {...} inside it;
//  3. else the whole output becomes Text.
//
// Missing Code/Language come from a fenced block in original, a missing ImageUrl
// from the image heuristic on original, and a missing Text from the policy.
// Parse is pure; malformed output never yields an error.
func Parse(modelOutput, original string, p Policy) (extract.Result, Source) {
	var (
		r   extract.Result
		src Source
	)
	trimmed := util.StripCodeFences(modelOutput)
	if obj, ok := decodeObject(trimmed); ok {
		r, src = obj, SourceJSON
	} else if sub, found := util.FirstJSONObject(trimmed); found {
		if obj, ok := decodeObject(sub); ok {
			r, src = obj, SourceEmbedded
		}
	}
	if src == "" {
		r = extract.Result{Text: extract.Str(modelOutput)}
		src = SourcePlainText
	}

	if !extract.Present(r.Code) {
		if f, ok := extract.ExtractFencedCode(original); ok {
			r.Code = extract.Str(f.Code)
			if !extract.Present(r.Language) {
				lang := f.Language
				if lang == "" {
					lang = extract.DetectLanguage(f.Code)
				}
				r.Language = extract.Str(lang)
			}
		}
	}
	if !extract.Present(r.ImageURL) {
		if u, ok := extract.ExtractImageURL(original); ok {
			r.ImageURL = extract.Str(u)
		}
	}
	if !extract.Present(r.Text) {
		r.Text = extract.Str(p.TextFor(original))
	}
	return r, src
}

// TextFor returns the Text used when nothing else supplied one.
func (p Policy) TextFor(original string) string {
	if p.DefaultText == TextPlaceholder {
		if p.Placeholder != "" {
			return p.Placeholder
		}
		return DefaultPlaceholder
	}
	return original
}

// wire mirrors the four JSON fields; values arrive as string or null.
type wire struct {
	Code     *string `json:"Code"`
	Language *string `json:"Language"`
	Text     *string `json:"Text"`
	ImageURL *string `json:"ImageUrl"`
}

func decodeObject(s string) (extract.Result, bool) {
	if !strings.HasPrefix(s, "{") {
		return extract.Result{}, false
	}
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return extract.Result{}, false
	}
	if err := validateResult(v); err != nil {
		return extract.Result{}, false
	}
	var w wire
	if err := json.Unmarshal([]byte(s), &w); err != nil {
		return extract.Result{}, false
	}
	return extract.Result{
		Code:     blankToNil(w.Code),
		Language: blankToNil(w.Language),
		Text:     blankToNil(w.Text),
		ImageURL: blankToNil(w.ImageURL),
	}, true
}

func blankToNil(p *string) *string {
	if !extract.Present(p) {
		return nil
	}
	return p
}
