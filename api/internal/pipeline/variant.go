package pipeline

import (
	"llm-extract/api/internal/extract"
	"llm-extract/api/internal/normalize"
	"llm-extract/api/internal/prompt"
)

// Order says whether heuristics run before or after the model.
type Order string

const (
	HeuristicFirst Order = "heuristic_first"
	ModelFirst     Order = "model_first"
)

// Variant is the per-endpoint configuration of the extraction pipeline.
type Variant struct {
	Name  string
	Order Order
	// ShortCircuit skips the model when heuristics already found code.
	// Only used with HeuristicFirst.
	ShortCircuit bool
	Template     prompt.Template
	DefaultText  normalize.TextDefault
	Placeholder  string
	CodeStyle    extract.CodeStyle
}

func (v Variant) policy() normalize.Policy {
	return normalize.Policy{DefaultText: v.DefaultText, Placeholder: v.Placeholder}
}

func (v Variant) promptOptions() prompt.Options {
	return prompt.Options{Template: v.Template, CodeStyle: v.CodeStyle}
}

// Built-in variants, one per text endpoint.
var (
	Extract = Variant{
		Name:         "extract",
		Order:        HeuristicFirst,
		ShortCircuit: true,
		Template:     prompt.TemplateExtract,
		DefaultText:  normalize.TextFromInput,
		CodeStyle:    extract.CodeStyleWrap,
	}
	Analyze = Variant{
		Name:        "analyze",
		Order:       ModelFirst,
		Template:    prompt.TemplateAnalyze,
		DefaultText: normalize.TextFromInput,
		CodeStyle:   extract.CodeStyleWrap,
	}
	Code = Variant{
		Name:        "code",
		Order:       ModelFirst,
		Template:    prompt.TemplateCode,
		DefaultText: normalize.TextPlaceholder,
		Placeholder: normalize.DefaultPlaceholder,
		CodeStyle:   extract.CodeStyleStrip,
	}
	Chat = Variant{
		Name:        "chat",
		Order:       ModelFirst,
		Template:    prompt.TemplateRaw,
		DefaultText: normalize.TextFromInput,
		CodeStyle:   extract.CodeStyleKeep,
	}
)

// Variants returns the built-in variants keyed by name. The placeholder, when
// non-empty, replaces the default of every placeholder variant.
func Variants(placeholder string) map[string]Variant {
	out := map[string]Variant{}
	for _, v := range []Variant{Extract, Analyze, Code, Chat} {
		if placeholder != "" && v.DefaultText == normalize.TextPlaceholder {
			v.Placeholder = placeholder
		}
		out[v.Name] = v
	}
	return out
}
