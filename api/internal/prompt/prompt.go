// Package prompt builds the instruction text sent to the model.
//
// The raw input is embedded verbatim between delimiters. Nothing is escaped, so
// input that imitates the delimiters or carries its own instructions can steer
// the model (prompt injection is a known limitation).
package prompt

import (
	"fmt"
	"strings"

	"llm-extract/api/internal/extract"
)

// Template selects the wording of the task part of the prompt.
type Template string

const (
	TemplateExtract Template = "extract" // pull code/image out of the input, describe the rest
	TemplateAnalyze Template = "analyze" // answer or explain the input
	TemplateCode    Template = "code"    // generate code for the request
	TemplateRaw     Template = "raw"     // send the input unchanged
)

const (
	InputOpen  = "<<<INPUT"
	InputClose = "INPUT>>>"
)

// Options configure Build and System.
type Options struct {
	Template  Template
	CodeStyle extract.CodeStyle
}

var tasks = map[Template]string{
	TemplateExtract: "Extract any source code or markup and any image URL contained in the input. " +
		"Put a short plain-language summary of the rest of the input in Text.",
	TemplateAnalyze: "Answer or explain the input. If the answer needs code, put it in Code and name its language in Language. " +
		"Put the explanation in Text. If an image would help and you know a real image URL, put it in ImageUrl.",
	TemplateCode: "Write the code the input asks for. Put only the code in Code and its language in Language. " +
		"Put a one-paragraph explanation in Text.",
}

// System returns the system instruction for engines that accept one.
// The raw template has none.
func System(opt Options) string {
	if opt.Template == TemplateRaw {
		return ""
	}
	var b strings.Builder
	b.WriteString("You convert user requests into a strict JSON object.\n")
	b.WriteString("The object has exactly four keys: Code, Language, Text, ImageUrl.\n")
	b.WriteString("Each value is a string or null. Use null for anything that does not apply.\n")
	b.WriteString("JSON schema of the answer:\n")
	b.WriteString(ResultSchema)
	return b.String()
}

// Build returns the user prompt for text. TemplateRaw returns text unchanged.
func Build(text string, opt Options) string {
	if opt.Template == TemplateRaw {
		return text
	}
	task, ok := tasks[opt.Template]
	if !ok {
		task = tasks[TemplateAnalyze]
	}

	var b strings.Builder
	b.WriteString(task)
	b.WriteString("\n\n")
	b.WriteString("Return a JSON object with these fields:\n")
	b.WriteString(`  "Code": string or null` + "\n")
	b.WriteString(`  "Language": string or null` + "\n")
	b.WriteString(`  "Text": string or null` + "\n")
	b.WriteString(`  "ImageUrl": string or null` + "\n\n")
	b.WriteString("Output ONLY the JSON object. No markdown code fences, no prose before or after it.\n")
	b.WriteString(codeRule(opt.CodeStyle))
	b.WriteString("\n\n")
	_, _ = fmt.Fprintf(&b, "The user input is between %s and %s:\n", InputOpen, InputClose)
	b.WriteString(InputOpen)
	b.WriteString("\n")
	b.WriteString(text)
	b.WriteString("\n")
	b.WriteString(InputClose)
	return b.String()
}

func codeRule(style extract.CodeStyle) string {
	switch style {
	case extract.CodeStyleWrap:
		return "If Code is HTML, wrap the whole value in an HTML comment: <!-- ... -->. Other code is returned as is."
	case extract.CodeStyleStrip:
		return "Return Code as plain source. Never wrap it in <!-- ... --> comments."
	default:
		return "Return Code as plain source."
	}
}
