// Package extract finds code, language and image URLs in free text with
// regular expressions. Nothing here calls a model and every function is total:
// a missing match is reported as false or nil, never as an error.
package extract

// Heuristic runs all extractors over text. A fenced block wins over an HTML
// snippet. Text is left nil for the caller to fill.
func Heuristic(text string) Result {
	var r Result
	if f, ok := ExtractFencedCode(text); ok {
		lang := f.Language
		if lang == "" {
			lang = DetectLanguage(f.Code)
		}
		r.Code = Str(f.Code)
		r.Language = Str(lang)
	} else if snippet, ok := ExtractHTMLSnippet(text); ok {
		r.Code = Str(snippet)
		r.Language = Str("html")
	}
	if u, ok := ExtractImageURL(text); ok {
		r.ImageURL = Str(u)
	}
	return r
}

// HasCode reports whether the heuristic found a fenced block or HTML snippet.
func (r Result) HasCode() bool { return Present(r.Code) }
