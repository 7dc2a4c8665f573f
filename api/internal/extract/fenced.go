package extract

import (
	"regexp"
	"strings"
)

// Fenced is a code block found between triple backticks.
type Fenced struct {
	Language string // tag right after the opening fence, "" if none
	Code     string
}

// The tag only counts when a line break follows it; "```print(1)```" has no tag.
var fenceRe = regexp.MustCompile("(?s)```(?:([A-Za-z0-9_+#.-]+)[ \\t]*\\r?\\n|[ \\t]*\\r?\\n?)(.*?)```")

// ExtractFencedCode returns the first fenced block of text. Later blocks are ignored.
func ExtractFencedCode(text string) (Fenced, bool) {
	m := fenceRe.FindStringSubmatch(text)
	if len(m) != 3 {
		return Fenced{}, false
	}
	code := strings.TrimSpace(m[2])
	if code == "" {
		return Fenced{}, false
	}
	return Fenced{Language: strings.TrimSpace(m[1]), Code: code}, true
}

var (
	jsSignRe      = regexp.MustCompile(`\bfunction\b|console\.log|=>`)
	pySignRe      = regexp.MustCompile(`\bdef |\bimport\b.*\bfrom\b`)
	systemsSignRe = regexp.MustCompile(`#include|\bint\s+main\b`)
)

// DetectLanguage classifies untagged code by content. First match wins.
func DetectLanguage(code string) string {
	s := strings.TrimSpace(code)
	switch {
	case strings.HasPrefix(s, "<"):
		return "html"
	case jsSignRe.MatchString(s):
		return "javascript"
	case pySignRe.MatchString(s):
		return "python"
	case systemsSignRe.MatchString(s):
		return "c"
	default:
		return "unknown"
	}
}
