package extract

import (
	"regexp"
	"sort"
	"strings"
)

var (
	openTagRe  = regexp.MustCompile(`<([A-Za-z][A-Za-z0-9-]*)\b[^>]*>`)
	closeTagRe = regexp.MustCompile(`</([A-Za-z][A-Za-z0-9-]*)\s*>`)
)

// ExtractHTMLSnippet returns the first open/close pair of the same tag, shortest span.
// Text without any <word...> tag yields false. When no tag is closed the result
// comes from BestEffortTagSpan.
func ExtractHTMLSnippet(text string) (string, bool) {
	opens := openTagRe.FindAllStringSubmatchIndex(text, -1)
	if len(opens) == 0 {
		return "", false
	}

	// close tag start/end offsets by lower-cased name, in input order
	closes := map[string][][2]int{}
	for _, c := range closeTagRe.FindAllStringSubmatchIndex(text, -1) {
		name := strings.ToLower(text[c[2]:c[3]])
		closes[name] = append(closes[name], [2]int{c[0], c[1]})
	}

	for _, o := range opens {
		list := closes[strings.ToLower(text[o[2]:o[3]])]
		i := sort.Search(len(list), func(i int) bool { return list[i][0] >= o[1] })
		if i < len(list) {
			return text[o[0]:list[i][1]], true
		}
	}
	return BestEffortTagSpan(text)
}

// BestEffortTagSpan returns everything from the first '<' to the last '>'.
// Known to be lossy: trailing prose after a stray '>' is captured too.
func BestEffortTagSpan(text string) (string, bool) {
	start := strings.Index(text, "<")
	end := strings.LastIndex(text, ">")
	if start == -1 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}
