package extract

import "strings"

const (
	commentOpen  = "<!--"
	commentClose = "-->"
)

// WrapCodeAsCommentStyle wraps HTML-looking code in a literal <!-- ... --> block.
// Empty code, already wrapped code and non-HTML code come back unchanged.
func WrapCodeAsCommentStyle(code string) string {
	s := strings.TrimSpace(code)
	if s == "" || isCommentWrapped(s) {
		return code
	}
	if strings.HasPrefix(s, "<") {
		return commentOpen + " " + s + " " + commentClose
	}
	return code
}

// StripCommentStyle undoes WrapCodeAsCommentStyle.
func StripCommentStyle(code string) string {
	s := strings.TrimSpace(code)
	if !isCommentWrapped(s) {
		return code
	}
	s = strings.TrimPrefix(s, commentOpen)
	s = strings.TrimSuffix(s, commentClose)
	return strings.TrimSpace(s)
}

func isCommentWrapped(s string) bool {
	return len(s) >= len(commentOpen)+len(commentClose) &&
		strings.HasPrefix(s, commentOpen) && strings.HasSuffix(s, commentClose)
}

// CodeStyle selects how extracted code is presented.
type CodeStyle string

const (
	CodeStyleKeep  CodeStyle = "keep"
	CodeStyleWrap  CodeStyle = "wrap"  // WrapCodeAsCommentStyle
	CodeStyleStrip CodeStyle = "strip" // StripCommentStyle
)

// ParseCodeStyle maps a config value to a CodeStyle; unknown values are rejected.
func ParseCodeStyle(s string) (CodeStyle, bool) {
	switch CodeStyle(strings.ToLower(strings.TrimSpace(s))) {
	case CodeStyleKeep, "":
		return CodeStyleKeep, true
	case CodeStyleWrap:
		return CodeStyleWrap, true
	case CodeStyleStrip:
		return CodeStyleStrip, true
	}
	return "", false
}

// Apply formats code according to the style.
func (s CodeStyle) Apply(code string) string {
	switch s {
	case CodeStyleWrap:
		return WrapCodeAsCommentStyle(code)
	case CodeStyleStrip:
		return StripCommentStyle(code)
	default:
		return code
	}
}
