package extract

import "strings"

// Result is the fixed four-field record returned to callers.
// A nil field is emitted as JSON null; all four keys are always present.
type Result struct {
	Code     *string `json:"Code"`
	Language *string `json:"Language"`
	Text     *string `json:"Text"`
	ImageURL *string `json:"ImageUrl"`
}

// Str returns a pointer to s, or nil when s is blank.
func Str(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

// Value dereferences p, returning "" for nil.
func Value(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// Present reports whether p holds a non-blank value.
func Present(p *string) bool {
	return p != nil && strings.TrimSpace(*p) != ""
}
