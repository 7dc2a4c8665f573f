package util

// FirstJSONObject returns the first balanced {...} substring of s.
// Braces inside JSON strings are skipped, escapes included. An opening brace
// that never closes is passed over and the earliest balanced object after it
// is returned instead.
func FirstJSONObject(s string) (string, bool) {
	var (
		starts     []int
		best       = [2]int{-1, -1}
		inStr, esc bool
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inStr {
			switch {
			case esc:
				esc = false
			case c == '\\':
				esc = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			if len(starts) > 0 {
				inStr = true
			}
		case '{':
			starts = append(starts, i)
		case '}':
			if len(starts) == 0 {
				continue
			}
			open := starts[len(starts)-1]
			starts = starts[:len(starts)-1]
			if len(starts) == 0 {
				return s[open : i+1], true
			}
			if best[0] == -1 || open < best[0] {
				best = [2]int{open, i + 1}
			}
		}
	}
	if best[0] == -1 {
		return "", false
	}
	return s[best[0]:best[1]], true
}
