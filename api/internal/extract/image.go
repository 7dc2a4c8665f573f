package extract

import "regexp"

var (
	mdImageRe   = regexp.MustCompile(`!\[[^\]]*\]\(\s*<?([^\s)>]+)>?(?:\s+"[^"]*")?\s*\)`)
	bareImageRe = regexp.MustCompile(`(?i)(https?://[^\s"'<>()\[\]]+\.(?:png|jpe?g|gif|webp|svg))(?:[?#][^\s"'<>()]*)?(?:[\s"'<>(),;!.\]]|$)`)
)

// ExtractImageURL returns the first markdown image target, or failing that the
// first bare http(s) URL ending in a known image extension.
func ExtractImageURL(text string) (string, bool) {
	if m := mdImageRe.FindStringSubmatch(text); len(m) == 2 {
		return m[1], true
	}
	if m := bareImageRe.FindStringSubmatch(text); len(m) == 2 {
		return m[1], true
	}
	return "", false
}
