package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"llm-extract/api/internal/extract"
	"llm-extract/api/internal/util"
)

const (
	modeCallbackPrefix = "mode:"
	maxMessageRunes    = 3900
)

// Mode buttons, one row of up to four.
func makeModeKeyboard(names []string) tgbotapi.InlineKeyboardMarkup {
	row := make([]tgbotapi.InlineKeyboardButton, 0, len(names))
	for _, n := range names {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(n, modeCallbackPrefix+n))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

// FormatReply renders a Result as a legacy-Markdown Telegram message: Text,
// then Code in a fence tagged with Language, then the image link.
func FormatReply(res extract.Result) string {
	var b strings.Builder
	if extract.Present(res.Text) {
		b.WriteString(esc(*res.Text))
		b.WriteString("\n")
	}
	if extract.Present(res.Code) {
		b.WriteString("\n```")
		if lang := extract.Value(res.Language); lang != "" && lang != "unknown" {
			b.WriteString(lang)
		}
		b.WriteString("\n")
		b.WriteString(strings.ReplaceAll(*res.Code, "```", "'''"))
		b.WriteString("\n```\n")
	}
	if extract.Present(res.ImageURL) {
		b.WriteString("\n🖼 ")
		b.WriteString(*res.ImageURL)
		b.WriteString("\n")
	}
	out := strings.TrimSpace(b.String())
	if out == "" {
		return "(empty)"
	}
	return util.Truncate(out, maxMessageRunes)
}

// light escaping for legacy Markdown
func esc(s string) string {
	s = strings.ReplaceAll(s, "`", "'")
	s = strings.ReplaceAll(s, "_", "\\_")
	s = strings.ReplaceAll(s, "*", "\\*")
	s = strings.ReplaceAll(s, "[", "\\[")
	return s
}

func imageExt(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".png"
	}
}
