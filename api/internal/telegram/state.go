package telegram

import "sync"

// chatModes holds the variant chosen per chat with /mode.
type chatModes struct {
	m sync.Map // chatID -> string
}

func (c *chatModes) set(chatID int64, mode string) { c.m.Store(chatID, mode) }

func (c *chatModes) get(chatID int64) string {
	if v, ok := c.m.Load(chatID); ok {
		if s, _ := v.(string); s != "" {
			return s
		}
	}
	return ""
}
