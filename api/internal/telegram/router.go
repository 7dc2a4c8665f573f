package telegram

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"llm-extract/api/internal/extract"
	"llm-extract/api/internal/llm"
	"llm-extract/api/internal/pipeline"
	"llm-extract/api/internal/store"
)

// Sender is the part of *tgbotapi.BotAPI the router uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Cache is the optional result cache; *store.ExtractRepo implements it.
type Cache interface {
	Find(ctx context.Context, key string, maxAge time.Duration) (extract.Result, error)
	Upsert(ctx context.Context, e store.Entry) error
}

type Router struct {
	Bot        Sender
	Engines    *llm.Engines
	EngManager *llm.Manager
	Pipelines  map[string]*pipeline.Pipeline // by variant name
	Default    string                        // variant used until /mode is sent
	Timeout    time.Duration

	Cache       Cache
	CacheMaxAge time.Duration

	Log *slog.Logger

	modes chatModes
}

// NewRouter builds one pipeline per variant.
func NewRouter(bot Sender, engs *llm.Engines, mgr *llm.Manager, variants map[string]pipeline.Variant, log *slog.Logger) *Router {
	if log == nil {
		log = slog.Default()
	}
	ps := make(map[string]*pipeline.Pipeline, len(variants))
	for name, v := range variants {
		ps[name] = pipeline.New(v, log)
	}
	return &Router{
		Bot:        bot,
		Engines:    engs,
		EngManager: mgr,
		Pipelines:  ps,
		Default:    pipeline.Chat.Name,
		Timeout:    70 * time.Second,
		Log:        log,
	}
}

func (r *Router) HandleUpdate(upd tgbotapi.Update) {
	if upd.CallbackQuery != nil {
		r.handleCallback(*upd.CallbackQuery)
		return
	}
	if upd.Message == nil {
		return
	}
	if upd.Message.IsCommand() {
		r.HandleCommand(upd.Message)
		return
	}
	if strings.TrimSpace(upd.Message.Text) != "" {
		r.handleText(upd.Message.Chat.ID, upd.Message.Text)
	}
}

func (r *Router) HandleCommand(m *tgbotapi.Message) {
	cid := m.Chat.ID
	args := strings.TrimSpace(m.CommandArguments())
	switch m.Command() {
	case "start":
		r.send(cid, "Send me a request and I will answer with text, code and an image link when there is one.\n"+
			"Commands: /health, /engine, /mode, /image <prompt>")
	case "health":
		r.send(cid, "✅ OK")
	case "engine":
		r.handleEngineCommand(cid, args)
	case "mode":
		r.handleModeCommand(cid, args)
	case "image":
		r.handleImage(cid, args)
	default:
		r.send(cid, "Unknown command")
	}
}

// handleEngineCommand switches the chat's engine:
//
//	/engine gemini [model]
//	/engine gpt [model]
func (r *Router) handleEngineCommand(chatID int64, argLine string) {
	args := strings.Fields(argLine)
	if len(args) == 0 {
		cur := "none"
		if e := r.EngManager.Get(chatID); e != nil {
			cur = e.Name() + " (" + e.GetModel() + ")"
		}
		r.send(chatID, "Current engine: "+cur+"\nUsage: /engine {gemini|gpt} [model]")
		return
	}

	eng, err := r.Engines.GetEngine(args[0])
	if err != nil {
		if errors.Is(err, llm.ErrUnknownEngine) {
			r.send(chatID, "Unknown engine. Available: gemini | gpt")
		} else {
			r.send(chatID, "❌ "+args[0]+" is not configured.")
		}
		return
	}
	type modelSetter interface{ SetModel(string) }
	if len(args) > 1 {
		if ms, ok := eng.(modelSetter); ok {
			ms.SetModel(args[1])
		}
	}
	r.EngManager.Set(chatID, eng)
	r.send(chatID, "✅ Engine: "+eng.Name()+" ("+eng.GetModel()+").")
}

func (r *Router) handleModeCommand(chatID int64, argLine string) {
	name := strings.ToLower(strings.TrimSpace(argLine))
	if name == "" {
		msg := tgbotapi.NewMessage(chatID, "Current mode: "+r.mode(chatID)+"\nPick one:")
		msg.ReplyMarkup = makeModeKeyboard(r.variantNames())
		_, _ = r.Bot.Send(msg)
		return
	}
	r.setMode(chatID, name)
}

func (r *Router) setMode(chatID int64, name string) {
	if _, ok := r.Pipelines[name]; !ok {
		r.send(chatID, "Unknown mode. Available: "+strings.Join(r.variantNames(), " | "))
		return
	}
	r.modes.set(chatID, name)
	r.send(chatID, "✅ Mode: "+name)
}

func (r *Router) handleCallback(cb tgbotapi.CallbackQuery) {
	_, _ = r.Bot.Request(tgbotapi.NewCallback(cb.ID, "")) // ack
	if cb.Message == nil {
		return
	}
	if name, ok := strings.CutPrefix(cb.Data, modeCallbackPrefix); ok {
		edit := tgbotapi.NewEditMessageReplyMarkup(cb.Message.Chat.ID, cb.Message.MessageID, tgbotapi.InlineKeyboardMarkup{
			InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{},
		})
		_, _ = r.Bot.Send(edit)
		r.setMode(cb.Message.Chat.ID, name)
	}
}

func (r *Router) mode(chatID int64) string {
	if m := r.modes.get(chatID); m != "" {
		return m
	}
	return r.Default
}

func (r *Router) variantNames() []string {
	names := make([]string, 0, len(r.Pipelines))
	for n := range r.Pipelines {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (r *Router) handleText(chatID int64, text string) {
	name := r.mode(chatID)
	p, ok := r.Pipelines[name]
	if !ok {
		r.send(chatID, "Unknown mode. Use /mode")
		return
	}
	eng := r.EngManager.Get(chatID)
	if eng == nil {
		r.SendError(chatID, errors.New("no engine is configured"))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.Timeout)
	defer cancel()
	log := r.Log.With("chat_id", chatID, "variant", name, "engine", eng.Name())

	key := store.Key(name, eng.Name(), eng.GetModel(), text)
	if r.Cache != nil {
		if res, err := r.Cache.Find(ctx, key, r.CacheMaxAge); err == nil {
			log.Debug("cache hit")
			r.SendResult(chatID, res)
			return
		}
	}

	res, err := p.Run(ctx, eng, text)
	if err != nil {
		log.Error("extraction failed", "error", err)
		r.SendError(chatID, err)
		return
	}
	if r.Cache != nil {
		if err := r.Cache.Upsert(ctx, store.Entry{Key: key, Variant: name, Engine: eng.Name(), Model: eng.GetModel(), Result: res}); err != nil {
			log.Warn("cache store failed", "error", err)
		}
	}
	r.SendResult(chatID, res)
}

func (r *Router) handleImage(chatID int64, prompt string) {
	if strings.TrimSpace(prompt) == "" {
		r.send(chatID, "Usage: /image <prompt>")
		return
	}
	eng := r.EngManager.Get(chatID)
	ctx, cancel := context.WithTimeout(context.Background(), r.Timeout)
	defer cancel()

	img, err := pipeline.New(pipeline.Variant{Name: "image"}, r.Log).Image(ctx, eng, prompt)
	if err != nil {
		r.Log.Error("image failed", "chat_id", chatID, "error", err)
		r.SendError(chatID, err)
		return
	}
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "image" + imageExt(img.MIMEType), Bytes: img.Data})
	photo.Caption = prompt
	if _, err := r.Bot.Send(photo); err != nil {
		r.Log.Warn("send photo failed", "chat_id", chatID, "error", err)
	}
}

func (r *Router) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	_, _ = r.Bot.Send(msg)
}

func (r *Router) SendResult(chatID int64, res extract.Result) {
	msg := tgbotapi.NewMessage(chatID, FormatReply(res))
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := r.Bot.Send(msg); err != nil {
		// retry without markup when Telegram rejects the entities
		msg.ParseMode = ""
		_, _ = r.Bot.Send(msg)
	}
}

// SendError shows the caller-safe part of err.
func (r *Router) SendError(chatID int64, err error) {
	var pe *pipeline.Error
	if errors.As(err, &pe) && pe.Kind != pipeline.UpstreamFailure {
		r.send(chatID, "❌ "+pe.Message)
		return
	}
	r.send(chatID, "❌ The model request failed. Try again or switch with /engine.")
}
