package handle

import (
	"errors"
	"net/http"
	"strings"

	"llm-extract/api/internal/extract"
	"llm-extract/api/internal/httpserver"
	"llm-extract/api/internal/llm"
	"llm-extract/api/internal/pipeline"
	"llm-extract/api/internal/store"
)

// Extract serves one text variant: the body's text goes through p and the
// four-field result comes back in the success envelope.
func (h *Handle) Extract(p *pipeline.Pipeline) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		req, err := decodeRequest(w, r)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		if strings.TrimSpace(req.Text) == "" {
			writeFail(w, http.StatusBadRequest, "Text (non-empty string) is required")
			return
		}

		ctx, cancel := withDeadline(r, h.opts.Timeout)
		defer cancel()

		eng, err := h.engs.GetEngine(req.LLMName)
		if err != nil {
			if errors.Is(err, llm.ErrUnknownEngine) {
				writeFail(w, http.StatusBadRequest, err.Error())
				return
			}
			h.writeError(w, r, pipeline.NewError(pipeline.UpstreamFailure, "engine unavailable", err))
			return
		}

		log := h.log.With("request_id", httpserver.RequestID(ctx), "variant", p.Variant.Name, "engine", eng.Name())
		var key string
		if h.opts.Cache != nil {
			key = store.Key(p.Variant.Name, eng.Name(), eng.GetModel(), req.Text)
			if res, err := h.opts.Cache.Find(ctx, key, h.opts.CacheMaxAge); err == nil {
				log.Debug("cache hit", "key", key)
				writeOK(w, res)
				return
			} else if !errors.Is(err, store.ErrNotFound) {
				log.Warn("cache lookup failed", "error", err)
			}
		}

		res, err := p.Run(ctx, eng, req.Text)
		if err != nil {
			h.writeError(w, r, err)
			return
		}

		if h.opts.Cache != nil {
			e := store.Entry{Key: key, Variant: p.Variant.Name, Engine: eng.Name(), Model: eng.GetModel(), Result: res}
			if err := h.opts.Cache.Upsert(ctx, e); err != nil {
				log.Warn("cache store failed", "error", err)
			}
		}
		log.Info("extracted",
			"has_code", extract.Present(res.Code),
			"language", extract.Value(res.Language),
			"has_image", extract.Present(res.ImageURL))
		writeOK(w, res)
	}
}
