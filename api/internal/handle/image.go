package handle

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"llm-extract/api/internal/httpserver"
	"llm-extract/api/internal/llm"
	"llm-extract/api/internal/pipeline"
	"llm-extract/api/internal/util"
)

type ImageResponse struct {
	Image    string `json:"image"` // base64, no data: prefix
	MIMEType string `json:"mimeType"`
}

// Image generates one picture from the body's prompt.
func (h *Handle) Image(p *pipeline.Pipeline) http.HandlerFunc {
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
		prompt := req.Prompt
		if strings.TrimSpace(prompt) == "" {
			prompt = req.Text
		}
		if strings.TrimSpace(prompt) == "" {
			writeFail(w, http.StatusBadRequest, "Prompt (non-empty string) is required")
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

		img, err := p.Image(ctx, eng, prompt)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		mimeType := util.PickMIME(img.MIMEType, img.Data)
		h.log.Info("image generated",
			"request_id", httpserver.RequestID(ctx), "engine", eng.Name(), "mime", mimeType, "bytes", len(img.Data))
		writeOK(w, ImageResponse{
			Image:    base64.StdEncoding.EncodeToString(img.Data),
			MIMEType: mimeType,
		})
	}
}
