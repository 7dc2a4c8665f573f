package handle

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"llm-extract/api/internal/extract"
	"llm-extract/api/internal/httpserver"
	"llm-extract/api/internal/llm"
	"llm-extract/api/internal/pipeline"
	"llm-extract/api/internal/store"
)

// Cache stores finished extractions. *store.ExtractRepo implements it.
type Cache interface {
	Find(ctx context.Context, key string, maxAge time.Duration) (extract.Result, error)
	Upsert(ctx context.Context, e store.Entry) error
}

type Options struct {
	Timeout            time.Duration // per-request deadline unless the caller overrides it
	ExposeErrorDetails bool
	Cache              Cache // optional
	CacheMaxAge        time.Duration
}

type Handle struct {
	engs *llm.Engines
	opts Options
	log  *slog.Logger
}

func New(engs *llm.Engines, opts Options, log *slog.Logger) *Handle {
	if opts.Timeout <= 0 {
		opts.Timeout = 70 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &Handle{engs: engs, opts: opts, log: log}
}

// Register mounts one POST route per variant under /v1/ plus /v1/image.
func (h *Handle) Register(mux *http.ServeMux, variants map[string]pipeline.Variant) {
	for name, v := range variants {
		mux.HandleFunc("/v1/"+name, h.Extract(pipeline.New(v, h.log)))
	}
	mux.HandleFunc("/v1/image", h.Image(pipeline.New(pipeline.Variant{Name: "image"}, h.log)))
}

type envelope struct {
	Success  bool   `json:"success"`
	Response any    `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
	Details  string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeOK(w http.ResponseWriter, resp any) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Response: resp})
}

func writeFail(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, envelope{Success: false, Error: msg})
}

func methodNotAllowed(w http.ResponseWriter) {
	w.Header().Set("Allow", http.MethodPost)
	writeFail(w, http.StatusMethodNotAllowed, "Method not allowed")
}

// writeError maps a pipeline error to a status and a caller-safe message.
// Causes reach the body only with ExposeErrorDetails.
func (h *Handle) writeError(w http.ResponseWriter, r *http.Request, err error) {
	log := h.log.With("request_id", httpserver.RequestID(r.Context()), "path", r.URL.Path)

	var pe *pipeline.Error
	if errors.As(err, &pe) {
		switch pe.Kind {
		case pipeline.InvalidRequest:
			log.Info("invalid request", "error", err)
			writeFail(w, http.StatusBadRequest, pe.Message)
			return
		case pipeline.MissingArtifact:
			log.Warn("missing artifact", "error", err)
			writeFail(w, http.StatusInternalServerError, pe.Message)
			return
		}
	}

	log.Error("request failed", "error", err)
	env := envelope{Success: false, Error: "Internal Server Error"}
	if h.opts.ExposeErrorDetails {
		env.Details = err.Error()
	}
	writeJSON(w, http.StatusInternalServerError, env)
}
