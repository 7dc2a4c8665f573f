package handle

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"llm-extract/api/internal/pipeline"
)

const maxBodyBytes = 1 << 20

// Request is the JSON body of every endpoint. Image requests use Prompt and
// fall back to Text.
type Request struct {
	Text    string
	Prompt  string
	LLMName string
}

type wireRequest struct {
	Text    json.RawMessage `json:"text"`
	Prompt  json.RawMessage `json:"prompt"`
	LLMName json.RawMessage `json:"llm_name"`
}

// decodeRequest accepts {"text": ..., "llm_name": ...}, a bare JSON string or
// any body that is not JSON, taken as the text itself. Fields that are not JSON
// strings are treated as absent, and so is JSON of any other shape.
func decodeRequest(w http.ResponseWriter, r *http.Request) (Request, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return Request{}, pipeline.NewError(pipeline.InvalidRequest, "Request body is too large or unreadable", err)
	}

	raw := Request{Text: string(body), Prompt: string(body)}
	if ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); ct == "text/plain" {
		return raw, nil
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return Request{}, nil
	}
	if !json.Valid(trimmed) {
		return raw, nil
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return Request{}, nil
		}
		return Request{Text: s, Prompt: s}, nil
	case '{':
		var wr wireRequest
		if err := json.Unmarshal(trimmed, &wr); err != nil {
			return Request{}, nil
		}
		return Request{
			Text:    jsonString(wr.Text),
			Prompt:  jsonString(wr.Prompt),
			LLMName: jsonString(wr.LLMName),
		}, nil
	}
	return Request{}, nil
}

func jsonString(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

// withDeadline applies def, or X-Request-Timeout / ?timeoutSec= in seconds.
func withDeadline(r *http.Request, def time.Duration) (context.Context, context.CancelFunc) {
	deadline := def
	if ts := r.Header.Get("X-Request-Timeout"); ts != "" {
		if v, _ := strconv.Atoi(strings.TrimSpace(ts)); v > 0 {
			deadline = time.Duration(v) * time.Second
		}
	} else if ts := r.URL.Query().Get("timeoutSec"); ts != "" {
		if v, _ := strconv.Atoi(ts); v > 0 {
			deadline = time.Duration(v) * time.Second
		}
	}
	return context.WithTimeout(r.Context(), deadline)
}
