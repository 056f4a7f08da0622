package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/cloo-solutions/corpusai/internal/api"
	"github.com/cloo-solutions/corpusai/internal/domain"
	"github.com/cloo-solutions/corpusai/internal/service"
)

// sseChunkRunes is how many characters of the answer go into each chunk event.
const sseChunkRunes = 24

// doneEventPayload terminates every successful stream.
const doneEventPayload = "[DONE]"

type ChatService interface {
	ChatWithKnowledge(ctx context.Context, query string, limit *int, threshold *float64) (*service.ChatResponse, error)
}

// StreamExecutor runs stream emission tasks, applying backpressure when
// saturated.
type StreamExecutor interface {
	Submit(task func())
}

type ChatHandler struct {
	svc  ChatService
	pool StreamExecutor
}

func NewChatHandler(svc ChatService, pool StreamExecutor) *ChatHandler {
	return &ChatHandler{svc: svc, pool: pool}
}

type ChatRequest struct {
	Message   string   `json:"message"`
	Limit     *int     `json:"limit"`
	Threshold *float64 `json:"threshold"`
}

// ChatKnowledge streams an answer over Server-Sent Events: chunk events
// carrying slices of the answer, one sources event with the retrieval
// results, then done. Failures surface as a single error event.
func (h *ChatHandler) ChatKnowledge(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		api.HandleError(w, domain.ErrBlankQuery)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		api.Error(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	// The emission task runs on the stream pool (or inline under load);
	// the handler goroutine holds the connection open until it finishes.
	done := make(chan struct{})
	h.pool.Submit(func() {
		defer close(done)
		h.stream(r.Context(), w, flusher, req)
	})
	<-done
}

func (h *ChatHandler) stream(ctx context.Context, w http.ResponseWriter, flusher http.Flusher, req ChatRequest) {
	resp, err := h.svc.ChatWithKnowledge(ctx, req.Message, req.Limit, req.Threshold)
	if err != nil {
		writeSSEEvent(w, flusher, "error", err.Error())
		return
	}

	if resp.Answer == service.NoKnowledgeAnswer {
		// The fallback sentinel is one message to the client, not answer
		// text to dribble out.
		writeSSEEvent(w, flusher, "chunk", resp.Answer)
	} else {
		answer := []rune(resp.Answer)
		for start := 0; start < len(answer); start += sseChunkRunes {
			if ctx.Err() != nil {
				return
			}
			end := start + sseChunkRunes
			if end > len(answer) {
				end = len(answer)
			}
			writeSSEEvent(w, flusher, "chunk", string(answer[start:end]))
		}
	}

	if ctx.Err() != nil {
		return
	}

	sources, err := json.Marshal(resp.Sources)
	if err != nil {
		writeSSEEvent(w, flusher, "error", "failed to encode sources")
		return
	}
	writeSSEEvent(w, flusher, "sources", string(sources))
	writeSSEEvent(w, flusher, "done", doneEventPayload)
}

// writeSSEEvent emits one event. Multi-line payloads become multiple data
// lines per the SSE framing rules.
func writeSSEEvent(w http.ResponseWriter, flusher http.Flusher, event, data string) {
	fmt.Fprintf(w, "event: %s\n", event)
	for _, line := range strings.Split(data, "\n") {
		fmt.Fprintf(w, "data: %s\n", line)
	}
	fmt.Fprint(w, "\n")
	flusher.Flush()
}
