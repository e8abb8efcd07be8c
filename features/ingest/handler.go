package ingest

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"clipseek/internal/middleware"
)

type Handler struct {
	service *Service
	// renderDelay spaces out SSE frames so terminal-style frontends can
	// animate each line.
	renderDelay time.Duration
	hasAPIKey   func() bool
}

func NewHandler(service *Service, renderDelay time.Duration, hasAPIKey func() bool) *Handler {
	return &Handler{service: service, renderDelay: renderDelay, hasAPIKey: hasAPIKey}
}

// Ingest streams progress messages over SSE and terminates the stream with a
// [DONE] sentinel. The response is always 200; failures surface as message
// lines so the frontend log view can show them.
func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.URL == "" {
		http.Error(w, "url is required", http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	send := func(msg string) {
		fmt.Fprintf(w, "data: %s\n\n", msg)
		flusher.Flush()
	}

	if h.hasAPIKey != nil && !h.hasAPIKey() {
		send("❌ Error: no API key configured. Set GEMINI_API_KEY and restart.")
		send("[DONE]")
		return
	}

	slog.Info("ingestion started",
		"url", req.URL,
		"correlation_id", middleware.GetCorrelationID(r.Context()),
	)

	for msg := range h.service.Run(r.Context(), req.URL) {
		send(msg)
		if h.renderDelay > 0 {
			select {
			case <-time.After(h.renderDelay):
			case <-r.Context().Done():
			}
		}
	}

	send("[DONE]")
}
