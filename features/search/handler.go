package search

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"clipseek/internal/adapter/gemini"
	"clipseek/internal/middleware"
)

type Handler struct {
	service  *Service
	queryLog *QueryLogger
}

func NewHandler(service *Service, queryLog *QueryLogger) *Handler {
	return &Handler{service: service, queryLog: queryLog}
}

// Search handles POST /api/search. A caller-supplied Gemini key can be passed
// via the X-API-Key header (BYOK); without one the configured key applies.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
		Limit int    `json:"limit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		http.Error(w, "Query cannot be empty", http.StatusBadRequest)
		return
	}

	apiKey := r.Header.Get("X-API-Key")

	start := time.Now()
	result, err := h.service.Search(r.Context(), req.Query, req.Limit, apiKey)
	if err != nil {
		if errors.Is(err, gemini.ErrMissingAPIKey) {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		slog.Error("search failed", "error", err, "query", req.Query)
		http.Error(w, fmt.Sprintf("Search failed: %v", err), http.StatusInternalServerError)
		return
	}

	if h.queryLog != nil {
		h.queryLog.Log(QueryLogEntry{
			Query:         req.Query,
			NumResults:    len(result.RelevantClips),
			Duration:      time.Since(start),
			CorrelationID: middleware.GetCorrelationID(r.Context()),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
