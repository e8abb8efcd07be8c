package library

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"clipseek/internal/transcript"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Library returns the channel catalog. A store failure degrades to an empty
// catalog so the frontend library view renders instead of erroring.
func (h *Handler) Library(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Library(r.Context())
	if err != nil {
		slog.Error("failed to load library", "error", err)
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) RenameChannel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OldName string `json:"old_name"`
		NewName string `json:"new_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.OldName == "" || req.NewName == "" {
		http.Error(w, "old_name and new_name are required", http.StatusBadRequest)
		return
	}

	updated, err := h.service.RenameChannel(r.Context(), req.OldName, req.NewName)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":      false,
			"error":        err.Error(),
			"updatedClips": 0,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"updatedClips": updated,
		"oldName":      req.OldName,
		"newName":      req.NewName,
	})
}

func (h *Handler) DeleteVideo(w http.ResponseWriter, r *http.Request) {
	videoID := r.PathValue("video_id")

	deleted, err := h.service.DeleteVideo(r.Context(), videoID)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":      false,
			"error":        err.Error(),
			"deletedClips": 0,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"deletedClips": deleted,
	})
}

// Transcript serves a video's transcript as an SRT download.
func (h *Handler) Transcript(w http.ResponseWriter, r *http.Request) {
	videoID := r.PathValue("video_id")

	result, err := h.service.Transcript(r.Context(), videoID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	filename := transcript.SRTFilename(result.Title, result.VideoID)
	w.Header().Set("Content-Type", "text/plain")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if _, err := w.Write([]byte(transcript.RenderSRT(result.Chunks))); err != nil {
		slog.Error("failed to write transcript response", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
