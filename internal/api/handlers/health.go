package handlers

import (
	"net/http"

	"github.com/video-stream/whisper-mcp/internal/ffmpeg"
)

type HealthHandler struct {
	backend string
	history bool
	media   ffmpeg.Capabilities
}

func NewHealthHandler(backend string, history bool, media ffmpeg.Capabilities) *HealthHandler {
	return &HealthHandler{backend: backend, history: history, media: media}
}

// Health always answers 200; missing media tools only limit large files.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, map[string]any{
		"status":    "ok",
		"backend":   h.backend,
		"history":   h.history,
		"media":     h.media,
		"splitting": h.media.Splitting(),
	}, http.StatusOK)
}
