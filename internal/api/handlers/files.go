package handlers

import (
	"net/http"
	"strconv"

	"github.com/video-stream/whisper-mcp/internal/storage"
)

const maxSearchResults = 200

type FilesHandler struct {
	roots *storage.Roots
}

func NewFilesHandler(roots *storage.Roots) *FilesHandler {
	return &FilesHandler{roots: roots}
}

// Search lists audio files under the configured roots matching ?q=.
func (h *FilesHandler) Search(w http.ResponseWriter, r *http.Request) {
	if !h.roots.Restricted() {
		jsonError(w, "file search needs AUDIO_ROOTS", http.StatusNotFound)
		return
	}

	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			jsonError(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = min(n, maxSearchResults)
	}

	files, err := h.roots.Search(r.URL.Query().Get("q"), limit)
	if err != nil {
		jsonError(w, "search failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	jsonResponse(w, files, http.StatusOK)
}
