package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/video-stream/whisper-mcp/internal/db"
)

// HistoryStore is the read side of the transcription history.
type HistoryStore interface {
	ListTranscriptions(limit int) ([]*db.Transcription, error)
	GetTranscription(id string) (*db.Transcription, error)
}

type HistoryHandler struct {
	store HistoryStore
}

// NewHistoryHandler serves history from store. A nil store answers 404 on
// every route.
func NewHistoryHandler(store HistoryStore) *HistoryHandler {
	return &HistoryHandler{store: store}
}

// ListTranscriptions returns recorded tool calls, newest first.
func (h *HistoryHandler) ListTranscriptions(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		jsonError(w, "transcription history is disabled", http.StatusNotFound)
		return
	}

	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			jsonError(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	list, err := h.store.ListTranscriptions(limit)
	if err != nil {
		jsonError(w, "failed to list transcriptions: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []*db.Transcription{}
	}
	jsonResponse(w, list, http.StatusOK)
}

func (h *HistoryHandler) GetTranscription(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		jsonError(w, "transcription history is disabled", http.StatusNotFound)
		return
	}

	id := chi.URLParam(r, "id")
	t, err := h.store.GetTranscription(id)
	if errors.Is(err, sql.ErrNoRows) {
		jsonError(w, "transcription not found", http.StatusNotFound)
		return
	}
	if err != nil {
		jsonError(w, "failed to load transcription: "+err.Error(), http.StatusInternalServerError)
		return
	}
	jsonResponse(w, t, http.StatusOK)
}
